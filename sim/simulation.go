package sim

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/baldhumanity/neat-creatures/neat"
	"github.com/baldhumanity/neat-creatures/telemetry"
)

// Observer receives the statistics of every completed generation.
type Observer interface {
	ObserveGeneration(stats telemetry.GenerationStats) error
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulation) { s.logger = logger }
}

// WithRand sets the random source, overriding the configured seed.
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulation) { s.rng = rng }
}

// WithObserver registers an observer for generation statistics.
func WithObserver(o Observer) Option {
	return func(s *Simulation) { s.observers = append(s.observers, o) }
}

// Simulation holds the population, the world records, the species and the
// innovation history of a run. It is driven one tick at a time by Step and
// is not safe for concurrent use.
type Simulation struct {
	Config       *neat.Config
	History      *neat.History
	SpeciesSet   *SpeciesSet
	Reproduction *Reproduction

	population []*Creature
	info       map[*Creature]*Info

	tick       int
	generation int
	births     int
	deaths     int

	rng       *rand.Rand
	logger    *slog.Logger
	observers []Observer
}

// New validates cfg and creates a simulation with population_size creatures
// built from the base genome, placed at random positions and catalogued into
// species.
func New(cfg *neat.Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sc := cfg.Simulation
	s := &Simulation{
		Config:     cfg,
		History:    neat.NewHistory(1, sc.CreatureInputs+sc.CreatureOutputs+1),
		SpeciesSet: NewSpeciesSet(cfg.Speciation),
		info:       make(map[*Creature]*Info, sc.PopulationSize),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		seed := sc.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	s.Reproduction = NewReproduction(cfg, s.History, s.rng)

	for range sc.PopulationSize {
		dna, err := s.BaseDna()
		if err != nil {
			return nil, err
		}
		s.admit(s.spawn(dna))
	}

	s.logger.Info("simulation created",
		"population", len(s.population),
		"species", len(s.SpeciesSet.Species),
		"innovations", s.History.Len())
	return s, nil
}

// BaseDna builds a genome with fresh biases and weights in the starting
// layout. In the connected layout every input is wired to every output
// through connection innovations, so all base genomes share the same
// connection numbers.
func (s *Simulation) BaseDna() (*neat.Dna, error) {
	sc, g := s.Config.Simulation, s.Config.Genome

	nodes := make(map[int]*neat.Node, sc.CreatureInputs+sc.CreatureOutputs)
	for num := 1; num <= sc.CreatureInputs; num++ {
		nodes[num] = neat.NewInputNode(num)
	}
	for num := sc.CreatureInputs + 1; num <= sc.CreatureInputs+sc.CreatureOutputs; num++ {
		nodes[num] = neat.NewOutputNode(num, g.BiasRange, g.Activation, s.rng)
	}
	dna, err := neat.NewDnaFrom(sc.CreatureInputs, sc.CreatureOutputs, g.WeightRange, g.BiasRange,
		g.Activation, nodes, nil)
	if err != nil {
		return nil, fmt.Errorf("building base genome: %w", err)
	}
	if g.BaseDna != neat.BaseDnaConnected {
		return dna, nil
	}

	var mutations []*neat.Mutation
	for _, src := range dna.InputNodes() {
		for _, dst := range dna.OutputNodes() {
			m := neat.NewConnectionMutation(src.Number, dst.Number, g.WeightRange, s.rng)
			if _, err := s.History.Resolve(m); err != nil {
				return nil, fmt.Errorf("building base genome: %w", err)
			}
			mutations = append(mutations, m)
		}
	}
	if err := dna.Update(mutations); err != nil {
		return nil, fmt.Errorf("building base genome: %w", err)
	}
	return dna, nil
}

// spawn creates a creature around dna with a fresh name and colours.
func (s *Simulation) spawn(dna *neat.Dna) *Creature {
	name := fmt.Sprintf("Creature-%d", s.Reproduction.getNextKey())
	c := NewCreature(name, dna, s.Config.Simulation.CreatureHealth)
	c.Colors = colorPair(s.rng)
	return c
}

// admit places c at a random position and catalogues it into a species.
func (s *Simulation) admit(c *Creature) {
	sc := s.Config.Simulation
	s.population = append(s.population, c)
	s.info[c] = &Info{
		X:     s.rng.Float64() * sc.WorldWidth,
		Y:     s.rng.Float64() * sc.WorldHeight,
		Scale: sc.CreatureScale,
	}

	if sp, created := s.SpeciesSet.Catalogue(c, s.generation); created {
		s.logger.Debug("species created", "species", sp.ID, "representative", c.Name, "representative_id", c.ID)
	}
}

// remove takes c out of the population, the world and its species.
func (s *Simulation) remove(c *Creature) {
	s.population = slices.DeleteFunc(s.population, func(m *Creature) bool { return m == c })
	delete(s.info, c)
	if sp := s.SpeciesSet.Remove(c); sp != nil {
		s.logger.Debug("species extinct", "species", sp.ID, "created", sp.Created)
	}
	s.deaths++
}

// Birth creates a child of a and b: crossover or clone, then mutation, then
// admission into the population and a species.
func (s *Simulation) Birth(a, b *Creature) (*Creature, error) {
	dna, err := s.Reproduction.Offspring(a, b)
	if err != nil {
		return nil, err
	}
	child := s.spawn(dna)
	mutations, err := s.Reproduction.GenerateMutations(child.Dna)
	if err != nil {
		return nil, err
	}
	if err := child.Update(mutations); err != nil {
		return nil, fmt.Errorf("mutating child of %s and %s: %w", a.Name, b.Name, err)
	}

	s.admit(child)
	s.births++
	s.logger.Debug("creature born",
		"name", child.Name,
		"id", child.ID,
		"parent_ids", []string{a.ID.String(), b.ID.String()},
		"parents", []string{a.Name, b.Name},
		"species", child.Species,
		"mutations", len(mutations))
	return child, nil
}

// replace removes every creature in cs and fills each place with a new
// birth. Parents are drawn from the survivors. When nobody survives the
// first newcomer is built from the base genome.
func (s *Simulation) replace(cs []*Creature) error {
	for _, c := range cs {
		s.remove(c)
	}
	for range cs {
		if len(s.population) == 0 {
			dna, err := s.BaseDna()
			if err != nil {
				return err
			}
			c := s.spawn(dna)
			s.admit(c)
			s.births++
			s.logger.Debug("creature spawned from base genome", "name", c.Name, "id", c.ID)
			continue
		}
		a, b, err := s.Reproduction.SelectParents(s.SpeciesSet)
		if err != nil {
			return err
		}
		if _, err := s.Birth(a, b); err != nil {
			return err
		}
	}
	return nil
}

// Step advances the simulation by one tick.
//
// Every creature first decides on an action from the same pre-tick snapshot
// of the world; only then are the actions applied. Creatures whose health
// runs out are replaced by new births, and every generation_time ticks the
// least fit cull_rate fraction of the population is replaced as well.
func (s *Simulation) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	actions, err := s.decide(ctx)
	if err != nil {
		return fmt.Errorf("tick %d: %w", s.tick, err)
	}

	sc := s.Config.Simulation
	var dead []*Creature
	for i, c := range s.population {
		info := s.info[c]
		*info = info.Move(actions[i], sc.WorldWidth, sc.WorldHeight)
		c.Fitness += actions[i].Distance()
		c.Age++
		c.Health--
		if !c.Alive() {
			dead = append(dead, c)
		}
	}
	if err := s.replace(dead); err != nil {
		return fmt.Errorf("tick %d: replacing the dead: %w", s.tick, err)
	}

	s.tick++
	if s.tick%sc.GenerationTime == 0 {
		if err := s.endGeneration(); err != nil {
			return fmt.Errorf("generation %d: %w", s.generation, err)
		}
	}
	return nil
}

// decide computes the action of every creature against a snapshot of the
// world. With more than one worker the creatures are evaluated in parallel;
// each goroutine only touches its own creature's network.
func (s *Simulation) decide(ctx context.Context) ([]Action, error) {
	sc := s.Config.Simulation
	snapshot := make([]Info, len(s.population))
	for i, c := range s.population {
		snapshot[i] = *s.info[c]
	}
	actions := make([]Action, len(s.population))

	think := func(i int) error {
		c := s.population[i]
		decisions := make([][]float64, 0, len(snapshot)-1)
		for j, other := range snapshot {
			if j == i {
				continue
			}
			out, err := c.Think(Sense(snapshot[i], other, sc.WorldWidth, sc.WorldHeight, sc.CreatureInputs))
			if err != nil {
				return err
			}
			decisions = append(decisions, out)
		}
		actions[i] = Interpret(decisions, sc.SpeedScaling)
		return nil
	}

	if sc.Workers <= 1 {
		for i := range s.population {
			if err := think(i); err != nil {
				return nil, err
			}
		}
		return actions, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(sc.Workers)
	for i := range s.population {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return think(i)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return actions, nil
}

// endGeneration reports the generation that just ended and replaces the
// least fit creatures.
func (s *Simulation) endGeneration() error {
	stats := s.Stats()
	s.logger.Info("generation complete", "stats", stats)
	for _, o := range s.observers {
		if err := o.ObserveGeneration(stats); err != nil {
			return fmt.Errorf("observing generation: %w", err)
		}
	}

	ranked := slices.Clone(s.population)
	slices.SortStableFunc(ranked, func(a, b *Creature) int { return cmp.Compare(a.Fitness, b.Fitness) })
	cull := int(s.Config.Simulation.CullRate * float64(len(ranked)))
	if err := s.replace(ranked[:cull]); err != nil {
		return fmt.Errorf("culling: %w", err)
	}

	s.generation++
	s.births, s.deaths = 0, 0
	return nil
}

// Run steps the simulation ticks times, or until ctx is cancelled when ticks
// is not positive.
func (s *Simulation) Run(ctx context.Context, ticks int) error {
	for i := 0; ticks <= 0 || i < ticks; i++ {
		if err := s.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Stats summarizes the current population.
func (s *Simulation) Stats() telemetry.GenerationStats {
	samples := make([]telemetry.Sample, len(s.population))
	for i, c := range s.population {
		samples[i] = telemetry.Sample{
			Fitness:     c.Fitness,
			Hidden:      c.Dna.HiddenCount(),
			Connections: len(c.Dna.EnabledConnections()),
			Recurrent:   c.Dna.Recurrent(),
			Age:         c.Age,
		}
	}
	stats := telemetry.Collect(s.generation, s.tick, samples)
	stats.Species = len(s.SpeciesSet.Species)
	stats.Births = s.births
	stats.Deaths = s.deaths
	stats.Innovations = s.History.Len()
	return stats
}

// Creatures returns the live creatures in admission order.
func (s *Simulation) Creatures() []*Creature {
	return slices.Clone(s.population)
}

// Info returns the world record of c.
func (s *Simulation) Info(c *Creature) (Info, bool) {
	info, ok := s.info[c]
	if !ok {
		return Info{}, false
	}
	return *info, true
}

// Species returns the current species in creation order.
func (s *Simulation) Species() []*Species {
	return slices.Clone(s.SpeciesSet.Species)
}

// Tick returns the number of ticks run so far.
func (s *Simulation) Tick() int { return s.tick }

// Generation returns the number of completed generations.
func (s *Simulation) Generation() int { return s.generation }
