package sim

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/baldhumanity/neat-creatures/neat"
)

// ErrNoParents is returned when parents are requested from an empty population.
var ErrNoParents = errors.New("no creatures to select parents from")

// Reproduction handles parent selection, offspring genomes and the mutation
// of new genomes against the shared innovation history.
type Reproduction struct {
	Genome  neat.GenomeConfig
	Config  neat.ReproductionConfig
	History *neat.History

	NextCreatureKey int // Used to name creatures.

	rng *rand.Rand
}

// NewReproduction creates a new reproduction manager.
func NewReproduction(cfg *neat.Config, history *neat.History, rng *rand.Rand) *Reproduction {
	return &Reproduction{
		Genome:          cfg.Genome,
		Config:          cfg.Reproduction,
		History:         history,
		NextCreatureKey: 1,
		rng:             rng,
	}
}

// getNextKey gets the next available creature key and increments the internal counter.
func (r *Reproduction) getNextKey() int {
	key := r.NextCreatureKey
	r.NextCreatureKey++
	return key
}

// pick draws an index with probability proportional to its weight. When
// every weight is zero the draw is uniform.
func (r *Reproduction) pick(weights []float64) int {
	w := sampleuv.NewWeighted(weights, r.rng)
	if i, ok := w.Take(); ok {
		return i
	}
	return r.rng.IntN(len(weights))
}

// SelectParents chooses two parents using explicit fitness sharing.
//
// The first parent's species is drawn in proportion to its weight (the sum of
// its members' shared fitness). With probability InterSpeciesMate, and when
// more than one species exists, the second parent comes from a different
// species drawn the same way; otherwise from the same species. Within a
// species parents are drawn in proportion to shared fitness, and the first
// parent is never a candidate for the second. A creature alone in the
// population is returned as both parents.
func (r *Reproduction) SelectParents(ss *SpeciesSet) (a, b *Creature, err error) {
	if len(ss.Species) == 0 {
		return nil, nil, ErrNoParents
	}

	weights := ss.Weights()
	ia := r.pick(weights)
	speciesA, speciesB := ss.Species[ia], ss.Species[ia]
	if len(ss.Species) > 1 && r.rng.Float64() < r.Config.InterSpeciesMate {
		others := make([]int, 0, len(weights)-1)
		otherWeights := make([]float64, 0, len(weights)-1)
		for i, w := range weights {
			if i != ia {
				others = append(others, i)
				otherWeights = append(otherWeights, w)
			}
		}
		speciesB = ss.Species[others[r.pick(otherWeights)]]
	}

	a = speciesA.Members[r.pick(speciesA.SharedFitnesses())]

	shared := speciesB.SharedFitnesses()
	pool := make([]*Creature, 0, len(speciesB.Members))
	poolWeights := make([]float64, 0, len(speciesB.Members))
	for i, m := range speciesB.Members {
		if m != a {
			pool = append(pool, m)
			poolWeights = append(poolWeights, shared[i])
		}
	}
	if len(pool) == 0 {
		return a, a, nil
	}
	return a, pool[r.pick(poolWeights)], nil
}

// Offspring builds the genome of a child of a and b: a crossover with
// probability CrossoverRate, otherwise a deep copy of a randomly chosen
// parent. The genome is not mutated yet.
func (r *Reproduction) Offspring(a, b *Creature) (*neat.Dna, error) {
	if r.rng.Float64() < r.Config.CrossoverRate {
		dna, err := neat.Crossover(a.Dna, b.Dna, a.Fitness, b.Fitness, r.rng)
		if err != nil {
			return nil, fmt.Errorf("crossing %s with %s: %w", a.Name, b.Name, err)
		}
		return dna, nil
	}
	parent := a
	if r.rng.IntN(2) == 1 {
		parent = b
	}
	return parent.Dna.Copy(), nil
}

// Mutations runs four independent trials against the configured rates and
// returns one mutation for every trial that succeeds: a weight change of a
// random connection, a bias change of a random non-input node, a connection
// between a random available pair, and a split of a random enabled
// connection. Trials without a valid target produce nothing. Innovations in
// the result are not resolved.
func (r *Reproduction) Mutations(dna *neat.Dna) []*neat.Mutation {
	g := r.Genome
	var mutations []*neat.Mutation

	if r.rng.Float64() < g.WeightMutationRate {
		if numbers := dna.SortedConnectionNumbers(); len(numbers) > 0 {
			conn := dna.Connections[numbers[r.rng.IntN(len(numbers))]]
			mutations = append(mutations, neat.NewWeightMutation(conn,
				g.WeightPerturbRate, g.WeightPerturbAmount, g.WeightRange, r.rng))
		}
	}

	if r.rng.Float64() < g.BiasMutationRate {
		nodes := append(dna.HiddenNodes(), dna.OutputNodes()...)
		if len(nodes) > 0 {
			node := nodes[r.rng.IntN(len(nodes))]
			mutations = append(mutations, neat.NewBiasMutation(node,
				g.BiasPerturbRate, g.BiasPerturbAmount, g.BiasRange, r.rng))
		}
	}

	if r.rng.Float64() < g.ConnectionMutationRate {
		if pairs := dna.AvailableConnections(false); len(pairs) > 0 {
			p := pairs[r.rng.IntN(len(pairs))]
			mutations = append(mutations, neat.NewConnectionMutation(p.Src, p.Dst, g.WeightRange, r.rng))
		}
	}

	if r.rng.Float64() < g.NodeMutationRate {
		if enabled := dna.EnabledConnections(); len(enabled) > 0 {
			split := enabled[r.rng.IntN(len(enabled))]
			mutations = append(mutations, neat.NewNodeMutation(split,
				g.WeightRange, g.BiasRange, dna.Activation, r.rng))
		}
	}

	return mutations
}

// GenerateMutations draws the mutations of dna and resolves every innovation
// among them against the history.
func (r *Reproduction) GenerateMutations(dna *neat.Dna) ([]*neat.Mutation, error) {
	mutations := r.Mutations(dna)
	for _, m := range mutations {
		if _, err := r.History.Resolve(m); err != nil {
			return nil, fmt.Errorf("resolving %s: %w", m, err)
		}
	}
	return mutations, nil
}
