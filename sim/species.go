package sim

import (
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/baldhumanity/neat-creatures/neat"
)

// Species represents a group of genetically similar creatures.
type Species struct {
	ID             int         // Unique identifier for the species.
	Created        int         // Generation number when the species was created.
	Representative *Creature   // Kept even after the representative dies.
	Members        []*Creature // Live members in admission order.
	Color          Color
}

// NewSpecies creates a species represented by rep.
func NewSpecies(id, generation int, rep *Creature) *Species {
	return &Species{
		ID:             id,
		Created:        generation,
		Representative: rep,
		Color:          speciesColor(id),
	}
}

// Size returns the number of live members.
func (s *Species) Size() int {
	return len(s.Members)
}

// GetFitnesses returns a slice containing the fitness values of all members.
func (s *Species) GetFitnesses() []float64 {
	fitnesses := make([]float64, len(s.Members))
	for i, c := range s.Members {
		fitnesses[i] = c.Fitness
	}
	return fitnesses
}

// SharedFitnesses returns each member's fitness divided by the species size.
// Negative fitness counts as zero.
func (s *Species) SharedFitnesses() []float64 {
	shared := s.GetFitnesses()
	for i, f := range shared {
		shared[i] = max(f, 0)
	}
	if len(shared) > 0 {
		floats.Scale(1/float64(len(shared)), shared)
	}
	return shared
}

// Weight returns the sum of the members' shared fitness.
func (s *Species) Weight() float64 {
	return floats.Sum(s.SharedFitnesses())
}

// --------------------------- SpeciesSet ---------------------------

// SpeciesSet keeps the species of a run in creation order.
type SpeciesSet struct {
	Species   []*Species
	Indexer   int // Next species ID.
	Threshold float64
	Constants neat.DistanceConstants
}

// NewSpeciesSet creates an empty species set.
func NewSpeciesSet(cfg neat.SpeciationConfig) *SpeciesSet {
	return &SpeciesSet{
		Indexer:   1,
		Threshold: cfg.DistanceThreshold,
		Constants: cfg.DistanceConstants(),
	}
}

// Catalogue assigns c to the first species, in creation order, whose
// representative is closer than the threshold. If none is, c founds a new
// species and becomes its representative; created is true in that case.
func (ss *SpeciesSet) Catalogue(c *Creature, generation int) (s *Species, created bool) {
	for _, s := range ss.Species {
		if neat.GeneticDistance(c.Dna, s.Representative.Dna, ss.Constants) < ss.Threshold {
			s.Members = append(s.Members, c)
			c.Species = s.ID
			return s, false
		}
	}

	s = NewSpecies(ss.Indexer, generation, c)
	ss.Indexer++
	s.Members = append(s.Members, c)
	c.Species = s.ID
	ss.Species = append(ss.Species, s)
	return s, true
}

// Remove takes c out of its species. A species left without members is
// dropped and returned as extinct.
func (ss *SpeciesSet) Remove(c *Creature) (extinct *Species) {
	idx := slices.IndexFunc(ss.Species, func(s *Species) bool { return s.ID == c.Species })
	if idx < 0 {
		return nil
	}
	s := ss.Species[idx]
	s.Members = slices.DeleteFunc(s.Members, func(m *Creature) bool { return m == c })
	if len(s.Members) > 0 {
		return nil
	}
	ss.Species = slices.Delete(ss.Species, idx, idx+1)
	return s
}

// Get returns the species with the given ID, or nil.
func (ss *SpeciesSet) Get(id int) *Species {
	for _, s := range ss.Species {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Weights returns the weight of every species, in creation order.
func (ss *SpeciesSet) Weights() []float64 {
	weights := make([]float64, len(ss.Species))
	for i, s := range ss.Species {
		weights[i] = s.Weight()
	}
	return weights
}
