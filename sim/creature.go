package sim

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/baldhumanity/neat-creatures/neat"
	"github.com/baldhumanity/neat-creatures/neat/nn"
)

// Creature couples a genome with the network derived from it.
type Creature struct {
	ID      uuid.UUID
	Name    string
	Dna     *neat.Dna
	Network *nn.Network

	Fitness float64 // Accumulated over the creature's lifetime.
	Health  int     // Ticks left to live.
	Age     int     // Ticks lived.

	Colors  [2]Color // Primary and secondary.
	Species int      // ID of the species the creature was catalogued into.
}

// NewCreature creates a creature around dna and builds its network.
func NewCreature(name string, dna *neat.Dna, health int) *Creature {
	return &Creature{
		ID:      uuid.New(),
		Name:    name,
		Dna:     dna,
		Network: nn.New(dna),
		Health:  health,
	}
}

// Think evaluates the network on one sensory input vector.
func (c *Creature) Think(inputs []float64) ([]float64, error) {
	out, err := c.Network.Output(inputs)
	if err != nil {
		return nil, fmt.Errorf("creature %s: %w", c.Name, err)
	}
	return out, nil
}

// Update applies resolved mutations to the genome and rebuilds the network.
func (c *Creature) Update(mutations []*neat.Mutation) error {
	err := c.Dna.Update(mutations)
	c.Network = nn.New(c.Dna)
	if err != nil {
		return fmt.Errorf("creature %s: %w", c.Name, err)
	}
	return nil
}

// Alive reports whether the creature still has health left.
func (c *Creature) Alive() bool {
	return c.Health > 0
}

// String returns a string representation of the Creature.
func (c *Creature) String() string {
	return fmt.Sprintf("<%s species: %d fitness: %.3f health: %d hidden: %d connections: %d>",
		c.Name, c.Species, c.Fitness, c.Health, c.Dna.HiddenCount(), len(c.Dna.Connections))
}
