package neat

import (
	"fmt"
	"math/rand/v2"
)

// Crossover builds a child genome from two parents.
//
// Matching genes are inherited from either parent with equal probability,
// independently per gene. Disjoint and excess genes come from the strictly
// fitter parent only; when fitness is tied every such gene is inherited from
// the parent that has it. Each inherited connection brings both of its
// endpoint nodes from the same parent; a node already inherited through an
// earlier (lower numbered) gene is kept. Input and output nodes are always
// present in the child. The child shares no nodes or connections with its
// parents.
func Crossover(a, b *Dna, fitnessA, fitnessB float64, rng *rand.Rand) (*Dna, error) {
	if a.Inputs != b.Inputs || a.Outputs != b.Outputs {
		return nil, fmt.Errorf("crossover of incompatible genomes: %d/%d and %d/%d inputs/outputs",
			a.Inputs, a.Outputs, b.Inputs, b.Outputs)
	}

	cmp := CompareGenomes(a, b)
	nodes := make(map[int]*Node)
	connections := make(map[int]*Connection)

	inherit := func(from *Dna, num int) {
		c := from.Connections[num]
		connections[num] = c.Copy()
		for _, endpoint := range []int{c.Src, c.Dst} {
			if _, ok := nodes[endpoint]; !ok {
				nodes[endpoint] = from.Nodes[endpoint].Copy()
			}
		}
	}

	matching := make(map[int]bool, len(cmp.Matching))
	for _, num := range cmp.Matching {
		matching[num] = true
	}

	for num := 1; num <= cmp.MaxNumber; num++ {
		_, inA := a.Connections[num]
		_, inB := b.Connections[num]
		switch {
		case matching[num]:
			if rng.IntN(2) == 0 {
				inherit(a, num)
			} else {
				inherit(b, num)
			}
		case inA && fitnessA >= fitnessB:
			inherit(a, num)
		case inB && fitnessB >= fitnessA:
			inherit(b, num)
		}
	}

	primary := a
	if fitnessB > fitnessA {
		primary = b
	}
	for _, role := range []NodeRole{InputNode, OutputNode} {
		for _, n := range primary.nodesByRole(role) {
			if _, ok := nodes[n.Number]; !ok {
				nodes[n.Number] = n.Copy()
			}
		}
	}

	child, err := NewDnaFrom(primary.Inputs, primary.Outputs, primary.WeightRange, primary.BiasRange,
		primary.Activation, nodes, connections)
	if err != nil {
		return nil, fmt.Errorf("building crossover child: %w", err)
	}
	return child, nil
}
