package neat

import (
	"math"
)

// DistanceConstants weight the three terms of the compatibility distance.
type DistanceConstants struct {
	Excess      float64 // c1
	Disjoint    float64 // c2
	DeltaWeight float64 // c3
}

// GeneComparison lines up the connection genes of two genomes by innovation number.
type GeneComparison struct {
	Matching  []int // Present in both genomes.
	Disjoint  []int // Present in one genome, below the smaller genome's highest number.
	Excess    []int // Present in one genome, at or beyond the smaller genome's highest number.
	MaxNumber int   // Highest connection number across both genomes.
}

// CompareGenomes classifies every connection number of a and b as matching,
// disjoint or excess. A gene present in only one genome is disjoint when its
// number is below the smaller of the two genomes' highest numbers and excess
// otherwise. All slices are in ascending order.
func CompareGenomes(a, b *Dna) GeneComparison {
	aMax, bMax := a.MaxConnectionNumber(), b.MaxConnectionNumber()
	cutoff := min(aMax, bMax)
	cmp := GeneComparison{MaxNumber: max(aMax, bMax)}

	for num := 1; num <= cmp.MaxNumber; num++ {
		_, inA := a.Connections[num]
		_, inB := b.Connections[num]
		switch {
		case inA && inB:
			cmp.Matching = append(cmp.Matching, num)
		case !inA && !inB:
		case num < cutoff:
			cmp.Disjoint = append(cmp.Disjoint, num)
		default:
			cmp.Excess = append(cmp.Excess, num)
		}
	}
	return cmp
}

// GeneticDistance computes the NEAT compatibility distance
//
//	c1*|excess|/maxNumber + c2*|disjoint|/maxNumber + c3*mean(|Δweight| of matching genes)
//
// Two genomes without any connections are at distance zero.
func GeneticDistance(a, b *Dna, c DistanceConstants) float64 {
	cmp := CompareGenomes(a, b)
	if cmp.MaxNumber == 0 {
		return 0
	}

	deltas := make([]float64, len(cmp.Matching))
	for i, num := range cmp.Matching {
		deltas[i] = math.Abs(a.Connections[num].Weight - b.Connections[num].Weight)
	}

	n := float64(cmp.MaxNumber)
	return c.Excess*float64(len(cmp.Excess))/n +
		c.Disjoint*float64(len(cmp.Disjoint))/n +
		c.DeltaWeight*Mean(deltas)
}
