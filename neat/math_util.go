package neat

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// clamp restricts a value to a given range [minVal, maxVal].
func clamp(value, minVal, maxVal float64) float64 {
	return math.Max(minVal, math.Min(value, maxVal))
}

// symmetric draws a value uniformly from [-r, +r].
func symmetric(rng *rand.Rand, r float64) float64 {
	return rng.Float64()*r*2 - r
}

// chance reports whether a Bernoulli trial with probability p succeeds.
func chance(rng *rand.Rand, p float64) bool {
	return p > 0 && rng.Float64() < p
}

// Mean calculates the average of a slice of float64 values.
// Returns 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	return stat.Mean(values, nil)
}

// sortedKeys returns the keys of an int-keyed map in ascending order.
// Map iteration order is random; anything that feeds a random choice goes
// through here so a seeded run stays reproducible.
func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
