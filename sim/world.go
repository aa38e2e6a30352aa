package sim

import (
	"math"
)

// Decision output layout of a creature network.
const (
	DecisionLeft = iota
	DecisionRight
	DecisionUp
	DecisionDown
	DecisionUrgency
	decisionSize
)

// Info is the world record of one creature: where it is, how big it is drawn
// and which way it last moved. It is owned by the simulation.
type Info struct {
	X           float64
	Y           float64
	Scale       float64
	Orientation float64 // Radians, direction of the last non-zero move.
}

// Action is the displacement a creature decided on for one tick.
type Action struct {
	DX float64
	DY float64
}

// Distance returns the length of the displacement.
func (a Action) Distance() float64 {
	return math.Hypot(a.DX, a.DY)
}

// Sense builds the sensory input of self looking at other: the position
// difference normalized by the world size. The vector is resized to inputs
// values, padding with zeros.
func Sense(self, other Info, width, height float64, inputs int) []float64 {
	sense := []float64{
		(self.X - other.X) / width,
		(self.Y - other.Y) / height,
	}
	if inputs == len(sense) {
		return sense
	}
	out := make([]float64, inputs)
	copy(out, sense)
	return out
}

// Interpret folds the decisions a creature made towards every other creature
// into one action. Each decision moves towards the stronger of left/right and
// of up/down, weighted by its urgency; the result is averaged over the
// decisions and scaled by speedScaling. Missing decision values read as zero.
func Interpret(decisions [][]float64, speedScaling float64) Action {
	if len(decisions) == 0 {
		return Action{}
	}

	var moveX, moveY float64
	for _, d := range decisions {
		var v [decisionSize]float64
		copy(v[:], d)
		urgency := v[DecisionUrgency]
		switch {
		case v[DecisionRight] > v[DecisionLeft]:
			moveX += v[DecisionRight] * urgency
		case v[DecisionRight] < v[DecisionLeft]:
			moveX -= v[DecisionLeft] * urgency
		}
		switch {
		case v[DecisionUp] > v[DecisionDown]:
			moveY += v[DecisionUp] * urgency
		case v[DecisionUp] < v[DecisionDown]:
			moveY -= v[DecisionDown] * urgency
		}
	}
	n := float64(len(decisions))
	return Action{
		DX: moveX * speedScaling / n,
		DY: moveY * speedScaling / n,
	}
}

// Move applies a to the record and keeps the creature inside the world box.
func (i Info) Move(a Action, width, height float64) Info {
	i.X = clamp(i.X+a.DX, 0, width)
	i.Y = clamp(i.Y+a.DY, 0, height)
	if a.DX != 0 || a.DY != 0 {
		i.Orientation = math.Atan2(a.DY, a.DX)
	}
	return i
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
