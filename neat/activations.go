package neat

import (
	"fmt"
	"math"
)

// SigmoidSteepness is the slope used by Sigmoid. The steep curve approximates
// a step function while staying differentiable.
const SigmoidSteepness = 4.9

// ActivationType defines the type for activation functions.
type ActivationType func(input float64) float64

// ActivationFunctions maps function names to the actual activation functions.
// This allows configuration to specify activations by name.
var ActivationFunctions = map[string]ActivationType{
	"sigmoid":  Sigmoid,
	"tanh":     Tanh,
	"relu":     ReLU,
	"identity": Identity,
	"clamped":  Clamped,
	"gaussian": Gaussian,
}

// DefaultActivation is used by nodes that do not name one.
const DefaultActivation = "sigmoid"

// GetActivation retrieves an activation function by name.
func GetActivation(name string) (ActivationType, error) {
	if name == "" {
		name = DefaultActivation
	}
	if fn, ok := ActivationFunctions[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown activation function: %s", name)
}

// Sigmoid is the logistic function 1 / (1 + exp(-4.9 * x)).
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-SigmoidSteepness*x))
}

// Tanh activation function.
func Tanh(x float64) float64 {
	return math.Tanh(x)
}

// ReLU (Rectified Linear Unit) activation function.
func ReLU(x float64) float64 {
	return math.Max(0, x)
}

// Identity activation function (linear).
func Identity(x float64) float64 {
	return x
}

// Clamped activation function (clamps output between -1 and 1).
func Clamped(x float64) float64 {
	return clamp(x, -1.0, 1.0)
}

// Gaussian activation function.
func Gaussian(x float64) float64 {
	return math.Exp(-x * x / 2.0)
}
