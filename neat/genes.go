package neat

import (
	"fmt"
	"math/rand/v2"
)

// NodeRole tags a node as an input, hidden or output unit.
type NodeRole int

const (
	InputNode NodeRole = iota
	HiddenNode
	OutputNode
)

func (r NodeRole) String() string {
	switch r {
	case InputNode:
		return "Input"
	case HiddenNode:
		return "Hidden"
	case OutputNode:
		return "Output"
	}
	return fmt.Sprintf("NodeRole(%d)", int(r))
}

// --------------------------- Node ---------------------------

// Node represents a neuron in the genome. Output nodes evaluate exactly like
// hidden nodes; the role only matters for queries.
type Node struct {
	Number     int // Unique within a genome; shared across genomes for the same innovation.
	Role       NodeRole
	Bias       float64 // Ignored for input nodes.
	Activation string  // Name of the activation function, see ActivationFunctions.

	activate ActivationType
	sum      float64
	latched  bool
	output   float64
}

// NewInputNode creates an input node. Input nodes carry no bias.
func NewInputNode(number int) *Node {
	return &Node{Number: number, Role: InputNode}
}

// NewHiddenNode creates a hidden node with a bias drawn uniformly from [-biasRange, +biasRange].
func NewHiddenNode(number int, biasRange float64, activation string, rng *rand.Rand) *Node {
	return newBiasedNode(number, HiddenNode, biasRange, activation, rng)
}

// NewOutputNode creates an output node with a bias drawn uniformly from [-biasRange, +biasRange].
func NewOutputNode(number int, biasRange float64, activation string, rng *rand.Rand) *Node {
	return newBiasedNode(number, OutputNode, biasRange, activation, rng)
}

func newBiasedNode(number int, role NodeRole, biasRange float64, activation string, rng *rand.Rand) *Node {
	return &Node{
		Number:     number,
		Role:       role,
		Bias:       symmetric(rng, biasRange),
		Activation: activation,
	}
}

// String returns a string representation of the Node.
func (n *Node) String() string {
	if n.Role == InputNode {
		return fmt.Sprintf("<%s #%d>", n.Role, n.Number)
	}
	return fmt.Sprintf("<%s #%d bias: %.3f>", n.Role, n.Number, n.Bias)
}

// Copy creates a deep copy of the Node with cleared transient state.
func (n *Node) Copy() *Node {
	return &Node{
		Number:     n.Number,
		Role:       n.Role,
		Bias:       n.Bias,
		Activation: n.Activation,
		activate:   n.activate,
	}
}

// Reset clears the transient input and output of the node.
// Must be called for every node before each evaluation pass.
func (n *Node) Reset() {
	n.sum = 0
	n.latched = false
	n.output = 0
}

// Latch sets the value of an input node. Only the first call after a Reset
// is honoured; later calls in the same pass are ignored.
func (n *Node) Latch(value float64) {
	if n.latched {
		return
	}
	n.latched = true
	n.output = value
}

// SetInputs stores the sum of the weighted incoming values of a hidden or output node.
func (n *Node) SetInputs(values []float64) {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	n.sum = sum
}

// Output returns the latched value for input nodes, otherwise activation(sum) + bias.
func (n *Node) Output() float64 {
	if n.Role == InputNode {
		return n.output
	}
	n.output = n.activation()(n.sum) + n.Bias
	return n.output
}

func (n *Node) activation() ActivationType {
	if n.activate == nil {
		fn, err := GetActivation(n.Activation)
		if err != nil {
			fn = Sigmoid
		}
		n.activate = fn
	}
	return n.activate
}

// --------------------------- Connection ---------------------------

// Connection is a directed, weighted edge between two node numbers.
// Number is the innovation number of the (Src, Dst) pair.
type Connection struct {
	Number  int
	Src     int
	Dst     int
	Weight  float64
	Enabled bool
}

// NewConnection creates an enabled connection with a weight drawn uniformly
// from [-weightRange, +weightRange].
func NewConnection(number, src, dst int, weightRange float64, rng *rand.Rand) *Connection {
	return &Connection{
		Number:  number,
		Src:     src,
		Dst:     dst,
		Weight:  symmetric(rng, weightRange),
		Enabled: true,
	}
}

// String returns a string representation of the Connection.
func (c *Connection) String() string {
	state := ""
	if !c.Enabled {
		state = " disabled"
	}
	return fmt.Sprintf("<Connection ##%d: #%d -(%.2f)-> #%d%s>", c.Number, c.Src, c.Weight, c.Dst, state)
}

// Copy creates a deep copy of the Connection.
func (c *Connection) Copy() *Connection {
	cp := *c
	return &cp
}

// Pair returns the (src, dst) pair of the connection.
func (c *Connection) Pair() Pair {
	return Pair{Src: c.Src, Dst: c.Dst}
}

// Pair identifies a potential connection by its endpoints.
type Pair struct {
	Src int
	Dst int
}
