package neat

import (
	"fmt"
	"math/rand/v2"
)

// MutationKind discriminates the variants of Mutation.
type MutationKind int

const (
	WeightChange  MutationKind = iota // Perturb or reroll a connection weight.
	BiasChange                        // Perturb or reroll a node bias.
	ConnectionAdd                     // Add a connection between two existing nodes.
	NodeSplit                         // Split a connection with a new hidden node.
)

func (k MutationKind) String() string {
	switch k {
	case WeightChange:
		return "WeightMutation"
	case BiasChange:
		return "BiasMutation"
	case ConnectionAdd:
		return "ConnectionMutation"
	case NodeSplit:
		return "NodeMutation"
	}
	return fmt.Sprintf("MutationKind(%d)", int(k))
}

// Mutation describes one atomic change to a genome. Only the fields relevant
// to Kind are set. ConnectionAdd and NodeSplit are innovations: their numbers
// are zero until resolved against a History.
type Mutation struct {
	Kind MutationKind

	// WeightChange
	ConnectionNumber int
	OldWeight        float64
	NewWeight        float64

	// BiasChange
	NodeNumber int
	OldBias    float64
	NewBias    float64

	// ConnectionAdd
	Connection *Connection

	// NodeSplit: Src -> DstConnection -> Node -> SrcConnection -> Dst.
	SplitNumber   int
	Node          *Node
	DstConnection *Connection // Has the new node as its destination.
	SrcConnection *Connection // Has the new node as its source.
}

// NewWeightMutation perturbs the weight of conn with probability perturbRate,
// otherwise draws a fresh weight from [-weightRange, +weightRange].
func NewWeightMutation(conn *Connection, perturbRate, perturbAmount, weightRange float64, rng *rand.Rand) *Mutation {
	return &Mutation{
		Kind:             WeightChange,
		ConnectionNumber: conn.Number,
		OldWeight:        conn.Weight,
		NewWeight:        perturb(conn.Weight, perturbRate, perturbAmount, weightRange, rng),
	}
}

// NewBiasMutation perturbs the bias of node with probability perturbRate,
// otherwise draws a fresh bias from [-biasRange, +biasRange].
func NewBiasMutation(node *Node, perturbRate, perturbAmount, biasRange float64, rng *rand.Rand) *Mutation {
	return &Mutation{
		Kind:       BiasChange,
		NodeNumber: node.Number,
		OldBias:    node.Bias,
		NewBias:    perturb(node.Bias, perturbRate, perturbAmount, biasRange, rng),
	}
}

// NewConnectionMutation proposes a new connection src -> dst with a random weight.
func NewConnectionMutation(src, dst int, weightRange float64, rng *rand.Rand) *Mutation {
	return &Mutation{
		Kind:       ConnectionAdd,
		Connection: NewConnection(0, src, dst, weightRange, rng),
	}
}

// NewNodeMutation proposes splitting split with a new hidden node.
// The node bias is drawn once here and carried to every genome that
// reuses the innovation.
func NewNodeMutation(split *Connection, weightRange, biasRange float64, activation string, rng *rand.Rand) *Mutation {
	return &Mutation{
		Kind:          NodeSplit,
		SplitNumber:   split.Number,
		Node:          NewHiddenNode(0, biasRange, activation, rng),
		DstConnection: NewConnection(0, split.Src, 0, weightRange, rng),
		SrcConnection: NewConnection(0, 0, split.Dst, weightRange, rng),
	}
}

func perturb(value, perturbRate, perturbAmount, valueRange float64, rng *rand.Rand) float64 {
	if chance(rng, perturbRate) {
		return value + symmetric(rng, perturbAmount)
	}
	return symmetric(rng, valueRange)
}

// IsInnovation reports whether the mutation must be resolved against the
// innovation history before it is applied.
func (m *Mutation) IsInnovation() bool {
	return m.Kind == ConnectionAdd || m.Kind == NodeSplit
}

// Resolved reports whether all numbers of the mutation are assigned.
func (m *Mutation) Resolved() bool {
	switch m.Kind {
	case ConnectionAdd:
		return m.Connection != nil && m.Connection.Number != 0
	case NodeSplit:
		return m.Node != nil && m.Node.Number != 0 &&
			m.DstConnection != nil && m.DstConnection.Number != 0 &&
			m.SrcConnection != nil && m.SrcConnection.Number != 0
	}
	return true
}

// InnovationKey is the structural identity of an innovation.
type InnovationKey struct {
	Kind  MutationKind
	Pair  Pair // ConnectionAdd
	Split int  // NodeSplit
}

// Key returns the structural identity used to deduplicate innovations.
func (m *Mutation) Key() InnovationKey {
	switch m.Kind {
	case ConnectionAdd:
		return InnovationKey{Kind: ConnectionAdd, Pair: m.Connection.Pair()}
	case NodeSplit:
		return InnovationKey{Kind: NodeSplit, Split: m.SplitNumber}
	}
	return InnovationKey{Kind: m.Kind}
}

// connections returns the connections an innovation introduces.
func (m *Mutation) connections() []*Connection {
	switch m.Kind {
	case ConnectionAdd:
		return []*Connection{m.Connection}
	case NodeSplit:
		return []*Connection{m.DstConnection, m.SrcConnection}
	}
	return nil
}

// configure copies the concrete numbers of a past innovation onto m.
func (m *Mutation) configure(past *Mutation) {
	switch m.Kind {
	case ConnectionAdd:
		for _, c := range past.connections() {
			if c.Pair() == m.Connection.Pair() {
				m.Connection.Number = c.Number
				return
			}
		}
	case NodeSplit:
		m.Node.Number = past.Node.Number
		m.Node.Bias = past.Node.Bias
		m.DstConnection.Number = past.DstConnection.Number
		m.SrcConnection.Number = past.SrcConnection.Number
		m.DstConnection.Dst = m.Node.Number
		m.SrcConnection.Src = m.Node.Number
	}
}

// assign gives m fresh numbers from the counters and returns the advanced counters.
// A node split consumes its numbers in the order dst-connection, node, src-connection.
func (m *Mutation) assign(connectionCount, nodeCount int) (int, int) {
	switch m.Kind {
	case ConnectionAdd:
		m.Connection.Number = connectionCount
		connectionCount++
	case NodeSplit:
		m.DstConnection.Number = connectionCount
		connectionCount++
		m.Node.Number = nodeCount
		nodeCount++
		m.SrcConnection.Number = connectionCount
		connectionCount++
		m.DstConnection.Dst = m.Node.Number
		m.SrcConnection.Src = m.Node.Number
	}
	return connectionCount, nodeCount
}

// String returns a string representation of the Mutation.
func (m *Mutation) String() string {
	switch m.Kind {
	case WeightChange:
		return fmt.Sprintf("<%s ##%d: %.2f => %.2f>", m.Kind, m.ConnectionNumber, m.OldWeight, m.NewWeight)
	case BiasChange:
		return fmt.Sprintf("<%s #%d bias: %.3f => %.3f>", m.Kind, m.NodeNumber, m.OldBias, m.NewBias)
	case ConnectionAdd:
		return fmt.Sprintf("<%s :: %s>", m.Kind, m.Connection)
	case NodeSplit:
		return fmt.Sprintf("<%s :: Split: %d | Src: %s | Node: %s | Dst: %s>",
			m.Kind, m.SplitNumber, m.DstConnection, m.Node, m.SrcConnection)
	}
	return fmt.Sprintf("<%s>", m.Kind)
}
