package nn

import (
	"errors"
	"fmt"

	"github.com/baldhumanity/neat-creatures/neat"
)

// ErrInputCount is returned when the number of inputs does not match the
// number of input nodes.
var ErrInputCount = errors.New("input count mismatch")

// Network is the phenotype of a Dna. It owns private copies of the genome's
// nodes so evaluating it never touches the genome, and it reads the enabled
// flag and weight of each connection at evaluation time.
//
// Cycles are allowed. Evaluation walks backwards from each output node and
// uses every connection at most once per output, so a recurrent edge simply
// stops contributing when it would revisit a connection.
//
// A Network is not safe for concurrent use; distinct networks are independent.
type Network struct {
	inputs   []*neat.Node
	outputs  []*neat.Node
	nodes    map[int]*neat.Node
	incoming map[int][]*neat.Connection
}

// New builds a Network from the current nodes and adjacency of dna.
// It must be rebuilt whenever the genome changes.
func New(dna *neat.Dna) *Network {
	net := &Network{
		nodes:    make(map[int]*neat.Node, len(dna.Nodes)),
		incoming: make(map[int][]*neat.Connection, len(dna.Nodes)),
	}
	for _, num := range dna.SortedNodeNumbers() {
		node := dna.Nodes[num].Copy()
		net.nodes[num] = node
		switch node.Role {
		case neat.InputNode:
			net.inputs = append(net.inputs, node)
		case neat.OutputNode:
			net.outputs = append(net.outputs, node)
		}
		if adj, ok := dna.NodeConnections[num]; ok {
			net.incoming[num] = adj.Incoming
		}
	}
	return net
}

// InputCount returns the number of values Output expects.
func (net *Network) InputCount() int { return len(net.inputs) }

// OutputCount returns the number of values Output produces.
func (net *Network) OutputCount() int { return len(net.outputs) }

// Output evaluates the network. inputs are latched onto the input nodes in
// ascending node order and one value is returned per output node, also in
// ascending node order.
func (net *Network) Output(inputs []float64) ([]float64, error) {
	if len(inputs) != len(net.inputs) {
		return nil, fmt.Errorf("%w: got %d values for %d input nodes", ErrInputCount, len(inputs), len(net.inputs))
	}

	for _, node := range net.nodes {
		node.Reset()
	}
	for i, node := range net.inputs {
		node.Latch(inputs[i])
	}

	outputs := make([]float64, len(net.outputs))
	for i, node := range net.outputs {
		visited := make(map[int]bool)
		outputs[i] = net.nodeOutput(node, visited)
	}
	return outputs, nil
}

// nodeOutput computes the output of node from its enabled, not yet visited
// incoming connections.
func (net *Network) nodeOutput(node *neat.Node, visited map[int]bool) float64 {
	if node.Role == neat.InputNode {
		return node.Output()
	}

	var values []float64
	for _, c := range net.incoming[node.Number] {
		if !c.Enabled || visited[c.Number] {
			continue
		}
		visited[c.Number] = true
		src, ok := net.nodes[c.Src]
		if !ok {
			continue
		}
		values = append(values, net.nodeOutput(src, visited)*c.Weight)
	}
	node.SetInputs(values)
	return node.Output()
}
