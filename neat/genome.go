package neat

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

var (
	// ErrUnknownNode is returned when a connection or mutation references a missing node.
	ErrUnknownNode = errors.New("unknown node")
	// ErrUnknownConnection is returned when a mutation references a missing connection.
	ErrUnknownConnection = errors.New("unknown connection")
)

// Adjacency lists the connections entering and leaving one node,
// ordered by connection number.
type Adjacency struct {
	Incoming []*Connection
	Outgoing []*Connection
}

// Dna is the genome of one creature: its nodes, its connections and the
// node-to-connection adjacency derived from them.
type Dna struct {
	Inputs      int
	Outputs     int
	WeightRange float64
	BiasRange   float64
	Activation  string

	Nodes           map[int]*Node       // node number -> node
	Connections     map[int]*Connection // innovation number -> connection
	NodeConnections map[int]*Adjacency  // node number -> derived adjacency

	hidden int
}

// NewDna creates a genome with inputs input nodes and outputs output nodes,
// fully connecting every input to every output.
func NewDna(inputs, outputs int, weightRange, biasRange float64, activation string, rng *rand.Rand) *Dna {
	d := &Dna{
		Inputs:      inputs,
		Outputs:     outputs,
		WeightRange: weightRange,
		BiasRange:   biasRange,
		Activation:  activation,
	}
	d.Nodes = d.GenerateNodes(rng)
	d.Connections = d.ConnectNodes(rng)
	d.rebuild()
	return d
}

// NewDnaFrom creates a genome from explicit nodes and connections. The node
// roles must match the declared input and output counts and every connection
// endpoint must exist.
func NewDnaFrom(inputs, outputs int, weightRange, biasRange float64, activation string,
	nodes map[int]*Node, connections map[int]*Connection) (*Dna, error) {
	if nodes == nil {
		nodes = make(map[int]*Node)
	}
	if connections == nil {
		connections = make(map[int]*Connection)
	}
	d := &Dna{
		Inputs:      inputs,
		Outputs:     outputs,
		WeightRange: weightRange,
		BiasRange:   biasRange,
		Activation:  activation,
		Nodes:       nodes,
		Connections: connections,
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	d.rebuild()
	return d, nil
}

func (d *Dna) validate() error {
	var in, out int
	for num, node := range d.Nodes {
		if num != node.Number {
			return fmt.Errorf("node keyed %d has number %d", num, node.Number)
		}
		switch node.Role {
		case InputNode:
			in++
		case OutputNode:
			out++
		}
	}
	if in != d.Inputs {
		return fmt.Errorf("genome declares %d inputs but has %d input nodes", d.Inputs, in)
	}
	if out != d.Outputs {
		return fmt.Errorf("genome declares %d outputs but has %d output nodes", d.Outputs, out)
	}
	for num, c := range d.Connections {
		if num != c.Number {
			return fmt.Errorf("connection keyed %d has number %d", num, c.Number)
		}
		if err := d.checkEndpoints(c); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dna) checkEndpoints(c *Connection) error {
	if _, ok := d.Nodes[c.Src]; !ok {
		return fmt.Errorf("connection %d source %d: %w", c.Number, c.Src, ErrUnknownNode)
	}
	dst, ok := d.Nodes[c.Dst]
	if !ok {
		return fmt.Errorf("connection %d destination %d: %w", c.Number, c.Dst, ErrUnknownNode)
	}
	if dst.Role == InputNode {
		return fmt.Errorf("connection %d targets input node %d", c.Number, c.Dst)
	}
	if c.Src == c.Dst {
		return fmt.Errorf("connection %d loops on node %d", c.Number, c.Src)
	}
	return nil
}

// GenerateNodes creates the input nodes (numbered 1..Inputs) followed by
// the output nodes (numbered Inputs+1..Inputs+Outputs).
func (d *Dna) GenerateNodes(rng *rand.Rand) map[int]*Node {
	nodes := make(map[int]*Node, d.Inputs+d.Outputs)
	for i := 1; i <= d.Inputs; i++ {
		nodes[i] = NewInputNode(i)
	}
	for i := d.Inputs + 1; i <= d.Inputs+d.Outputs; i++ {
		nodes[i] = NewOutputNode(i, d.BiasRange, d.Activation, rng)
	}
	return nodes
}

// ConnectNodes fully connects every input node to every output node.
// Connections are numbered from 1 in input-major order.
func (d *Dna) ConnectNodes(rng *rand.Rand) map[int]*Connection {
	connections := make(map[int]*Connection, d.Inputs*d.Outputs)
	number := 1
	for _, src := range d.nodesByRole(InputNode) {
		for _, dst := range d.nodesByRole(OutputNode) {
			connections[number] = NewConnection(number, src.Number, dst.Number, d.WeightRange, rng)
			number++
		}
	}
	return connections
}

// rebuild recomputes the adjacency map and the hidden node count.
// The previous adjacency is discarded entirely.
func (d *Dna) rebuild() {
	adjacency := make(map[int]*Adjacency, len(d.Nodes))
	d.hidden = 0
	for num, node := range d.Nodes {
		adjacency[num] = &Adjacency{}
		if node.Role == HiddenNode {
			d.hidden++
		}
	}
	for _, num := range sortedKeys(d.Connections) {
		c := d.Connections[num]
		if a, ok := adjacency[c.Src]; ok {
			a.Outgoing = append(a.Outgoing, c)
		}
		if a, ok := adjacency[c.Dst]; ok {
			a.Incoming = append(a.Incoming, c)
		}
	}
	d.NodeConnections = adjacency
}

func (d *Dna) nodesByRole(role NodeRole) []*Node {
	var nodes []*Node
	for _, num := range sortedKeys(d.Nodes) {
		if n := d.Nodes[num]; n.Role == role {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// InputNodes returns the input nodes ordered by number.
func (d *Dna) InputNodes() []*Node { return d.nodesByRole(InputNode) }

// HiddenNodes returns the hidden nodes ordered by number.
func (d *Dna) HiddenNodes() []*Node { return d.nodesByRole(HiddenNode) }

// OutputNodes returns the output nodes ordered by number.
func (d *Dna) OutputNodes() []*Node { return d.nodesByRole(OutputNode) }

// HiddenCount returns the number of hidden nodes.
func (d *Dna) HiddenCount() int { return d.hidden }

// SortedConnectionNumbers returns the connection numbers in ascending order.
func (d *Dna) SortedConnectionNumbers() []int { return sortedKeys(d.Connections) }

// SortedNodeNumbers returns the node numbers in ascending order.
func (d *Dna) SortedNodeNumbers() []int { return sortedKeys(d.Nodes) }

// EnabledConnections returns the enabled connections ordered by number.
func (d *Dna) EnabledConnections() []*Connection {
	var enabled []*Connection
	for _, num := range sortedKeys(d.Connections) {
		if c := d.Connections[num]; c.Enabled {
			enabled = append(enabled, c)
		}
	}
	return enabled
}

// MaxConnectionNumber returns the highest connection number, or 0 if the genome has no connections.
func (d *Dna) MaxConnectionNumber() int {
	maxNum := 0
	for num := range d.Connections {
		if num > maxNum {
			maxNum = num
		}
	}
	return maxNum
}

// AvailableConnections lists the (src, dst) pairs that could still be connected:
// dst is never an input node, output nodes never feed other output nodes, a
// node never connects to itself, and a pair already present as a connection
// (enabled or disabled) is never offered again. The result is ordered by
// (src, dst). If shallow is true the scan stops at the first candidate, which
// makes it an existence check only.
func (d *Dna) AvailableConnections(shallow bool) []Pair {
	existing := make(map[Pair]bool, len(d.Connections))
	for _, c := range d.Connections {
		existing[c.Pair()] = true
	}

	numbers := sortedKeys(d.Nodes)
	var pairs []Pair
	for _, srcNum := range numbers {
		src := d.Nodes[srcNum]
		for _, dstNum := range numbers {
			dst := d.Nodes[dstNum]
			if srcNum == dstNum || dst.Role == InputNode {
				continue
			}
			if src.Role == OutputNode && dst.Role == OutputNode {
				continue
			}
			p := Pair{Src: srcNum, Dst: dstNum}
			if existing[p] {
				continue
			}
			pairs = append(pairs, p)
			if shallow {
				return pairs
			}
		}
	}
	return pairs
}

// Update applies a batch of mutations. Weight and bias mutations overwrite the
// referenced field, connection mutations insert their connection and node
// mutations disable the split connection and insert the new node and both
// new connections. Innovations must already be resolved; Update performs no
// deduplication. The adjacency is recomputed afterwards.
//
// The batch is all or nothing: if any mutation fails the genome is restored
// to its state before the call.
func (d *Dna) Update(mutations []*Mutation) error {
	backup := d.Copy()
	for _, m := range mutations {
		if err := d.apply(m); err != nil {
			d.Nodes, d.Connections = backup.Nodes, backup.Connections
			d.rebuild()
			return fmt.Errorf("applying %s: %w", m.Kind, err)
		}
	}
	d.rebuild()
	return nil
}

func (d *Dna) apply(m *Mutation) error {
	if !m.Resolved() {
		return ErrUnresolvedInnovation
	}
	switch m.Kind {
	case WeightChange:
		c, ok := d.Connections[m.ConnectionNumber]
		if !ok {
			return fmt.Errorf("connection %d: %w", m.ConnectionNumber, ErrUnknownConnection)
		}
		c.Weight = m.NewWeight
	case BiasChange:
		n, ok := d.Nodes[m.NodeNumber]
		if !ok {
			return fmt.Errorf("node %d: %w", m.NodeNumber, ErrUnknownNode)
		}
		n.Bias = m.NewBias
	case ConnectionAdd:
		c := m.Connection.Copy()
		if err := d.checkEndpoints(c); err != nil {
			return err
		}
		d.Connections[c.Number] = c
	case NodeSplit:
		split, ok := d.Connections[m.SplitNumber]
		if !ok {
			return fmt.Errorf("split connection %d: %w", m.SplitNumber, ErrUnknownConnection)
		}
		node := m.Node.Copy()
		halves := []*Connection{m.DstConnection.Copy(), m.SrcConnection.Copy()}
		d.Nodes[node.Number] = node
		for _, c := range halves {
			if err := d.checkEndpoints(c); err != nil {
				return err
			}
		}
		split.Enabled = false
		for _, c := range halves {
			d.Connections[c.Number] = c
		}
	default:
		return fmt.Errorf("unknown mutation kind %d", int(m.Kind))
	}
	return nil
}

// Copy creates a deep copy of the genome. The copy shares no nodes or
// connections with the original.
func (d *Dna) Copy() *Dna {
	cp := &Dna{
		Inputs:      d.Inputs,
		Outputs:     d.Outputs,
		WeightRange: d.WeightRange,
		BiasRange:   d.BiasRange,
		Activation:  d.Activation,
		Nodes:       make(map[int]*Node, len(d.Nodes)),
		Connections: make(map[int]*Connection, len(d.Connections)),
	}
	for num, n := range d.Nodes {
		cp.Nodes[num] = n.Copy()
	}
	for num, c := range d.Connections {
		cp.Connections[num] = c.Copy()
	}
	cp.rebuild()
	return cp
}

// Recurrent reports whether the enabled connections contain a cycle.
func (d *Dna) Recurrent() bool {
	g := simple.NewDirectedGraph()
	for _, c := range d.EnabledConnections() {
		g.SetEdge(g.NewEdge(simple.Node(c.Src), simple.Node(c.Dst)))
	}
	_, err := topo.Sort(g)
	return err != nil
}

// String returns a multi-line description of the genome.
func (d *Dna) String() string {
	var b strings.Builder
	b.WriteString("Dna\n")
	fmt.Fprintf(&b, "Input  Nodes: %v\n", d.InputNodes())
	fmt.Fprintf(&b, "Hidden Nodes: %v\n", d.HiddenNodes())
	fmt.Fprintf(&b, "Output Nodes: %v\n", d.OutputNodes())
	b.WriteString("---  Connections ---\n")
	for _, num := range sortedKeys(d.Connections) {
		fmt.Fprintf(&b, "%s\n", d.Connections[num])
	}
	return b.String()
}
