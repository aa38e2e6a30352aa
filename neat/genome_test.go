package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// splitFirst returns a 2-input 1-output genome whose connection 1 (1 -> 3)
// is split by hidden node 4, together with the history that numbered it.
func splitFirst(t *testing.T) (*Dna, *History) {
	t.Helper()
	rng := testRand()
	d := NewDna(2, 1, 2, 2, DefaultActivation, rng)
	h := NewHistory(3, 4)

	m := NewNodeMutation(d.Connections[1], 2, 2, DefaultActivation, rng)
	_, err := h.Resolve(m)
	require.NoError(t, err)
	require.NoError(t, d.Update([]*Mutation{m}))
	return d, h
}

func TestNewDna(t *testing.T) {
	d := NewDna(2, 3, 2, 2, DefaultActivation, testRand())

	assert.Len(t, d.InputNodes(), 2)
	assert.Len(t, d.OutputNodes(), 3)
	assert.Zero(t, d.HiddenCount())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, d.SortedNodeNumbers())
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, d.SortedConnectionNumbers())

	// Input-major numbering.
	assert.Equal(t, Pair{Src: 1, Dst: 3}, d.Connections[1].Pair())
	assert.Equal(t, Pair{Src: 1, Dst: 5}, d.Connections[3].Pair())
	assert.Equal(t, Pair{Src: 2, Dst: 3}, d.Connections[4].Pair())

	for num, adj := range d.NodeConnections {
		switch d.Nodes[num].Role {
		case InputNode:
			assert.Len(t, adj.Outgoing, 3)
			assert.Empty(t, adj.Incoming)
		case OutputNode:
			assert.Len(t, adj.Incoming, 2)
			assert.Empty(t, adj.Outgoing)
		}
	}
}

func TestNewDnaFromValidates(t *testing.T) {
	nodes := map[int]*Node{1: NewInputNode(1), 2: {Number: 2, Role: OutputNode}}

	_, err := NewDnaFrom(2, 1, 2, 2, "", nodes, nil)
	assert.Error(t, err, "input count mismatch")

	_, err = NewDnaFrom(1, 1, 2, 2, "", nodes, map[int]*Connection{
		1: {Number: 1, Src: 1, Dst: 9, Enabled: true},
	})
	assert.ErrorIs(t, err, ErrUnknownNode)

	_, err = NewDnaFrom(1, 1, 2, 2, "", nodes, map[int]*Connection{
		1: {Number: 1, Src: 2, Dst: 1, Enabled: true},
	})
	assert.Error(t, err, "connection into an input node")

	d, err := NewDnaFrom(1, 1, 2, 2, "", nodes, map[int]*Connection{
		1: {Number: 1, Src: 1, Dst: 2, Enabled: true},
	})
	require.NoError(t, err)
	assert.Len(t, d.NodeConnections[2].Incoming, 1)
}

func TestAvailableConnections(t *testing.T) {
	t.Run("fully connected base has nothing left", func(t *testing.T) {
		d := NewDna(2, 2, 2, 2, DefaultActivation, testRand())
		assert.Empty(t, d.AvailableConnections(false))
		assert.Empty(t, d.AvailableConnections(true))
	})

	t.Run("split genome", func(t *testing.T) {
		d, _ := splitFirst(t)
		// 1 -> 3 is disabled but still present, 1 -> 4 and 4 -> 3 came with the split.
		assert.Equal(t, []Pair{{Src: 2, Dst: 4}, {Src: 3, Dst: 4}}, d.AvailableConnections(false))
		assert.Equal(t, []Pair{{Src: 2, Dst: 4}}, d.AvailableConnections(true))
	})
}

func TestUpdateNodeSplit(t *testing.T) {
	d, _ := splitFirst(t)

	assert.Equal(t, 1, d.HiddenCount())
	assert.False(t, d.Connections[1].Enabled)
	assert.Equal(t, Pair{Src: 1, Dst: 4}, d.Connections[3].Pair())
	assert.Equal(t, Pair{Src: 4, Dst: 3}, d.Connections[4].Pair())
	assert.Len(t, d.NodeConnections[4].Incoming, 1)
	assert.Len(t, d.NodeConnections[4].Outgoing, 1)
	assert.Len(t, d.NodeConnections[3].Incoming, 3)
	assert.Len(t, d.EnabledConnections(), 3)
	assert.Equal(t, 4, d.MaxConnectionNumber())
}

func TestUpdateWeightAndBias(t *testing.T) {
	rng := testRand()
	d := NewDna(2, 1, 2, 2, DefaultActivation, rng)

	w := NewWeightMutation(d.Connections[2], 0, 0, 2, rng)
	b := NewBiasMutation(d.Nodes[3], 1, 0.1, 2, rng)
	require.NoError(t, d.Update([]*Mutation{w, b}))

	assert.Equal(t, w.NewWeight, d.Connections[2].Weight)
	assert.Equal(t, b.NewBias, d.Nodes[3].Bias)
	assert.InDelta(t, b.OldBias, b.NewBias, 0.1)
}

func TestUpdateErrors(t *testing.T) {
	rng := testRand()
	d := NewDna(2, 1, 2, 2, DefaultActivation, rng)

	err := d.Update([]*Mutation{NewConnectionMutation(3, 1, 2, rng)})
	assert.ErrorIs(t, err, ErrUnresolvedInnovation)

	err = d.Update([]*Mutation{{Kind: WeightChange, ConnectionNumber: 42}})
	assert.ErrorIs(t, err, ErrUnknownConnection)

	err = d.Update([]*Mutation{{Kind: BiasChange, NodeNumber: 42}})
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestUpdateIsAtomic(t *testing.T) {
	rng := testRand()

	t.Run("weight change before a failure", func(t *testing.T) {
		d := NewDna(2, 1, 2, 2, DefaultActivation, rng)
		before := d.Copy()

		w := NewWeightMutation(d.Connections[1], 0, 0, 2, rng)
		w.NewWeight = 99
		err := d.Update([]*Mutation{w, {Kind: WeightChange, ConnectionNumber: 42}})
		assert.ErrorIs(t, err, ErrUnknownConnection)
		assert.Equal(t, before.Connections[1].Weight, d.Connections[1].Weight)
		assert.Equal(t, before.String(), d.String())
	})

	t.Run("split with a bad endpoint", func(t *testing.T) {
		d := NewDna(2, 1, 2, 2, DefaultActivation, rng)
		h := NewHistory(3, 4)
		m := NewNodeMutation(d.Connections[1], 2, 2, DefaultActivation, rng)
		_, err := h.Resolve(m)
		require.NoError(t, err)
		m.SrcConnection.Dst = 42

		err = d.Update([]*Mutation{m})
		assert.ErrorIs(t, err, ErrUnknownNode)
		assert.True(t, d.Connections[1].Enabled)
		assert.NotContains(t, d.Nodes, 4)
		assert.Equal(t, []int{1, 2}, d.SortedConnectionNumbers())
		assert.Zero(t, d.HiddenCount())
		assert.Len(t, d.NodeConnections[3].Incoming, 2)
	})
}

func TestUpdateResolvedConnectionIsIdempotent(t *testing.T) {
	rng := testRand()
	d := NewDna(2, 1, 2, 2, DefaultActivation, rng)
	h := NewHistory(1, 4)

	// Resolves to number 1, which the genome already holds for 1 -> 3.
	m := NewConnectionMutation(1, 3, 2, rng)
	_, err := h.Resolve(m)
	require.NoError(t, err)
	require.Equal(t, 1, m.Connection.Number)

	for i := 0; i < 2; i++ {
		require.NoError(t, d.Update([]*Mutation{m}))
		assert.Len(t, d.Connections, 2)
		assert.Len(t, d.NodeConnections[3].Incoming, 2)
		assert.Len(t, d.NodeConnections[1].Outgoing, 1)
	}
}

func TestUpdateDoesNotAliasHistory(t *testing.T) {
	d, h := splitFirst(t)
	recorded := h.Innovations()[0]

	d.Connections[3].Weight = 123
	d.Nodes[4].Bias = 9
	assert.NotEqual(t, 123.0, recorded.DstConnection.Weight)
	assert.NotEqual(t, 9.0, recorded.Node.Bias)
}

func TestDnaCopy(t *testing.T) {
	d, _ := splitFirst(t)
	cp := d.Copy()

	require.Equal(t, d.SortedConnectionNumbers(), cp.SortedConnectionNumbers())
	require.Equal(t, d.SortedNodeNumbers(), cp.SortedNodeNumbers())
	for num, c := range d.Connections {
		assert.NotSame(t, c, cp.Connections[num])
		assert.Equal(t, *c, *cp.Connections[num])
	}
	for num, n := range d.Nodes {
		assert.NotSame(t, n, cp.Nodes[num])
	}

	cp.Connections[2].Weight = 50
	cp.Nodes[4].Bias = 50
	assert.NotEqual(t, 50.0, d.Connections[2].Weight)
	assert.NotEqual(t, 50.0, d.Nodes[4].Bias)
	assert.Equal(t, 1, cp.HiddenCount())
}

func TestRecurrent(t *testing.T) {
	d, h := splitFirst(t)
	assert.False(t, d.Recurrent())

	// Output 3 back into hidden 4 closes 4 -> 3 -> 4.
	m := NewConnectionMutation(3, 4, 2, testRand())
	_, err := h.Resolve(m)
	require.NoError(t, err)
	require.NoError(t, d.Update([]*Mutation{m}))
	assert.True(t, d.Recurrent())

	d.Connections[m.Connection.Number].Enabled = false
	assert.False(t, d.Recurrent())
}
