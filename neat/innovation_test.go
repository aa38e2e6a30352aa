package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveNodeSplitNumbering(t *testing.T) {
	rng := testRand()
	d := NewDna(2, 1, 2, 2, DefaultActivation, rng)
	h := NewHistory(3, 4)

	m := NewNodeMutation(d.Connections[2], 2, 2, DefaultActivation, rng)
	require.False(t, m.Resolved())

	reused, err := h.Resolve(m)
	require.NoError(t, err)
	assert.False(t, reused)
	assert.True(t, m.Resolved())

	// dst-connection, node, src-connection.
	assert.Equal(t, 3, m.DstConnection.Number)
	assert.Equal(t, 4, m.Node.Number)
	assert.Equal(t, 4, m.SrcConnection.Number)
	assert.Equal(t, Pair{Src: 2, Dst: 4}, m.DstConnection.Pair())
	assert.Equal(t, Pair{Src: 4, Dst: 3}, m.SrcConnection.Pair())

	assert.Equal(t, 5, h.ConnectionCount)
	assert.Equal(t, 5, h.NodeCount)
	assert.Equal(t, 1, h.Len())
}

func TestResolveReusesNodeSplit(t *testing.T) {
	rng := testRand()
	a := NewDna(2, 1, 2, 2, DefaultActivation, rng)
	b := NewDna(2, 1, 2, 2, DefaultActivation, rng)
	h := NewHistory(3, 4)

	first := NewNodeMutation(a.Connections[1], 2, 2, DefaultActivation, rng)
	_, err := h.Resolve(first)
	require.NoError(t, err)

	second := NewNodeMutation(b.Connections[1], 2, 2, DefaultActivation, rng)
	reused, err := h.Resolve(second)
	require.NoError(t, err)
	assert.True(t, reused)

	assert.Equal(t, first.Node.Number, second.Node.Number)
	assert.Equal(t, first.Node.Bias, second.Node.Bias)
	assert.Equal(t, first.DstConnection.Number, second.DstConnection.Number)
	assert.Equal(t, first.SrcConnection.Number, second.SrcConnection.Number)
	assert.Equal(t, first.DstConnection.Pair(), second.DstConnection.Pair())
	assert.Equal(t, first.SrcConnection.Pair(), second.SrcConnection.Pair())

	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 5, h.ConnectionCount)
	assert.Equal(t, 5, h.NodeCount)

	require.NoError(t, a.Update([]*Mutation{first}))
	require.NoError(t, b.Update([]*Mutation{second}))
	assert.Equal(t, a.SortedConnectionNumbers(), b.SortedConnectionNumbers())
	assert.Equal(t, a.SortedNodeNumbers(), b.SortedNodeNumbers())
}

func TestResolveConnections(t *testing.T) {
	rng := testRand()
	h := NewHistory(1, 4)

	a := NewConnectionMutation(1, 3, 2, rng)
	b := NewConnectionMutation(2, 3, 2, rng)
	again := NewConnectionMutation(1, 3, 2, rng)
	reversed := NewConnectionMutation(3, 1, 2, rng)

	for _, m := range []*Mutation{a, b} {
		reused, err := h.Resolve(m)
		require.NoError(t, err)
		assert.False(t, reused)
	}
	assert.Equal(t, 1, a.Connection.Number)
	assert.Equal(t, 2, b.Connection.Number)

	reused, err := h.Resolve(again)
	require.NoError(t, err)
	assert.True(t, reused)
	assert.Equal(t, 1, again.Connection.Number)
	assert.NotEqual(t, a.Connection.Weight, again.Connection.Weight, "weights are never shared")

	reused, err = h.Resolve(reversed)
	require.NoError(t, err)
	assert.False(t, reused, "direction is part of the key")
	assert.Equal(t, 3, reversed.Connection.Number)
	assert.Equal(t, 4, h.ConnectionCount)
	assert.Equal(t, 4, h.NodeCount, "connections never consume node numbers")
}

func TestResolveConnectionMatchesSplitHalf(t *testing.T) {
	_, h := splitFirst(t)

	// The split of 1 -> 3 introduced 1 -> 4 as connection 3.
	m := NewConnectionMutation(1, 4, 2, testRand())
	reused, err := h.Resolve(m)
	require.NoError(t, err)
	assert.True(t, reused)
	assert.Equal(t, 3, m.Connection.Number)
	assert.Equal(t, 1, h.Len())
}

func TestResolveNonInnovation(t *testing.T) {
	rng := testRand()
	d := NewDna(2, 1, 2, 2, DefaultActivation, rng)
	h := NewHistory(3, 4)

	m := NewWeightMutation(d.Connections[1], 0.5, 0.1, 2, rng)
	reused, err := h.Resolve(m)
	require.NoError(t, err)
	assert.False(t, reused)
	assert.Zero(t, h.Len())
	assert.Equal(t, 3, h.ConnectionCount)
}

func TestResolveRejectsSelfLoop(t *testing.T) {
	h := NewHistory(1, 1)
	_, err := h.Resolve(NewConnectionMutation(3, 3, 2, testRand()))
	assert.Error(t, err)
	assert.Zero(t, h.Len())
}

func TestInnovationsIsACopy(t *testing.T) {
	_, h := splitFirst(t)
	list := h.Innovations()
	list[0] = nil
	assert.NotNil(t, h.Innovations()[0])
}

func TestMutationKindStrings(t *testing.T) {
	assert.Equal(t, "WeightMutation", WeightChange.String())
	assert.Equal(t, "BiasMutation", BiasChange.String())
	assert.Equal(t, "ConnectionMutation", ConnectionAdd.String())
	assert.Equal(t, "NodeMutation", NodeSplit.String())
	assert.False(t, (&Mutation{Kind: WeightChange}).IsInnovation())
	assert.True(t, (&Mutation{Kind: NodeSplit}).IsInnovation())
}
