package nn

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/neat-creatures/neat"
)

func dna(t *testing.T, inputs, outputs int, nodes []*neat.Node, conns ...*neat.Connection) *neat.Dna {
	t.Helper()
	nodeMap := make(map[int]*neat.Node, len(nodes))
	for _, n := range nodes {
		nodeMap[n.Number] = n
	}
	connMap := make(map[int]*neat.Connection, len(conns))
	for _, c := range conns {
		connMap[c.Number] = c
	}
	d, err := neat.NewDnaFrom(inputs, outputs, 2, 2, neat.DefaultActivation, nodeMap, connMap)
	require.NoError(t, err)
	return d
}

func node(number int, role neat.NodeRole, bias float64) *neat.Node {
	return &neat.Node{Number: number, Role: role, Bias: bias}
}

func link(number, src, dst int, weight float64) *neat.Connection {
	return &neat.Connection{Number: number, Src: src, Dst: dst, Weight: weight, Enabled: true}
}

func TestOutputTwoInputsOneOutput(t *testing.T) {
	d := dna(t, 2, 1,
		[]*neat.Node{node(1, neat.InputNode, 0), node(2, neat.InputNode, 0), node(3, neat.OutputNode, 0.1)},
		link(1, 1, 3, 0.5), link(2, 2, 3, -1))
	net := New(d)

	out, err := net.Output([]float64{1, 0.25})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, neat.Sigmoid(0.25)+0.1, out[0], 1e-12)
}

func TestOutputThroughHiddenNode(t *testing.T) {
	d := dna(t, 1, 1,
		[]*neat.Node{node(1, neat.InputNode, 0), node(2, neat.OutputNode, 0), node(3, neat.HiddenNode, 0.5)},
		link(1, 1, 3, 2), link(2, 3, 2, -1))
	net := New(d)

	out, err := net.Output([]float64{0.5})
	require.NoError(t, err)
	hidden := neat.Sigmoid(1) + 0.5
	assert.InDelta(t, neat.Sigmoid(-hidden), out[0], 1e-12)
}

func TestOutputCycle(t *testing.T) {
	// 1 -> 3 -> 2 with a back edge 2 -> 3.
	d := dna(t, 1, 1,
		[]*neat.Node{node(1, neat.InputNode, 0), node(2, neat.OutputNode, 0), node(3, neat.HiddenNode, 0)},
		link(1, 1, 3, 1), link(2, 3, 2, 1), link(3, 2, 3, 1))
	require.True(t, d.Recurrent())
	net := New(d)

	out, err := net.Output([]float64{1})
	require.NoError(t, err)

	// The back edge sees output 2 with its only inbound edge already used.
	inner := neat.Sigmoid(0)
	hidden := neat.Sigmoid(1 + inner)
	assert.InDelta(t, neat.Sigmoid(hidden), out[0], 1e-12)
}

func TestOutputIgnoresDisabledConnections(t *testing.T) {
	c := link(1, 1, 2, 3)
	c.Enabled = false
	d := dna(t, 1, 1, []*neat.Node{node(1, neat.InputNode, 0), node(2, neat.OutputNode, -0.2)}, c)

	out, err := New(d).Output([]float64{5})
	require.NoError(t, err)
	assert.InDelta(t, 0.3, out[0], 1e-12)
}

func TestOutputDeterministic(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	d := neat.NewDna(2, 5, 2, 2, neat.DefaultActivation, rng)
	net := New(d)

	first, err := net.Output([]float64{0.3, -0.7})
	require.NoError(t, err)
	require.Len(t, first, 5)
	for i := 0; i < 3; i++ {
		again, err := net.Output([]float64{0.3, -0.7})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	// A fresh network over the same genome agrees.
	fresh, err := New(d).Output([]float64{0.3, -0.7})
	require.NoError(t, err)
	assert.Equal(t, first, fresh)
}

func TestOutputInputCount(t *testing.T) {
	net := New(neat.NewDna(2, 1, 2, 2, "", rand.New(rand.NewPCG(1, 1))))
	assert.Equal(t, 2, net.InputCount())
	assert.Equal(t, 1, net.OutputCount())

	_, err := net.Output([]float64{1})
	assert.ErrorIs(t, err, ErrInputCount)
	_, err = net.Output([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrInputCount)
}
