package dcgan_go

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestLeakyRectify(t *testing.T) {
	g := gorgonia.NewGraph()
	input := gorgonia.NewVector(g, gorgonia.Float64, gorgonia.WithShape(4), gorgonia.WithName("input"))
	activated, err := LeakyRectify(0.3)(input)
	require.NoError(t, err)

	var outValue gorgonia.Value
	gorgonia.Read(activated, &outValue)

	vm := gorgonia.NewTapeMachine(g)
	defer vm.Close()
	require.NoError(t, gorgonia.Let(input, tensor.New(tensor.WithShape(4), tensor.WithBacking([]float64{-2.0, -0.5, 0.0, 3.0}))))
	require.NoError(t, vm.RunAll())

	raw := outValue.Data().([]float64)
	require.Len(t, raw, 4)
	assert.InDelta(t, -0.6, raw[0], 1e-9)
	assert.InDelta(t, -0.15, raw[1], 1e-9)
	assert.InDelta(t, 0.0, raw[2], 1e-9)
	assert.InDelta(t, 3.0, raw[3], 1e-9)
}

func TestNoActivation(t *testing.T) {
	g := gorgonia.NewGraph()
	input := gorgonia.NewVector(g, gorgonia.Float64, gorgonia.WithShape(2), gorgonia.WithName("input"))
	out, err := NoActivation(input)
	require.NoError(t, err)
	assert.Same(t, input, out)
}
