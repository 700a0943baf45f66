package dcgan_go

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestNewDiscriminatorValidation(t *testing.T) {
	g := gorgonia.NewGraph()
	_, err := NewDiscriminator(g, 0, 16, 16)
	require.Error(t, err)
	_, err = NewDiscriminator(g, 1, 15, 16)
	require.Error(t, err)
	_, err = NewDiscriminator(g, 1, 16, 24)
	require.Error(t, err)
}

func TestDiscriminatorFwd(t *testing.T) {
	batchSize := 2
	g := gorgonia.NewGraph()
	discriminator, err := NewDiscriminator(g, 3, 16, 16)
	require.NoError(t, err)

	channels, height, width := discriminator.InputShape()
	assert.Equal(t, 3, channels)
	assert.Equal(t, 16, height)
	assert.Equal(t, 16, width)

	input := gorgonia.NewTensor(g, gorgonia.Float64, 4, gorgonia.WithShape(batchSize, 3, 16, 16), gorgonia.WithName("input"))
	scores, err := discriminator.Fwd(input, batchSize)
	require.NoError(t, err)
	require.True(t, scores.Shape().Eq(tensor.Shape{batchSize}))

	var scoresValue gorgonia.Value
	gorgonia.Read(scores, &scoresValue)

	vm := gorgonia.NewTapeMachine(g)
	defer vm.Close()
	data := make([]float64, batchSize*3*16*16)
	for i := range data {
		data[i] = rand.NormFloat64()
	}
	require.NoError(t, gorgonia.Let(input, tensor.New(tensor.WithShape(batchSize, 3, 16, 16), tensor.WithBacking(data))))
	require.NoError(t, vm.RunAll())

	raw := scoresValue.Data().([]float64)
	require.Len(t, raw, batchSize)
	for _, v := range raw {
		assert.False(t, math.IsNaN(v))
		assert.False(t, math.IsInf(v, 0))
	}
}

func TestDiscriminatorShapes64(t *testing.T) {
	batchSize := 8
	g := gorgonia.NewGraph()
	discriminator, err := NewDiscriminator(g, 3, 64, 64)
	require.NoError(t, err)

	input := gorgonia.NewTensor(g, gorgonia.Float64, 4, gorgonia.WithShape(batchSize, 3, 64, 64), gorgonia.WithName("input"))
	scores, err := discriminator.Fwd(input, batchSize)
	require.NoError(t, err)
	assert.True(t, scores.Shape().Eq(tensor.Shape{batchSize}))

	// Final linear projection consumes 1024*(64/16)*(64/16) features
	var linWeight *gorgonia.Node
	for _, learnable := range discriminator.Learnables() {
		if learnable.Name() == "discriminator_lin_w" {
			linWeight = learnable
		}
	}
	require.NotNil(t, linWeight)
	assert.True(t, linWeight.Shape().Eq(tensor.Shape{1, 16384}))
}
