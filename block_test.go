package dcgan_go

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestDefaultBlockConfig(t *testing.T) {
	cfg := DefaultBlockConfig()
	assert.True(t, cfg.Relu)
	assert.True(t, cfg.Batchnorm)
	assert.False(t, cfg.NotLeaky)
	assert.InDelta(t, 0.3, cfg.ReluParam, 1e-12)
	assert.Equal(t, 4, cfg.KernelSize)
	assert.Equal(t, 1, cfg.Padding)
	assert.Equal(t, 2, cfg.Stride)
	assert.False(t, cfg.Bias)
}

func TestAddConvBlockConv2D(t *testing.T) {
	g := gorgonia.NewGraph()
	layers := make([]*Layer, 0, 4)
	err := AddConvBlock(g, &layers, Conv2D, "test", 3, 8, DefaultBlockConfig())
	require.NoError(t, err)
	require.Len(t, layers, 2)

	assert.Equal(t, LayerConvolutional, layers[0].Type)
	assert.True(t, layers[0].WeightNode.Shape().Eq(tensor.Shape{8, 3, 4, 4}))
	assert.Nil(t, layers[0].BiasNode)
	assert.Equal(t, []int{1, 1}, layers[0].Padding)
	assert.Equal(t, []int{2, 2}, layers[0].Stride)

	assert.Equal(t, LayerBatchnorm, layers[1].Type)
	assert.True(t, layers[1].WeightNode.Shape().Eq(tensor.Shape{1, 8, 1, 1}))
	assert.True(t, layers[1].BiasNode.Shape().Eq(tensor.Shape{1, 8, 1, 1}))
}

func TestAddConvBlockDeconv2D(t *testing.T) {
	g := gorgonia.NewGraph()
	layers := make([]*Layer, 0, 4)
	err := AddConvBlock(g, &layers, Deconv2D, "test", 8, 3, DefaultBlockConfig())
	require.NoError(t, err)
	require.Len(t, layers, 3)

	assert.Equal(t, LayerUpsample, layers[0].Type)
	assert.Equal(t, 2, layers[0].UpsampleScale)

	assert.Equal(t, LayerConvolutional, layers[1].Type)
	assert.True(t, layers[1].WeightNode.Shape().Eq(tensor.Shape{3, 8, 3, 3}))
	assert.Equal(t, []int{1, 1}, layers[1].Stride)

	assert.Equal(t, LayerBatchnorm, layers[2].Type)
}

func TestAddConvBlockNoExtras(t *testing.T) {
	g := gorgonia.NewGraph()
	layers := make([]*Layer, 0, 4)
	cfg := DefaultBlockConfig()
	cfg.Relu = false
	cfg.Batchnorm = false
	err := AddConvBlock(g, &layers, Conv2D, "test", 3, 8, cfg)
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, LayerConvolutional, layers[0].Type)
}

func TestAddConvBlockBadType(t *testing.T) {
	g := gorgonia.NewGraph()
	layers := make([]*Layer, 0, 1)
	err := AddConvBlock(g, &layers, ConvType(42), "test", 3, 8, DefaultBlockConfig())
	require.Error(t, err)
}
