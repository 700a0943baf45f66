package dcgan_go

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestGenerateImageTrainSet(t *testing.T) {
	trainSet, err := GenerateImageTrainSet(4, 1, 4, 4, func(sample, channel, y, x int) float64 {
		return float64(sample*100 + y*10 + x)
	})
	require.NoError(t, err)
	assert.Equal(t, 4, trainSet.DataLength)
	require.True(t, trainSet.TrainData.Shape().Eq(tensor.Shape{4, 1, 4, 4}))

	pixel, err := trainSet.TrainData.At(2, 0, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, 231.0, pixel.(float64))

	_, err = GenerateImageTrainSet(0, 1, 4, 4, func(sample, channel, y, x int) float64 { return 0 })
	require.Error(t, err)
	_, err = GenerateImageTrainSet(4, 1, 4, 4, nil)
	require.Error(t, err)
}

func TestTrainSetBatch(t *testing.T) {
	trainSet, err := GenerateImageTrainSet(4, 1, 4, 4, func(sample, channel, y, x int) float64 {
		return float64(sample)
	})
	require.NoError(t, err)

	batch, err := trainSet.Batch(1, 2)
	require.NoError(t, err)
	require.True(t, batch.Shape().Eq(tensor.Shape{2, 1, 4, 4}))
	// Second batch of size 2 holds samples #2 and #3
	first, err := batch.At(0, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, first.(float64))
	second, err := batch.At(1, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, second.(float64))

	_, err = trainSet.Batch(2, 2)
	require.Error(t, err)
	_, err = trainSet.Batch(-1, 2)
	require.Error(t, err)
}
