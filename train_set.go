package dcgan_go

import (
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// TrainSet Dataset of real images in (N, C, H, W) layout
type TrainSet struct {
	TrainData  *tensor.Dense
	DataLength int
}

// Batch Returns the b-th slice of batchSize instances as a materialized tensor
func (set *TrainSet) Batch(b, batchSize int) (tensor.Tensor, error) {
	start := b * batchSize
	end := start + batchSize
	if start < 0 || end > set.DataLength {
		return nil, fmt.Errorf("Batch #%d of size %d is out of range for dataset of %d instances", b, batchSize, set.DataLength)
	}
	sliced, err := set.TrainData.Slice(SlicerOneStep{StartIdx: start, EndIdx: end})
	if err != nil {
		return nil, errors.Wrap(err, "Can't slice batch")
	}
	return sliced.Materialize(), nil
}

// PixelFunction Evaluates reference pixel intensity for given sample index, channel and position
type PixelFunction func(sample, channel, y, x int) float64

// GenerateImageTrainSet Builds a synthetic image dataset by evaluating pixelFunc at every position
func GenerateImageTrainSet(numSamples, channels, height, width int, pixelFunc PixelFunction) (*TrainSet, error) {
	if numSamples < 1 {
		return nil, fmt.Errorf("Number of samples must be positive, but got %d", numSamples)
	}
	if pixelFunc == nil {
		return nil, fmt.Errorf("Pixel function must be provided")
	}
	data := make([]float64, numSamples*channels*height*width)
	idx := 0
	for s := 0; s < numSamples; s++ {
		for c := 0; c < channels; c++ {
			for y := 0; y < height; y++ {
				for x := 0; x < width; x++ {
					data[idx] = pixelFunc(s, c, y, x)
					idx++
				}
			}
		}
	}
	return &TrainSet{
		TrainData:  tensor.New(tensor.WithShape(numSamples, channels, height, width), tensor.WithBacking(data)),
		DataLength: numSamples,
	}, nil
}
