package dcgan_go

import (
	"fmt"
	"image/color"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gorgonia.org/tensor"
)

// NormRandDense Return reference to tensor.Dense filled with normally distributed float64 values in range [-inf;+inf] ([-maxF64;+maxF64 actually] actually)
//
// batchSize - Simply batch size
// n - Number of elements in each batch
// Resulting dense will have batchSize*n elements
//
func NormRandDense(batchSize, n int) *tensor.Dense {
	data := make([]float64, batchSize*n)
	for i := range data {
		data[i] = rand.NormFloat64()
	}
	return tensor.New(tensor.WithShape(batchSize, n), tensor.WithBacking(data))
}

// UniformRandDense Return reference to tensor.Dense filled with pseudo-random float64 values in range [0.0,1.0)
//
// batchSize - Simply batch size
// n - Number of elements in each batch
// Resulting dense will have batchSize*n elements
//
func UniformRandDense(batchSize, n int) *tensor.Dense {
	data := make([]float64, batchSize*n)
	for i := range data {
		data[i] = rand.Float64()
	}
	return tensor.New(tensor.WithShape(batchSize, n), tensor.WithBacking(data))
}

// SlicerOneStep Just iterator with step size = 1
type SlicerOneStep struct {
	StartIdx, EndIdx int
}

func (s SlicerOneStep) Start() int { return s.StartIdx }
func (s SlicerOneStep) End() int   { return s.EndIdx }
func (s SlicerOneStep) Step() int  { return 1 }

// PlotLossHistory Plot discriminator's and generator's loss curves over epochs to a single chart
func PlotLossHistory(dscLosses, genLosses []float64, fname string) error {
	if len(dscLosses) != len(genLosses) {
		return fmt.Errorf("Loss histories must have same number of elements, but got %d for Discriminator and %d for Generator", len(dscLosses), len(genLosses))
	}
	dscData := make(plotter.XYs, len(dscLosses))
	genData := make(plotter.XYs, len(genLosses))
	for i := range dscLosses {
		dscData[i].X = float64(i)
		dscData[i].Y = dscLosses[i]
		genData[i].X = float64(i)
		genData[i].Y = genLosses[i]
	}
	dscLine, err := plotter.NewLine(dscData)
	if err != nil {
		return errors.Wrap(err, "Can't init line for Discriminator's losses")
	}
	dscLine.Color = color.RGBA{R: 255, B: 128, A: 255}
	genLine, err := plotter.NewLine(genData)
	if err != nil {
		return errors.Wrap(err, "Can't init line for Generator's losses")
	}
	genLine.Color = color.RGBA{B: 255, G: 128, A: 255}
	p := plot.New()
	p.X.Label.Text = "Epoch"
	p.Y.Label.Text = "Loss"
	p.Add(plotter.NewGrid())
	p.Add(dscLine)
	p.Add(genLine)
	p.Legend.Add("Discriminator", dscLine)
	p.Legend.Add("Generator", genLine)
	// Save the plot to a PNG file.
	if err := p.Save(6*vg.Inch, 4*vg.Inch, fname); err != nil {
		return errors.Wrap(err, "Can't save plot")
	}
	return nil
}
