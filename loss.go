package dcgan_go

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

type LossReduction uint16

const (
	LossReductionSum = LossReduction(iota)
	LossReductionMean
)

// SigmoidCrossEntropyLoss Sigmoid cross-entropy between raw (pre-sigmoid) scores and targets.
// Numerically stable formulation: max(x, 0) - x*z + log(1 + exp(-|x|))
// See ref. https://pytorch.org/docs/stable/generated/torch.nn.BCEWithLogitsLoss.html
// Default reduction is 'mean'
func SigmoidCrossEntropyLoss(logits, targets *gorgonia.Node, reduction ...LossReduction) (*gorgonia.Node, error) {
	positivePart, err := gorgonia.Rectify(logits)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do max(x, 0)")
	}
	hprod, err := gorgonia.HadamardProd(logits, targets)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (x.*z)")
	}
	sub, err := gorgonia.Sub(positivePart, hprod)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (x-y)")
	}
	abs, err := gorgonia.Abs(logits)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do |x|")
	}
	neg, err := gorgonia.Neg(abs)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do -1*x")
	}
	exp, err := gorgonia.Exp(neg)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do exp(x)")
	}
	logTerm, err := gorgonia.Log1p(exp)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do log(1+x)")
	}
	full, err := gorgonia.Add(sub, logTerm)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (x+y)")
	}

	reductionDefault := LossReductionMean
	if len(reduction) != 0 {
		reductionDefault = reduction[0]
	}
	switch reductionDefault {
	case LossReductionSum:
		return gorgonia.Sum(full)
	case LossReductionMean:
		return gorgonia.Mean(full)
	default:
		return nil, fmt.Errorf("Reduction type %d is not supported", reductionDefault)
	}
}

// DiscriminatorLoss Combined loss of the discriminator given scores for real and
// generated data: sum of the sigmoid cross-entropy of the real scores against the
// real targets and of the generated scores against the generated targets.
// This is the loss used to update the Discriminator parameters.
func DiscriminatorLoss(realScores, generatedScores, realTargets, generatedTargets *gorgonia.Node) (*gorgonia.Node, error) {
	lossReal, err := SigmoidCrossEntropyLoss(realScores, realTargets)
	if err != nil {
		return nil, errors.Wrap(err, "Can't evaluate loss for real data")
	}
	lossGenerated, err := SigmoidCrossEntropyLoss(generatedScores, generatedTargets)
	if err != nil {
		return nil, errors.Wrap(err, "Can't evaluate loss for generated data")
	}
	return gorgonia.Add(lossReal, lossGenerated)
}

// GeneratorLoss Loss of the generator given discriminator's scores for generated
// data: sigmoid cross-entropy against the targets (constant tensor filled with the
// label of real data).
// This is the loss used to update the Generator parameters.
func GeneratorLoss(generatedScores, targets *gorgonia.Node) (*gorgonia.Node, error) {
	loss, err := SigmoidCrossEntropyLoss(generatedScores, targets)
	if err != nil {
		return nil, errors.Wrap(err, "Can't evaluate loss for generated data")
	}
	return loss, nil
}

// NoisyLabels Returns a (batchSize,) dense with each target label drawn independently
// and uniformly from [dataLabel-labelNoise/2; dataLabel+labelNoise/2]. Label noise
// prevents the discriminator from becoming overconfident.
//
// dataLabel must be exactly 0 or 1, labelNoise must be non-negative.
//
func NoisyLabels(batchSize, dataLabel int, labelNoise float64) (*tensor.Dense, error) {
	if dataLabel != 0 && dataLabel != 1 {
		return nil, fmt.Errorf("Data label must be either 0 or 1, but got %d", dataLabel)
	}
	if labelNoise < 0 {
		return nil, fmt.Errorf("Label noise must be non-negative, but got %f", labelNoise)
	}
	low := float64(dataLabel) - labelNoise/2.0
	data := make([]float64, batchSize)
	for i := range data {
		data[i] = low + rand.Float64()*labelNoise
	}
	return tensor.New(tensor.WithShape(batchSize), tensor.WithBacking(data)), nil
}

// ConstLabels Returns a (batchSize,) dense filled with dataLabel.
//
// dataLabel must be exactly 0 or 1.
//
func ConstLabels(batchSize, dataLabel int) (*tensor.Dense, error) {
	if dataLabel != 0 && dataLabel != 1 {
		return nil, fmt.Errorf("Data label must be either 0 or 1, but got %d", dataLabel)
	}
	data := make([]float64, batchSize)
	for i := range data {
		data[i] = float64(dataLabel)
	}
	return tensor.New(tensor.WithShape(batchSize), tensor.WithBacking(data)), nil
}
