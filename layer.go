package dcgan_go

import (
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Layer Just an alias to Weight+Bias+ActivationFunction combo
//
// For LayerBatchnorm the WeightNode is the per-channel scale (gamma) and the
// BiasNode is the per-channel shift (beta), both of shape (1, C, 1, 1).
//
type Layer struct {
	WeightNode *gorgonia.Node
	BiasNode   *gorgonia.Node
	Activation ActivationFunc
	Type       LayerType

	KernelHeight  int
	KernelWidth   int
	Padding       []int
	Stride        []int
	Dilation      []int
	ReshapeDims   []int
	UpsampleScale int
	Epsilon       float64
}

type LayerType uint16

const (
	LayerLinear = LayerType(iota)
	LayerFlatten
	LayerConvolutional
	LayerReshape
	LayerBatchnorm
	LayerUpsample
)

var (
	allowedNoWeights = []LayerType{LayerFlatten, LayerReshape, LayerUpsample}
)

func noWeightsAllowed(checkType LayerType) bool {
	return checkLayerType(checkType, allowedNoWeights...)
}

func checkLayerType(checkType LayerType, t ...LayerType) bool {
	for _, typeOf := range t {
		if checkType == typeOf {
			return true
		}
	}
	return false
}

// Fwd Applies layer's operation to the provided input (activation function is not applied here)
//
// batchSize - batch size. If it's >= 2 then broadcast function will be applied for bias nodes
// input - Input node
//
func (l *Layer) Fwd(batchSize int, input *gorgonia.Node) (*gorgonia.Node, error) {
	switch l.Type {
	case LayerLinear:
		tOp, err := gorgonia.Transpose(l.WeightNode)
		if err != nil {
			return nil, errors.Wrap(err, "Can't transpose weights")
		}
		nonActivated, err := gorgonia.Mul(input, tOp)
		if err != nil {
			return nil, errors.Wrap(err, "Can't multiply input and weights")
		}
		if l.BiasNode != nil {
			if batchSize < 2 {
				nonActivated, err = gorgonia.Add(nonActivated, l.BiasNode)
				if err != nil {
					return nil, errors.Wrap(err, "Can't add bias to non-activated output")
				}
			} else {
				nonActivated, err = gorgonia.BroadcastAdd(nonActivated, l.BiasNode, nil, []byte{0})
				if err != nil {
					return nil, errors.Wrap(err, fmt.Sprintf("Can't add bias [in broadcast term with batch_size = %d] to non-activated output", batchSize))
				}
			}
		}
		return nonActivated, nil
	case LayerConvolutional:
		nonActivated, err := gorgonia.Conv2d(input, l.WeightNode, tensor.Shape{l.KernelHeight, l.KernelWidth}, l.Padding, l.Stride, l.Dilation)
		if err != nil {
			return nil, errors.Wrap(err, "Can't convolve[2D] input by kernel")
		}
		if l.BiasNode != nil {
			nonActivated, err = gorgonia.BroadcastAdd(nonActivated, l.BiasNode, nil, []byte{0, 2, 3})
			if err != nil {
				return nil, errors.Wrap(err, "Can't add bias to convolved input")
			}
		}
		return nonActivated, nil
	case LayerBatchnorm:
		return l.fwdBatchnorm(input)
	case LayerUpsample:
		nonActivated, err := gorgonia.Upsample2D(input, l.UpsampleScale)
		if err != nil {
			return nil, errors.Wrap(err, "Can't upsample[2D] input")
		}
		return nonActivated, nil
	case LayerFlatten:
		nonActivated, err := gorgonia.Reshape(input, tensor.Shape{batchSize, input.Shape().TotalSize() / batchSize})
		if err != nil {
			return nil, errors.Wrap(err, "Can't flatten input")
		}
		return nonActivated, nil
	case LayerReshape:
		dims := make([]int, len(l.ReshapeDims))
		copy(dims, l.ReshapeDims)
		if len(dims) > 0 && dims[0] == -1 {
			dims[0] = batchSize
		}
		nonActivated, err := gorgonia.Reshape(input, tensor.Shape(dims))
		if err != nil {
			return nil, errors.Wrap(err, "Can't reshape input")
		}
		return nonActivated, nil
	default:
		return nil, fmt.Errorf("Layer type '%d' (uint16) is not handled", l.Type)
	}
}

// fwdBatchnorm Training-mode batch normalization over the batch and spatial axes
// of a (N, C, H, W) input, followed by the learnable per-channel scale and shift.
// Running statistics are not tracked.
func (l *Layer) fwdBatchnorm(input *gorgonia.Node) (*gorgonia.Node, error) {
	if input.Dims() != 4 {
		return nil, fmt.Errorf("Batchnorm expects 4 dimensions in input, but got %d", input.Dims())
	}
	channels := input.Shape()[1]
	mean, err := gorgonia.Mean(input, 0, 2, 3)
	if err != nil {
		return nil, errors.Wrap(err, "Can't evaluate mean of input")
	}
	mean4d, err := gorgonia.Reshape(mean, tensor.Shape{1, channels, 1, 1})
	if err != nil {
		return nil, errors.Wrap(err, "Can't reshape mean to (1, C, 1, 1)")
	}
	centered, err := gorgonia.BroadcastSub(input, mean4d, nil, []byte{0, 2, 3})
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (x-mean)")
	}
	sqr, err := gorgonia.Square(centered)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (x^2)")
	}
	variance, err := gorgonia.Mean(sqr, 0, 2, 3)
	if err != nil {
		return nil, errors.Wrap(err, "Can't evaluate variance of input")
	}
	variance4d, err := gorgonia.Reshape(variance, tensor.Shape{1, channels, 1, 1})
	if err != nil {
		return nil, errors.Wrap(err, "Can't reshape variance to (1, C, 1, 1)")
	}
	epsScalar := gorgonia.NewScalar(input.Graph(), input.Dtype(), gorgonia.WithValue(l.Epsilon))
	stabilized, err := gorgonia.Add(variance4d, epsScalar)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (variance+eps)")
	}
	std, err := gorgonia.Sqrt(stabilized)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do √x")
	}
	normalized, err := gorgonia.BroadcastHadamardDiv(centered, std, nil, []byte{0, 2, 3})
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (x/std)")
	}
	scaled, err := gorgonia.BroadcastHadamardProd(normalized, l.WeightNode, nil, []byte{0, 2, 3})
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (x.*gamma)")
	}
	shifted, err := gorgonia.BroadcastAdd(scaled, l.BiasNode, nil, []byte{0, 2, 3})
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (x+beta)")
	}
	return shifted, nil
}
