package dcgan_go

import (
	"fmt"

	"gorgonia.org/gorgonia"
)

// ConvType Direction of a convolutional block appended by AddConvBlock
type ConvType uint16

const (
	// Conv2D Strided convolution, halves spatial resolution with the default config
	Conv2D = ConvType(iota)
	// Deconv2D Transposed-convolution substitute: nearest-neighbour upsampling by the
	// configured stride followed by a stride-1 convolution with kernel size reduced by one.
	// Only the default config (kernel=4, stride=2, padding=1) is known to reproduce the
	// output geometry of the corresponding transposed convolution: a 3x3 stride-1 pad-1
	// convolution on the doubled feature map keeps its spatial size, so the output is
	// exactly doubled. Other configs are not guaranteed to match.
	Deconv2D
)

// BlockConfig Configuration of a single conv/deconv block
//
// Relu - append an activation layer
// Batchnorm - append a batch normalization layer matching the output channel count
// NotLeaky - plain rectifier instead of the leaky one
// ReluParam - negative slope of the leaky rectifier
// Bias - learnable bias for the convolution
//
type BlockConfig struct {
	Relu       bool
	Batchnorm  bool
	NotLeaky   bool
	ReluParam  float64
	KernelSize int
	Padding    int
	Stride     int
	Bias       bool
}

// DefaultBlockConfig Default block configuration: leaky rectifier with slope 0.3,
// batch normalization, 4x4 kernel, padding 1, stride 2, no convolution bias.
func DefaultBlockConfig() BlockConfig {
	return BlockConfig{
		Relu:       true,
		Batchnorm:  true,
		NotLeaky:   false,
		ReluParam:  0.3,
		KernelSize: 4,
		Padding:    1,
		Stride:     2,
		Bias:       false,
	}
}

// AddConvBlock Appends one "convolution + optional normalization + optional activation"
// block to the provided layer sequence. The activation rides the last appended layer so
// it is applied after the normalization when both are requested.
//
// g - graph to create weight nodes on
// layers - target layer sequence (mutated)
// conv - Conv2D for downsampling, Deconv2D for upsampling
// name - prefix for weight node names
// inChannels, outChannels - channel counts
// cfg - block configuration, see DefaultBlockConfig()
//
func AddConvBlock(g *gorgonia.ExprGraph, layers *[]*Layer, conv ConvType, name string, inChannels, outChannels int, cfg BlockConfig) error {
	activation := NoActivation
	if cfg.Relu {
		if cfg.NotLeaky {
			activation = Rectify
		} else {
			activation = LeakyRectify(cfg.ReluParam)
		}
	}

	switch conv {
	case Conv2D:
		idx := len(*layers)
		convWeight := gorgonia.NewTensor(g, gorgonia.Float64, 4, gorgonia.WithShape(outChannels, inChannels, cfg.KernelSize, cfg.KernelSize), gorgonia.WithName(fmt.Sprintf("%s_w%d", name, idx)), gorgonia.WithInit(gorgonia.GlorotN(1.0)))
		var convBias *gorgonia.Node
		if cfg.Bias {
			convBias = gorgonia.NewTensor(g, gorgonia.Float64, 4, gorgonia.WithShape(1, outChannels, 1, 1), gorgonia.WithName(fmt.Sprintf("%s_b%d", name, idx)), gorgonia.WithInit(gorgonia.Zeroes()))
		}
		*layers = append(*layers, &Layer{
			WeightNode:   convWeight,
			BiasNode:     convBias,
			Type:         LayerConvolutional,
			Activation:   NoActivation,
			KernelHeight: cfg.KernelSize,
			KernelWidth:  cfg.KernelSize,
			Padding:      []int{cfg.Padding, cfg.Padding},
			Stride:       []int{cfg.Stride, cfg.Stride},
			Dilation:     []int{1, 1},
		})
	case Deconv2D:
		*layers = append(*layers, &Layer{
			Type:          LayerUpsample,
			Activation:    NoActivation,
			UpsampleScale: cfg.Stride,
		})
		idx := len(*layers)
		kernel := cfg.KernelSize - 1
		convWeight := gorgonia.NewTensor(g, gorgonia.Float64, 4, gorgonia.WithShape(outChannels, inChannels, kernel, kernel), gorgonia.WithName(fmt.Sprintf("%s_w%d", name, idx)), gorgonia.WithInit(gorgonia.GlorotN(1.0)))
		var convBias *gorgonia.Node
		if cfg.Bias {
			convBias = gorgonia.NewTensor(g, gorgonia.Float64, 4, gorgonia.WithShape(1, outChannels, 1, 1), gorgonia.WithName(fmt.Sprintf("%s_b%d", name, idx)), gorgonia.WithInit(gorgonia.Zeroes()))
		}
		*layers = append(*layers, &Layer{
			WeightNode:   convWeight,
			BiasNode:     convBias,
			Type:         LayerConvolutional,
			Activation:   NoActivation,
			KernelHeight: kernel,
			KernelWidth:  kernel,
			Padding:      []int{cfg.Padding, cfg.Padding},
			Stride:       []int{1, 1},
			Dilation:     []int{1, 1},
		})
	default:
		return fmt.Errorf("Convolution type '%d' (uint16) is not handled", conv)
	}

	if cfg.Batchnorm {
		idx := len(*layers)
		gamma := gorgonia.NewTensor(g, gorgonia.Float64, 4, gorgonia.WithShape(1, outChannels, 1, 1), gorgonia.WithName(fmt.Sprintf("%s_gamma%d", name, idx)), gorgonia.WithInit(gorgonia.Ones()))
		beta := gorgonia.NewTensor(g, gorgonia.Float64, 4, gorgonia.WithShape(1, outChannels, 1, 1), gorgonia.WithName(fmt.Sprintf("%s_beta%d", name, idx)), gorgonia.WithInit(gorgonia.Zeroes()))
		*layers = append(*layers, &Layer{
			WeightNode: gamma,
			BiasNode:   beta,
			Type:       LayerBatchnorm,
			Activation: NoActivation,
			Epsilon:    1e-5,
		})
	}

	(*layers)[len(*layers)-1].Activation = activation
	return nil
}
