package dcgan_go

import (
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
)

// GeneratorNet Abstraction for generator part of GAN
type GeneratorNet struct {
	latentDim      int
	featuremapSize int
	outChannels    int

	private *Network
}

// Generator Constructor for GeneratorNet from a custom layer sequence
func Generator(layers ...*Layer) *GeneratorNet {
	return &GeneratorNet{private: &Network{
		Name:   "generator",
		Layers: layers,
	}}
}

// NewGenerator Constructor for the DCGAN image synthesizer.
//
// The first block expands a latent vector into a 1024-channel feature map of
// spatial size featuremapSize. A transposed convolution with kernel size equal to
// featuremapSize and no padding on a 1x1 input is an affine map, so the block is
// built as a linear projection followed by a reshape, then batch normalization and
// a plain rectifier. Three upsampling blocks halve the channel depth while doubling
// the spatial size (1024->512->256->128) and the final upsampling block produces
// outChannels with no normalization and no activation. The output stays in the raw
// value range of the last convolution: aligning it with the dynamic range of real
// images is left to the caller.
//
// Output shape of the forward pass is (batch, outChannels, 16*featuremapSize, 16*featuremapSize).
//
// latentDim - dimension of the latent space
// featuremapSize - spatial size of the first feature map
// outChannels - number of channels in the generated image
//
func NewGenerator(g *gorgonia.ExprGraph, latentDim, featuremapSize, outChannels int) (*GeneratorNet, error) {
	if latentDim < 1 {
		return nil, fmt.Errorf("Generator must have positive latent space size, but got %d", latentDim)
	}
	if featuremapSize < 1 {
		return nil, fmt.Errorf("Generator must have positive first feature map size, but got %d", featuremapSize)
	}
	if outChannels < 1 {
		return nil, fmt.Errorf("Generator must have positive number of output channels, but got %d", outChannels)
	}

	layers := make([]*Layer, 0, 16)

	projWeight := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(1024*featuremapSize*featuremapSize, latentDim), gorgonia.WithName("generator_proj_w"), gorgonia.WithInit(gorgonia.GlorotN(1.0)))
	layers = append(layers, &Layer{
		WeightNode: projWeight,
		Type:       LayerLinear,
		Activation: NoActivation,
	})
	layers = append(layers, &Layer{
		Type:        LayerReshape,
		Activation:  NoActivation,
		ReshapeDims: []int{-1, 1024, featuremapSize, featuremapSize},
	})
	projGamma := gorgonia.NewTensor(g, gorgonia.Float64, 4, gorgonia.WithShape(1, 1024, 1, 1), gorgonia.WithName("generator_gamma2"), gorgonia.WithInit(gorgonia.Ones()))
	projBeta := gorgonia.NewTensor(g, gorgonia.Float64, 4, gorgonia.WithShape(1, 1024, 1, 1), gorgonia.WithName("generator_beta2"), gorgonia.WithInit(gorgonia.Zeroes()))
	layers = append(layers, &Layer{
		WeightNode: projGamma,
		BiasNode:   projBeta,
		Type:       LayerBatchnorm,
		Activation: Rectify,
		Epsilon:    1e-5,
	})

	cfg := DefaultBlockConfig()
	cfg.NotLeaky = true
	channelsSeq := []int{1024, 512, 256, 128}
	for i := 0; i+1 < len(channelsSeq); i++ {
		if err := AddConvBlock(g, &layers, Deconv2D, "generator", channelsSeq[i], channelsSeq[i+1], cfg); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("Can't append upsampling block #%d to Generator", i))
		}
	}

	outCfg := DefaultBlockConfig()
	outCfg.Relu = false
	outCfg.Batchnorm = false
	if err := AddConvBlock(g, &layers, Deconv2D, "generator", 128, outChannels, outCfg); err != nil {
		return nil, errors.Wrap(err, "Can't append output block to Generator")
	}

	return &GeneratorNet{
		latentDim:      latentDim,
		featuremapSize: featuremapSize,
		outChannels:    outChannels,
		private: &Network{
			Name:   "generator",
			Layers: layers,
		},
	}, nil
}

// LatentDim Returns dimension of the latent space
func (net *GeneratorNet) LatentDim() int {
	return net.latentDim
}

// FeaturemapSize Returns spatial size of the first feature map
func (net *GeneratorNet) FeaturemapSize() int {
	return net.featuremapSize
}

// OutChannels Returns number of channels in the generated image
func (net *GeneratorNet) OutChannels() int {
	return net.outChannels
}

// Out Returns reference to output node
func (net *GeneratorNet) Out() *gorgonia.Node {
	return net.private.out
}

// Learnables Returns learnables nodes
func (net *GeneratorNet) Learnables() gorgonia.Nodes {
	return net.private.Learnables()
}

// Graph Returns the expression graph the generator's parameters live on
func (net *GeneratorNet) Graph() *gorgonia.ExprGraph {
	learnables := net.private.Learnables()
	if len(learnables) == 0 {
		return nil
	}
	return learnables[0].Graph()
}

// Fwd Initializates feedforward for provided input and returns the output node of
// shape (batchSize, outChannels, 16*featuremapSize, 16*featuremapSize)
//
// input - Input node of shape (batchSize, latentDim)
// batchSize - batch size. If it's >= 2 then broadcast function will be applied
//
func (net *GeneratorNet) Fwd(input *gorgonia.Node, batchSize int) (*gorgonia.Node, error) {
	out, err := net.private.Fwd(input, batchSize)
	if err != nil {
		return nil, errors.Wrap(err, "[Generator]")
	}
	return out, nil
}
