package dcgan_go

import (
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
)

// DiscriminatorNet Abstraction for discriminator part of GAN. It's simple neural network actually.
type DiscriminatorNet struct {
	inChannels int
	inHeight   int
	inWidth    int

	private *Network
}

// Discriminator Constructor for DiscriminatorNet from a custom layer sequence
func Discriminator(layers ...*Layer) *DiscriminatorNet {
	return &DiscriminatorNet{private: &Network{
		Name:   "discriminator",
		Layers: layers,
	}}
}

// NewDiscriminator Constructor for the DCGAN downsampling classifier.
//
// Four stride-2 convolutional blocks double the channel depth
// (channels->128->256->512->1024) while halving the spatial resolution, then the
// final feature map is flattened and projected to a single raw score per sample.
// No activation is applied to the score: the sigmoid is folded into the loss for
// numerical stability.
//
// channels, height, width - input image shape (without batch dimension); height and
// width must be divisible by 16 (four halvings).
//
func NewDiscriminator(g *gorgonia.ExprGraph, channels, height, width int) (*DiscriminatorNet, error) {
	if channels < 1 {
		return nil, fmt.Errorf("Discriminator must have positive number of input channels, but got %d", channels)
	}
	if height%16 != 0 || width%16 != 0 {
		return nil, fmt.Errorf("Discriminator input spatial size must be divisible by 16, but got %dx%d", height, width)
	}

	layers := make([]*Layer, 0, 12)
	cfg := DefaultBlockConfig()
	channelsSeq := []int{channels, 128, 256, 512, 1024}
	for i := 0; i+1 < len(channelsSeq); i++ {
		if err := AddConvBlock(g, &layers, Conv2D, "discriminator", channelsSeq[i], channelsSeq[i+1], cfg); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("Can't append downsampling block #%d to Discriminator", i))
		}
	}

	flatDim := 1024 * (height / 16) * (width / 16)
	layers = append(layers, &Layer{
		Type:       LayerFlatten,
		Activation: NoActivation,
	})
	linWeight := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(1, flatDim), gorgonia.WithName("discriminator_lin_w"), gorgonia.WithInit(gorgonia.GlorotN(1.0)))
	linBias := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(1, 1), gorgonia.WithName("discriminator_lin_b"), gorgonia.WithInit(gorgonia.Zeroes()))
	layers = append(layers, &Layer{
		WeightNode: linWeight,
		BiasNode:   linBias,
		Type:       LayerLinear,
		Activation: NoActivation,
	})
	// (batch, 1) -> (batch,)
	layers = append(layers, &Layer{
		Type:        LayerReshape,
		Activation:  NoActivation,
		ReshapeDims: []int{-1},
	})

	return &DiscriminatorNet{
		inChannels: channels,
		inHeight:   height,
		inWidth:    width,
		private: &Network{
			Name:   "discriminator",
			Layers: layers,
		},
	}, nil
}

// InputShape Returns the declared input image shape (channels, height, width)
func (net *DiscriminatorNet) InputShape() (int, int, int) {
	return net.inChannels, net.inHeight, net.inWidth
}

// Out Returns reference to output node
func (net *DiscriminatorNet) Out() *gorgonia.Node {
	return net.private.out
}

// Learnables Returns learnables nodes
func (net *DiscriminatorNet) Learnables() gorgonia.Nodes {
	return net.private.Learnables()
}

// Graph Returns the expression graph the discriminator's parameters live on
func (net *DiscriminatorNet) Graph() *gorgonia.ExprGraph {
	learnables := net.private.Learnables()
	if len(learnables) == 0 {
		return nil
	}
	return learnables[0].Graph()
}

// Fwd Initializates feedforward for provided input and returns the scores node of shape (batchSize,)
//
// input - Input node of shape (batchSize, channels, height, width)
// batchSize - batch size. If it's >= 2 then broadcast function will be applied
//
func (net *DiscriminatorNet) Fwd(input *gorgonia.Node, batchSize int) (*gorgonia.Node, error) {
	out, err := net.private.Fwd(input, batchSize)
	if err != nil {
		return nil, errors.Wrap(err, "[Discriminator]")
	}
	return out, nil
}
