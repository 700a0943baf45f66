package dcgan_go

import (
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
)

// GAN Composition of the Generator with a weight-tied copy of the Discriminator on
// the Generator's own graph.
//
// The copied discriminator nodes are created with the original nodes' values, so
// both share the same backing tensors: solver updates applied to the discriminator
// on its own training graph are immediately visible here without explicit syncing.
// The generator's solver never steps the copied nodes, which is what stops the
// generator update from also training the discriminator.
//
// generatorPart - reference to Generator
// discriminatorPart - reference to Discriminator
// tiedDiscriminator - copy of structure of Discriminator whose learnables are ignored during the generator update
//
type GAN struct {
	generatorPart     *GeneratorNet
	discriminatorPart *DiscriminatorNet

	tiedDiscriminator *DiscriminatorNet

	out           *gorgonia.Node
	learnables    gorgonia.Nodes
	learnablesGen gorgonia.Nodes
}

// NewGAN Ties a copy of definedDiscriminator into graph g (the graph definedGenerator is built on)
func NewGAN(g *gorgonia.ExprGraph, definedGenerator *GeneratorNet, definedDiscriminator *DiscriminatorNet) (*GAN, error) {
	definedGAN := GAN{
		generatorPart:     definedGenerator,
		discriminatorPart: definedDiscriminator,
		tiedDiscriminator: &DiscriminatorNet{
			inChannels: definedDiscriminator.inChannels,
			inHeight:   definedDiscriminator.inHeight,
			inWidth:    definedDiscriminator.inWidth,
			private: &Network{
				Name:   "gan_discriminator",
				Layers: make([]*Layer, len(definedDiscriminator.private.Layers)),
			},
		},
		learnablesGen: definedGenerator.Learnables(),
		learnables:    append(gorgonia.Nodes{}, definedGenerator.Learnables()...),
	}
	for i, l := range definedDiscriminator.private.Layers {
		if l == nil {
			return nil, fmt.Errorf("Discriminator's Layer %d is nil", i)
		}
		definedGAN.tiedDiscriminator.private.Layers[i] = &Layer{
			Activation:    l.Activation,
			Type:          l.Type,
			KernelHeight:  l.KernelHeight,
			KernelWidth:   l.KernelWidth,
			Padding:       l.Padding,
			Stride:        l.Stride,
			Dilation:      l.Dilation,
			ReshapeDims:   l.ReshapeDims,
			UpsampleScale: l.UpsampleScale,
			Epsilon:       l.Epsilon,
		}
		if l.WeightNode == nil && !noWeightsAllowed(l.Type) {
			return nil, fmt.Errorf("Discriminator's Layer %d has nil weight node", i)
		}
		if l.WeightNode != nil {
			definedGAN.tiedDiscriminator.private.Layers[i].WeightNode = gorgonia.NewTensor(g, gorgonia.Float64, l.WeightNode.Dims(), gorgonia.WithShape(l.WeightNode.Shape()...), gorgonia.WithName(l.WeightNode.Name()+"_gan"), gorgonia.WithValue(l.WeightNode.Value()))
			definedGAN.learnables = append(definedGAN.learnables, definedGAN.tiedDiscriminator.private.Layers[i].WeightNode)
		}
		if l.BiasNode != nil {
			definedGAN.tiedDiscriminator.private.Layers[i].BiasNode = gorgonia.NewTensor(g, gorgonia.Float64, l.BiasNode.Dims(), gorgonia.WithShape(l.BiasNode.Shape()...), gorgonia.WithName(l.BiasNode.Name()+"_gan"), gorgonia.WithValue(l.BiasNode.Value()))
			definedGAN.learnables = append(definedGAN.learnables, definedGAN.tiedDiscriminator.private.Layers[i].BiasNode)
		}
	}
	return &definedGAN, nil
}

// Out Returns reference to output node
func (net *GAN) Out() *gorgonia.Node {
	return net.out
}

// GeneratorOut Returns reference to output node of generator part
func (net *GAN) GeneratorOut() *gorgonia.Node {
	return net.generatorPart.Out()
}

// Learnables Returns learnables nodes (generator part and tied discriminator part)
func (net *GAN) Learnables() gorgonia.Nodes {
	return net.learnables
}

// GeneratorLearnables Returns learnables nodes of generator part only
func (net *GAN) GeneratorLearnables() gorgonia.Nodes {
	return net.learnablesGen
}

// Fwd Initializates feedforward of the tied discriminator part for the Generator's output
//
// batchSize - batch size. If it's >= 2 then broadcast function will be applied
// Note: input node is not needed since input for Discriminator is just Generator's output
//
func (net *GAN) Fwd(batchSize int) error {
	if net.generatorPart.Out() == nil {
		return fmt.Errorf("Generator part of GAN must be feedforwarded first")
	}
	out, err := net.tiedDiscriminator.private.Fwd(net.generatorPart.Out(), batchSize)
	if err != nil {
		return errors.Wrap(err, "[GAN, Discriminator part]")
	}
	net.out = out
	return nil
}
