package dcgan_go

import (
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// DiscriminatorLossFn Builder of the discriminator cost node from the two score
// nodes and the two (noisy) target nodes
type DiscriminatorLossFn func(realScores, generatedScores, realTargets, generatedTargets *gorgonia.Node) (*gorgonia.Node, error)

// GeneratorLossFn Builder of the generator cost node from the scores of generated
// data and the target node
type GeneratorLossFn func(generatedScores, targets *gorgonia.Node) (*gorgonia.Node, error)

// TrainerConfig Configuration of the adversarial training step
//
// BatchSize - batch size both evaluation graphs are compiled for
// DataLabel - label of instances coming from the real dataset (0 or 1); generated
// instances are labeled 1-DataLabel during the discriminator update
// LabelNoise - width of the uniform interval the discriminator's target labels are
// drawn from. E.g. DataLabel=0 and LabelNoise=0.2 labels real data in [-0.1;+0.1]
// DiscriminatorLoss - discriminator cost builder; DiscriminatorLoss function is used when nil
// GeneratorLoss - generator cost builder; GeneratorLoss function is used when nil
//
type TrainerConfig struct {
	BatchSize         int
	DataLabel         int
	LabelNoise        float64
	DiscriminatorLoss DiscriminatorLossFn
	GeneratorLoss     GeneratorLossFn
}

// Trainer Compiled adversarial training step for a Generator/Discriminator pair.
//
// Two evaluation graphs are used: the Discriminator is trained on its own graph
// against real data and materialized (detached) generated data, while the Generator
// is trained on its graph through a weight-tied copy of the Discriminator (see GAN).
// Gradient accumulation is cleared by resetting each tape machine after its step.
//
type Trainer struct {
	cfg TrainerConfig

	generator     *GeneratorNet
	discriminator *DiscriminatorNet
	gan           *GAN

	inputLatent     *gorgonia.Node
	inputReal       *gorgonia.Node
	inputGenerated  *gorgonia.Node
	targetReal      *gorgonia.Node
	targetGenerated *gorgonia.Node
	targetGAN       *gorgonia.Node

	generatedValue gorgonia.Value
	dscLossValue   gorgonia.Value
	genLossValue   gorgonia.Value

	vmSample        gorgonia.VM
	vmDiscriminator gorgonia.VM
	vmGAN           gorgonia.VM

	dscSolver gorgonia.Solver
	genSolver gorgonia.Solver
}

// NewTrainer Compiles evaluation graphs, gradients, tape machines and binds solvers
// for one Generator/Discriminator pair.
//
// definedGenerator and definedDiscriminator must be built on two separate expression
// graphs and must not be feedforwarded yet; their shapes must agree: the generator's
// output image shape must match the discriminator's declared input shape.
//
func NewTrainer(definedGenerator *GeneratorNet, definedDiscriminator *DiscriminatorNet, dscSolver, genSolver gorgonia.Solver, cfg TrainerConfig) (*Trainer, error) {
	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("Batch size must be positive, but got %d", cfg.BatchSize)
	}
	if cfg.DataLabel != 0 && cfg.DataLabel != 1 {
		return nil, fmt.Errorf("Data label must be either 0 or 1, but got %d", cfg.DataLabel)
	}
	if cfg.LabelNoise < 0 {
		return nil, fmt.Errorf("Label noise must be non-negative, but got %f", cfg.LabelNoise)
	}
	if cfg.DiscriminatorLoss == nil {
		cfg.DiscriminatorLoss = DiscriminatorLoss
	}
	if cfg.GeneratorLoss == nil {
		cfg.GeneratorLoss = GeneratorLoss
	}
	if dscSolver == nil || genSolver == nil {
		return nil, fmt.Errorf("Both solvers must be provided")
	}

	ganGraph := definedGenerator.Graph()
	dscGraph := definedDiscriminator.Graph()
	if ganGraph == nil || dscGraph == nil {
		return nil, fmt.Errorf("Both Generator and Discriminator must have learnable parameters")
	}
	if ganGraph == dscGraph {
		return nil, fmt.Errorf("Generator and Discriminator must be defined on separate expression graphs")
	}

	channels, height, width := definedDiscriminator.InputShape()
	generatedSize := 16 * definedGenerator.FeaturemapSize()
	if definedGenerator.OutChannels() != channels || generatedSize != height || generatedSize != width {
		return nil, fmt.Errorf("Generator produces (%d, %d, %d) images, but Discriminator expects (%d, %d, %d)", definedGenerator.OutChannels(), generatedSize, generatedSize, channels, height, width)
	}

	t := &Trainer{
		cfg:           cfg,
		generator:     definedGenerator,
		discriminator: definedDiscriminator,
		dscSolver:     dscSolver,
		genSolver:     genSolver,
	}

	/* Discriminator training graph: real and detached generated batches are scored with shared weights */
	t.inputReal = gorgonia.NewTensor(dscGraph, gorgonia.Float64, 4, gorgonia.WithShape(cfg.BatchSize, channels, height, width), gorgonia.WithName("discriminator_input_real"))
	t.inputGenerated = gorgonia.NewTensor(dscGraph, gorgonia.Float64, 4, gorgonia.WithShape(cfg.BatchSize, channels, height, width), gorgonia.WithName("discriminator_input_generated"))
	realScores, err := definedDiscriminator.Fwd(t.inputReal, cfg.BatchSize)
	if err != nil {
		return nil, errors.Wrap(err, "Can't initialize feedforward for real data")
	}
	generatedScores, err := definedDiscriminator.Fwd(t.inputGenerated, cfg.BatchSize)
	if err != nil {
		return nil, errors.Wrap(err, "Can't initialize feedforward for generated data")
	}
	t.targetReal = gorgonia.NewVector(dscGraph, gorgonia.Float64, gorgonia.WithShape(cfg.BatchSize), gorgonia.WithName("discriminator_target_real"))
	t.targetGenerated = gorgonia.NewVector(dscGraph, gorgonia.Float64, gorgonia.WithShape(cfg.BatchSize), gorgonia.WithName("discriminator_target_generated"))
	dscLoss, err := cfg.DiscriminatorLoss(realScores, generatedScores, t.targetReal, t.targetGenerated)
	if err != nil {
		return nil, errors.Wrap(err, "Can't build discriminator loss")
	}
	gorgonia.WithName("discriminator_loss")(dscLoss)
	gorgonia.Read(dscLoss, &t.dscLossValue)
	if _, err = gorgonia.Grad(dscLoss, definedDiscriminator.Learnables()...); err != nil {
		return nil, errors.Wrap(err, "Can't define gradients for Discriminator")
	}
	t.vmDiscriminator = gorgonia.NewTapeMachine(dscGraph, gorgonia.BindDualValues(definedDiscriminator.Learnables()...))

	/* Generator evaluation graph */
	t.inputLatent = gorgonia.NewMatrix(ganGraph, gorgonia.Float64, gorgonia.WithShape(cfg.BatchSize, definedGenerator.LatentDim()), gorgonia.WithName("generator_input"))
	genOut, err := definedGenerator.Fwd(t.inputLatent, cfg.BatchSize)
	if err != nil {
		return nil, errors.Wrap(err, "Can't initialize feedforward for Generator")
	}
	gorgonia.Read(genOut, &t.generatedValue)
	// The sampling machine is compiled before the discriminator part and the cost
	// nodes are added to the graph, so it evaluates the generator forward pass only
	// and tracks no gradients.
	t.vmSample = gorgonia.NewTapeMachine(ganGraph)

	definedGAN, err := NewGAN(ganGraph, definedGenerator, definedDiscriminator)
	if err != nil {
		return nil, errors.Wrap(err, "Can't tie Discriminator into Generator's graph")
	}
	t.gan = definedGAN
	if err = definedGAN.Fwd(cfg.BatchSize); err != nil {
		return nil, errors.Wrap(err, "Can't initialize feedforward for GAN")
	}
	t.targetGAN = gorgonia.NewVector(ganGraph, gorgonia.Float64, gorgonia.WithShape(cfg.BatchSize), gorgonia.WithName("gan_target"))
	genLoss, err := cfg.GeneratorLoss(definedGAN.Out(), t.targetGAN)
	if err != nil {
		return nil, errors.Wrap(err, "Can't build generator loss")
	}
	gorgonia.WithName("generator_loss")(genLoss)
	gorgonia.Read(genLoss, &t.genLossValue)
	if _, err = gorgonia.Grad(genLoss, definedGAN.Learnables()...); err != nil {
		return nil, errors.Wrap(err, "Can't define gradients for GAN")
	}
	t.vmGAN = gorgonia.NewTapeMachine(ganGraph, gorgonia.BindDualValues(definedGAN.Learnables()...))

	return t, nil
}

// Sample Draws n latent vectors from the standard normal distribution and runs the
// generator forward pass outside of any gradient computation. The returned dense is
// a detached copy: feeding it anywhere contributes nothing to the generator's graph.
//
// n must be equal to the batch size the trainer was compiled for.
//
func (t *Trainer) Sample(n int) (*tensor.Dense, error) {
	if n != t.cfg.BatchSize {
		return nil, fmt.Errorf("Trainer is compiled for batch size %d, can't sample %d instances", t.cfg.BatchSize, n)
	}
	latentSpaceSamples := NormRandDense(n, t.generator.LatentDim())
	if err := gorgonia.Let(t.inputLatent, latentSpaceSamples); err != nil {
		return nil, errors.Wrap(err, "Can't init input value")
	}
	if err := t.vmSample.RunAll(); err != nil {
		return nil, errors.Wrap(err, "Can't run sampling VM")
	}
	t.vmSample.Reset()
	generated, ok := t.generatedValue.(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("Generator's output is %T, not a dense tensor", t.generatedValue)
	}
	return generated.Clone().(*tensor.Dense), nil
}

// TrainBatch Performs exactly one alternating adversarial update:
//
// 1. Samples a generated batch and detaches it from the generator's graph.
// 2. Scores the real batch and the detached generated batch through the
// discriminator, evaluates the discriminator loss against noisy targets, propagates
// gradients and steps the discriminator's solver.
// 3. Samples a fresh latent batch, scores it through the (now-updated) weight-tied
// discriminator copy with gradients flowing into the generator, evaluates the
// generator loss and steps the generator's solver.
//
// Returns the discriminator and generator loss values as plain numbers.
//
func (t *Trainer) TrainBatch(realBatch tensor.Tensor) (float64, float64, error) {
	if realBatch == nil {
		return 0, 0, fmt.Errorf("Real batch is nil")
	}
	if realBatch.Shape()[0] != t.cfg.BatchSize {
		return 0, 0, fmt.Errorf("Trainer is compiled for batch size %d, but got real batch of %d instances", t.cfg.BatchSize, realBatch.Shape()[0])
	}

	/* Discriminator update */
	detachedGenerated, err := t.Sample(t.cfg.BatchSize)
	if err != nil {
		return 0, 0, errors.Wrap(err, "Can't sample generated batch")
	}
	realTargets, err := NoisyLabels(t.cfg.BatchSize, t.cfg.DataLabel, t.cfg.LabelNoise)
	if err != nil {
		return 0, 0, errors.Wrap(err, "Can't build targets for real data")
	}
	generatedTargets, err := NoisyLabels(t.cfg.BatchSize, 1-t.cfg.DataLabel, t.cfg.LabelNoise)
	if err != nil {
		return 0, 0, errors.Wrap(err, "Can't build targets for generated data")
	}
	if err = gorgonia.Let(t.inputReal, realBatch); err != nil {
		return 0, 0, errors.Wrap(err, "Can't init real input value")
	}
	if err = gorgonia.Let(t.inputGenerated, detachedGenerated); err != nil {
		return 0, 0, errors.Wrap(err, "Can't init generated input value")
	}
	if err = gorgonia.Let(t.targetReal, realTargets); err != nil {
		return 0, 0, errors.Wrap(err, "Can't init real target value")
	}
	if err = gorgonia.Let(t.targetGenerated, generatedTargets); err != nil {
		return 0, 0, errors.Wrap(err, "Can't init generated target value")
	}
	if err = t.vmDiscriminator.RunAll(); err != nil {
		return 0, 0, errors.Wrap(err, "Can't run discriminator VM")
	}
	dscLoss, ok := t.dscLossValue.Data().(float64)
	if !ok {
		return 0, 0, fmt.Errorf("Discriminator's loss is %T, not a scalar", t.dscLossValue.Data())
	}
	if err = t.dscSolver.Step(gorgonia.NodesToValueGrads(t.discriminator.Learnables())); err != nil {
		return 0, 0, errors.Wrap(err, "Can't do solver step for Discriminator")
	}
	t.vmDiscriminator.Reset()

	/* Generator update */
	latentSpaceSamples := NormRandDense(t.cfg.BatchSize, t.generator.LatentDim())
	if err = gorgonia.Let(t.inputLatent, latentSpaceSamples); err != nil {
		return 0, 0, errors.Wrap(err, "Can't init latent input value")
	}
	ganTargets, err := ConstLabels(t.cfg.BatchSize, t.cfg.DataLabel)
	if err != nil {
		return 0, 0, errors.Wrap(err, "Can't build targets for GAN")
	}
	if err = gorgonia.Let(t.targetGAN, ganTargets); err != nil {
		return 0, 0, errors.Wrap(err, "Can't init GAN target value")
	}
	if err = t.vmGAN.RunAll(); err != nil {
		return 0, 0, errors.Wrap(err, "Can't run GAN VM")
	}
	genLoss, ok := t.genLossValue.Data().(float64)
	if !ok {
		return 0, 0, fmt.Errorf("Generator's loss is %T, not a scalar", t.genLossValue.Data())
	}
	if err = t.genSolver.Step(gorgonia.NodesToValueGrads(t.gan.GeneratorLearnables())); err != nil {
		return 0, 0, errors.Wrap(err, "Can't do solver step for Generator")
	}
	t.vmGAN.Reset()

	return dscLoss, genLoss, nil
}

// Close Releases the underlying tape machines
func (t *Trainer) Close() error {
	var firstErr error
	for _, vm := range []gorgonia.VM{t.vmSample, t.vmDiscriminator, t.vmGAN} {
		if vm == nil {
			continue
		}
		if err := vm.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
