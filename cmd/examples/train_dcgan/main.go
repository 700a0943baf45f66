package main

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	dcgan "github.com/LdDl/dcgan-go"
	"gorgonia.org/gorgonia"
)

var (
	learningRate    = 0.0002
	beta1           = 0.5
	batchSize       = 8
	latentSpaceSize = 128
	imgChannels     = 1
	imgSize         = 16
	featuremapSize  = 1
	numSamples      = 64
	numOfEpochs     = 10
	labelNoise      = 0.2
	checkpointPath  = "generator_checkpoint"
	lossPlotFile    = "loss_history.png"
)

func main() {
	rand.Seed(1337)

	/* Prepare synthetic dataset: diagonal stripes with per-sample phase shift */
	trainSet, err := dcgan.GenerateImageTrainSet(numSamples, imgChannels, imgSize, imgSize, func(sample, channel, y, x int) float64 {
		return 0.5 + 0.5*math.Sin(float64(x+y+sample)*math.Pi/4.0)
	})
	if err != nil {
		panic(err)
	}

	/* Define separate Gorgonia's graphs for Generator and Discriminator */
	ganGraph := gorgonia.NewGraph()
	dscGraph := gorgonia.NewGraph()

	/* Define structures of neural networks */
	generator, err := dcgan.NewGenerator(ganGraph, latentSpaceSize, featuremapSize, imgChannels)
	if err != nil {
		panic(err)
	}
	discriminator, err := dcgan.NewDiscriminator(dscGraph, imgChannels, imgSize, imgSize)
	if err != nil {
		panic(err)
	}

	/* Initialize solvers for both evaluation graphs */
	dscSolver := gorgonia.NewAdamSolver(gorgonia.WithBatchSize(float64(batchSize)), gorgonia.WithLearnRate(learningRate), gorgonia.WithBeta1(beta1))
	genSolver := gorgonia.NewAdamSolver(gorgonia.WithBatchSize(float64(batchSize)), gorgonia.WithLearnRate(learningRate), gorgonia.WithBeta1(beta1))

	/* Compile the adversarial training step */
	trainer, err := dcgan.NewTrainer(generator, discriminator, dscSolver, genSolver, dcgan.TrainerConfig{
		BatchSize:  batchSize,
		DataLabel:  0,
		LabelNoise: labelNoise,
	})
	if err != nil {
		panic(err)
	}
	defer trainer.Close()

	numBatches := trainSet.DataLength / batchSize
	dscLossHistory := make([]float64, 0, numOfEpochs)
	genLossHistory := make([]float64, 0, numOfEpochs)

	// Run through all epochs
	for e := 0; e < numOfEpochs; e++ {
		st := time.Now()
		epochDscLoss := 0.0
		epochGenLoss := 0.0
		// Run through each batch
		for b := 0; b < numBatches; b++ {
			realBatch, err := trainSet.Batch(b, batchSize)
			if err != nil {
				panic(err)
			}
			dscLoss, genLoss, err := trainer.TrainBatch(realBatch)
			if err != nil {
				panic(err)
			}
			epochDscLoss += dscLoss
			epochGenLoss += genLoss
		}
		dscLossHistory = append(dscLossHistory, epochDscLoss/float64(numBatches))
		genLossHistory = append(genLossHistory, epochGenLoss/float64(numBatches))
		fmt.Printf("Epoch %d:\n\tDiscriminator's loss: %f\n\tGenerator's loss: %f\n\tTime elapsed: %v\n", e, dscLossHistory[e], genLossHistory[e], time.Since(st))

		/* Checkpoint Generator's weights when it has not gotten worse */
		if e >= 1 {
			saved, err := dcgan.SaveCheckpoint(generator, dscLossHistory, genLossHistory, checkpointPath)
			if err != nil {
				panic(err)
			}
			if saved {
				fmt.Printf("\tCheckpoint has been saved to '%s.gob'\n", checkpointPath)
			}
		}
	}

	/* Sample generated images and print the first one as a rounded pixel grid */
	generated, err := trainer.Sample(batchSize)
	if err != nil {
		panic(err)
	}
	fmt.Println("First generated sample (rounded to 0.1):")
	for y := 0; y < imgSize; y++ {
		for x := 0; x < imgSize; x++ {
			pixel, err := generated.At(0, 0, y, x)
			if err != nil {
				panic(err)
			}
			fmt.Printf("%.1f ", pixel.(float64))
		}
		fmt.Println()
	}

	/* Plot loss history for both networks */
	err = dcgan.PlotLossHistory(dscLossHistory, genLossHistory, lossPlotFile)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Loss history has been plotted to '%s'\n", lossPlotFile)
}
