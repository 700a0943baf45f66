package dcgan_go

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

const checkpointExtension = "gob"

// CheckpointParam Snapshot of a single learnable parameter
type CheckpointParam struct {
	Name  string
	Shape []int
	Data  []float64
}

// GeneratorCheckpoint Serializable snapshot of a Generator: its constructor
// arguments plus the values of every learnable parameter
type GeneratorCheckpoint struct {
	LatentDim      int
	FeaturemapSize int
	OutChannels    int
	Params         []CheckpointParam
}

// NewGeneratorCheckpoint Captures current values of the Generator's learnables
func NewGeneratorCheckpoint(definedGenerator *GeneratorNet) (*GeneratorCheckpoint, error) {
	chk := GeneratorCheckpoint{
		LatentDim:      definedGenerator.LatentDim(),
		FeaturemapSize: definedGenerator.FeaturemapSize(),
		OutChannels:    definedGenerator.OutChannels(),
	}
	for _, learnable := range definedGenerator.Learnables() {
		value := learnable.Value()
		if value == nil {
			return nil, fmt.Errorf("Node '%s' has no value", learnable.Name())
		}
		raw, ok := value.Data().([]float64)
		if !ok {
			return nil, fmt.Errorf("Node '%s' has %T data, not []float64", learnable.Name(), value.Data())
		}
		data := make([]float64, len(raw))
		copy(data, raw)
		chk.Params = append(chk.Params, CheckpointParam{
			Name:  learnable.Name(),
			Shape: []int(learnable.Shape().Clone()),
			Data:  data,
		})
	}
	return &chk, nil
}

// SaveCheckpoint Saves the Generator's parameters to '{checkpointPath}.gob' if the
// last generator loss does not exceed the one before it, i.e. the generator has not
// gotten worse since the previous evaluation. Returns whether the checkpoint has
// been written.
//
// dscLosses and genLosses are the loss histories collected during training;
// genLosses must contain at least two entries.
//
func SaveCheckpoint(definedGenerator *GeneratorNet, dscLosses, genLosses []float64, checkpointPath string) (bool, error) {
	fname := fmt.Sprintf("%s.%s", checkpointPath, checkpointExtension)
	last := len(genLosses) - 1
	if genLosses[last] > genLosses[last-1] {
		return false, nil
	}
	chk, err := NewGeneratorCheckpoint(definedGenerator)
	if err != nil {
		return false, errors.Wrap(err, "Can't capture Generator's parameters")
	}
	f, err := os.Create(fname)
	if err != nil {
		return false, errors.Wrap(err, fmt.Sprintf("Can't create file '%s'", fname))
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(chk); err != nil {
		return false, errors.Wrap(err, fmt.Sprintf("Can't encode checkpoint to file '%s'", fname))
	}
	return true, nil
}

// LoadGeneratorCheckpoint Reads a checkpoint written by SaveCheckpoint
func LoadGeneratorCheckpoint(checkpointFile string) (*GeneratorCheckpoint, error) {
	f, err := os.Open(checkpointFile)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("Can't open file '%s'", checkpointFile))
	}
	defer f.Close()
	chk := GeneratorCheckpoint{}
	if err := gob.NewDecoder(f).Decode(&chk); err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("Can't decode checkpoint from file '%s'", checkpointFile))
	}
	return &chk, nil
}

// Restore Rebuilds a Generator on graph g and loads the stored parameter values
// into it. Parameters are matched by node name.
func (chk *GeneratorCheckpoint) Restore(g *gorgonia.ExprGraph) (*GeneratorNet, error) {
	definedGenerator, err := NewGenerator(g, chk.LatentDim, chk.FeaturemapSize, chk.OutChannels)
	if err != nil {
		return nil, errors.Wrap(err, "Can't rebuild Generator")
	}
	params := make(map[string]CheckpointParam, len(chk.Params))
	for _, p := range chk.Params {
		params[p.Name] = p
	}
	for _, learnable := range definedGenerator.Learnables() {
		p, found := params[learnable.Name()]
		if !found {
			return nil, fmt.Errorf("Checkpoint has no parameter for node '%s'", learnable.Name())
		}
		if !learnable.Shape().Eq(tensor.Shape(p.Shape)) {
			return nil, fmt.Errorf("Checkpoint parameter '%s' has shape %v, but node expects %v", p.Name, p.Shape, learnable.Shape())
		}
		data := make([]float64, len(p.Data))
		copy(data, p.Data)
		restored := tensor.New(tensor.WithShape(p.Shape...), tensor.WithBacking(data))
		if err := gorgonia.Let(learnable, restored); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("Can't load value into node '%s'", p.Name))
		}
	}
	return definedGenerator, nil
}
