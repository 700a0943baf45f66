package dcgan_go

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/gorgonia"
)

func TestSaveCheckpointImproved(t *testing.T) {
	g := gorgonia.NewGraph()
	generator, err := NewGenerator(g, 8, 1, 1)
	require.NoError(t, err)

	checkpointPath := path.Join(t.TempDir(), "generator")
	saved, err := SaveCheckpoint(generator, []float64{0.7, 0.6}, []float64{1.0, 0.5}, checkpointPath)
	require.NoError(t, err)
	assert.True(t, saved)
	_, err = os.Stat(checkpointPath + ".gob")
	require.NoError(t, err)
}

func TestSaveCheckpointWorsened(t *testing.T) {
	g := gorgonia.NewGraph()
	generator, err := NewGenerator(g, 8, 1, 1)
	require.NoError(t, err)

	checkpointPath := path.Join(t.TempDir(), "generator")
	saved, err := SaveCheckpoint(generator, []float64{0.7, 0.6}, []float64{0.5, 1.0}, checkpointPath)
	require.NoError(t, err)
	assert.False(t, saved)
	_, err = os.Stat(checkpointPath + ".gob")
	require.True(t, os.IsNotExist(err))
}

func TestSaveCheckpointTie(t *testing.T) {
	g := gorgonia.NewGraph()
	generator, err := NewGenerator(g, 8, 1, 1)
	require.NoError(t, err)

	checkpointPath := path.Join(t.TempDir(), "generator")
	saved, err := SaveCheckpoint(generator, []float64{0.7, 0.6}, []float64{0.5, 0.5}, checkpointPath)
	require.NoError(t, err)
	assert.True(t, saved)
}

func TestCheckpointRoundTrip(t *testing.T) {
	g := gorgonia.NewGraph()
	generator, err := NewGenerator(g, 8, 1, 1)
	require.NoError(t, err)

	checkpointPath := path.Join(t.TempDir(), "generator")
	saved, err := SaveCheckpoint(generator, []float64{0.7, 0.6}, []float64{1.0, 0.5}, checkpointPath)
	require.NoError(t, err)
	require.True(t, saved)

	chk, err := LoadGeneratorCheckpoint(checkpointPath + ".gob")
	require.NoError(t, err)
	assert.Equal(t, 8, chk.LatentDim)
	assert.Equal(t, 1, chk.FeaturemapSize)
	assert.Equal(t, 1, chk.OutChannels)

	restoredGraph := gorgonia.NewGraph()
	restored, err := chk.Restore(restoredGraph)
	require.NoError(t, err)
	require.Equal(t, len(generator.Learnables()), len(restored.Learnables()))

	restoredByName := make(map[string]*gorgonia.Node)
	for _, learnable := range restored.Learnables() {
		restoredByName[learnable.Name()] = learnable
	}
	for _, learnable := range generator.Learnables() {
		restoredNode, found := restoredByName[learnable.Name()]
		require.True(t, found, "Restored Generator must have node '%s'", learnable.Name())
		assert.Equal(t, learnable.Value().Data().([]float64), restoredNode.Value().Data().([]float64))
	}
}

func TestLoadGeneratorCheckpointMissingFile(t *testing.T) {
	_, err := LoadGeneratorCheckpoint(path.Join(t.TempDir(), "nope.gob"))
	require.Error(t, err)
}
