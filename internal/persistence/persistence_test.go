package persistence

import (
	"bytes"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kylebegovich/alice/internal/data"
	"github.com/kylebegovich/alice/internal/models"
)

func trainedCommandModel(t *testing.T) *models.CommandMatchingModel {
	t.Helper()
	ds := data.CommandDataset{
		True:  []string{"show me the news", "what's the news"},
		False: []string{"turn off the lights", "wake me up at 7", "hello there"},
	}
	m := models.NewCommandMatchingModel(ds, models.Options{
		Name:    "GET_NEWS.model",
		Shuffle: true,
		Train:   true,
		Params:  models.DefaultHyperparameters(),
		Rand:    rand.New(rand.NewSource(7)),
	})
	require.NoError(t, m.TrainErr())
	return m
}

func TestModelName(t *testing.T) {
	assert.Equal(t, "GET_NEWS.model", ModelName("data/commands/get_news_data"))
	assert.Equal(t, "GET_NEWS.model", ModelName("data/commands/get_news_data/"))
	assert.Equal(t, "MOOD.model", ModelName("mood"))
}

func TestModelPath(t *testing.T) {
	s := NewStore("data", "models")

	path, err := s.ModelPath("data/commands/get_news_data")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("models", "commands", "GET_NEWS.model"), path)

	path, err = s.ModelPath("data/ordinal_scalers/mood_data")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("models", "ordinal_scalers", "MOOD.model"), path)

	_, err = s.ModelPath("elsewhere/commands/get_news_data")
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	s := NewStore(filepath.Join(root, "data"), filepath.Join(root, "models"))
	dataset := filepath.Join(root, "data", "commands", "get_news_data")

	m := trainedCommandModel(t)
	artifact := NewCommandArtifact(m)
	artifact.Metadata.Dataset = dataset

	path, err := s.Save(artifact, dataset)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "models", "commands", "GET_NEWS.model"), path)

	loaded, err := s.Load(dataset)
	require.NoError(t, err)
	require.Equal(t, KindCommand, loaded.Kind)
	require.NotNil(t, loaded.Command)
	assert.Nil(t, loaded.Ordinal)
	assert.True(t, loaded.Command.IsTrained())
	assert.NoError(t, loaded.Command.TrainErr())
	assert.Equal(t, "GET_NEWS.model", loaded.Metadata.ModelName)
	assert.Equal(t, m.GetParams(), loaded.Command.GetParams())

	for _, text := range []string{"show me the news", "hello there", "something unseen", "news"} {
		want, err := m.Match(text)
		require.NoError(t, err)
		got, err := loaded.Command.Match(text)
		require.NoError(t, err)
		assert.Equal(t, want, got, text)
	}
}

func TestSaveLeavesNoTemporaryFiles(t *testing.T) {
	root := t.TempDir()
	s := NewStore(filepath.Join(root, "data"), filepath.Join(root, "models"))
	dataset := filepath.Join(root, "data", "commands", "get_news_data")

	_, err := s.Save(NewCommandArtifact(trainedCommandModel(t)), dataset)
	require.NoError(t, err)
	// a second save replaces the first
	_, err = s.Save(NewCommandArtifact(trainedCommandModel(t)), dataset)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(root, "models", "commands"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "GET_NEWS.model", entries[0].Name())
}

func TestSaveRejectsEmptyArtifact(t *testing.T) {
	root := t.TempDir()
	s := NewStore(filepath.Join(root, "data"), filepath.Join(root, "models"))

	_, err := s.Save(&Artifact{Kind: KindOrdinal}, filepath.Join(root, "data", "ordinal_scalers", "mood_data"))
	assert.Error(t, err)
}

func TestLoadMissing(t *testing.T) {
	root := t.TempDir()
	s := NewStore(filepath.Join(root, "data"), filepath.Join(root, "models"))

	_, err := s.Load(filepath.Join(root, "data", "commands", "get_news_data"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "BROKEN.model")
	require.NoError(t, os.WriteFile(path, []byte("not a gob stream"), 0644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, fs.ErrNotExist)
}

func TestOrdinalArtifactRoundTrip(t *testing.T) {
	root := t.TempDir()
	s := NewStore(filepath.Join(root, "data"), filepath.Join(root, "models"))
	dataset := filepath.Join(root, "data", "ordinal_scalers", "mood_data")

	m := models.NewOrdinalScaleModel(map[string][]string{
		"1": {"terrible awful"},
		"3": {"great excellent"},
	}, models.Options{Name: "MOOD.model", Train: true, Params: models.DefaultHyperparameters()})
	require.NoError(t, m.TrainErr())

	_, err := s.Save(NewOrdinalArtifact(m), dataset)
	require.NoError(t, err)

	loaded, err := s.Load(dataset)
	require.NoError(t, err)
	require.Equal(t, KindOrdinal, loaded.Kind)

	lo, hi, err := loaded.Ordinal.Range()
	require.NoError(t, err)
	assert.Equal(t, 1, lo)
	assert.Equal(t, 3, hi)

	want, err := m.Rate("great excellent")
	require.NoError(t, err)
	got, err := loaded.Ordinal.Rate("great excellent")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteSummary(t *testing.T) {
	artifact := NewCommandArtifact(trainedCommandModel(t))
	artifact.Metadata.Failures = 1
	artifact.Metadata.Tests = 4

	var buf bytes.Buffer
	artifact.WriteSummary(&buf)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Model: GET_NEWS.model (command)"))
	assert.Contains(t, out, "Failures: 1 / 4")
	assert.Contains(t, out, "Loss: squared_hinge")
}
