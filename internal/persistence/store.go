package persistence

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/kylebegovich/alice/internal/config"
	"github.com/kylebegovich/alice/internal/preprocessing"
)

// Store maps dataset directories under DataRoot to artifacts under ModelRoot.
type Store struct {
	DataRoot  string
	ModelRoot string
}

func NewStore(dataRoot, modelRoot string) *Store {
	return &Store{DataRoot: dataRoot, ModelRoot: modelRoot}
}

// ModelName is the dataset directory name without its _data suffix,
// uppercased, with the .model extension.
func ModelName(datasetPath string) string {
	base := filepath.Base(filepath.Clean(datasetPath))
	base = strings.TrimSuffix(base, config.DatasetSuffix)
	return preprocessing.Upper(base) + config.ModelExtension
}

// ModelPath mirrors the dataset's location under the model root, e.g.
// data/commands/get_news_data -> models/commands/GET_NEWS.model.
func (s *Store) ModelPath(datasetPath string) (string, error) {
	rel, err := filepath.Rel(filepath.Clean(s.DataRoot), filepath.Dir(filepath.Clean(datasetPath)))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("dataset path %q is not under %q", datasetPath, s.DataRoot)
	}
	return filepath.Join(s.ModelRoot, rel, ModelName(datasetPath)), nil
}

// Save writes the artifact next to its final path and renames it into
// place, so readers never observe a partially written file.
func (s *Store) Save(a *Artifact, datasetPath string) (string, error) {
	if err := a.validate(); err != nil {
		return "", err
	}

	path, err := s.ModelPath(datasetPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err := gob.NewEncoder(tmp).Encode(a); err != nil {
		return "", fmt.Errorf("failed to encode artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("failed to sync artifact: %w", err)
	}
	info, err := tmp.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		committed = true
		return "", fmt.Errorf("failed to move artifact into place: %w", err)
	}
	committed = true

	log.Debug("artifact written", "path", path, "size", humanize.Bytes(uint64(info.Size())))
	return path, nil
}

// Load reads the artifact for datasetPath. The error wraps fs.ErrNotExist
// when no artifact has been written yet.
func (s *Store) Load(datasetPath string) (*Artifact, error) {
	path, err := s.ModelPath(datasetPath)
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Artifact, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer file.Close()

	var a Artifact
	if err := gob.NewDecoder(file).Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode artifact %s: %w", path, err)
	}
	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &a, nil
}
