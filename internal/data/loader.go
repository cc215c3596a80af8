package data

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/kylebegovich/alice/internal/preprocessing"
)

// LoadSampleSets reads every dir/*.txt into set name -> lowercased non-empty
// lines. The set name is the file base name up to its first dot. A missing
// directory yields an empty map.
func LoadSampleSets(dir string) (map[string][]string, error) {
	log.Info("loading dataset", "path", dir)

	sets := make(map[string][]string)
	files, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	for _, fname := range files {
		content, err := os.ReadFile(fname)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", fname, err)
		}
		name, _, _ := strings.Cut(filepath.Base(fname), ".")
		sets[name] = append(sets[name], preprocessing.Lines(string(content))...)
	}

	log.Debug("sample sets loaded", "path", dir, "sets", Stats(sets))
	return sets, nil
}

func LoadCommandDataset(dir string) (CommandDataset, error) {
	sets, err := LoadSampleSets(dir)
	if err != nil {
		return CommandDataset{}, err
	}
	ds, err := NewCommandDataset(sets)
	if err != nil {
		return CommandDataset{}, fmt.Errorf("%s: %w", dir, err)
	}
	return ds, nil
}

func LoadOrdinalDataset(dir string) (OrdinalDataset, error) {
	sets, err := LoadSampleSets(dir)
	if err != nil {
		return OrdinalDataset{}, err
	}
	ds, err := NewOrdinalDataset(sets)
	if err != nil {
		return OrdinalDataset{}, fmt.Errorf("%s: %w", dir, err)
	}
	return ds, nil
}

// LoadNoise reads the shared negative-phrase corpus. A missing file yields
// an empty corpus.
func LoadNoise(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn("noise corpus not found", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read noise corpus: %w", err)
	}
	return preprocessing.Lines(string(content)), nil
}

// DiscoverDatasets lists the *_data directories under root in sorted order.
func DiscoverDatasets(root, suffix string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(root, "*"+suffix))
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets in %s: %w", root, err)
	}

	var dirs []string
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}
		dirs = append(dirs, path)
	}
	return dirs, nil
}
