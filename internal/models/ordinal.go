package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// OrdinalScaleModel maps an utterance to an integer level of a scale.
type OrdinalScaleModel struct {
	BaseModel
}

// NewOrdinalScaleModel labels each sample with its level key. Keys are kept
// as given so that Range can report non-numeric ones.
func NewOrdinalScaleModel(levels map[string][]string, opts Options) *OrdinalScaleModel {
	keys := make([]string, 0, len(levels))
	for key := range levels {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var samples []Sample
	for _, key := range keys {
		for _, text := range levels[key] {
			samples = append(samples, Sample{Text: text, Label: key})
		}
	}

	m := &OrdinalScaleModel{
		BaseModel: newBaseModel(samples, keys, opts),
	}
	if opts.Train {
		m.trainOnConstruct()
	}
	return m
}

func (m *OrdinalScaleModel) GetType() string {
	return "OrdinalScale"
}

// Rate returns the predicted level. It returns -1 with ErrUnparseableLevel
// when the predicted label is not an integer.
func (m *OrdinalScaleModel) Rate(text string) (int, error) {
	label, err := m.predictLabel(text)
	if err != nil {
		return -1, err
	}
	level, err := strconv.Atoi(strings.TrimSpace(label))
	if err != nil {
		return -1, fmt.Errorf("%w: %q", ErrUnparseableLevel, label)
	}
	return level, nil
}

func (m *OrdinalScaleModel) Predict(text string) (int, error) {
	return m.Rate(text)
}

// Range returns the lowest and highest level the model was built with.
func (m *OrdinalScaleModel) Range() (int, int, error) {
	if len(m.TargetNames) == 0 {
		return 0, 0, fmt.Errorf("model %s has no levels", m.Name)
	}

	lo, hi := 0, 0
	for i, key := range m.TargetNames {
		level, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			log.Error("non-int key found in model", "model.name", m.Name, "key", key)
			return 0, 0, fmt.Errorf("%w: %q in model %s", ErrUnparseableLevel, key, m.Name)
		}
		if i == 0 || level < lo {
			lo = level
		}
		if i == 0 || level > hi {
			hi = level
		}
	}
	return lo, hi, nil
}
