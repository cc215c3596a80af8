package models

import (
	"github.com/kylebegovich/alice/internal/data"
)

const (
	TrueLabel  = "True"
	FalseLabel = "False"
)

// CommandMatchingModel answers whether an utterance invokes one command.
type CommandMatchingModel struct {
	BaseModel
}

// NewCommandMatchingModel labels positives "True" and negatives "False". When
// opts.Train is set it fits immediately; a failed fit leaves the model
// untrained with the reason in TrainErr.
func NewCommandMatchingModel(ds data.CommandDataset, opts Options) *CommandMatchingModel {
	samples := make([]Sample, 0, ds.Size())
	for _, text := range ds.True {
		samples = append(samples, Sample{Text: text, Label: TrueLabel})
	}
	for _, text := range ds.False {
		samples = append(samples, Sample{Text: text, Label: FalseLabel})
	}

	m := &CommandMatchingModel{
		BaseModel: newBaseModel(samples, []string{TrueLabel, FalseLabel}, opts),
	}
	if opts.Train {
		m.trainOnConstruct()
	}
	return m
}

func (m *CommandMatchingModel) GetType() string {
	return "CommandMatching"
}

// Match reports whether text is classified as the command. It returns
// ErrNotTrained before a successful fit.
func (m *CommandMatchingModel) Match(text string) (bool, error) {
	label, err := m.predictLabel(text)
	if err != nil {
		return false, err
	}
	return label == TrueLabel, nil
}

func (m *CommandMatchingModel) Predict(text string) (bool, error) {
	return m.Match(text)
}
