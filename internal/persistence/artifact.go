package persistence

import (
	"encoding/gob"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kylebegovich/alice/internal/models"
)

type Kind string

const (
	KindCommand Kind = "command"
	KindOrdinal Kind = "ordinal"
)

func init() {
	gob.Register(&models.Pipeline{})
}

// Artifact is the selected model for one dataset as written to disk.
// Exactly one of Command or Ordinal is set, according to Kind.
type Artifact struct {
	Kind     Kind
	Command  *models.CommandMatchingModel
	Ordinal  *models.OrdinalScaleModel
	Metadata Metadata
}

type Metadata struct {
	ModelName    string
	Dataset      string
	RunID        string
	Loss         string
	Penalty      string
	Alpha        float64
	Iterations   int
	Failures     int
	Tests        int
	PassRate     decimal.Decimal
	TrainingTime time.Duration
	CreatedAt    time.Time
}

func NewCommandArtifact(m *models.CommandMatchingModel) *Artifact {
	return &Artifact{
		Kind:     KindCommand,
		Command:  m,
		Metadata: newMetadata(m),
	}
}

func NewOrdinalArtifact(m *models.OrdinalScaleModel) *Artifact {
	return &Artifact{
		Kind:     KindOrdinal,
		Ordinal:  m,
		Metadata: newMetadata(m),
	}
}

func newMetadata(m models.Model) Metadata {
	params := m.GetParams()
	return Metadata{
		ModelName:  m.GetName(),
		Loss:       string(params.Loss),
		Penalty:    string(params.Penalty),
		Alpha:      params.Alpha,
		Iterations: params.Iterations,
		CreatedAt:  time.Now(),
	}
}

// Model returns whichever model the artifact carries.
func (a *Artifact) Model() models.Model {
	switch a.Kind {
	case KindCommand:
		if a.Command != nil {
			return a.Command
		}
	case KindOrdinal:
		if a.Ordinal != nil {
			return a.Ordinal
		}
	}
	return nil
}

func (a *Artifact) validate() error {
	if a.Model() == nil {
		return fmt.Errorf("artifact of kind %q carries no model", a.Kind)
	}
	return nil
}

// WriteSummary prints the metadata in a human-readable form.
func (a *Artifact) WriteSummary(w io.Writer) {
	md := a.Metadata
	fmt.Fprintf(w, "Model: %s (%s)\n", md.ModelName, a.Kind)
	fmt.Fprintf(w, "Dataset: %s\n", md.Dataset)
	fmt.Fprintf(w, "Run: %s\n", md.RunID)
	fmt.Fprintf(w, "Created: %s\n", md.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Loss: %s  Penalty: %s  Alpha: %g  Iterations: %d\n", md.Loss, md.Penalty, md.Alpha, md.Iterations)
	fmt.Fprintf(w, "Failures: %d / %d  Pass rate: %s\n", md.Failures, md.Tests, md.PassRate.StringFixed(4))
	fmt.Fprintf(w, "Training Time: %v\n", md.TrainingTime)
}
