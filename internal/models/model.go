package models

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/kylebegovich/alice/internal/preprocessing"
)

var (
	ErrNotTrained       = errors.New("classifier has not been trained yet")
	ErrUnparseableLevel = errors.New("label is not an integer level")
)

// TextClassifier is the fitted text-to-label capability a model delegates to.
type TextClassifier interface {
	Fit(samples, labels []string) error
	PredictLabel(text string) (string, error)
}

type Model interface {
	Train() error
	IsTrained() bool
	TrainErr() error
	GetType() string
	GetName() string
	GetParams() Hyperparameters
}

// Predictor is a Model with a typed prediction: bool for command matching,
// int for ordinal scaling.
type Predictor[T comparable] interface {
	Model
	Predict(text string) (T, error)
}

// TrainingResult is either a trained model (Err == nil) or a failed one
// carrying the reason. A failed result still holds the untrained model.
type TrainingResult[T comparable] struct {
	Model Predictor[T]
	Err   error
}

func ResultOf[T comparable](m Predictor[T]) TrainingResult[T] {
	return TrainingResult[T]{Model: m, Err: m.TrainErr()}
}

func (r TrainingResult[T]) Trained() bool {
	return r.Err == nil && r.Model != nil && r.Model.IsTrained()
}

type Sample struct {
	Text  string
	Label string
}

type Options struct {
	Name    string
	Grammar map[string]string
	Shuffle bool
	Train   bool
	Params  Hyperparameters
	// Rand drives shuffling and per-fit seeds. A private source is created when nil.
	Rand *rand.Rand
}

type BaseModel struct {
	Name        string
	Grammar     map[string]string
	Params      Hyperparameters
	Data        []Sample
	TargetNames []string
	Trained     bool
	TrainError  string
	Classifier  TextClassifier

	trainErr error
	rng      *rand.Rand
}

func newBaseModel(data []Sample, targets []string, opts Options) BaseModel {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	bm := BaseModel{
		Name:        opts.Name,
		Grammar:     opts.Grammar,
		Params:      opts.Params,
		Data:        data,
		TargetNames: targets,
		rng:         rng,
	}
	if opts.Shuffle {
		rng.Shuffle(len(bm.Data), func(i, j int) {
			bm.Data[i], bm.Data[j] = bm.Data[j], bm.Data[i]
		})
	}
	return bm
}

func (bm *BaseModel) Train() error {
	if bm.rng == nil {
		bm.rng = rand.New(rand.NewSource(rand.Int63()))
	}

	samples := make([]string, len(bm.Data))
	labels := make([]string, len(bm.Data))
	for i, s := range bm.Data {
		samples[i] = s.Text
		labels[i] = s.Label
	}

	pipeline := NewPipeline(bm.Params, bm.rng.Int63n(1000))
	if err := pipeline.Fit(samples, labels); err != nil {
		bm.Trained = false
		bm.Classifier = nil
		bm.trainErr = fmt.Errorf("train %s (%s): %w", bm.Name, bm.Params, err)
		bm.TrainError = bm.trainErr.Error()
		return bm.trainErr
	}

	bm.Classifier = pipeline
	bm.Trained = true
	bm.trainErr = nil
	bm.TrainError = ""
	return nil
}

func (bm *BaseModel) trainOnConstruct() {
	if err := bm.Train(); err != nil {
		log.Debug("training failed", "model.name", bm.Name, "ml.operation", "fit", "err", err)
	}
}

func (bm *BaseModel) IsTrained() bool {
	return bm.Trained && bm.Classifier != nil
}

// TrainErr reports why the last fit failed, including after a round trip
// through persistence.
func (bm *BaseModel) TrainErr() error {
	if bm.trainErr != nil {
		return bm.trainErr
	}
	if bm.TrainError != "" {
		return errors.New(bm.TrainError)
	}
	if !bm.IsTrained() {
		return ErrNotTrained
	}
	return nil
}

func (bm *BaseModel) GetName() string {
	return bm.Name
}

func (bm *BaseModel) GetParams() Hyperparameters {
	return bm.Params
}

func (bm *BaseModel) predictLabel(text string) (string, error) {
	if !bm.IsTrained() {
		log.Debug("classifier has not been trained yet", "model.name", bm.Name)
		return "", ErrNotTrained
	}
	return bm.Classifier.PredictLabel(preprocessing.Lower(text))
}
