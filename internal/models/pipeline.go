package models

import (
	"fmt"

	"github.com/kylebegovich/alice/internal/preprocessing"
)

// Pipeline chains token counting, TF-IDF weighting and an SGD linear classifier.
type Pipeline struct {
	Vectorizer *preprocessing.CountVectorizer
	Tfidf      *preprocessing.TfidfTransformer
	Classifier *SGDClassifier
	Seed       int64
}

func NewPipeline(params Hyperparameters, seed int64) *Pipeline {
	return &Pipeline{
		Vectorizer: preprocessing.NewCountVectorizer(),
		Tfidf:      preprocessing.NewTfidfTransformer(),
		Classifier: NewSGDClassifier(params),
		Seed:       seed,
	}
}

func (p *Pipeline) Fit(samples, labels []string) error {
	if len(samples) == 0 {
		return ErrNoSamples
	}

	counts, err := p.Vectorizer.FitTransform(samples)
	if err != nil {
		return fmt.Errorf("vectorize: %w", err)
	}

	X, err := p.Tfidf.FitTransform(counts, p.Vectorizer.NumFeatures())
	if err != nil {
		return fmt.Errorf("tfidf: %w", err)
	}

	if err := p.Classifier.Fit(X, labels, p.Vectorizer.NumFeatures(), p.Seed); err != nil {
		return fmt.Errorf("sgd: %w", err)
	}
	return nil
}

func (p *Pipeline) PredictLabel(text string) (string, error) {
	if p.Classifier == nil || !p.Classifier.IsFitted {
		return "", ErrNotTrained
	}

	counts, err := p.Vectorizer.Transform([]string{text})
	if err != nil {
		return "", err
	}
	X, err := p.Tfidf.Transform(counts)
	if err != nil {
		return "", err
	}
	return p.Classifier.Predict(X[0])
}
