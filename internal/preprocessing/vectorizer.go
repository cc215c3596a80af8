package preprocessing

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrEmptyVocabulary = errors.New("empty vocabulary; documents contain no tokens")

// SparseVector holds the non-zero entries of a feature row, indices ascending.
type SparseVector struct {
	Indices []int
	Values  []float64
}

func (v SparseVector) Dot(w []float64) float64 {
	sum := 0.0
	for k, idx := range v.Indices {
		sum += w[idx] * v.Values[k]
	}
	return sum
}

func (v SparseVector) Norm() float64 {
	sum := 0.0
	for _, val := range v.Values {
		sum += val * val
	}
	return math.Sqrt(sum)
}

// CountVectorizer maps documents to token-count vectors over a sorted vocabulary.
type CountVectorizer struct {
	Vocabulary map[string]int
	IsFitted   bool
}

func NewCountVectorizer() *CountVectorizer {
	return &CountVectorizer{
		Vocabulary: make(map[string]int),
	}
}

func (cv *CountVectorizer) Fit(docs []string) error {
	unique := make(map[string]bool)
	for _, doc := range docs {
		for _, token := range Tokenize(doc) {
			unique[token] = true
		}
	}

	if len(unique) == 0 {
		return ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(unique))
	for term := range unique {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	cv.Vocabulary = make(map[string]int, len(terms))
	for i, term := range terms {
		cv.Vocabulary[term] = i
	}
	cv.IsFitted = true
	return nil
}

// Transform counts known tokens; out-of-vocabulary tokens are dropped.
func (cv *CountVectorizer) Transform(docs []string) ([]SparseVector, error) {
	if !cv.IsFitted {
		return nil, fmt.Errorf("CountVectorizer must be fitted before transform")
	}

	result := make([]SparseVector, len(docs))
	for i, doc := range docs {
		counts := make(map[int]float64)
		for _, token := range Tokenize(doc) {
			if idx, ok := cv.Vocabulary[token]; ok {
				counts[idx]++
			}
		}

		row := SparseVector{
			Indices: make([]int, 0, len(counts)),
			Values:  make([]float64, 0, len(counts)),
		}
		for idx := range counts {
			row.Indices = append(row.Indices, idx)
		}
		sort.Ints(row.Indices)
		for _, idx := range row.Indices {
			row.Values = append(row.Values, counts[idx])
		}
		result[i] = row
	}
	return result, nil
}

func (cv *CountVectorizer) FitTransform(docs []string) ([]SparseVector, error) {
	if err := cv.Fit(docs); err != nil {
		return nil, err
	}
	return cv.Transform(docs)
}

func (cv *CountVectorizer) NumFeatures() int {
	return len(cv.Vocabulary)
}
