package preprocessing

import (
	"fmt"
	"math"
)

// TfidfTransformer reweights count vectors by smoothed inverse document
// frequency and L2-normalizes each row.
type TfidfTransformer struct {
	IDF      []float64
	IsFitted bool
}

func NewTfidfTransformer() *TfidfTransformer {
	return &TfidfTransformer{}
}

func (t *TfidfTransformer) Fit(X []SparseVector, nFeatures int) error {
	if len(X) == 0 {
		return fmt.Errorf("empty dataset")
	}

	df := make([]float64, nFeatures)
	for _, row := range X {
		for _, idx := range row.Indices {
			if idx >= nFeatures {
				return fmt.Errorf("feature index %d out of range (%d features)", idx, nFeatures)
			}
			df[idx]++
		}
	}

	n := float64(len(X))
	t.IDF = make([]float64, nFeatures)
	for j := range df {
		t.IDF[j] = math.Log((1+n)/(1+df[j])) + 1
	}

	t.IsFitted = true
	return nil
}

func (t *TfidfTransformer) Transform(X []SparseVector) ([]SparseVector, error) {
	if !t.IsFitted {
		return nil, fmt.Errorf("TfidfTransformer must be fitted before transform")
	}

	result := make([]SparseVector, len(X))
	for i, row := range X {
		out := SparseVector{
			Indices: append([]int(nil), row.Indices...),
			Values:  make([]float64, len(row.Values)),
		}
		for k, idx := range row.Indices {
			out.Values[k] = row.Values[k] * t.IDF[idx]
		}

		if norm := out.Norm(); norm > 0 {
			for k := range out.Values {
				out.Values[k] /= norm
			}
		}
		result[i] = out
	}
	return result, nil
}

func (t *TfidfTransformer) FitTransform(X []SparseVector, nFeatures int) ([]SparseVector, error) {
	if err := t.Fit(X, nFeatures); err != nil {
		return nil, err
	}
	return t.Transform(X)
}
