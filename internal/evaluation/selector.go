package evaluation

import (
	"github.com/kylebegovich/alice/internal/models"
)

// Candidate is one evaluated sweep entry.
type Candidate[T comparable] struct {
	Result   models.TrainingResult[T]
	Failures int
	Messages string
}

// Evaluate scores a training result against ts. Untrained models are not
// special-cased; they fail every case.
func Evaluate[T comparable](result models.TrainingResult[T], ts TestSet[T]) Candidate[T] {
	if result.Model == nil {
		return Candidate[T]{Result: result, Failures: ts.Len(), Messages: "no model"}
	}
	failures, messages := TestModel(result.Model.Predict, ts.Inputs, ts.Expected)
	return Candidate[T]{
		Result:   result,
		Failures: failures,
		Messages: messages,
	}
}

// SelectBest returns the candidate with the fewest failures; the earliest
// wins a tie. ok is false only for an empty slice.
func SelectBest[T comparable](candidates []Candidate[T]) (best Candidate[T], index int, ok bool) {
	index = -1
	for i, c := range candidates {
		if index == -1 || c.Failures < best.Failures {
			best = c
			index = i
		}
	}
	return best, index, index != -1
}
