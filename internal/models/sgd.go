package models

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/kylebegovich/alice/internal/preprocessing"
)

var (
	ErrNoSamples   = errors.New("no training samples")
	ErrSingleClass = errors.New("training data needs samples of at least two classes")
	ErrDiverged    = errors.New("floating-point under-/overflow during training")
)

// maxUpdate bounds a single gradient step.
const maxUpdate = 1e12

// SGDClassifier is a linear model trained by stochastic gradient descent with
// the "optimal" learning-rate schedule. Multi-class problems are solved
// one-vs-all; binary problems use a single weight vector for Classes[1].
type SGDClassifier struct {
	Params     Hyperparameters
	Classes    []string
	Weights    [][]float64
	Intercepts []float64
	NFeatures  int
	IsFitted   bool
}

func NewSGDClassifier(params Hyperparameters) *SGDClassifier {
	return &SGDClassifier{Params: params}
}

func (c *SGDClassifier) Fit(X []preprocessing.SparseVector, labels []string, nFeatures int, seed int64) error {
	if len(X) == 0 {
		return ErrNoSamples
	}
	if len(X) != len(labels) {
		return fmt.Errorf("feature rows and labels have different lengths: %d vs %d", len(X), len(labels))
	}
	if err := c.Params.Validate(); err != nil {
		return err
	}

	encoder := preprocessing.NewLabelEncoder()
	y, err := encoder.FitTransform(labels)
	if err != nil {
		return err
	}
	if len(encoder.Classes) < 2 {
		return ErrSingleClass
	}

	c.Classes = encoder.Classes
	c.NFeatures = nFeatures
	c.IsFitted = false

	problems := len(c.Classes)
	if problems == 2 {
		problems = 1
	}

	c.Weights = make([][]float64, problems)
	c.Intercepts = make([]float64, problems)
	for k := 0; k < problems; k++ {
		positive := k
		if problems == 1 {
			positive = 1
		}

		target := make([]float64, len(y))
		for i, label := range y {
			if label == positive {
				target[i] = 1
			} else {
				target[i] = -1
			}
		}

		w, b, err := c.plainSGD(X, target, seed+int64(k))
		if err != nil {
			return fmt.Errorf("class %q: %w", c.Classes[positive], err)
		}
		c.Weights[k] = w
		c.Intercepts[k] = b
	}

	c.IsFitted = true
	return nil
}

func (c *SGDClassifier) plainSGD(X []preprocessing.SparseVector, y []float64, seed int64) ([]float64, float64, error) {
	loss := c.Params.Loss
	penalty := c.Params.Penalty
	alpha := c.Params.Alpha
	l1Ratio := penalty.l1Ratio()

	w := make([]float64, c.NFeatures)
	b := 0.0

	typw := math.Sqrt(1.0 / math.Sqrt(alpha))
	eta0 := typw / math.Max(1.0, loss.dloss(-typw, 1.0))
	optimalInit := 1.0 / (eta0 * alpha)

	var q []float64
	u := 0.0
	if penalty.hasL1() {
		q = make([]float64, c.NFeatures)
	}

	order := make([]int, len(X))
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewSource(seed))

	t := 1.0
	for epoch := 0; epoch < c.Params.Iterations; epoch++ {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		for _, i := range order {
			x := X[i]
			eta := 1.0 / (alpha * (optimalInit + t - 1))
			p := x.Dot(w) + b

			update := -eta * loss.dloss(p, y[i])
			update = math.Max(-maxUpdate, math.Min(maxUpdate, update))

			if penalty.hasL2() {
				scale := math.Max(0, 1-(1-l1Ratio)*eta*alpha)
				for j := range w {
					w[j] *= scale
				}
			}

			if update != 0 {
				for k, j := range x.Indices {
					w[j] += update * x.Values[k]
				}
				b += update
			}

			if penalty.hasL1() {
				u += l1Ratio * eta * alpha
				applyL1(w, q, x, u)
			}

			t++
		}

		if !finite(w, b) {
			return nil, 0, ErrDiverged
		}
	}

	return w, b, nil
}

// applyL1 is the cumulative truncated-gradient L1 step restricted to the
// features present in x.
func applyL1(w, q []float64, x preprocessing.SparseVector, u float64) {
	for _, j := range x.Indices {
		z := w[j]
		if w[j] > 0 {
			w[j] = math.Max(0, w[j]-(u+q[j]))
		} else if w[j] < 0 {
			w[j] = math.Min(0, w[j]+(u-q[j]))
		}
		q[j] += w[j] - z
	}
}

func finite(w []float64, b float64) bool {
	if math.IsNaN(b) || math.IsInf(b, 0) {
		return false
	}
	for _, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (c *SGDClassifier) DecisionFunction(x preprocessing.SparseVector) []float64 {
	scores := make([]float64, len(c.Weights))
	for k, w := range c.Weights {
		scores[k] = x.Dot(w) + c.Intercepts[k]
	}
	return scores
}

func (c *SGDClassifier) Predict(x preprocessing.SparseVector) (string, error) {
	if !c.IsFitted {
		return "", ErrNotTrained
	}

	scores := c.DecisionFunction(x)
	if len(scores) == 1 {
		if scores[0] > 0 {
			return c.Classes[1], nil
		}
		return c.Classes[0], nil
	}

	best := 0
	for k, score := range scores[1:] {
		if score > scores[best] {
			best = k + 1
		}
	}
	return c.Classes[best], nil
}
