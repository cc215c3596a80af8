package models

import (
	"fmt"
	"math"
)

type Loss string

const (
	Hinge                     Loss = "hinge"
	Log                       Loss = "log"
	ModifiedHuber             Loss = "modified_huber"
	SquaredHinge              Loss = "squared_hinge"
	Perceptron                Loss = "perceptron"
	SquaredLoss               Loss = "squared_loss"
	Huber                     Loss = "huber"
	EpsilonInsensitive        Loss = "epsilon_insensitive"
	SquaredEpsilonInsensitive Loss = "squared_epsilon_insensitive"
)

type Penalty string

const (
	NoPenalty  Penalty = "none"
	L2         Penalty = "l2"
	L1         Penalty = "l1"
	ElasticNet Penalty = "elasticnet"
)

const (
	// epsilon for the huber and epsilon-insensitive losses
	lossEpsilon = 0.1
	// share of the penalty applied as L1 under elasticnet
	elasticNetL1Ratio = 0.15
)

var lossAliases = map[string]Loss{
	"log_loss":      Log,
	"squared_error": SquaredLoss,
}

func ParseLoss(name string) (Loss, error) {
	if alias, ok := lossAliases[name]; ok {
		return alias, nil
	}
	switch loss := Loss(name); loss {
	case Hinge, Log, ModifiedHuber, SquaredHinge, Perceptron,
		SquaredLoss, Huber, EpsilonInsensitive, SquaredEpsilonInsensitive:
		return loss, nil
	default:
		return "", fmt.Errorf("unknown loss function: %s", name)
	}
}

func ParsePenalty(name string) (Penalty, error) {
	switch penalty := Penalty(name); penalty {
	case NoPenalty, L2, L1, ElasticNet:
		return penalty, nil
	case "":
		return NoPenalty, nil
	default:
		return "", fmt.Errorf("unknown penalty function: %s", name)
	}
}

// dloss is the derivative of the loss with respect to the prediction p for
// target y in {-1, +1}.
func (l Loss) dloss(p, y float64) float64 {
	switch l {
	case Hinge:
		if p*y <= 1 {
			return -y
		}
		return 0
	case Perceptron:
		if p*y <= 0 {
			return -y
		}
		return 0
	case SquaredHinge:
		if z := 1 - p*y; z > 0 {
			return -2 * y * z
		}
		return 0
	case ModifiedHuber:
		z := p * y
		switch {
		case z >= 1:
			return 0
		case z >= -1:
			return -2 * (1 - z) * y
		default:
			return -4 * y
		}
	case Log:
		z := p * y
		switch {
		case z > 18:
			return -y * math.Exp(-z)
		case z < -18:
			return -y
		default:
			return -y / (math.Exp(z) + 1)
		}
	case SquaredLoss:
		return p - y
	case Huber:
		r := p - y
		switch {
		case math.Abs(r) <= lossEpsilon:
			return r
		case r > lossEpsilon:
			return lossEpsilon
		default:
			return -lossEpsilon
		}
	case EpsilonInsensitive:
		switch {
		case y-p > lossEpsilon:
			return -1
		case p-y > lossEpsilon:
			return 1
		default:
			return 0
		}
	case SquaredEpsilonInsensitive:
		z := y - p
		switch {
		case z > lossEpsilon:
			return -2 * (z - lossEpsilon)
		case z < -lossEpsilon:
			return 2 * (-z - lossEpsilon)
		default:
			return 0
		}
	}
	return 0
}

func (p Penalty) l1Ratio() float64 {
	switch p {
	case L1:
		return 1
	case ElasticNet:
		return elasticNetL1Ratio
	default:
		return 0
	}
}

func (p Penalty) hasL2() bool {
	return p == L2 || p == ElasticNet
}

func (p Penalty) hasL1() bool {
	return p == L1 || p == ElasticNet
}

// Hyperparameters for one sweep candidate.
type Hyperparameters struct {
	Loss       Loss
	Penalty    Penalty
	Alpha      float64
	Iterations int
}

func (h Hyperparameters) String() string {
	return fmt.Sprintf("loss=%s penalty=%s alpha=%g n_iter=%d", h.Loss, h.Penalty, h.Alpha, h.Iterations)
}

func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		Loss:       SquaredHinge,
		Penalty:    ElasticNet,
		Alpha:      1e-3,
		Iterations: 5,
	}
}

func (h Hyperparameters) Validate() error {
	if _, err := ParseLoss(string(h.Loss)); err != nil {
		return err
	}
	if _, err := ParsePenalty(string(h.Penalty)); err != nil {
		return err
	}
	if h.Alpha <= 0 {
		return fmt.Errorf("alpha must be positive, got %g", h.Alpha)
	}
	if h.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", h.Iterations)
	}
	return nil
}
