package models

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kylebegovich/alice/internal/data"
)

var newsDataset = data.CommandDataset{
	True:  []string{"show me the news", "what's the news", "read the headlines"},
	False: []string{"turn off the lights", "wake me up at 7", "hello there", "play some music"},
}

func trainingOptions(params Hyperparameters) Options {
	return Options{
		Name:    "GET_NEWS.model",
		Shuffle: true,
		Train:   true,
		Params:  params,
		Rand:    rand.New(rand.NewSource(42)),
	}
}

func TestUntrainedModelReturnsSentinel(t *testing.T) {
	m := NewCommandMatchingModel(newsDataset, Options{Name: "GET_NEWS.model", Params: DefaultHyperparameters()})

	assert.False(t, m.IsTrained())
	assert.ErrorIs(t, m.TrainErr(), ErrNotTrained)

	_, err := m.Match("show me the news")
	assert.ErrorIs(t, err, ErrNotTrained)

	o := NewOrdinalScaleModel(map[string][]string{"1": {"bad"}, "2": {"good"}}, Options{Params: DefaultHyperparameters()})
	level, err := o.Rate("good")
	assert.ErrorIs(t, err, ErrNotTrained)
	assert.Equal(t, -1, level)
}

func TestDegenerateDatasetsFailToTrain(t *testing.T) {
	tests := []struct {
		name string
		ds   data.CommandDataset
		want error
	}{
		{"empty", data.CommandDataset{}, ErrNoSamples},
		{"only positives", data.CommandDataset{True: []string{"show me the news"}}, ErrSingleClass},
		{"no tokens", data.CommandDataset{True: []string{"!"}, False: []string{"?"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewCommandMatchingModel(tt.ds, trainingOptions(DefaultHyperparameters()))
			assert.False(t, m.IsTrained())
			require.Error(t, m.TrainErr())
			if tt.want != nil {
				assert.ErrorIs(t, m.TrainErr(), tt.want)
			}

			result := ResultOf[bool](m)
			assert.False(t, result.Trained())
			assert.Error(t, result.Err)

			_, err := m.Match("anything")
			assert.ErrorIs(t, err, ErrNotTrained)
		})
	}
}

func TestEveryLossAndPenaltyTrains(t *testing.T) {
	losses := []Loss{Hinge, Log, ModifiedHuber, SquaredHinge, Perceptron,
		SquaredLoss, Huber, EpsilonInsensitive, SquaredEpsilonInsensitive}
	penalties := []Penalty{NoPenalty, L2, L1, ElasticNet}

	for _, loss := range losses {
		for _, penalty := range penalties {
			params := Hyperparameters{Loss: loss, Penalty: penalty, Alpha: 1e-3, Iterations: 5}
			t.Run(params.String(), func(t *testing.T) {
				m := NewCommandMatchingModel(newsDataset, trainingOptions(params))
				require.NoError(t, m.TrainErr())
				assert.True(t, m.IsTrained())

				_, err := m.Match("show me the news")
				assert.NoError(t, err)
			})
		}
	}
}

func TestCommandModelLearnsSeparableData(t *testing.T) {
	params := Hyperparameters{Loss: Hinge, Penalty: NoPenalty, Alpha: 1e-3, Iterations: 50}
	m := NewCommandMatchingModel(newsDataset, trainingOptions(params))
	require.NoError(t, m.TrainErr())

	for _, text := range newsDataset.True {
		got, err := m.Match(text)
		require.NoError(t, err)
		assert.True(t, got, text)
	}
	for _, text := range newsDataset.False {
		got, err := m.Match(text)
		require.NoError(t, err)
		assert.False(t, got, text)
	}

	// input is lowercased before prediction
	upper, err := m.Match("SHOW ME THE NEWS")
	require.NoError(t, err)
	assert.True(t, upper)
}

func TestTrainingIsReproducibleWithSeed(t *testing.T) {
	params := DefaultHyperparameters()
	a := NewCommandMatchingModel(newsDataset, trainingOptions(params))
	b := NewCommandMatchingModel(newsDataset, trainingOptions(params))
	require.NoError(t, a.TrainErr())
	require.NoError(t, b.TrainErr())

	pa := a.Classifier.(*Pipeline)
	pb := b.Classifier.(*Pipeline)
	assert.Equal(t, pa.Seed, pb.Seed)
	assert.Equal(t, pa.Classifier.Weights, pb.Classifier.Weights)
}

func TestOrdinalMultiClass(t *testing.T) {
	levels := map[string][]string{
		"1": {"terrible awful", "horrible experience"},
		"2": {"okay fine", "average enough"},
		"3": {"great excellent", "wonderful amazing"},
	}
	params := Hyperparameters{Loss: Hinge, Penalty: NoPenalty, Alpha: 1e-3, Iterations: 50}
	m := NewOrdinalScaleModel(levels, trainingOptions(params))
	require.NoError(t, m.TrainErr())

	p := m.Classifier.(*Pipeline)
	assert.Equal(t, []string{"1", "2", "3"}, p.Classifier.Classes)
	assert.Len(t, p.Classifier.Weights, 3)

	level, err := m.Rate("great excellent")
	require.NoError(t, err)
	assert.Contains(t, []int{1, 2, 3}, level)
	assert.Equal(t, "OrdinalScale", m.GetType())
}

func TestOrdinalRange(t *testing.T) {
	m := NewOrdinalScaleModel(map[string][]string{
		"3": {"great"},
		"1": {"bad"},
		"2": {"fine"},
	}, Options{Name: "MOOD.model"})

	lo, hi, err := m.Range()
	require.NoError(t, err)
	assert.Equal(t, 1, lo)
	assert.Equal(t, 3, hi)
}

func TestOrdinalRangeNegativeLevels(t *testing.T) {
	m := NewOrdinalScaleModel(map[string][]string{"-2": {"cold"}, "5": {"hot"}}, Options{})
	lo, hi, err := m.Range()
	require.NoError(t, err)
	assert.Equal(t, -2, lo)
	assert.Equal(t, 5, hi)
}

func TestOrdinalRangeRejectsNonIntegerKey(t *testing.T) {
	m := NewOrdinalScaleModel(map[string][]string{"1": {"bad"}, "high": {"great"}}, Options{Name: "MOOD.model"})
	_, _, err := m.Range()
	assert.ErrorIs(t, err, ErrUnparseableLevel)

	empty := NewOrdinalScaleModel(nil, Options{})
	_, _, err = empty.Range()
	assert.Error(t, err)
}

func TestRateRejectsNonIntegerLabel(t *testing.T) {
	levels := map[string][]string{"low": {"bad awful"}, "high": {"great excellent"}}
	m := NewOrdinalScaleModel(levels, trainingOptions(DefaultHyperparameters()))
	require.NoError(t, m.TrainErr())

	level, err := m.Rate("great excellent")
	assert.Equal(t, -1, level)
	assert.True(t, errors.Is(err, ErrUnparseableLevel))
}

func TestParseLoss(t *testing.T) {
	loss, err := ParseLoss("log_loss")
	require.NoError(t, err)
	assert.Equal(t, Log, loss)

	loss, err = ParseLoss("squared_error")
	require.NoError(t, err)
	assert.Equal(t, SquaredLoss, loss)

	_, err = ParseLoss("nope")
	assert.Error(t, err)
}

func TestParsePenalty(t *testing.T) {
	p, err := ParsePenalty("")
	require.NoError(t, err)
	assert.Equal(t, NoPenalty, p)

	_, err = ParsePenalty("l3")
	assert.Error(t, err)
}

func TestHyperparametersValidate(t *testing.T) {
	assert.NoError(t, DefaultHyperparameters().Validate())
	assert.Error(t, Hyperparameters{Loss: Hinge, Penalty: L2, Alpha: 0, Iterations: 5}.Validate())
	assert.Error(t, Hyperparameters{Loss: Hinge, Penalty: L2, Alpha: 1e-3, Iterations: 0}.Validate())
	assert.Error(t, Hyperparameters{Loss: "bogus", Penalty: L2, Alpha: 1e-3, Iterations: 5}.Validate())
}

func TestDloss(t *testing.T) {
	assert.Equal(t, -1.0, Hinge.dloss(0.5, 1))
	assert.Equal(t, 0.0, Hinge.dloss(2, 1))
	assert.Equal(t, 0.0, Perceptron.dloss(0.5, 1))
	assert.Equal(t, -4.0, ModifiedHuber.dloss(-3, 1))
	assert.InDelta(t, -0.5, Log.dloss(0, 1), 1e-12)
	assert.Equal(t, 1.5, SquaredLoss.dloss(0.5, -1))
	assert.Equal(t, -1.0, EpsilonInsensitive.dloss(0, 1))
}
