package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercases", "Show Me THE News", []string{"show", "me", "the", "news"}},
		{"drops single characters", "wake me up at 7", []string{"wake", "me", "up", "at"}},
		{"splits on punctuation", "what's the news?", []string{"what", "the", "news"}},
		{"keeps digits and underscores", "set 10 alarms_now", []string{"set", "10", "alarms_now"}},
		{"empty", "  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestLines(t *testing.T) {
	got := Lines("  Show Me The News\n\n   What's New  \r\n\n")
	assert.Equal(t, []string{"show me the news", "what's new"}, got)
	assert.Empty(t, Lines("\n \n"))
}

func TestUpper(t *testing.T) {
	assert.Equal(t, "GET_NEWS", Upper("get_news"))
}

func TestCountVectorizerSortedVocabulary(t *testing.T) {
	cv := NewCountVectorizer()
	X, err := cv.FitTransform([]string{"the news the", "hello there"})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"hello": 0, "news": 1, "the": 2, "there": 3}, cv.Vocabulary)
	assert.Equal(t, 4, cv.NumFeatures())

	assert.Equal(t, []int{1, 2}, X[0].Indices)
	assert.Equal(t, []float64{1, 2}, X[0].Values)
	assert.Equal(t, []int{0, 3}, X[1].Indices)
}

func TestCountVectorizerDropsUnknownTokens(t *testing.T) {
	cv := NewCountVectorizer()
	require.NoError(t, cv.Fit([]string{"show me the news"}))

	X, err := cv.Transform([]string{"turn off the lights"})
	require.NoError(t, err)
	assert.Equal(t, []int{cv.Vocabulary["the"]}, X[0].Indices)
}

func TestCountVectorizerErrors(t *testing.T) {
	cv := NewCountVectorizer()
	_, err := cv.Transform([]string{"x"})
	assert.Error(t, err)

	err = cv.Fit([]string{"a", "!", ""})
	assert.ErrorIs(t, err, ErrEmptyVocabulary)
}

func TestTfidfSmoothIDFAndNorm(t *testing.T) {
	cv := NewCountVectorizer()
	counts, err := cv.FitTransform([]string{"news news", "news alarm"})
	require.NoError(t, err)

	tf := NewTfidfTransformer()
	X, err := tf.FitTransform(counts, cv.NumFeatures())
	require.NoError(t, err)

	alarm := cv.Vocabulary["alarm"]
	news := cv.Vocabulary["news"]
	// n=2: alarm appears in one document, news in both
	assert.InDelta(t, math.Log(3.0/2.0)+1, tf.IDF[alarm], 1e-12)
	assert.InDelta(t, 1.0, tf.IDF[news], 1e-12)

	for i, row := range X {
		assert.InDelta(t, 1.0, row.Norm(), 1e-12, "row %d", i)
	}
	// a single-term row normalizes to exactly one
	assert.Equal(t, []float64{1}, X[0].Values)
}

func TestTfidfErrors(t *testing.T) {
	tf := NewTfidfTransformer()
	_, err := tf.Transform(nil)
	assert.Error(t, err)

	assert.Error(t, tf.Fit(nil, 3))
	assert.Error(t, tf.Fit([]SparseVector{{Indices: []int{5}, Values: []float64{1}}}, 3))
}

func TestSparseVectorDot(t *testing.T) {
	v := SparseVector{Indices: []int{0, 2}, Values: []float64{2, 3}}
	assert.Equal(t, 2.0*1+3.0*4, v.Dot([]float64{1, 10, 4}))
	assert.InDelta(t, math.Sqrt(13), v.Norm(), 1e-12)
}

func TestLabelEncoder(t *testing.T) {
	le := NewLabelEncoder()
	encoded, err := le.FitTransform([]string{"True", "False", "True"})
	require.NoError(t, err)

	assert.Equal(t, []string{"False", "True"}, le.Classes)
	assert.Equal(t, []int{1, 0, 1}, encoded)

	assert.Equal(t, 1, le.ClassToInt["True"])

	_, err = le.Transform([]string{"Maybe"})
	assert.Error(t, err)
}

func TestLabelEncoderUnfitted(t *testing.T) {
	le := NewLabelEncoder()
	_, err := le.Transform([]string{"a"})
	assert.Error(t, err)
}
