package evaluation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/kylebegovich/alice/internal/data"
)

// TestSet pairs inputs with the labels a model should produce for them.
type TestSet[T comparable] struct {
	Inputs   []string
	Expected []T
}

func (ts *TestSet[T]) Add(input string, expected T) {
	ts.Inputs = append(ts.Inputs, input)
	ts.Expected = append(ts.Expected, expected)
}

func (ts *TestSet[T]) Len() int {
	return len(ts.Inputs)
}

// CommandTestSet is the explicit CSV cases followed by every positive
// (expected true) and every amplified negative (expected false).
func CommandTestSet(cases []data.TestCase, ds data.CommandDataset) TestSet[bool] {
	var ts TestSet[bool]
	for _, tc := range cases {
		ts.Add(tc.Text, strings.ToLower(tc.Label) == "true")
	}
	for _, sample := range ds.True {
		ts.Add(sample, true)
	}
	for _, sample := range ds.False {
		ts.Add(sample, false)
	}
	return ts
}

// OrdinalTestSet is the explicit CSV cases followed by every training sample
// of every level, lowest level first. Rows whose level is not an integer are
// skipped. Training samples double as test cases: there is no held-out split.
func OrdinalTestSet(cases []data.TestCase, ds data.OrdinalDataset) TestSet[int] {
	var ts TestSet[int]
	for _, tc := range cases {
		level, err := strconv.Atoi(tc.Label)
		if err != nil {
			log.Warn("skipping test case with non-integer level", "text", tc.Text, "level", tc.Label)
			continue
		}
		ts.Add(strings.ToLower(tc.Text), level)
	}
	for _, level := range ds.SortedLevels() {
		for _, sample := range ds.Levels[level] {
			ts.Add(sample, level)
		}
	}
	return ts
}

// TestModel runs predict over tests and counts results that differ from
// correct. A prediction error or panic counts as a mismatch.
func TestModel[T comparable](predict func(string) (T, error), tests []string, correct []T) (int, string) {
	failCount := 0
	var messages []string

	n := len(tests)
	if len(correct) > n {
		n = len(correct)
	}

	for i := 0; i < n; i++ {
		if i >= len(tests) {
			failCount++
			messages = append(messages, fmt.Sprintf("Missing test input for expected '%v'", correct[i]))
			continue
		}
		if i >= len(correct) {
			failCount++
			messages = append(messages, fmt.Sprintf("Failed test '%s': no expected value", tests[i]))
			continue
		}

		got, err := safePredict(predict, tests[i])
		if err != nil {
			failCount++
			messages = append(messages, fmt.Sprintf("Failed test '%s': Got '%v', should be '%v'", tests[i], err, correct[i]))
			continue
		}
		if got != correct[i] {
			failCount++
			messages = append(messages, fmt.Sprintf("Failed test '%s': Got '%v', should be '%v'", tests[i], got, correct[i]))
		}
	}

	return failCount, strings.Join(messages, "\n")
}

func safePredict[T comparable](predict func(string) (T, error), input string) (got T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("prediction panicked: %v", r)
		}
	}()
	return predict(input)
}
