package evaluation

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// Summary is the pass/fail tally of one model against its test set.
type Summary struct {
	Failures int
	Total    int
	PassRate decimal.Decimal
}

func Summarize(failures, total int) Summary {
	rate := decimal.Zero
	if total > 0 {
		passed := decimal.NewFromInt(int64(total - failures))
		rate = passed.DivRound(decimal.NewFromInt(int64(total)), 4)
	}
	return Summary{
		Failures: failures,
		Total:    total,
		PassRate: rate,
	}
}

func (s Summary) Passed() bool {
	return s.Failures == 0
}

func (s Summary) FormatSummary() string {
	return fmt.Sprintf("failed %d out of %d tests (pass rate %s)", s.Failures, s.Total, s.PassRate.StringFixed(4))
}

// SweepStats describes the failure counts across every sweep candidate.
type SweepStats struct {
	Candidates int
	Trained    int
	Min        float64
	Median     float64
	Mean       float64
}

func CalculateSweepStats[T comparable](candidates []Candidate[T]) SweepStats {
	st := SweepStats{Candidates: len(candidates)}
	if len(candidates) == 0 {
		return st
	}

	failures := make(stats.Float64Data, len(candidates))
	for i, c := range candidates {
		failures[i] = float64(c.Failures)
		if c.Result.Trained() {
			st.Trained++
		}
	}

	st.Min, _ = failures.Min()
	st.Median, _ = failures.Median()
	st.Mean, _ = failures.Mean()
	return st
}
