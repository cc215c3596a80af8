package experiment

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/gocarina/gocsv"
	"golang.org/x/sync/errgroup"

	"github.com/kylebegovich/alice/internal/config"
	"github.com/kylebegovich/alice/internal/evaluation"
	"github.com/kylebegovich/alice/internal/models"
)

// Sweeper holds the fixed hyperparameter grid every dataset is swept over.
type Sweeper struct {
	Grid    []models.Hyperparameters
	Workers int
}

// NewSweeper builds the loss-major cross product of the configured losses
// and penalties.
func NewSweeper(cfg config.SweepConfig, workers int) (*Sweeper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}

	var grid []models.Hyperparameters
	for _, lossName := range cfg.LossFunctions {
		loss, err := models.ParseLoss(lossName)
		if err != nil {
			return nil, err
		}
		for _, penaltyName := range cfg.PenaltyFunctions {
			penalty, err := models.ParsePenalty(penaltyName)
			if err != nil {
				return nil, err
			}
			grid = append(grid, models.Hyperparameters{
				Loss:       loss,
				Penalty:    penalty,
				Alpha:      cfg.Alpha(),
				Iterations: cfg.IterationBudget,
			})
		}
	}

	return &Sweeper{Grid: grid, Workers: workers}, nil
}

func (s *Sweeper) Size() int {
	return len(s.Grid)
}

// Sweep trains one candidate per grid entry. Results are in grid order.
func Sweep[T comparable](ctx context.Context, s *Sweeper, build func(models.Hyperparameters) models.TrainingResult[T]) ([]models.TrainingResult[T], error) {
	results := make([]models.TrainingResult[T], len(s.Grid))
	err := s.each(ctx, nil, func(i int) {
		results[i] = build(s.Grid[i])
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// SweepAndEvaluate trains and scores each candidate on the same worker.
// progress, if set, is called after each candidate with the number done.
func SweepAndEvaluate[T comparable](
	ctx context.Context,
	s *Sweeper,
	build func(models.Hyperparameters) models.TrainingResult[T],
	ts evaluation.TestSet[T],
	progress func(done, total int),
) ([]evaluation.Candidate[T], error) {
	candidates := make([]evaluation.Candidate[T], len(s.Grid))
	err := s.each(ctx, progress, func(i int) {
		candidates[i] = evaluation.Evaluate(build(s.Grid[i]), ts)
	})
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

func (s *Sweeper) each(ctx context.Context, progress func(done, total int), fn func(i int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Workers)

	var done atomic.Int64
	total := len(s.Grid)
	for i := range s.Grid {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i)
			n := done.Add(1)
			if progress != nil {
				progress(int(n), total)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("sweep interrupted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("sweep interrupted: %w", err)
	}
	return nil
}

// ResultRow is one sweep candidate in the exported results file.
type ResultRow struct {
	Dataset  string `csv:"dataset"`
	Model    string `csv:"model"`
	Loss     string `csv:"loss"`
	Penalty  string `csv:"penalty"`
	Trained  bool   `csv:"trained"`
	Failures int    `csv:"failures"`
	Tests    int    `csv:"tests"`
	PassRate string `csv:"pass_rate"`
	Selected bool   `csv:"selected"`
	Error    string `csv:"error"`
}

func resultRows[T comparable](dataset, model string, candidates []evaluation.Candidate[T], selected, tests int) []ResultRow {
	rows := make([]ResultRow, len(candidates))
	for i, c := range candidates {
		var params models.Hyperparameters
		if c.Result.Model != nil {
			params = c.Result.Model.GetParams()
		}
		row := ResultRow{
			Dataset:  dataset,
			Model:    model,
			Loss:     string(params.Loss),
			Penalty:  string(params.Penalty),
			Trained:  c.Result.Trained(),
			Failures: c.Failures,
			Tests:    tests,
			PassRate: evaluation.Summarize(c.Failures, tests).PassRate.StringFixed(4),
			Selected: i == selected,
		}
		if c.Result.Err != nil {
			row.Error = c.Result.Err.Error()
		}
		rows[i] = row
	}
	return rows
}

func ExportResults(rows []ResultRow, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}
