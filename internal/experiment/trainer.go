package experiment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/kylebegovich/alice/internal/config"
	"github.com/kylebegovich/alice/internal/data"
	"github.com/kylebegovich/alice/internal/evaluation"
	"github.com/kylebegovich/alice/internal/history"
	"github.com/kylebegovich/alice/internal/jobs"
	"github.com/kylebegovich/alice/internal/models"
	"github.com/kylebegovich/alice/internal/persistence"
)

// ErrBuildFailed is returned by Report when at least one dataset's best
// model failed a test or the dataset could not be trained.
var ErrBuildFailed = errors.New("one or more models failed their tests")

const (
	jobCommand = "command"
	jobOrdinal = "ordinal"
)

// Outcome is the result of one dataset, stored on its job.
type Outcome struct {
	Dataset      string
	ModelName    string
	Params       models.Hyperparameters
	Summary      evaluation.Summary
	ArtifactPath string
	Reused       bool
}

// Trainer runs load -> amplify -> sweep -> evaluate -> select -> persist for
// every dataset, one dataset at a time.
type Trainer struct {
	Config  *config.Config
	Sweeper *Sweeper
	Store   *persistence.Store
	Jobs    *jobs.Manager
	Ledger  *history.Ledger
	RunID   string
	// Reuse re-evaluates an existing artifact instead of sweeping.
	Reuse bool

	out     io.Writer
	results []ResultRow
	green   func(a ...any) string
	red     func(a ...any) string
}

func NewTrainer(cfg *config.Config, out io.Writer) (*Trainer, error) {
	sweeper, err := NewSweeper(cfg.Sweep, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep configuration: %w", err)
	}

	return &Trainer{
		Config:  cfg,
		Sweeper: sweeper,
		Store:   persistence.NewStore(cfg.DataRoot, cfg.ModelRoot),
		Jobs:    jobs.NewManager(),
		RunID:   uuid.NewString(),
		out:     out,
		green:   color.New(color.FgGreen).SprintFunc(),
		red:     color.New(color.FgRed).SprintFunc(),
	}, nil
}

func (t *Trainer) Results() []ResultRow {
	return t.results
}

func (t *Trainer) TrainCommands(ctx context.Context) error {
	dirs, err := data.DiscoverDatasets(t.Config.CommandsRoot(), config.DatasetSuffix)
	if err != nil {
		return err
	}

	var named []data.NamedCommandDataset
	pending := make(map[string]*jobs.Job, len(dirs))
	for _, dir := range dirs {
		job := t.Jobs.CreateJob(jobCommand, dir)
		ds, err := data.LoadCommandDataset(dir)
		if err != nil {
			log.Error("failed to load dataset", "path", dir, "err", err)
			job.SetError(err)
			continue
		}
		pending[dir] = job
		named = append(named, data.NamedCommandDataset{Path: dir, Dataset: ds})
	}

	noise, err := data.LoadNoise(t.Config.NoisePath)
	if err != nil {
		return err
	}

	for _, nd := range data.AmplifyCommands(named, noise) {
		if ctx.Err() != nil {
			break
		}
		cases, err := data.NewCSVReader(filepath.Join(nd.Path, config.TestCasesFile)).LoadTestCases()
		if err != nil {
			pending[nd.Path].SetError(err)
			continue
		}

		ds := nd.Dataset
		name := persistence.ModelName(nd.Path)
		v := variant[bool]{
			kind: persistence.KindCommand,
			build: func(p models.Hyperparameters) models.TrainingResult[bool] {
				m := models.NewCommandMatchingModel(ds, models.Options{
					Name:    name,
					Shuffle: true,
					Train:   true,
					Params:  p,
				})
				return models.ResultOf[bool](m)
			},
			wrap: func(p models.Predictor[bool]) (*persistence.Artifact, error) {
				m, ok := p.(*models.CommandMatchingModel)
				if !ok {
					return nil, fmt.Errorf("unexpected model type %T", p)
				}
				return persistence.NewCommandArtifact(m), nil
			},
			unwrap: func(a *persistence.Artifact) (models.Predictor[bool], bool) {
				return a.Command, a.Kind == persistence.KindCommand && a.Command != nil
			},
		}

		log.Info("training command model", "model.name", name, "data.samples", humanize.Comma(int64(ds.Size())))
		runDataset(ctx, t, pending[nd.Path], nd.Path, evaluation.CommandTestSet(cases, ds), v)
	}

	return t.interrupted(ctx)
}

func (t *Trainer) TrainOrdinalScalers(ctx context.Context) error {
	dirs, err := data.DiscoverDatasets(t.Config.OrdinalScalersRoot(), config.DatasetSuffix)
	if err != nil {
		return err
	}

	var named []data.NamedOrdinalDataset
	pending := make(map[string]*jobs.Job, len(dirs))
	for _, dir := range dirs {
		job := t.Jobs.CreateJob(jobOrdinal, dir)
		ds, err := data.LoadOrdinalDataset(dir)
		if err != nil {
			log.Error("failed to load dataset", "path", dir, "err", err)
			job.SetError(err)
			continue
		}
		pending[dir] = job
		named = append(named, data.NamedOrdinalDataset{Path: dir, Dataset: ds})
	}

	for _, nd := range data.AmplifyOrdinal(named) {
		if ctx.Err() != nil {
			break
		}
		cases, err := data.NewCSVReader(filepath.Join(nd.Path, config.TestCasesFile)).LoadTestCases()
		if err != nil {
			pending[nd.Path].SetError(err)
			continue
		}

		levels := nd.Dataset.Labeled()
		name := persistence.ModelName(nd.Path)
		v := variant[int]{
			kind: persistence.KindOrdinal,
			build: func(p models.Hyperparameters) models.TrainingResult[int] {
				m := models.NewOrdinalScaleModel(levels, models.Options{
					Name:    name,
					Shuffle: true,
					Train:   true,
					Params:  p,
				})
				return models.ResultOf[int](m)
			},
			wrap: func(p models.Predictor[int]) (*persistence.Artifact, error) {
				m, ok := p.(*models.OrdinalScaleModel)
				if !ok {
					return nil, fmt.Errorf("unexpected model type %T", p)
				}
				return persistence.NewOrdinalArtifact(m), nil
			},
			unwrap: func(a *persistence.Artifact) (models.Predictor[int], bool) {
				return a.Ordinal, a.Kind == persistence.KindOrdinal && a.Ordinal != nil
			},
		}

		log.Info("training ordinal model", "model.name", name, "data.samples", humanize.Comma(int64(nd.Dataset.Size())))
		runDataset(ctx, t, pending[nd.Path], nd.Path, evaluation.OrdinalTestSet(cases, nd.Dataset), v)
	}

	return t.interrupted(ctx)
}

func (t *Trainer) interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		t.Jobs.CancelPending()
		return fmt.Errorf("training interrupted: %w", err)
	}
	return nil
}

type variant[T comparable] struct {
	kind   persistence.Kind
	build  func(models.Hyperparameters) models.TrainingResult[T]
	wrap   func(models.Predictor[T]) (*persistence.Artifact, error)
	unwrap func(*persistence.Artifact) (models.Predictor[T], bool)
}

func runDataset[T comparable](ctx context.Context, t *Trainer, job *jobs.Job, dir string, ts evaluation.TestSet[T], v variant[T]) {
	job.SetStatus(jobs.JobRunning)
	name := persistence.ModelName(dir)

	if t.Reuse {
		if reuseExisting(t, job, dir, ts, v) {
			return
		}
	}

	start := time.Now()
	candidates, err := SweepAndEvaluate(ctx, t.Sweeper, v.build, ts, func(done, total int) {
		job.SetProgress(float64(done) / float64(total))
	})
	if err != nil {
		job.AddLog(err.Error())
		if ctx.Err() != nil {
			job.SetStatus(jobs.JobCancelled)
			return
		}
		job.SetError(err)
		return
	}
	elapsed := time.Since(start)
	job.AddLog(fmt.Sprintf("swept %d candidates in %v", len(candidates), elapsed.Round(time.Millisecond)))

	st := evaluation.CalculateSweepStats(candidates)
	log.Info("sweep finished",
		"model.name", name,
		"candidates", st.Candidates,
		"trained", st.Trained,
		"failures.min", st.Min,
		"failures.median", st.Median,
		"failures.mean", st.Mean,
		"duration", elapsed.Round(time.Millisecond))

	best, idx, ok := evaluation.SelectBest(candidates)
	if !ok {
		job.SetError(fmt.Errorf("no candidates were produced"))
		return
	}
	t.results = append(t.results, resultRows(dir, name, candidates, idx, ts.Len())...)

	summary := evaluation.Summarize(best.Failures, ts.Len())
	job.AddLog(fmt.Sprintf("selected %s: %s", best.Result.Model.GetParams(), summary.FormatSummary()))
	t.printOutcome(name, best.Messages, summary)

	artifact, err := v.wrap(best.Result.Model)
	if err != nil {
		job.SetError(err)
		return
	}
	artifact.Metadata.Dataset = dir
	artifact.Metadata.RunID = t.RunID
	artifact.Metadata.Failures = summary.Failures
	artifact.Metadata.Tests = summary.Total
	artifact.Metadata.PassRate = summary.PassRate
	artifact.Metadata.TrainingTime = elapsed

	path, err := t.Store.Save(artifact, dir)
	if err != nil {
		log.Error("failed to save model", "model.name", name, "err", err)
		job.SetError(err)
		return
	}
	job.AddLog("saved " + path)

	outcome := Outcome{
		Dataset:      dir,
		ModelName:    name,
		Params:       best.Result.Model.GetParams(),
		Summary:      summary,
		ArtifactPath: path,
	}
	t.record(ctx, v.kind, outcome)
	t.finish(job, outcome)
}

// reuseExisting evaluates a previously saved artifact. It reports false when
// there is nothing usable to reuse and a sweep should run instead.
func reuseExisting[T comparable](t *Trainer, job *jobs.Job, dir string, ts evaluation.TestSet[T], v variant[T]) bool {
	path, err := t.Store.ModelPath(dir)
	if err != nil {
		log.Warn("dataset has no model path, retraining", "path", dir, "err", err)
		return false
	}
	artifact, err := t.Store.Load(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn("existing model unusable, retraining", "path", path, "err", err)
		}
		return false
	}
	model, ok := v.unwrap(artifact)
	if !ok {
		log.Warn("existing model has the wrong kind, retraining", "path", dir, "kind", artifact.Kind)
		return false
	}

	log.Info("using existing model", "model.name", model.GetName())
	candidate := evaluation.Evaluate(models.ResultOf(model), ts)
	summary := evaluation.Summarize(candidate.Failures, ts.Len())
	job.AddLog("reused existing model: " + summary.FormatSummary())
	t.printOutcome(persistence.ModelName(dir), candidate.Messages, summary)

	t.finish(job, Outcome{
		Dataset:      dir,
		ModelName:    persistence.ModelName(dir),
		Params:       model.GetParams(),
		Summary:      summary,
		ArtifactPath: path,
		Reused:       true,
	})
	return true
}

func (t *Trainer) finish(job *jobs.Job, outcome Outcome) {
	job.SetResult(outcome)
	job.SetProgress(1)
	if outcome.Summary.Passed() {
		job.SetStatus(jobs.JobCompleted)
		return
	}
	job.SetError(fmt.Errorf("Failed %d out of %d tests", outcome.Summary.Failures, outcome.Summary.Total))
}

func (t *Trainer) record(ctx context.Context, kind persistence.Kind, o Outcome) {
	if t.Ledger == nil {
		return
	}
	err := t.Ledger.Record(ctx, history.Entry{
		RunID:        t.RunID,
		ModelName:    o.ModelName,
		Kind:         string(kind),
		Dataset:      o.Dataset,
		Loss:         string(o.Params.Loss),
		Penalty:      string(o.Params.Penalty),
		Failures:     o.Summary.Failures,
		Tests:        o.Summary.Total,
		PassRate:     o.Summary.PassRate,
		ArtifactPath: o.ArtifactPath,
	})
	if err != nil {
		log.Warn("failed to record history", "model.name", o.ModelName, "err", err)
	}
}

func (t *Trainer) printOutcome(name, messages string, summary evaluation.Summary) {
	if summary.Failures > 0 && messages != "" {
		fmt.Fprintln(t.out)
		fmt.Fprintln(t.out, messages)
	}

	line := fmt.Sprintf("Model %s failed %d out of %d tests", displayName(name), summary.Failures, summary.Total)
	if summary.Passed() {
		fmt.Fprintln(t.out, t.green(line))
	} else {
		fmt.Fprintln(t.out, t.red(line))
	}
}

// Report prints the aggregate error block once, after every dataset has
// been processed, and returns ErrBuildFailed if it was not empty. Cancelled
// datasets are listed alongside failed ones.
func (t *Trainer) Report() error {
	failed := t.Jobs.Failed()
	if len(failed) == 0 {
		return nil
	}

	var lines []string
	for _, job := range failed {
		reason := "training was cancelled"
		if err := job.GetError(); err != nil {
			reason = err.Error()
		}
		lines = append(lines, fmt.Sprintf("Errors in Model %s: %s", job.Dataset, reason))
	}
	fmt.Fprintln(t.out)
	fmt.Fprintln(t.out, t.red(strings.Join(lines, "\n")))
	return fmt.Errorf("%w: %d of %d datasets", ErrBuildFailed, len(failed), len(t.Jobs.ListJobs()))
}

// LogJobs writes every job's status, progress and log lines at debug level.
func (t *Trainer) LogJobs() {
	for _, job := range t.Jobs.ListJobs() {
		log.Debug("job",
			"id", job.ID,
			"type", job.Type,
			"dataset", job.Dataset,
			"status", job.GetStatus(),
			"progress", fmt.Sprintf("%.0f%%", job.GetProgress()*100))
		for _, line := range job.GetLogs() {
			log.Debug(line, "dataset", job.Dataset)
		}
	}
}

func displayName(modelName string) string {
	return strings.TrimSuffix(modelName, config.ModelExtension)
}
