package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kylebegovich/alice/internal/config"
	"github.com/kylebegovich/alice/internal/experiment"
	"github.com/kylebegovich/alice/internal/history"
)

type options struct {
	configFile string
	dataRoot   string
	modelRoot  string
	noisePath  string
	results    string
	workers    int
	reuse      bool
	strict     bool
	verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "train [commands|ordinal]",
		Short: "Train and select the command-matching and ordinal-scaling models",
		Long: `Sweeps every loss/penalty combination for each dataset under the data root,
keeps the candidate with the fewest test failures and writes it under the model root.
With no arguments both command and ordinal datasets are trained.`,
		Example: `  train
  train commands --workers 8
  train ordinal --config config/config.yaml -v`,
		Args:          cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs:     []string{"commands", "ordinal"},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			err := run(cmd, opts, target)
			if err != nil && !errors.Is(err, experiment.ErrBuildFailed) {
				log.Error(err)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", "config/config.yaml", "Path to configuration file")
	flags.StringVar(&opts.dataRoot, "data", "", "Dataset root (overrides config)")
	flags.StringVar(&opts.modelRoot, "output", "", "Model root (overrides config)")
	flags.StringVar(&opts.noisePath, "noise", "", "Noise corpus file (overrides config)")
	flags.StringVar(&opts.results, "results", "", "Write every sweep candidate to this CSV file")
	flags.IntVar(&opts.workers, "workers", 0, "Parallel candidates per sweep (overrides config)")
	flags.BoolVar(&opts.reuse, "reuse", false, "Re-evaluate existing models instead of retraining them")
	flags.BoolVar(&opts.strict, "strict", false, "Exit non-zero when any model fails a test")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	if err := config.ParseEnv(cfg); err != nil {
		return nil, err
	}

	if opts.dataRoot != "" {
		cfg.DataRoot = opts.dataRoot
	}
	if opts.modelRoot != "" {
		cfg.ModelRoot = opts.modelRoot
	}
	if opts.noisePath != "" {
		cfg.NoisePath = opts.noisePath
	}
	if opts.results != "" {
		cfg.ResultsPath = opts.results
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, opts *options, target string) error {
	log.SetPrefix("train")
	if opts.verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	trainer, err := experiment.NewTrainer(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	trainer.Reuse = opts.reuse
	defer trainer.LogJobs()

	if cfg.HistoryPath != "" {
		ledger, err := history.Open(cfg.HistoryPath)
		if err != nil {
			log.Warn("training history disabled", "err", err)
		} else {
			defer ledger.Close()
			trainer.Ledger = ledger
		}
	}

	log.Info("starting training run",
		"run", trainer.RunID,
		"candidates", trainer.Sweeper.Size(),
		"workers", cfg.Workers)

	ctx := cmd.Context()
	if target == "" || target == "commands" {
		if err := trainer.TrainCommands(ctx); err != nil {
			return err
		}
	}
	if target == "" || target == "ordinal" {
		if err := trainer.TrainOrdinalScalers(ctx); err != nil {
			return err
		}
	}

	if cfg.ResultsPath != "" {
		if err := experiment.ExportResults(trainer.Results(), cfg.ResultsPath); err != nil {
			log.Error("failed to export results", "err", err)
		} else {
			log.Info("sweep results saved", "path", cfg.ResultsPath)
		}
	}

	if err := trainer.Report(); err != nil && opts.strict {
		return err
	}
	return nil
}
