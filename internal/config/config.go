package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	CommandsDir       = "commands"
	OrdinalScalersDir = "ordinal_scalers"
	DatasetSuffix     = "_data"
	ModelExtension    = ".model"
	TestCasesFile     = "test.csv"
)

// DefaultLossFunctions is the reference loss grid, in sweep order.
var DefaultLossFunctions = []string{
	"hinge",
	"log",
	"modified_huber",
	"squared_hinge",
	"perceptron",
	"squared_loss",
	"huber",
	"epsilon_insensitive",
	"squared_epsilon_insensitive",
}

var DefaultPenaltyFunctions = []string{"none", "l2", "l1", "elasticnet"}

type Config struct {
	DataRoot    string `yaml:"data_root" env:"DATA_ROOT"`
	ModelRoot   string `yaml:"model_root" env:"MODEL_ROOT"`
	NoisePath   string `yaml:"noise_path" env:"NOISE_PATH"`
	HistoryPath string `yaml:"history_path" env:"HISTORY_PATH"`
	ResultsPath string `yaml:"results_path" env:"RESULTS_PATH"`
	Workers     int    `yaml:"workers" env:"WORKERS"`

	Sweep SweepConfig `yaml:"sweep" envPrefix:"SWEEP_"`
}

type SweepConfig struct {
	LossFunctions          []string        `yaml:"loss_functions" env:"LOSS_FUNCTIONS" envSeparator:","`
	PenaltyFunctions       []string        `yaml:"penalty_functions" env:"PENALTY_FUNCTIONS" envSeparator:","`
	RegularizationStrength decimal.Decimal `yaml:"alpha" env:"ALPHA"`
	IterationBudget        int             `yaml:"iterations" env:"ITERATIONS"`
}

func Default() *Config {
	return &Config{
		DataRoot:    "data",
		ModelRoot:   "models",
		NoisePath:   "nonsense.txt",
		HistoryPath: filepath.Join("models", "history.db"),
		Workers:     runtime.GOMAXPROCS(0),
		Sweep: SweepConfig{
			LossFunctions:          append([]string(nil), DefaultLossFunctions...),
			PenaltyFunctions:       append([]string(nil), DefaultPenaltyFunctions...),
			RegularizationStrength: decimal.New(1, -3),
			IterationBudget:        5,
		},
	}
}

// Load reads a YAML file over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseEnv applies ALICE_* environment overrides.
func ParseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "ALICE_"}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) CommandsRoot() string {
	return filepath.Join(c.DataRoot, CommandsDir)
}

func (c *Config) OrdinalScalersRoot() string {
	return filepath.Join(c.DataRoot, OrdinalScalersDir)
}

func (c *Config) Validate() error {
	if c.DataRoot == "" {
		return fmt.Errorf("data root must be set")
	}
	if c.ModelRoot == "" {
		return fmt.Errorf("model root must be set")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return c.Sweep.Validate()
}

func (s SweepConfig) Validate() error {
	if len(s.LossFunctions) == 0 {
		return fmt.Errorf("at least one loss function is required")
	}
	if len(s.PenaltyFunctions) == 0 {
		return fmt.Errorf("at least one penalty function is required")
	}
	if !s.RegularizationStrength.IsPositive() {
		return fmt.Errorf("alpha must be positive, got %s", s.RegularizationStrength)
	}
	if s.IterationBudget < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", s.IterationBudget)
	}
	return nil
}

func (s SweepConfig) Alpha() float64 {
	return s.RegularizationStrength.InexactFloat64()
}
