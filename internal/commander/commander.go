package commander

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/kylebegovich/alice/internal/config"
	"github.com/kylebegovich/alice/internal/history"
	"github.com/kylebegovich/alice/internal/persistence"
)

const defaultHistoryLimit = 10

var decimalHundred = decimal.NewFromInt(100)

// Commander is an interactive shell for trained artifacts.
type Commander struct {
	cfg              *config.Config
	artifact         *persistence.Artifact
	currentModelPath string
	out              io.Writer

	green  func(a ...any) string
	red    func(a ...any) string
	yellow func(a ...any) string
	cyan   func(a ...any) string
	blue   func(a ...any) string
}

func NewCommander(cfg *config.Config) *Commander {
	return &Commander{
		cfg:    cfg,
		out:    os.Stdout,
		green:  color.New(color.FgGreen).SprintFunc(),
		red:    color.New(color.FgRed).SprintFunc(),
		yellow: color.New(color.FgYellow).SprintFunc(),
		cyan:   color.New(color.FgCyan).SprintFunc(),
		blue:   color.New(color.FgBlue).SprintFunc(),
	}
}

// SetOutput redirects everything the commander prints.
func (c *Commander) SetOutput(w io.Writer) {
	c.out = w
}

func (c *Commander) Start() {
	c.Run(os.Stdin)
}

// Run reads commands from in until EOF or quit.
func (c *Commander) Run(in io.Reader) {
	c.printWelcome()
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(c.out, c.yellow("\nalice> "))
		if !scanner.Scan() {
			if scanner.Err() != nil {
				fmt.Fprintf(c.out, "\n%s Scanner error: %v\n", c.red("✗"), scanner.Err())
			}
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		command, rest, _ := strings.Cut(input, " ")
		if !c.ExecuteCommand(strings.ToLower(command), strings.TrimSpace(rest)) {
			break
		}
	}
}

// ExecuteCommand runs one command. It returns false when the session should end.
func (c *Commander) ExecuteCommand(command, args string) bool {
	switch command {
	case "help", "h":
		c.showHelp()
	case "load":
		if args == "" {
			fmt.Fprintln(c.out, c.red("Usage: load <path>"))
			break
		}
		c.loadModel(args)
	case "match":
		if args == "" {
			fmt.Fprintln(c.out, c.red("Usage: match <text>"))
			break
		}
		c.match(args)
	case "rate":
		if args == "" {
			fmt.Fprintln(c.out, c.red("Usage: rate <text>"))
			break
		}
		c.rate(args)
	case "range":
		c.showRange()
	case "info", "current":
		c.showCurrentModel()
	case "models", "list":
		c.listModels()
	case "history":
		c.showHistory(args)
	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Goodbye!")
		return false
	default:
		fmt.Fprintf(c.out, "%s Unknown command: %s (type 'help')\n", c.red("✗"), command)
	}
	return true
}

func (c *Commander) printWelcome() {
	fmt.Fprintln(c.out, c.blue("Alice model shell"))
	fmt.Fprintf(c.out, "Models under %s. Type 'help' for commands.\n", c.cfg.ModelRoot)
}

func (c *Commander) showHelp() {
	fmt.Fprintln(c.out, c.blue("\nAvailable Commands:"))

	fmt.Fprintln(c.out, "\n"+c.cyan("Models:"))
	fmt.Fprintln(c.out, "  models                 - List saved models")
	fmt.Fprintln(c.out, "  load <path>            - Load a model (absolute, or relative to the model root)")
	fmt.Fprintln(c.out, "  info                   - Show the loaded model's metadata")

	fmt.Fprintln(c.out, "\n"+c.cyan("Predictions:"))
	fmt.Fprintln(c.out, "  match <text>           - Does the text invoke the loaded command?")
	fmt.Fprintln(c.out, "  rate <text>            - Rate the text with the loaded ordinal scaler")
	fmt.Fprintln(c.out, "  range                  - Show the loaded scaler's level range")

	fmt.Fprintln(c.out, "\n"+c.cyan("History:"))
	fmt.Fprintln(c.out, "  history [name]         - Recent training runs, optionally for one model")

	fmt.Fprintln(c.out, "\n  help                   - Show this help")
	fmt.Fprintln(c.out, "  quit                   - Exit")
}

func (c *Commander) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return filepath.Join(c.cfg.ModelRoot, path)
}

func (c *Commander) loadModel(path string) {
	path = c.resolve(path)
	artifact, err := persistence.LoadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(c.out, "%s No model at %s\n", c.red("✗"), path)
			return
		}
		fmt.Fprintf(c.out, "%s %v\n", c.red("✗"), err)
		return
	}

	c.artifact = artifact
	c.currentModelPath = path
	fmt.Fprintf(c.out, "%s Loaded %s (%s)\n", c.green("✓"), artifact.Metadata.ModelName, artifact.Kind)
}

func (c *Commander) match(text string) {
	if c.artifact == nil || c.artifact.Kind != persistence.KindCommand {
		fmt.Fprintln(c.out, c.red("Load a command model first"))
		return
	}
	ok, err := c.artifact.Command.Match(text)
	if err != nil {
		fmt.Fprintf(c.out, "%s %v\n", c.red("✗"), err)
		return
	}
	if ok {
		fmt.Fprintln(c.out, c.green("true"))
	} else {
		fmt.Fprintln(c.out, c.red("false"))
	}
}

func (c *Commander) rate(text string) {
	if c.artifact == nil || c.artifact.Kind != persistence.KindOrdinal {
		fmt.Fprintln(c.out, c.red("Load an ordinal model first"))
		return
	}
	level, err := c.artifact.Ordinal.Rate(text)
	if err != nil {
		fmt.Fprintf(c.out, "%s %v\n", c.red("✗"), err)
		return
	}
	fmt.Fprintln(c.out, c.cyan(strconv.Itoa(level)))
}

func (c *Commander) showRange() {
	if c.artifact == nil || c.artifact.Kind != persistence.KindOrdinal {
		fmt.Fprintln(c.out, c.red("Load an ordinal model first"))
		return
	}
	lo, hi, err := c.artifact.Ordinal.Range()
	if err != nil {
		fmt.Fprintf(c.out, "%s %v\n", c.red("✗"), err)
		return
	}
	fmt.Fprintf(c.out, "%d..%d\n", lo, hi)
}

func (c *Commander) showCurrentModel() {
	if c.artifact == nil {
		fmt.Fprintln(c.out, c.red("No model loaded"))
		return
	}
	fmt.Fprintln(c.out, c.blue("\nCurrent Model:"))
	fmt.Fprintln(c.out, strings.Repeat("─", 50))
	fmt.Fprintf(c.out, "Path: %s\n", c.currentModelPath)
	c.artifact.WriteSummary(c.out)
}

func (c *Commander) listModels() {
	var files []string
	err := filepath.WalkDir(c.cfg.ModelRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, config.ModelExtension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(c.out, "%s %v\n", c.red("✗"), err)
		return
	}
	if len(files) == 0 {
		fmt.Fprintf(c.out, "No saved models found in %s\n", c.cfg.ModelRoot)
		fmt.Fprintln(c.out, "Run the train command to build them")
		return
	}

	fmt.Fprintln(c.out, c.blue("\nSaved Models:"))
	fmt.Fprintln(c.out, strings.Repeat("─", 70))
	fmt.Fprintf(c.out, "%-40s %-10s %-15s %-10s\n", "Model", "Size", "Modified", "Status")
	fmt.Fprintln(c.out, strings.Repeat("─", 70))

	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		status := ""
		if c.currentModelPath == file {
			status = c.cyan("[ACTIVE]")
		}
		rel, err := filepath.Rel(c.cfg.ModelRoot, file)
		if err != nil {
			rel = file
		}
		fmt.Fprintf(c.out, "%-40s %-10s %-15s %-10s\n",
			rel,
			humanize.Bytes(uint64(info.Size())),
			humanize.Time(info.ModTime()),
			status)
	}
}

func (c *Commander) showHistory(name string) {
	if c.cfg.HistoryPath == "" {
		fmt.Fprintln(c.out, c.red("Training history is disabled"))
		return
	}
	if _, err := os.Stat(c.cfg.HistoryPath); err != nil {
		fmt.Fprintln(c.out, "No training history recorded yet")
		return
	}

	ledger, err := history.Open(c.cfg.HistoryPath)
	if err != nil {
		fmt.Fprintf(c.out, "%s %v\n", c.red("✗"), err)
		return
	}
	defer ledger.Close()

	if name != "" && !strings.HasSuffix(name, config.ModelExtension) {
		name += config.ModelExtension
	}
	entries, err := ledger.Recent(context.Background(), name, defaultHistoryLimit)
	if err != nil {
		fmt.Fprintf(c.out, "%s %v\n", c.red("✗"), err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "No matching runs")
		return
	}

	fmt.Fprintln(c.out, c.blue("\nRecent Training Runs:"))
	fmt.Fprintln(c.out, strings.Repeat("─", 90))
	fmt.Fprintf(c.out, "%-28s %-20s %-12s %-10s %-10s %-10s\n", "Model", "Loss", "Penalty", "Failures", "Pass", "When")
	fmt.Fprintln(c.out, strings.Repeat("─", 90))
	for _, e := range entries {
		failures := fmt.Sprintf("%d/%d", e.Failures, e.Tests)
		if e.Failures > 0 {
			failures = c.red(failures)
		}
		fmt.Fprintf(c.out, "%-28s %-20s %-12s %-10s %-10s %-10s\n",
			e.ModelName, e.Loss, e.Penalty, failures,
			e.PassRate.Mul(decimalHundred).StringFixed(1)+"%",
			humanize.Time(e.CreatedAt))
	}
}
