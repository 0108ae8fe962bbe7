// Package commands implements CLI command handlers for gdbsearch.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gdbsearch/internal/config"
	"github.com/Sumatoshi-tech/gdbsearch/internal/gdb"
	"github.com/Sumatoshi-tech/gdbsearch/internal/predicate"
	"github.com/Sumatoshi-tech/gdbsearch/internal/probe"
	"github.com/Sumatoshi-tech/gdbsearch/internal/report"
	"github.com/Sumatoshi-tech/gdbsearch/internal/search"
)

// ErrInvalidPath is returned when a --path value is not a comma
// separated list of non-negative step counts.
var ErrInvalidPath = errors.New("invalid path: want comma separated non-negative step counts")

const findingsFile = "findings.yaml"

// SearchOptions carries everything one search run needs.
type SearchOptions struct {
	// Launch is the shell-interpreted debugger command, e.g.
	// "gdb ./myapp".
	Launch  string
	Paths   []search.Path
	Config  *config.Config
	NoColor bool
}

type searchExecutor func(opts SearchOptions, writer io.Writer) error

// SearchCommand holds configuration and dependencies for the search
// command.
type SearchCommand struct {
	configPath string
	probeName  string
	expression string
	entry      string
	outputDir  string
	rawPaths   []string
	maxPasses  int
	noColor    bool

	exec searchExecutor
}

// NewSearchCommand creates the search command.
func NewSearchCommand() *cobra.Command {
	return newSearchCommandWithDeps(runSearch)
}

func newSearchCommandWithDeps(exec searchExecutor) *cobra.Command {
	sc := &SearchCommand{exec: exec}

	cmd := &cobra.Command{
		Use:   "search <debugger-command>",
		Short: "Run the recursive growth search against a target program",
		Long: `Search steps through the target line by line under a debugger,
measuring a resource metric after every step. Steps whose growth
satisfies the threshold expression are investigated one call level
deeper, each from a fresh process.

Examples:

  gdbsearch search "gdb ./myapp"
      find lines where private memory grows

  gdbsearch search -m io_rchar -e "n > p + 100000" "gdb --args ./myapp myarg"
      find lines reading more than 100 kB from any io source`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sc.run(cmd, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&sc.configPath, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&sc.probeName, "probe", "m", "", "measurement probe (see: gdbsearch probes)")
	cmd.Flags().StringVarP(&sc.expression, "expression", "e", "",
		"track a step deeper when the expression holds; n = new measurement, p = previous")
	cmd.Flags().StringVar(&sc.entry, "entry", "", "entry function the initial breakpoint is set on")
	cmd.Flags().StringVarP(&sc.outputDir, "output", "o", "", "report output directory")
	cmd.Flags().StringArrayVarP(&sc.rawPaths, "path", "p", nil,
		"initial path to inspect, e.g. \"2,5\"; repeatable; empty = entry function")
	cmd.Flags().IntVar(&sc.maxPasses, "max-passes", 0, "stop after this many inspection passes (0 = unlimited)")
	cmd.Flags().BoolVar(&sc.noColor, "no-color", false, "disable colored output")

	return cmd
}

func (sc *SearchCommand) run(cmd *cobra.Command, launch string, writer io.Writer) error {
	cfg, loadErr := config.Load(sc.configPath)
	if loadErr != nil {
		return loadErr
	}

	// Flags override the config file when explicitly set.
	flags := cmd.Flags()
	if flags.Changed("probe") {
		cfg.Search.Probe = sc.probeName
	}

	if flags.Changed("expression") {
		cfg.Search.Expression = sc.expression
	}

	if flags.Changed("entry") {
		cfg.GDB.Entry = sc.entry
	}

	if flags.Changed("output") {
		cfg.Report.Dir = sc.outputDir
	}

	if flags.Changed("max-passes") {
		cfg.Search.MaxPasses = sc.maxPasses
	}

	paths, parseErr := ParsePaths(sc.rawPaths)
	if parseErr != nil {
		return parseErr
	}

	return sc.exec(SearchOptions{
		Launch:  launch,
		Paths:   paths,
		Config:  cfg,
		NoColor: sc.noColor,
	}, writer)
}

// ParsePaths converts comma separated step lists into paths. An empty
// value denotes the root path (inspect the entry function itself).
func ParsePaths(raw []string) ([]search.Path, error) {
	paths := make([]search.Path, 0, len(raw))

	for _, value := range raw {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			paths = append(paths, search.Path{})

			continue
		}

		var path search.Path

		for _, field := range strings.Split(trimmed, ",") {
			step, convErr := strconv.Atoi(strings.TrimSpace(field))
			if convErr != nil || step < 0 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidPath, value)
			}

			path = append(path, step)
		}

		paths = append(paths, path)
	}

	return paths, nil
}

// runSearch wires the probe, predicate, engine and reporters together
// and drives the search to completion.
func runSearch(opts SearchOptions, writer io.Writer) error {
	cfg := opts.Config
	logger := slog.Default()

	measure, probeErr := probe.NewRegistry().Lookup(cfg.Search.Probe)
	if probeErr != nil {
		return probeErr
	}

	track, trackErr := predicate.Compile(cfg.Search.Expression)
	if trackErr != nil {
		return trackErr
	}

	gdbOpts := gdb.Options{
		Prompt:      cfg.GDB.Prompt,
		Entry:       cfg.GDB.Entry,
		ReadTimeout: cfg.GDB.ReadTimeout,
		RunTimeout:  cfg.GDB.RunTimeout,
	}

	aggregator := report.NewAggregator()

	engine := search.NewEngine(search.EngineConfig{
		NewSession: func() (search.Debugger, error) {
			session, startErr := gdb.Start(opts.Launch, gdbOpts)
			if startErr != nil {
				return nil, startErr
			}

			return session, nil
		},
		Measure:   measure,
		Track:     track,
		Recorder:  aggregator,
		MaxPasses: cfg.Search.MaxPasses,
		Logger:    logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("starting search",
		"launch", opts.Launch,
		"probe", cfg.Search.Probe,
		"expression", cfg.Search.Expression)

	runErr := engine.Run(ctx, opts.Paths)
	if runErr != nil {
		return runErr
	}

	records := aggregator.Records()

	report.WriteSummary(writer, records, opts.NoColor)

	if len(records) == 0 {
		return nil
	}

	renderer := &report.Renderer{Dir: cfg.Report.Dir, BarLength: cfg.Report.BarLength}

	renderErr := renderer.Render(records)
	if renderErr != nil {
		return renderErr
	}

	yamlErr := report.WriteYAML(filepath.Join(cfg.Report.Dir, findingsFile), records)
	if yamlErr != nil {
		return yamlErr
	}

	logger.Info("report written", "dir", cfg.Report.Dir)

	return nil
}
