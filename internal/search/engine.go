package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Sumatoshi-tech/gdbsearch/internal/predicate"
	"github.com/Sumatoshi-tech/gdbsearch/internal/probe"
)

// EngineConfig wires an Engine.
type EngineConfig struct {
	NewSession SessionFactory
	Measure    probe.Func
	Track      predicate.Func
	Recorder   Recorder
	// MaxPasses bounds the number of inspection passes as a guard
	// against divergence with always-true predicates. 0 = unlimited.
	MaxPasses int
	Logger    *slog.Logger
}

// Engine runs the breadth-first search over the path tree. Exploration
// is strictly sequential: at most one debugger session is alive at a
// time, and every frontier path gets a brand-new process.
type Engine struct {
	newSession SessionFactory
	measure    probe.Func
	track      predicate.Func
	recorder   Recorder
	maxPasses  int
	logger     *slog.Logger
}

// NewEngine creates a search engine.
func NewEngine(cfg EngineConfig) *Engine {
	engine := &Engine{
		newSession: cfg.NewSession,
		measure:    cfg.Measure,
		track:      cfg.Track,
		recorder:   cfg.Recorder,
		maxPasses:  cfg.MaxPasses,
		logger:     cfg.Logger,
	}

	if engine.track == nil {
		engine.track = func(n, p int64) bool { return n > p }
	}

	if engine.recorder == nil {
		engine.recorder = nopRecorder{}
	}

	if engine.logger == nil {
		engine.logger = slog.Default()
	}

	return engine
}

// Run processes the frontier FIFO until it drains. It is seeded with
// the given paths, defaulting to the root-only path. Protocol
// violations abort the run; paths that fail to replay are abandoned and
// the search continues.
func (e *Engine) Run(ctx context.Context, initial []Path) error {
	frontier := make([]Path, 0, len(initial)+1)
	frontier = append(frontier, initial...)

	if len(frontier) == 0 {
		frontier = append(frontier, Path{})
	}

	passes := 0

	for len(frontier) > 0 {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			return ctxErr
		}

		if e.maxPasses > 0 && passes >= e.maxPasses {
			e.logger.Warn("stopping: inspection pass budget exhausted",
				"passes", passes, "pending", len(frontier))

			break
		}

		current := frontier[0]
		frontier = frontier[1:]

		children, passErr := e.runPass(current)
		if passErr != nil {
			return passErr
		}

		frontier = append(frontier, children...)
		passes++
	}

	e.logger.Info("all interesting paths examined", "passes", passes)

	return nil
}

// runPass explores one path from a fresh process: replay, inspect,
// scan, enqueue children. The session is torn down on every exit.
func (e *Engine) runPass(path Path) ([]Path, error) {
	dbg, startErr := e.newSession()
	if startErr != nil {
		return nil, fmt.Errorf("start session: %w", startErr)
	}
	defer dbg.Terminate()

	runErr := dbg.BreakAtEntryAndRun()
	if runErr != nil {
		return nil, runErr
	}

	pid, pidErr := dbg.ProcessID()
	if pidErr != nil {
		return nil, pidErr
	}

	reached, walkErr := walkTo(dbg, path)
	if walkErr != nil {
		return nil, walkErr
	}

	if !reached {
		e.logger.Info("path abandoned: no subroutine to enter", "path", path.String())

		return nil, nil
	}

	samples, inspectErr := inspect(dbg, pid, e.measure)
	if inspectErr != nil {
		return nil, inspectErr
	}

	e.logger.Info("inspected",
		"path", path.String(),
		"function", samples[0].Frame,
		"samples", len(samples))

	findings := findGrowth(samples, e.track)
	children := make([]Path, 0, len(findings))

	for _, finding := range findings {
		sample := samples[finding.Step]

		e.logger.Info("growth",
			"previous", finding.Previous,
			"current", finding.Current,
			"frame", sample.Frame,
			"code", sample.Code)

		e.recorder.Record(sample.Frame, sample.Code,
			finding.Previous, finding.Current, path, finding.Step)

		children = append(children, path.Child(finding.Step))
	}

	return children, nil
}

type nopRecorder struct{}

func (nopRecorder) Record(string, string, int64, int64, Path, int) {}
