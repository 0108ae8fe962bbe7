package search

import (
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/gdbsearch/internal/gdb"
	"github.com/Sumatoshi-tech/gdbsearch/internal/probe"
)

// inspect runs one step-and-measure traversal of the current function
// activation: one sample at entry, then one after every line step while
// the backtrace still belongs to the same activation.
func inspect(dbg Debugger, pid int, measure probe.Func) ([]Sample, error) {
	backtrace, btErr := dbg.Backtrace()
	if btErr != nil {
		return nil, btErr
	}

	if len(backtrace) == 0 {
		return nil, fmt.Errorf("%w: empty backtrace at inspection start", gdb.ErrProtocol)
	}

	walker := gdb.NewWalker(backtrace)

	value, measureErr := measure(pid)
	if measureErr != nil {
		return nil, fmt.Errorf("probe: %w", measureErr)
	}

	samples := []Sample{{Frame: strings.TrimSpace(backtrace[0]), Value: value}}

	for {
		code, stepErr := dbg.StepLine()
		if stepErr != nil {
			return nil, stepErr
		}

		backtrace, btErr = dbg.Backtrace()
		if btErr != nil {
			return nil, btErr
		}

		if !walker.Inside(backtrace) {
			// Left the function: the pass is over.
			return samples, nil
		}

		value, measureErr = measure(pid)
		if measureErr != nil {
			return nil, fmt.Errorf("probe: %w", measureErr)
		}

		samples = append(samples, Sample{
			Frame: strings.TrimSpace(backtrace[0]),
			Value: value,
			Code:  code,
		})
	}
}
