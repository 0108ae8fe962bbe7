package search

import (
	"github.com/Sumatoshi-tech/gdbsearch/internal/gdb"
)

// walkTo replays a path on a session that has just stopped at program
// entry. For each step count it single-steps that many lines, then
// steps into the subroutine at the reached line, verifying against the
// backtrace that a genuinely different function was entered. It returns
// false when the path bottoms out without entering a subroutine; the
// empty path trivially succeeds.
func walkTo(dbg Debugger, path Path) (bool, error) {
	taken := 0

	for _, target := range path {
		for taken < target {
			_, stepErr := dbg.StepLine()
			if stepErr != nil {
				return false, stepErr
			}

			taken++
		}

		before, btErr := dbg.Backtrace()
		if btErr != nil {
			return false, btErr
		}

		if len(before) == 0 {
			return false, nil
		}

		intoErr := dbg.StepInto()
		if intoErr != nil {
			return false, intoErr
		}

		after, btErr := dbg.Backtrace()
		if btErr != nil {
			return false, btErr
		}

		if len(after) == 0 {
			return false, nil
		}

		if gdb.Identity(after[0]) == gdb.Identity(before[0]) {
			// Stepping in changed nothing: the line had no call,
			// or it was inlined away.
			return false, nil
		}

		taken = 0
	}

	return true, nil
}
