package search

import (
	"github.com/Sumatoshi-tech/gdbsearch/internal/predicate"
)

// Sample is one measurement taken while inside the inspected function.
// Samples for one pass form an ordered sequence; index 0 is the entry
// sample.
type Sample struct {
	// Frame is the top backtrace frame at measurement time.
	Frame string
	// Value is the probe reading.
	Value int64
	// Code is the source line echoed by the step that produced this
	// sample; empty for the entry sample.
	Code string
}

// Finding marks a sample transition that satisfied the threshold
// predicate. Step is the 1-based index of the sample holding the new
// value; it doubles as the step count a child path replays before
// descending.
type Finding struct {
	Step     int
	Previous int64
	Current  int64
}

// findGrowth scans consecutive sample pairs with the threshold
// predicate. The previous value advances on every comparison whether or
// not the predicate fired, so every qualifying step surfaces, not just
// cumulative peaks.
func findGrowth(samples []Sample, track predicate.Func) []Finding {
	if len(samples) == 0 {
		return nil
	}

	var findings []Finding

	previous := samples[0].Value

	for step := 1; step < len(samples); step++ {
		current := samples[step].Value
		if track(current, previous) {
			findings = append(findings, Finding{Step: step, Previous: previous, Current: current})
		}

		previous = current
	}

	return findings
}
