// Package report aggregates findings across inspection passes and
// renders them as a navigable drill-down report mirroring the path
// tree, plus terminal and machine-readable summaries.
package report

import (
	"os"
	"sort"
	"sync"

	"github.com/Sumatoshi-tech/gdbsearch/internal/gdb"
	"github.com/Sumatoshi-tech/gdbsearch/internal/search"
)

// Record is one finding resolved to a concrete source location.
type Record struct {
	File string
	Line int
	// Code is the source line echoed by the debugger for the step.
	Code     string
	Previous int64
	Current  int64
	// FullPath is the owning path plus the triggering step index; its
	// prefix identifies the report page the record appears on.
	FullPath search.Path
}

// Delta returns the measured growth of the record's transition.
func (r Record) Delta() int64 {
	return r.Current - r.Previous
}

// Depth returns the depth of the owning path.
func (r Record) Depth() int {
	return len(r.FullPath) - 1
}

// ParentPath returns the owning path, without the triggering step.
func (r Record) ParentPath() search.Path {
	return r.FullPath[:len(r.FullPath)-1]
}

// Aggregator collects records process-wide. It is owned by the run and
// passed into the search engine by reference; the mutex serializes
// writes so a concurrent exploration port stays safe.
type Aggregator struct {
	mu       sync.Mutex
	records  []Record
	readable map[string]bool
	notFound map[string]bool
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		readable: map[string]bool{},
		notFound: map[string]bool{},
	}
}

// Record resolves a finding's frame text to a source location and
// stores it. Frames without a parseable location are dropped. A file is
// probed for readability exactly once: unreadable files are remembered
// and every later record against them is silently skipped.
func (a *Aggregator) Record(frame, code string, previous, current int64, path search.Path, step int) {
	file, line, ok := gdb.Location(frame)
	if !ok {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.notFound[file] {
		return
	}

	if !a.readable[file] {
		handle, err := os.Open(file)
		if err != nil {
			a.notFound[file] = true

			return
		}

		handle.Close()

		a.readable[file] = true
	}

	a.records = append(a.records, Record{
		File:     file,
		Line:     line,
		Code:     code,
		Previous: previous,
		Current:  current,
		FullPath: path.Child(step),
	})
}

// Records returns the collected records sorted by (depth, path), the
// global ordering the report pages are grouped in.
func (a *Aggregator) Records() []Record {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Record, len(a.records))
	copy(out, a.records)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Depth() != out[j].Depth() {
			return out[i].Depth() < out[j].Depth()
		}

		return out[i].FullPath.Compare(out[j].FullPath) < 0
	})

	return out
}

// Reset clears all aggregated state so the aggregator can be reused
// across runs.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.records = nil
	a.readable = map[string]bool{}
	a.notFound = map[string]bool{}
}
