// Package search implements the frontier-driven recursive search for
// resource-growth anomalies: path replay, inspection passes and the
// breadth-first exploration loop driving a debugger session per path.
package search

import (
	"fmt"
	"strconv"
	"strings"
)

// Path identifies a nested call site as the ordered sequence of
// single-step counts taken before each step-into, starting at program
// entry. The empty path denotes the entry function itself. Paths are
// immutable; derive children with Child.
type Path []int

// Child returns a new path descending at the given step index.
func (p Path) Child(step int) Path {
	child := make(Path, len(p), len(p)+1)
	copy(child, p)

	return append(child, step)
}

// Depth returns the number of descents.
func (p Path) Depth() int {
	return len(p)
}

// Compare orders paths lexicographically, shorter prefix first.
func (p Path) Compare(other Path) int {
	for i := 0; i < len(p) && i < len(other); i++ {
		if p[i] != other[i] {
			if p[i] < other[i] {
				return -1
			}

			return 1
		}
	}

	switch {
	case len(p) < len(other):
		return -1
	case len(p) > len(other):
		return 1
	default:
		return 0
	}
}

// PageName returns the deterministic, collision-free page identifier
// used to cross-link report pages: "index" for the root path, otherwise
// the step counts joined with '-'.
func (p Path) PageName() string {
	if len(p) == 0 {
		return "index"
	}

	parts := make([]string, len(p))
	for i, step := range p {
		parts[i] = strconv.Itoa(step)
	}

	return strings.Join(parts, "-")
}

// String renders the path for logs, e.g. "[2 5]".
func (p Path) String() string {
	return fmt.Sprint([]int(p))
}
