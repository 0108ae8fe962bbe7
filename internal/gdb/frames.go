package gdb

import (
	"strconv"
	"strings"
)

// locationMarker separates a frame's function text from its source
// location in gdb backtrace output.
const locationMarker = " at "

// Identity returns the function identity of a backtrace frame: the
// frame text before the final line-number separator. Two frames with
// equal identity belong to the same function, regardless of line.
func Identity(frame string) string {
	if i := strings.LastIndex(frame, ":"); i >= 0 {
		return frame[:i]
	}

	return frame
}

// Location extracts the (file, line) pair from a backtrace frame of the
// shape "#0  fn (args) at file.c:12". ok is false when the frame
// carries no parseable source location.
func Location(frame string) (file string, line int, ok bool) {
	at := strings.LastIndex(frame, locationMarker)
	if at < 0 {
		return "", 0, false
	}

	loc := strings.TrimSpace(frame[at+len(locationMarker):])

	sep := strings.LastIndex(loc, ":")
	if sep < 0 {
		return "", 0, false
	}

	line, err := strconv.Atoi(strings.TrimSpace(loc[sep+1:]))
	if err != nil {
		return "", 0, false
	}

	return loc[:sep], line, true
}

// Walker decides whether execution is still inside the function under
// inspection. Identity is captured once at the start of a pass as the
// pair (backtrace depth, top-frame identity). Returning to the caller
// and entering a sibling at the same depth counts as exited: inspection
// is scoped to one static activation.
type Walker struct {
	depth    int
	identity string
}

// NewWalker captures the function identity from the backtrace at the
// start of an inspection pass.
func NewWalker(backtrace []string) Walker {
	walker := Walker{depth: len(backtrace)}
	if len(backtrace) > 0 {
		walker.identity = Identity(backtrace[0])
	}

	return walker
}

// Inside reports whether the backtrace still belongs to the captured
// activation.
func (w Walker) Inside(backtrace []string) bool {
	if len(backtrace) == 0 || len(backtrace) != w.depth {
		return false
	}

	return Identity(backtrace[0]) == w.identity
}

// Depth returns the backtrace depth captured at entry.
func (w Walker) Depth() int {
	return w.depth
}
