package search

// Debugger is the control surface the search engine drives. It is the
// subset of *gdb.Session the engine needs, abstracted so passes can be
// exercised against scripted fakes.
type Debugger interface {
	// BreakAtEntryAndRun stops the freshly launched target at its
	// entry function.
	BreakAtEntryAndRun() error
	// ProcessID returns the OS pid of the debuggee.
	ProcessID() (int, error)
	// Backtrace returns the stack frames, top first.
	Backtrace() ([]string, error)
	// StepLine steps one source line, staying in the current function.
	StepLine() (string, error)
	// StepInto steps into a subroutine if the current line calls one.
	StepInto() error
	// Terminate tears the session down. Never fails.
	Terminate()
}

// SessionFactory starts a brand-new debugger session. The engine calls
// it once per frontier path; sessions never survive across paths.
type SessionFactory func() (Debugger, error)

// Recorder receives findings resolved against their inspection context.
// The report aggregator implements it.
type Recorder interface {
	// Record stores one qualifying transition. frame is the top
	// backtrace frame of the sample the finding points at, code the
	// source line echoed by the debugger for that step.
	Record(frame, code string, previous, current int64, path Path, step int)
}
