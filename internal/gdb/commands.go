package gdb

import (
	"fmt"
	"strconv"
	"strings"
)

// Expected reply line counts per command, taken from gdb's known reply
// shapes. They are early-exit bounds for the reader, not validation.
const (
	breakReplyLines = 5
	runReplyLines   = 6
	procReplyLines  = 5
)

// BreakAtEntryAndRun sets a breakpoint on the entry function and runs
// the target until it stops there.
func (s *Session) BreakAtEntryAndRun() error {
	sendErr := s.Send("break " + s.opts.Entry)
	if sendErr != nil {
		return sendErr
	}

	answer := s.ReadAnswer(breakReplyLines, s.opts.ReadTimeout)
	if len(answer) == 0 || !strings.HasPrefix(answer[0], "Breakpoint") {
		return fmt.Errorf("%w: could not set breakpoint on %q, got:\n%s",
			ErrProtocol, s.opts.Entry, strings.Join(answer, ""))
	}

	runErr := s.Send("run")
	if runErr != nil {
		return runErr
	}

	return s.expectPrompt(s.ReadAnswer(runReplyLines, s.opts.RunTimeout))
}

// ProcessID queries the debugger for the OS process id of the debuggee.
func (s *Session) ProcessID() (int, error) {
	sendErr := s.Send("info proc")
	if sendErr != nil {
		return 0, sendErr
	}

	answer := s.ReadAnswer(procReplyLines, s.opts.ReadTimeout)
	if len(answer) == 0 || !strings.HasPrefix(answer[0], "process") {
		return 0, fmt.Errorf("%w: could not read process id, reply started with:\n%s",
			ErrProtocol, strings.Join(answer, ""))
	}

	promptErr := s.expectPrompt(answer)
	if promptErr != nil {
		return 0, promptErr
	}

	fields := strings.Fields(answer[0])
	if len(fields) < 2 {
		return 0, fmt.Errorf("%w: malformed process line %q", ErrProtocol, answer[0])
	}

	pid, convErr := strconv.Atoi(fields[1])
	if convErr != nil {
		return 0, fmt.Errorf("%w: malformed pid in %q", ErrProtocol, answer[0])
	}

	return pid, nil
}

// Backtrace returns the stack frames, top frame first, without the
// trailing prompt line.
func (s *Session) Backtrace() ([]string, error) {
	sendErr := s.Send("bt")
	if sendErr != nil {
		return nil, sendErr
	}

	answer := s.ReadAnswer(UnboundedLines, s.opts.ReadTimeout)

	promptErr := s.expectPrompt(answer)
	if promptErr != nil {
		return nil, promptErr
	}

	frames := answer[:len(answer)-1]
	for i, frame := range frames {
		frames[i] = strings.TrimRight(frame, "\r\n")
	}

	return frames, nil
}

// StepLine issues a single source-line step over. It returns the source
// line echoed by the debugger, or "" when none was printed.
func (s *Session) StepLine() (string, error) {
	sendErr := s.Send("next")
	if sendErr != nil {
		return "", sendErr
	}

	answer := s.ReadAnswer(UnboundedLines, s.opts.ReadTimeout)

	codeLine := ""
	if len(answer) > 1 {
		codeLine = strings.TrimRight(answer[len(answer)-2], "\r\n")
	}

	promptErr := s.expectPrompt(answer)
	if promptErr != nil {
		return "", promptErr
	}

	return codeLine, nil
}

// StepInto issues a step-into. Whether a subroutine was actually
// entered is not judged here; callers compare backtraces around it.
func (s *Session) StepInto() error {
	sendErr := s.Send("step")
	if sendErr != nil {
		return sendErr
	}

	return s.expectPrompt(s.ReadAnswer(UnboundedLines, s.opts.ReadTimeout))
}
