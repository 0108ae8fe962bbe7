// Package gdb drives an interactive debugger subprocess through its
// line-buffered textual command/response protocol.
package gdb

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// ErrProtocol indicates an unexpected reply shape from the debugger.
// A corrupted protocol exchange cannot be trusted to recover, so this
// error is fatal for the whole run.
var ErrProtocol = errors.New("debugger protocol violation")

// ErrLaunch indicates the debugger subprocess could not be started.
var ErrLaunch = errors.New("failed to launch debugger")

// UnboundedLines tells ReadAnswer to read until the prompt appears or
// the stream goes quiet.
const UnboundedLines = -1

const outputBufferSize = 4096

// Options configures a debugger session.
type Options struct {
	// Prompt is the idle prompt token that terminates a reply,
	// including any trailing space the debugger prints.
	Prompt string
	// Entry is the function BreakAtEntryAndRun places the breakpoint on.
	Entry string
	// ReadTimeout bounds each poll for more reply bytes.
	ReadTimeout time.Duration
	// RunTimeout bounds the wait for the run command to hit the
	// entry breakpoint.
	RunTimeout time.Duration
}

// DefaultOptions returns options matching a stock gdb.
func DefaultOptions() Options {
	return Options{
		Prompt:      "(gdb) ",
		Entry:       "main",
		ReadTimeout: time.Second,
		RunTimeout:  8 * time.Second,
	}
}

// Session is one live debugger subprocess bound to one target run.
// Sessions are single-use: started, driven through one inspection and
// torn down with Terminate.
type Session struct {
	opts   Options
	marker string
	cmd    *exec.Cmd
	stdin  io.Writer
	output chan byte
	done   chan struct{}
	stop   sync.Once
}

// Start launches the debugger via a shell-interpreted command string
// and blocks until the idle prompt is observed.
func Start(launch string, opts Options) (*Session, error) {
	cmd := exec.Command("sh", "-c", launch)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin pipe: %w", ErrLaunch, err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %w", ErrLaunch, err)
	}

	startErr := cmd.Start()
	if startErr != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrLaunch, launch, startErr)
	}

	session := Attach(stdin, stdout, opts)
	session.cmd = cmd

	answer := session.ReadAnswer(UnboundedLines, opts.ReadTimeout)

	promptErr := session.expectPrompt(answer)
	if promptErr != nil {
		session.Terminate()

		return nil, promptErr
	}

	return session, nil
}

// Attach binds a session to an already-connected command/reply stream
// pair. The debugger subprocess, if any, is not owned by the session.
func Attach(stdin io.Writer, stdout io.Reader, opts Options) *Session {
	session := &Session{
		opts:   opts,
		marker: strings.TrimRight(opts.Prompt, " "),
		stdin:  stdin,
		output: make(chan byte, outputBufferSize),
		done:   make(chan struct{}),
	}

	go session.pump(stdout)

	return session
}

// pump moves reply bytes into the output channel until EOF or until the
// session is terminated. Without the done signal an unread reply larger
// than the channel buffer would strand the goroutine on the send.
func (s *Session) pump(stdout io.Reader) {
	reader := bufio.NewReader(stdout)

	for {
		b, err := reader.ReadByte()
		if err != nil {
			close(s.output)

			return
		}

		select {
		case s.output <- b:
		case <-s.done:
			close(s.output)

			return
		}
	}
}

// Send writes one command line to the debugger.
func (s *Session) Send(command string) error {
	_, err := io.WriteString(s.stdin, command+"\n")
	if err != nil {
		return fmt.Errorf("%w: send %q: %w", ErrProtocol, command, err)
	}

	return nil
}

// ReadAnswer accumulates reply lines until the trailing text equals the
// idle prompt, maxLines lines have been read (UnboundedLines disables
// the bound), or a poll times out with nothing readable. Every byte
// read re-arms the timeout, so a reply slower than the timeout is
// indistinguishable from a finished one.
func (s *Session) ReadAnswer(maxLines int, timeout time.Duration) []string {
	var lines []string

	for {
		select {
		case b, ok := <-s.output:
			if !ok {
				return lines
			}

			if len(lines) == 0 {
				lines = append(lines, "")
			}

			lines[len(lines)-1] += string(b)

			if b == '\n' {
				if len(lines) == maxLines {
					return lines
				}

				lines = append(lines, "")
			}

			if lines[len(lines)-1] == s.opts.Prompt {
				// Got the prompt, nothing more is coming.
				return lines
			}
		case <-time.After(timeout):
			return lines
		}
	}
}

// expectPrompt verifies the reply ended at the idle prompt.
func (s *Session) expectPrompt(answer []string) error {
	if len(answer) == 0 || !strings.HasPrefix(answer[len(answer)-1], s.marker) {
		return fmt.Errorf("%w: expected prompt %q, got:\n%s",
			ErrProtocol, s.marker, strings.Join(answer, ""))
	}

	return nil
}

// Terminate quits the debugger. Teardown is best effort: every failure
// is swallowed so that session cleanup can never abort a run.
func (s *Session) Terminate() {
	_ = s.Send("quit")
	// Confirm "Quit anyway?" if the debuggee is still alive.
	_ = s.Send("y")

	// Release the pump; the session stops consuming replies here.
	s.stop.Do(func() { close(s.done) })

	if closer, ok := s.stdin.(io.Closer); ok {
		_ = closer.Close()
	}

	if s.cmd != nil {
		_ = s.cmd.Wait()
	}
}
