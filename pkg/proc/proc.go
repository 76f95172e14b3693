// Package proc runs external commands on behalf of scripts.
package proc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"src.servo.sh/pkg/logutil"
	"src.servo.sh/pkg/sys"
)

var logger = logutil.GetLogger("[proc] ")

// Runner executes command lines. Implementations are called synchronously and
// block until the command finishes.
type Runner interface {
	// Run runs the command with the standard streams of the runner. A non-zero
	// exit is reported as an *ExitError.
	Run(cmd string) error
	// RunCaptured runs the command and returns its standard output. It only
	// fails if the command cannot be started.
	RunCaptured(cmd string) (string, error)
}

// DefaultShell is the shell used when Shell.Path is empty.
const DefaultShell = "/bin/sh"

// Shell is a Runner that passes command lines to a shell with -c.
type Shell struct {
	Path   string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

var _ Runner = (*Shell)(nil)

// NewShell returns a Shell using the given shell path and the standard
// streams of the process.
func NewShell(path string) *Shell {
	return &Shell{path, os.Stdin, os.Stdout, os.Stderr}
}

func (s *Shell) command(cmd string) *exec.Cmd {
	path := s.Path
	if path == "" {
		path = DefaultShell
	}
	c := exec.Command(path, "-c", cmd)
	c.Stdin = s.Stdin
	c.Stderr = s.Stderr
	return c
}

// Run implements Runner.
func (s *Shell) Run(cmd string) error {
	logger.Printf("run %q", cmd)
	c := s.command(cmd)
	c.Stdout = s.Stdout
	return wrapError(cmd, c.Run())
}

// RunCaptured implements Runner.
func (s *Shell) RunCaptured(cmd string) (string, error) {
	logger.Printf("run captured %q", cmd)
	out, err := s.command(cmd).Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		logger.Printf("%q: %v", cmd, wrapError(cmd, err))
		return string(out), nil
	}
	if err != nil {
		return "", fmt.Errorf("cannot start %q: %w", cmd, err)
	}
	return string(out), nil
}

// ExitError reports a command that exited with a non-zero status or was
// killed by a signal.
type ExitError struct {
	Cmd string
	// Exit status; -1 when the command was killed by a signal.
	Code int
	// Name of the signal that killed the command, or "".
	Signal string
}

func (e *ExitError) Error() string {
	if e.Signal != "" {
		return fmt.Sprintf("command %q killed by signal %s", e.Cmd, e.Signal)
	}
	return fmt.Sprintf("command %q failed with return code %d", e.Cmd, e.Code)
}

// Kind names the error in fatal reports.
func (e *ExitError) Kind() string { return "PROCESS" }

func wrapError(cmd string, err error) error {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		if err != nil {
			return fmt.Errorf("cannot start %q: %w", cmd, err)
		}
		return nil
	}
	e := &ExitError{Cmd: cmd, Code: exitErr.ExitCode()}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		e.Signal = sys.SignalName(ws.Signal())
	}
	return e
}
