// Package eval implements the interpreter of Servo.
//
// Source text is consumed one character at a time by a Frame. Each character
// is dispatched to the handler of the mode on top of the frame's mode stack;
// statements execute as soon as their syntax completes, so there is no
// separate parsing phase. Function bodies are kept as text and run in a new
// virtual Frame on every call.
package eval

import (
	"bufio"
	"io"
	"os"

	"src.servo.sh/pkg/config"
	"src.servo.sh/pkg/diag"
	"src.servo.sh/pkg/logutil"
	"src.servo.sh/pkg/numeval"
	"src.servo.sh/pkg/proc"
	"src.servo.sh/pkg/source"
)

var logger = logutil.GetLogger("[eval] ")

// Evaler holds the collaborators shared by all frames of a run. Frames only
// read from it, except for the layer stack.
type Evaler struct {
	Numeric numeval.Evaluator
	Runner  proc.Runner
	// Used by the input builtin.
	Stdin  io.Reader
	Stdout io.Writer
	// Extra directories searched by imports, after the builtin ones.
	ReachDirs []string
	// When set, code is only checked for syntax errors: nothing is invoked,
	// imported or evaluated, and assignments are not bound.
	Check bool
	// Limit of the layer stack; DefaultMaxDepth if zero.
	MaxDepth int

	layers []*Layer
	stdin  *bufio.Reader
}

// NewEvaler creates an Evaler with the native numeric evaluator and a shell
// runner connected to the standard streams of the process.
func NewEvaler() *Evaler {
	return &Evaler{
		Numeric: numeval.Native{},
		Runner:  proc.NewShell(proc.DefaultShell),
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
	}
}

// NewEvalerFromConfig creates an Evaler configured by cfg.
func NewEvalerFromConfig(cfg *config.Config) *Evaler {
	ev := NewEvaler()
	shell := proc.NewShell(cfg.Shell)
	ev.Runner = shell
	if cfg.Numeric == config.NumericBC {
		ev.Numeric = numeval.BC{Runner: shell}
	}
	ev.ReachDirs = cfg.Reach
	ev.MaxDepth = cfg.MaxDepth
	return ev
}

func (ev *Evaler) maxDepth() int {
	if ev.MaxDepth > 0 {
		return ev.MaxDepth
	}
	return config.DefaultMaxDepth
}

// NewFrame creates a top-level frame for the source unit, with a namespace
// holding only the builtins.
func (ev *Evaler) NewFrame(src *source.File) *Frame {
	return ev.newFrame(src, false)
}

// Run reads the source unit and runs it to the end in a new top-level frame.
// A return at the top level stops the run without an error. It returns the
// namespace of the frame.
func (ev *Evaler) Run(src *source.File) (Namespace, error) {
	var code string
	err := diag.Guard("servo.source", func() error {
		var err error
		code, err = src.Read()
		return err
	})
	if err != nil {
		return nil, err
	}
	fm := ev.NewFrame(src)
	_, err = fm.runAll(code)
	return fm.Ns, err
}

// RunFile runs the file at path.
func (ev *Evaler) RunFile(path string) (Namespace, error) {
	return ev.Run(source.Open(path))
}

// RunCode runs code as a virtual unit with the given name.
func (ev *Evaler) RunCode(name, code string) (Namespace, error) {
	return ev.Run(source.Virtual(name, code))
}

func (ev *Evaler) stdinReader() *bufio.Reader {
	if ev.stdin == nil {
		ev.stdin = bufio.NewReader(ev.Stdin)
	}
	return ev.stdin
}
