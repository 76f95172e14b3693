package eval

import (
	"unicode/utf8"

	"src.servo.sh/pkg/diag"
	"src.servo.sh/pkg/source"
)

// Frame is an execution context: it consumes the text of one source unit and
// owns the namespace and mode stack used while doing so. A Frame is created
// for the top-level program, for each import and for each function
// invocation.
type Frame struct {
	*Evaler
	Src *source.File
	Ns  Namespace

	code  string
	pos   int
	stack []*mode
	// Whether the frame runs a function body. Returns only escape from
	// virtual frames.
	virtual bool
	// Number of block literals defined so far; used to name them.
	blocks int

	returned bool
	retValue Value
}

// Outcome is the result of feeding code to a frame.
type Outcome struct {
	// Whether a return statement completed.
	Returned bool
	// The returned value, if Returned is true.
	Value Value
}

type action int

const (
	// Move on to the next character.
	advance action = iota
	// Dispatch the same character again, against the new top mode.
	redispatch
)

func (ev *Evaler) newFrame(src *source.File, virtual bool) *Frame {
	fm := &Frame{Evaler: ev, Src: src, Ns: make(Namespace), virtual: virtual}
	seedBuiltins(fm.Ns)
	return fm
}

// Feed consumes chunk, running statements as their syntax completes. It
// stops when a return statement completes; the rest of chunk is then
// skipped. Errors leave the mode stack as it was; call Reset to continue
// after one.
func (fm *Frame) Feed(chunk string) (Outcome, error) {
	fm.code += chunk
	for fm.pos < len(fm.code) {
		r, size := utf8.DecodeRuneInString(fm.code[fm.pos:])
		act, err := fm.dispatch(r)
		if err != nil {
			return Outcome{}, fm.fail(err)
		}
		if act == advance {
			fm.pos += size
		}
		if fm.returned {
			return fm.takeReturn(), nil
		}
	}
	return Outcome{}, nil
}

// Finish signals the end of input. Pending constructs that may end at the
// end of input are completed; any other is an error.
func (fm *Frame) Finish() (Outcome, error) {
	for len(fm.stack) > 0 {
		if err := fm.finishTop(); err != nil {
			return Outcome{}, fm.fail(err)
		}
		if fm.returned {
			return fm.takeReturn(), nil
		}
	}
	return Outcome{}, nil
}

// Pending reports whether a construct is still open.
func (fm *Frame) Pending() bool { return len(fm.stack) > 0 }

// Reset discards open constructs and any unconsumed input.
func (fm *Frame) Reset() {
	fm.stack = nil
	fm.pos = len(fm.code)
	fm.returned, fm.retValue = false, nil
}

func (fm *Frame) takeReturn() Outcome {
	out := Outcome{true, fm.retValue}
	fm.returned, fm.retValue = false, nil
	fm.pos = len(fm.code)
	return out
}

// Runs code to the end. A return escaping a non-virtual frame is dropped.
func (fm *Frame) runAll(code string) (Outcome, error) {
	var out Outcome
	err := diag.Guard("servo.eval", func() error {
		var err error
		out, err = fm.Feed(code)
		if err == nil && !out.Returned {
			out, err = fm.Finish()
		}
		return err
	})
	if err != nil {
		return Outcome{}, err
	}
	if out.Returned && !fm.virtual {
		logger.Printf("%s: return at top level", fm.Src.Name)
		return Outcome{}, nil
	}
	return out, nil
}

func (fm *Frame) top() *mode {
	if len(fm.stack) == 0 {
		return nil
	}
	return fm.stack[len(fm.stack)-1]
}

func (fm *Frame) push(m *mode) {
	m.begin = fm.pos
	fm.stack = append(fm.stack, m)
}

func (fm *Frame) pop() *mode {
	m := fm.stack[len(fm.stack)-1]
	fm.stack = fm.stack[:len(fm.stack)-1]
	return m
}

// Replaces the top mode, keeping where it began.
func (fm *Frame) replace(m *mode) {
	top := fm.top()
	m.begin = top.begin
	fm.stack[len(fm.stack)-1] = m
}

// Range of the current character.
func (fm *Frame) here() diag.Ranging {
	if fm.pos >= len(fm.code) {
		return diag.Ranging{From: len(fm.code), To: len(fm.code)}
	}
	_, size := utf8.DecodeRuneInString(fm.code[fm.pos:])
	return diag.Ranging{From: fm.pos, To: fm.pos + size}
}

func (fm *Frame) syntaxError(msg string, r diag.Ranging) error {
	return &diag.Error{
		Type:    "syntax error",
		Message: msg,
		Context: *diag.NewContext(fm.Src.Name, fm.code, r),
	}
}

func (fm *Frame) fail(err error) error {
	return withContext(err, diag.NewContext(fm.Src.Name, fm.code, fm.here()))
}
