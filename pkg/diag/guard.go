package diag

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// BaseLabel is the label of the outermost boundary. A fatal error reaching
// it ends the program.
const BaseLabel = "servo.base"

// Guarded is an error that has crossed a boundary established by Guard.
type Guarded struct {
	Label string
	Err   error
}

func (g *Guarded) Error() string { return g.Err.Error() }

func (g *Guarded) Unwrap() error { return g.Err }

// Kinder is implemented by errors that know how they should be named in a
// fatal report.
type Kinder interface {
	Kind() string
}

// Kind returns the kind of a diag.Error, derived from its type.
func (e *Error) Kind() string {
	return strings.ToUpper(strings.TrimSuffix(e.Type, " error"))
}

// Guard calls f and tags the error it returns with label. An error that is
// already tagged keeps the label of the innermost boundary it crossed.
func Guard(label string, f func() error) error {
	err := f()
	if err == nil {
		return nil
	}
	var g *Guarded
	if errors.As(err, &g) {
		return err
	}
	return &Guarded{label, err}
}

// Label returns the label of the innermost boundary err crossed, or
// "<unknown>".
func Label(err error) string {
	var g *Guarded
	if errors.As(err, &g) {
		return g.Label
	}
	return "<unknown>"
}

// FatalKind returns the name of the kind of err as shown by ShowFatal, like
// "SYNTAX FATAL".
func FatalKind(err error) string {
	var k Kinder
	if errors.As(err, &k) {
		return k.Kind() + " FATAL"
	}
	return "RUNTIME FATAL"
}

var (
	fatalStart = "\033[1m"
	fatalMid   = "\033[0;91m"
	fatalEnd   = "\033[m"
)

// ShowFatal writes the single-line report of a fatal error. Escape sequences
// are only written when color is true.
func ShowFatal(w io.Writer, err error, color bool) {
	msg := strings.ReplaceAll(strings.TrimRight(err.Error(), "\n"), "\n", " ")
	start, mid, end := "", "", ""
	if color {
		start, mid, end = fatalStart, fatalMid, fatalEnd
	}
	fmt.Fprintf(w, "%s[servo]%s got '%s' from '%s': %s%s\n",
		start, mid, FatalKind(err), Label(err), msg, end)
}
