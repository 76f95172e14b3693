package eval

import (
	"bytes"
	"errors"
	"fmt"

	"src.servo.sh/pkg/diag"
)

// Exception is the error returned when running code fails. It records the
// reason and where in each frame the failure happened.
type Exception struct {
	Reason error
	// Contexts of the frames the failure crossed, innermost first.
	Stack []*diag.Context
}

// Error returns the message of the reason.
func (exc *Exception) Error() string { return exc.Reason.Error() }

// Unwrap returns the reason.
func (exc *Exception) Unwrap() error { return exc.Reason }

// Show shows the exception with a traceback.
func (exc *Exception) Show(indent string) string {
	buf := new(bytes.Buffer)

	var causeDescription string
	if shower, ok := exc.Reason.(diag.Shower); ok {
		causeDescription = shower.Show(indent)
	} else {
		causeDescription = "\033[31;1m" + exc.Reason.Error() + "\033[m"
	}
	fmt.Fprintf(buf, "Exception: %s", causeDescription)

	switch len(exc.Stack) {
	case 0:
	case 1:
		buf.WriteString("\n" + indent + "  " + exc.Stack[0].ShowCompact(indent+"  "))
	default:
		buf.WriteString("\n" + indent + "Traceback:")
		for _, ctx := range exc.Stack {
			buf.WriteString("\n" + indent + "  ")
			buf.WriteString(ctx.Show(indent + "    "))
		}
	}
	return buf.String()
}

// Reason returns the reason of err if it is an *Exception, and err itself
// otherwise.
func Reason(err error) error {
	var exc *Exception
	if errors.As(err, &exc) {
		return exc.Reason
	}
	return err
}

// Adds the context to the stack of the exception in err, or wraps err in a
// new exception.
func withContext(err error, ctx *diag.Context) error {
	var exc *Exception
	if errors.As(err, &exc) {
		exc.Stack = append(exc.Stack, ctx)
		return err
	}
	return &Exception{err, []*diag.Context{ctx}}
}

// GetSyntaxError returns the syntax error in err, or nil.
func GetSyntaxError(err error) *diag.Error {
	var e *diag.Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
