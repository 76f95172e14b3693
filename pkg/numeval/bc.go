package numeval

import (
	"strings"

	"src.servo.sh/pkg/proc"
)

// BC evaluates expressions by piping them to bc -l.
type BC struct {
	Runner proc.Runner
}

var _ Evaluator = BC{}

// Eval implements Evaluator.
func (b BC) Eval(expr string) (string, error) {
	if !validChars(expr) {
		return "", &Error{expr, "invalid character"}
	}
	out, err := b.Runner.RunCaptured(`echo "` + expr + `" | bc -l`)
	if err != nil {
		return "", err
	}
	// bc breaks long numbers with a backslash-newline.
	out = strings.ReplaceAll(out, "\\\n", "")
	out = strings.TrimRight(out, "\r\n")
	if out == "" {
		return "", &Error{expr, "bc printed nothing"}
	}
	return out, nil
}
