// Package numeval evaluates arithmetic expressions to decimal strings.
//
// Expressions are made of numbers (digits with an optional fraction), the
// binary operators + - * / % ^, unary minus and parentheses. Precedence
// follows bc: unary minus binds tightest, then ^ (right-associative), then
// * / %, then + -.
package numeval

import (
	"fmt"
	"strings"
)

// Evaluator evaluates an arithmetic expression and returns the result as a
// decimal string.
type Evaluator interface {
	Eval(expr string) (string, error)
}

// Error is returned when an expression cannot be evaluated.
type Error struct {
	Expr    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("cannot evaluate %q: %s", e.Expr, e.Message)
}

// Kind names the error in fatal reports.
func (e *Error) Kind() string { return "NUMERIC" }

// IsNumber reports whether s is the text of a number: an optional minus sign,
// digits, and an optional fraction.
func IsNumber(s string) bool {
	s = strings.TrimPrefix(s, "-")
	intPart, frac, hasDot := strings.Cut(s, ".")
	if !allDigits(intPart) || intPart == "" {
		return false
	}
	return !hasDot || (frac != "" && allDigits(frac))
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Only these characters may appear in an expression.
func validChars(expr string) bool {
	for _, r := range expr {
		if !strings.ContainsRune("0123456789.+-*/%^() \t", r) {
			return false
		}
	}
	return true
}
