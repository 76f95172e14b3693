package evaltest

import (
	"errors"
	"fmt"
	"reflect"

	"src.servo.sh/pkg/diag"
	"src.servo.sh/pkg/eval"
)

type errorMatcher interface{ matchError(error) bool }

// An errorMatcher for exceptions.
type exc struct {
	reason error
	frames []string
}

func (e exc) Error() string {
	if len(e.frames) == 0 {
		return fmt.Sprintf("exception with reason %v", e.reason)
	}
	return fmt.Sprintf("exception with reason %v and frames %v", e.reason, e.frames)
}

func (e exc) matchError(e2 error) bool {
	var x *eval.Exception
	if !errors.As(e2, &x) {
		return false
	}
	return matchErr(e.reason, x.Reason) &&
		(len(e.frames) == 0 || reflect.DeepEqual(e.frames, frameNames(x)))
}

func frameNames(x *eval.Exception) []string {
	names := []string{}
	for _, ctx := range x.Stack {
		names = append(names, ctx.Name)
	}
	return names
}

type anyError struct{}

func (anyError) Error() string           { return "any error" }
func (anyError) matchError(e error) bool { return e != nil }

// AnySyntaxError is an error that can be passed to Case.Throws to match any
// syntax error.
var AnySyntaxError error = anySyntaxError{}

type anySyntaxError struct{}

func (anySyntaxError) Error() string           { return "any syntax error" }
func (anySyntaxError) matchError(e error) bool { return eval.GetSyntaxError(e) != nil }

// SyntaxErrorWithMessage returns an error that can be passed to Case.Throws to
// match a syntax error with the given message.
func SyntaxErrorWithMessage(msg string) error { return syntaxErrorWithMessage{msg} }

type syntaxErrorWithMessage struct{ msg string }

func (e syntaxErrorWithMessage) Error() string { return "syntax error with message " + e.msg }

func (e syntaxErrorWithMessage) matchError(e2 error) bool {
	se := eval.GetSyntaxError(e2)
	return se != nil && se.Message == e.msg
}

// ErrorWithType returns an error that can be passed to Case.Throws to match
// any error with the same type as the argument, anywhere in the chain of
// wrapped errors.
func ErrorWithType(v error) error { return errWithType{v} }

// An errorMatcher for any error with the given type.
type errWithType struct{ v error }

func (e errWithType) Error() string { return fmt.Sprintf("error with type %T", e.v) }

func (e errWithType) matchError(e2 error) bool {
	for ; e2 != nil; e2 = errors.Unwrap(e2) {
		if reflect.TypeOf(e.v) == reflect.TypeOf(e2) {
			return true
		}
	}
	return false
}

// ErrorWithMessage returns an error that can be passed to Case.Throws to match
// any error with the given message.
func ErrorWithMessage(msg string) error { return errWithMessage{msg} }

// An errorMatcher for any error with the given message.
type errWithMessage struct{ msg string }

func (e errWithMessage) Error() string { return "error with message " + e.msg }

func (e errWithMessage) matchError(e2 error) bool {
	return e2 != nil && e.msg == e2.Error()
}

// ErrorFrom returns an error that can be passed to Case.Throws to match an
// error that crossed the boundary with the given label first.
func ErrorFrom(label string) error { return errFrom{label} }

type errFrom struct{ label string }

func (e errFrom) Error() string { return "error from " + e.label }

func (e errFrom) matchError(e2 error) bool {
	return e2 != nil && diag.Label(e2) == e.label
}
