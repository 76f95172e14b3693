package eval

import (
	"errors"
	"strings"

	"src.servo.sh/pkg/diag"
	"src.servo.sh/pkg/numeval"
)

// Evaluates the text between the parentheses of a call to a list of
// arguments. Segments are separated by commas outside quotes and
// parentheses; empty segments are dropped.
func (fm *Frame) evalArgs(text string) ([]Value, error) {
	var args []Value
	for _, seg := range splitTop(text, ',') {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		v, err := fm.evalSegment(seg)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// Evaluates one argument, or the right-hand side of an assignment or return.
//
// A segment that is an arithmetic expression is evaluated as a whole.
// Otherwise it is a chain of terms joined by +. Adjacent numbers are added
// and anything else is concatenated as text. A segment of a single term
// evaluates to the value of the term, which need not be text.
func (fm *Frame) evalSegment(seg string) (Value, error) {
	if isArithmetic(seg) {
		s, err := fm.numeric(seg)
		if err != nil {
			return nil, err
		}
		return Text(s), nil
	}
	var terms []string
	for _, term := range splitTop(seg, '+') {
		if term = strings.TrimSpace(term); term != "" {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return Text(""), nil
	}
	if len(terms) == 1 {
		return fm.evalTerm(terms[0])
	}
	var acc string
	for i, term := range terms {
		v, err := fm.evalTerm(term)
		if err != nil {
			return nil, err
		}
		s := ToText(v)
		switch {
		case i == 0:
			acc = s
		case numeval.IsNumber(acc) && numeval.IsNumber(s):
			acc, err = fm.numeric(acc + " + " + s)
			if err != nil {
				return nil, err
			}
		default:
			acc += s
		}
	}
	return Text(acc), nil
}

// Evaluates a single term: a quoted literal, an arithmetic expression, a call
// or a variable. A name that is not bound evaluates to its own text.
func (fm *Frame) evalTerm(term string) (Value, error) {
	if isQuoted(term) {
		return Text(term[1 : len(term)-1]), nil
	}
	if (isDigit(rune(term[0])) || term[0] == '-' || term[0] == '(') && isArithmetic(term) {
		s, err := fm.numeric(term)
		if err != nil {
			return nil, err
		}
		return Text(s), nil
	}
	if name, argText, ok := splitCall(term); ok {
		args, err := fm.evalArgs(argText)
		if err != nil {
			return nil, err
		}
		fn, err := fm.callable(name)
		if err != nil {
			if isNotFound(err) {
				return Text(term), nil
			}
			return nil, err
		}
		return fm.Call(fn, args)
	}
	v, err := fm.Ns.Lookup(term)
	if err != nil {
		if isNotFound(err) {
			return Text(term), nil
		}
		return nil, err
	}
	return v.Value, nil
}

func isNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func (fm *Frame) numeric(expr string) (string, error) {
	var result string
	err := diag.Guard("servo.numeval", func() error {
		var err error
		result, err = fm.Numeric.Eval(expr)
		return err
	})
	return result, err
}

// Splits s at occurrences of sep outside quotes and parentheses.
func splitTop(s string, sep byte) []string {
	var (
		parts   []string
		quote   byte
		nesting int
		last    int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			nesting++
		case c == ')':
			if nesting > 0 {
				nesting--
			}
		case c == sep && nesting == 0:
			parts = append(parts, s[last:i])
			last = i + 1
		}
	}
	return append(parts, s[last:])
}

// Reports whether s only has characters of arithmetic expressions and at
// least one digit.
func isArithmetic(s string) bool {
	hasDigit := false
	for _, r := range s {
		switch {
		case isDigit(r):
			hasDigit = true
		case strings.ContainsRune("+-*/%^.() \t", r):
		default:
			return false
		}
	}
	return hasDigit
}

func isQuoted(s string) bool {
	return len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0]
}

// Splits a term of the form name(args). The parenthesis after the name must
// be balanced by the last character of the term.
func splitCall(term string) (name, args string, ok bool) {
	i := strings.IndexByte(term, '(')
	if i <= 0 || term[len(term)-1] != ')' {
		return "", "", false
	}
	name = strings.TrimSpace(term[:i])
	if !isIdentifier(name) {
		return "", "", false
	}
	var quote byte
	nesting := 0
	for j := i; j < len(term); j++ {
		c := term[j]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			nesting++
		case c == ')':
			nesting--
			if nesting == 0 && j != len(term)-1 {
				return "", "", false
			}
		}
	}
	if nesting != 0 {
		return "", "", false
	}
	return name, term[i+1 : len(term)-1], true
}
