package eval

import (
	"errors"
	"fmt"
	"strings"

	"src.servo.sh/pkg/diag"
	"src.servo.sh/pkg/source"
)

// Function is a function value. The body of a user-defined function is kept
// as text and run in a new frame on every call.
type Function struct {
	Name   string
	Params []string
	// Index of the parameter receiving the trailing block, or -1.
	BlockIndex int
	Body       string

	builtin func(fm *Frame, args []Value) (Value, error)
}

// IsBuiltin reports whether the function is implemented natively.
func (fn *Function) IsBuiltin() bool { return fn.builtin != nil }

// NotCallableError is returned when calling a name bound to something other
// than a function.
type NotCallableError struct {
	Name string
	Repr string
}

func (e *NotCallableError) Error() string {
	return fmt.Sprintf("%s is not callable: bound to %s", e.Name, e.Repr)
}

// Kind names the error in fatal reports.
func (e *NotCallableError) Kind() string { return "CALL" }

var errMultipleBlockParams = errors.New("multiple trailing-block parameters")

// Call calls fn with args. The body runs in a new frame whose namespace holds
// the builtins and the parameters; missing arguments are bound to empty text
// and extra ones are ignored. The result is the value of the return statement
// that ended the body, or Unset.
func (fm *Frame) Call(fn *Function, args []Value) (Value, error) {
	if fn.builtin != nil {
		return fn.builtin(fm, args)
	}
	if _, err := fm.pushLayer(fn.Name, LayerFunc); err != nil {
		return nil, err
	}
	defer fm.popLayer()

	sub := fm.newFrame(source.Virtual(fn.Name, fn.Body), true)
	for i, param := range fn.Params {
		var v Value = Text("")
		if i < len(args) {
			v = args[i]
		}
		sub.Ns.Bind(param, v, KindArg)
	}
	out, err := sub.runAll(fn.Body)
	if err != nil {
		return nil, err
	}
	if out.Returned {
		return out.Value, nil
	}
	return Unset{}, nil
}

// Defines a function in the namespace of the frame. bodyStart is the offset
// of the body in the code of the frame; in check mode it is used to report
// syntax errors in the body at their position in the enclosing code.
func (fm *Frame) define(name string, params []string, blockIndex int, body string, bodyStart int) (*Function, error) {
	fn := &Function{Name: name, Params: params, BlockIndex: blockIndex, Body: body}
	fm.Ns.Bind(name, fn, KindFunc)
	if fm.Check {
		return fn, fm.checkBody(fn, bodyStart)
	}
	return fn, nil
}

func (fm *Frame) checkBody(fn *Function, bodyStart int) error {
	sub := fm.newFrame(source.Virtual(fn.Name, fn.Body), true)
	for _, param := range fn.Params {
		sub.Ns.Bind(param, Text(""), KindArg)
	}
	_, err := sub.runAll(fn.Body)
	if err == nil {
		return nil
	}
	if e := GetSyntaxError(err); e != nil {
		return fm.syntaxError(e.Message, diag.Ranging{
			From: e.Context.From + bodyStart, To: e.Context.To + bodyStart})
	}
	return err
}

// Splits the parameter list of a function definition. A parameter written as
// {name} receives the trailing block; its index is returned, or -1.
func parseParams(s string) ([]string, int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, -1, nil
	}
	blockIndex := -1
	var params []string
	for i, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if len(p) > 2 && p[0] == '{' && p[len(p)-1] == '}' {
			if blockIndex != -1 {
				return nil, -1, errMultipleBlockParams
			}
			blockIndex = i
			p = strings.TrimSpace(p[1 : len(p)-1])
		}
		if !isIdentifier(p) {
			return nil, -1, fmt.Errorf("invalid parameter name %q", p)
		}
		params = append(params, p)
	}
	return params, blockIndex, nil
}

// Called when the parentheses of a call are balanced.
func (fm *Frame) completeCall(m *mode) error {
	if fm.Check {
		fn := fm.lookupFunction(m.name)
		if fn == nil || fn.BlockIndex >= 0 {
			fm.push(&mode{kind: modeWaitBlock, fn: fn})
		}
		return nil
	}
	args, err := fm.evalArgs(m.buf)
	if err != nil {
		return err
	}
	fn, err := fm.callable(m.name)
	if err != nil {
		return err
	}
	if fn.BlockIndex >= 0 && len(args) <= fn.BlockIndex {
		fm.push(&mode{kind: modeWaitBlock, fn: fn, args: args})
		return nil
	}
	_, err = fm.Call(fn, args)
	return err
}

// Resolves name to a function.
func (fm *Frame) callable(name string) (*Function, error) {
	v, err := fm.Ns.Lookup(name)
	if err != nil {
		return nil, err
	}
	fn, ok := v.Value.(*Function)
	if !ok {
		return nil, &NotCallableError{name, Repr(v.Value)}
	}
	return fn, nil
}

// Completes a call that waited for a trailing block. A nil block calls the
// function without one.
func (fm *Frame) finishCall(m *mode, block *Function) error {
	if fm.Check || m.fn == nil {
		return nil
	}
	// Calls only wait when fewer arguments than the block index were given.
	args := m.args
	if block != nil {
		for len(args) < m.fn.BlockIndex {
			args = append(args, Text(""))
		}
		args = append(args, block)
	}
	_, err := fm.Call(m.fn, args)
	return err
}
