package eval

import (
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"src.servo.sh/pkg/diag"
	"src.servo.sh/pkg/numeval"
)

// Names of the builtins seeded into every namespace.
var builtinNames = []string{"system", "systemreturn", "system_math", "input"}

func isBuiltinName(name string) bool {
	for _, b := range builtinNames {
		if name == b {
			return true
		}
	}
	return false
}

// Value of system_math.pi.
const pi = "3.14159265359"

var mathFuncs = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"sqrt": math.Sqrt,
}

func seedBuiltins(ns Namespace) {
	ns.Bind("system", &Function{Name: "system", BlockIndex: -1, builtin: system}, KindBuiltin)
	ns.Bind("systemreturn", &Function{Name: "systemreturn", BlockIndex: -1, builtin: systemReturn}, KindBuiltin)
	ns.Bind("input", &Function{Name: "input", BlockIndex: -1, builtin: input}, KindBuiltin)

	mathNs := make(Namespace)
	mathNs.Bind("pi", Text(pi), KindText)
	for name, f := range mathFuncs {
		fn := &Function{Name: "system_math." + name, BlockIndex: -1, builtin: mathBuiltin(name, f)}
		mathNs.Bind(name, fn, KindBuiltin)
	}
	ns.Bind("system_math", Module{mathNs}, KindBuiltin)
}

func firstText(args []Value) string {
	if len(args) == 0 {
		return ""
	}
	return ToText(args[0])
}

func builtinGuard(f func() error) error {
	return diag.Guard("servo.builtins", f)
}

// system(cmd) runs cmd. A command that fails is an error.
func system(fm *Frame, args []Value) (Value, error) {
	cmd := firstText(args)
	logger.Printf("system: %s", cmd)
	err := builtinGuard(func() error { return fm.Runner.Run(cmd) })
	if err != nil {
		return nil, err
	}
	return Unset{}, nil
}

// systemreturn(cmd) runs cmd and returns its output.
func systemReturn(fm *Frame, args []Value) (Value, error) {
	cmd := firstText(args)
	logger.Printf("systemreturn: %s", cmd)
	var out string
	err := builtinGuard(func() error {
		var err error
		out, err = fm.Runner.RunCaptured(cmd)
		return err
	})
	if err != nil {
		return nil, err
	}
	return Text(out), nil
}

func mathBuiltin(name string, f func(float64) float64) func(*Frame, []Value) (Value, error) {
	return func(fm *Frame, args []Value) (Value, error) {
		if len(args) == 0 {
			return Text("0"), nil
		}
		arg := strings.TrimSpace(ToText(args[0]))
		var result float64
		err := builtinGuard(func() error {
			x, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return &numeval.Error{Expr: name + "(" + arg + ")", Message: "argument is not a number"}
			}
			result = f(x)
			if math.IsNaN(result) || math.IsInf(result, 0) {
				return &numeval.Error{Expr: name + "(" + arg + ")", Message: "result is not a finite number"}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return Text(strconv.FormatFloat(result, 'f', -1, 64)), nil
	}
}

// input(prompt) writes prompt and reads a line. The line terminator is not
// part of the result.
func input(fm *Frame, args []Value) (Value, error) {
	var line string
	err := builtinGuard(func() error {
		if prompt := firstText(args); prompt != "" {
			if _, err := io.WriteString(fm.Stdout, prompt); err != nil {
				return err
			}
		}
		var err error
		line, err = fm.stdinReader().ReadString('\n')
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return Text(strings.TrimRight(line, "\r\n")), nil
}
