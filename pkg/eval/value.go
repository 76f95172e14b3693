package eval

import (
	"sort"
	"strconv"
	"strings"
)

// Value is a value of the language. It is one of Text, *Function, Module and
// Unset. Values are never mutated after they are created.
type Value interface {
	isValue()
}

// Text is a string value. Numbers are Text too.
type Text string

// Module is the value of an imported module: the namespace it published.
type Module struct {
	Ns Namespace
}

// Unset is the value of a call that did not return anything.
type Unset struct{}

func (Text) isValue()      {}
func (*Function) isValue() {}
func (Module) isValue()    {}
func (Unset) isValue()     {}

// ToText converts a value to the text used when it is concatenated or passed
// to a builtin. A function converts to its name, so that passing the text on
// resolves to the same function.
func ToText(v Value) string {
	switch v := v.(type) {
	case Text:
		return string(v)
	case *Function:
		return v.Name
	case Module:
		return "<module>"
	case Unset:
		return ""
	}
	panic("unreachable")
}

// Repr returns a representation of a value for diagnostics and the REPL.
func Repr(v Value) string {
	switch v := v.(type) {
	case Text:
		return strconv.Quote(string(v))
	case *Function:
		params := append([]string(nil), v.Params...)
		if v.BlockIndex >= 0 {
			params[v.BlockIndex] = "{" + params[v.BlockIndex] + "}"
		}
		return "<fn " + v.Name + "(" + strings.Join(params, ", ") + ")>"
	case Module:
		names := make([]string, 0, len(v.Ns))
		for name := range v.Ns {
			names = append(names, name)
		}
		sort.Strings(names)
		return "<module " + strings.Join(names, " ") + ">"
	case Unset:
		return "unset"
	}
	panic("unreachable")
}
