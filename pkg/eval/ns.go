package eval

import (
	"fmt"
	"sort"
	"strings"
)

// Kinds of variables. They are informational and do not affect lookup.
const (
	KindText    = "text"
	KindFunc    = "func"
	KindModule  = "module"
	KindArg     = "arg"
	KindBuiltin = "builtin"
)

// Variable is a binding in a Namespace. Children gives every variable a
// nested namespace; it holds the members of modules.
type Variable struct {
	Name     string
	Value    Value
	Kind     string
	Children Namespace
}

// Namespace maps names to variables. Each Frame owns exactly one.
type Namespace map[string]*Variable

// NotFoundError is returned when the first segment of a name is not bound.
// Callers may recover from it by treating the name as literal text.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("variable %q not found", e.Name)
}

// Kind names the error in fatal reports.
func (e *NotFoundError) Kind() string { return "NAME" }

// MemberError is returned when a dotted name reaches a variable that lacks
// the next member. It is never recovered from.
type MemberError struct {
	// The part of the name that was resolved.
	Parent string
	Member string
}

func (e *MemberError) Error() string {
	return fmt.Sprintf("variable %q not found in %q", e.Member, e.Parent)
}

// Kind names the error in fatal reports.
func (e *MemberError) Kind() string { return "MEMBER" }

// Bind binds name to v, replacing any existing binding. A Module value
// exposes its namespace as the children of the variable.
func (ns Namespace) Bind(name string, v Value, kind string) *Variable {
	variable := &Variable{Name: name, Value: v, Kind: kind}
	if m, ok := v.(Module); ok {
		variable.Children = m.Ns
	}
	ns[name] = variable
	return variable
}

// Lookup resolves a possibly dotted name. A name bound as a whole wins over
// dotted navigation.
func (ns Namespace) Lookup(name string) (*Variable, error) {
	if v, ok := ns[name]; ok {
		return v, nil
	}
	segs := strings.Split(name, ".")
	v, ok := ns[segs[0]]
	if !ok {
		return nil, &NotFoundError{name}
	}
	for i, seg := range segs[1:] {
		child, ok := v.Children[seg]
		if !ok {
			return nil, &MemberError{strings.Join(segs[:i+1], "."), seg}
		}
		v = child
	}
	return v, nil
}

// Names returns the bound names in lexicographical order.
func (ns Namespace) Names() []string {
	names := make([]string, 0, len(ns))
	for name := range ns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// exported returns a copy of ns without the builtins, as published by an
// imported module.
func (ns Namespace) exported() Namespace {
	out := make(Namespace, len(ns))
	for name, v := range ns {
		if !isBuiltinName(name) {
			out[name] = v
		}
	}
	return out
}

func kindOf(v Value) string {
	switch v.(type) {
	case *Function:
		return KindFunc
	case Module:
		return KindModule
	}
	return KindText
}
