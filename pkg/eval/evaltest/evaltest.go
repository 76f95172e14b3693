// Package evaltest provides a framework for testing Servo code.
//
// The entry point for the framework is the Test function, which accepts a
// *testing.T and any number of test cases.
//
// Test cases are constructed using the That function, followed by method calls
// that add additional information to it.
//
// Example:
//
//	Test(t,
//		That(`x = "hi"`).Binds("x", eval.Text("hi")),
//		That(`system("echo x")`).Runs("echo x"))
//
// Commands are never run for real: every Evaler uses a Recorder as its
// process runner.
package evaltest

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"src.servo.sh/pkg/eval"
)

// Case is a test case that can be used in Test.
type Case struct {
	codes    []string
	setup    func(ev *eval.Evaler)
	verify   func(t *testing.T, ns eval.Namespace)
	input    string
	captured map[string]string
	failing  map[string]error
	want     result
}

type result struct {
	Binds     []binding
	Runs      []string
	Output    *string
	Exception error
}

type binding struct {
	name string
	v    any
}

// That returns a new Case with the specified source code. Multiple arguments
// are joined with newlines. To specify multiple pieces of code that are run
// separately, use the Then method to append code pieces.
func That(lines ...string) Case {
	return Case{codes: []string{strings.Join(lines, "\n")}}
}

// Then returns a new Case that runs the given code in addition, in a new
// top-level frame of the same Evaler.
func (c Case) Then(lines ...string) Case {
	c.codes = append(c.codes, strings.Join(lines, "\n"))
	return c
}

// WithSetup returns a new Case with the given setup function executed on the
// Evaler before the code is run.
func (c Case) WithSetup(f func(*eval.Evaler)) Case {
	c.setup = f
	return c
}

// WithInput returns a new Case whose Evaler reads s from its stdin.
func (c Case) WithInput(s string) Case {
	c.input = s
	return c
}

// Captures returns a new Case where capturing the output of cmd gives out.
func (c Case) Captures(cmd, out string) Case {
	c.captured = cloneWith(c.captured, cmd, out)
	return c
}

// Failing returns a new Case where running cmd fails with err.
func (c Case) Failing(cmd string, err error) Case {
	c.failing = cloneWith(c.failing, cmd, err)
	return c
}

func cloneWith[V any](m map[string]V, k string, v V) map[string]V {
	m2 := make(map[string]V, len(m)+1)
	for k, v := range m {
		m2[k] = v
	}
	m2[k] = v
	return m2
}

// DoesNothing returns c unchanged. It is useful to mark tests that don't have
// any side effects, for example:
//
//	That("# comment").DoesNothing()
func (c Case) DoesNothing() Case {
	return c
}

// Passes returns an altered Case that runs an additional verification
// function on the namespace of the last piece of code.
func (c Case) Passes(f func(t *testing.T, ns eval.Namespace)) Case {
	c.verify = f
	return c
}

// Binds returns an altered Case that requires name to be bound in the
// namespace of the last piece of code. The value may be a ValueMatcher.
func (c Case) Binds(name string, v any) Case {
	c.want.Binds = append(c.want.Binds[:len(c.want.Binds):len(c.want.Binds)], binding{name, v})
	return c
}

// Runs returns an altered Case that requires exactly the given commands to be
// run, in order, including captured ones.
func (c Case) Runs(cmds ...string) Case {
	c.want.Runs = cmds
	return c
}

// Prints returns an altered Case that requires the code to write s to its
// stdout.
func (c Case) Prints(s string) Case {
	c.want.Output = &s
	return c
}

// Throws returns an altered Case that requires the code to fail with the
// given reason. The reason supports special matcher values constructed by
// functions like ErrorWithMessage.
//
// If at least one frame name is given, the frames the failure crossed must
// have exactly those names, innermost first.
func (c Case) Throws(reason error, frames ...string) Case {
	c.want.Exception = exc{reason, frames}
	return c
}

// ThrowsAny returns an altered Case that requires the code to fail.
func (c Case) ThrowsAny() Case {
	c.want.Exception = anyError{}
	return c
}

// Test runs test cases. For each test case, a new Evaler is created with
// NewEvaler.
func Test(t *testing.T, tests ...Case) {
	t.Helper()
	TestWithSetup(t, func(*eval.Evaler) {}, tests...)
}

// TestWithSetup runs test cases. For each test case, a new Evaler is created
// with NewEvaler and passed to the setup function.
func TestWithSetup(t *testing.T, setup func(*eval.Evaler), tests ...Case) {
	t.Helper()
	for _, tc := range tests {
		t.Run(strings.Join(tc.codes, "\n"), func(t *testing.T) {
			t.Helper()
			rec := &Recorder{Captured: tc.captured, Failing: tc.failing}
			var stdout bytes.Buffer
			ev := eval.NewEvaler()
			ev.Runner = rec
			ev.Stdin = strings.NewReader(tc.input)
			ev.Stdout = &stdout
			setup(ev)
			if tc.setup != nil {
				tc.setup(ev)
			}

			var ns eval.Namespace
			var err error
			for _, code := range tc.codes {
				ns, err = ev.RunCode("[test]", code)
				if err != nil {
					break
				}
			}

			if tc.verify != nil {
				tc.verify(t, ns)
			}
			for _, b := range tc.want.Binds {
				variable, lookupErr := ns.Lookup(b.name)
				if lookupErr != nil {
					t.Errorf("%s not bound: %v", b.name, lookupErr)
					continue
				}
				if !matchValue(b.v, variable.Value) {
					t.Errorf("%s bound to %s, want %v", b.name, eval.Repr(variable.Value), b.v)
				}
			}
			if tc.want.Runs != nil || len(rec.Cmds) > 0 {
				if diff := cmp.Diff(tc.want.Runs, rec.Cmds, cmpopts.EquateEmpty()); diff != "" {
					t.Errorf("commands run (-want +got):\n%s", diff)
				}
			}
			if tc.want.Output != nil && stdout.String() != *tc.want.Output {
				t.Errorf("got output %q, want %q", stdout.String(), *tc.want.Output)
			}
			if !matchErr(tc.want.Exception, err) {
				t.Errorf("unexpected exception")
				t.Logf("got: %T: %v", eval.Reason(err), err)
				t.Errorf("want: %v", tc.want.Exception)
			}
		})
	}
}

// ValueMatcher is a value that can be passed to Case.Binds to match values
// flexibly.
type ValueMatcher interface {
	matchValue(eval.Value) bool
}

// AnyFunction matches any function value.
var AnyFunction ValueMatcher = anyFunction{}

type anyFunction struct{}

func (anyFunction) matchValue(v eval.Value) bool {
	_, ok := v.(*eval.Function)
	return ok
}

func (anyFunction) String() string { return "any function" }

// FunctionNamed matches a function value with the given name.
func FunctionNamed(name string) ValueMatcher { return functionNamed{name} }

type functionNamed struct{ name string }

func (m functionNamed) matchValue(v eval.Value) bool {
	fn, ok := v.(*eval.Function)
	return ok && fn.Name == m.name
}

func (m functionNamed) String() string { return "function named " + m.name }

func matchValue(want any, got eval.Value) bool {
	if m, ok := want.(ValueMatcher); ok {
		return m.matchValue(got)
	}
	return reflect.DeepEqual(want, got)
}

func matchErr(want, got error) bool {
	if want == nil {
		return got == nil
	}
	if matcher, ok := want.(errorMatcher); ok {
		return matcher.matchError(got)
	}
	return errors.Is(got, want)
}
