package eval_test

import (
	"testing"

	"src.servo.sh/pkg/eval"
	. "src.servo.sh/pkg/eval/evaltest"
	"src.servo.sh/pkg/numeval"
	"src.servo.sh/pkg/proc"
)

func TestStatements(t *testing.T) {
	Test(t,
		That("").DoesNothing(),
		That("# a comment", "x = 1").Binds("x", eval.Text("1")),
		That("x = 1 # not a comment").Binds("x", eval.Text("1 # not a comment")),
		// Numbers and strings are statements without effects.
		That(`42`, `"text"`, `'text'`).DoesNothing(),
		That("x  =  2").Binds("x", eval.Text("2")),
		// An assignment without a value binds nothing.
		That("x =").Passes(func(t *testing.T, ns eval.Namespace) {
			if _, ok := ns["x"]; ok {
				t.Errorf("x bound")
			}
		}),
		That(`x = "a"`, `x = "b"`).Binds("x", eval.Text("b")),
		That(`a.b = "c"`).Binds("a.b", eval.Text("c")),
	)
}

func TestAssignment_RoundTrip(t *testing.T) {
	Test(t,
		That(`x = "hi"`, `system(x)`).Runs("hi"),
		That(`x = 'it is "quoted"'`).Binds("x", eval.Text(`it is "quoted"`)),
		That(`x = "hi"`, `y = x`).Binds("y", eval.Text("hi")),
		// Unbound names evaluate to their own text.
		That(`x = nothing`).Binds("x", eval.Text("nothing")),
		That(`system(echo)`).Runs("echo"),
		// Assignments run across lines of one Then piece, not across pieces.
		That(`x = "hi"`).Then(`system(x)`).Runs("x"),
	)
}

func TestArithmetic(t *testing.T) {
	Test(t,
		That("x = 1 + 2").Binds("x", eval.Text("3")),
		That(`x = 1 + "a"`).Binds("x", eval.Text("1a")),
		That(`x = "a" + "b"`).Binds("x", eval.Text("ab")),
		That(`x = "a" + 1 + 2`).Binds("x", eval.Text("a12")),
		That(`x = 1 + 2 + "a"`).Binds("x", eval.Text("3a")),
		That("x = 7 / 2").Binds("x", eval.Text("3.5")),
		That("x = 2 ^ 10 - 1").Binds("x", eval.Text("1023")),
		That("x = (1 + 2) * 3").Binds("x", eval.Text("9")),
		That(`x = "a" + (1)`).Binds("x", eval.Text("a1")),
		That(`x = "a" + (1 + 2)`).Binds("x", eval.Text("a3")),
		That("a = 4", "x = a + 1").Binds("x", eval.Text("5")),
		That("a = 4", "x = a + a").Binds("x", eval.Text("8")),
		That(`system(1 + 2, "ignored")`).Runs("3"),
		That(`system("n=" + 1 + 2)`).Runs("n=12"),

		That("x = 1 / 0").Throws(ErrorWithType(&numeval.Error{})),
		That("x = 1 / 0").Throws(ErrorFrom("servo.numeval")),
		// A number that is a statement is still evaluated.
		That("1/0").Throws(ErrorWithType(&numeval.Error{})),
		// Operators cannot follow spaces at the top level.
		That("1 + 2").Throws(SyntaxErrorWithMessage(`unexpected character '+'`)),
	)
}

func TestFunctions(t *testing.T) {
	Test(t,
		That("fn add(a, b) { return a + b }", "x = add(2,3)").
			Binds("x", eval.Text("5")).
			Binds("add", FunctionNamed("add")),
		That("fn add(a, b) { return a + b }", "x = add(2, add(3, 4))").
			Binds("x", eval.Text("9")),
		// Missing arguments are empty; extra ones are ignored.
		That(`fn f(a, b) { system("[" + a + b + "]") }`, `f("x")`, `f("x", "y", "z")`).
			Runs("[x]", "[xy]"),
		That("fn f() {", `  system("a")`, `  system("b")`, "}", "f()", "f()").
			Runs("a", "b", "a", "b"),
		// Functions see their parameters and the builtins, but not the
		// bindings of their caller.
		That(`y = "outer"`, "fn f() { system(y) }", "f()").Runs("y"),
		That(`fn f() { x = "inner" }`, "f()").Passes(func(t *testing.T, ns eval.Namespace) {
			if _, ok := ns["x"]; ok {
				t.Errorf("x leaked from function frame")
			}
		}),
		// A call without a return evaluates to nothing.
		That(`fn f() { }`, "x = f()").Binds("x", eval.Unset{}),
		// Functions are values.
		That("fn f() { }", "g = f").Binds("g", FunctionNamed("f")),
		That(`fn f(x) { system(x) }`, "g = f", `g("hi")`).Runs("hi"),
		That(`fn f(g) { g("hi") }`, `fn say(x) { system(x) }`, "f(say)").Runs("hi"),
		That("fn   spaced   (a) { return a }", "x = spaced(1)").Binds("x", eval.Text("1")),

		That(`x = "a"`, "x()").Throws(ErrorWithType(&eval.NotCallableError{})),
		That("nope()").Throws(ErrorWithType(&eval.NotFoundError{})),
		That("fn f() { g() }", "f()").Throws(ErrorWithType(&eval.NotFoundError{}), "f", "[test]"),
		That("fn f({a}, {b}) { }").Throws(SyntaxErrorWithMessage("multiple trailing-block parameters")),
		That("fn f(a b) { }").Throws(SyntaxErrorWithMessage(`invalid parameter name "a b"`)),
		That("fn 1f() { }").Throws(SyntaxErrorWithMessage(`invalid function name "1f"`)),
		That("fn f() x { }").Throws(AnySyntaxError),
		// Syntax errors in bodies are found when the function is called.
		That("fn f() { @ }").DoesNothing(),
		That("fn f() { @ }", "f()").Throws(AnySyntaxError, "f", "[test]"),
	)
}

func TestReturn(t *testing.T) {
	Test(t,
		That("fn f() {", `  system("a")`, "  return 1", `  system("b")`, "}", "x = f()").
			Binds("x", eval.Text("1")).
			Runs("a"),
		That("fn f() {", "  return", `  system("b")`, "}", "x = f()").
			Binds("x", eval.Unset{}),
		That("fn f() { return }", "x = f()").Binds("x", eval.Unset{}),
		That(`fn f() { return "a" + "b" }`, "x = f()").Binds("x", eval.Text("ab")),
		That("fn f() { return unbound }", "x = f()").Binds("x", eval.Text("unbound")),
		// Returning a function value keeps it intact.
		That("fn g() { }", "fn id(v) { return v }", "x = id(g)").Binds("x", FunctionNamed("g")),
		// Returning at the top level stops the program without an error.
		That("x = 1", "return 2", `system("no")`, "y = 3").
			Binds("x", eval.Text("1")).
			Passes(func(t *testing.T, ns eval.Namespace) {
				if _, ok := ns["y"]; ok {
					t.Errorf("statement after top-level return ran")
				}
			}),
		That("return").DoesNothing(),
	)
}

func TestTrailingBlocks(t *testing.T) {
	Test(t,
		That("fn run({body}) { body() }", `run() { system("in block") }`).
			Runs("in block"),
		That("fn run({body}) { body() }", "run() {", `  system("a")`, `  system("b")`, "}").
			Runs("a", "b"),
		That("fn twice({body}) { body() body() }", `twice() { system("x") }`).
			Runs("x", "x"),
		// A bare function name is passed as the block.
		That(`fn greet() { system("greet") }`, "fn run({body}) { body() }", "run() greet").
			Runs("greet"),
		// The block goes to the declared index; skipped parameters are empty.
		That(`fn run(a, {body}, c) { system(a + "|" + c) body() }`,
			`run("x") { system("block") }`).
			Runs("x|", "block"),
		That(`fn run(a, b, {body}) { system(a + b) body() }`,
			`run("x") { system("block") }`).
			Runs("x", "block"),
		// Blocks may be given inside the parentheses.
		That("fn pick(a, {body}) { return body }", `x = pick(1, { system("a") })`).
			Binds("x", FunctionNamed("__block_1")),
		That("fn run({body}) { body() }", `run({ system("inline") })`).
			Runs("inline"),
		// Without a block, the call happens before the next statement.
		That(`fn run({body}) { system("run") }`, "run()", `system("next")`).
			Runs("run", "next"),
		That(`fn run({body}) { system("run") }`, "run()").Runs("run"),
		That(`fn run({body}) { system("run") }`, `run() system("next")`).
			Runs("run", "next"),
		That(`fn run({body}) { system("run") }`, `run() x = "v"`).
			Runs("run").
			Binds("x", eval.Text("v")),
		// So is a function name followed by =.
		That(`fn f() { }`, `fn run({body}) { system("run") }`, `run() f = "v"`).
			Runs("run").
			Binds("f", eval.Text("v")),
		That(`fn f() { }`, `fn run({body}) { }`, `run() f  ="v"`).
			Binds("f", eval.Text("v")),
		That(`fn run({body}) { system("run") }`, `run() undefined x`).
			Runs("run").
			Throws(SyntaxErrorWithMessage(`unexpected character 'x' after identifier "undefined"`)),
		// A name on the next line is a new statement.
		That(`fn run({body}) { system("run") }`, "run()", `greet = "hi"`).
			Runs("run").
			Binds("greet", eval.Text("hi")),
		That(`fn run({body}) { system("run") }`, "run() undefined").
			Runs("run").
			Throws(SyntaxErrorWithMessage(`bare identifier "undefined" is not a statement`)),
		// Block values are named functions of the frame defining them.
		That(`b = { system("x") }`, "b()").
			Binds("b", FunctionNamed("__block_1")).
			Binds("__block_1", FunctionNamed("__block_1")).
			Runs("x"),
		That(`a = { }`, `b = { }`).Binds("b", FunctionNamed("__block_2")),
		That(`b = { { } }`).Binds("b", FunctionNamed("__block_1")),
	)
}

func TestDottedLookup(t *testing.T) {
	Test(t,
		That("x = system_math.pi").Binds("x", eval.Text("3.14159265359")),
		That("x = system_math.nope").Throws(ErrorWithType(&eval.MemberError{})),
		That("x = system_math.nope").
			Throws(ErrorWithMessage(`variable "nope" not found in "system_math"`)),
		That("system_math.nope()").Throws(ErrorWithType(&eval.MemberError{})),
		That("x = system_math.nope(1)").Throws(ErrorWithType(&eval.MemberError{})),
		// Only unbound first segments fall back to text.
		That("x = nothing.here").Binds("x", eval.Text("nothing.here")),
		That(`x = "a"`, "y = x.member").Throws(ErrorWithType(&eval.MemberError{})),
	)
}

func TestSyntaxErrors(t *testing.T) {
	Test(t,
		That("@").Throws(SyntaxErrorWithMessage(`unexpected character '@'`)),
		That("foo").Throws(SyntaxErrorWithMessage(`bare identifier "foo" is not a statement`)),
		That("foo", "x = 1").Throws(SyntaxErrorWithMessage(`bare identifier "foo" is not a statement`)),
		That("foo bar").Throws(SyntaxErrorWithMessage(`unexpected character 'b' after identifier "foo"`)),
		That("foo;").Throws(SyntaxErrorWithMessage(`unexpected character ';'`)),
		That(`system("x"`).Throws(SyntaxErrorWithMessage("unterminated call")),
		That(`"abc`).Throws(SyntaxErrorWithMessage("unterminated string")),
		That("fn f() {").Throws(SyntaxErrorWithMessage("unterminated function definition")),
		That("fn f(").Throws(SyntaxErrorWithMessage("unterminated function definition")),
		That("<import x").Throws(SyntaxErrorWithMessage("unterminated artifact")),
		That("x = {").Throws(SyntaxErrorWithMessage("unterminated block")),
		That("<frobnicate x>").Throws(SyntaxErrorWithMessage(`unknown artifact action "frobnicate"`)),
		That("<>").Throws(SyntaxErrorWithMessage("empty artifact")),
		That("<import a b>").Throws(SyntaxErrorWithMessage("import takes exactly one module name")),
		// Syntax errors are reported by the boundary of the frame.
		That("@").Throws(ErrorFrom("servo.eval")),
		// Statements before the error have run.
		That(`system("a")`, "@").Runs("a").Throws(AnySyntaxError),
		// Closing characters in strings are not significant.
		That(`system("(a)")`).Runs("(a)"),
		That(`system(")")`).Runs(")"),
		That(`system("{")`).Runs("{"),
		// Quoted braces do not end a body.
		That(`fn f() { return "}" }`, "x = f()").Binds("x", eval.Text("}")),
		That("fn f() {", `  return "{"`, "}", "x = f()").Binds("x", eval.Text("{")),
		That(`b = { system("}") }`, "b()").Runs("}"),
		// Quotes in comments are not tracked, braces are.
		That("fn f() { # it's }", "x = 1").Binds("x", eval.Text("1")),
		That(`system("a, b")`).Runs("a, b"),
		That(`system("x" + ")")`).Runs("x)"),
		That(`x = "# no comment"`).Binds("x", eval.Text("# no comment")),
	)
}

func TestBuiltins(t *testing.T) {
	Test(t,
		That(`system("echo hi")`).Runs("echo hi"),
		That(`x = system("echo hi")`).Runs("echo hi").Binds("x", eval.Unset{}),
		That(`system()`).Runs(""),
		That(`x = systemreturn("date")`).
			Captures("date", "today\n").
			Runs("date").
			Binds("x", eval.Text("today\n")),
		That(`system("false")`).
			Failing("false", &proc.ExitError{Cmd: "false", Code: 1}).
			Runs("false").
			Throws(ErrorWithType(&proc.ExitError{})),
		That(`system("false")`).
			Failing("false", &proc.ExitError{Cmd: "false", Code: 1}).
			Runs("false").
			Throws(ErrorFrom("servo.builtins")),
		That("x = system_math.sqrt(16)").Binds("x", eval.Text("4")),
		That("x = system_math.sin(0)").Binds("x", eval.Text("0")),
		That("x = system_math.cos(0)").Binds("x", eval.Text("1")),
		That("x = system_math.tan(0)").Binds("x", eval.Text("0")),
		That("x = system_math.sqrt()").Binds("x", eval.Text("0")),
		That("x = system_math.sqrt(2 + 2)").Binds("x", eval.Text("2")),
		That("x = system_math.sqrt(-1)").Throws(ErrorWithType(&numeval.Error{})),
		That(`x = system_math.sqrt("a")`).Throws(ErrorWithType(&numeval.Error{})),
		That(`x = input("name? ")`).
			WithInput("servo\nrest\n").
			Prints("name? ").
			Binds("x", eval.Text("servo")),
		That(`x = input()`, `y = input()`).
			WithInput("a\r\nb").
			Prints("").
			Binds("x", eval.Text("a")).
			Binds("y", eval.Text("b")),
		That(`x = input()`).Binds("x", eval.Text("")),
		// Builtins can be shadowed.
		That(`fn system(x) { return x }`, `y = system("no")`).Binds("y", eval.Text("no")),
	)
}

func TestMaxDepth(t *testing.T) {
	TestWithSetup(t, func(ev *eval.Evaler) { ev.MaxDepth = 10 },
		// Function frames only see their parameters, so recursion passes the
		// function along.
		That("fn f(g) { g(g) }", "f(f)").Throws(ErrorWithType(&eval.DepthError{})),
		That("fn f(g) { g(g) }", "f(f)").Throws(ErrorFrom("servo.layer")),
		That("fn f(g) { g(g) }", "f(f)").Throws(ErrorWithMessage("maximum call depth 10 exceeded")),
		That("fn f() { f() }", "f()").Throws(ErrorWithType(&eval.NotFoundError{})),
		That("fn f(n) { g() }", "fn g() { }", "f()").Throws(ErrorWithType(&eval.NotFoundError{})),
	)
}

func TestCheck(t *testing.T) {
	TestWithSetup(t, func(ev *eval.Evaler) { ev.Check = true },
		// Nothing is run, imported or evaluated.
		That(`system("a")`, "<import missing>", "x = 1 / 0").
			Passes(func(t *testing.T, ns eval.Namespace) {
				if _, ok := ns["x"]; ok {
					t.Errorf("assignment bound in check mode")
				}
			}),
		That("fn f() { system(a) }", "f()").Binds("f", FunctionNamed("f")),
		That("return", "@").Throws(AnySyntaxError),
		// Bodies of functions and blocks are checked.
		That("fn f() { @ }").Throws(AnySyntaxError),
		That("b = { foo }").Throws(AnySyntaxError),
		// Calls of unknown functions may take blocks.
		That(`unknown() { system("x") }`).DoesNothing(),
		That(`unknown() other`).DoesNothing(),
		That(`unknown()`, `x = 1`).DoesNothing(),
		That("@").Throws(SyntaxErrorWithMessage(`unexpected character '@'`)),
	)
}
