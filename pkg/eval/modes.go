package eval

import (
	"fmt"
	"strings"

	"src.servo.sh/pkg/diag"
)

type modeKind int

const (
	modeIdentifier modeKind = iota
	modeCheckAssignment
	modeString
	modeInteger
	modeMath
	modeComment
	modeArtifact
	modeCall
	modeAssignment
	modeReturn
	modeFunctionDef
	modeBlock
	modeWaitBlock
)

var modeNames = [...]string{
	modeIdentifier:      "identifier",
	modeCheckAssignment: "assignment",
	modeString:          "string",
	modeInteger:         "number",
	modeMath:            "arithmetic expression",
	modeComment:         "comment",
	modeArtifact:        "artifact",
	modeCall:            "call",
	modeAssignment:      "assignment",
	modeReturn:          "return statement",
	modeFunctionDef:     "function definition",
	modeBlock:           "block",
	modeWaitBlock:       "call",
}

func (k modeKind) String() string { return modeNames[k] }

// Phases of a function definition.
type phase int

const (
	phaseName phase = iota
	phaseParams
	phaseBeforeBody
	phaseBody
)

// A mode is one in-progress construct. Which fields are used depends on the
// kind.
type mode struct {
	kind  modeKind
	begin int
	buf   string
	// Open quote character, or 0.
	quote rune
	// Depth of nested parentheses or braces.
	nesting int
	// Inside a comment of a braced body.
	comment bool

	// Function definitions.
	phase      phase
	params     []string
	blockIndex int
	bodyStart  int

	// Name being called, assigned or defined.
	name string

	// Calls waiting for a trailing block.
	fn         *Function
	args       []Value
	sawNewline bool
	identBegin int
	// The candidate block name was followed by a space.
	identEnded bool
}

func (fm *Frame) dispatch(r rune) (action, error) {
	m := fm.top()
	if m == nil {
		return fm.idle(r)
	}
	switch m.kind {
	case modeIdentifier:
		return fm.identifier(m, r)
	case modeCheckAssignment:
		return fm.checkAssignment(m, r)
	case modeString:
		if r == m.quote {
			fm.pop()
		} else {
			m.buf += string(r)
		}
		return advance, nil
	case modeInteger, modeMath:
		return fm.number(m, r)
	case modeComment:
		if r == '\n' {
			fm.pop()
		}
		return advance, nil
	case modeArtifact:
		if r == '>' {
			fm.pop()
			return advance, fm.artifact(m)
		}
		m.buf += string(r)
		return advance, nil
	case modeCall:
		return fm.call(m, r)
	case modeAssignment, modeReturn:
		return fm.line(m, r)
	case modeFunctionDef:
		return fm.functionDef(m, r)
	case modeBlock:
		return fm.block(m, r)
	case modeWaitBlock:
		return fm.waitBlock(m, r)
	}
	panic("unreachable")
}

func (fm *Frame) idle(r rune) (action, error) {
	switch {
	case isIdentStart(r):
		fm.push(&mode{kind: modeIdentifier, buf: string(r)})
	case r == '"' || r == '\'':
		fm.push(&mode{kind: modeString, quote: r})
	case isDigit(r):
		fm.push(&mode{kind: modeInteger, buf: string(r)})
	case r == '#':
		fm.push(&mode{kind: modeComment})
	case r == '<':
		fm.push(&mode{kind: modeArtifact})
	case isSpace(r):
	default:
		return advance, fm.syntaxError(fmt.Sprintf("unexpected character %q", r), fm.here())
	}
	return advance, nil
}

func (fm *Frame) identifier(m *mode, r rune) (action, error) {
	switch {
	case isIdentChar(r):
		m.buf += string(r)
	case r == '(':
		fm.replace(&mode{kind: modeCall, name: m.buf})
	case r == '=':
		fm.replace(&mode{kind: modeAssignment, name: m.buf})
	case isSpace(r):
		switch {
		case m.buf == "fn":
			fm.replace(&mode{kind: modeFunctionDef, phase: phaseName, blockIndex: -1})
		case m.buf == "return":
			fm.replace(&mode{kind: modeReturn})
			if r == '\n' {
				return advance, fm.completeReturn(fm.pop())
			}
		case r == '\n':
			return advance, fm.bareIdentifier(m)
		default:
			m.kind = modeCheckAssignment
			m.name = m.buf
		}
	default:
		fm.pop()
		return redispatch, nil
	}
	return advance, nil
}

func (fm *Frame) checkAssignment(m *mode, r rune) (action, error) {
	switch {
	case r == '=':
		fm.replace(&mode{kind: modeAssignment, name: m.name})
	case r == '\n':
		return advance, fm.bareIdentifier(m)
	case isSpace(r):
	default:
		return advance, fm.syntaxError(
			fmt.Sprintf("unexpected character %q after identifier %q", r, m.name), fm.here())
	}
	return advance, nil
}

func (fm *Frame) bareIdentifier(m *mode) error {
	return fm.syntaxError(
		fmt.Sprintf("bare identifier %q is not a statement", m.buf),
		diag.Ranging{From: m.begin, To: m.begin + len(m.buf)})
}

func (fm *Frame) number(m *mode, r rune) (action, error) {
	switch {
	case isDigit(r) || r == '.':
		m.buf += string(r)
	case isOperator(r):
		m.kind = modeMath
		m.buf += string(r)
	default:
		fm.pop()
		return redispatch, fm.flushNumber(m)
	}
	return advance, nil
}

// Evaluates a finished number and appends the result to the enclosing
// construct, if there is one.
func (fm *Frame) flushNumber(m *mode) error {
	result := m.buf
	if !fm.Check {
		var err error
		result, err = fm.numeric(m.buf)
		if err != nil {
			return err
		}
	}
	if parent := fm.top(); parent != nil {
		parent.buf += result
	}
	return nil
}

func (fm *Frame) artifact(m *mode) error {
	fields := strings.Fields(m.buf)
	r := diag.Ranging{From: m.begin, To: fm.pos + 1}
	if len(fields) == 0 {
		return fm.syntaxError("empty artifact", r)
	}
	if fields[0] != "import" {
		return fm.syntaxError(fmt.Sprintf("unknown artifact action %q", fields[0]), r)
	}
	if len(fields) != 2 {
		return fm.syntaxError("import takes exactly one module name", r)
	}
	if fm.Check {
		return nil
	}
	return fm.importModule(fields[1])
}

// Tracks quotes, returning true if r was consumed as part of a quoted
// section.
func (m *mode) quoted(r rune) bool {
	if m.quote != 0 {
		if r == m.quote {
			m.quote = 0
		}
		m.buf += string(r)
		return true
	}
	if r == '"' || r == '\'' {
		m.quote = r
		m.buf += string(r)
		return true
	}
	return false
}

func (fm *Frame) call(m *mode, r rune) (action, error) {
	if m.quoted(r) {
		return advance, nil
	}
	switch r {
	case '{':
		fm.push(&mode{kind: modeBlock, nesting: 1})
	case '(':
		m.nesting++
		m.buf += "("
	case ')':
		if m.nesting == 0 {
			fm.pop()
			return advance, fm.completeCall(m)
		}
		m.nesting--
		m.buf += ")"
	default:
		m.buf += string(r)
	}
	return advance, nil
}

// Right-hand sides of assignments and returns, which end at a newline.
func (fm *Frame) line(m *mode, r rune) (action, error) {
	if m.quoted(r) {
		return advance, nil
	}
	switch r {
	case '{':
		fm.push(&mode{kind: modeBlock, nesting: 1})
	case '\n':
		fm.pop()
		if m.kind == modeReturn {
			return advance, fm.completeReturn(m)
		}
		return advance, fm.completeAssignment(m)
	default:
		m.buf += string(r)
	}
	return advance, nil
}

func (fm *Frame) completeAssignment(m *mode) error {
	text := strings.TrimSpace(m.buf)
	if text == "" || fm.Check {
		return nil
	}
	v, err := fm.evalSegment(text)
	if err != nil {
		return err
	}
	fm.Ns.Bind(m.name, v, kindOf(v))
	return nil
}

func (fm *Frame) completeReturn(m *mode) error {
	if fm.Check {
		return nil
	}
	var v Value = Unset{}
	if text := strings.TrimSpace(m.buf); text != "" {
		var err error
		v, err = fm.evalSegment(text)
		if err != nil {
			return err
		}
	}
	fm.returned, fm.retValue = true, v
	return nil
}

func (fm *Frame) functionDef(m *mode, r rune) (action, error) {
	switch m.phase {
	case phaseName:
		switch {
		case r == '(':
			if !isIdentifier(m.buf) {
				return advance, fm.syntaxError(
					fmt.Sprintf("invalid function name %q", m.buf), fm.here())
			}
			m.name, m.buf, m.phase = m.buf, "", phaseParams
		case !isSpace(r):
			m.buf += string(r)
		}
	case phaseParams:
		if r != ')' {
			m.buf += string(r)
			break
		}
		params, blockIndex, err := parseParams(m.buf)
		if err != nil {
			return advance, fm.syntaxError(err.Error(), diag.Ranging{From: m.begin, To: fm.pos + 1})
		}
		m.params, m.blockIndex, m.buf, m.phase = params, blockIndex, "", phaseBeforeBody
	case phaseBeforeBody:
		switch {
		case r == '{':
			m.phase, m.nesting, m.bodyStart = phaseBody, 1, fm.pos+1
		case !isSpace(r):
			return advance, fm.syntaxError(
				fmt.Sprintf("expected { after the parameters of %q", m.name), fm.here())
		}
	case phaseBody:
		if fm.braces(m, r) {
			fm.pop()
			_, err := fm.define(m.name, m.params, m.blockIndex, m.buf, m.bodyStart)
			return advance, err
		}
	}
	return advance, nil
}

// Accumulates r into a braced body. It returns true when r is the closing
// brace of the body. Braces inside quotes are not counted. Quotes after an
// unquoted # are ignored up to the end of the line, while braces there still
// count.
func (fm *Frame) braces(m *mode, r rune) bool {
	switch {
	case m.comment:
		if r == '\n' {
			m.comment = false
		}
	case m.quoted(r):
		return false
	case r == '#':
		m.comment = true
	}
	switch r {
	case '{':
		m.nesting++
	case '}':
		m.nesting--
		if m.nesting == 0 {
			return true
		}
	}
	m.buf += string(r)
	return false
}

func (fm *Frame) block(m *mode, r rune) (action, error) {
	if !fm.braces(m, r) {
		return advance, nil
	}
	fm.pop()
	fm.blocks++
	name := fmt.Sprintf("__block_%d", fm.blocks)
	fn, err := fm.define(name, nil, -1, m.buf, m.begin+1)
	if err != nil {
		return advance, err
	}
	parent := fm.top()
	if parent.kind == modeWaitBlock {
		fm.pop()
		return advance, fm.finishCall(parent, fn)
	}
	parent.buf += name
	return advance, nil
}

func (fm *Frame) waitBlock(m *mode, r rune) (action, error) {
	if m.buf != "" {
		if isIdentChar(r) && !m.identEnded {
			m.buf += string(r)
			return advance, nil
		}
		if isSpace(r) && r != '\n' {
			m.identEnded = true
			return advance, nil
		}
		fm.pop()
		// A name followed by = is assigned, and one directly followed by (
		// is called.
		if r != '=' && (r != '(' || m.identEnded) {
			if fn := fm.lookupFunction(m.buf); fn != nil || fm.Check {
				return redispatch, fm.finishCall(m, fn)
			}
		}
		if err := fm.finishCall(m, nil); err != nil {
			return advance, err
		}
		next := &mode{kind: modeIdentifier, buf: m.buf}
		if m.identEnded {
			next.kind, next.name = modeCheckAssignment, m.buf
		}
		fm.push(next)
		next.begin = m.identBegin
		return redispatch, nil
	}
	switch {
	case r == '\n':
		m.sawNewline = true
	case isSpace(r):
	case r == '{':
		fm.push(&mode{kind: modeBlock, nesting: 1})
	case isIdentStart(r) && !m.sawNewline:
		m.buf, m.identBegin = string(r), fm.pos
	default:
		fm.pop()
		return redispatch, fm.finishCall(m, nil)
	}
	return advance, nil
}

// Handles the top mode at the end of input.
func (fm *Frame) finishTop() error {
	m := fm.pop()
	switch m.kind {
	case modeWaitBlock:
		if m.buf == "" {
			return fm.finishCall(m, nil)
		}
		if fn := fm.lookupFunction(m.buf); fn != nil || fm.Check {
			return fm.finishCall(m, fn)
		}
		if err := fm.finishCall(m, nil); err != nil {
			return err
		}
		return fm.bareIdentifier(&mode{buf: m.buf, begin: m.identBegin})
	case modeComment:
		return nil
	case modeAssignment:
		return fm.completeAssignment(m)
	case modeReturn:
		return fm.completeReturn(m)
	case modeInteger, modeMath:
		return fm.flushNumber(m)
	case modeIdentifier:
		if m.buf == "return" {
			return fm.completeReturn(&mode{kind: modeReturn})
		}
		return fm.bareIdentifier(m)
	case modeCheckAssignment:
		return fm.bareIdentifier(m)
	}
	return fm.syntaxError("unterminated "+m.kind.String(),
		diag.Ranging{From: m.begin, To: len(fm.code)})
}

// Returns the function named by name, or nil.
func (fm *Frame) lookupFunction(name string) *Function {
	v, err := fm.Ns.Lookup(name)
	if err != nil {
		return nil
	}
	fn, _ := v.Value.(*Function)
	return fn
}

func isIdentStart(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || r == '_'
}

func isIdentChar(r rune) bool {
	return isIdentStart(r) || isDigit(r) || r == '.'
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}

func isOperator(r rune) bool { return strings.ContainsRune("+-*/%^", r) }

// Reports whether s is a well-formed possibly dotted name.
func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(rune(s[0])) {
		return false
	}
	for _, r := range s {
		if !isIdentChar(r) {
			return false
		}
	}
	return true
}
