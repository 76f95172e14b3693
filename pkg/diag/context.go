package diag

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Context is a range of text in a source unit. It is used for errors that
// can be associated with a part of the source code, like syntax errors and
// traceback entries.
type Context struct {
	Name   string
	Source string
	Ranging
}

// NewContext creates a new Context.
func NewContext(name, source string, r Ranger) *Context {
	return &Context{name, source, r.Range()}
}

// Variables controlling the style of the culprit.
var (
	culpritLineBegin   = "\033[1;4m"
	culpritLineEnd     = "\033[m"
	culpritPlaceHolder = "^"
)

// Position returns the 1-based line and column of the start of the range.
// Columns count runes.
func (c *Context) Position() (line, col int) {
	before := c.Source[:c.From]
	line = strings.Count(before, "\n") + 1
	col = utf8.RuneCountInString(lastLine(before)) + 1
	return line, col
}

// Describe returns "name:line:col", or just the name if the position is
// not valid.
func (c *Context) Describe() string {
	if c.checkPosition() != nil {
		return c.Name
	}
	line, col := c.Position()
	return fmt.Sprintf("%s:%d:%d", c.Name, line, col)
}

// Show shows the context on two lines: the position, then the relevant
// source line with the culprit highlighted.
func (c *Context) Show(sourceIndent string) string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	return c.Describe() + ":\n" + sourceIndent + c.relevantSource()
}

// ShowCompact shows the context on one line.
func (c *Context) ShowCompact(string) string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	return c.Describe() + ": " + c.relevantSource()
}

func (c *Context) checkPosition() error {
	if c.From == -1 {
		return fmt.Errorf("%s, unknown position", c.Name)
	} else if c.From < 0 || c.To > len(c.Source) || c.From > c.To {
		return fmt.Errorf("%s, invalid position %d-%d", c.Name, c.From, c.To)
	}
	return nil
}

// Returns the line containing the start of the culprit, with the part of the
// culprit on that line highlighted.
func (c *Context) relevantSource() string {
	head := lastLine(c.Source[:c.From])
	culprit := firstLine(c.Source[c.From:c.To])
	var tail string
	if c.To-c.From == len(culprit) {
		tail = firstLine(c.Source[c.To:])
	}
	if strings.TrimSpace(culprit) == "" {
		culprit = culpritPlaceHolder
	}
	return head + culpritLineBegin + culprit + culpritLineEnd + strings.TrimRight(tail, " \r")
}

func firstLine(s string) string {
	i := strings.IndexByte(s, '\n')
	if i == -1 {
		return s
	}
	return s[:i]
}

func lastLine(s string) string {
	// When s does not contain '\n', LastIndexByte returns -1, which happens to
	// be what we want.
	return s[strings.LastIndexByte(s, '\n')+1:]
}
