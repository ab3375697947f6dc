package diagnostics

import (
	"fmt"
	"io"

	"lox/interpreter-go/pkg/token"
)

type Stage string

const (
	StageScan    Stage = "scan"
	StageParse   Stage = "parse"
	StageResolve Stage = "resolve"
	StageRuntime Stage = "runtime"
)

// Diagnostic is one reported problem. Where is the location suffix
// (" at 'x'", " at end") and is empty for scan errors.
type Diagnostic struct {
	Stage   Stage
	Line    int
	Where   string
	Message string
}

func (d Diagnostic) String() string {
	if d.Stage == StageRuntime {
		return fmt.Sprintf("%s\n[line %d]", d.Message, d.Line)
	}
	return fmt.Sprintf("[line %d] Error%s: %s", d.Line, d.Where, d.Message)
}

// IsStatic reports whether the diagnostic prevents interpretation.
func (d Diagnostic) IsStatic() bool {
	return d.Stage != StageRuntime
}

// Reporter receives problems from every pipeline stage.
type Reporter interface {
	Error(stage Stage, line int, message string)
	ErrorAt(stage Stage, tok token.Token, message string)
	RuntimeError(tok token.Token, message string)
}

// Location renders the " at ..." suffix for a token.
func Location(tok token.Token) string {
	if tok.Type == token.EOF {
		return " at end"
	}
	return fmt.Sprintf(" at '%s'", tok.Lexeme)
}

// Collector records diagnostics, echoes them to an optional writer and
// tracks the two error flags the driver turns into exit codes.
type Collector struct {
	out             io.Writer
	diags           []Diagnostic
	hadError        bool
	hadRuntimeError bool
}

// NewCollector writes each diagnostic to out as it arrives. A nil writer
// only records.
func NewCollector(out io.Writer) *Collector {
	return &Collector{out: out}
}

func (c *Collector) Error(stage Stage, line int, message string) {
	c.add(Diagnostic{Stage: stage, Line: line, Message: message})
}

func (c *Collector) ErrorAt(stage Stage, tok token.Token, message string) {
	c.add(Diagnostic{Stage: stage, Line: tok.Line, Where: Location(tok), Message: message})
}

func (c *Collector) RuntimeError(tok token.Token, message string) {
	c.add(Diagnostic{Stage: StageRuntime, Line: tok.Line, Message: message})
}

func (c *Collector) add(d Diagnostic) {
	c.diags = append(c.diags, d)
	if d.IsStatic() {
		c.hadError = true
	} else {
		c.hadRuntimeError = true
	}
	if c.out != nil {
		fmt.Fprintln(c.out, d.String())
	}
}

func (c *Collector) HadError() bool        { return c.hadError }
func (c *Collector) HadRuntimeError() bool { return c.hadRuntimeError }

// Reset clears the static error flag only. A REPL calls it between lines.
func (c *Collector) Reset() {
	c.hadError = false
}

// Diagnostics returns a copy of everything reported so far.
func (c *Collector) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(c.diags))
	copy(out, c.diags)
	return out
}

// Drain returns the recorded diagnostics and forgets them.
func (c *Collector) Drain() []Diagnostic {
	out := c.diags
	c.diags = nil
	return out
}
