package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/peterh/liner"

	"lox/interpreter-go/pkg/driver"
	"lox/interpreter-go/pkg/runtime"
	"lox/interpreter-go/pkg/token"
)

const (
	replPrompt  = "> "
	historyFile = ".lox_history"
)

// lineReader is the part of *liner.State the loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func runRepl(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "lox repl does not take arguments (received %s)\n", strings.Join(args, " "))
		return driver.ExitUsage
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	stdout := &promptOutput{w: os.Stdout}
	session := driver.NewSession(driver.SessionOptions{
		Stdout: stdout,
		Stderr: os.Stderr,
		Stdin:  &promptInput{in: ln, out: stdout},
	})
	ln.SetCompleter(func(line string) []string {
		return completeLine(line, session.Interpreter().GlobalEnvironment())
	})
	return replLoop(ln, session, stdout)
}

// replLoop runs one pipeline per line until end of input. Errors are
// reported and the loop continues; definitions persist between lines. A
// line holding a lone expression is evaluated and its value echoed.
func replLoop(in lineReader, session *driver.Session, out io.Writer) int {
	for {
		line, err := in.Prompt(replPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return 0
			}
			fmt.Fprintf(os.Stderr, "read input: %v\n", err)
			return 1
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		in.AppendHistory(line)
		if value, outcome, ok := session.Evaluate(line); ok {
			if outcome == driver.OutcomeOK {
				fmt.Fprintln(out, value)
			}
		} else {
			session.Run(line)
		}
		session.ResetStatic()
		// Already written to stderr.
		session.Diagnostics().Drain()
		if f, ok := out.(interface{ Flush() error }); ok {
			_ = f.Flush()
		}
	}
}

// promptOutput forwards program output a line at a time and holds back an
// unterminated tail, which is the text of a pending read() prompt. The line
// editor prints that text as its own prompt.
type promptOutput struct {
	w    io.Writer
	tail []byte
}

func (o *promptOutput) Write(p []byte) (int, error) {
	o.tail = append(o.tail, p...)
	i := bytes.LastIndexByte(o.tail, '\n')
	if i < 0 {
		return len(p), nil
	}
	_, err := o.w.Write(o.tail[:i+1])
	o.tail = append(o.tail[:0], o.tail[i+1:]...)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// takePrompt returns the held tail without writing it. Control characters
// are not allowed in a liner prompt and become spaces.
func (o *promptOutput) takePrompt() string {
	prompt := strings.Map(func(r rune) rune {
		if unicode.Is(unicode.C, r) {
			return ' '
		}
		return r
	}, string(o.tail))
	o.tail = o.tail[:0]
	return prompt
}

func (o *promptOutput) Flush() error {
	if len(o.tail) == 0 {
		return nil
	}
	_, err := o.w.Write(o.tail)
	o.tail = o.tail[:0]
	return err
}

// promptInput is the session's stdin in the REPL. Each line comes from the
// line editor, so read() and the prompt loop share one reader.
type promptInput struct {
	in      lineReader
	out     *promptOutput
	pending []byte
}

func (p *promptInput) Read(b []byte) (int, error) {
	if len(p.pending) == 0 {
		line, err := p.in.Prompt(p.out.takePrompt())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return 0, io.EOF
			}
			return 0, err
		}
		p.pending = append([]byte(line), '\n')
	}
	n := copy(b, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

// completeLine offers completions for the word at the end of line: members
// of a global instance after "name.", otherwise keywords and global names.
func completeLine(line string, globals *runtime.Environment) []string {
	start := strings.LastIndexFunc(line, isNotIdentifierRune) + 1
	prefix := line[start:]
	var candidates []string
	if receiver, ok := memberReceiver(line[:start]); ok {
		value, err := globals.Get(receiver)
		if err != nil {
			return nil
		}
		candidates = memberNames(value)
	} else {
		if prefix == "" {
			return nil
		}
		candidates = append(token.Keywords(), globals.Keys()...)
	}
	seen := map[string]bool{}
	var out []string
	for _, candidate := range candidates {
		if seen[candidate] || !strings.HasPrefix(candidate, prefix) {
			continue
		}
		seen[candidate] = true
		out = append(out, line[:start]+candidate)
	}
	sort.Strings(out)
	return out
}

func isNotIdentifierRune(r rune) bool {
	return !(r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'))
}

// memberReceiver extracts "p" from a head such as "print p.". Chained
// receivers ("a.b.") are not globals and yield false.
func memberReceiver(head string) (string, bool) {
	if !strings.HasSuffix(head, ".") {
		return "", false
	}
	head = head[:len(head)-1]
	start := strings.LastIndexFunc(head, isNotIdentifierRune) + 1
	if start == len(head) || (start > 0 && head[start-1] == '.') {
		return "", false
	}
	return head[start:], true
}

// memberNames lists an instance's fields and every method reachable
// through its class chain.
func memberNames(value runtime.Value) []string {
	instance, ok := value.(*runtime.InstanceValue)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(instance.Fields))
	for name := range instance.Fields {
		names = append(names, name)
	}
	for class := instance.Class; class != nil; class = class.Superclass {
		names = append(names, class.MethodNames()...)
	}
	return names
}
