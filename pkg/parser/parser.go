package parser

import (
	"errors"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diagnostics"
	"lox/interpreter-go/pkg/token"
)

const maxArguments = 255

// errParse unwinds the current declaration after a syntax error has been
// reported. It never leaves the package.
var errParse = errors.New("parser: syntax error")

// Parser is a recursive-descent parser over a scanned token slice.
type Parser struct {
	tokens   []token.Token
	current  int
	reporter diagnostics.Reporter
}

// New expects tokens to end with an EOF token, as Scanner produces.
func New(tokens []token.Token, reporter diagnostics.Reporter) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens, token.New(token.EOF, "", nil, line))
	}
	if reporter == nil {
		reporter = diagnostics.NewCollector(nil)
	}
	return &Parser{tokens: tokens, reporter: reporter}
}

// Parse returns every declaration that parsed cleanly. Syntax errors are
// reported and the parser resynchronizes at the next statement boundary,
// so the reporter may hold several errors; callers must check it before
// using the result.
func (p *Parser) Parse() []ast.Statement {
	statements := make([]ast.Statement, 0)
	for !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			statements = append(statements, stmt)
		}
	}
	return statements
}

// ParseExpression parses a single expression followed by EOF.
func (p *Parser) ParseExpression() (ast.Expression, bool) {
	expr, err := p.expression()
	if err != nil {
		return nil, false
	}
	if !p.isAtEnd() {
		p.errorAt(p.peek(), "Expect end of expression.")
		return nil, false
	}
	return expr, true
}

// synchronize discards tokens until a statement boundary.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Type == token.Semicolon {
			return
		}
		if p.peek().Type.StartsDeclaration() {
			return
		}
		p.advance()
	}
}
