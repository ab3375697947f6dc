package parser

import (
	"lox/interpreter-go/pkg/diagnostics"
	"lox/interpreter-go/pkg/token"
)

func (p *Parser) match(kinds ...token.TokenType) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(kind token.TokenType, message string) (token.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return token.Token{}, p.fail(p.peek(), message)
}

func (p *Parser) check(kind token.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == kind
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}

// errorAt reports without unwinding. Used for problems that leave the
// parser in a known state (bad assignment target, too many arguments).
func (p *Parser) errorAt(tok token.Token, message string) {
	p.reporter.ErrorAt(diagnostics.StageParse, tok, message)
}

// fail reports and returns the unwinding sentinel.
func (p *Parser) fail(tok token.Token, message string) error {
	p.errorAt(tok, message)
	return errParse
}
