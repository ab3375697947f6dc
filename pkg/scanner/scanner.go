package scanner

import (
	"fmt"
	"strconv"
	"unicode"

	"lox/interpreter-go/pkg/diagnostics"
	"lox/interpreter-go/pkg/token"
)

// Scanner turns source text into tokens. Bad characters and unterminated
// literals are reported and skipped so one pass surfaces every scan error.
type Scanner struct {
	source   []rune
	tokens   []token.Token
	start    int
	current  int
	line     int
	reporter diagnostics.Reporter
}

func New(source string, reporter diagnostics.Reporter) *Scanner {
	if reporter == nil {
		reporter = diagnostics.NewCollector(nil)
	}
	return &Scanner{source: []rune(source), line: 1, reporter: reporter}
}

// ScanTokens scans the whole source. The result always ends with an EOF
// token carrying the final line number.
func (s *Scanner) ScanTokens() []token.Token {
	for !s.isAtEnd() {
		s.start = s.current
		s.scanToken()
	}
	s.tokens = append(s.tokens, token.New(token.EOF, "", nil, s.line))
	return s.tokens
}

func (s *Scanner) scanToken() {
	c := s.advance()
	switch c {
	case '(':
		s.addToken(token.LeftParen)
	case ')':
		s.addToken(token.RightParen)
	case '{':
		s.addToken(token.LeftBrace)
	case '}':
		s.addToken(token.RightBrace)
	case ',':
		s.addToken(token.Comma)
	case '.':
		s.addToken(token.Dot)
	case '-':
		s.addToken(token.Minus)
	case '+':
		s.addToken(token.Plus)
	case ';':
		s.addToken(token.Semicolon)
	case '*':
		s.addToken(token.Star)
	case '!':
		s.addToken(s.choose('=', token.BangEqual, token.Bang))
	case '=':
		s.addToken(s.choose('=', token.EqualEqual, token.Equal))
	case '<':
		s.addToken(s.choose('=', token.LessEqual, token.Less))
	case '>':
		s.addToken(s.choose('=', token.GreaterEqual, token.Greater))
	case '/':
		switch {
		case s.match('/'):
			for s.peek() != '\n' && !s.isAtEnd() {
				s.advance()
			}
		case s.match('*'):
			s.blockComment()
		default:
			s.addToken(token.Slash)
		}
	case ' ', '\r', '\t':
	case '\n':
		s.line++
	case '"':
		s.string()
	default:
		switch {
		case isDigit(c):
			s.number()
		case isAlpha(c):
			s.identifier()
		default:
			s.reporter.Error(diagnostics.StageScan, s.line, fmt.Sprintf("Unexpected character '%c'.", c))
		}
	}
}

// blockComment consumes a /* ... */ comment two characters per step. The
// comment ends at the first '*' seen in either position of the pair, and a
// '/' directly after that '*' is consumed too. A lone '*' inside the
// comment therefore closes it early.
func (s *Scanner) blockComment() {
	for !s.isAtEnd() && s.peek() != '*' && s.peekNext() != '*' {
		s.skip()
		s.skip()
	}
	if s.isAtEnd() {
		s.reporter.Error(diagnostics.StageScan, s.line, "Unterminated block comment.")
		return
	}
	if s.peek() != '*' {
		s.skip()
	}
	s.advance()
	s.match('/')
}

// skip advances one character inside a comment, counting newlines.
func (s *Scanner) skip() {
	if s.isAtEnd() {
		return
	}
	if s.advance() == '\n' {
		s.line++
	}
}

func (s *Scanner) string() {
	for s.peek() != '"' && !s.isAtEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.isAtEnd() {
		s.reporter.Error(diagnostics.StageScan, s.line, "Unterminated string.")
		return
	}
	s.advance()
	value := string(s.source[s.start+1 : s.current-1])
	s.addLiteral(token.String, value)
}

func (s *Scanner) number() {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	lexeme := string(s.source[s.start:s.current])
	// Digit runs always parse; an overflowing literal becomes +Inf.
	value, _ := strconv.ParseFloat(lexeme, 64)
	s.addLiteral(token.Number, value)
}

func (s *Scanner) identifier() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	text := string(s.source[s.start:s.current])
	s.addToken(token.LookupIdentifier(text))
}

func (s *Scanner) choose(expected rune, matched, otherwise token.TokenType) token.TokenType {
	if s.match(expected) {
		return matched
	}
	return otherwise
}

func (s *Scanner) match(expected rune) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) advance() rune {
	c := s.source[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() rune {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() rune {
	if s.current+1 >= len(s.source) {
		return 0
	}
	return s.source[s.current+1]
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func (s *Scanner) addToken(kind token.TokenType) {
	s.addLiteral(kind, nil)
}

func (s *Scanner) addLiteral(kind token.TokenType, literal any) {
	lexeme := string(s.source[s.start:s.current])
	s.tokens = append(s.tokens, token.New(kind, lexeme, literal, s.line))
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func isAlphaNumeric(c rune) bool {
	return isAlpha(c) || isDigit(c)
}
