// Package condition implements the three-token condition mini-language
// "attr op operand" used by selection and theta joins. The right operand is
// an attribute reference only when it is an unquoted identifier naming an
// attribute of the target schema; quoted operands are always text literals
// and numeric operands are numeric literals.
package condition

import (
	"fmt"
	"unicode"
)

// TokenType represents the type of a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenError
	TokenIdent
	TokenNumber
	TokenString
	TokenOperator
)

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int
}

// String returns a string representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("Token{%d, %q, %d}", t.Type, t.Literal, t.Pos)
}

// Lexer tokenizes a condition string.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a lexer over the input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Next returns the next token.
func (l *Lexer) Next() Token {
	l.skipSpace()
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos}
	}

	start := l.pos
	ch := l.input[l.pos]

	switch {
	case ch == '\'':
		return l.lexString(start)
	case isOperatorChar(ch):
		return l.lexOperator(start)
	case unicode.IsDigit(rune(ch)) || ch == '-' || ch == '.':
		return l.lexNumber(start)
	case isIdentStart(ch):
		return l.lexIdent(start)
	default:
		l.pos++
		return Token{Type: TokenError, Literal: string(ch), Pos: start}
	}
}

// lexString scans a single-quoted literal; embedded spaces are preserved and
// a doubled quote escapes a quote.
func (l *Lexer) lexString(start int) Token {
	l.pos++ // opening quote
	var out []byte
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\'' {
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '\'' {
				out = append(out, '\'')
				l.pos += 2
				continue
			}
			l.pos++
			return Token{Type: TokenString, Literal: string(out), Pos: start}
		}
		out = append(out, ch)
		l.pos++
	}
	return Token{Type: TokenError, Literal: "unterminated string", Pos: start}
}

func (l *Lexer) lexOperator(start int) Token {
	for l.pos < len(l.input) && isOperatorChar(l.input[l.pos]) {
		l.pos++
	}
	return Token{Type: TokenOperator, Literal: l.input[start:l.pos], Pos: start}
}

func (l *Lexer) lexNumber(start int) Token {
	l.pos++
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if unicode.IsDigit(rune(ch)) || ch == '.' || ch == 'e' || ch == 'E' ||
			((ch == '+' || ch == '-') && (l.input[l.pos-1] == 'e' || l.input[l.pos-1] == 'E')) {
			l.pos++
			continue
		}
		break
	}
	return Token{Type: TokenNumber, Literal: l.input[start:l.pos], Pos: start}
}

func (l *Lexer) lexIdent(start int) Token {
	for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		l.pos++
	}
	return Token{Type: TokenIdent, Literal: l.input[start:l.pos], Pos: start}
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.input) && (l.input[l.pos] == ' ' || l.input[l.pos] == '\t') {
		l.pos++
	}
}

func isOperatorChar(ch byte) bool {
	return ch == '=' || ch == '!' || ch == '<' || ch == '>'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || unicode.IsLetter(rune(ch))
}

func isIdentChar(ch byte) bool {
	return ch == '_' || unicode.IsLetter(rune(ch)) || unicode.IsDigit(rune(ch))
}
