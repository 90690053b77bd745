// Package lexer tokenizes an expression on demand. It is not a separate
// pass: the compiler pulls one token at a time from a Lexer cursor.
package lexer

import (
	"strings"

	"github.com/skx/expr-machine/exprerr"
	"github.com/skx/expr-machine/token"
)

// Lexer holds our object-state. Grounded on the teacher's rune-cursor
// design (position/readPosition/ch over a []rune), generalized to also
// track source position for error reporting.
type Lexer struct {
	position     int    // current character position
	readPosition int    // next character position
	ch           rune   // current character
	characters   []rune // rune slice of input string
}

// New creates a Lexer over the given source string.
func New(input string) *Lexer {
	l := &Lexer{characters: []rune(input)}
	l.readChar()
	return l
}

// readChar advances the cursor by one rune.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.characters) {
		l.ch = rune(0)
	} else {
		l.ch = l.characters[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

// peekChar returns the rune after the current one, without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.characters) {
		return rune(0)
	}
	return l.characters[l.readPosition]
}

// PeekNonSpace returns the next non-whitespace rune without consuming
// anything, used by the compiler to decide whether an identifier is
// followed by a call's '(' (spec §4.3 rule 1).
func (l *Lexer) PeekNonSpace() rune {
	i := l.position
	for i < len(l.characters) && isWhitespace(l.characters[i]) {
		i++
	}
	if i >= len(l.characters) {
		return rune(0)
	}
	return l.characters[i]
}

// Next returns the next token, skipping leading whitespace.
func (l *Lexer) Next() (token.Token, error) {
	l.skipWhitespace()

	start := l.position

	switch l.ch {
	case rune(0):
		return token.Token{Type: token.EOF, Pos: start}, nil

	case '(':
		l.readChar()
		return token.Token{Type: token.LPAREN, Literal: "(", Pos: start}, nil
	case ')':
		l.readChar()
		return token.Token{Type: token.RPAREN, Literal: ")", Pos: start}, nil
	case ',':
		l.readChar()
		return token.Token{Type: token.COMMA, Literal: ",", Pos: start}, nil

	case '+':
		l.readChar()
		return token.Token{Type: token.PLUS, Literal: "+", Pos: start}, nil
	case '-':
		l.readChar()
		return token.Token{Type: token.MINUS, Literal: "-", Pos: start}, nil
	case '*':
		l.readChar()
		return token.Token{Type: token.ASTERISK, Literal: "*", Pos: start}, nil
	case '/':
		l.readChar()
		return token.Token{Type: token.SLASH, Literal: "/", Pos: start}, nil
	case '%':
		l.readChar()
		return token.Token{Type: token.PERCENT, Literal: "%", Pos: start}, nil
	case '^':
		l.readChar()
		return token.Token{Type: token.CARET, Literal: "^", Pos: start}, nil
	}

	if isAlpha(l.ch) {
		id := l.readIdentifier()
		return token.Token{Type: token.IDENT, Literal: id, Pos: start}, nil
	}

	if isDigit(l.ch) {
		lit := l.readNumber()
		return token.Token{Type: token.NUMBER, Literal: lit, Pos: start}, nil
	}

	return token.Token{}, exprerr.New(exprerr.UnexpectedCharacter, start,
		"unexpected character %q", string(l.ch))
}

// skipWhitespace consumes space, tab, CR and LF.
func (l *Lexer) skipWhitespace() {
	for isWhitespace(l.ch) {
		l.readChar()
	}
}

// readIdentifier consumes an alphabetic first character and any following
// alphanumerics.
func (l *Lexer) readIdentifier() string {
	var b strings.Builder
	for isAlnum(l.ch) {
		b.WriteRune(l.ch)
		l.readChar()
	}
	return b.String()
}

// readNumber consumes the longest prefix matching the number grammar:
// digits, an optional '.' fraction (itself optionally followed by no
// digits at all, so "1." is accepted as 1.0, matching strconv.ParseFloat
// and strtod), and an optional exponent (e/E, optional sign, digits). A
// malformed exponent is not consumed: "1e" with no following digit stops
// before the 'e', leaving it for the next token.
func (l *Lexer) readNumber() string {
	var b strings.Builder

	for isDigit(l.ch) {
		b.WriteRune(l.ch)
		l.readChar()
	}

	if l.ch == '.' {
		b.WriteRune(l.ch)
		l.readChar()
		for isDigit(l.ch) {
			b.WriteRune(l.ch)
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		save := l.snapshot()

		exp := string(l.ch)
		l.readChar()

		if l.ch == '+' || l.ch == '-' {
			exp += string(l.ch)
			l.readChar()
		}

		if isDigit(l.ch) {
			for isDigit(l.ch) {
				exp += string(l.ch)
				l.readChar()
			}
			b.WriteString(exp)
		} else {
			l.restore(save)
		}
	}

	return b.String()
}

type cursor struct {
	position     int
	readPosition int
	ch           rune
}

func (l *Lexer) snapshot() cursor {
	return cursor{position: l.position, readPosition: l.readPosition, ch: l.ch}
}

func (l *Lexer) restore(c cursor) {
	l.position = c.position
	l.readPosition = c.readPosition
	l.ch = c.ch
}

func isWhitespace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isAlnum(ch rune) bool {
	return isAlpha(ch) || isDigit(ch)
}
