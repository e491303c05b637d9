package compiler

import (
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: filters source text down to the 16-symbol alphabet
// ---------------------------------------------------------------------------

// Lexer tokenizes netfsck source code. Every character that is not one of
// the recognized symbols is a comment and produces no token.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
	col     int  // current column (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = l.readPos
		return
	}

	if l.ch == '\n' {
		l.line++
		l.col = 0
	}

	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.col++
}

// atEOF reports whether the whole input has been consumed.
func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// NextToken returns the next recognized token. The second result is
// false once the input is exhausted.
func (l *Lexer) NextToken() (Token, bool) {
	for !l.atEOF() {
		pos := Position{Offset: l.pos, Line: l.line, Column: l.col}
		t, ok := LookupSymbol(l.ch)
		l.readChar()
		if ok {
			return Token{Type: t, Pos: pos}, true
		}
	}
	return Token{}, false
}

// Tokenize returns all tokens in the input.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok, ok := l.NextToken()
		if !ok {
			break
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
