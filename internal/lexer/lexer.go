// Package lexer classifies the characters of a postfix expression.
// Every byte is one token: an operator symbol or a one-character operand.
package lexer

import (
	"fmt"

	"github.com/orizon-lang/exprir/internal/position"
)

// TokenType represents the type of a token
type TokenType int

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(tt))
}

const (
	TokenEOF TokenType = iota
	TokenOperand

	// operators
	TokenPlus
	TokenMinus
	TokenDiv
	TokenMul
	TokenBitOr
	TokenBitAnd
	TokenBitXor
)

// tokenNames provides string representations for token types
var tokenNames = map[TokenType]string{
	TokenEOF:     "EOF",
	TokenOperand: "OPERAND",
	TokenPlus:    "+",
	TokenMinus:   "-",
	TokenDiv:     "/",
	TokenMul:     "*",
	TokenBitOr:   "|",
	TokenBitAnd:  "&",
	TokenBitXor:  "^",
}

var operators = map[byte]TokenType{
	'+': TokenPlus,
	'-': TokenMinus,
	'/': TokenDiv,
	'*': TokenMul,
	'|': TokenBitOr,
	'&': TokenBitAnd,
	'^': TokenBitXor,
}

// IsOperator reports whether c is one of the seven operator symbols.
func IsOperator(c byte) bool {
	_, ok := operators[c]
	return ok
}

// Token is a single classified character.
type Token struct {
	Type TokenType
	Char byte
	Pos  position.Position
}

// IsOperator reports whether the token is an operator symbol.
func (t Token) IsOperator() bool {
	return t.Type >= TokenPlus && t.Type <= TokenBitXor
}

// String returns a string representation of the token
func (t Token) String() string {
	if t.Type == TokenEOF {
		return fmt.Sprintf("{Type: EOF, Pos: %s}", t.Pos)
	}
	return fmt.Sprintf("{Type: %s, Char: %q, Pos: %s}", t.Type, t.Char, t.Pos)
}

// Lexer scans an expression one byte at a time.
// Whitespace is not skipped: a space names a variable like any other byte.
type Lexer struct {
	input string
	pos   position.Position
}

// New creates a lexer for command-line input.
func New(input string) *Lexer {
	return NewWithPosition(input, position.Start("", 1))
}

// NewWithPosition creates a lexer whose first byte sits at start.
func NewWithPosition(input string, start position.Position) *Lexer {
	return &Lexer{input: input, pos: start}
}

// NextToken returns the next token, or TokenEOF once the input is exhausted.
func (l *Lexer) NextToken() Token {
	if l.pos.Offset >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos}
	}

	c := l.input[l.pos.Offset]
	tok := Token{Type: TokenOperand, Char: c, Pos: l.pos}
	if tt, ok := operators[c]; ok {
		tok.Type = tt
	}

	l.pos = l.pos.Advance()

	return tok
}

// Tokenize returns every token of input, without the trailing EOF.
func Tokenize(input string) []Token {
	l := New(input)
	toks := make([]Token, 0, len(input))
	for {
		tok := l.NextToken()
		if tok.Type == TokenEOF {
			return toks
		}
		toks = append(toks, tok)
	}
}
