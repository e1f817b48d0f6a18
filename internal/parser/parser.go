// Package parser builds expression trees from postfix strings with a
// stack machine.
package parser

import (
	"github.com/orizon-lang/exprir/internal/ast"
	"github.com/orizon-lang/exprir/internal/errors"
	"github.com/orizon-lang/exprir/internal/lexer"
	"github.com/orizon-lang/exprir/internal/position"
)

// Parser holds the transient node stack of a single parse.
type Parser struct {
	lexer    *lexer.Lexer
	input    string
	stack    []ast.Node
	operands int
}

// NewParser creates a parser over input whose first byte sits at start.
func NewParser(input string, start position.Position) *Parser {
	return &Parser{
		lexer: lexer.NewWithPosition(input, start),
		input: input,
		stack: make([]ast.Node, 0, len(input)),
	}
}

// Parse parses a command-line expression.
func Parse(expr string) (*ast.Tree, error) {
	return NewParser(expr, position.Start("", 1)).Parse()
}

// Parse consumes the whole input and returns the single remaining tree.
//
// For an operator, the first node popped (the one pushed last) becomes Left
// and the second becomes Right, so "ab-" yields Left=b, Right=a.
func (p *Parser) Parse() (*ast.Tree, error) {
	var tok lexer.Token
	for {
		tok = p.lexer.NextToken()
		if tok.Type == lexer.TokenEOF {
			break
		}

		if !tok.IsOperator() {
			p.operands++
			p.push(&ast.OperandNode{Name: tok.Char, Pos: tok.Pos})
			continue
		}

		if len(p.stack) < 2 {
			return nil, errors.MalformedExpression(p.input, tok.Pos,
				"operator "+string([]byte{tok.Char})+" needs two operands")
		}

		first := p.pop()
		second := p.pop()
		p.push(&ast.OperatorNode{Symbol: tok.Char, Left: first, Right: second, Pos: tok.Pos})
	}

	switch len(p.stack) {
	case 1:
		return &ast.Tree{Root: p.stack[0], OperandCount: p.operands}, nil
	case 0:
		return nil, errors.MalformedExpression(p.input, tok.Pos, "empty expression")
	default:
		return nil, errors.MalformedExpression(p.input, tok.Pos,
			"operands left without an operator")
	}
}

func (p *Parser) push(n ast.Node) {
	p.stack = append(p.stack, n)
}

func (p *Parser) pop() ast.Node {
	n := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return n
}
