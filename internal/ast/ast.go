// Package ast defines the binary expression tree built from a postfix string.
package ast

import (
	"github.com/orizon-lang/exprir/internal/position"
)

// Node is either an *OperatorNode or an *OperandNode.
// Each node is owned by exactly one parent; trees are never shared.
type Node interface {
	// String returns the postfix text the node was parsed from.
	String() string
	Accept(v Visitor)
	exprNode()
}

// OperatorNode applies Symbol to two owned children.
// Left holds the operand pushed most recently before the operator.
type OperatorNode struct {
	Left   Node
	Right  Node
	Pos    position.Position
	Symbol byte
}

// OperandNode names a single-character variable.
type OperandNode struct {
	Pos  position.Position
	Name byte
}

func (*OperatorNode) exprNode() {}
func (*OperandNode) exprNode()  {}

func (n *OperatorNode) String() string {
	return n.Right.String() + n.Left.String() + string(n.Symbol)
}

func (n *OperandNode) String() string { return string(n.Name) }

func (n *OperatorNode) Accept(v Visitor) { v.VisitOperator(n) }
func (n *OperandNode) Accept(v Visitor)  { v.VisitOperand(n) }

// Tree is the result of one parse: the root and the number of operand
// tokens scanned, repeats included.
type Tree struct {
	Root         Node
	OperandCount int
}
