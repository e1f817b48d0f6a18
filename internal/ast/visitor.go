package ast

import (
	"fmt"
	"io"
	"strings"
)

// Visitor receives nodes during a walk.
type Visitor interface {
	VisitOperator(node *OperatorNode)
	VisitOperand(node *OperandNode)
}

// VisitorFunc adapts a plain function to Visitor.
type VisitorFunc func(Node)

func (f VisitorFunc) VisitOperator(node *OperatorNode) { f(node) }
func (f VisitorFunc) VisitOperand(node *OperandNode)   { f(node) }

// WalkRightFirst visits the right subtree, then the left subtree, then n.
// This is the order in which lowering binds operands to parameters.
func WalkRightFirst(n Node, v Visitor) {
	if op, ok := n.(*OperatorNode); ok {
		WalkRightFirst(op.Right, v)
		WalkRightFirst(op.Left, v)
	}
	n.Accept(v)
}

// CountOperands returns the number of leaves under n.
func CountOperands(n Node) int {
	count := 0
	WalkRightFirst(n, VisitorFunc(func(n Node) {
		if _, ok := n.(*OperandNode); ok {
			count++
		}
	}))
	return count
}

// Dump writes one node symbol per line in right-first post-order.
func Dump(w io.Writer, n Node) error {
	var err error
	WalkRightFirst(n, VisitorFunc(func(n Node) {
		if err != nil {
			return
		}
		switch v := n.(type) {
		case *OperatorNode:
			_, err = fmt.Fprintf(w, "%c\n", v.Symbol)
		case *OperandNode:
			_, err = fmt.Fprintf(w, "%c\n", v.Name)
		}
	}))
	return err
}

// PrettyPrint renders n as an indented tree, left child first.
func PrettyPrint(n Node) string {
	var b strings.Builder
	prettyPrint(&b, n, "", "")
	return b.String()
}

func prettyPrint(b *strings.Builder, n Node, prefix, childPrefix string) {
	switch v := n.(type) {
	case *OperatorNode:
		fmt.Fprintf(b, "%s%c\n", prefix, v.Symbol)
		prettyPrint(b, v.Left, childPrefix+"├─ L ", childPrefix+"│    ")
		prettyPrint(b, v.Right, childPrefix+"└─ R ", childPrefix+"     ")
	case *OperandNode:
		fmt.Fprintf(b, "%s%c\n", prefix, v.Name)
	}
}
