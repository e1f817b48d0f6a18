// Package codegen lowers expression trees into backend instructions and
// wires the MIR -> LIR -> x64 rendering stages.
package codegen

import (
	"fmt"

	"github.com/orizon-lang/exprir/internal/ast"
	"github.com/orizon-lang/exprir/internal/backend"
)

// Binding records which parameter slot a leaf was bound to.
type Binding struct {
	Param int
	Name  byte
}

// Lowered describes the function produced by Lower.
type Lowered struct {
	Function backend.Function
	Result   backend.Value
	// Bindings are listed in slot order, which is the right-first visiting order.
	Bindings []Binding
	// Opcodes lists the emitted binary instructions in emission order.
	Opcodes []backend.Opcode
}

// opcodes maps operator symbols to the instruction they lower to.
var opcodes = map[byte]backend.Opcode{
	'+': backend.OpAdd,
	'-': backend.OpSub,
	'/': backend.OpUDiv,
	'*': backend.OpMul,
	'|': backend.OpOr,
	'&': backend.OpAnd,
	'^': backend.OpXor,
}

// OpcodeFor returns the opcode an operator symbol lowers to.
func OpcodeFor(symbol byte) (backend.Opcode, bool) {
	op, ok := opcodes[symbol]
	return op, ok
}

type lowerer struct {
	b     backend.Backend
	fn    backend.Function
	block backend.Block
	next  int
	out   *Lowered
}

// Lower declares function name in b with one i32 parameter per operand of
// tree and emits its body into a single entry block.
//
// Nodes are visited right child, left child, then the node itself. Leaves
// take parameter slots in that order, and every operator emits
// op(left, right).
func Lower(tree *ast.Tree, b backend.Backend, name string) (*Lowered, error) {
	fn, err := b.CreateFunction(name, tree.OperandCount, backend.TypeI32, backend.CallConvC)
	if err != nil {
		return nil, err
	}
	block, err := b.CreateBlock(fn, "entry")
	if err != nil {
		return nil, err
	}

	l := &lowerer{b: b, fn: fn, block: block, out: &Lowered{Function: fn}}
	result, err := l.lower(tree.Root)
	if err != nil {
		return nil, err
	}
	if err := b.AppendReturn(block, result); err != nil {
		return nil, err
	}
	l.out.Result = result

	return l.out, nil
}

func (l *lowerer) lower(n ast.Node) (backend.Value, error) {
	switch v := n.(type) {
	case *ast.OperandNode:
		if l.next >= l.fn.NumParams() {
			panic(fmt.Sprintf("codegen: operand %q needs parameter %d but %s has %d",
				v.Name, l.next, l.fn.Name(), l.fn.NumParams()))
		}
		param := l.fn.Param(l.next)
		l.b.NameValue(param, string([]byte{v.Name}))
		l.out.Bindings = append(l.out.Bindings, Binding{Param: l.next, Name: v.Name})
		l.next++
		return param, nil

	case *ast.OperatorNode:
		right, err := l.lower(v.Right)
		if err != nil {
			return nil, err
		}
		left, err := l.lower(v.Left)
		if err != nil {
			return nil, err
		}
		if left == nil || right == nil {
			panic(fmt.Sprintf("codegen: operator %q lowered without both operand values", v.Symbol))
		}

		op, ok := OpcodeFor(v.Symbol)
		if !ok {
			return nil, fmt.Errorf("codegen: no opcode for operator %q", v.Symbol)
		}
		l.out.Opcodes = append(l.out.Opcodes, op)
		return l.b.AppendBinary(l.block, op, left, right)

	default:
		panic(fmt.Sprintf("codegen: unexpected node %T", n))
	}
}
