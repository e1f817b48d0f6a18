// Package backend defines the narrow surface the expression lowering needs
// from an instruction-emitting backend. Implementations live in
// internal/mir and internal/llvmir.
package backend

import "fmt"

// Opcode selects the binary instruction emitted for an operator.
type Opcode int

const (
	OpAdd Opcode = iota
	OpSub
	OpMul
	OpUDiv
	OpOr
	OpAnd
	OpXor
)

func (op Opcode) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpUDiv:
		return "udiv"
	case OpOr:
		return "or"
	case OpAnd:
		return "and"
	case OpXor:
		return "xor"
	default:
		return fmt.Sprintf("op(%d)", int(op))
	}
}

// Type is the value type of parameters and results. Only 32-bit integers
// are produced today.
type Type int

const (
	TypeI32 Type = iota
)

func (t Type) String() string {
	if t == TypeI32 {
		return "i32"
	}
	return "type?"
}

// CallConv is the calling convention requested for a function.
type CallConv int

const (
	CallConvC CallConv = iota
)

func (c CallConv) String() string {
	if c == CallConvC {
		return "ccc"
	}
	return "cc?"
}

// Value is a handle to an SSA value owned by a backend.
type Value interface {
	Ident() string
}

// Block is a handle to a basic block owned by a backend.
type Block interface {
	Ident() string
}

// Function is a handle to a function declared in a backend.
type Function interface {
	Name() string
	NumParams() int
	Param(i int) Value
}

// Backend materialises, verifies and renders one module.
// Handles passed back into a Backend must have been produced by it.
type Backend interface {
	CreateFunction(name string, params int, ret Type, cc CallConv) (Function, error)
	CreateBlock(fn Function, label string) (Block, error)
	AppendBinary(b Block, op Opcode, lhs, rhs Value) (Value, error)
	AppendReturn(b Block, v Value) error
	NameValue(v Value, label string)
	Verify() error
	Render() (string, error)
}
