// Package mir defines a Mid-level IR for straight-line integer functions.
// It is SSA-lite: every value is defined once, by a parameter or an instruction.
package mir

import (
	"fmt"
	"strconv"
	"strings"
)

// Module is a compilation unit of MIR.
type Module struct {
	Name      string
	Functions []*Function
}

// Function is a collection of basic blocks.
type Function struct {
	Name       string
	CallConv   string
	Result     ValueClass
	Parameters []*Value
	Blocks     []*BasicBlock

	idents map[string]bool
	// next suffix to try per display name
	suffix map[string]int
	temps  int
}

// BasicBlock is a sequence of instructions ending with a terminator.
type BasicBlock struct {
	Name  string
	Instr []Instr

	parent *Function
}

// Value represents an SSA-like value produced by an instruction or parameter.
type Value struct {
	Kind ValueKind
	// Display name requested by the producer; may be shared by several values.
	Name string
	// Parameter slot for ValParam.
	Index int
	// Lightweight type class hint for lowering
	Class ValueClass

	ident string
	owner *Function
}

// ValueKind classifies the value category.
type ValueKind int

const (
	ValInvalid ValueKind = iota
	ValParam
	ValTemp
)

// Instr is implemented by all MIR instructions.
type Instr interface {
	fmt.Stringer
	isInstr()
}

// BinOp represents a binary arithmetic or bitwise operation.
type BinOp struct {
	Dst *Value
	Op  BinOpKind
	LHS *Value
	RHS *Value
}

// Ret returns from the current function with an optional value.
type Ret struct{ Val *Value }

// BinOpKind enumerates supported binary operations at MIR level.
type BinOpKind int

const (
	OpAdd BinOpKind = iota
	OpSub
	OpMul
	OpUDiv
	OpOr
	OpAnd
	OpXor
)

func (BinOp) isInstr() {}
func (Ret) isInstr()   {}

// ValueClass is a minimal type class for lowering decisions.
type ValueClass int

const (
	ClassUnknown ValueClass = iota
	ClassI32
)

func (c ValueClass) String() string {
	switch c {
	case ClassI32:
		return "i32"
	default:
		return "unknown"
	}
}

// NewFunction declares a function with n i32 parameters named %arg0..%argN-1.
func NewFunction(name string, n int) *Function {
	f := &Function{Name: name, CallConv: "ccc", Result: ClassI32, idents: make(map[string]bool), suffix: make(map[string]int)}
	for i := 0; i < n; i++ {
		p := &Value{Kind: ValParam, Index: i, Class: ClassI32, owner: f}
		p.ident = f.reserve("arg" + strconv.Itoa(i))
		f.Parameters = append(f.Parameters, p)
	}
	return f
}

// NewBlock appends an empty block to f.
func (f *Function) NewBlock(name string) *BasicBlock {
	bb := &BasicBlock{Name: name, parent: f}
	f.Blocks = append(f.Blocks, bb)
	return bb
}

// reserve returns a %-prefixed identifier derived from base that is unique
// within f. Repeats get a numeric suffix: a, a1, a2. The search resumes
// from the last suffix handed out for base, so n repeats cost O(n).
func (f *Function) reserve(base string) string {
	ident := "%" + base
	if f.idents[ident] {
		n := f.suffix[base]
		if n < 1 {
			n = 1
		}
		for {
			ident = "%" + base + strconv.Itoa(n)
			n++
			if !f.idents[ident] {
				break
			}
		}
		f.suffix[base] = n
	}
	f.idents[ident] = true
	return ident
}

func (f *Function) newTemp() string {
	for {
		ident := "%t" + strconv.Itoa(f.temps)
		f.temps++
		if !f.idents[ident] {
			f.idents[ident] = true
			return ident
		}
	}
}

// NewBinOp appends dst = op lhs, rhs and returns dst.
func (bb *BasicBlock) NewBinOp(op BinOpKind, lhs, rhs *Value) *Value {
	dst := &Value{Kind: ValTemp, Class: ClassI32, owner: bb.parent}
	dst.ident = bb.parent.newTemp()
	bb.Instr = append(bb.Instr, BinOp{Dst: dst, Op: op, LHS: lhs, RHS: rhs})
	return dst
}

// NewRet terminates bb with ret v.
func (bb *BasicBlock) NewRet(v *Value) {
	bb.Instr = append(bb.Instr, Ret{Val: v})
}

// Terminator returns the last instruction if it ends the block.
func (bb *BasicBlock) Terminator() (Instr, bool) {
	if len(bb.Instr) == 0 {
		return nil, false
	}
	last := bb.Instr[len(bb.Instr)-1]
	_, ok := last.(Ret)
	return last, ok
}

// SetName renames v; the identifier is uniqued within the owning function.
func (v *Value) SetName(name string) {
	v.Name = name
	if v.owner == nil || name == "" {
		return
	}
	delete(v.owner.idents, v.ident)
	v.ident = v.owner.reserve(name)
}

// Ident returns the textual operand form of v.
func (v *Value) Ident() string {
	if v == nil {
		return "<nil>"
	}
	switch v.Kind {
	case ValParam, ValTemp:
		if v.ident == "" {
			return "%ref?"
		}
		return v.ident
	default:
		return "<invalid>"
	}
}

// Ident returns the block label.
func (bb *BasicBlock) Ident() string { return bb.Name }

func (v *Value) String() string { return v.Ident() }

func (m *Module) String() string {
	if m == nil {
		return "<nil-mir-module>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "module %s\n", m.Name)
	for _, f := range m.Functions {
		b.WriteString(f.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func (f *Function) String() string {
	if f == nil {
		return "<nil-func>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "func %s %s(", f.CallConv, f.Name)
	for i, p := range f.Parameters {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", p.Class, p.Ident())
	}
	fmt.Fprintf(&b, ") %s {\n", f.Result)
	for _, bb := range f.Blocks {
		b.WriteString(bb.String())
	}
	b.WriteString("}\n")
	return b.String()
}

func (bb *BasicBlock) String() string {
	if bb == nil {
		return ""
	}
	var b strings.Builder
	if bb.Name != "" {
		fmt.Fprintf(&b, "%s:\n", bb.Name)
	}
	for _, in := range bb.Instr {
		b.WriteString("  ")
		b.WriteString(in.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func (i BinOp) String() string {
	return fmt.Sprintf("%s = %s %s %s, %s", i.Dst.Ident(), i.Op, i.Dst.classOr(ClassI32), i.LHS.Ident(), i.RHS.Ident())
}

func (i Ret) String() string {
	if i.Val == nil {
		return "ret"
	}
	return fmt.Sprintf("ret %s %s", i.Val.classOr(ClassUnknown), i.Val.Ident())
}

func (v *Value) classOr(def ValueClass) ValueClass {
	if v == nil {
		return def
	}
	return v.Class
}

func (k BinOpKind) String() string {
	switch k {
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
		return "binop?"
	}
}
