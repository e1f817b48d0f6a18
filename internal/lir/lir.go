// Package lir defines a Low-level IR close to the target ISA.
// It is suitable for straightforward instruction selection.
package lir

import (
	"fmt"
	"strings"
)

// Module bundles functions for one object file.
type Module struct {
	Name      string
	Functions []*Function
}

// Function is a sequence of basic blocks of target-like instructions.
// Params lists the incoming argument names in slot order.
type Function struct {
	Name   string
	Params []string
	Blocks []*BasicBlock
}

// BasicBlock contains a linear list of target-like instructions.
type BasicBlock struct {
	Label string
	Insns []Insn
}

// Insn is a target-agnostic instruction representation.
type Insn interface{ Op() string }

// Arg copies incoming argument Index into Dst.
type Arg struct {
	Dst   string
	Index int
}

func (Arg) Op() string       { return "arg" }
func (a Arg) String() string { return fmt.Sprintf("arg %s, #%d", a.Dst, a.Index) }

// Binary is a three-address integer operation; Opcode is one of
// add, sub, mul, udiv, or, and, xor.
type Binary struct{ Opcode, Dst, LHS, RHS string }

func (b Binary) Op() string { return b.Opcode }
func (b Binary) String() string {
	return fmt.Sprintf("%s %s, %s, %s", b.Opcode, b.Dst, b.LHS, b.RHS)
}

type Ret struct{ Src string }

func (Ret) Op() string { return "ret" }
func (r Ret) String() string {
	if r.Src == "" {
		return "ret"
	}

	return fmt.Sprintf("ret %s", r.Src)
}

func (m *Module) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "module %s\n", m.Name)

	for _, f := range m.Functions {
		b.WriteString(f.String())
		b.WriteByte('\n')
	}

	return b.String()
}

func (f *Function) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "func %s(%s) {\n", f.Name, strings.Join(f.Params, ", "))

	for _, bb := range f.Blocks {
		if bb.Label != "" {
			fmt.Fprintf(&b, "%s:\n", bb.Label)
		}

		for _, ins := range bb.Insns {
			if s, ok := any(ins).(fmt.Stringer); ok {
				b.WriteString("  ")
				b.WriteString(s.String())
				b.WriteByte('\n')
			} else {
				fmt.Fprintf(&b, "  %s\n", ins.Op())
			}
		}
	}

	b.WriteString("}\n")

	return b.String()
}
