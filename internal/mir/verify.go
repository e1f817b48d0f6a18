package mir

import (
	"github.com/orizon-lang/exprir/internal/diagnostic"
)

// Verifier diagnostic codes.
const (
	CodeNoBlocks        = "MIR001"
	CodeNoTerminator    = "MIR002"
	CodeAfterTerminator = "MIR003"
	CodeMissingOperand  = "MIR004"
	CodeUndefinedValue  = "MIR005"
	CodeClassMismatch   = "MIR006"
	CodeReturnMismatch  = "MIR007"
)

// Verify checks the structural rules every MIR function must satisfy and
// returns the collected diagnostics as one error, or nil.
func Verify(m *Module) error {
	var diags diagnostic.List
	for _, f := range m.Functions {
		verifyFunction(f, &diags)
	}
	return diags.Err()
}

func verifyFunction(f *Function, diags *diagnostic.List) {
	report := func(code, block string, instr int, format string, args ...interface{}) {
		diags.Add(diagnostic.NewDiagnostic().Code(code).At(f.Name, block, instr).Message(format, args...).Build())
	}

	if len(f.Blocks) == 0 {
		report(CodeNoBlocks, "", -1, "function has no blocks")
		return
	}

	defined := make(map[*Value]bool, len(f.Parameters))
	for _, p := range f.Parameters {
		defined[p] = true
	}

	checkOperand := func(block string, idx int, role string, v *Value) {
		switch {
		case v == nil:
			report(CodeMissingOperand, block, idx, "missing %s operand", role)
		case !defined[v]:
			report(CodeUndefinedValue, block, idx, "%s operand %s is not defined before use", role, v.Ident())
		case v.Class != ClassI32:
			report(CodeClassMismatch, block, idx, "%s operand %s has class %s, want i32", role, v.Ident(), v.Class)
		}
	}

	for _, bb := range f.Blocks {
		if _, ok := bb.Terminator(); !ok {
			report(CodeNoTerminator, bb.Name, -1, "block does not end with a terminator")
		}
		for idx, in := range bb.Instr {
			switch v := in.(type) {
			case BinOp:
				checkOperand(bb.Name, idx, "lhs", v.LHS)
				checkOperand(bb.Name, idx, "rhs", v.RHS)
				if v.Dst == nil {
					report(CodeMissingOperand, bb.Name, idx, "%s has no destination", v.Op)
				} else {
					defined[v.Dst] = true
				}
			case Ret:
				if idx != len(bb.Instr)-1 {
					report(CodeAfterTerminator, bb.Name, idx+1, "instruction after terminator")
				}
				if v.Val == nil {
					report(CodeReturnMismatch, bb.Name, idx, "ret without value in function returning %s", f.Result)
					continue
				}
				checkOperand(bb.Name, idx, "ret", v.Val)
				if v.Val.Class != f.Result {
					report(CodeReturnMismatch, bb.Name, idx, "ret of class %s in function returning %s", v.Val.Class, f.Result)
				}
			}
		}
	}
}
