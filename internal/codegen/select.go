package codegen

import (
	"github.com/orizon-lang/exprir/internal/lir"
	"github.com/orizon-lang/exprir/internal/mir"
)

// SelectToLIR performs naive selection from MIR to target-agnostic LIR.
// Parameters are materialised with one Arg per slot at the top of the
// first block.
func SelectToLIR(m *mir.Module) *lir.Module {
	lm := &lir.Module{Name: m.Name}

	for _, f := range m.Functions {
		lf := &lir.Function{Name: f.Name}
		for _, p := range f.Parameters {
			lf.Params = append(lf.Params, p.Ident())
		}

		for i, bb := range f.Blocks {
			lb := &lir.BasicBlock{Label: bb.Name}

			if i == 0 {
				for idx, p := range f.Parameters {
					lb.Insns = append(lb.Insns, lir.Arg{Dst: p.Ident(), Index: idx})
				}
			}

			for _, in := range bb.Instr {
				switch v := in.(type) {
				case mir.Ret:
					var src string
					if v.Val != nil {
						src = v.Val.Ident()
					}

					lb.Insns = append(lb.Insns, lir.Ret{Src: src})
				case mir.BinOp:
					lb.Insns = append(lb.Insns, lir.Binary{
						Opcode: v.Op.String(),
						Dst:    v.Dst.Ident(),
						LHS:    v.LHS.Ident(),
						RHS:    v.RHS.Ident(),
					})
				}
			}

			lf.Blocks = append(lf.Blocks, lb)
		}

		lm.Functions = append(lm.Functions, lf)
	}

	return lm
}
