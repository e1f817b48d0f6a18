package lir

import "testing"

func TestFunctionString(t *testing.T) {
	f := &Function{
		Name:   "expression",
		Params: []string{"%a", "%b"},
		Blocks: []*BasicBlock{{
			Label: "entry",
			Insns: []Insn{
				Arg{Dst: "%a", Index: 0},
				Arg{Dst: "%b", Index: 1},
				Binary{Opcode: "udiv", Dst: "%t0", LHS: "%b", RHS: "%a"},
				Ret{Src: "%t0"},
			},
		}},
	}
	m := &Module{Name: "exprFunc", Functions: []*Function{f}}

	want := "module exprFunc\n" +
		"func expression(%a, %b) {\n" +
		"entry:\n" +
		"  arg %a, #0\n" +
		"  arg %b, #1\n" +
		"  udiv %t0, %b, %a\n" +
		"  ret %t0\n" +
		"}\n\n"
	if got := m.String(); got != want {
		t.Fatalf("unexpected LIR\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestInsnOps(t *testing.T) {
	tests := []struct {
		in   Insn
		want string
	}{
		{Arg{Dst: "%a"}, "arg"},
		{Binary{Opcode: "xor"}, "xor"},
		{Ret{}, "ret"},
	}
	for _, tt := range tests {
		if got := tt.in.Op(); got != tt.want {
			t.Errorf("Op() = %q, want %q", got, tt.want)
		}
	}
	if got := (Ret{}).String(); got != "ret" {
		t.Errorf("empty ret renders %q", got)
	}
}
