package codegen

import (
	"fmt"
	"strings"

	"github.com/orizon-lang/exprir/internal/lir"
)

// Win64 integer argument registers, 32-bit views.
var argRegs = []string{"ecx", "edx", "r8d", "r9d"}

// RenderX64 emits a very naive Windows x64-like assembly text from LIR.
// It assigns each SSA value a stack slot and uses EAX/R10D as scratch.
// Values are 32-bit; division is unsigned. This is for diagnostics only.
func RenderX64(m *lir.Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "; module %s\n", m.Name)
	for _, f := range m.Functions {
		emitFunc(&b, f)
	}
	return b.String()
}

func emitFunc(b *strings.Builder, f *lir.Function) {
	fmt.Fprintf(b, "%s:\n", f.Name)
	// Collect SSA destinations for stack slots
	slots := collectSlots(f)
	frameSize := int64(len(slots)) * 8
	// Align frame to 16 bytes
	if rem := frameSize % 16; rem != 0 {
		frameSize += 16 - rem
	}
	// Prologue
	b.WriteString("  push rbp\n")
	b.WriteString("  mov rbp, rsp\n")
	if frameSize > 0 {
		fmt.Fprintf(b, "  sub rsp, %d\n", frameSize)
	}
	for _, bb := range f.Blocks {
		if bb.Label != "" {
			fmt.Fprintf(b, "%s:\n", bb.Label)
		}
		for _, ins := range bb.Insns {
			switch v := ins.(type) {
			case lir.Arg:
				if v.Index < len(argRegs) {
					storeValue(b, slots, v.Dst, argRegs[v.Index])
					continue
				}
				// Stack args sit above the return address, saved rbp and 32-byte shadow space.
				fmt.Fprintf(b, "  mov eax, dword ptr [rbp+%d]\n", 48+8*(v.Index-len(argRegs)))
				storeValue(b, slots, v.Dst, "eax")
			case lir.Binary:
				loadValue(b, slots, v.LHS, "eax")
				loadValue(b, slots, v.RHS, "r10d")
				switch v.Opcode {
				case "add", "sub", "or", "and", "xor":
					fmt.Fprintf(b, "  %s eax, r10d\n", v.Opcode)
				case "mul":
					b.WriteString("  imul eax, r10d\n")
				case "udiv":
					b.WriteString("  xor edx, edx\n")
					b.WriteString("  div r10d\n")
				}
				storeValue(b, slots, v.Dst, "eax")
			case lir.Ret:
				if v.Src != "" {
					loadValue(b, slots, v.Src, "eax")
				}
				// Epilogue
				b.WriteString("  mov rsp, rbp\n")
				b.WriteString("  pop rbp\n")
				b.WriteString("  ret\n")
			}
		}
	}
}

func collectSlots(f *lir.Function) map[string]int64 {
	slots := make(map[string]int64)
	next := int64(8)
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := slots[name]; ok {
			return
		}
		slots[name] = next
		next += 8
	}
	for _, bb := range f.Blocks {
		for _, ins := range bb.Insns {
			switch v := ins.(type) {
			case lir.Arg:
				add(v.Dst)
			case lir.Binary:
				add(v.Dst)
			}
		}
	}
	return slots
}

// loadValue and storeValue move a 32-bit value between reg and its stack slot.
func loadValue(b *strings.Builder, slots map[string]int64, src, reg string) {
	fmt.Fprintf(b, "  mov %s, dword ptr [rbp-%d]\n", reg, slots[src])
}

func storeValue(b *strings.Builder, slots map[string]int64, dst, reg string) {
	fmt.Fprintf(b, "  mov dword ptr [rbp-%d], %s\n", slots[dst], reg)
}
