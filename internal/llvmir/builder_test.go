package llvmir

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/llir/llvm/ir"
	"github.com/stretchr/testify/require"

	"github.com/orizon-lang/exprir/internal/backend"
)

func build(t *testing.T, names []string, ops []backend.Opcode) string {
	t.Helper()

	b := NewBuilder("exprFunc")
	fn, err := b.CreateFunction("expression", len(names), backend.TypeI32, backend.CallConvC)
	require.NoError(t, err)
	blk, err := b.CreateBlock(fn, "entry")
	require.NoError(t, err)

	for i, n := range names {
		b.NameValue(fn.Param(i), n)
	}

	acc := fn.Param(0)
	for i, op := range ops {
		acc, err = b.AppendBinary(blk, op, acc, fn.Param(i+1))
		require.NoError(t, err)
	}
	require.NoError(t, b.AppendReturn(blk, acc))
	require.NoError(t, b.Verify())

	out, err := b.Render()
	require.NoError(t, err)
	return out
}

func TestRenderSubtract(t *testing.T) {
	out := build(t, []string{"b", "a"}, []backend.Opcode{backend.OpSub})

	require.Contains(t, out, `source_filename = "exprFunc"`)
	require.Contains(t, out, "@expression(i32 %b, i32 %a)")
	require.Contains(t, out, "entry:")
	require.Contains(t, out, "%0 = sub i32 %b, %a")
	require.Contains(t, out, "ret i32 %0")
}

func TestRenderEveryOpcode(t *testing.T) {
	ops := []backend.Opcode{
		backend.OpAdd, backend.OpSub, backend.OpMul, backend.OpUDiv,
		backend.OpOr, backend.OpAnd, backend.OpXor,
	}
	out := build(t, []string{"a", "b", "c", "d", "e", "f", "g", "h"}, ops)

	for _, want := range []string{"add i32", "sub i32", "mul i32", "udiv i32", "or i32", "and i32", "xor i32"} {
		require.Contains(t, out, want)
	}
	require.Contains(t, out, "ret i32 %6")
}

func TestRepeatedNamesAreUniqued(t *testing.T) {
	out := build(t, []string{"a", "a", "a"}, []backend.Opcode{backend.OpAdd, backend.OpMul})

	require.Contains(t, out, "(i32 %a, i32 %a1, i32 %a2)")
	require.Contains(t, out, "%0 = add i32 %a, %a1")
	require.Contains(t, out, "%1 = mul i32 %0, %a2")
}

func TestNumericNamesArePrefixed(t *testing.T) {
	out := build(t, []string{"1", "2"}, []backend.Opcode{backend.OpXor})
	require.Contains(t, out, "(i32 %v1, i32 %v2)")
	require.Contains(t, out, "%0 = xor i32 %v1, %v2")
}

func TestSingleParameterReturn(t *testing.T) {
	out := build(t, []string{"x"}, nil)
	require.Contains(t, out, "@expression(i32 %x)")
	require.Contains(t, out, "ret i32 %x")
	require.Equal(t, 1, strings.Count(out, "ret "))
}

func TestVerifyReportsUnterminatedBlock(t *testing.T) {
	b := NewBuilder("m")
	fn, err := b.CreateFunction("f", 1, backend.TypeI32, backend.CallConvC)
	require.NoError(t, err)
	_, err = b.CreateBlock(fn, "entry")
	require.NoError(t, err)
	b.Module().NewFunc("g", b.Module().Funcs[0].Sig.RetType)

	err = b.Verify()
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, stderrors.As(err, &merr))
	require.Len(t, merr.Errors, 2)
	require.Contains(t, err.Error(), CodeNoTerminator)
	require.Contains(t, err.Error(), CodeNoBlocks)
}

func TestForeignHandlesAreRejected(t *testing.T) {
	b := NewBuilder("m")
	_, err := b.CreateBlock(nil, "entry")
	require.Error(t, err)

	fn, err := b.CreateFunction("f", 1, backend.TypeI32, backend.CallConvC)
	require.NoError(t, err)
	_, err = b.AppendBinary(ir.NewBlock("x"), backend.OpAdd, fn.Param(0), nil)
	require.Error(t, err)
}

func TestRepeatedNamesResumeSuffix(t *testing.T) {
	out := build(t, []string{"a", "a", "a1", "a", "a"}, nil)
	require.Contains(t, out, "@expression(i32 %a, i32 %a1, i32 %a11, i32 %a2, i32 %a3)")
}
