package codegen

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/orizon-lang/exprir/internal/ast"
	"github.com/orizon-lang/exprir/internal/backend"
	"github.com/orizon-lang/exprir/internal/parser"
)

type recValue struct{ id string }

func (v *recValue) Ident() string { return v.id }

type recFunc struct {
	name   string
	params []*recValue
}

func (f *recFunc) Name() string              { return f.name }
func (f *recFunc) NumParams() int            { return len(f.params) }
func (f *recFunc) Param(i int) backend.Value { return f.params[i] }

type recBlock struct{ label string }

func (b *recBlock) Ident() string { return b.label }

// recorder is a backend that logs every call in order.
type recorder struct {
	calls     []string
	names     map[backend.Value]string
	temps     int
	verifyErr error
}

func newRecorder() *recorder {
	return &recorder{names: make(map[backend.Value]string)}
}

func (r *recorder) label(v backend.Value) string {
	if n, ok := r.names[v]; ok {
		return n
	}
	return v.Ident()
}

func (r *recorder) CreateFunction(name string, params int, ret backend.Type, cc backend.CallConv) (backend.Function, error) {
	f := &recFunc{name: name}
	for i := 0; i < params; i++ {
		f.params = append(f.params, &recValue{id: fmt.Sprintf("p%d", i)})
	}
	r.calls = append(r.calls, fmt.Sprintf("func %s %s %s/%d", cc, ret, name, params))
	return f, nil
}

func (r *recorder) CreateBlock(fn backend.Function, label string) (backend.Block, error) {
	r.calls = append(r.calls, "block "+label)
	return &recBlock{label: label}, nil
}

func (r *recorder) AppendBinary(b backend.Block, op backend.Opcode, lhs, rhs backend.Value) (backend.Value, error) {
	v := &recValue{id: fmt.Sprintf("t%d", r.temps)}
	r.temps++
	r.calls = append(r.calls, fmt.Sprintf("%s = %s %s, %s", v.id, op, r.label(lhs), r.label(rhs)))
	return v, nil
}

func (r *recorder) AppendReturn(b backend.Block, v backend.Value) error {
	r.calls = append(r.calls, "ret "+r.label(v))
	return nil
}

func (r *recorder) NameValue(v backend.Value, label string) {
	r.calls = append(r.calls, fmt.Sprintf("name %s %s", v.Ident(), label))
	r.names[v] = label
}

func (r *recorder) Verify() error           { return r.verifyErr }
func (r *recorder) Render() (string, error) { return "", nil }

func lower(t *testing.T, expr string) (*recorder, *Lowered) {
	t.Helper()
	tree, err := parser.Parse(expr)
	require.NoError(t, err)

	r := newRecorder()
	out, err := Lower(tree, r, "expression")
	require.NoError(t, err)
	return r, out
}

func TestLowerAdd(t *testing.T) {
	r, out := lower(t, "ab+")

	want := []string{
		"func ccc i32 expression/2",
		"block entry",
		"name p0 a",
		"name p1 b",
		"t0 = add b, a",
		"ret t0",
	}
	if diff := cmp.Diff(want, r.calls); diff != "" {
		t.Fatalf("call sequence mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []Binding{{Param: 0, Name: 'a'}, {Param: 1, Name: 'b'}}, out.Bindings)
	require.Equal(t, 2, out.Function.NumParams())
}

func TestLowerSubtractKeepsReversedOrder(t *testing.T) {
	r, _ := lower(t, "ab-")
	require.Contains(t, r.calls, "t0 = sub b, a")
	require.NotContains(t, r.calls, "t0 = sub a, b")
}

func TestLowerNested(t *testing.T) {
	r, out := lower(t, "abc+*")

	want := []string{
		"func ccc i32 expression/3",
		"block entry",
		"name p0 a",
		"name p1 b",
		"name p2 c",
		"t0 = add c, b",
		"t1 = mul t0, a",
		"ret t1",
	}
	if diff := cmp.Diff(want, r.calls); diff != "" {
		t.Fatalf("call sequence mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []backend.Opcode{backend.OpAdd, backend.OpMul}, out.Opcodes)
}

func TestLowerSingleOperand(t *testing.T) {
	r, out := lower(t, "z")
	require.Equal(t, []string{
		"func ccc i32 expression/1",
		"block entry",
		"name p0 z",
		"ret z",
	}, r.calls)
	require.Empty(t, out.Opcodes)
}

func TestLowerRepeatedNamesTakeSeparateSlots(t *testing.T) {
	r, out := lower(t, "aa*a^")
	require.Len(t, out.Bindings, 3)
	require.Equal(t, []string{
		"func ccc i32 expression/3",
		"block entry",
		"name p0 a",
		"name p1 a",
		"t0 = mul a, a",
		"name p2 a",
		"t1 = xor a, t0",
		"ret t1",
	}, r.calls)
}

func TestLowerNamesNonASCIIBytesVerbatim(t *testing.T) {
	r, out := lower(t, "\xc3\xa9+")
	require.Equal(t, []string{
		"func ccc i32 expression/2",
		"block entry",
		"name p0 \xa9",
		"name p1 \xc3",
		"t0 = add \xc3, \xa9",
		"ret t0",
	}, r.calls)
	require.Equal(t, []Binding{{Param: 0, Name: 0xa9}, {Param: 1, Name: 0xc3}}, out.Bindings)
}

func TestLowerOpcodeMapping(t *testing.T) {
	tests := []struct {
		expr string
		op   backend.Opcode
	}{
		{"ab+", backend.OpAdd},
		{"ab-", backend.OpSub},
		{"ab/", backend.OpUDiv},
		{"ab*", backend.OpMul},
		{"ab|", backend.OpOr},
		{"ab&", backend.OpAnd},
		{"ab^", backend.OpXor},
	}
	for _, tt := range tests {
		_, out := lower(t, tt.expr)
		require.Equal(t, []backend.Opcode{tt.op}, out.Opcodes, tt.expr)
	}
}

func TestLowerIsDeterministic(t *testing.T) {
	first, _ := lower(t, "ab+cde+**")
	for i := 0; i < 5; i++ {
		again, _ := lower(t, "ab+cde+**")
		require.Equal(t, first.calls, again.calls)
	}
}

func TestLowerArityMatchesOperandCount(t *testing.T) {
	for _, expr := range []string{"a", "ab+", "abc+*", "ab+cde+**", "aaaa&|^", "xy/z-w&"} {
		_, out := lower(t, expr)
		tree, err := parser.Parse(expr)
		require.NoError(t, err)
		require.Equal(t, tree.OperandCount, out.Function.NumParams(), expr)
		require.Len(t, out.Bindings, tree.OperandCount, expr)
	}
}

func TestLowerRejectsUnknownOperator(t *testing.T) {
	tree := &ast.Tree{
		Root:         &ast.OperatorNode{Symbol: '%', Left: &ast.OperandNode{Name: 'a'}, Right: &ast.OperandNode{Name: 'b'}},
		OperandCount: 2,
	}
	_, err := Lower(tree, newRecorder(), "expression")
	require.Error(t, err)
}

func TestLowerPanicsOnArityContractViolation(t *testing.T) {
	tree := &ast.Tree{
		Root:         &ast.OperatorNode{Symbol: '+', Left: &ast.OperandNode{Name: 'a'}, Right: &ast.OperandNode{Name: 'b'}},
		OperandCount: 1,
	}
	require.Panics(t, func() { _, _ = Lower(tree, newRecorder(), "expression") })
}
