package mir

import (
	"fmt"

	"github.com/orizon-lang/exprir/internal/backend"
)

// Builder adapts a MIR module to backend.Backend.
type Builder struct {
	module *Module
}

// NewBuilder starts an empty module.
func NewBuilder(moduleName string) *Builder {
	return &Builder{module: &Module{Name: moduleName}}
}

// Module returns the module built so far.
func (b *Builder) Module() *Module { return b.module }

type funcHandle struct{ f *Function }

func (h funcHandle) Name() string   { return h.f.Name }
func (h funcHandle) NumParams() int { return len(h.f.Parameters) }
func (h funcHandle) Param(i int) backend.Value {
	return h.f.Parameters[i]
}

// Unwrap returns the MIR function behind a handle created by a Builder.
func Unwrap(fn backend.Function) (*Function, bool) {
	h, ok := fn.(funcHandle)
	return h.f, ok
}

func (b *Builder) CreateFunction(name string, params int, ret backend.Type, cc backend.CallConv) (backend.Function, error) {
	if ret != backend.TypeI32 {
		return nil, fmt.Errorf("mir: unsupported return type %s", ret)
	}
	if params < 0 {
		return nil, fmt.Errorf("mir: negative parameter count %d", params)
	}
	f := NewFunction(name, params)
	f.CallConv = cc.String()
	b.module.Functions = append(b.module.Functions, f)
	return funcHandle{f: f}, nil
}

func (b *Builder) CreateBlock(fn backend.Function, label string) (backend.Block, error) {
	f, ok := Unwrap(fn)
	if !ok {
		return nil, fmt.Errorf("mir: function handle %T was not created by this backend", fn)
	}
	return f.NewBlock(label), nil
}

func (b *Builder) AppendBinary(blk backend.Block, op backend.Opcode, lhs, rhs backend.Value) (backend.Value, error) {
	bb, ok := blk.(*BasicBlock)
	if !ok {
		return nil, fmt.Errorf("mir: block handle %T was not created by this backend", blk)
	}
	kind, err := binOpKind(op)
	if err != nil {
		return nil, err
	}
	l, err := value(lhs)
	if err != nil {
		return nil, err
	}
	r, err := value(rhs)
	if err != nil {
		return nil, err
	}
	return bb.NewBinOp(kind, l, r), nil
}

func (b *Builder) AppendReturn(blk backend.Block, v backend.Value) error {
	bb, ok := blk.(*BasicBlock)
	if !ok {
		return fmt.Errorf("mir: block handle %T was not created by this backend", blk)
	}
	val, err := value(v)
	if err != nil {
		return err
	}
	bb.NewRet(val)
	return nil
}

func (b *Builder) NameValue(v backend.Value, label string) {
	if val, ok := v.(*Value); ok {
		val.SetName(label)
	}
}

func (b *Builder) Verify() error { return Verify(b.module) }

func (b *Builder) Render() (string, error) { return b.module.String(), nil }

func value(v backend.Value) (*Value, error) {
	val, ok := v.(*Value)
	if !ok {
		return nil, fmt.Errorf("mir: value handle %T was not created by this backend", v)
	}
	return val, nil
}

func binOpKind(op backend.Opcode) (BinOpKind, error) {
	switch op {
	case backend.OpAdd:
		return OpAdd, nil
	case backend.OpSub:
		return OpSub, nil
	case backend.OpMul:
		return OpMul, nil
	case backend.OpUDiv:
		return OpUDiv, nil
	case backend.OpOr:
		return OpOr, nil
	case backend.OpAnd:
		return OpAnd, nil
	case backend.OpXor:
		return OpXor, nil
	default:
		return 0, fmt.Errorf("mir: unsupported opcode %s", op)
	}
}
