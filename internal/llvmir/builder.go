// Package llvmir adapts github.com/llir/llvm to backend.Backend so that
// expressions can be rendered as textual LLVM IR.
package llvmir

import (
	"fmt"
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/orizon-lang/exprir/internal/backend"
	"github.com/orizon-lang/exprir/internal/diagnostic"
)

// Verifier diagnostic codes.
const (
	CodeNoBlocks       = "LL001"
	CodeNoTerminator   = "LL002"
	CodeReturnMismatch = "LL003"
	CodeOperandType    = "LL004"
)

// Builder owns one llir module.
type Builder struct {
	module *ir.Module
	names map[*ir.Func]*scope
	owner map[value.Value]*ir.Func
}

// scope tracks the local names handed out in one function and, per
// requested label, the next numeric suffix to try.
type scope struct {
	used   map[string]bool
	suffix map[string]int
}

// NewBuilder starts an empty module. The module name is recorded as the
// source filename, the closest thing llir has to a module identifier.
func NewBuilder(moduleName string) *Builder {
	m := ir.NewModule()
	m.SourceFilename = moduleName
	return &Builder{
		module: m,
		names:  make(map[*ir.Func]*scope),
		owner:  make(map[value.Value]*ir.Func),
	}
}

// Module exposes the underlying llir module.
func (b *Builder) Module() *ir.Module { return b.module }

type funcHandle struct{ f *ir.Func }

func (h funcHandle) Name() string   { return h.f.Name() }
func (h funcHandle) NumParams() int { return len(h.f.Params) }
func (h funcHandle) Param(i int) backend.Value {
	return h.f.Params[i]
}

func irType(t backend.Type) (types.Type, error) {
	if t == backend.TypeI32 {
		return types.I32, nil
	}
	return nil, fmt.Errorf("llvmir: unsupported type %s", t)
}

func (b *Builder) CreateFunction(name string, params int, ret backend.Type, cc backend.CallConv) (backend.Function, error) {
	retType, err := irType(ret)
	if err != nil {
		return nil, err
	}
	ps := make([]*ir.Param, params)
	for i := range ps {
		ps[i] = ir.NewParam("", types.I32)
	}
	f := b.module.NewFunc(name, retType, ps...)
	if cc == backend.CallConvC {
		f.CallingConv = enum.CallingConvC
	}
	b.names[f] = &scope{used: make(map[string]bool), suffix: make(map[string]int)}
	for _, p := range ps {
		b.owner[p] = f
	}
	return funcHandle{f: f}, nil
}

func (b *Builder) CreateBlock(fn backend.Function, label string) (backend.Block, error) {
	h, ok := fn.(funcHandle)
	if !ok {
		return nil, fmt.Errorf("llvmir: function handle %T was not created by this backend", fn)
	}
	return h.f.NewBlock(label), nil
}

func (b *Builder) AppendBinary(blk backend.Block, op backend.Opcode, lhs, rhs backend.Value) (backend.Value, error) {
	block, ok := blk.(*ir.Block)
	if !ok {
		return nil, fmt.Errorf("llvmir: block handle %T was not created by this backend", blk)
	}
	x, ok := lhs.(value.Value)
	if !ok {
		return nil, fmt.Errorf("llvmir: value handle %T was not created by this backend", lhs)
	}
	y, ok := rhs.(value.Value)
	if !ok {
		return nil, fmt.Errorf("llvmir: value handle %T was not created by this backend", rhs)
	}

	var inst value.Value
	switch op {
	case backend.OpAdd:
		inst = block.NewAdd(x, y)
	case backend.OpSub:
		inst = block.NewSub(x, y)
	case backend.OpMul:
		inst = block.NewMul(x, y)
	case backend.OpUDiv:
		inst = block.NewUDiv(x, y)
	case backend.OpOr:
		inst = block.NewOr(x, y)
	case backend.OpAnd:
		inst = block.NewAnd(x, y)
	case backend.OpXor:
		inst = block.NewXor(x, y)
	default:
		return nil, fmt.Errorf("llvmir: unsupported opcode %s", op)
	}
	b.owner[inst] = block.Parent
	return inst, nil
}

func (b *Builder) AppendReturn(blk backend.Block, v backend.Value) error {
	block, ok := blk.(*ir.Block)
	if !ok {
		return fmt.Errorf("llvmir: block handle %T was not created by this backend", blk)
	}
	x, ok := v.(value.Value)
	if !ok {
		return fmt.Errorf("llvmir: value handle %T was not created by this backend", v)
	}
	block.NewRet(x)
	return nil
}

// NameValue gives v a local name unique within its function. LLVM
// identifiers made only of digits would collide with unnamed value IDs, so
// such labels are prefixed with "v".
func (b *Builder) NameValue(v backend.Value, label string) {
	named, ok := v.(value.Named)
	if !ok || label == "" {
		return
	}
	if _, err := strconv.Atoi(label); err == nil {
		label = "v" + label
	}
	sc := b.names[b.owner[named]]
	if sc == nil {
		named.SetName(label)
		return
	}
	name := label
	if sc.used[name] {
		n := sc.suffix[label]
		if n < 1 {
			n = 1
		}
		for {
			name = label + strconv.Itoa(n)
			n++
			if !sc.used[name] {
				break
			}
		}
		sc.suffix[label] = n
	}
	sc.used[name] = true
	named.SetName(name)
}

// Verify checks that every function has blocks, every block is terminated,
// and returns and operands are i32.
func (b *Builder) Verify() error {
	var diags diagnostic.List
	for _, f := range b.module.Funcs {
		report := func(code, block string, instr int, format string, args ...interface{}) {
			diags.Add(diagnostic.NewDiagnostic().Code(code).At(f.Name(), block, instr).Message(format, args...).Build())
		}
		if len(f.Blocks) == 0 {
			report(CodeNoBlocks, "", -1, "function has no blocks")
			continue
		}
		retType := f.Sig.RetType
		for _, block := range f.Blocks {
			label := block.Name()
			for i, inst := range block.Insts {
				v, ok := inst.(value.Value)
				if !ok {
					continue
				}
				for _, operand := range operandsOf(inst) {
					if !types.Equal(operand.Type(), types.I32) {
						report(CodeOperandType, label, i, "operand %s of %s has type %s, want i32", operand.Ident(), v.Ident(), operand.Type())
					}
				}
			}
			if block.Term == nil {
				report(CodeNoTerminator, label, -1, "block does not end with a terminator")
				continue
			}
			if ret, ok := block.Term.(*ir.TermRet); ok {
				if ret.X == nil || !types.Equal(ret.X.Type(), retType) {
					report(CodeReturnMismatch, label, len(block.Insts), "ret does not return %s", retType)
				}
			}
		}
	}
	return diags.Err()
}

func operandsOf(inst ir.Instruction) []value.Value {
	switch v := inst.(type) {
	case *ir.InstAdd:
		return []value.Value{v.X, v.Y}
	case *ir.InstSub:
		return []value.Value{v.X, v.Y}
	case *ir.InstMul:
		return []value.Value{v.X, v.Y}
	case *ir.InstUDiv:
		return []value.Value{v.X, v.Y}
	case *ir.InstOr:
		return []value.Value{v.X, v.Y}
	case *ir.InstAnd:
		return []value.Value{v.X, v.Y}
	case *ir.InstXor:
		return []value.Value{v.X, v.Y}
	default:
		return nil
	}
}

// Render returns the module as LLVM assembly.
func (b *Builder) Render() (string, error) {
	for _, f := range b.module.Funcs {
		if err := f.AssignIDs(); err != nil {
			return "", fmt.Errorf("llvmir: assign IDs of %s: %w", f.Ident(), err)
		}
	}
	return b.module.String(), nil
}
