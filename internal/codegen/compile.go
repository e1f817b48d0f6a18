package codegen

import (
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/orizon-lang/exprir/internal/ast"
	"github.com/orizon-lang/exprir/internal/backend"
	"github.com/orizon-lang/exprir/internal/errors"
	"github.com/orizon-lang/exprir/internal/llvmir"
	"github.com/orizon-lang/exprir/internal/mir"
	"github.com/orizon-lang/exprir/internal/parser"
	"github.com/orizon-lang/exprir/internal/position"
)

// Emit selects the textual form Compile produces.
type Emit string

const (
	EmitLLVM Emit = "llvm"
	EmitMIR  Emit = "mir"
	EmitLIR  Emit = "lir"
	EmitX64  Emit = "x64"
)

// ParseEmit validates a user-supplied emit kind.
func ParseEmit(s string) (Emit, error) {
	switch e := Emit(strings.ToLower(strings.TrimSpace(s))); e {
	case EmitLLVM, EmitMIR, EmitLIR, EmitX64:
		return e, nil
	case "":
		return EmitLLVM, nil
	default:
		return "", errors.UnsupportedEmit(s)
	}
}

// Options controls one compilation.
type Options struct {
	ModuleName   string
	FunctionName string
	Emit         Emit
	// Start is the position of the expression's first byte, used in
	// parse errors. The zero value means line 1, column 1 of unnamed input.
	Start position.Position
}

// DefaultOptions mirrors the names the expression compiler has always used.
func DefaultOptions() Options {
	return Options{
		ModuleName:   "exprFunc",
		FunctionName: "expression",
		Emit:         EmitLLVM,
	}
}

// Result is the outcome of a successful compilation.
type Result struct {
	Tree    *ast.Tree
	Lowered *Lowered
	Output  string
}

// Arity is the parameter count of the generated function.
func (r *Result) Arity() int { return r.Tree.OperandCount }

// NewBackend returns a fresh backend for the emit kind. Every compilation
// gets its own backend, so no module state is shared between calls.
func NewBackend(opts Options) backend.Backend {
	if opts.Emit == EmitLLVM {
		return llvmir.NewBuilder(opts.ModuleName)
	}
	return mir.NewBuilder(opts.ModuleName)
}

func (o Options) normalized() (Options, error) {
	def := DefaultOptions()
	if o.ModuleName == "" {
		o.ModuleName = def.ModuleName
	}
	if o.FunctionName == "" {
		o.FunctionName = def.FunctionName
	}
	emit, err := ParseEmit(string(o.Emit))
	if err != nil {
		return o, err
	}
	o.Emit = emit
	if !o.Start.IsValid() {
		o.Start = position.Start(o.Start.Filename, 1)
	}
	return o, nil
}

// Compile parses expr, lowers it into a fresh backend, verifies the module
// and renders it.
func Compile(expr string, opts Options) (*Result, error) {
	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}
	return CompileWith(expr, NewBackend(opts), opts)
}

// CompileWith is Compile with a caller-supplied backend. Verification
// failures are returned as BACKEND_VERIFICATION errors wrapping the
// backend's diagnostics unchanged.
func CompileWith(expr string, be backend.Backend, opts Options) (*Result, error) {
	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}

	tree, err := parser.NewParser(expr, opts.Start).Parse()
	if err != nil {
		return nil, err
	}

	lowered, err := Lower(tree, be, opts.FunctionName)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "lower %q", expr)
	}

	if err := be.Verify(); err != nil {
		return nil, errors.BackendVerification(opts.ModuleName, err)
	}

	out, err := render(be, opts.Emit)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "render %s", opts.Emit)
	}

	return &Result{Tree: tree, Lowered: lowered, Output: out}, nil
}

func render(be backend.Backend, emit Emit) (string, error) {
	switch emit {
	case EmitLIR, EmitX64:
		b, ok := be.(*mir.Builder)
		if !ok {
			return "", pkgerrors.Errorf("emit %s needs the MIR backend, got %T", emit, be)
		}
		lm := SelectToLIR(b.Module())
		if emit == EmitLIR {
			return lm.String(), nil
		}
		return RenderX64(lm), nil
	default:
		return be.Render()
	}
}
