// Package errors provides standardized error messaging for expr-ir
package errors

import (
	"fmt"
	"runtime"

	"github.com/orizon-lang/exprir/internal/position"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategorySyntax  ErrorCategory = "SYNTAX"
	CategoryBackend ErrorCategory = "BACKEND"
	CategoryConfig  ErrorCategory = "CONFIG"
	CategoryUsage   ErrorCategory = "USAGE"
)

// Error codes understood by callers.
const (
	CodeMalformedExpression = "MALFORMED_EXPRESSION"
	CodeBackendVerification = "BACKEND_VERIFICATION"
	CodeUnsupportedEmit     = "UNSUPPORTED_EMIT"
	CodeVersionMismatch     = "VERSION_MISMATCH"
)

// Sentinels for errors.Is matching; only Category and Code are compared.
var (
	ErrMalformedExpression = &StandardError{Category: CategorySyntax, Code: CodeMalformedExpression}
	ErrBackendVerification = &StandardError{Category: CategoryBackend, Code: CodeBackendVerification}
)

// StandardError provides a consistent error format
type StandardError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Context  map[string]interface{}
	Caller   string
	Cause    error
}

// Error implements the error interface
func (e *StandardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error { return e.Cause }

// Is reports whether target is a StandardError with the same category and code.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// NewStandardError creates a new standardized error
func NewStandardError(category ErrorCategory, code, message string, context map[string]interface{}) *StandardError {
	pc, _, _, ok := runtime.Caller(1)
	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &StandardError{
		Category: category,
		Code:     code,
		Message:  message,
		Context:  context,
		Caller:   caller,
	}
}

// MalformedExpression reports a postfix string that does not reduce to exactly one tree.
func MalformedExpression(expr string, pos position.Position, reason string) *StandardError {
	return NewStandardError(CategorySyntax, CodeMalformedExpression,
		fmt.Sprintf("malformed expression %q at %s: %s", expr, pos, reason),
		map[string]interface{}{"expression": expr, "offset": pos.Offset, "position": pos, "reason": reason})
}

// BackendVerification wraps the diagnostics of a rejected module verbatim.
func BackendVerification(module string, diags error) *StandardError {
	e := NewStandardError(CategoryBackend, CodeBackendVerification,
		fmt.Sprintf("module %s failed verification", module),
		map[string]interface{}{"module": module})
	e.Cause = diags
	return e
}

func UnsupportedEmit(kind string) *StandardError {
	return NewStandardError(CategoryUsage, CodeUnsupportedEmit,
		fmt.Sprintf("unsupported emit kind %q (want llvm, mir, lir or x64)", kind),
		map[string]interface{}{"emit": kind})
}

func VersionMismatch(version, constraint string) *StandardError {
	return NewStandardError(CategoryConfig, CodeVersionMismatch,
		fmt.Sprintf("tool version %s does not satisfy %q", version, constraint),
		map[string]interface{}{"version": version, "constraint": constraint})
}
