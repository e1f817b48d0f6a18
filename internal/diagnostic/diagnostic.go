// Diagnostics produced by backend verifiers.

package diagnostic

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Diagnostic represents a single verifier finding inside a function.
type Diagnostic struct {
	Code     string
	Message  string
	Function string
	Block    string
	// Index of the offending instruction within Block, -1 when not applicable.
	Instr int
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "error[%s]", d.Code)
	if d.Function != "" {
		fmt.Fprintf(&b, " @%s", d.Function)
	}
	if d.Block != "" {
		fmt.Fprintf(&b, " %s", d.Block)
		if d.Instr >= 0 {
			fmt.Fprintf(&b, "#%d", d.Instr)
		}
	}
	fmt.Fprintf(&b, ": %s", d.Message)
	return b.String()
}

// DiagnosticBuilder helps construct diagnostic messages with fluent API.
type DiagnosticBuilder struct {
	diagnostic *Diagnostic
}

// NewDiagnostic creates a new diagnostic builder.
func NewDiagnostic() *DiagnosticBuilder {
	return &DiagnosticBuilder{diagnostic: &Diagnostic{Instr: -1}}
}

func (db *DiagnosticBuilder) Code(code string) *DiagnosticBuilder {
	db.diagnostic.Code = code

	return db
}

func (db *DiagnosticBuilder) Message(format string, args ...interface{}) *DiagnosticBuilder {
	db.diagnostic.Message = fmt.Sprintf(format, args...)

	return db
}

func (db *DiagnosticBuilder) At(function, block string, instr int) *DiagnosticBuilder {
	db.diagnostic.Function = function
	db.diagnostic.Block = block
	db.diagnostic.Instr = instr

	return db
}

func (db *DiagnosticBuilder) Build() *Diagnostic {
	return db.diagnostic
}

// List accumulates diagnostics in discovery order.
type List struct {
	result *multierror.Error
}

func (l *List) Add(d *Diagnostic) { l.result = multierror.Append(l.result, d) }

// Err folds the recorded diagnostics into a single error, or nil.
func (l *List) Err() error {
	if l.result == nil {
		return nil
	}
	l.result.ErrorFormat = formatList
	return l.result.ErrorOrNil()
}

func formatList(errs []error) string {
	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		lines = append(lines, e.Error())
	}
	return strings.Join(lines, "\n")
}
