// Package watch compiles expression files, once or every time they change.
package watch

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/orizon-lang/exprir/internal/codegen"
	"github.com/orizon-lang/exprir/internal/position"
)

// Result is the outcome for one expression line of a file.
type Result struct {
	Pos        position.Position
	Expression string
	Output     string
	Arity      int
	Err        error
}

// CompileFile compiles every expression in path, one per line. Blank lines
// and lines starting with '#' are skipped. Each line is compiled into its
// own module; a failing line does not stop the others.
func CompileFile(path string, opts codegen.Options) ([]Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("watch: open %s: %w", path, err)
	}
	defer f.Close()

	var results []Result
	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		raw := strings.TrimRight(sc.Text(), " \t\r")
		expr := strings.TrimLeft(raw, " \t")
		if expr == "" || strings.HasPrefix(expr, "#") {
			continue
		}

		start := position.Position{Filename: path, Line: line, Column: len(raw) - len(expr) + 1}
		lineOpts := opts
		lineOpts.Start = start

		r := Result{Pos: start, Expression: expr}
		res, err := codegen.Compile(expr, lineOpts)
		if err != nil {
			r.Err = err
		} else {
			r.Output = res.Output
			r.Arity = res.Arity()
		}
		results = append(results, r)
	}
	if err := sc.Err(); err != nil {
		return results, fmt.Errorf("watch: read %s: %w", path, err)
	}
	return results, nil
}

// Failed counts the results that carry an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
