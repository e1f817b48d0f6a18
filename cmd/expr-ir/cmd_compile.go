package main

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/orizon-lang/exprir/internal/ast"
	"github.com/orizon-lang/exprir/internal/codegen"
)

// compileEnv provides the environment for the root compile command.
type compileEnv struct {
	root *rootEnv

	flagDumpTree bool
	flagBindings bool
}

// runCompileCmd compiles the single expression argument and prints it.
func (c *compileEnv) runCompileCmd(cmd *cobra.Command, args []string) error {
	env := c.root
	opts, err := env.options()
	if err != nil {
		return err
	}

	env.log.Debug("compiling %q as %s", args[0], opts.Emit)
	res, err := codegen.Compile(args[0], opts)
	if err != nil {
		return err
	}
	env.log.Info("%s: %d parameter(s), %d instruction(s)", opts.FunctionName, res.Arity(), len(res.Lowered.Opcodes)+1)

	if c.flagDumpTree {
		if err := ast.Dump(env.stderr, res.Tree.Root); err != nil {
			return err
		}
		fmt.Fprint(env.stderr, ast.PrettyPrint(res.Tree.Root))
	}

	if c.flagBindings {
		table := tablewriter.NewWriter(env.stderr)
		table.SetHeader([]string{"Param", "Operand"})
		table.SetAutoFormatHeaders(false)
		for _, b := range res.Lowered.Bindings {
			table.Append([]string{strconv.Itoa(b.Param), string([]byte{b.Name})})
		}
		table.Render()
	}

	_, err = fmt.Fprint(env.stdout, res.Output)
	return err
}
