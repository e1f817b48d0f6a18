package main

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orizon-lang/exprir/internal/watch"
)

// watchEnv provides the environment for the watch command.
type watchEnv struct {
	root     *rootEnv
	flagOnce bool
}

func getWatchCmd(env *rootEnv) *cobra.Command {
	w := &watchEnv{root: env}
	ret := &cobra.Command{
		Use:   "watch <file>",
		Short: "Compile every expression in a file whenever it changes",
		Long: `
Compile each line of <file> as an expression and print the results. Blank
lines and lines starting with '#' are skipped. Leading and trailing spaces
and tabs on each line are ignored, so a space cannot be an operand in file
mode; use the compile command for such expressions. The file is recompiled
after every change until the command is interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: w.runWatchCmd,
	}
	ret.Flags().BoolVar(&w.flagOnce, "once", false, "Compile the file once and exit")
	return ret
}

func (w *watchEnv) runWatchCmd(cmd *cobra.Command, args []string) error {
	env := w.root
	opts, err := env.options()
	if err != nil {
		return err
	}
	path := args[0]

	if w.flagOnce {
		results, err := watch.CompileFile(path, opts)
		if err != nil {
			return err
		}
		if n := w.print(results); n > 0 {
			return fmt.Errorf("%d of %d expression(s) in %s failed", n, len(results), path)
		}
		return nil
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	env.log.Info("watching %s", path)
	err = watch.Watch(ctx, path, opts, func(results []watch.Result, err error) {
		if err != nil {
			env.log.Error("%v", err)
			return
		}
		w.print(results)
	})
	if stderrors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// print writes each successful result to stdout and logs each failure,
// returning the failure count.
func (w *watchEnv) print(results []watch.Result) int {
	env := w.root
	for _, r := range results {
		if r.Err != nil {
			env.log.Error("%v", r.Err)
			continue
		}
		fmt.Fprintf(env.stdout, "; %s %s\n%s", r.Pos, r.Expression, r.Output)
	}
	failed := watch.Failed(results)
	env.log.Info("%d compiled, %d failed", len(results)-failed, failed)
	return failed
}
