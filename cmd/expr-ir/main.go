// Command expr-ir compiles a postfix integer expression into a function
// taking one i32 parameter per operand and prints its IR.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/orizon-lang/exprir/internal/cli"
	"github.com/orizon-lang/exprir/internal/codegen"
)

const usage = `usage: expr-ir <expression:(e.g.: "ab+cde+**")>`

// errUsage is returned when the positional arguments are wrong.
var errUsage = stderrors.New(usage)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	env := &rootEnv{stdout: stdout, stderr: stderr}
	root := getRootCmd(env)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return 0
	}
	if stderrors.Is(err, errUsage) {
		fmt.Fprintln(stderr, usage)
		return 1
	}
	if env.log != nil {
		env.log.Error("%v", err)
	} else {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	if env.flagDebug || (env.cfg != nil && env.cfg.Debug) {
		fmt.Fprintf(stderr, "%+v\n", err)
	}
	return 1
}

// rootEnv holds the flags shared by every subcommand and the state derived
// from them before a subcommand runs.
type rootEnv struct {
	stdout, stderr io.Writer

	flagConfig   string
	flagEmit     string
	flagModule   string
	flagFunction string
	flagVerbose  bool
	flagDebug    bool
	flagNoColor  bool

	cfg *cli.Config
	log *cli.Logger
}

func getRootCmd(env *rootEnv) *cobra.Command {
	compile := &compileEnv{root: env}

	root := &cobra.Command{
		Use:   "expr-ir <expression>",
		Short: "Compile a postfix expression into an i32 function",
		Long: `
Compile a postfix (reverse Polish) expression such as "ab+cde+**" into a
function with one i32 parameter per operand character. Operators are
+ - * / | & ^; every other character names an operand.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errUsage
			}
			return nil
		},
		PersistentPreRunE: env.setup,
		RunE:              compile.runCompileCmd,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&env.flagConfig, "config", "c", "", "YAML configuration file")
	pf.StringVarP(&env.flagEmit, "emit", "e", "", "Output form: llvm, mir, lir or x64")
	pf.StringVar(&env.flagModule, "module", "", "Module name (default exprFunc)")
	pf.StringVar(&env.flagFunction, "function", "", "Function name (default expression)")
	pf.BoolVarP(&env.flagVerbose, "verbose", "v", false, "Log progress to stderr")
	pf.BoolVar(&env.flagDebug, "debug", false, "Log debug output and error stacks")
	pf.BoolVar(&env.flagNoColor, "no-color", false, "Disable coloured log output")

	root.Flags().BoolVar(&compile.flagDumpTree, "dump-tree", false, "Print the parsed tree to stderr")
	root.Flags().BoolVar(&compile.flagBindings, "bindings", false, "Print the parameter binding table to stderr")

	root.AddCommand(getVersionCmd(env), getWatchCmd(env), getServeCmd(env))
	return root
}

// setup loads the configuration, applies flag overrides and creates the logger.
func (env *rootEnv) setup(cmd *cobra.Command, args []string) error {
	cfg, err := cli.LoadConfig(env.flagConfig)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("emit") {
		cfg.Emit = env.flagEmit
	}
	if flags.Changed("module") {
		cfg.ModuleName = env.flagModule
	}
	if flags.Changed("function") {
		cfg.FunctionName = env.flagFunction
	}
	cfg.Verbose = cfg.Verbose || env.flagVerbose
	cfg.Debug = cfg.Debug || env.flagDebug
	env.cfg = cfg

	colorize := cli.IsTerminal(env.stderr) && !env.flagNoColor
	if cfg.Color != nil {
		colorize = colorize && *cfg.Color
	}
	env.log = cli.NewLoggerTo(env.stderr, cfg.Verbose, cfg.Debug, colorize)
	if env.flagConfig != "" {
		env.log.Debug("loaded config %s", env.flagConfig)
	}
	return nil
}

// options returns the compile options after config and flags are merged.
func (env *rootEnv) options() (codegen.Options, error) {
	return env.cfg.Options()
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
