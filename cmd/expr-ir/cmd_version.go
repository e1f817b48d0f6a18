package main

import (
	"github.com/spf13/cobra"

	"github.com/orizon-lang/exprir/internal/cli"
)

func getVersionCmd(env *rootEnv) *cobra.Command {
	var jsonOutput bool
	ret := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.PrintVersion(env.stdout, "expr-ir", jsonOutput)
		},
	}
	ret.Flags().BoolVar(&jsonOutput, "json", false, "Print version information as JSON")
	return ret
}
