package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"latte/internal/config"
)

// newInitCmd creates the command that writes a default latte.yaml.
func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a latte.yaml with the default options",
		Long: `Writes the default run options to latte.yaml in the given directory,
or in the current directory. An existing latte.yaml is never overwritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path, err := config.Init(dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}
}
