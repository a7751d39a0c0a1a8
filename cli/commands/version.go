package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/prisma-bulk/cli/internal/version"
)

func newVersionCommand() *cobra.Command {
	var (
		require string
		short   bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Display version information. With --require, exit non-zero unless the version satisfies the constraint.",
		Example: `  prisma-bulk version
  prisma-bulk version --require ">= 0.1, < 1.0"`,
		// version never needs the database configuration
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			if require != "" {
				if err := version.Require(require); err != nil {
					return err
				}
			}
			info := version.Get()
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), info.String())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), info.FullString())
			return nil
		},
	}

	cmd.Flags().StringVar(&require, "require", "", "Version constraint the CLI must satisfy")
	cmd.Flags().BoolVar(&short, "short", false, "Print a single line")

	return cmd
}
