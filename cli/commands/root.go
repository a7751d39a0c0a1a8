// Package commands implements the prisma-bulk CLI.
package commands

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/satishbabariya/prisma-bulk/cli/internal/config"
	"github.com/satishbabariya/prisma-bulk/cli/internal/ui"
	"github.com/satishbabariya/prisma-bulk/cli/internal/version"
	"github.com/satishbabariya/prisma-bulk/internal/debug"
)

// app is the state shared by every command of one invocation
type app struct {
	v   *viper.Viper
	cfg *config.Config
}

// NewRootCommand builds the command tree. Each call has its own viper
// instance so tests can run commands side by side.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}
	var noColor bool

	rootCmd := &cobra.Command{
		Use:   "prisma-bulk",
		Short: "Bulk-load rows into SQL tables",
		Long: `prisma-bulk seeds PostgreSQL, MySQL and SQLite tables from JSON, JSON lines
and CSV files. Rows are grouped into multi-row inserts, keys are allocated up
front and every commit runs inside one transaction.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if noColor || !isatty.IsTerminal(os.Stdout.Fd()) {
				ui.DisableColor()
			}
			if err := config.SetDefaults(a.v); err != nil {
				return err
			}
			cfg, err := config.Load(a.v)
			if err != nil {
				return err
			}
			a.cfg = cfg
			debug.Init(cfg.Debug)
			debug.Debug("configuration loaded", "provider", cfg.Provider, "config", a.v.ConfigFileUsed())
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("provider", "", "Database provider: postgresql, mysql or sqlite (detected from the URL when empty)")
	flags.String("database-url", "", "Connection string (defaults to DATABASE_URL)")
	flags.Bool("debug", false, "Log every statement and commit stage")
	flags.Bool("use-table-locks", true, "Lock tables for the duration of each commit")
	flags.Bool("use-transactions", true, "Run each commit in a transaction or savepoint")
	flags.Int("max-rows-to-insert", 0, "Maximum rows per INSERT statement")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")

	bindFlag(a.v, "provider", flags.Lookup("provider"))
	bindFlag(a.v, "database_url", flags.Lookup("database-url"))
	bindFlag(a.v, "debug", flags.Lookup("debug"))
	bindFlag(a.v, "use_table_locks", flags.Lookup("use-table-locks"))
	bindFlag(a.v, "use_transaction_when_available", flags.Lookup("use-transactions"))
	bindFlag(a.v, "max_rows_to_insert", flags.Lookup("max-rows-to-insert"))

	rootCmd.AddCommand(newSeedCommand(a))
	rootCmd.AddCommand(newInspectCommand(a))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the CLI with os.Args
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("%v", err)
		return err
	}
	return nil
}

func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}
