package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/prisma-bulk/cli/internal/ui"
	"github.com/satishbabariya/prisma-bulk/runtime/client"
)

func newInspectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <table>...",
		Short: "Show how tables will be seeded",
		Long:  "Print the columns, key column and current maximum key of each table.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openClient(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer c.Disconnect(ctx)

			rows, err := inspectTables(ctx, c, args)
			if err != nil {
				return err
			}
			ui.PrintKeyValue("Provider", c.Provider(), "Tables", fmt.Sprint(len(rows)))
			return ui.PrintTable([]string{"Table", "Columns", "Key", "Max key"}, rows)
		},
	}
}

// inspectTables describes each table as one row of Table, Columns, Key and
// Max key. Key is "-" when the database does not generate keys for the table.
func inspectTables(ctx context.Context, c *client.PrismaClient, tables []string) ([][]string, error) {
	sess, err := c.Session(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	catalog := sess.Catalog()
	rows := make([][]string, 0, len(tables))
	for _, table := range tables {
		t, err := catalog.Describe(ctx, table)
		if err != nil {
			return nil, err
		}

		names := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			names[i] = col.Name
		}

		key, maxKey := "-", "-"
		if column, ok := t.AutoIncrementKey(); ok {
			key = column
			n, found, err := sess.MaxKey(ctx, table, column)
			if err != nil {
				return nil, err
			}
			maxKey = "empty"
			if found {
				maxKey = fmt.Sprint(n)
			}
		}

		rows = append(rows, []string{table, strings.Join(names, ", "), key, maxKey})
	}
	return rows, nil
}
