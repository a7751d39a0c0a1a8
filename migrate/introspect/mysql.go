package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// MySQLIntrospector implements introspection for MySQL
type MySQLIntrospector struct{}

// Provider returns "mysql"
func (i *MySQLIntrospector) Provider() string { return "mysql" }

// Table reads a table from information_schema. Unqualified names resolve
// against DATABASE().
func (i *MySQLIntrospector) Table(ctx context.Context, q Querier, name string) (*Table, error) {
	schema, tableName := splitName(name)

	columns, err := i.columns(ctx, q, schema, tableName)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	pk, err := scanPrimaryKey(ctx, q, `
		SELECT
			constraint_name,
			GROUP_CONCAT(column_name ORDER BY ordinal_position)
		FROM information_schema.key_column_usage
		WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE())
		  AND table_name = ?
		  AND constraint_name = 'PRIMARY'
		GROUP BY constraint_name
	`, schema, tableName)
	if err != nil {
		return nil, err
	}

	return &Table{Name: tableName, Schema: schema, Columns: columns, PrimaryKey: pk}, nil
}

func (i *MySQLIntrospector) columns(ctx context.Context, q Querier, schema, tableName string) ([]Column, error) {
	query := `
		SELECT
			column_name,
			column_type,
			is_nullable,
			column_default,
			extra
		FROM information_schema.columns
		WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE())
		  AND table_name = ?
		ORDER BY ordinal_position
	`

	rows, err := q.QueryContext(ctx, query, schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var col Column
		var isNullable, extra string
		var defaultValue sql.NullString

		if err := rows.Scan(&col.Name, &col.Type, &isNullable, &defaultValue, &extra); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}

		col.Nullable = isNullable == "YES"
		if defaultValue.Valid && defaultValue.String != "" {
			col.DefaultValue = &defaultValue.String
		}
		col.AutoIncrement = strings.Contains(strings.ToLower(extra), "auto_increment")

		columns = append(columns, col)
	}

	return columns, rows.Err()
}
