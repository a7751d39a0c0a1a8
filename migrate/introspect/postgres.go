package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PostgresIntrospector implements introspection for PostgreSQL
type PostgresIntrospector struct{}

// Provider returns "postgresql"
func (i *PostgresIntrospector) Provider() string { return "postgresql" }

// Table reads a table from information_schema. Unqualified names resolve
// against current_schema().
func (i *PostgresIntrospector) Table(ctx context.Context, q Querier, name string) (*Table, error) {
	schema, tableName := splitName(name)

	if schema == "" {
		rows, err := q.QueryContext(ctx, "SELECT current_schema()")
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrIntrospectionFailed, name, err)
		}
		if rows.Next() {
			err = rows.Scan(&schema)
		}
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrIntrospectionFailed, name, err)
		}
	}

	columns, err := i.columns(ctx, q, schema, tableName)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	pk, err := i.primaryKey(ctx, q, schema, tableName)
	if err != nil {
		return nil, err
	}

	return &Table{Name: tableName, Schema: schema, Columns: columns, PrimaryKey: pk}, nil
}

func (i *PostgresIntrospector) columns(ctx context.Context, q Querier, schema, tableName string) ([]Column, error) {
	query := `
		SELECT
			column_name,
			data_type,
			is_nullable,
			column_default,
			is_identity
		FROM information_schema.columns
		WHERE table_schema = $1
		  AND table_name = $2
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
		var isNullable, isIdentity string
		var defaultValue sql.NullString

		if err := rows.Scan(&col.Name, &col.Type, &isNullable, &defaultValue, &isIdentity); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}

		col.Nullable = isNullable == "YES"
		if defaultValue.Valid && defaultValue.String != "" {
			col.DefaultValue = &defaultValue.String
		}
		col.AutoIncrement = isIdentity == "YES" || isSequenceDefault(defaultValue.String)

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func (i *PostgresIntrospector) primaryKey(ctx context.Context, q Querier, schema, tableName string) (*PrimaryKey, error) {
	query := `
		SELECT
			tc.constraint_name,
			string_agg(kcu.column_name, ',' ORDER BY kcu.ordinal_position)
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
			AND tc.table_name = kcu.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema = $1
		  AND tc.table_name = $2
		GROUP BY tc.constraint_name
	`

	return scanPrimaryKey(ctx, q, query, schema, tableName)
}

// isSequenceDefault reports whether a column default draws from a sequence,
// which covers serial and bigserial columns
func isSequenceDefault(defaultValue string) bool {
	return strings.HasPrefix(strings.ToLower(defaultValue), "nextval(")
}

// scanPrimaryKey runs a query returning (constraint name, comma separated columns)
func scanPrimaryKey(ctx context.Context, q Querier, query string, args ...interface{}) (*PrimaryKey, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query primary key: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var pk PrimaryKey
	var columns string
	if err := rows.Scan(&pk.Name, &columns); err != nil {
		return nil, fmt.Errorf("failed to scan primary key: %w", err)
	}
	pk.Columns = strings.Split(columns, ",")
	return &pk, rows.Err()
}
