package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// SQLiteIntrospector implements introspection for SQLite
type SQLiteIntrospector struct{}

// Provider returns "sqlite"
func (i *SQLiteIntrospector) Provider() string { return "sqlite" }

// Table reads a table through PRAGMA table_info
func (i *SQLiteIntrospector) Table(ctx context.Context, q Querier, name string) (*Table, error) {
	schema, tableName := splitName(name)
	if schema == "" {
		schema = "main"
	}

	query := fmt.Sprintf("PRAGMA %s.table_info(%s)", quoteSQLite(schema), quoteSQLite(tableName))
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIntrospectionFailed, name, err)
	}
	defer rows.Close()

	table := &Table{Name: tableName, Schema: schema}
	type pkPart struct {
		pos  int
		name string
	}
	var pk []pkPart
	rawTypes := map[string]string{}

	for rows.Next() {
		var cid, notNull, pkPos int
		var col Column
		var colType string
		var dfltValue sql.NullString

		if err := rows.Scan(&cid, &col.Name, &colType, &notNull, &dfltValue, &pkPos); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}

		col.Type = mapSQLiteType(colType)
		col.Nullable = notNull == 0
		if dfltValue.Valid && dfltValue.String != "" {
			col.DefaultValue = &dfltValue.String
		}
		if pkPos > 0 {
			pk = append(pk, pkPart{pos: pkPos, name: col.Name})
		}
		rawTypes[col.Name] = colType
		table.Columns = append(table.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	if len(pk) > 0 {
		sort.Slice(pk, func(a, b int) bool { return pk[a].pos < pk[b].pos })
		table.PrimaryKey = &PrimaryKey{Name: tableName + "_pkey"}
		for _, p := range pk {
			table.PrimaryKey.Columns = append(table.PrimaryKey.Columns, p.name)
		}
		// Only a lone INTEGER PRIMARY KEY aliases the rowid
		if len(pk) == 1 && strings.EqualFold(strings.TrimSpace(rawTypes[pk[0].name]), "INTEGER") {
			table.Column(pk[0].name).AutoIncrement = true
		}
	}

	return table, nil
}

// mapSQLiteType maps SQLite data types to generic types
func mapSQLiteType(sqliteType string) string {
	upperType := strings.ToUpper(sqliteType)

	switch {
	case strings.Contains(upperType, "INT"):
		return "INTEGER"
	case strings.Contains(upperType, "CHAR"), strings.Contains(upperType, "TEXT"), strings.Contains(upperType, "CLOB"):
		return "TEXT"
	case strings.Contains(upperType, "BLOB"):
		return "BLOB"
	case strings.Contains(upperType, "REAL"), strings.Contains(upperType, "FLOA"), strings.Contains(upperType, "DOUB"):
		return "REAL"
	case strings.Contains(upperType, "NUMERIC"), strings.Contains(upperType, "DECIMAL"):
		return "NUMERIC"
	default:
		return sqliteType
	}
}

func quoteSQLite(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
