// Package introspect reads table key metadata from a live database.
package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Querier is satisfied by *sql.DB, *sql.Conn, *sql.Tx and client sessions
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Introspector reads the shape of a single table
type Introspector interface {
	Provider() string
	Table(ctx context.Context, q Querier, name string) (*Table, error)
}

// Table represents a database table
type Table struct {
	Name       string
	Schema     string
	Columns    []Column
	PrimaryKey *PrimaryKey
}

// Column represents a table column
type Column struct {
	Name          string
	Type          string
	Nullable      bool
	DefaultValue  *string
	AutoIncrement bool
}

// PrimaryKey represents a primary key constraint
type PrimaryKey struct {
	Name    string
	Columns []string
}

// Column returns the named column, or nil
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// AutoIncrementKey returns the single-column primary key when the database
// generates its values
func (t *Table) AutoIncrementKey() (string, bool) {
	if t.PrimaryKey == nil || len(t.PrimaryKey.Columns) != 1 {
		return "", false
	}
	col := t.Column(t.PrimaryKey.Columns[0])
	if col == nil || !col.AutoIncrement {
		return "", false
	}
	return col.Name, true
}

// NewIntrospector creates a new introspector for the given provider
func NewIntrospector(provider string) (Introspector, error) {
	switch provider {
	case "postgresql", "postgres":
		return &PostgresIntrospector{}, nil
	case "mysql":
		return &MySQLIntrospector{}, nil
	case "sqlite", "sqlite3":
		return &SQLiteIntrospector{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
}

// splitName separates an optional schema qualifier from a table name
func splitName(name string) (schema, table string) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}
