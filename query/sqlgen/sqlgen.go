// Package sqlgen generates SQL for different database providers.
package sqlgen

import (
	"fmt"
	"strings"
)

// Query represents a SQL query with arguments
type Query struct {
	SQL  string
	Args []interface{}
}

// TableLock is one table in a combined lock statement
type TableLock struct {
	Table string
	Mode  string // "WRITE"
}

// Generator generates SQL for a specific provider
type Generator interface {
	// Provider returns the canonical provider name
	Provider() string

	// Quote quotes an identifier
	Quote(name string) string

	// GenerateInsert builds a single-row INSERT. When returning is set and
	// the provider supports it, the statement returns that column.
	GenerateInsert(table string, columns []string, values []interface{}, returning string) *Query

	// GenerateBulkInsert builds one INSERT with a VALUES tuple per row
	GenerateBulkInsert(table string, columns []string, rows [][]interface{}) *Query

	// GenerateUpdate builds an UPDATE of columns filtered by where
	GenerateUpdate(table string, columns []string, values []interface{}, where *WhereClause) *Query

	// GenerateSelect builds a SELECT of columns (all when empty)
	GenerateSelect(table string, columns []string, where *WhereClause, limit int) *Query

	// GenerateMaxKey builds a MAX(column) read. forUpdate asks for row locks
	// where the provider allows them on aggregates.
	GenerateMaxKey(table, column string, forUpdate bool) *Query

	// GenerateLockTables returns the combined lock statement, or "" when the
	// provider has no table lock statement
	GenerateLockTables(locks []TableLock) string

	// GenerateUnlockTables returns the unlock statement, or "" when locks are
	// released at transaction end
	GenerateUnlockTables() string

	// GenerateSavepoint returns SAVEPOINT name
	GenerateSavepoint(name string) string

	// GenerateReleaseSavepoint returns RELEASE SAVEPOINT name
	GenerateReleaseSavepoint(name string) string

	// GenerateRollbackToSavepoint returns ROLLBACK TO SAVEPOINT name
	GenerateRollbackToSavepoint(name string) string
}

// NewGenerator creates a new SQL generator for the given provider
func NewGenerator(provider string) (Generator, error) {
	switch provider {
	case "postgresql", "postgres":
		return &PostgresGenerator{}, nil
	case "mysql":
		return &MySQLGenerator{}, nil
	case "sqlite", "sqlite3":
		return &SQLiteGenerator{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
}

// dialect holds the pieces that differ between providers
type dialect struct {
	quote       func(string) string
	placeholder func(int) string
}

func (d dialect) Quote(name string) string {
	return d.quote(name)
}

func (d dialect) quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.quote(n)
	}
	return strings.Join(quoted, ", ")
}

func (d dialect) insert(table string, columns []string, values []interface{}) (string, []interface{}) {
	argIndex := 1
	placeholders := make([]string, len(values))
	for i := range values {
		placeholders[i] = d.placeholder(argIndex)
		argIndex++
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.quote(table), d.quoteAll(columns), strings.Join(placeholders, ", "))
	return sql, values
}

func (d dialect) GenerateBulkInsert(table string, columns []string, rows [][]interface{}) *Query {
	var sb strings.Builder
	args := make([]interface{}, 0, len(rows)*len(columns))
	argIndex := 1

	sb.WriteString("INSERT INTO ")
	sb.WriteString(d.quote(table))
	sb.WriteString(" (")
	sb.WriteString(d.quoteAll(columns))
	sb.WriteString(") VALUES ")

	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j, v := range row {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(d.placeholder(argIndex))
			args = append(args, v)
			argIndex++
		}
		sb.WriteByte(')')
	}

	return &Query{SQL: sb.String(), Args: args}
}

func (d dialect) GenerateUpdate(table string, columns []string, values []interface{}, where *WhereClause) *Query {
	var parts []string
	var args []interface{}
	argIndex := 1

	parts = append(parts, fmt.Sprintf("UPDATE %s", d.quote(table)))

	setParts := make([]string, len(columns))
	for i, col := range columns {
		setParts[i] = fmt.Sprintf("%s = %s", d.quote(col), d.placeholder(argIndex))
		args = append(args, values[i])
		argIndex++
	}
	parts = append(parts, "SET "+strings.Join(setParts, ", "))

	if whereSQL, whereArgs := buildWhere(where, &argIndex, d.placeholder, d.quote); whereSQL != "" {
		parts = append(parts, "WHERE "+whereSQL)
		args = append(args, whereArgs...)
	} else {
		// Never update every row by accident
		parts = append(parts, "WHERE 1=0")
	}

	return &Query{SQL: strings.Join(parts, " "), Args: args}
}

func (d dialect) GenerateSelect(table string, columns []string, where *WhereClause, limit int) *Query {
	var parts []string
	var args []interface{}
	argIndex := 1

	if len(columns) == 0 {
		parts = append(parts, "SELECT *")
	} else {
		parts = append(parts, "SELECT "+d.quoteAll(columns))
	}
	parts = append(parts, "FROM "+d.quote(table))

	if whereSQL, whereArgs := buildWhere(where, &argIndex, d.placeholder, d.quote); whereSQL != "" {
		parts = append(parts, "WHERE "+whereSQL)
		args = append(args, whereArgs...)
	}

	if limit > 0 {
		parts = append(parts, "LIMIT "+d.placeholder(argIndex))
		args = append(args, limit)
	}

	return &Query{SQL: strings.Join(parts, " "), Args: args}
}

func (d dialect) maxKey(table, column string) string {
	return fmt.Sprintf("SELECT MAX(%s) FROM %s", d.quote(column), d.quote(table))
}

func (d dialect) GenerateSavepoint(name string) string {
	return "SAVEPOINT " + d.quote(name)
}

func (d dialect) GenerateReleaseSavepoint(name string) string {
	return "RELEASE SAVEPOINT " + d.quote(name)
}

func (d dialect) GenerateRollbackToSavepoint(name string) string {
	return "ROLLBACK TO SAVEPOINT " + d.quote(name)
}

// quoteParts quotes each dot-separated part of a possibly schema-qualified name
func quoteParts(name, q string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = q + strings.ReplaceAll(p, q, q+q) + q
	}
	return strings.Join(parts, ".")
}

func quoteDouble(name string) string {
	return quoteParts(name, `"`)
}

func quoteBacktick(name string) string {
	return quoteParts(name, "`")
}

func questionPlaceholder(int) string {
	return "?"
}

func dollarPlaceholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
