package sqlgen

import (
	"fmt"
	"strings"
)

// PostgresGenerator generates PostgreSQL SQL
type PostgresGenerator struct{}

var postgresDialect = dialect{quote: quoteDouble, placeholder: dollarPlaceholder}

func (g *PostgresGenerator) Provider() string { return "postgresql" }

func (g *PostgresGenerator) Quote(name string) string { return postgresDialect.Quote(name) }

func (g *PostgresGenerator) GenerateInsert(table string, columns []string, values []interface{}, returning string) *Query {
	sql, args := postgresDialect.insert(table, columns, values)
	// RETURNING for PostgreSQL
	if returning != "" {
		sql += " RETURNING " + quoteDouble(returning)
	}
	return &Query{SQL: sql, Args: args}
}

func (g *PostgresGenerator) GenerateBulkInsert(table string, columns []string, rows [][]interface{}) *Query {
	return postgresDialect.GenerateBulkInsert(table, columns, rows)
}

func (g *PostgresGenerator) GenerateUpdate(table string, columns []string, values []interface{}, where *WhereClause) *Query {
	return postgresDialect.GenerateUpdate(table, columns, values, where)
}

func (g *PostgresGenerator) GenerateSelect(table string, columns []string, where *WhereClause, limit int) *Query {
	return postgresDialect.GenerateSelect(table, columns, where, limit)
}

// GenerateMaxKey ignores forUpdate: PostgreSQL rejects FOR UPDATE with aggregates,
// and the table lock already covers the read.
func (g *PostgresGenerator) GenerateMaxKey(table, column string, forUpdate bool) *Query {
	return &Query{SQL: postgresDialect.maxKey(table, column)}
}

// GenerateLockTables takes EXCLUSIVE mode, which blocks concurrent writers and
// other EXCLUSIVE holders but still admits plain reads. Valid only inside a transaction.
func (g *PostgresGenerator) GenerateLockTables(locks []TableLock) string {
	if len(locks) == 0 {
		return ""
	}
	names := make([]string, len(locks))
	for i, l := range locks {
		names[i] = quoteDouble(l.Table)
	}
	return fmt.Sprintf("LOCK TABLE %s IN EXCLUSIVE MODE", strings.Join(names, ", "))
}

// GenerateUnlockTables returns "": PostgreSQL releases table locks at transaction end.
func (g *PostgresGenerator) GenerateUnlockTables() string { return "" }

func (g *PostgresGenerator) GenerateSavepoint(name string) string {
	return postgresDialect.GenerateSavepoint(name)
}

func (g *PostgresGenerator) GenerateReleaseSavepoint(name string) string {
	return postgresDialect.GenerateReleaseSavepoint(name)
}

func (g *PostgresGenerator) GenerateRollbackToSavepoint(name string) string {
	return postgresDialect.GenerateRollbackToSavepoint(name)
}
