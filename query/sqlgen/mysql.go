package sqlgen

import (
	"fmt"
	"strings"
)

// MySQLGenerator generates MySQL SQL
type MySQLGenerator struct{}

var mysqlDialect = dialect{quote: quoteBacktick, placeholder: questionPlaceholder}

func (g *MySQLGenerator) Provider() string { return "mysql" }

func (g *MySQLGenerator) Quote(name string) string { return mysqlDialect.Quote(name) }

// GenerateInsert ignores returning; callers read LastInsertId instead.
func (g *MySQLGenerator) GenerateInsert(table string, columns []string, values []interface{}, returning string) *Query {
	sql, args := mysqlDialect.insert(table, columns, values)
	return &Query{SQL: sql, Args: args}
}

func (g *MySQLGenerator) GenerateBulkInsert(table string, columns []string, rows [][]interface{}) *Query {
	return mysqlDialect.GenerateBulkInsert(table, columns, rows)
}

func (g *MySQLGenerator) GenerateUpdate(table string, columns []string, values []interface{}, where *WhereClause) *Query {
	return mysqlDialect.GenerateUpdate(table, columns, values, where)
}

func (g *MySQLGenerator) GenerateSelect(table string, columns []string, where *WhereClause, limit int) *Query {
	return mysqlDialect.GenerateSelect(table, columns, where, limit)
}

func (g *MySQLGenerator) GenerateMaxKey(table, column string, forUpdate bool) *Query {
	sql := mysqlDialect.maxKey(table, column)
	if forUpdate {
		sql += " FOR UPDATE"
	}
	return &Query{SQL: sql}
}

func (g *MySQLGenerator) GenerateLockTables(locks []TableLock) string {
	if len(locks) == 0 {
		return ""
	}
	parts := make([]string, len(locks))
	for i, l := range locks {
		mode := l.Mode
		if mode == "" {
			mode = "WRITE"
		}
		parts[i] = fmt.Sprintf("%s %s", quoteBacktick(l.Table), mode)
	}
	return "LOCK TABLES " + strings.Join(parts, ", ")
}

func (g *MySQLGenerator) GenerateUnlockTables() string { return "UNLOCK TABLES" }

func (g *MySQLGenerator) GenerateSavepoint(name string) string {
	return mysqlDialect.GenerateSavepoint(name)
}

func (g *MySQLGenerator) GenerateReleaseSavepoint(name string) string {
	return mysqlDialect.GenerateReleaseSavepoint(name)
}

func (g *MySQLGenerator) GenerateRollbackToSavepoint(name string) string {
	return mysqlDialect.GenerateRollbackToSavepoint(name)
}
