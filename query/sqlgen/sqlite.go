package sqlgen

// SQLiteGenerator generates SQLite SQL
type SQLiteGenerator struct{}

var sqliteDialect = dialect{quote: quoteDouble, placeholder: questionPlaceholder}

func (g *SQLiteGenerator) Provider() string { return "sqlite" }

func (g *SQLiteGenerator) Quote(name string) string { return sqliteDialect.Quote(name) }

// GenerateInsert supports RETURNING (SQLite 3.35+).
func (g *SQLiteGenerator) GenerateInsert(table string, columns []string, values []interface{}, returning string) *Query {
	sql, args := sqliteDialect.insert(table, columns, values)
	if returning != "" {
		sql += " RETURNING " + quoteDouble(returning)
	}
	return &Query{SQL: sql, Args: args}
}

func (g *SQLiteGenerator) GenerateBulkInsert(table string, columns []string, rows [][]interface{}) *Query {
	return sqliteDialect.GenerateBulkInsert(table, columns, rows)
}

func (g *SQLiteGenerator) GenerateUpdate(table string, columns []string, values []interface{}, where *WhereClause) *Query {
	return sqliteDialect.GenerateUpdate(table, columns, values, where)
}

func (g *SQLiteGenerator) GenerateSelect(table string, columns []string, where *WhereClause, limit int) *Query {
	return sqliteDialect.GenerateSelect(table, columns, where, limit)
}

func (g *SQLiteGenerator) GenerateMaxKey(table, column string, forUpdate bool) *Query {
	return &Query{SQL: sqliteDialect.maxKey(table, column)}
}

// SQLite locks the whole database for writing; there is no table lock statement.
func (g *SQLiteGenerator) GenerateLockTables(locks []TableLock) string { return "" }

func (g *SQLiteGenerator) GenerateUnlockTables() string { return "" }

func (g *SQLiteGenerator) GenerateSavepoint(name string) string {
	return sqliteDialect.GenerateSavepoint(name)
}

func (g *SQLiteGenerator) GenerateReleaseSavepoint(name string) string {
	return sqliteDialect.GenerateReleaseSavepoint(name)
}

func (g *SQLiteGenerator) GenerateRollbackToSavepoint(name string) string {
	return sqliteDialect.GenerateRollbackToSavepoint(name)
}
