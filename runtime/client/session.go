package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/satishbabariya/prisma-bulk/migrate/introspect"
	"github.com/satishbabariya/prisma-bulk/query/sqlgen"
	"github.com/satishbabariya/prisma-bulk/runtime/bulk"
	"github.com/satishbabariya/prisma-bulk/runtime/types"
)

// Session is a single pinned connection. Every statement, transaction and
// table lock of a session runs on that connection, which is what table locks
// and savepoints need. A Session is not safe for concurrent use.
type Session struct {
	client      *PrismaClient
	conn        *sql.Conn
	tx          *sql.Tx
	savepoints  int
	locked      bool
	closed      bool
	middlewares []Middleware
	log         *slog.Logger
}

var _ bulk.Store = (*Session)(nil)

// Provider returns the canonical provider name
func (s *Session) Provider() string {
	return s.client.provider
}

// Generator returns the SQL generator for the provider
func (s *Session) Generator() sqlgen.Generator {
	return s.client.gen
}

// Catalog returns the client's catalog reading through this session
func (s *Session) Catalog() *introspect.Catalog {
	return s.client.catalog.Through(s)
}

// NewSaver creates a bulk saver writing through this session
func (s *Session) NewSaver(opts ...bulk.Option) (*bulk.Saver, error) {
	return bulk.NewSaver(s, s.Catalog(), opts...)
}

// ExecContext runs a statement inside the open transaction, if any
func (s *Session) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}

	var res sql.Result
	err := runMiddleware(ctx, s.middlewares, query, args, func() error {
		var err error
		if s.tx != nil {
			res, err = s.tx.ExecContext(ctx, query, args...)
		} else {
			res, err = s.conn.ExecContext(ctx, query, args...)
		}
		return err
	})
	return res, err
}

// QueryContext runs a query inside the open transaction, if any
func (s *Session) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}

	var rows *sql.Rows
	err := runMiddleware(ctx, s.middlewares, query, args, func() error {
		var err error
		if s.tx != nil {
			rows, err = s.tx.QueryContext(ctx, query, args...)
		} else {
			rows, err = s.conn.QueryContext(ctx, query, args...)
		}
		return err
	})
	return rows, err
}

// MaxKey reads MAX(column) from table. Inside a MySQL transaction the read
// locks the index so concurrent writers wait for this one.
func (s *Session) MaxKey(ctx context.Context, table, column string) (int64, bool, error) {
	forUpdate := s.client.provider == "mysql" && s.InTransaction()
	q := s.client.gen.GenerateMaxKey(table, column, forUpdate)

	rows, err := s.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return 0, false, err
	}
	defer rows.Close()

	var max sql.NullInt64
	if rows.Next() {
		if err := rows.Scan(&max); err != nil {
			return 0, false, fmt.Errorf("scan max %s.%s: %w", table, column, err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, false, err
	}
	return max.Int64, max.Valid, nil
}

// InsertRows executes one multi-row INSERT
func (s *Session) InsertRows(ctx context.Context, table string, columns []string, rows [][]types.Value) error {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, v := range row {
			values[i][j] = v.Driver()
		}
	}

	q := s.client.gen.GenerateBulkInsert(table, columns, values)
	_, err := s.ExecContext(ctx, q.SQL, q.Args...)
	return err
}

// LockTables takes one combined write lock over the planned tables.
//
// MySQL LOCK TABLES commits any open transaction, so inside a transaction no
// lock statement is issued and MaxKey reads FOR UPDATE instead. PostgreSQL
// holds table locks until the transaction ends and refuses them outside one.
// SQLite transactions already hold the database write lock.
func (s *Session) LockTables(ctx context.Context, plan bulk.LockPlan) error {
	if plan.Len() == 0 {
		return nil
	}

	switch s.client.provider {
	case "mysql":
		if s.InTransaction() {
			return nil
		}
	case "postgresql":
		if !s.InTransaction() {
			return ErrLockRequiresTransaction
		}
	}

	locks := make([]sqlgen.TableLock, 0, plan.Len())
	for _, e := range plan.Entries() {
		locks = append(locks, sqlgen.TableLock{Table: e.Table, Mode: string(e.Mode)})
	}

	stmt := s.client.gen.GenerateLockTables(locks)
	if stmt == "" {
		return nil
	}
	if _, err := s.ExecContext(ctx, stmt); err != nil {
		return err
	}
	s.locked = s.client.gen.GenerateUnlockTables() != ""
	return nil
}

// UnlockTables releases locks held by this session
func (s *Session) UnlockTables(ctx context.Context) error {
	if !s.locked {
		return nil
	}
	if _, err := s.ExecContext(ctx, s.client.gen.GenerateUnlockTables()); err != nil {
		return err
	}
	s.locked = false
	return nil
}

// InTransaction reports whether a transaction is open
func (s *Session) InTransaction() bool {
	return s.tx != nil
}

// SupportsSavepoints reports whether Begin nests as a savepoint. Every
// supported provider has savepoints.
func (s *Session) SupportsSavepoints() bool {
	return true
}

// Depth returns the number of open transaction levels
func (s *Session) Depth() int {
	if s.tx == nil {
		return 0
	}
	return 1 + s.savepoints
}

// Begin opens a transaction, or a savepoint inside an open one
func (s *Session) Begin(ctx context.Context) error {
	if s.closed {
		return ErrSessionClosed
	}

	if s.tx == nil {
		tx, err := s.conn.BeginTx(ctx, s.client.txOptions)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		s.tx = tx
		return nil
	}

	name := savepointName(s.savepoints + 1)
	if _, err := s.ExecContext(ctx, s.client.gen.GenerateSavepoint(name)); err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}
	s.savepoints++
	return nil
}

// Commit commits the innermost level
func (s *Session) Commit(ctx context.Context) error {
	if s.tx == nil {
		return ErrNoTransaction
	}

	if s.savepoints > 0 {
		// the level stays open until RELEASE succeeds
		name := savepointName(s.savepoints)
		if _, err := s.ExecContext(ctx, s.client.gen.GenerateReleaseSavepoint(name)); err != nil {
			return fmt.Errorf("failed to release savepoint: %w", err)
		}
		s.savepoints--
		return nil
	}

	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback rolls back the innermost level
func (s *Session) Rollback(ctx context.Context) error {
	if s.tx == nil {
		return ErrNoTransaction
	}

	if s.savepoints > 0 {
		name := savepointName(s.savepoints)
		if _, err := s.ExecContext(ctx, s.client.gen.GenerateRollbackToSavepoint(name)); err != nil {
			if isMissingSavepoint(err) {
				s.savepoints--
				return nil
			}
			return fmt.Errorf("failed to roll back to savepoint: %w", err)
		}
		s.savepoints--
		if _, err := s.ExecContext(ctx, s.client.gen.GenerateReleaseSavepoint(name)); err != nil {
			return fmt.Errorf("failed to release savepoint: %w", err)
		}
		return nil
	}

	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}

// Close rolls back anything still open and returns the connection to the pool
func (s *Session) Close() error {
	if s.closed {
		return nil
	}

	ctx := context.Background()
	if s.tx != nil {
		s.savepoints = 0
		if err := s.Rollback(ctx); err != nil {
			s.log.Warn("rollback on close failed", "error", err)
		}
	}
	if err := s.UnlockTables(ctx); err != nil {
		s.log.Warn("unlock on close failed", "error", err)
	}

	s.closed = true
	return s.conn.Close()
}

func savepointName(n int) string {
	return fmt.Sprintf("sp_%d", n)
}
