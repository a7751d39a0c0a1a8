package client

import (
	"context"
	"database/sql"
	"fmt"
)

// IsolationLevel represents transaction isolation levels
type IsolationLevel int

const (
	// ReadUncommitted allows dirty reads
	ReadUncommitted IsolationLevel = iota
	// ReadCommitted prevents dirty reads (default)
	ReadCommitted
	// RepeatableRead prevents dirty reads and non-repeatable reads
	RepeatableRead
	// Serializable prevents dirty reads, non-repeatable reads, and phantom reads
	Serializable
)

// ToSQLIsolationLevel converts IsolationLevel to sql.IsolationLevel
func (level IsolationLevel) ToSQLIsolationLevel() sql.IsolationLevel {
	switch level {
	case ReadUncommitted:
		return sql.LevelReadUncommitted
	case ReadCommitted:
		return sql.LevelReadCommitted
	case RepeatableRead:
		return sql.LevelRepeatableRead
	case Serializable:
		return sql.LevelSerializable
	default:
		return sql.LevelReadCommitted
	}
}

// NewTxOptions creates sql.TxOptions from isolation level
func NewTxOptions(isolation IsolationLevel, readOnly bool) *sql.TxOptions {
	return &sql.TxOptions{
		Isolation: isolation.ToSQLIsolationLevel(),
		ReadOnly:  readOnly,
	}
}

// TransactionFunc is a function that runs within a transaction
type TransactionFunc func(s *Session) error

// Transaction runs fn in a transaction on a fresh session. The transaction
// is committed when fn returns nil and rolled back otherwise.
func (c *PrismaClient) Transaction(ctx context.Context, fn TransactionFunc) error {
	s, err := c.Session(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.Transaction(ctx, fn)
}

// Transaction runs fn in a new transaction level. Inside an open transaction
// the level is a savepoint, so a failing fn only undoes its own work.
func (s *Session) Transaction(ctx context.Context, fn TransactionFunc) error {
	if err := s.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = s.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
	}()

	if err := fn(s); err != nil {
		if rbErr := s.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	return s.Commit(ctx)
}
