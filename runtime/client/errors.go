package client

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrConnectionFailed        = errors.New("failed to connect to database")
	ErrNoTransaction           = errors.New("no open transaction")
	ErrLockRequiresTransaction = errors.New("table locks require an open transaction")
	ErrSessionClosed           = errors.New("session is closed")
)

// MySQL server error numbers
const (
	mysqlLockWaitTimeout    = 1205
	mysqlDeadlock           = 1213
	mysqlSavepointNotExists = 1305
)

// IsRetryable reports whether err is a lock conflict that may succeed when the
// whole transaction is attempted again
func IsRetryable(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDeadlock || myErr.Number == mysqlLockWaitTimeout
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03": // serialization_failure, deadlock_detected, lock_not_available
			return true
		}
		return false
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}

	return false
}

// isMissingSavepoint reports a savepoint the server already discarded
func isMissingSavepoint(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlSavepointNotExists
}
