// Package bulk batches the persistence of many records into grouped inserts while
// keeping the validation, hook and dirty-tracking behaviour of single-record saves.
//
// A Saver collects records with Enqueue and writes them with Commit. New records
// are inserted table by table in chunks of at most MaxRowsToInsert rows, with
// primary keys allocated from the current maximum of each table. Existing
// records are saved one at a time through their own Save method.
package bulk

import (
	"context"

	"github.com/satishbabariya/prisma-bulk/runtime/types"
)

// Record is a persistable entity.
type Record interface {
	// Validate runs the record's validation rules.
	Validate() bool

	// IsNew reports whether the record has never been persisted.
	IsNew() bool

	// BeforeSave is the pre-save hook. Returning false rejects the save.
	BeforeSave(isNew bool) bool

	// AfterSave is the post-save hook. changed maps every written attribute
	// to its previous value.
	AfterSave(isNew bool, changed map[string]types.Value)

	// Attributes returns the full ordered attribute set.
	Attributes() *types.Attributes

	// DirtyAttributes returns the attributes changed since load or last save.
	DirtyAttributes() *types.Attributes

	// Table returns the table identity.
	Table() string

	// PrimaryKey returns the primary key column name.
	PrimaryKey() string

	// SetAttribute assigns a single attribute.
	SetAttribute(name string, v types.Value)

	// MarkClean makes attrs the new persisted baseline.
	MarkClean(attrs *types.Attributes)

	// Save persists the record on its own. A false result without an error
	// means the save was refused.
	Save(ctx context.Context, validate bool) (bool, error)
}

// Catalog reports table metadata.
type Catalog interface {
	// AutoIncrementKey returns the auto-increment key column of table.
	// ok is false when the table has none.
	AutoIncrementKey(ctx context.Context, table string) (column string, ok bool, err error)
}

// Store is the execution engine a Saver writes through.
type Store interface {
	// MaxKey reads the current maximum of column directly from the table data.
	// ok is false when the table is empty.
	MaxKey(ctx context.Context, table, column string) (max int64, ok bool, err error)

	// InsertRows executes one grouped insert.
	InsertRows(ctx context.Context, table string, columns []string, rows [][]types.Value) error

	// LockTables takes one combined lock over every table in plan.
	LockTables(ctx context.Context, plan LockPlan) error

	// UnlockTables releases locks taken by LockTables.
	UnlockTables(ctx context.Context) error

	// InTransaction reports whether a transaction is currently open.
	InTransaction() bool

	// SupportsSavepoints reports whether Begin may nest inside an open transaction.
	SupportsSavepoints() bool

	// Begin opens a transaction, or a savepoint when one is already open.
	Begin(ctx context.Context) error

	// Commit commits the innermost transaction or savepoint.
	Commit(ctx context.Context) error

	// Rollback rolls back the innermost transaction or savepoint.
	Rollback(ctx context.Context) error
}
