// Package model provides active records that save on their own or through a
// bulk saver.
package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/satishbabariya/prisma-bulk/query/sqlgen"
	"github.com/satishbabariya/prisma-bulk/runtime/types"
)

var (
	// ErrRecordNotFound is returned by Find when no row matches
	ErrRecordNotFound = errors.New("record not found")
	// ErrEmptyRecord is returned when saving a new record without attributes
	ErrEmptyRecord = errors.New("record has no attributes to insert")
)

// Executor runs statements for a record. *client.Session implements it.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	Generator() sqlgen.Generator
}

// Validator checks a record and returns an error describing the violation
type Validator func(r *Record) error

// Model describes one table: its key, validation rules and hooks
type Model struct {
	table      string
	primaryKey string
	validators []Validator
	hooks      *Hooks
}

// ModelOption configures a Model
type ModelOption func(*Model)

// WithPrimaryKey sets the primary key column. The default is "id".
func WithPrimaryKey(column string) ModelOption {
	return func(m *Model) {
		m.primaryKey = column
	}
}

// WithValidators appends validation rules
func WithValidators(v ...Validator) ModelOption {
	return func(m *Model) {
		m.validators = append(m.validators, v...)
	}
}

// Define creates a model for table
func Define(table string, opts ...ModelOption) *Model {
	m := &Model{
		table:      table,
		primaryKey: "id",
		hooks:      newHooks(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Table returns the table name
func (m *Model) Table() string { return m.table }

// PrimaryKey returns the primary key column
func (m *Model) PrimaryKey() string { return m.primaryKey }

// Hooks returns the model's hook registry
func (m *Model) Hooks() *Hooks { return m.hooks }

// Validate appends a validation rule
func (m *Model) Validate(v Validator) {
	m.validators = append(m.validators, v)
}

// New creates an unsaved record. pairs alternate attribute names and values.
func (m *Model) New(exec Executor, pairs ...interface{}) *Record {
	r := &Record{model: m, exec: exec, attrs: types.NewAttributes()}
	for i := 0; i+1 < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			continue
		}
		r.Set(name, pairs[i+1])
	}
	return r
}

// Load wraps attributes already stored in the database
func (m *Model) Load(exec Executor, attrs *types.Attributes) *Record {
	r := &Record{model: m, exec: exec, attrs: attrs.Clone()}
	r.MarkClean(r.attrs)
	return r
}

// Find loads the record whose primary key equals key
func (m *Model) Find(ctx context.Context, exec Executor, key interface{}) (*Record, error) {
	q := exec.Generator().GenerateSelect(m.table, nil, sqlgen.Equals(m.primaryKey, key), 1)

	rows, err := exec.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s %s=%v", ErrRecordNotFound, m.table, m.primaryKey, key)
	}

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	raw := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scan %s: %w", m.table, err)
	}

	attrs := types.NewAttributes()
	for i, col := range columns {
		attrs.Set(col, types.FromAny(raw[i]))
	}
	return m.Load(exec, attrs), rows.Err()
}

// Required rejects records where name is missing, null or empty text
func Required(name string) Validator {
	return func(r *Record) error {
		v := r.Get(name)
		if v.IsNull() {
			return fmt.Errorf("%s is required", name)
		}
		if s, ok := v.AsText(); ok && s == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// MaxLength rejects text attributes longer than n characters
func MaxLength(name string, n int) Validator {
	return func(r *Record) error {
		if s, ok := r.Get(name).AsText(); ok && utf8.RuneCountInString(s) > n {
			return fmt.Errorf("%s is longer than %d characters", name, n)
		}
		return nil
	}
}
