package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/satishbabariya/prisma-bulk/query/sqlgen"
	"github.com/satishbabariya/prisma-bulk/runtime/bulk"
	"github.com/satishbabariya/prisma-bulk/runtime/types"
)

// Record is one row of a Model. It tracks which attributes changed since it
// was loaded or last saved. A Record is not safe for concurrent use.
type Record struct {
	model     *Model
	exec      Executor
	attrs     *types.Attributes
	clean     *types.Attributes
	persisted bool
	errs      []error
}

var _ bulk.Record = (*Record)(nil)

// Model returns the record's model
func (r *Record) Model() *Model { return r.model }

// Get returns an attribute, or null when it is unset
func (r *Record) Get(name string) types.Value {
	v, _ := r.attrs.Get(name)
	return v
}

// Set assigns an attribute from a Go value
func (r *Record) Set(name string, value interface{}) {
	r.attrs.Set(name, types.FromAny(value))
}

// SetAttribute assigns a single attribute
func (r *Record) SetAttribute(name string, v types.Value) {
	r.attrs.Set(name, v)
}

// Key returns the primary key value
func (r *Record) Key() types.Value {
	return r.Get(r.model.primaryKey)
}

// Table returns the table identity
func (r *Record) Table() string { return r.model.table }

// PrimaryKey returns the primary key column name
func (r *Record) PrimaryKey() string { return r.model.primaryKey }

// IsNew reports whether the record has never been persisted
func (r *Record) IsNew() bool { return !r.persisted }

// Errors returns the failures of the last validation or rejected hook
func (r *Record) Errors() []error {
	out := make([]error, len(r.errs))
	copy(out, r.errs)
	return out
}

// Err joins Errors into one error, or returns nil
func (r *Record) Err() error {
	return errors.Join(r.errs...)
}

// Validate runs every validation rule of the model
func (r *Record) Validate() bool {
	r.errs = r.errs[:0]
	for _, v := range r.model.validators {
		if err := v(r); err != nil {
			r.errs = append(r.errs, err)
		}
	}
	return len(r.errs) == 0
}

// Attributes returns a copy of the full attribute set
func (r *Record) Attributes() *types.Attributes {
	return r.attrs.Clone()
}

// DirtyAttributes returns attributes that differ from the persisted baseline
func (r *Record) DirtyAttributes() *types.Attributes {
	dirty := types.NewAttributes()
	r.attrs.Each(func(name string, v types.Value) {
		old, ok := r.clean.Get(name)
		if !ok || !old.Equal(v) {
			dirty.Set(name, v)
		}
	})
	return dirty
}

// IsDirty reports whether any attribute changed
func (r *Record) IsDirty() bool {
	return r.DirtyAttributes().Len() > 0
}

// MarkClean makes attrs the persisted baseline
func (r *Record) MarkClean(attrs *types.Attributes) {
	r.clean = attrs.Clone()
	r.persisted = true
}

// BeforeSave runs the before create or before update hooks
func (r *Record) BeforeSave(isNew bool) bool {
	return r.beforeSave(context.Background(), isNew)
}

// AfterSave runs the after create or after update hooks
func (r *Record) AfterSave(isNew bool, changed map[string]types.Value) {
	r.afterSave(context.Background(), isNew, changed)
}

func (r *Record) beforeSave(ctx context.Context, isNew bool) bool {
	hookType := BeforeUpdate
	if isNew {
		hookType = BeforeCreate
	}
	hc := &HookContext{Model: r.model.table, Record: r, Context: ctx}
	if err := r.model.hooks.Execute(hc, hookType); err != nil {
		r.errs = append(r.errs[:0], err)
		return false
	}
	return true
}

func (r *Record) afterSave(ctx context.Context, isNew bool, changed map[string]types.Value) {
	hookType := AfterUpdate
	if isNew {
		hookType = AfterCreate
	}
	hc := &HookContext{Model: r.model.table, Record: r, Changed: changed, Context: ctx}
	// After hooks cannot undo a write that already happened
	_ = r.model.hooks.Execute(hc, hookType)
}

// Save writes the record on its own: an INSERT for new records and an
// UPDATE of the dirty attributes for persisted ones. A false result without
// an error means validation or a before hook refused the save.
func (r *Record) Save(ctx context.Context, validate bool) (bool, error) {
	if validate && !r.Validate() {
		return false, nil
	}

	isNew := r.IsNew()
	if !r.beforeSave(ctx, isNew) {
		return false, nil
	}

	dirty := r.DirtyAttributes()
	changed := make(map[string]types.Value, dirty.Len())
	dirty.Each(func(name string, _ types.Value) {
		old, _ := r.clean.Get(name)
		changed[name] = old
	})

	var err error
	if isNew {
		err = r.insert(ctx, dirty)
	} else {
		err = r.update(ctx, dirty)
	}
	if err != nil {
		return false, err
	}

	r.MarkClean(r.attrs)
	r.afterSave(ctx, isNew, changed)
	return true, nil
}

func (r *Record) insert(ctx context.Context, attrs *types.Attributes) error {
	if attrs.Len() == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyRecord, r.model.table)
	}

	gen := r.exec.Generator()
	columns := attrs.Names()
	values := driverValues(attrs)
	pk := r.model.primaryKey

	if attrs.Has(pk) && !r.Key().IsNull() {
		q := gen.GenerateInsert(r.model.table, columns, values, "")
		_, err := r.exec.ExecContext(ctx, q.SQL, q.Args...)
		return err
	}

	if gen.Provider() == "mysql" {
		q := gen.GenerateInsert(r.model.table, columns, values, "")
		res, err := r.exec.ExecContext(ctx, q.SQL, q.Args...)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		r.SetAttribute(pk, types.Int(id))
		return nil
	}

	q := gen.GenerateInsert(r.model.table, columns, values, pk)
	rows, err := r.exec.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	if rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan %s.%s: %w", r.model.table, pk, err)
		}
		r.SetAttribute(pk, types.Int(id))
	}
	return rows.Err()
}

func (r *Record) update(ctx context.Context, attrs *types.Attributes) error {
	pk := r.model.primaryKey
	key, ok := r.clean.Get(pk)
	if !ok {
		key = r.Key()
	}

	set := attrs.Clone()
	set.Delete(pk)
	if set.Len() == 0 {
		return nil
	}

	q := r.exec.Generator().GenerateUpdate(r.model.table, set.Names(), driverValues(set), sqlgen.Equals(pk, key.Driver()))
	_, err := r.exec.ExecContext(ctx, q.SQL, q.Args...)
	return err
}

func driverValues(attrs *types.Attributes) []interface{} {
	vals := attrs.Values()
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		out[i] = v.Driver()
	}
	return out
}
