package bulk

import (
	"context"
	"fmt"
	"math"

	"github.com/satishbabariya/prisma-bulk/runtime/types"
)

// keyState is the per-table allocation cursor for one commit
type keyState struct {
	column string
	next   int64
	// exhausted is set once next can no longer be handed out
	exhausted bool
}

// distinctTables returns the tables of records in first-seen order
func distinctTables(records []Record) []string {
	seen := make(map[string]bool)
	var tables []string
	for _, r := range records {
		t := r.Table()
		if !seen[t] {
			seen[t] = true
			tables = append(tables, t)
		}
	}
	return tables
}

// hasKey reports whether row carries a usable explicit key
func hasKey(row *types.Attributes, column string) bool {
	v, ok := row.Get(column)
	return ok && !v.IsNull()
}

// allocateKeys assigns sequential keys to creates without an explicit key.
// Keys start above the table's current maximum and are written into rows[i];
// the allocated value for create i is recorded in r.allocated.
func (r *commitRun) allocateKeys(ctx context.Context) error {
	states := make(map[string]*keyState)

	for _, table := range distinctTables(r.creates) {
		column, ok, err := r.saver.catalog.AutoIncrementKey(ctx, table)
		if err != nil {
			return fmt.Errorf("failed to look up key column for %s: %w", table, err)
		}
		if !ok || column == "" {
			return &ConfigurationError{Table: table}
		}

		max, found, err := r.saver.store.MaxKey(ctx, table, column)
		if err != nil {
			return err
		}

		st := &keyState{column: column, next: 1}
		if found {
			if max == math.MaxInt64 {
				st.exhausted = true
			} else {
				st.next = max + 1
			}
		}
		states[table] = st
		r.keyColumns[table] = column

		r.log.Debug("key base read", "table", table, "column", column, "next", st.next)
	}

	for i, rec := range r.creates {
		st := states[rec.Table()]
		if hasKey(r.rows[i], st.column) {
			continue
		}
		if st.exhausted {
			return fmt.Errorf("%w: %s.%s has reached %d", ErrKeySpaceExhausted, rec.Table(), st.column, int64(math.MaxInt64))
		}
		r.rows[i].Set(st.column, types.Int(st.next))
		r.allocated[i] = st.next
		if st.next == math.MaxInt64 {
			st.exhausted = true
		} else {
			st.next++
		}
	}

	r.report.KeysAllocated = len(r.allocated)
	return nil
}
