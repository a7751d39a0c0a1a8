package bulk

import (
	"context"
	"fmt"
	"strings"

	"github.com/satishbabariya/prisma-bulk/runtime/types"
)

// callLog records store and record calls in order
type callLog struct {
	entries []string
}

func (l *callLog) add(format string, args ...interface{}) {
	l.entries = append(l.entries, fmt.Sprintf(format, args...))
}

func (l *callLog) count(prefix string) int {
	n := 0
	for _, e := range l.entries {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

func (l *callLog) index(entry string) int {
	for i, e := range l.entries {
		if e == entry {
			return i
		}
	}
	return -1
}

type insertCall struct {
	table   string
	columns []string
	rows    [][]types.Value
}

// fakeStore is an in-memory Store that tracks the maximum key per table
type fakeStore struct {
	log        *callLog
	keyColumns map[string]string
	max        map[string]int64
	inserts    []insertCall

	inTx       bool
	savepoints bool
	depth      int

	lockErr     error
	unlockErr   error
	maxErr      error
	beginErr    error
	commitErr   error
	rollbackErr error
	insertErr   error
	failInsert  int // 1-based insert call that fails; 0 never
}

func newFakeStore(log *callLog) *fakeStore {
	return &fakeStore{
		log:        log,
		keyColumns: map[string]string{},
		max:        map[string]int64{},
		savepoints: true,
	}
}

func (s *fakeStore) MaxKey(ctx context.Context, table, column string) (int64, bool, error) {
	s.log.add("max %s.%s", table, column)
	if s.maxErr != nil {
		return 0, false, s.maxErr
	}
	m, ok := s.max[table]
	return m, ok, nil
}

func (s *fakeStore) InsertRows(ctx context.Context, table string, columns []string, rows [][]types.Value) error {
	s.log.add("insert %s %d", table, len(rows))
	if s.failInsert > 0 && len(s.inserts)+1 == s.failInsert {
		return s.insertErr
	}

	cp := make([][]types.Value, len(rows))
	copy(cp, rows)
	s.inserts = append(s.inserts, insertCall{table: table, columns: append([]string(nil), columns...), rows: cp})

	keyCol := s.keyColumns[table]
	for ci, c := range columns {
		if c != keyCol {
			continue
		}
		for _, row := range rows {
			if k, ok := row[ci].AsInt(); ok {
				if cur, has := s.max[table]; !has || k > cur {
					s.max[table] = k
				}
			}
		}
	}
	return nil
}

func (s *fakeStore) LockTables(ctx context.Context, plan LockPlan) error {
	s.log.add("lock %s", strings.Join(plan.Tables(), ","))
	return s.lockErr
}

func (s *fakeStore) UnlockTables(ctx context.Context) error {
	s.log.add("unlock")
	return s.unlockErr
}

func (s *fakeStore) InTransaction() bool { return s.inTx || s.depth > 0 }

func (s *fakeStore) SupportsSavepoints() bool { return s.savepoints }

func (s *fakeStore) Begin(ctx context.Context) error {
	s.log.add("begin")
	if s.beginErr != nil {
		return s.beginErr
	}
	s.depth++
	return nil
}

func (s *fakeStore) Commit(ctx context.Context) error {
	s.log.add("commit")
	if s.commitErr != nil {
		return s.commitErr
	}
	s.depth--
	return nil
}

func (s *fakeStore) Rollback(ctx context.Context) error {
	s.log.add("rollback")
	s.depth--
	return s.rollbackErr
}

// fakeCatalog reports key columns from a fixed map
type fakeCatalog struct {
	columns map[string]string
	err     error
}

func (c *fakeCatalog) AutoIncrementKey(ctx context.Context, table string) (string, bool, error) {
	if c.err != nil {
		return "", false, c.err
	}
	col, ok := c.columns[table]
	return col, ok, nil
}

type afterSaveCall struct {
	isNew   bool
	changed map[string]types.Value
}

// fakeRecord is a Record with configurable outcomes
type fakeRecord struct {
	log   *callLog
	name  string
	table string
	pk    string
	isNew bool

	attrs *types.Attributes
	clean *types.Attributes

	invalid      bool
	rejectBefore bool
	saveResult   bool
	saveErr      error

	validateCalls int
	beforeCalls   int
	saveCalls     int
	saveValidate  []bool
	afterSaves    []afterSaveCall
}

func newRecord(log *callLog, name, table string, pairs ...interface{}) *fakeRecord {
	return &fakeRecord{
		log:        log,
		name:       name,
		table:      table,
		pk:         "id",
		isNew:      true,
		attrs:      types.AttributesOf(pairs...),
		clean:      types.NewAttributes(),
		saveResult: true,
	}
}

func existingRecord(log *callLog, name, table string, pairs ...interface{}) *fakeRecord {
	r := newRecord(log, name, table, pairs...)
	r.isNew = false
	r.clean = r.attrs.Clone()
	return r
}

func (r *fakeRecord) Validate() bool {
	r.validateCalls++
	return !r.invalid
}

func (r *fakeRecord) IsNew() bool { return r.isNew }

func (r *fakeRecord) BeforeSave(isNew bool) bool {
	r.beforeCalls++
	return !r.rejectBefore
}

func (r *fakeRecord) AfterSave(isNew bool, changed map[string]types.Value) {
	r.log.add("afterSave %s", r.name)
	r.afterSaves = append(r.afterSaves, afterSaveCall{isNew: isNew, changed: changed})
	r.isNew = false
}

func (r *fakeRecord) Attributes() *types.Attributes { return r.attrs }

func (r *fakeRecord) DirtyAttributes() *types.Attributes {
	dirty := types.NewAttributes()
	r.attrs.Each(func(name string, v types.Value) {
		if old, ok := r.clean.Get(name); !ok || !old.Equal(v) {
			dirty.Set(name, v)
		}
	})
	return dirty
}

func (r *fakeRecord) Table() string { return r.table }

func (r *fakeRecord) PrimaryKey() string { return r.pk }

func (r *fakeRecord) SetAttribute(name string, v types.Value) { r.attrs.Set(name, v) }

func (r *fakeRecord) MarkClean(attrs *types.Attributes) { r.clean = attrs.Clone() }

func (r *fakeRecord) Save(ctx context.Context, validate bool) (bool, error) {
	r.log.add("save %s", r.name)
	r.saveCalls++
	r.saveValidate = append(r.saveValidate, validate)
	if r.saveErr != nil {
		return false, r.saveErr
	}
	if r.saveResult {
		r.clean = r.attrs.Clone()
	}
	return r.saveResult, nil
}

func (r *fakeRecord) key() types.Value {
	v, _ := r.attrs.Get(r.pk)
	return v
}
