package bulk

// LockMode is the lock requested for a table
type LockMode string

const (
	// LockWrite is an exclusive write lock
	LockWrite LockMode = "WRITE"
)

// LockEntry is one table in a LockPlan
type LockEntry struct {
	Table string
	Mode  LockMode
}

// LockPlan is the ordered set of tables to lock for one commit.
// Tables appear once, in the order they were first added.
type LockPlan struct {
	entries []LockEntry
	index   map[string]int
}

// Add adds table with mode unless it is already planned.
// It reports whether the table was added.
func (p *LockPlan) Add(table string, mode LockMode) bool {
	if p.index == nil {
		p.index = make(map[string]int)
	}
	if _, ok := p.index[table]; ok {
		return false
	}
	p.index[table] = len(p.entries)
	p.entries = append(p.entries, LockEntry{Table: table, Mode: mode})
	return true
}

// Contains reports whether table is planned
func (p LockPlan) Contains(table string) bool {
	_, ok := p.index[table]
	return ok
}

// Entries returns the planned tables in order
func (p LockPlan) Entries() []LockEntry {
	out := make([]LockEntry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Tables returns the planned table names in order
func (p LockPlan) Tables() []string {
	out := make([]string, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.Table
	}
	return out
}

// Len returns the number of planned tables
func (p LockPlan) Len() int {
	return len(p.entries)
}
