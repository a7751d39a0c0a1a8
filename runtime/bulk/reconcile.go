package bulk

import "github.com/satishbabariya/prisma-bulk/runtime/types"

// reconcile brings every created record to the state a single-row insert
// would have left it in: allocated key written back, inserted attributes as
// the clean baseline, and the post-save hook fired with null previous values.
func (r *commitRun) reconcile() {
	for i, rec := range r.creates {
		row := r.rows[i]

		if key, ok := r.allocated[i]; ok {
			rec.SetAttribute(r.keyColumns[rec.Table()], types.Int(key))
		}

		rec.MarkClean(row)

		changed := make(map[string]types.Value, row.Len())
		for _, name := range row.Names() {
			changed[name] = types.Null()
		}
		rec.AfterSave(true, changed)
	}
}
