package bulk

import (
	"context"

	"github.com/satishbabariya/prisma-bulk/runtime/types"
)

// tableBuffer holds the rows queued for one table.
// Every row follows the column order fixed by the first create seen.
type tableBuffer struct {
	table   string
	columns []string
	rows    [][]types.Value
}

// buildBuffers classifies insert rows by table, in first-seen table order
func buildBuffers(creates []Record, rows []*types.Attributes) ([]*tableBuffer, error) {
	var buffers []*tableBuffer
	byTable := make(map[string]*tableBuffer)

	for i, rec := range creates {
		row := rows[i]
		buf, ok := byTable[rec.Table()]
		if !ok {
			buf = &tableBuffer{table: rec.Table(), columns: row.Names()}
			byTable[buf.table] = buf
			buffers = append(buffers, buf)
		}

		if row.Len() != len(buf.columns) {
			return nil, &ColumnMismatchError{Table: buf.table, Expected: buf.columns, Got: row.Names()}
		}

		values := make([]types.Value, len(buf.columns))
		for j, col := range buf.columns {
			v, ok := row.Get(col)
			if !ok {
				return nil, &ColumnMismatchError{Table: buf.table, Expected: buf.columns, Got: row.Names()}
			}
			values[j] = v
		}
		buf.rows = append(buf.rows, values)
	}

	return buffers, nil
}

// Chunk splits rows into consecutive groups of at most size rows, preserving order
func Chunk[T any](rows []T, size int) [][]T {
	if size < 1 || len(rows) == 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}

// writeBatches executes one grouped insert per chunk, table by table
func (r *commitRun) writeBatches(ctx context.Context, buffers []*tableBuffer) error {
	for _, buf := range buffers {
		for n, chunk := range Chunk(buf.rows, r.saver.opts.MaxRowsToInsert) {
			if err := r.saver.store.InsertRows(ctx, buf.table, buf.columns, chunk); err != nil {
				r.log.Error("grouped insert failed", "table", buf.table, "chunk", n, "rows", len(chunk), "error", err)
				return err
			}
			r.report.Chunks++
			r.report.RowsInserted += len(chunk)
			r.log.Debug("grouped insert", "table", buf.table, "chunk", n, "rows", len(chunk))
		}
	}
	return nil
}
