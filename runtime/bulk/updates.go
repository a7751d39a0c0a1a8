package bulk

import (
	"context"
	"fmt"
)

// runUpdates saves queued updates one by one in enqueue order
func (r *commitRun) runUpdates(ctx context.Context) error {
	for _, rec := range r.updates {
		// Validation already ran at enqueue time.
		ok, err := rec.Save(ctx, false)
		if err != nil {
			return err
		}
		if !ok {
			return &UpdateError{Table: rec.Table(), Key: keyString(rec)}
		}
		r.report.Updates++
	}
	return nil
}

func keyString(rec Record) string {
	v, ok := rec.Attributes().Get(rec.PrimaryKey())
	if !ok {
		return fmt.Sprintf("<%s unset>", rec.PrimaryKey())
	}
	return v.String()
}
