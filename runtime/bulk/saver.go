package bulk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/satishbabariya/prisma-bulk/internal/debug"
	"github.com/satishbabariya/prisma-bulk/runtime/types"
)

// Saver queues records and persists them in one Commit.
// A Saver is not safe for concurrent use.
type Saver struct {
	store   Store
	catalog Catalog
	opts    Options
	log     *slog.Logger

	creates []Record
	updates []Record
	plan    LockPlan
	last    Report
}

// NewSaver creates a Saver writing through store and resolving key columns through catalog
func NewSaver(store Store, catalog Catalog, opts ...Option) (*Saver, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is nil", ErrInvalidOption)
	}
	if catalog == nil {
		return nil, fmt.Errorf("%w: catalog is nil", ErrInvalidOption)
	}

	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	logger := o.Logger
	if logger == nil {
		logger = debug.Logger()
	}

	return &Saver{
		store:   store,
		catalog: catalog,
		opts:    o,
		log:     logger.With("component", "bulk"),
	}, nil
}

// Options returns the options in effect
func (s *Saver) Options() Options {
	return s.opts
}

// Enqueue adds rec to the next commit. It returns false, leaving the queues
// untouched, when rec is nil, validation fails or a new record's pre-save
// hook rejects it.
func (s *Saver) Enqueue(rec Record, opts ...EnqueueOption) bool {
	if rec == nil {
		return false
	}

	cfg := enqueueConfig{validate: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.validate && !rec.Validate() {
		s.log.Debug("record not queued", "table", rec.Table(), "reason", ErrValidationFailed)
		return false
	}

	if !rec.IsNew() {
		// The record's own pre-save hook runs during its Save at commit time.
		s.updates = append(s.updates, rec)
		return true
	}

	if !rec.BeforeSave(true) {
		s.log.Debug("record not queued", "table", rec.Table(), "reason", ErrBeforeSaveRejected)
		return false
	}

	s.creates = append(s.creates, rec)
	if s.opts.UseTableLocks {
		s.plan.Add(rec.Table(), LockWrite)
	}
	return true
}

// Pending returns the number of queued creates and updates
func (s *Saver) Pending() (creates, updates int) {
	return len(s.creates), len(s.updates)
}

// LockPlan returns the tables that the next commit will lock
func (s *Saver) LockPlan() LockPlan {
	return s.plan
}

// LastReport returns the report of the most recent Commit
func (s *Saver) LastReport() Report {
	return s.last
}

// Reset drops all queued records
func (s *Saver) Reset() {
	s.creates = nil
	s.updates = nil
	s.plan = LockPlan{}
}

// commitRun is the state of one Commit call
type commitRun struct {
	saver  *Saver
	log    *slog.Logger
	report *Report

	creates []Record
	updates []Record
	plan    LockPlan

	rows       []*types.Attributes
	keyColumns map[string]string
	allocated  map[int]int64

	locked bool
	ownTx  bool
}

func (r *commitRun) advance(stage Stage) {
	r.report.Stage = stage
	r.log.Debug("commit stage", "stage", stage.String())
}

// Commit inserts the queued creates in grouped inserts, saves the queued
// updates one by one and reconciles the created records. Queues are cleared
// whatever the outcome; a failed commit must be re-enqueued to retry.
func (s *Saver) Commit(ctx context.Context) error {
	start := time.Now()
	report := Report{CommitID: uuid.NewString()}
	defer func() {
		report.Duration = time.Since(start)
		s.last = report
		s.Reset()
	}()

	if len(s.creates) == 0 && len(s.updates) == 0 {
		report.Stage = StageCommitted
		return nil
	}

	run := &commitRun{
		saver:      s,
		log:        s.log.With("commit_id", report.CommitID),
		report:     &report,
		creates:    s.creates,
		updates:    s.updates,
		plan:       s.plan,
		keyColumns: make(map[string]string),
		allocated:  make(map[int]int64),
	}
	report.Tables = distinctTables(run.creates)

	run.log.Debug("commit started", "creates", len(run.creates), "updates", len(run.updates), "tables", report.Tables)

	if s.opts.UseTransactionWhenAvailable && (!s.store.InTransaction() || s.store.SupportsSavepoints()) {
		if err := s.store.Begin(ctx); err != nil {
			report.Err = err
			report.FailedAt = StageIdle
			return err
		}
		run.ownTx = true
		report.OwnTx = true
		run.advance(StageTxStarted)
	}

	if err := run.execute(ctx); err != nil {
		return run.abort(ctx, err)
	}

	if run.ownTx {
		if err := s.store.Commit(ctx); err != nil {
			return run.abort(ctx, err)
		}
	}
	run.advance(StageCommitted)

	run.log.Info("commit finished",
		"rows", report.RowsInserted,
		"chunks", report.Chunks,
		"updates", report.Updates,
		"keys", report.KeysAllocated)
	return nil
}

func (r *commitRun) execute(ctx context.Context) error {
	store := r.saver.store

	if len(r.creates) > 0 {
		if r.saver.opts.UseTableLocks && r.plan.Len() > 0 {
			if err := store.LockTables(ctx, r.plan); err != nil {
				return err
			}
			r.locked = true
			r.advance(StageLocked)
		}

		r.rows = make([]*types.Attributes, len(r.creates))
		for i, rec := range r.creates {
			r.rows[i] = rec.Attributes().Clone()
		}

		if err := r.allocateKeys(ctx); err != nil {
			return err
		}
		r.advance(StageKeysAllocated)

		buffers, err := buildBuffers(r.creates, r.rows)
		if err != nil {
			return err
		}
		if err := r.writeBatches(ctx, buffers); err != nil {
			return err
		}
		r.advance(StageInserted)
	}

	if err := r.unlock(ctx); err != nil {
		return err
	}
	r.advance(StageUnlocked)

	if err := r.runUpdates(ctx); err != nil {
		return err
	}
	r.advance(StageUpdated)

	r.reconcile()
	r.advance(StageReconciled)
	return nil
}

// unlock releases table locks once; later calls are no-ops
func (r *commitRun) unlock(ctx context.Context) error {
	if !r.locked {
		return nil
	}
	r.locked = false
	return r.saver.store.UnlockTables(ctx)
}

// abort releases locks, rolls back the transaction opened by this commit and
// returns cause unchanged. Cleanup failures are logged.
func (r *commitRun) abort(ctx context.Context, cause error) error {
	r.report.FailedAt = r.report.Stage
	r.report.Err = cause
	r.advance(StageRollingBack)

	cleanupCtx := context.WithoutCancel(ctx)

	if err := r.unlock(cleanupCtx); err != nil {
		r.log.Error("unlock after failure", "error", err)
	}
	if r.ownTx {
		if err := r.saver.store.Rollback(cleanupCtx); err != nil && !errors.Is(err, cause) {
			r.log.Error("rollback after failure", "error", err)
		}
	}

	r.advance(StageRolledBack)
	r.log.Warn("commit rolled back", "failed_at", r.report.FailedAt.String(), "error", cause)
	return cause
}
