package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/satishbabariya/prisma-bulk/cli/internal/config"
	"github.com/satishbabariya/prisma-bulk/cli/internal/seedfile"
	"github.com/satishbabariya/prisma-bulk/cli/internal/ui"
	"github.com/satishbabariya/prisma-bulk/cli/internal/watch"
	"github.com/satishbabariya/prisma-bulk/internal/debug"
	"github.com/satishbabariya/prisma-bulk/runtime/bulk"
	"github.com/satishbabariya/prisma-bulk/runtime/client"
	"github.com/satishbabariya/prisma-bulk/runtime/model"
	"github.com/satishbabariya/prisma-bulk/runtime/types"
)

// errSeedDeclined is returned when the user answers no to the append prompt
var errSeedDeclined = errors.New("seed cancelled")

// confirm asks a yes/no question on the terminal
var confirm = func(message string) (bool, error) {
	ok := false
	err := survey.AskOne(&survey.Confirm{Message: message, Default: false}, &ok)
	return ok, err
}

type seedOptions struct {
	commitEvery      int
	commitsPerSecond float64
	primaryKey       string
	watch            bool
	yes              bool
}

func newSeedCommand(a *app) *cobra.Command {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed <table> <file>",
		Short: "Insert the rows of a file into a table",
		Long: `Read rows from a JSON, JSON lines or CSV file and insert them into table.

Files may be compressed with gzip (.gz), zstd (.zst) or lz4 (.lz4). Rows are
committed in batches of --commit-every; each batch is one transaction with
its table locked, so a failed batch leaves no rows behind. Batches that hit
a deadlock or lock timeout are retried.`,
		Example: `  prisma-bulk seed users users.csv
  prisma-bulk seed events events.jsonl.zst --commit-every 5000 --commits-per-second 2
  prisma-bulk seed users users.json --watch`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *a.cfg
			if cmd.Flags().Changed("commit-every") {
				cfg.CommitEvery = opts.commitEvery
			}
			if cmd.Flags().Changed("commits-per-second") {
				cfg.CommitsPerSecond = opts.commitsPerSecond
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, err := openClient(ctx, &cfg)
			if err != nil {
				return err
			}
			defer c.Disconnect(ctx)

			table, file := args[0], args[1]
			once := func(ctx context.Context) error {
				return seedAndReport(ctx, c, &cfg, table, file, opts)
			}

			if !opts.watch {
				return once(ctx)
			}

			ui.PrintInfo("Watching %s, press Ctrl+C to stop", file)
			err = watch.Watch(ctx, file, func(ctx context.Context) error {
				// later runs append again; the prompt only guards the first
				opts.yes = true
				c.Catalog().Invalidate(table)
				return once(ctx)
			}, watch.WithErrorHandler(func(err error) {
				ui.PrintError("%v", err)
			}))
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVar(&opts.commitEvery, "commit-every", 0, "Rows per commit (defaults to max_rows_to_insert)")
	cmd.Flags().Float64Var(&opts.commitsPerSecond, "commits-per-second", 0, "Throttle commits, 0 means unlimited")
	cmd.Flags().StringVar(&opts.primaryKey, "primary-key", "", "Primary key column when it cannot be introspected")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Seed again whenever the file changes")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Append to tables that already have rows without asking")

	return cmd
}

func seedAndReport(ctx context.Context, c *client.PrismaClient, cfg *config.Config, table, file string, opts seedOptions) error {
	r, err := seedfile.Open(config.AppFs, file)
	if err != nil {
		return err
	}
	defer r.Close()

	spinner, _ := ui.PrintSpinner(fmt.Sprintf("Seeding %s from %s", table, file))
	summary, err := seedTable(ctx, c, cfg, table, r, opts)
	summary.File = file
	if spinner != nil {
		if err != nil {
			spinner.Fail(err.Error())
		} else {
			spinner.Success(fmt.Sprintf("Seeded %s", table))
		}
	}

	if len(summary.Reports) > 0 {
		if perr := ui.PrintTable(ui.ReportHeaders, ui.ReportRows(summary.Reports)); perr != nil {
			debug.Warn("print report table", "error", perr)
		}
	}
	if perr := ui.PrintMarkdown(summary.Markdown()); perr != nil {
		debug.Warn("print summary", "error", perr)
	}
	return err
}

// commitBatch commits the queued records of one batch
var commitBatch = func(ctx context.Context, sess *client.Session, saver *bulk.Saver) error {
	return saver.Commit(ctx)
}

// seeder commits the rows of one file in batches
type seeder struct {
	sess    *client.Session
	saver   *bulk.Saver
	model   *model.Model
	limiter *rate.Limiter
	log     *slog.Logger
	summary ui.SeedSummary
}

// seedTable inserts every row r yields into table. Batches already
// committed stay committed when a later batch fails.
func seedTable(ctx context.Context, c *client.PrismaClient, cfg *config.Config, table string, r seedfile.Reader, opts seedOptions) (ui.SeedSummary, error) {
	start := time.Now()
	summary := ui.SeedSummary{Table: table}

	sess, err := c.Session(ctx)
	if err != nil {
		return summary, err
	}
	defer sess.Close()

	pk, err := resolvePrimaryKey(ctx, sess, table, opts.primaryKey)
	if err != nil {
		return summary, err
	}

	if !opts.yes {
		maxKey, ok, err := sess.MaxKey(ctx, table, pk)
		if err != nil {
			return summary, err
		}
		if ok {
			proceed, err := confirm(fmt.Sprintf("%s already has rows (max %s is %d). Append?", table, pk, maxKey))
			if err != nil {
				return summary, err
			}
			if !proceed {
				return summary, errSeedDeclined
			}
		}
	}

	saver, err := sess.NewSaver(append(cfg.BulkOptions(), bulk.WithLogger(debug.Logger()))...)
	if err != nil {
		return summary, err
	}

	s := &seeder{
		sess:    sess,
		saver:   saver,
		model:   model.Define(table, model.WithPrimaryKey(pk)),
		log:     debug.With("component", "seed", "table", table),
		summary: summary,
	}
	if cfg.CommitsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.CommitsPerSecond), 1)
	}

	batchSize := cfg.CommitEvery
	if batchSize < 1 {
		batchSize = cfg.MaxRowsToInsert
	}

	batch := make([]*types.Attributes, 0, batchSize)
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.summary.Elapsed = time.Since(start)
			return s.summary, fmt.Errorf("row %d: %w", s.summary.Read+1, err)
		}
		s.summary.Read++
		batch = append(batch, row)

		if len(batch) == batchSize {
			if err := s.flush(ctx, batch); err != nil {
				s.summary.Elapsed = time.Since(start)
				return s.summary, err
			}
			batch = batch[:0]
		}
	}

	err = s.flush(ctx, batch)
	s.summary.Elapsed = time.Since(start)
	return s.summary, err
}

// batchColumns returns every column named by rows, in first-seen order
func batchColumns(rows []*types.Attributes) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, row := range rows {
		for _, name := range row.Names() {
			if !seen[name] {
				seen[name] = true
				columns = append(columns, name)
			}
		}
	}
	return columns
}

// record builds a new record carrying every batch column. Columns the row
// leaves out are set to NULL so the batch shares one column list.
func (s *seeder) record(row *types.Attributes, columns []string) *model.Record {
	rec := s.model.New(s.sess)
	for _, name := range columns {
		v, ok := row.Get(name)
		if !ok {
			v = types.Null()
		}
		rec.SetAttribute(name, v)
	}
	return rec
}

// flush commits one batch. A failed commit may already have reconciled its
// records, so every retry queues records built afresh from the rows.
func (s *seeder) flush(ctx context.Context, batch []*types.Attributes) error {
	columns := batchColumns(batch)

	accepted := make([]*types.Attributes, 0, len(batch))
	for _, row := range batch {
		rec := s.record(row, columns)
		if !s.saver.Enqueue(rec) {
			s.summary.Rejected++
			s.log.Warn("row rejected", "error", rec.Err())
			continue
		}
		accepted = append(accepted, row)
	}
	if len(accepted) == 0 {
		return nil
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			s.saver.Reset()
			return err
		}
	}

	attempt := 0
	return client.Retry(ctx, func() error {
		attempt++
		if attempt > 1 {
			s.log.Info("retrying commit", "attempt", attempt, "rows", len(accepted))
			rows := make([]*types.Attributes, 0, len(accepted))
			for _, row := range accepted {
				rec := s.record(row, columns)
				if !s.saver.Enqueue(rec, bulk.SkipValidation()) {
					s.summary.Rejected++
					s.log.Warn("row rejected on retry", "error", rec.Err())
					continue
				}
				rows = append(rows, row)
			}
			accepted = rows
			if len(accepted) == 0 {
				return nil
			}
		}
		err := commitBatch(ctx, s.sess, s.saver)
		s.summary.Reports = append(s.summary.Reports, s.saver.LastReport())
		return err
	})
}

// resolvePrimaryKey prefers an explicit column, then the auto-increment key,
// then a single-column primary key
func resolvePrimaryKey(ctx context.Context, sess *client.Session, table, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	catalog := sess.Catalog()
	if column, ok, err := catalog.AutoIncrementKey(ctx, table); err != nil {
		return "", err
	} else if ok {
		return column, nil
	}

	t, err := catalog.Describe(ctx, table)
	if err != nil {
		return "", err
	}
	if t.PrimaryKey != nil && len(t.PrimaryKey.Columns) == 1 {
		return t.PrimaryKey.Columns[0], nil
	}
	return "", fmt.Errorf("%s has no single-column primary key, pass --primary-key", table)
}
