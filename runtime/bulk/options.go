package bulk

import (
	"fmt"
	"log/slog"
)

// DefaultMaxRowsToInsert is the default ceiling on rows per grouped insert
const DefaultMaxRowsToInsert = 1000

// Options configures a Saver
type Options struct {
	// UseTransactionWhenAvailable wraps Commit in a transaction, or a savepoint
	// when one is already open and the store supports nesting.
	UseTransactionWhenAvailable bool

	// UseTableLocks takes one combined write lock over the create tables
	// before key bases are read. Disabling it with concurrent writers on the
	// same tables risks duplicate keys.
	UseTableLocks bool

	// MaxRowsToInsert is the ceiling on rows per grouped insert
	MaxRowsToInsert int

	// Logger receives commit logs. Defaults to the debug logger.
	Logger *slog.Logger
}

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		UseTransactionWhenAvailable: true,
		UseTableLocks:               true,
		MaxRowsToInsert:             DefaultMaxRowsToInsert,
	}
}

// Option mutates Options
type Option func(*Options)

// WithTransactions sets UseTransactionWhenAvailable
func WithTransactions(enabled bool) Option {
	return func(o *Options) { o.UseTransactionWhenAvailable = enabled }
}

// WithTableLocks sets UseTableLocks
func WithTableLocks(enabled bool) Option {
	return func(o *Options) { o.UseTableLocks = enabled }
}

// WithMaxRowsToInsert sets MaxRowsToInsert
func WithMaxRowsToInsert(n int) Option {
	return func(o *Options) { o.MaxRowsToInsert = n }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithOptions replaces all options at once
func WithOptions(opts Options) Option {
	return func(o *Options) { *o = opts }
}

func (o Options) validate() error {
	if o.MaxRowsToInsert < 1 {
		return fmt.Errorf("%w: max rows to insert must be positive, got %d", ErrInvalidOption, o.MaxRowsToInsert)
	}
	return nil
}

// EnqueueOption configures a single Enqueue call
type EnqueueOption func(*enqueueConfig)

type enqueueConfig struct {
	validate bool
}

// SkipValidation enqueues without running the record's validation
func SkipValidation() EnqueueOption {
	return func(c *enqueueConfig) { c.validate = false }
}
