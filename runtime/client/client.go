// Package client provides the runtime client for prisma-bulk.
package client

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"github.com/satishbabariya/prisma-bulk/internal/debug"
	"github.com/satishbabariya/prisma-bulk/migrate/introspect"
	"github.com/satishbabariya/prisma-bulk/query/sqlgen"
)

// PrismaClient is the main database client
type PrismaClient struct {
	db          *sql.DB
	provider    string
	gen         sqlgen.Generator
	catalog     *introspect.Catalog
	txOptions   *sql.TxOptions
	middlewares []Middleware
	log         *slog.Logger
}

// Option configures a PrismaClient
type Option func(*PrismaClient)

// WithIsolation sets the isolation level of transactions opened by sessions
func WithIsolation(level IsolationLevel) Option {
	return func(c *PrismaClient) {
		c.txOptions = NewTxOptions(level, false)
	}
}

// WithMiddleware appends query middleware
func WithMiddleware(mw ...Middleware) Option {
	return func(c *PrismaClient) {
		c.middlewares = append(c.middlewares, mw...)
	}
}

// WithLogger sets the logger. The debug logger is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(c *PrismaClient) {
		c.log = l
	}
}

// WithCatalogOptions configures the key metadata cache
func WithCatalogOptions(opts ...introspect.CatalogOption) Option {
	return func(c *PrismaClient) {
		c.catalog = introspect.NewCatalog(introspectorFor(c.provider), c.db, opts...)
	}
}

// NewPrismaClient opens a database handle for provider
func NewPrismaClient(provider string, connectionString string, opts ...Option) (*PrismaClient, error) {
	driverName := getDriverName(provider)
	if driverName == "" {
		return nil, fmt.Errorf("%w: %s", sqlgen.ErrUnsupportedProvider, provider)
	}

	if driverName == "sqlite3" {
		connectionString = sqliteDSN(connectionString)
	}

	db, err := sql.Open(driverName, connectionString)
	if err != nil {
		return nil, err
	}

	c, err := NewPrismaClientFromDB(provider, db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// NewPrismaClientFromDB creates a client over an existing handle
func NewPrismaClientFromDB(provider string, db *sql.DB, opts ...Option) (*PrismaClient, error) {
	gen, err := sqlgen.NewGenerator(provider)
	if err != nil {
		return nil, err
	}

	c := &PrismaClient{
		db:       db,
		provider: gen.Provider(),
		gen:      gen,
	}
	c.catalog = introspect.NewCatalog(introspectorFor(c.provider), db)

	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = debug.Logger()
	}
	c.log = c.log.With("component", "client", "provider", c.provider)

	return c, nil
}

// getDriverName maps provider names to Go database driver names
func getDriverName(provider string) string {
	switch provider {
	case "postgresql", "postgres":
		return "postgres"
	case "mysql":
		return "mysql"
	case "sqlite", "sqlite3":
		return "sqlite3"
	default:
		return ""
	}
}

func introspectorFor(provider string) introspect.Introspector {
	in, err := introspect.NewIntrospector(provider)
	if err != nil {
		// provider was already accepted by sqlgen
		panic(err)
	}
	return in
}

// sqliteDSN makes transactions take the write lock on BEGIN so that two
// writers never both read the same MAX(key)
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_txlock=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_txlock=immediate"
}

// Connect verifies the database is reachable
func (c *PrismaClient) Connect(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Disconnect closes the database handle
func (c *PrismaClient) Disconnect(ctx context.Context) error {
	return c.db.Close()
}

// DB returns the underlying database handle
func (c *PrismaClient) DB() *sql.DB {
	return c.db
}

// Provider returns the canonical provider name
func (c *PrismaClient) Provider() string {
	return c.provider
}

// Generator returns the SQL generator for the provider
func (c *PrismaClient) Generator() sqlgen.Generator {
	return c.gen
}

// Catalog returns the shared key metadata catalog
func (c *PrismaClient) Catalog() *introspect.Catalog {
	return c.catalog
}

// Use adds a middleware to the chain of sessions opened afterwards
func (c *PrismaClient) Use(middleware Middleware) {
	c.middlewares = append(c.middlewares, middleware)
}

// Session pins one connection from the pool
func (c *PrismaClient) Session(ctx context.Context) (*Session, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	mws := make([]Middleware, len(c.middlewares))
	copy(mws, c.middlewares)

	return &Session{
		client:      c,
		conn:        conn,
		middlewares: mws,
		log:         c.log,
	}, nil
}
