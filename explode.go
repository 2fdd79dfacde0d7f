// Package explode provides table-generating functions over integer ranges,
// callable in process or from SQL.
//
// The built-in explode_times function takes one to three integers:
//
//	explode_times(high)                  1..high
//	explode_times(low, high)             low..high
//	explode_times(low, high, increment)  low, low+increment, ... <= high
//
// Basic usage:
//
//	client, err := explode.New(explode.WithInMemory())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// In process
//	values, err := client.Rows(ctx, "explode_times", 1, 10, 3) // 1 4 7 10
//
//	// From SQL (requires -tags sqlite_vtable)
//	rows, err := client.Query(ctx, "SELECT value FROM explode_times(5)")
package explode

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/helixml/explode/application/service"
	"github.com/helixml/explode/domain/tablefunc"
	"github.com/helixml/explode/infrastructure/sqlite"
	"github.com/helixml/explode/internal/database"
)

// Row is one result row of Query: ordered column names and values.
type Row = database.Row

// Client is the main entry point for the explode library.
//
//	client.Functions.Names()
//	client.Rows(ctx, "explode_times", 3)
//	client.Query(ctx, "SELECT value FROM explode_times(3)")
type Client struct {
	// Functions holds every registered table function.
	Functions *tablefunc.Registry

	db           *database.Database
	sqlFunctions bool
	queryTimeout time.Duration
	logger       *slog.Logger
	closed       atomic.Bool
	mu           sync.Mutex
}

// New creates a new Client with the given options. Without a database
// option only Rows is available.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	reg, err := service.NewRegistry(cfg.functionName, logger, cfg.extra...)
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}

	client := &Client{
		Functions:    reg,
		queryTimeout: cfg.queryTimeout,
		logger:       logger,
	}

	if cfg.dbURL != "" {
		if err := client.openDatabase(cfg.dbURL); err != nil {
			return nil, errors.Join(err, reg.Close())
		}
	}

	logger.Debug("explode client ready",
		slog.Any("functions", reg.Names()),
		slog.Bool("sql_functions", client.sqlFunctions),
	)
	return client, nil
}

// openDatabase opens url through a driver exposing the registry. Builds
// without virtual table support fall back to plain SQLite.
func (c *Client) openDatabase(url string) error {
	var opts []database.Option
	driver := sqlite.NewDriverName(c.Functions.Names())
	err := sqlite.RegisterDriver(driver, c.Functions, c.logger)
	switch {
	case err == nil:
		opts = append(opts, database.WithDriverName(driver))
		c.sqlFunctions = true
	case errors.Is(err, sqlite.ErrVTableUnsupported):
		c.logger.Warn("table functions unavailable from SQL", slog.String("reason", err.Error()))
	default:
		return fmt.Errorf("register sqlite driver: %w", err)
	}
	opts = append(opts, database.WithLogger(c.logger))

	db, err := database.NewDatabase(context.Background(), url, opts...)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	c.db = &db
	return nil
}

// SQLFunctions reports whether the registered functions can be called from SQL.
func (c *Client) SQLFunctions() bool {
	return c.sqlFunctions
}

// Values binds and evaluates the named function in process and returns its
// lazy sequence of values. The sequence is not bounded by the query timeout;
// callers that drain it wrap ctx with TimeoutContext and check it between
// values.
func (c *Client) Values(ctx context.Context, name string, args ...any) (iter.Seq[int64], error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	fn, err := c.Functions.Lookup(name)
	if err != nil {
		return nil, err
	}
	return service.Prepare(ctx, fn, args)
}

// Rows evaluates the named function in process and returns every value it
// produces.
func (c *Client) Rows(ctx context.Context, name string, args ...any) ([]int64, error) {
	ctx, cancel := c.TimeoutContext(ctx)
	defer cancel()

	seq, err := c.Values(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	values, err := tablefunc.Collect(ctx, seq)
	if err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "rows evaluated", slog.String("function", name), slog.Int("rows", len(values)))
	return values, nil
}

// Query runs a SQL query and returns every result row.
func (c *Client) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	db, err := c.database()
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.TimeoutContext(ctx)
	defer cancel()

	return database.Query(ctx, db.Session(ctx), query, args...)
}

// Exec runs statements in order inside one transaction.
func (c *Client) Exec(ctx context.Context, statements ...string) error {
	db, err := c.database()
	if err != nil {
		return err
	}

	ctx, cancel := c.TimeoutContext(ctx)
	defer cancel()

	return database.ExecAll(ctx, *db, statements...)
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Close releases the database and every registered function.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if err := c.Functions.Close(); err != nil {
		errs = append(errs, err)
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	c.logger.Debug("explode client closed")
	return errors.Join(errs...)
}

func (c *Client) database() (*database.Database, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	if c.db == nil {
		return nil, ErrNoDatabase
	}
	return c.db, nil
}

// TimeoutContext derives a context bounded by the client's query timeout.
func (c *Client) TimeoutContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.queryTimeout)
}
