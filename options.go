package explode

import (
	"log/slog"
	"time"

	"github.com/helixml/explode/domain/tablefunc"
	"github.com/helixml/explode/internal/config"
	"github.com/helixml/explode/internal/database"
)

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	dbURL        string
	logger       *slog.Logger
	functionName string
	queryTimeout time.Duration
	extra        []tablefunc.Function
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		functionName: config.DefaultFunctionName,
		queryTimeout: config.DefaultQueryTimeout,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite opens a SQLite database file at path.
func WithSQLite(path string) Option {
	return func(c *clientConfig) { c.dbURL = "sqlite:///" + path }
}

// WithInMemory opens a private in-memory SQLite database.
func WithInMemory() Option {
	return WithSQLite(database.MemoryPath)
}

// WithDatabaseURL opens the database at a sqlite:/// URL.
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) { c.dbURL = url }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// WithFunctionName registers the range function under name instead of
// explode_times.
func WithFunctionName(name string) Option {
	return func(c *clientConfig) {
		if name != "" {
			c.functionName = name
		}
	}
}

// WithQueryTimeout bounds every Rows, Query and Exec call. Zero disables it.
func WithQueryTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.queryTimeout = d }
}

// WithFunction registers an additional table function.
func WithFunction(fn tablefunc.Function) Option {
	return func(c *clientConfig) { c.extra = append(c.extra, fn) }
}
