// Package database provides SQLite connection and session management using GORM.
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ErrUnsupportedDriver indicates the database URL uses an unsupported driver.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// MemoryPath is the SQLite path of a private in-memory database.
const MemoryPath = ":memory:"

// Database wraps a GORM connection with lifecycle management.
type Database struct {
	db *gorm.DB
}

type openConfig struct {
	driverName string
	gormConfig *gorm.Config
}

// Option configures NewDatabase.
type Option func(*openConfig)

// WithDriverName opens SQLite through a database/sql driver registered
// under name instead of the default "sqlite3".
func WithDriverName(name string) Option {
	return func(c *openConfig) { c.driverName = name }
}

// WithGormConfig replaces the GORM configuration.
func WithGormConfig(cfg *gorm.Config) Option {
	return func(c *openConfig) { c.gormConfig = cfg }
}

// NewDatabase creates a new Database from a connection URL.
// Supported URL formats:
// - sqlite:///path/to/file.db
// - sqlite:///:memory:
func NewDatabase(ctx context.Context, url string, opts ...Option) (Database, error) {
	cfg := &openConfig{
		gormConfig: &gorm.Config{Logger: slogGormLogger{}},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	path, err := ParsePath(url)
	if err != nil {
		return Database{}, fmt.Errorf("parse database url: %w", err)
	}

	dialector := sqlite.New(sqlite.Config{
		DriverName: cfg.driverName,
		DSN:        path,
	})

	db, err := gorm.Open(dialector, cfg.gormConfig)
	if err != nil {
		return Database{}, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return Database{}, fmt.Errorf("get underlying db: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if path == MemoryPath {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return Database{}, fmt.Errorf("ping database: %w", err)
	}

	return Database{db: db}, nil
}

// ParsePath extracts the SQLite path from a sqlite:/// URL.
func ParsePath(url string) (string, error) {
	if !strings.HasPrefix(url, "sqlite:///") {
		return "", ErrUnsupportedDriver
	}
	path := strings.TrimPrefix(url, "sqlite:///")
	if path == "" {
		return "", fmt.Errorf("empty sqlite path")
	}
	return path, nil
}

// Session returns a GORM session with the given context.
func (d Database) Session(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx)
}

// Close closes the database connection.
func (d Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("get underlying db: %w", err)
	}
	return sqlDB.Close()
}

// ConfigurePool sets connection pool parameters.
func (d Database) ConfigurePool(maxOpen, maxIdle int, maxLifetime time.Duration) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("get underlying db: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(maxLifetime)
	return nil
}

// IsSQLite returns true if the underlying database is SQLite.
func (d Database) IsSQLite() bool {
	return d.db.Name() == "sqlite"
}
