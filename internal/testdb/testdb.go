// Package testdb opens throwaway SQLite databases for tests.
package testdb

import (
	"context"
	"testing"

	"github.com/helixml/explode/domain/tablefunc"
	"github.com/helixml/explode/infrastructure/sqlite"
	"github.com/helixml/explode/internal/database"
	"github.com/helixml/explode/internal/log"
)

// WithFunctions opens an in-memory database whose connections expose every
// function in reg, then runs statements against it. The test is skipped when
// the binary lacks virtual table support.
func WithFunctions(t *testing.T, reg *tablefunc.Registry, statements ...string) database.Database {
	t.Helper()
	if !sqlite.VTableSupported {
		t.Skip("virtual tables unsupported, run with -tags sqlite_vtable")
	}
	driver := sqlite.NewDriverName(reg.Names())
	if err := sqlite.RegisterDriver(driver, reg, log.Discard()); err != nil {
		t.Fatalf("testdb.WithFunctions: register driver: %v", err)
	}
	db := open(t, driver)
	exec(t, db, statements)
	return db
}

func open(t *testing.T, driver string) database.Database {
	t.Helper()
	db, err := database.NewDatabase(context.Background(), "sqlite:///"+database.MemoryPath,
		database.WithLogger(log.Discard()),
		database.WithDriverName(driver),
	)
	if err != nil {
		t.Fatalf("testdb: open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func exec(t *testing.T, db database.Database, statements []string) {
	t.Helper()
	if err := database.ExecAll(context.Background(), db, statements...); err != nil {
		t.Fatalf("testdb: %v", err)
	}
}
