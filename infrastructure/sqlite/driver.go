// Package sqlite hosts table functions inside SQLite as eponymous virtual
// tables, so they can be called from SQL:
//
//	SELECT value FROM explode_times(1, 10, 3);
//	SELECT g.name, e.value FROM groups AS g, explode_times(1, g.high) AS e;
//
// Virtual table support in github.com/mattn/go-sqlite3 is compiled only with
// the sqlite_vtable build tag:
//
//	go build -tags sqlite_vtable
//
// Without it RegisterDriver returns ErrVTableUnsupported.
package sqlite

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// DefaultDriverName is the database/sql driver name RegisterDriver uses
// when none is given.
const DefaultDriverName = "sqlite3_tablefunc"

// ErrVTableUnsupported indicates the binary was built without the
// sqlite_vtable tag.
var ErrVTableUnsupported = errors.New("sqlite: virtual tables unsupported, build with -tags sqlite_vtable")

// registered tracks driver names already passed to sql.Register, which
// panics on duplicates.
var (
	registeredMu sync.Mutex
	registered   = map[string]bool{}
)

// driverSeq numbers the drivers NewDriverName hands out.
var driverSeq atomic.Uint64

// DriverName derives a readable driver name from the functions a registry
// holds.
func DriverName(names []string) string {
	if len(names) == 0 {
		return DefaultDriverName
	}
	return DefaultDriverName + ":" + strings.Join(names, ",")
}

// NewDriverName returns a driver name no other call in this process returns.
// Each registry needs its own driver: a connect hook is fixed when the
// driver is registered, so registries with the same function names would
// otherwise run each other's functions.
func NewDriverName(names []string) string {
	return fmt.Sprintf("%s#%d", DriverName(names), driverSeq.Add(1))
}

// parseArgvOrder decodes the IdxStr produced by BestIndex.
func parseArgvOrder(idxStr string) ([]int, error) {
	if idxStr == "" {
		return nil, nil
	}
	parts := strings.Split(idxStr, ",")
	order := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("parse index string %q: %w", idxStr, err)
		}
		order[i] = n
	}
	return order, nil
}
