//go:build sqlite_vtable

package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/helixml/explode/domain/argument"
	"github.com/helixml/explode/domain/tablefunc"
	"github.com/mattn/go-sqlite3"
)

// VTableSupported reports whether virtual tables are compiled in.
const VTableSupported = true

// RegisterDriver registers a database/sql driver under name whose
// connections expose every function in reg as a table-valued function.
// Registering the same name twice is a no-op.
func RegisterDriver(name string, reg *tablefunc.Registry, logger *slog.Logger) error {
	if name == "" {
		name = DefaultDriverName
	}
	if logger == nil {
		logger = slog.Default()
	}

	registeredMu.Lock()
	defer registeredMu.Unlock()
	if registered[name] {
		return nil
	}

	sql.Register(name, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			for _, fn := range reg.All() {
				if err := conn.CreateModule(fn.Name(), newModule(fn, logger)); err != nil {
					return fmt.Errorf("create module %s: %w", fn.Name(), err)
				}
			}
			return nil
		},
	})
	registered[name] = true
	logger.Debug("registered sqlite driver", "driver", name, "functions", reg.Names())
	return nil
}

// module adapts a tablefunc.Function to an eponymous-only SQLite module.
type module struct {
	fn     tablefunc.Function
	logger *slog.Logger
}

func newModule(fn tablefunc.Function, logger *slog.Logger) *module {
	return &module{fn: fn, logger: logger}
}

// EponymousOnlyModule marks the module as callable only by its own name.
func (m *module) EponymousOnlyModule() {}

func (m *module) Create(c *sqlite3.SQLiteConn, _ []string) (sqlite3.VTab, error) {
	if err := c.DeclareVTab(declareSQL(m.fn)); err != nil {
		return nil, fmt.Errorf("declare %s: %w", m.fn.Name(), err)
	}
	return &table{fn: m.fn, logger: m.logger, arity: m.fn.Signature().Max}, nil
}

func (m *module) Connect(c *sqlite3.SQLiteConn, args []string) (sqlite3.VTab, error) {
	return m.Create(c, args)
}

func (m *module) DestroyModule() {}

// declareSQL renders the CREATE TABLE statement SQLite expects: one
// visible value column and one hidden column per argument.
func declareSQL(fn tablefunc.Function) string {
	cols := []string{"value INTEGER"}
	for i := 1; i <= fn.Signature().Max; i++ {
		cols = append(cols, fmt.Sprintf("arg%d HIDDEN", i))
	}
	return fmt.Sprintf("CREATE TABLE x(%s)", strings.Join(cols, ", "))
}

// table is one connection's instance of the virtual table.
type table struct {
	fn     tablefunc.Function
	logger *slog.Logger
	arity  int
}

// unusableCost prices plans whose argument values are not yet available
// (a correlated argument bound to an outer table that has not been scanned).
const unusableCost = 1e300

// BestIndex runs at statement preparation. Equality constraints on the
// hidden columns are the call arguments; their count is the call's arity.
// IdxStr records which argument each argv slot fills.
func (t *table) BestIndex(cst []sqlite3.InfoConstraint, _ []sqlite3.InfoOrderBy) (*sqlite3.IndexResult, error) {
	used := make([]bool, len(cst))
	slot := make(map[int]int, t.arity) // argument position -> constraint index
	unusable := false

	for i, c := range cst {
		if c.Column < 1 || c.Column > t.arity || c.Op != sqlite3.OpEQ {
			continue
		}
		pos := c.Column - 1
		if _, seen := slot[pos]; seen {
			continue
		}
		slot[pos] = i
		if !c.Usable {
			unusable = true
		}
	}

	// Arguments fill hidden columns left to right, so a gap means a
	// WHERE clause constrained a later column without the earlier ones.
	count := len(slot)
	for pos := 0; pos < count; pos++ {
		if _, ok := slot[pos]; !ok {
			count = pos
			break
		}
	}

	if err := t.bind(count); err != nil {
		return nil, err
	}

	if unusable {
		return &sqlite3.IndexResult{
			Used:          used,
			EstimatedCost: unusableCost,
			EstimatedRows: unusableCost,
		}, nil
	}

	for pos := 0; pos < count; pos++ {
		used[slot[pos]] = true
	}

	// argv is filled in constraint order; record the argument position of
	// each used constraint in that same order.
	argvOrder := make([]string, 0, count)
	for i := range cst {
		if !used[i] {
			continue
		}
		argvOrder = append(argvOrder, strconv.Itoa(cst[i].Column-1))
	}

	return &sqlite3.IndexResult{
		Used:          used,
		IdxNum:        count,
		IdxStr:        strings.Join(argvOrder, ","),
		EstimatedCost: 1,
		EstimatedRows: 1000,
	}, nil
}

// bind checks the call arity. SQLite columns are dynamically typed, so
// kinds are checked per row in Filter.
func (t *table) bind(count int) error {
	descriptors := make([]argument.Descriptor, count)
	for i := range descriptors {
		descriptors[i] = argument.IntegerDescriptor(i)
	}
	_, err := t.fn.Bind(descriptors)
	return err
}

func (t *table) Open() (sqlite3.VTabCursor, error) {
	return &cursor{table: t}, nil
}

func (t *table) Disconnect() error { return nil }

func (t *table) Destroy() error { return nil }
