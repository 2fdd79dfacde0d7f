//go:build sqlite_vtable

package sqlite

import (
	"context"
	"fmt"
	"iter"

	"github.com/mattn/go-sqlite3"
)

// cursor evaluates one input row per Filter call and pulls the produced
// values one at a time.
type cursor struct {
	table *table
	args  []any
	next  func() (int64, bool)
	stop  func()
	value int64
	rowid int64
	eof   bool
}

func (c *cursor) Filter(_ int, idxStr string, vals []any) error {
	c.release()

	order, err := parseArgvOrder(idxStr)
	if err != nil {
		return err
	}
	if len(order) != len(vals) {
		return fmt.Errorf("%s: %d argument values for %d arguments", c.table.fn.Name(), len(vals), len(order))
	}

	args := make([]any, len(vals))
	for i, pos := range order {
		if pos < 0 || pos >= len(args) {
			return fmt.Errorf("%s: argument position %d out of range", c.table.fn.Name(), pos)
		}
		args[pos] = vals[i]
	}

	seq, err := c.table.fn.EvaluateRow(context.Background(), args)
	if err != nil {
		c.eof = true
		return err
	}

	c.args = args
	c.rowid = 0
	c.start(seq)
	return c.Next()
}

func (c *cursor) start(seq iter.Seq[int64]) {
	c.next, c.stop = iter.Pull(seq)
	c.eof = false
}

func (c *cursor) Next() error {
	if c.next == nil {
		c.eof = true
		return nil
	}
	v, ok := c.next()
	if !ok {
		c.eof = true
		c.release()
		return nil
	}
	c.value = v
	c.rowid++
	return nil
}

func (c *cursor) EOF() bool {
	return c.eof
}

func (c *cursor) Column(ctx *sqlite3.SQLiteContext, col int) error {
	if col == 0 {
		ctx.ResultInt64(c.value)
		return nil
	}
	pos := col - 1
	if pos < len(c.args) {
		if n, ok := c.args[pos].(int64); ok {
			ctx.ResultInt64(n)
			return nil
		}
	}
	ctx.ResultNull()
	return nil
}

func (c *cursor) Rowid() (int64, error) {
	return c.rowid, nil
}

func (c *cursor) Close() error {
	c.release()
	return nil
}

// release stops a pending iter.Pull so its goroutine state is freed.
func (c *cursor) release() {
	if c.stop != nil {
		c.stop()
	}
	c.next = nil
	c.stop = nil
}
