package series

// Cursor pulls the values of a Spec one at a time.
//
//	c := spec.Cursor()
//	for c.Next() {
//	    emit(c.Value())
//	}
//
// A Cursor is not safe for concurrent use; create one per consumer.
type Cursor struct {
	spec    Spec
	current int64
	started bool
	done    bool
}

// Cursor returns a new Cursor positioned before the first value.
func (s Spec) Cursor() *Cursor {
	return &Cursor{spec: s}
}

// Next advances to the next value and reports whether one exists.
func (c *Cursor) Next() bool {
	if c.done {
		return false
	}
	if !c.started {
		c.started = true
		if c.spec.Empty() {
			c.done = true
			return false
		}
		c.current = c.spec.low
		return true
	}
	// Compare the remaining distance as unsigned so current+increment never
	// overflows, even when the span exceeds math.MaxInt64.
	if uint64(c.spec.high-c.current) < uint64(c.spec.increment) {
		c.done = true
		return false
	}
	c.current += c.spec.increment
	return true
}

// Value returns the current value. Valid only after Next returned true.
func (c *Cursor) Value() int64 {
	return c.current
}
