package sequence

import "context"

// Cursor is a stateful read handle over a Sequence. It counts the elements
// it has handed out, can take back elements that were read too early, and
// remembers the first error it saw: after an error every Next returns it.
type Cursor struct {
	src    Sequence
	buf    []Pair
	pos    int
	err    error
	done   bool
	closed bool
}

// NewCursor wraps src. A Cursor passed in is returned unchanged.
func NewCursor(src Sequence) *Cursor {
	if c, ok := src.(*Cursor); ok {
		return c
	}
	return &Cursor{src: src}
}

// Next returns the next element, taking pushed-back elements first.
func (c *Cursor) Next(ctx context.Context) (Pair, bool, error) {
	if n := len(c.buf); n > 0 {
		p := c.buf[n-1]
		c.buf = c.buf[:n-1]
		c.pos++
		return p, true, nil
	}
	if c.err != nil {
		return Pair{}, false, c.err
	}
	if c.done {
		return Pair{}, false, nil
	}
	p, ok, err := c.src.Next(ctx)
	if err != nil {
		c.err = err
		c.done = true
		return Pair{}, false, err
	}
	if !ok {
		c.done = true
		return Pair{}, false, nil
	}
	c.pos++
	return p, true, nil
}

// Unread pushes p back so that the next call to Next returns it.
func (c *Cursor) Unread(p Pair) {
	c.buf = append(c.buf, p)
	if c.pos > 0 {
		c.pos--
	}
}

// Peek returns the next element without consuming it. Repeated calls
// return the same element.
func (c *Cursor) Peek(ctx context.Context) (Pair, bool, error) {
	if n := len(c.buf); n > 0 {
		return c.buf[n-1], true, nil
	}
	p, ok, err := c.Next(ctx)
	if err != nil || !ok {
		return Pair{}, false, err
	}
	c.Unread(p)
	return p, true, nil
}

// Advance discards up to n elements and returns how many were discarded.
func (c *Cursor) Advance(ctx context.Context, n int) (int, error) {
	skipped := 0
	for skipped < n {
		_, ok, err := c.Next(ctx)
		if err != nil {
			return skipped, err
		}
		if !ok {
			break
		}
		skipped++
	}
	return skipped, nil
}

// Pos returns the number of elements handed out so far.
func (c *Cursor) Pos() int { return c.pos }

// Err returns the sticky error, if any.
func (c *Cursor) Err() error { return c.err }

// Exhausted reports whether the source has ended and nothing is pushed back.
func (c *Cursor) Exhausted() bool { return c.done && len(c.buf) == 0 }

// Fail makes err sticky and drops anything pushed back.
func (c *Cursor) Fail(err error) {
	c.err = err
	c.done = true
	c.buf = nil
}

// Close closes the underlying Sequence once.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.done = true
	c.buf = nil
	return c.src.Close()
}
