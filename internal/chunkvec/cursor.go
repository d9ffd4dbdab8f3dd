package chunkvec

// ForwardCursor walks a vector record by record from a starting position.
// It is used to keep a secondary vector (e.g. jacobian entries) in lockstep
// with the primary statement traversal.
type ForwardCursor[T any] struct {
	v     *Vector[T]
	chunk int
	off   int
}

// NewForwardCursor creates a cursor positioned at p.
func NewForwardCursor[T any](v *Vector[T], p Position) *ForwardCursor[T] {
	return &ForwardCursor[T]{v: v, chunk: p.Chunk, off: p.Offset}
}

// Next returns a pointer to the next record and advances the cursor. The
// caller must not step past the data recorded at traversal start.
func (c *ForwardCursor[T]) Next() *T {
	for c.off >= len(c.v.chunks[c.chunk]) {
		c.chunk++
		c.off = 0
	}
	rec := &c.v.chunks[c.chunk][c.off]
	c.off++
	return rec
}

// ReverseCursor walks a vector record by record backwards from a position.
type ReverseCursor[T any] struct {
	v     *Vector[T]
	chunk int
	off   int
}

// NewReverseCursor creates a cursor positioned at p; the first Prev returns
// the record immediately before p.
func NewReverseCursor[T any](v *Vector[T], p Position) *ReverseCursor[T] {
	return &ReverseCursor[T]{v: v, chunk: p.Chunk, off: p.Offset}
}

// Prev steps the cursor back one record and returns it.
func (c *ReverseCursor[T]) Prev() *T {
	for c.off == 0 {
		c.chunk--
		c.off = len(c.v.chunks[c.chunk])
	}
	c.off--
	return &c.v.chunks[c.chunk][c.off]
}
