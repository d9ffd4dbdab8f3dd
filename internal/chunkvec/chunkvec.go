// Package chunkvec implements the segmented append-only data store backing
// the tape: a sequence of fixed-capacity chunks that grows by allocating new
// chunks instead of reallocating one contiguous buffer.
//
// Positions taken with Position() remain valid across later appends; only an
// explicit ResetTo invalidates data recorded after the given position.
// Callers that keep several vectors in lockstep (e.g. a statement vector and
// its jacobian vector) are responsible for resetting them consistently.
package chunkvec

import "fmt"

// Position is an immutable bookmark into a Vector: chunk index plus the used
// size of that chunk at the time the position was taken.
//
// Positions are ordered lexicographically by (Chunk, Offset).
type Position struct {
	Chunk  int
	Offset int
}

// Compare returns -1, 0 or +1 if p is before, equal to or after q.
func (p Position) Compare(q Position) int {
	switch {
	case p.Chunk < q.Chunk:
		return -1
	case p.Chunk > q.Chunk:
		return 1
	case p.Offset < q.Offset:
		return -1
	case p.Offset > q.Offset:
		return 1
	default:
		return 0
	}
}

// Before reports whether p is strictly before q.
func (p Position) Before(q Position) bool { return p.Compare(q) < 0 }

// String implements fmt.Stringer.
func (p Position) String() string {
	return fmt.Sprintf("[%d,%d]", p.Chunk, p.Offset)
}

// Vector is a chunked append-only container of records of type T.
//
// Appends must be preceded by Reserve, which rolls over to a fresh chunk when
// the current one cannot hold the reserved run. A reserved run therefore
// never straddles a chunk boundary, which is what lets the evaluation
// callbacks hand out tight intra-chunk ranges.
type Vector[T any] struct {
	chunkSize int
	chunks    [][]T
	cur       int
}

// New creates a Vector whose chunks hold chunkSize records each.
func New[T any](chunkSize int) *Vector[T] {
	if chunkSize <= 0 {
		panic("chunkvec: chunk size must be positive")
	}
	v := &Vector[T]{chunkSize: chunkSize}
	v.chunks = append(v.chunks, make([]T, 0, chunkSize))
	return v
}

// ChunkSize returns the per-chunk record capacity.
func (v *Vector[T]) ChunkSize() int { return v.chunkSize }

// Size returns the total number of records stored.
func (v *Vector[T]) Size() int {
	n := 0
	for i := 0; i <= v.cur; i++ {
		n += len(v.chunks[i])
	}
	return n
}

// NumChunks returns the number of chunks in use, including the current one.
func (v *Vector[T]) NumChunks() int { return v.cur + 1 }

// ChunkData returns the used portion of chunk i. The returned slice aliases
// the vector's storage and must not be retained across a reset.
func (v *Vector[T]) ChunkData(i int) []T { return v.chunks[i] }

// Reserve ensures the current chunk can hold n more records, rolling over to
// the next chunk otherwise. n must not exceed the chunk size.
func (v *Vector[T]) Reserve(n int) {
	if n > v.chunkSize {
		panic(fmt.Sprintf("chunkvec: reserve of %d exceeds chunk size %d", n, v.chunkSize))
	}
	if len(v.chunks[v.cur])+n <= v.chunkSize {
		return
	}
	v.cur++
	if v.cur == len(v.chunks) {
		v.chunks = append(v.chunks, make([]T, 0, v.chunkSize))
	}
}

// Push appends one record. Capacity must have been reserved.
func (v *Vector[T]) Push(rec T) {
	c := v.chunks[v.cur]
	if len(c) == cap(c) {
		panic("chunkvec: push without reserved capacity")
	}
	v.chunks[v.cur] = append(c, rec)
}

// ReserveSpan reserves n records and returns the zeroed span holding them,
// advancing the used size. The span aliases chunk storage; it stays writable
// until the vector is reset past it.
func (v *Vector[T]) ReserveSpan(n int) []T {
	v.Reserve(n)
	c := v.chunks[v.cur]
	start := len(c)
	c = c[:start+n]
	var zero T
	for i := start; i < start+n; i++ {
		c[i] = zero
	}
	v.chunks[v.cur] = c
	return c[start : start+n]
}

// Position returns the current end position.
func (v *Vector[T]) Position() Position {
	return Position{Chunk: v.cur, Offset: len(v.chunks[v.cur])}
}

// ZeroPosition returns the position before the first record.
func (v *Vector[T]) ZeroPosition() Position { return Position{} }

// ResetTo discards every record after p. Later chunks keep their allocation
// and are reused by subsequent appends.
func (v *Vector[T]) ResetTo(p Position) {
	if p.Chunk < 0 || p.Chunk > v.cur || p.Offset > len(v.chunks[p.Chunk]) {
		panic(fmt.Sprintf("chunkvec: reset to invalid position %v", p))
	}
	for i := p.Chunk + 1; i <= v.cur; i++ {
		v.chunks[i] = v.chunks[i][:0]
	}
	v.chunks[p.Chunk] = v.chunks[p.Chunk][:p.Offset]
	v.cur = p.Chunk
}

// Reset discards all records.
func (v *Vector[T]) Reset() { v.ResetTo(Position{}) }

// Swap exchanges the contents of v and other.
func (v *Vector[T]) Swap(other *Vector[T]) {
	v.chunkSize, other.chunkSize = other.chunkSize, v.chunkSize
	v.chunks, other.chunks = other.chunks, v.chunks
	v.cur, other.cur = other.cur, v.cur
}

// RangeFunc receives one contiguous run of records together with the
// half-open intra-chunk range [begin, end) that is valid for this run.
type RangeFunc[T any] func(data []T, begin, end int)

// EvaluateForward invokes fn once per contiguous run between start and end,
// in forward order.
func (v *Vector[T]) EvaluateForward(start, end Position, fn RangeFunc[T]) {
	if end.Before(start) {
		panic("chunkvec: forward evaluation with end before start")
	}
	for c := start.Chunk; c <= end.Chunk; c++ {
		begin := 0
		if c == start.Chunk {
			begin = start.Offset
		}
		stop := len(v.chunks[c])
		if c == end.Chunk {
			stop = end.Offset
		}
		if begin < stop {
			fn(v.chunks[c], begin, stop)
		}
	}
}

// EvaluateReverse invokes fn once per contiguous run between end and start,
// in reverse chunk order. The callback is expected to walk its run backwards.
func (v *Vector[T]) EvaluateReverse(start, end Position, fn RangeFunc[T]) {
	if end.Before(start) {
		panic("chunkvec: reverse evaluation with end before start")
	}
	for c := end.Chunk; c >= start.Chunk; c-- {
		begin := 0
		if c == start.Chunk {
			begin = start.Offset
		}
		stop := len(v.chunks[c])
		if c == end.Chunk {
			stop = end.Offset
		}
		if begin < stop {
			fn(v.chunks[c], begin, stop)
		}
	}
}

// ForEachChunk invokes fn for every used chunk in order, stopping at the
// first error. Used by the persistence layer.
func (v *Vector[T]) ForEachChunk(fn func(chunk []T) error) error {
	for i := 0; i <= v.cur; i++ {
		if err := fn(v.chunks[i]); err != nil {
			return err
		}
	}
	return nil
}

// PushChunk appends a whole chunk's worth of records, used when restoring a
// persisted vector. The chunk must not exceed the configured chunk size.
func (v *Vector[T]) PushChunk(chunk []T) error {
	if len(chunk) > v.chunkSize {
		return fmt.Errorf("chunkvec: restored chunk of %d records exceeds chunk size %d", len(chunk), v.chunkSize)
	}
	if len(v.chunks[v.cur]) > 0 {
		v.cur++
		if v.cur == len(v.chunks) {
			v.chunks = append(v.chunks, make([]T, 0, v.chunkSize))
		}
	}
	v.chunks[v.cur] = append(v.chunks[v.cur][:0], chunk...)
	return nil
}
