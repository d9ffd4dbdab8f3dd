package indices

import "sync/atomic"

// GlobalCounter is the shared identifier source for Parallel managers. Each
// manager claims private blocks from it, so tapes recording concurrently in
// different goroutines never collide on identifiers.
//
// Identifier 0 stays reserved as the inactive sentinel: the counter starts
// handing out ranges at 1.
type GlobalCounter struct {
	next atomic.Int32
}

// NewGlobalCounter creates a counter whose first claimed identifier is 1.
func NewGlobalCounter() *GlobalCounter {
	c := &GlobalCounter{}
	c.next.Store(1)
	return c
}

// Largest returns the largest identifier claimed so far across all managers.
func (c *GlobalCounter) Largest() Identifier {
	return c.next.Load() - 1
}

// claim reserves a half-open range [lo, lo+n) of fresh identifiers.
func (c *GlobalCounter) claim(n int32) (lo Identifier) {
	return c.next.Add(n) - n
}

// Parallel is the thread-safe manager variant: it pools identifiers exactly
// like Reuse but refills from a shared atomic counter in private blocks. One
// Parallel manager belongs to exactly one tape; only the block claim touches
// shared state.
type Parallel struct {
	global    *GlobalCounter
	used      []Identifier
	unused    []Identifier
	largest   Identifier
	blockSize int32
}

// NewParallel creates a Parallel manager drawing from the given counter.
func NewParallel(global *GlobalCounter) *Parallel {
	return &Parallel{global: global, blockSize: DefaultBlockSize}
}

// Assign behaves like Reuse.Assign, claiming a fresh private block from the
// shared counter when both local pools are empty.
func (m *Parallel) Assign(id *Identifier) bool {
	if IsActive(*id) {
		return false
	}
	if n := len(m.used); n > 0 {
		*id = m.used[n-1]
		m.used = m.used[:n-1]
		return false
	}
	grew := false
	if len(m.unused) == 0 {
		lo := m.global.claim(m.blockSize)
		for i := m.blockSize - 1; i >= 0; i-- {
			m.unused = append(m.unused, lo+i)
		}
		m.largest = lo + m.blockSize - 1
		grew = true
	}
	n := len(m.unused)
	*id = m.unused[n-1]
	m.unused = m.unused[:n-1]
	return grew
}

// Free pushes *id onto the local recycle list and resets it to the sentinel.
func (m *Parallel) Free(id *Identifier) {
	if !IsActive(*id) {
		return
	}
	m.used = append(m.used, *id)
	*id = Inactive
}

// Reset returns recycled identifiers to the local unused pool. Claimed
// blocks stay with this manager; the shared counter never rewinds.
func (m *Parallel) Reset() {
	m.unused = append(m.unused, m.used...)
	m.used = m.used[:0]
}

// LargestCreated returns the largest identifier in any block claimed by this
// manager. Derivative vectors local to the owning tape are sized from it.
func (m *Parallel) LargestCreated() Identifier { return m.largest }
