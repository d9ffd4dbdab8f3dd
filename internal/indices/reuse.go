package indices

import "sort"

// Reuse recycles freed identifiers. Identifiers released with Free go onto
// the used list and are handed out again before the global counter grows, so
// long-running recordings with short-lived intermediates stay compact.
type Reuse struct {
	used      []Identifier // freed during this recording, ready for reuse
	unused    []Identifier // never yet issued
	count     Identifier   // global high-water counter
	blockSize int
	sortReset bool
}

// ReuseOption configures a Reuse manager.
type ReuseOption func(*Reuse)

// WithBlockSize sets how many fresh identifiers are generated per refill.
func WithBlockSize(n int) ReuseOption {
	return func(m *Reuse) {
		if n > 0 {
			m.blockSize = n
		}
	}
}

// WithSortedReset makes Reset sort the recycled pool ascending, improving
// memory locality when the tape is re-recorded.
func WithSortedReset() ReuseOption {
	return func(m *Reuse) { m.sortReset = true }
}

// NewReuse creates a Reuse manager.
func NewReuse(opts ...ReuseOption) *Reuse {
	m := &Reuse{blockSize: DefaultBlockSize}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Assign pops a recycled identifier if one is available, otherwise an unused
// one, refilling the unused pool from the global counter when empty. An
// already active *id is kept as is.
func (m *Reuse) Assign(id *Identifier) bool {
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
		m.generateBlock()
		grew = true
	}
	n := len(m.unused)
	*id = m.unused[n-1]
	m.unused = m.unused[:n-1]
	return grew
}

// Free pushes *id onto the recycle list and resets it to the sentinel.
func (m *Reuse) Free(id *Identifier) {
	if !IsActive(*id) {
		return
	}
	m.used = append(m.used, *id)
	*id = Inactive
}

// Reset returns all recycled identifiers to the unused pool.
func (m *Reuse) Reset() {
	m.unused = append(m.unused, m.used...)
	m.used = m.used[:0]
	if m.sortReset {
		sort.Slice(m.unused, func(i, j int) bool { return m.unused[i] > m.unused[j] })
	}
}

// LargestCreated returns the high-water mark of the global counter.
func (m *Reuse) LargestCreated() Identifier { return m.count }

// generateBlock refills the unused pool, pushed in descending order so the
// smallest identifier is popped first.
func (m *Reuse) generateBlock() {
	top := m.count + Identifier(m.blockSize)
	for id := top; id > m.count; id-- {
		m.unused = append(m.unused, id)
	}
	m.count = top
}
