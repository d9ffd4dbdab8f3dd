package indices

// Linear issues monotonically increasing identifiers and never recycles
// them. Every assignment gets a fresh slot, so statements recorded with a
// Linear manager never overwrite derivative state. This is the required
// manager for primal-value tapes.
type Linear struct {
	count   Identifier
	largest Identifier
}

// NewLinear creates a Linear manager.
func NewLinear() *Linear { return &Linear{} }

// Assign always issues a fresh identifier, replacing whatever *id held.
func (m *Linear) Assign(id *Identifier) bool {
	m.count++
	*id = m.count
	if m.count > m.largest {
		m.largest = m.count
		return true
	}
	return false
}

// Free resets *id to the inactive sentinel. Linear slots are not pooled.
func (m *Linear) Free(id *Identifier) { *id = Inactive }

// Reset rewinds the running counter so a re-recording reproduces the exact
// identifier sequence. The high-water mark is kept.
func (m *Linear) Reset() { m.count = 0 }

// LargestCreated returns the largest identifier ever issued.
func (m *Linear) LargestCreated() Identifier { return m.largest }
