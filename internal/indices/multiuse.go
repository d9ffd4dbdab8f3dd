package indices

// MultiUse extends Reuse with per-identifier reference counts, enabling the
// copy optimization: a pure copy shares its source's slot instead of
// recording a copy statement, and the slot is recycled only when its last
// holder releases it.
type MultiUse struct {
	reuse Reuse
	use   []int32 // use[id] is the reference count of id
}

// NewMultiUse creates a MultiUse manager.
func NewMultiUse(opts ...ReuseOption) *MultiUse {
	m := &MultiUse{}
	for _, o := range opts {
		o(&m.reuse)
	}
	if m.reuse.blockSize == 0 {
		m.reuse.blockSize = DefaultBlockSize
	}
	return m
}

// Assign gives *id a slot with reference count one. An active *id that is
// solely owned is kept; a shared one is released and replaced, so writing
// through one holder never disturbs the others.
func (m *MultiUse) Assign(id *Identifier) bool {
	if IsActive(*id) {
		if m.use[*id] == 1 {
			return false
		}
		m.use[*id]--
		*id = Inactive
	}
	grew := m.reuse.Assign(id)
	m.ensureUseSize()
	m.use[*id] = 1
	return grew
}

// Free decrements *id's reference count, recycling the slot when it reaches
// zero, and resets *id to the sentinel.
func (m *MultiUse) Free(id *Identifier) {
	if !IsActive(*id) {
		return
	}
	m.use[*id]--
	if m.use[*id] == 0 {
		m.reuse.used = append(m.reuse.used, *id)
	}
	*id = Inactive
}

// Copy points dst at src's slot, bumping src's reference count. A self-copy
// is a no-op so the shared slot is not spuriously released; copying from a
// passive source just deactivates dst.
func (m *MultiUse) Copy(dst *Identifier, src Identifier) {
	if *dst == src {
		return
	}
	m.Free(dst)
	if !IsActive(src) {
		return
	}
	m.use[src]++
	*dst = src
}

// Reset recycles all pooled identifiers and clears the reference counts.
func (m *MultiUse) Reset() {
	m.reuse.Reset()
	for i := range m.use {
		m.use[i] = 0
	}
}

// LargestCreated returns the high-water mark of the global counter.
func (m *MultiUse) LargestCreated() Identifier { return m.reuse.count }

// UseCount returns the reference count of id, zero for the sentinel.
func (m *MultiUse) UseCount(id Identifier) int32 {
	if !IsActive(id) || int(id) >= len(m.use) {
		return 0
	}
	return m.use[id]
}

func (m *MultiUse) ensureUseSize() {
	need := int(m.reuse.count) + 1
	for len(m.use) < need {
		m.use = append(m.use, 0)
	}
}
