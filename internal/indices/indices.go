// Package indices manages the integer identifiers that tag each active
// variable's slot in the tape's derivative store.
//
// Four manager variants are provided:
//   - Linear: monotonically increasing, never reused. Cheapest, unbounded.
//   - Reuse: recycles freed identifiers through a free list.
//   - MultiUse: adds reference counting so pure copies can share an
//     identifier without recording a statement.
//   - Parallel: partitions an atomic global counter into per-manager ranges
//     so concurrently recording tapes never collide.
//
// Identifier 0 is permanently reserved as the inactive (passive) sentinel
// and is never assigned to an active variable.
package indices

// Identifier is an opaque handle into the tape's derivative store.
type Identifier = int32

// Inactive is the sentinel identifier of passive values.
const Inactive Identifier = 0

// IsActive reports whether id tags an active variable.
func IsActive(id Identifier) bool { return id != Inactive }

// DefaultBlockSize is the number of fresh identifiers generated per refill of
// a manager's unused pool.
const DefaultBlockSize = 256

// Manager assigns, reuses and frees identifiers.
type Manager interface {
	// Assign gives *id an identifier if it holds the inactive sentinel; an
	// already active identifier is kept (or, for the refcounted variant,
	// replaced when shared). It returns whether the global high-water mark
	// grew, which signals callers to resize their derivative vectors.
	Assign(id *Identifier) bool

	// Free returns *id to the manager and resets it to the inactive
	// sentinel. Freeing the sentinel is a no-op.
	Free(id *Identifier)

	// Reset returns all freed identifiers to the unused pool without
	// shrinking the high-water mark.
	Reset()

	// LargestCreated returns the largest identifier ever issued by this
	// manager. Derivative vectors must be sized to hold it.
	LargestCreated() Identifier
}

// CopyManager is implemented by variants with copy optimization: Copy points
// dst at src's slot without consuming a fresh identifier, so a pure copy
// needs no statement. A self-copy is a no-op.
type CopyManager interface {
	Manager
	Copy(dst *Identifier, src Identifier)
}
