package tape

import "github.com/spool-ml/spool/internal/ops"

// VectorAccess abstracts reads and writes of tape-managed derivative and
// primal storage by identifier. All sweeps and low-level function callbacks
// go through this boundary, so custom adjoint storage strategies can be
// substituted without touching sweep logic.
//
// Implementations are not required to bounds-check writes beyond growing or
// rejecting; the default implementations tolerate reads of any identifier
// and report zero outside the sized range.
type VectorAccess interface {
	// VectorSize returns the number of slots, one past the largest usable
	// identifier.
	VectorSize() int

	// HasPrimals reports whether primal values are available through this
	// access (true for primal-value tapes).
	HasPrimals() bool

	// Adjoint returns the adjoint (or tangent) of id.
	Adjoint(id Identifier) Real

	// SetAdjoint overwrites the adjoint of id.
	SetAdjoint(id Identifier, v Real)

	// UpdateAdjoint adds delta into the adjoint of id. Reverse sweeps only
	// ever update operand slots this way; sum-accumulation is what makes
	// repeated operands correct.
	UpdateAdjoint(id Identifier, delta Real)

	// ResetAdjoint zeroes the adjoint of id.
	ResetAdjoint(id Identifier)

	// UpdateAdjointVec performs the seeded bulk update
	// adjoint[ids[i]] += partials[i] * seed for all i.
	UpdateAdjointVec(ids []Identifier, partials []Real, seed Real)

	// Primal returns the primal value of id. Zero when primals are not
	// available.
	Primal(id Identifier) Real

	// SetPrimal overwrites the primal value of id. No-op when primals are
	// not available.
	SetPrimal(id Identifier, v Real)
}

// sliceAccess is the default VectorAccess over dense slices. primals is nil
// for Jacobian-encoding tapes.
type sliceAccess struct {
	adjoints []Real
	primals  []Real
}

// NewVectorAccess wraps dense adjoint and primal slices as a VectorAccess.
// primals may be nil. Mainly useful to drive low-level function callbacks in
// tests.
func NewVectorAccess(adjoints, primals []Real) VectorAccess {
	return &sliceAccess{adjoints: adjoints, primals: primals}
}

func (s *sliceAccess) VectorSize() int  { return len(s.adjoints) }
func (s *sliceAccess) HasPrimals() bool { return s.primals != nil }

func (s *sliceAccess) Adjoint(id Identifier) Real {
	if int(id) >= len(s.adjoints) {
		return 0
	}
	return s.adjoints[id]
}

func (s *sliceAccess) SetAdjoint(id Identifier, v Real) {
	if int(id) < len(s.adjoints) {
		s.adjoints[id] = v
	}
}

func (s *sliceAccess) UpdateAdjoint(id Identifier, delta Real) {
	if int(id) < len(s.adjoints) {
		s.adjoints[id] += delta
	}
}

func (s *sliceAccess) ResetAdjoint(id Identifier) {
	if int(id) < len(s.adjoints) {
		s.adjoints[id] = 0
	}
}

func (s *sliceAccess) UpdateAdjointVec(ids []Identifier, partials []Real, seed Real) {
	for i, id := range ids {
		s.UpdateAdjoint(id, partials[i]*seed)
	}
}

func (s *sliceAccess) Primal(id Identifier) Real {
	if s.primals == nil || int(id) >= len(s.primals) {
		return 0
	}
	return s.primals[id]
}

func (s *sliceAccess) SetPrimal(id Identifier, v Real) {
	if s.primals != nil && int(id) < len(s.primals) {
		s.primals[id] = v
	}
}

// Identifier and Real are re-exported here so tape users rarely need to
// import the ops package for plain bookkeeping.
type (
	// Identifier tags an active value's derivative slot.
	Identifier = ops.Identifier
	// Real is the numeric type of the engine.
	Real = ops.Real
)
