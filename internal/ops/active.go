package ops

import "github.com/spool-ml/spool/internal/indices"

// Active is a tagged floating-point scalar: the primal value it computed
// plus the identifier of its slot in the tape's derivative store. Actives
// are small values, copied freely; the derivative slot behind the identifier
// is owned by the tape, never by the Active.
type Active struct {
	value Real
	id    Identifier
}

// NewActive builds an Active. Tapes construct these; user code obtains them
// from RegisterInput and Store.
func NewActive(value Real, id Identifier) Active {
	return Active{value: value, id: id}
}

// Value returns the primal value.
func (a Active) Value() Real { return a.value }

// Identifier returns the derivative-store slot handle, or the inactive
// sentinel for a passive value.
func (a Active) Identifier() Identifier { return a.id }

// IsActive reports whether the value participates in differentiation.
func (a Active) IsActive() bool { return indices.IsActive(a.id) }

// ActiveCount implements Expr.
func (a Active) ActiveCount() int {
	if a.IsActive() {
		return 1
	}
	return 0
}

// AccumulatePartials implements Expr: an active leaf receives the
// accumulated chain-rule multiplier as its partial.
func (a Active) AccumulatePartials(visit PartialVisitor, mult Real) {
	if a.IsActive() {
		visit(a.id, mult)
	}
}

// RecordElementary implements Expr: a leaf records nothing.
func (a Active) RecordElementary(Recorder) Identifier { return a.id }

// Invalidate deactivates the value in place and returns the identifier it
// held, so the owning tape can release the slot.
func (a *Active) Invalidate() Identifier {
	id := a.id
	a.id = indices.Inactive
	return id
}

// constExpr is a passive leaf.
type constExpr struct {
	value Real
}

// Const wraps a plain number as a passive expression leaf.
func Const(v Real) Expr { return constExpr{value: v} }

func (c constExpr) Value() Real                          { return c.value }
func (c constExpr) ActiveCount() int                     { return 0 }
func (c constExpr) AccumulatePartials(PartialVisitor, Real) {}
func (c constExpr) RecordElementary(Recorder) Identifier { return indices.Inactive }
