// Package ops implements the expression recording layer: lightweight
// expression trees built by composing operation constructors, consumed by a
// tape when a statement is stored.
//
// Go has no operator overloading, so expressions are small interface-node
// trees built and torn down within a single statement's scope; they are
// never persisted. An expression exposes its primal value, the number of
// active leaves underneath it, and a partial-accumulation walk that applies
// the chain rule down to each active leaf.
//
// Each elementary operation also registers an evaluation Handle, keyed by a
// small integer token, so primal-value tapes can re-execute and
// re-differentiate recorded statements without the original tree.
package ops

import (
	"github.com/spool-ml/spool/internal/indices"
)

// Real is the numeric type flowing through expressions.
type Real = float64

// Identifier tags an active value's slot in the tape's derivative store.
type Identifier = indices.Identifier

// PartialVisitor receives one (identifier, partial) pair per active leaf.
type PartialVisitor func(id Identifier, partial Real)

// Expr is one node of an expression tree.
type Expr interface {
	// Value returns the primal value of this subtree.
	Value() Real

	// ActiveCount returns the number of active leaves in this subtree.
	ActiveCount() int

	// AccumulatePartials walks the subtree, invoking visit for every active
	// leaf with the local partial derivative of the tree root with respect
	// to that leaf, scaled by mult.
	AccumulatePartials(visit PartialVisitor, mult Real)

	// RecordElementary emits the subtree onto rec one statement per
	// elementary operation and returns the identifier holding the subtree's
	// value, or the inactive sentinel for a fully passive subtree. Used by
	// the primal-value encoding.
	RecordElementary(rec Recorder) Identifier
}

// Recorder is the tape-side sink for the primal-value encoding. Args holds
// the operand identifiers in operand order; passive operands carry the
// inactive sentinel and contribute their value to consts instead.
type Recorder interface {
	RecordStatement(tok Token, value Real, args [2]Identifier, consts []Real, arity int) Identifier
}

// unaryExpr is the shared node shape of one-operand operations. The partial
// is evaluated at construction time against the operand's current primal.
type unaryExpr struct {
	arg     Expr
	value   Real
	partial Real
	tok     Token
}

func (e *unaryExpr) Value() Real      { return e.value }
func (e *unaryExpr) ActiveCount() int { return e.arg.ActiveCount() }

func (e *unaryExpr) AccumulatePartials(visit PartialVisitor, mult Real) {
	e.arg.AccumulatePartials(visit, mult*e.partial)
}

func (e *unaryExpr) RecordElementary(rec Recorder) Identifier {
	var args [2]Identifier
	var consts []Real
	args[0] = e.arg.RecordElementary(rec)
	if !indices.IsActive(args[0]) {
		consts = append(consts, e.arg.Value())
	}
	return rec.RecordStatement(e.tok, e.value, args, consts, 1)
}

// binaryExpr is the shared node shape of two-operand operations.
type binaryExpr struct {
	a, b   Expr
	value  Real
	pa, pb Real
	tok    Token
}

func (e *binaryExpr) Value() Real      { return e.value }
func (e *binaryExpr) ActiveCount() int { return e.a.ActiveCount() + e.b.ActiveCount() }

func (e *binaryExpr) AccumulatePartials(visit PartialVisitor, mult Real) {
	e.a.AccumulatePartials(visit, mult*e.pa)
	e.b.AccumulatePartials(visit, mult*e.pb)
}

func (e *binaryExpr) RecordElementary(rec Recorder) Identifier {
	var args [2]Identifier
	var consts []Real
	args[0] = e.a.RecordElementary(rec)
	if !indices.IsActive(args[0]) {
		consts = append(consts, e.a.Value())
	}
	args[1] = e.b.RecordElementary(rec)
	if !indices.IsActive(args[1]) {
		consts = append(consts, e.b.Value())
	}
	return rec.RecordStatement(e.tok, e.value, args, consts, 2)
}
