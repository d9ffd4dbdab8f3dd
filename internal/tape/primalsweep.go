package tape

import (
	"github.com/spool-ml/spool/internal/arena"
	"github.com/spool-ml/spool/internal/chunkvec"
	"github.com/spool-ml/spool/internal/indices"
	"github.com/spool-ml/spool/internal/ops"
)

// EvaluatePrimal re-executes the recorded statements over [start, end),
// refreshing the primal vector from the current input values. Low-level
// functions spliced into the stream have their Primal callbacks invoked in
// recording order.
func (t *PrimalValueTape) EvaluatePrimal(start, end Position) {
	t.checkEvaluable(start, end)
	va := NewVectorAccess(t.adjoints, t.primals)
	constCur := chunkvec.NewForwardCursor(t.consts, start.consts)

	segment := func(s, e chunkvec.Position) {
		t.stmts.EvaluateForward(s, e, func(data []pvStatement, begin, endOff int) {
			for i := begin; i < endOff; i++ {
				st := data[i]
				cvals := loadConstsForward(constCur, st)
				args := resolveArgs(st, t.primals, cvals)
				t.primals[st.lhs] = ops.HandleFor(st.tok).Primal(args)
			}
		})
	}
	t.interleaveForward(segment, start, end, func(e LowLevelEntry) externCallback { return e.Primal }, va)
}

// Evaluate runs a reverse sweep over the whole recording.
func (t *PrimalValueTape) Evaluate() {
	t.EvaluateReverse(t.ZeroPosition(), t.Position())
}

// EvaluateReverse runs a reverse (adjoint) sweep over [start, end).
// Partial derivatives are computed on the fly from the stored evaluation
// handles at the current primal values, so a preceding EvaluatePrimal with
// changed inputs re-differentiates the recording at the new point.
func (t *PrimalValueTape) EvaluateReverse(start, end Position) {
	t.checkEvaluable(start, end)
	va := NewVectorAccess(t.adjoints, t.primals)
	constCur := chunkvec.NewReverseCursor(t.consts, end.consts)

	segment := func(s, e chunkvec.Position) {
		t.stmts.EvaluateReverse(s, e, func(data []pvStatement, begin, endOff int) {
			for i := endOff - 1; i >= begin; i-- {
				st := data[i]
				cvals := loadConstsReverse(constCur, st)
				adj := va.Adjoint(st.lhs)
				va.ResetAdjoint(st.lhs)
				if adj == 0 {
					continue
				}
				args := resolveArgs(st, t.primals, cvals)
				partials := ops.HandleFor(st.tok).Partials(args)
				for k := 0; k < int(st.arity); k++ {
					if indices.IsActive(st.args[k]) {
						va.UpdateAdjoint(st.args[k], partials[k]*adj)
					}
				}
			}
		})
	}
	t.interleaveReverse(segment, start, end, func(e LowLevelEntry) externCallback { return e.Reverse }, va)
}

// EvaluateForward runs a forward (tangent) sweep over [start, end) using
// the tape's adjoint vector as tangent storage. The primal vector is
// refreshed alongside, so the sweep also serves as a primal re-evaluation.
func (t *PrimalValueTape) EvaluateForward(start, end Position) {
	t.checkEvaluable(start, end)
	va := NewVectorAccess(t.adjoints, t.primals)
	constCur := chunkvec.NewForwardCursor(t.consts, start.consts)

	segment := func(s, e chunkvec.Position) {
		t.stmts.EvaluateForward(s, e, func(data []pvStatement, begin, endOff int) {
			for i := begin; i < endOff; i++ {
				st := data[i]
				cvals := loadConstsForward(constCur, st)
				args := resolveArgs(st, t.primals, cvals)
				h := ops.HandleFor(st.tok)
				partials := h.Partials(args)
				var tangent Real
				for k := 0; k < int(st.arity); k++ {
					if indices.IsActive(st.args[k]) {
						tangent += va.Adjoint(st.args[k]) * partials[k]
					}
				}
				va.SetAdjoint(st.lhs, tangent)
				t.primals[st.lhs] = h.Primal(args)
			}
		})
	}
	t.interleaveForward(segment, start, end, func(e LowLevelEntry) externCallback { return e.Forward }, va)
}

// EvaluateForwardTangents propagates directional derivatives through the
// whole recording. tangents is indexed by identifier and must be seeded at
// the inputs; interior and output slots are overwritten. The primal vector
// must be current, run EvaluatePrimal first after changing inputs.
func (t *PrimalValueTape) EvaluateForwardTangents(tangents []Real) {
	start, end := t.ZeroPosition(), t.Position()
	t.checkEvaluable(start, end)
	constCur := chunkvec.NewForwardCursor(t.consts, start.consts)

	t.stmts.EvaluateForward(start.stmt, end.stmt, func(data []pvStatement, begin, endOff int) {
		for i := begin; i < endOff; i++ {
			st := data[i]
			cvals := loadConstsForward(constCur, st)
			args := resolveArgs(st, t.primals, cvals)
			partials := ops.HandleFor(st.tok).Partials(args)
			var dot Real
			for k := 0; k < int(st.arity); k++ {
				if indices.IsActive(st.args[k]) {
					dot += tangents[st.args[k]] * partials[k]
				}
			}
			tangents[st.lhs] = dot
		}
	})
}

// EvaluateReverseSecondOrder runs a forward-over-reverse sweep over the
// whole recording. adjoints carries first-order adjoints, adjointDots their
// directional derivatives along the tangent direction that was previously
// propagated into tangents by EvaluateForwardTangents. All three slices are
// indexed by identifier; output slots of adjoints and adjointDots must be
// seeded and are zeroed eagerly as the sweep consumes them.
//
// After the sweep, adjointDots at an input identifier holds one column
// entry of the Hessian-vector product along the tangent direction.
//
// Low-level functions do not participate in dot propagation; their Reverse
// callbacks still fire against the first-order adjoints.
func (t *PrimalValueTape) EvaluateReverseSecondOrder(adjoints, adjointDots, tangents []Real) {
	start, end := t.ZeroPosition(), t.Position()
	t.checkEvaluable(start, end)
	va := NewVectorAccess(adjoints, t.primals)
	constCur := chunkvec.NewReverseCursor(t.consts, end.consts)

	segment := func(s, e chunkvec.Position) {
		t.stmts.EvaluateReverse(s, e, func(data []pvStatement, begin, endOff int) {
			for i := endOff - 1; i >= begin; i-- {
				st := data[i]
				cvals := loadConstsReverse(constCur, st)
				w := adjoints[st.lhs]
				wdot := adjointDots[st.lhs]
				adjoints[st.lhs] = 0
				adjointDots[st.lhs] = 0
				if w == 0 && wdot == 0 {
					continue
				}
				args := resolveArgs(st, t.primals, cvals)
				h := ops.HandleFor(st.tok)
				partials := h.Partials(args)
				second := h.SecondPartials(args)

				var argDots [2]Real
				for k := 0; k < int(st.arity); k++ {
					if indices.IsActive(st.args[k]) {
						argDots[k] = tangents[st.args[k]]
					}
				}
				for k := 0; k < int(st.arity); k++ {
					if !indices.IsActive(st.args[k]) {
						continue
					}
					var pdot Real
					for j := 0; j < int(st.arity); j++ {
						pdot += second[k][j] * argDots[j]
					}
					adjoints[st.args[k]] += partials[k] * w
					adjointDots[st.args[k]] += pdot*w + partials[k]*wdot
				}
			}
		})
	}
	t.interleaveReverse(segment, start, end, func(e LowLevelEntry) externCallback { return e.Reverse }, va)
}

type externCallback = func(view *ByteView, va VectorAccess, tmp *arena.Arena)

// interleaveReverse walks the spliced low-level function records in reverse
// and runs segment over the statement ranges between them.
func (t *PrimalValueTape) interleaveReverse(segment func(s, e chunkvec.Position), start, end Position, pick func(LowLevelEntry) externCallback, va VectorAccess) {
	recs := t.extern.collect(start.ext, end.ext)
	curEnd := end.stmt
	for i := len(recs) - 1; i >= 0; i-- {
		rec := recs[i]
		segment(rec.stmt, curEnd)
		t.extern.invoke(rec, pick(t.extern.registry[rec.token]), va)
		curEnd = rec.stmt
	}
	segment(start.stmt, curEnd)
}

func (t *PrimalValueTape) interleaveForward(segment func(s, e chunkvec.Position), start, end Position, pick func(LowLevelEntry) externCallback, va VectorAccess) {
	recs := t.extern.collect(start.ext, end.ext)
	curStart := start.stmt
	for _, rec := range recs {
		segment(curStart, rec.stmt)
		t.extern.invoke(rec, pick(t.extern.registry[rec.token]), va)
		curStart = rec.stmt
	}
	segment(curStart, end.stmt)
}
