package tape

import "github.com/spool-ml/spool/internal/chunkvec"

// Evaluate runs a reverse sweep over the whole recording against the tape's
// own adjoint vector.
func (t *Tape) Evaluate() {
	t.EvaluateReverse(t.ZeroPosition(), t.Position())
}

// EvaluateReverse runs a reverse (adjoint) sweep over [start, end) against
// the tape's own adjoint vector.
func (t *Tape) EvaluateReverse(start, end Position) {
	t.checkEvaluable(start, end)
	t.EvaluateReverseWith(NewVectorAccess(t.adjoints, nil), start, end)
}

// EvaluateForward runs a forward (tangent) sweep over [start, end) against
// the tape's own adjoint vector, reused as tangent storage.
func (t *Tape) EvaluateForward(start, end Position) {
	t.checkEvaluable(start, end)
	t.EvaluateForwardWith(NewVectorAccess(t.adjoints, nil), start, end)
}

// EvaluateReverseWith runs a reverse sweep through a caller-supplied vector
// access. Statements are visited in strict reverse recording order; each
// statement's output adjoint is consumed, multiplied into every operand's
// partial and sum-accumulated into the operand's adjoint slot, and the
// output slot is zeroed eagerly once propagated.
//
// Low-level functions spliced into the stream have their Reverse callbacks
// invoked at exactly the spot their push interleaved them.
func (t *Tape) EvaluateReverseWith(va VectorAccess, start, end Position) {
	if t.recording {
		panic(ErrRecordingActive)
	}
	t.checkGeneration(start)
	t.checkGeneration(end)
	jacCur := chunkvec.NewReverseCursor(t.jacs, end.jac)

	segment := func(s, e chunkvec.Position) {
		t.stmts.EvaluateReverse(s, e, func(data []jacStatement, begin, endOff int) {
			for i := endOff - 1; i >= begin; i-- {
				st := data[i]
				adj := va.Adjoint(st.lhs)
				va.ResetAdjoint(st.lhs)
				for k := 0; k < int(st.numArgs); k++ {
					je := jacCur.Prev()
					if adj != 0 {
						va.UpdateAdjoint(je.id, je.partial*adj)
					}
				}
			}
		})
	}

	recs := t.extern.collect(start.ext, end.ext)
	curEnd := end.stmt
	for i := len(recs) - 1; i >= 0; i-- {
		rec := recs[i]
		segment(rec.stmt, curEnd)
		t.extern.invoke(rec, t.extern.registry[rec.token].Reverse, va)
		curEnd = rec.stmt
	}
	segment(start.stmt, curEnd)
}

// EvaluateForwardWith runs a forward sweep through a caller-supplied vector
// access. Each statement's tangent is the sum of operand tangents times
// partials; the output slot is overwritten, which is safe because an
// identifier is the left-hand side of at most one statement at a time.
func (t *Tape) EvaluateForwardWith(va VectorAccess, start, end Position) {
	if t.recording {
		panic(ErrRecordingActive)
	}
	t.checkGeneration(start)
	t.checkGeneration(end)
	jacCur := chunkvec.NewForwardCursor(t.jacs, start.jac)

	segment := func(s, e chunkvec.Position) {
		t.stmts.EvaluateForward(s, e, func(data []jacStatement, begin, endOff int) {
			for i := begin; i < endOff; i++ {
				st := data[i]
				var tangent Real
				for k := 0; k < int(st.numArgs); k++ {
					je := jacCur.Next()
					tangent += va.Adjoint(je.id) * je.partial
				}
				va.SetAdjoint(st.lhs, tangent)
			}
		})
	}

	recs := t.extern.collect(start.ext, end.ext)
	curStart := start.stmt
	for _, rec := range recs {
		segment(curStart, rec.stmt)
		t.extern.invoke(rec, t.extern.registry[rec.token].Forward, va)
		curStart = rec.stmt
	}
	segment(curStart, end.stmt)
}
