package tape

import (
	"github.com/google/uuid"

	"github.com/spool-ml/spool/internal/chunkvec"
	"github.com/spool-ml/spool/internal/indices"
	"github.com/spool-ml/spool/internal/ops"
)

// pvStatement is one recorded elementary operation in the primal-value
// encoding: the output identifier, the evaluation-handle token and a
// fixed-size block of operand identifiers. Passive operands carry the
// inactive sentinel and contribute their value to the constant stream in
// operand order instead.
type pvStatement struct {
	lhs    Identifier
	args   [2]Identifier
	tok    ops.Token
	arity  uint8
	nconst uint8
}

// PrimalValueTape stores evaluation-handle tokens instead of literal
// partials, together with a dense primal vector indexed by identifier, so
// recorded statements can be re-executed (primal sweep) and
// re-differentiated at changed inputs. It always uses a linear index
// manager: identifiers are never overwritten, which keeps the primal vector
// consistent across sweeps.
//
// Stored expressions are decomposed into one statement per elementary
// operation; interior nodes receive intermediate identifiers.
type PrimalValueTape struct {
	opts      Options
	gen       uuid.UUID
	mgr       *indices.Linear
	stmts     *chunkvec.Vector[pvStatement]
	consts    *chunkvec.Vector[Real]
	extern    *externStream
	primals   []Real
	recorded  []Real // primal snapshot taken at SetPassive, for RevertPrimals
	adjoints  []Real
	recording bool
}

// NewPrimalValue creates a PrimalValueTape.
func NewPrimalValue(opts Options) *PrimalValueTape {
	if err := opts.Validate(); err != nil {
		panic(err)
	}
	ops.CheckArguments = opts.CheckArguments
	return &PrimalValueTape{
		opts:   opts,
		gen:    uuid.New(),
		mgr:    indices.NewLinear(),
		stmts:  chunkvec.New[pvStatement](opts.StatementChunkSize),
		consts: chunkvec.New[Real](opts.ConstantChunkSize),
		extern: newExternStream(opts),
	}
}

// SetActive switches the tape into the recording state.
func (t *PrimalValueTape) SetActive() { t.recording = true }

// SetPassive ends recording and snapshots the primal vector so
// RevertPrimals can restore the recorded state after perturbed
// re-evaluations.
func (t *PrimalValueTape) SetPassive() {
	t.recording = false
	t.recorded = append(t.recorded[:0], t.primals...)
}

// IsRecording reports whether the tape currently records statements.
func (t *PrimalValueTape) IsRecording() bool { return t.recording }

// RegisterInput creates an active input value.
func (t *PrimalValueTape) RegisterInput(v Real) ops.Active {
	if !t.recording {
		return ops.NewActive(v, indices.Inactive)
	}
	var id Identifier
	t.mgr.Assign(&id)
	t.ensureStorage()
	t.primals[id] = v
	return ops.NewActive(v, id)
}

// Store records the expression, one statement per elementary operation, and
// returns the active result.
func (t *PrimalValueTape) Store(e ops.Expr) ops.Active {
	v := e.Value()
	if !t.recording || e.ActiveCount() == 0 {
		return ops.NewActive(v, indices.Inactive)
	}
	return ops.NewActive(v, e.RecordElementary(t))
}

// RecordStatement implements ops.Recorder; expression nodes call it during
// Store. It is not meant to be called directly.
func (t *PrimalValueTape) RecordStatement(tok ops.Token, value Real, args [2]Identifier, consts []Real, arity int) Identifier {
	active := false
	for i := 0; i < arity; i++ {
		if indices.IsActive(args[i]) {
			active = true
			break
		}
	}
	if !active {
		return indices.Inactive
	}
	var lhs Identifier
	t.mgr.Assign(&lhs)
	t.ensureStorage()
	t.primals[lhs] = value

	t.consts.Reserve(len(consts))
	for _, c := range consts {
		t.consts.Push(c)
	}
	t.stmts.Reserve(1)
	t.stmts.Push(pvStatement{
		lhs:    lhs,
		args:   args,
		tok:    tok,
		arity:  uint8(arity),
		nconst: uint8(len(consts)),
	})
	return lhs
}

// Primal returns the current primal value of id.
func (t *PrimalValueTape) Primal(id Identifier) Real {
	if int(id) >= len(t.primals) {
		return 0
	}
	return t.primals[id]
}

// SetPrimal overwrites the primal value of id, typically to seed new input
// values before a primal re-evaluation sweep.
func (t *PrimalValueTape) SetPrimal(id Identifier, v Real) {
	if int(id) < len(t.primals) {
		t.primals[id] = v
	}
}

// RevertPrimals restores every primal value to the snapshot taken at
// SetPassive. Required before repeating evaluations from the same recorded
// tape after perturbing inputs.
func (t *PrimalValueTape) RevertPrimals() {
	copy(t.primals, t.recorded)
}

// Gradient returns the adjoint or tangent of id.
func (t *PrimalValueTape) Gradient(id Identifier) Real {
	if int(id) >= len(t.adjoints) {
		return 0
	}
	return t.adjoints[id]
}

// SetGradient seeds the adjoint or tangent of id.
func (t *PrimalValueTape) SetGradient(id Identifier, v Real) {
	t.ensureStorage()
	if int(id) < len(t.adjoints) {
		t.adjoints[id] = v
	}
}

// ClearAdjoints zeroes the whole adjoint vector.
func (t *PrimalValueTape) ClearAdjoints() {
	for i := range t.adjoints {
		t.adjoints[i] = 0
	}
}

// Position returns the current end position of the tape.
func (t *PrimalValueTape) Position() Position {
	return Position{
		gen:    t.gen,
		stmt:   t.stmts.Position(),
		consts: t.consts.Position(),
		ext:    t.extern.entries.Position(),
		bytes:  t.extern.bytes.Position(),
	}
}

// ZeroPosition returns the position before the first statement.
func (t *PrimalValueTape) ZeroPosition() Position {
	return Position{gen: t.gen}
}

// ResetTo truncates the tape back to pos. Delete callbacks of discarded
// low-level functions fire in reverse push order.
func (t *PrimalValueTape) ResetTo(pos Position) {
	t.checkGeneration(pos)
	t.extern.deleteAfter(pos.ext, pos.bytes)
	t.stmts.ResetTo(pos.stmt)
	t.consts.ResetTo(pos.consts)
}

// Reset discards the whole recording and rotates the tape generation.
func (t *PrimalValueTape) Reset() {
	t.extern.reset()
	t.stmts.Reset()
	t.consts.Reset()
	t.mgr.Reset()
	t.ClearAdjoints()
	for i := range t.primals {
		t.primals[i] = 0
	}
	t.recorded = t.recorded[:0]
	t.gen = uuid.New()
}

// Stats returns the tape's current recording statistics.
func (t *PrimalValueTape) Stats() Stats {
	return Stats{
		Statements:      t.stmts.Size(),
		ConstantEntries: t.consts.Size(),
		StatementChunks: t.stmts.NumChunks(),
		ExternalEntries: t.extern.entries.Size(),
		MaxIdentifier:   t.mgr.LargestCreated(),
		AdjointSize:     len(t.adjoints),
	}
}

// RegisterLowLevel registers a low-level function table.
func (t *PrimalValueTape) RegisterLowLevel(e LowLevelEntry) LLToken {
	return t.extern.register(e)
}

// PushLowLevel splices a low-level function call at the current position.
func (t *PrimalValueTape) PushLowLevel(tok LLToken, size int) *ByteView {
	return t.extern.push(tok, size, t.stmts.Position())
}

// PushExternalFunction splices a closure-based external function.
func (t *PrimalValueTape) PushExternalFunction(f ExternalFunction) {
	t.extern.pushExternal(f, t.stmts.Position())
}

func (t *PrimalValueTape) ensureStorage() {
	need := int(t.mgr.LargestCreated()) + 1
	for len(t.primals) < need {
		t.primals = append(t.primals, 0)
	}
	for len(t.adjoints) < need {
		t.adjoints = append(t.adjoints, 0)
	}
}

func (t *PrimalValueTape) checkGeneration(pos Position) {
	if pos.gen != t.gen {
		panic(ErrStalePosition)
	}
}

func (t *PrimalValueTape) checkEvaluable(start, end Position) {
	if t.recording {
		panic(ErrRecordingActive)
	}
	t.checkGeneration(start)
	t.checkGeneration(end)
	t.ensureStorage()
}

// resolveArgs assembles a statement's operand values from the primal vector
// and, for passive operands, the constant values staged in cvals.
func resolveArgs(st pvStatement, primals []Real, cvals [2]Real) [2]Real {
	var args [2]Real
	c := 0
	for k := 0; k < int(st.arity); k++ {
		if indices.IsActive(st.args[k]) {
			args[k] = primals[st.args[k]]
		} else {
			args[k] = cvals[c]
			c++
		}
	}
	return args
}

// loadConstsReverse steps the constant cursor back over a statement's
// passive operand values, returning them in consumption order.
func loadConstsReverse(cur *chunkvec.ReverseCursor[Real], st pvStatement) [2]Real {
	var cvals [2]Real
	for i := int(st.nconst) - 1; i >= 0; i-- {
		cvals[i] = *cur.Prev()
	}
	return cvals
}

// loadConstsForward advances the constant cursor over a statement's passive
// operand values.
func loadConstsForward(cur *chunkvec.ForwardCursor[Real], st pvStatement) [2]Real {
	var cvals [2]Real
	for i := 0; i < int(st.nconst); i++ {
		cvals[i] = *cur.Next()
	}
	return cvals
}
