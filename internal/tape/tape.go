// Package tape implements the recording and evaluation engine: the chunked
// statement stores, identifier bookkeeping, adjoint/tangent vectors and the
// reverse, forward and primal sweeps over recorded statements.
//
// Two tape kinds are provided. Tape uses the direct Jacobian encoding: each
// statement stores its operands' literal partial derivatives, evaluated at
// record time. PrimalValueTape stores evaluation-handle tokens and operand
// values instead, so statements can be re-executed and re-differentiated at
// changed primal inputs (the basis of the Hessian driver).
//
// Usage:
//
//	t := tape.New(tape.DefaultOptions())
//	t.SetActive()
//	a := t.RegisterInput(3)
//	b := t.RegisterInput(4)
//	y := t.Store(ops.Mul(a, b))
//	t.SetPassive()
//	t.SetGradient(y.Identifier(), 1)
//	t.Evaluate()
//	// t.Gradient(a.Identifier()) == 4, t.Gradient(b.Identifier()) == 3
//
// Tapes are single-threaded: recording and evaluation happen inline in the
// calling thread. For concurrent recording use one tape per goroutine with
// an indices.Parallel manager sharing one indices.GlobalCounter.
package tape

import (
	"github.com/google/uuid"

	"github.com/spool-ml/spool/internal/chunkvec"
	"github.com/spool-ml/spool/internal/indices"
	"github.com/spool-ml/spool/internal/ops"
)

// jacStatement is one recorded assignment in the Jacobian encoding: the
// output identifier and the number of (identifier, partial) entries that
// belong to it in the jacobian stream.
type jacStatement struct {
	lhs     Identifier
	numArgs uint16
}

// jacEntry is one operand of a statement: its identifier and the local
// partial derivative of the statement's output with respect to it.
type jacEntry struct {
	id      Identifier
	partial Real
}

// Tape is the Jacobian-encoding tape.
type Tape struct {
	opts      Options
	gen       uuid.UUID
	mgr       indices.Manager
	stmts     *chunkvec.Vector[jacStatement]
	jacs      *chunkvec.Vector[jacEntry]
	extern    *externStream
	adjoints  []Real
	maxIdent  Identifier
	recording bool
}

// New creates a Tape with a linear index manager.
func New(opts Options) *Tape {
	return NewWithManager(opts, indices.NewLinear())
}

// NewWithManager creates a Tape using the given index manager variant.
func NewWithManager(opts Options, mgr indices.Manager) *Tape {
	if err := opts.Validate(); err != nil {
		panic(err)
	}
	ops.CheckArguments = opts.CheckArguments
	return &Tape{
		opts:   opts,
		gen:    uuid.New(),
		mgr:    mgr,
		stmts:  chunkvec.New[jacStatement](opts.StatementChunkSize),
		jacs:   chunkvec.New[jacEntry](opts.JacobianChunkSize),
		extern: newExternStream(opts),
	}
}

// Options returns the tape's configuration.
func (t *Tape) Options() Options { return t.opts }

// SetActive switches the tape into the recording state.
func (t *Tape) SetActive() { t.recording = true }

// SetPassive switches the tape out of the recording state. Operations
// stored afterwards degenerate to plain arithmetic.
func (t *Tape) SetPassive() { t.recording = false }

// IsRecording reports whether the tape currently records statements.
func (t *Tape) IsRecording() bool { return t.recording }

// RegisterInput creates an active input value. While the tape is passive
// the result is passive too.
func (t *Tape) RegisterInput(v Real) ops.Active {
	if !t.recording {
		return ops.NewActive(v, indices.Inactive)
	}
	var id Identifier
	t.mgr.Assign(&id)
	t.noteIdentifier(id)
	return ops.NewActive(v, id)
}

// Store evaluates the expression and, while recording, pushes one statement
// holding the output identifier and every active leaf's partial derivative.
// An expression with no active operands emits no statement and yields a
// passive value.
func (t *Tape) Store(e ops.Expr) ops.Active {
	v := e.Value()
	if !t.recording {
		return ops.NewActive(v, indices.Inactive)
	}
	n := e.ActiveCount()
	if n == 0 {
		return ops.NewActive(v, indices.Inactive)
	}
	var lhs Identifier
	t.mgr.Assign(&lhs)
	t.noteIdentifier(lhs)

	t.stmts.Reserve(1)
	t.jacs.Reserve(n)
	e.AccumulatePartials(func(id Identifier, p Real) {
		t.jacs.Push(jacEntry{id: id, partial: p})
	}, 1)
	t.stmts.Push(jacStatement{lhs: lhs, numArgs: uint16(n)})
	return ops.NewActive(v, lhs)
}

// Copy duplicates an active value. With a copy-optimizing (refcounted)
// index manager the identifier is shared and no statement is recorded;
// otherwise an identity statement is stored.
func (t *Tape) Copy(a ops.Active) ops.Active {
	if !t.recording || !a.IsActive() {
		return ops.NewActive(a.Value(), indices.Inactive)
	}
	if cm, ok := t.mgr.(indices.CopyManager); ok {
		var dst Identifier
		cm.Copy(&dst, a.Identifier())
		return ops.NewActive(a.Value(), dst)
	}
	return t.Store(a)
}

// Free releases a value's identifier back to the index manager and
// deactivates the value.
func (t *Tape) Free(a *ops.Active) {
	id := a.Invalidate()
	t.mgr.Free(&id)
}

// Gradient returns the adjoint (after reverse sweeps) or tangent (after
// forward sweeps) of id.
func (t *Tape) Gradient(id Identifier) Real {
	if int(id) >= len(t.adjoints) {
		return 0
	}
	return t.adjoints[id]
}

// SetGradient seeds the adjoint or tangent of id.
func (t *Tape) SetGradient(id Identifier, v Real) {
	t.ensureAdjoints()
	if int(id) < len(t.adjoints) {
		t.adjoints[id] = v
	}
}

// ClearAdjoints zeroes the whole adjoint vector.
func (t *Tape) ClearAdjoints() {
	for i := range t.adjoints {
		t.adjoints[i] = 0
	}
}

// Position returns the current end position of the tape.
func (t *Tape) Position() Position {
	return Position{
		gen:   t.gen,
		stmt:  t.stmts.Position(),
		jac:   t.jacs.Position(),
		ext:   t.extern.entries.Position(),
		bytes: t.extern.bytes.Position(),
	}
}

// ZeroPosition returns the position before the first statement.
func (t *Tape) ZeroPosition() Position {
	return Position{gen: t.gen}
}

// ResetTo truncates the tape back to pos, discarding every statement and
// low-level function recorded after it. Delete callbacks of discarded
// low-level functions fire in reverse push order. Identifiers assigned
// after pos stay checked out until a full Reset.
func (t *Tape) ResetTo(pos Position) {
	t.checkGeneration(pos)
	t.extern.deleteAfter(pos.ext, pos.bytes)
	t.stmts.ResetTo(pos.stmt)
	t.jacs.ResetTo(pos.jac)
}

// Reset discards the whole recording, returns pooled identifiers, zeroes
// the adjoints and rotates the tape generation, invalidating all previously
// taken positions. The identifier high-water mark survives, so re-recording
// the identical operation sequence reproduces identical identifiers.
func (t *Tape) Reset() {
	t.extern.reset()
	t.stmts.Reset()
	t.jacs.Reset()
	t.mgr.Reset()
	t.ClearAdjoints()
	t.gen = uuid.New()
}

// Stats describes a tape's recorded size.
type Stats struct {
	Statements      int
	JacobianEntries int
	ConstantEntries int
	StatementChunks int
	ExternalEntries int
	MaxIdentifier   Identifier
	AdjointSize     int
}

// Stats returns the tape's current recording statistics.
func (t *Tape) Stats() Stats {
	return Stats{
		Statements:      t.stmts.Size(),
		JacobianEntries: t.jacs.Size(),
		StatementChunks: t.stmts.NumChunks(),
		ExternalEntries: t.extern.entries.Size(),
		MaxIdentifier:   t.maxIdent,
		AdjointSize:     len(t.adjoints),
	}
}

// RegisterLowLevel registers a low-level function table and returns its
// token. Token 0 is pre-registered as the generic external-function
// wrapper.
func (t *Tape) RegisterLowLevel(e LowLevelEntry) LLToken {
	return t.extern.register(e)
}

// PushLowLevel splices a low-level function call into the statement stream
// at the current position, reserving size bytes for its serialized
// arguments. The caller writes the arguments into the returned view.
func (t *Tape) PushLowLevel(tok LLToken, size int) *ByteView {
	return t.extern.push(tok, size, t.stmts.Position())
}

// PushExternalFunction splices a closure-based external function into the
// statement stream through the reserved generic wrapper.
func (t *Tape) PushExternalFunction(f ExternalFunction) {
	t.extern.pushExternal(f, t.stmts.Position())
}

// HasExternals reports whether low-level functions are recorded.
func (t *Tape) HasExternals() bool { return !t.extern.empty() }

func (t *Tape) noteIdentifier(id Identifier) {
	if id > t.maxIdent {
		t.maxIdent = id
	}
	t.ensureAdjoints()
}

func (t *Tape) ensureAdjoints() {
	need := int(t.maxIdent) + 1
	if m := t.mgr.LargestCreated(); int(m)+1 > need {
		need = int(m) + 1
	}
	for len(t.adjoints) < need {
		t.adjoints = append(t.adjoints, 0)
	}
}

func (t *Tape) checkGeneration(pos Position) {
	if pos.gen != t.gen {
		panic(ErrStalePosition)
	}
}

func (t *Tape) checkEvaluable(start, end Position) {
	if t.recording {
		panic(ErrRecordingActive)
	}
	t.checkGeneration(start)
	t.checkGeneration(end)
	// Low-level functions may touch identifiers the statement stream never
	// saw; their declared inputs and outputs extend the adjoint range.
	t.extern.forEachIdentifier(func(id Identifier) {
		if id > t.maxIdent {
			t.maxIdent = id
		}
	})
	t.ensureAdjoints()
}
