package tape

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/spool-ml/spool/internal/arena"
	"github.com/spool-ml/spool/internal/chunkvec"
)

// LLToken identifies a registered low-level function table. Token 0 is
// reserved for the generic external-function wrapper.
type LLToken uint16

// ByteView is a sequential read/write view over one low-level function's
// serialized argument bytes inside the tape's byte stream. The same bytes
// written at push time are handed back, wrapped read-only in spirit, to the
// callbacks during sweeps.
type ByteView struct {
	data []byte
	off  int
}

func newByteView(data []byte) *ByteView { return &ByteView{data: data} }

// Remaining returns the number of bytes left in the view.
func (v *ByteView) Remaining() int { return len(v.data) - v.off }

// Rewind resets the read/write cursor to the start of the view.
func (v *ByteView) Rewind() { v.off = 0 }

func (v *ByteView) need(n int) []byte {
	if v.off+n > len(v.data) {
		panic(fmt.Sprintf("tape: byte view overrun: need %d bytes, %d remaining", n, v.Remaining()))
	}
	b := v.data[v.off : v.off+n]
	v.off += n
	return b
}

// WriteReal appends one Real.
func (v *ByteView) WriteReal(r Real) {
	binary.LittleEndian.PutUint64(v.need(8), math.Float64bits(r))
}

// ReadReal consumes one Real.
func (v *ByteView) ReadReal() Real {
	return math.Float64frombits(binary.LittleEndian.Uint64(v.need(8)))
}

// WriteIdentifier appends one identifier.
func (v *ByteView) WriteIdentifier(id Identifier) {
	binary.LittleEndian.PutUint32(v.need(4), uint32(id))
}

// ReadIdentifier consumes one identifier.
func (v *ByteView) ReadIdentifier() Identifier {
	return Identifier(binary.LittleEndian.Uint32(v.need(4)))
}

// WriteInt32 appends one int32.
func (v *ByteView) WriteInt32(n int32) {
	binary.LittleEndian.PutUint32(v.need(4), uint32(n))
}

// ReadInt32 consumes one int32.
func (v *ByteView) ReadInt32() int32 {
	return int32(binary.LittleEndian.Uint32(v.need(4)))
}

// WriteBytes appends raw bytes.
func (v *ByteView) WriteBytes(b []byte) { copy(v.need(len(b)), b) }

// ReadBytes consumes n raw bytes. The returned slice aliases the stream.
func (v *ByteView) ReadBytes(n int) []byte { return v.need(n) }

// LowLevelEntry is the function table of one low-level function kind: up to
// five callbacks invoked with a view over the bytes serialized at push time.
// Any callback may be nil; the corresponding sweep then skips the entry.
// A callback that allocates from the scratch arena must release it with
// tmp.Free() before returning; the tape only verifies the arena is empty
// around each invocation and panics with ErrTemporaryLeak when it is not.
type LowLevelEntry struct {
	// Forward is invoked during forward (tangent) sweeps.
	Forward func(view *ByteView, va VectorAccess, tmp *arena.Arena)

	// Reverse is invoked during reverse (adjoint) sweeps.
	Reverse func(view *ByteView, va VectorAccess, tmp *arena.Arena)

	// Primal is invoked during primal re-evaluation sweeps.
	Primal func(view *ByteView, va VectorAccess, tmp *arena.Arena)

	// Delete is invoked exactly once per pushed entry when the entry is
	// discarded by a reset or truncation, in reverse push order.
	Delete func(view *ByteView)

	// ForEachInput iterates the identifiers the function reads.
	ForEachInput func(view *ByteView, fn func(Identifier))

	// ForEachOutput iterates the identifiers the function writes.
	ForEachOutput func(view *ByteView, fn func(Identifier))
}

// externRecord indexes one pushed low-level function: its table token, the
// size of its serialized arguments, and the stream positions that splice it
// into the statement order.
type externRecord struct {
	token LLToken
	size  int32
	stmt  chunkvec.Position
	bytes chunkvec.Position
}

// ExternalFunction is the legacy-style external function: plain closures
// over user state, spliced into the statement stream through the reserved
// generic wrapper at token 0. Closures cannot be serialized, so tapes
// holding external functions refuse persistence.
type ExternalFunction struct {
	Forward func(va VectorAccess)
	Reverse func(va VectorAccess)
	Primal  func(va VectorAccess)
	// Cleanup is called when the entry is discarded.
	Cleanup func()
}

// externStream owns the interleaved low-level function records, their byte
// arguments, the callback registry and the per-invocation scratch arena.
type externStream struct {
	entries  *chunkvec.Vector[externRecord]
	bytes    *chunkvec.Vector[byte]
	registry []LowLevelEntry
	funcs    []*ExternalFunction
	temp     *arena.Arena
}

func newExternStream(opts Options) *externStream {
	s := &externStream{
		entries: chunkvec.New[externRecord](opts.ExternalChunkSize),
		bytes:   chunkvec.New[byte](opts.ByteChunkSize),
		temp:    arena.New(opts.TempBlockSize),
	}
	// Token 0: the generic external-function wrapper. The serialized bytes
	// hold one int32 index into the tape-held closure table.
	s.registry = append(s.registry, LowLevelEntry{
		Forward: func(view *ByteView, va VectorAccess, _ *arena.Arena) {
			if f := s.funcs[view.ReadInt32()]; f != nil && f.Forward != nil {
				f.Forward(va)
			}
		},
		Reverse: func(view *ByteView, va VectorAccess, _ *arena.Arena) {
			if f := s.funcs[view.ReadInt32()]; f != nil && f.Reverse != nil {
				f.Reverse(va)
			}
		},
		Primal: func(view *ByteView, va VectorAccess, _ *arena.Arena) {
			if f := s.funcs[view.ReadInt32()]; f != nil && f.Primal != nil {
				f.Primal(va)
			}
		},
		Delete: func(view *ByteView) {
			idx := view.ReadInt32()
			if f := s.funcs[idx]; f != nil && f.Cleanup != nil {
				f.Cleanup()
			}
			s.funcs[idx] = nil
		},
	})
	return s
}

func (s *externStream) register(e LowLevelEntry) LLToken {
	s.registry = append(s.registry, e)
	return LLToken(len(s.registry) - 1)
}

// push reserves size bytes in the byte stream and records the entry,
// splicing it at the given statement position. The returned view is writable
// until the stream is reset past it.
func (s *externStream) push(tok LLToken, size int, stmtPos chunkvec.Position) *ByteView {
	if int(tok) >= len(s.registry) {
		panic(fmt.Sprintf("tape: unregistered low-level function token %d", tok))
	}
	s.bytes.Reserve(size)
	bytePos := s.bytes.Position()
	span := s.bytes.ReserveSpan(size)
	s.entries.Reserve(1)
	s.entries.Push(externRecord{token: tok, size: int32(size), stmt: stmtPos, bytes: bytePos})
	return newByteView(span)
}

// pushExternal stores a closure-based external function through token 0.
func (s *externStream) pushExternal(f ExternalFunction, stmtPos chunkvec.Position) {
	idx := int32(len(s.funcs))
	s.funcs = append(s.funcs, &f)
	view := s.push(0, 4, stmtPos)
	view.WriteInt32(idx)
}

// view reconstructs the read view over a record's serialized bytes. A
// reserved run never straddles a chunk boundary, so the bytes are
// contiguous.
func (s *externStream) view(rec externRecord) *ByteView {
	data := s.bytes.ChunkData(rec.bytes.Chunk)[rec.bytes.Offset : rec.bytes.Offset+int(rec.size)]
	return newByteView(data)
}

// collect returns the records in (start, end] of the entry stream, in push
// order.
func (s *externStream) collect(start, end chunkvec.Position) []externRecord {
	var recs []externRecord
	s.entries.EvaluateForward(start, end, func(data []externRecord, begin, endOff int) {
		recs = append(recs, data[begin:endOff]...)
	})
	return recs
}

// invoke runs one callback bracketed by the temporary-memory discipline:
// the scratch arena must be empty before the call and is freed right after.
func (s *externStream) invoke(rec externRecord, fn func(view *ByteView, va VectorAccess, tmp *arena.Arena), va VectorAccess) {
	if fn == nil {
		return
	}
	if !s.temp.IsEmpty() {
		panic(ErrTemporaryLeak)
	}
	fn(s.view(rec), va, s.temp)
	if !s.temp.IsEmpty() {
		panic(ErrTemporaryLeak)
	}
	s.temp.Free()
}

// deleteAfter fires Delete exactly once for every record after pos, in
// reverse push order, then truncates both streams.
func (s *externStream) deleteAfter(extPos, bytePos chunkvec.Position) {
	recs := s.collect(extPos, s.entries.Position())
	for i := len(recs) - 1; i >= 0; i-- {
		rec := recs[i]
		if del := s.registry[rec.token].Delete; del != nil {
			del(s.view(rec))
		}
	}
	s.entries.ResetTo(extPos)
	s.bytes.ResetTo(bytePos)
}

// reset discards the whole stream, firing Delete callbacks in reverse
// order, and clears the closure table.
func (s *externStream) reset() {
	s.deleteAfter(s.entries.ZeroPosition(), s.bytes.ZeroPosition())
	s.funcs = s.funcs[:0]
}

func (s *externStream) empty() bool { return s.entries.Size() == 0 }

// forEachIdentifier visits every identifier the recorded low-level
// functions declare as input or output.
func (s *externStream) forEachIdentifier(fn func(Identifier)) {
	for _, rec := range s.collect(s.entries.ZeroPosition(), s.entries.Position()) {
		entry := s.registry[rec.token]
		if entry.ForEachInput != nil {
			entry.ForEachInput(s.view(rec), fn)
		}
		if entry.ForEachOutput != nil {
			entry.ForEachOutput(s.view(rec), fn)
		}
	}
}
