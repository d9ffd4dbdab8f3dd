package tape

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/spool-ml/spool/internal/chunkvec"
)

// Persisted tape layout: a 4-byte magic, a fixed-size little-endian header,
// the statement records and the jacobian records. Only the Jacobian
// encoding is persistable; the statement semantics are self-contained, so a
// reloaded tape can run reverse and forward sweeps without the expressions
// that produced it.
var tapeMagic = [4]byte{'S', 'P', 'L', '1'}

const tapeFormatVersion uint16 = 1

type tapeHeader struct {
	Version           uint16
	IdentifierBits    uint8
	_                 uint8
	StatementChunkLen int32
	JacobianChunkLen  int32
	MaxIdentifier     int32
	NumStatements     int64
	NumJacEntries     int64
}

// On-disk record sizes and field-by-field codecs. Records are marshalled
// explicitly rather than through reflection, which fixes the byte layout
// independent of in-memory struct padding.
const (
	stmtRecordSize = 6  // lhs int32, numArgs uint16
	jacRecordSize  = 12 // id int32, partial float64
)

func putStatement(b []byte, st jacStatement) {
	binary.LittleEndian.PutUint32(b[0:4], uint32(st.lhs))
	binary.LittleEndian.PutUint16(b[4:6], st.numArgs)
}

func getStatement(b []byte) jacStatement {
	return jacStatement{
		lhs:     Identifier(binary.LittleEndian.Uint32(b[0:4])),
		numArgs: binary.LittleEndian.Uint16(b[4:6]),
	}
}

func putJacEntry(b []byte, je jacEntry) {
	binary.LittleEndian.PutUint32(b[0:4], uint32(je.id))
	binary.LittleEndian.PutUint64(b[4:12], math.Float64bits(je.partial))
}

func getJacEntry(b []byte) jacEntry {
	return jacEntry{
		id:      Identifier(binary.LittleEndian.Uint32(b[0:4])),
		partial: math.Float64frombits(binary.LittleEndian.Uint64(b[4:12])),
	}
}

// Encode serializes the recorded statement and jacobian streams. Tapes
// with recorded low-level functions cannot be persisted because their
// callbacks are process-local; Encode returns ErrNotPersistable for those.
func (t *Tape) Encode(w io.Writer) error {
	if t.recording {
		panic(ErrRecordingActive)
	}
	if t.HasExternals() {
		return ErrNotPersistable
	}
	bw := bufio.NewWriter(w)
	hdr := tapeHeader{
		Version:           tapeFormatVersion,
		IdentifierBits:    32,
		StatementChunkLen: int32(t.opts.StatementChunkSize),
		JacobianChunkLen:  int32(t.opts.JacobianChunkSize),
		MaxIdentifier:     int32(t.maxIdent),
		NumStatements:     int64(t.stmts.Size()),
		NumJacEntries:     int64(t.jacs.Size()),
	}
	if _, err := bw.Write(tapeMagic[:]); err != nil {
		return &IOError{Op: "write", Err: err}
	}
	if err := binary.Write(bw, binary.LittleEndian, hdr); err != nil {
		return &IOError{Op: "write", Err: err}
	}
	if err := writeChunks(bw, t.stmts, stmtRecordSize, putStatement); err != nil {
		return err
	}
	if err := writeChunks(bw, t.jacs, jacRecordSize, putJacEntry); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return &IOError{Op: "write", Err: err}
	}
	return nil
}

// ReadTape deserializes a tape written by Encode. The result is ready for
// reverse and forward sweeps; it is not meant as a base for further
// recording, its index manager starts fresh.
func ReadTape(r io.Reader, opts Options) (*Tape, error) {
	br := bufio.NewReader(r)
	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, &IOError{Op: "read", Err: err}
	}
	if magic != tapeMagic {
		return nil, &IOError{Op: "read", Err: fmt.Errorf("bad magic %q", magic[:])}
	}
	var hdr tapeHeader
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		return nil, &IOError{Op: "read", Err: err}
	}
	if hdr.Version != tapeFormatVersion {
		return nil, &IOError{Op: "read", Err: fmt.Errorf("unsupported format version %d", hdr.Version)}
	}
	if hdr.IdentifierBits != 32 {
		return nil, &IOError{Op: "read", Err: fmt.Errorf("unsupported identifier width %d", hdr.IdentifierBits)}
	}
	if hdr.StatementChunkLen <= 0 || hdr.JacobianChunkLen <= 0 || hdr.NumStatements < 0 || hdr.NumJacEntries < 0 {
		return nil, &IOError{Op: "read", Err: fmt.Errorf("corrupt header")}
	}

	opts.StatementChunkSize = int(hdr.StatementChunkLen)
	opts.JacobianChunkSize = int(hdr.JacobianChunkLen)
	t := New(opts)
	t.maxIdent = Identifier(hdr.MaxIdentifier)

	if err := readChunks(br, t.stmts, int(hdr.NumStatements), stmtRecordSize, getStatement); err != nil {
		return nil, err
	}
	if err := readChunks(br, t.jacs, int(hdr.NumJacEntries), jacRecordSize, getJacEntry); err != nil {
		return nil, err
	}
	return t, nil
}

func writeChunks[T any](w io.Writer, v *chunkvec.Vector[T], size int, put func([]byte, T)) error {
	buf := make([]byte, v.ChunkSize()*size)
	err := v.ForEachChunk(func(chunk []T) error {
		for i, rec := range chunk {
			put(buf[i*size:(i+1)*size], rec)
		}
		_, err := w.Write(buf[:len(chunk)*size])
		return err
	})
	if err != nil {
		return &IOError{Op: "write", Err: err}
	}
	return nil
}

func readChunks[T any](r io.Reader, v *chunkvec.Vector[T], n, size int, get func([]byte) T) error {
	buf := make([]byte, v.ChunkSize()*size)
	recs := make([]T, v.ChunkSize())
	for n > 0 {
		m := v.ChunkSize()
		if n < m {
			m = n
		}
		if _, err := io.ReadFull(r, buf[:m*size]); err != nil {
			return &IOError{Op: "read", Err: err}
		}
		for i := 0; i < m; i++ {
			recs[i] = get(buf[i*size : (i+1)*size])
		}
		if err := v.PushChunk(recs[:m]); err != nil {
			return &IOError{Op: "read", Err: err}
		}
		n -= m
	}
	return nil
}

// WriteFile persists the tape to path.
func (t *Tape) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "write", Err: err}
	}
	if err := t.Encode(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "write", Err: err}
	}
	return nil
}

// ReadFile loads a persisted tape from path.
func ReadFile(path string, opts Options) (*Tape, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "read", Err: err}
	}
	defer f.Close()
	return ReadTape(f, opts)
}
