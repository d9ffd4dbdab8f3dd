package tape

import (
	"errors"
	"fmt"
)

// Contract violations are programming errors and are raised via panic with
// one of these sentinels regardless of the argument-checking option.
var (
	// ErrRecordingActive is raised when a sweep is requested while the tape
	// is still recording.
	ErrRecordingActive = errors.New("tape: sweep requested while the tape is recording")

	// ErrStalePosition is raised when a position from a different or reset
	// tape generation is used.
	ErrStalePosition = errors.New("tape: position belongs to a different tape generation")

	// ErrTemporaryLeak is raised when a low-level function callback leaves
	// allocations in the scratch arena.
	ErrTemporaryLeak = errors.New("tape: temporary memory not empty around a low-level function call")
)

// ErrNotPersistable marks tapes that cannot be written to a file, e.g.
// because they interleave low-level function closures.
var ErrNotPersistable = errors.New("tape: recorded low-level functions cannot be persisted")

// IOError reports a persistence failure, carrying the underlying OS or
// format error.
type IOError struct {
	Op  string // "write" or "read"
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("tape: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
