// Copyright 2025 Spool Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tape provides the recording tapes of the differentiation engine.
//
// A tape records elementary operations on active values and evaluates
// derivatives by sweeping the recording: reverse sweeps propagate adjoints
// from outputs to inputs, forward sweeps propagate tangents the other way.
//
// Example:
//
//	import (
//	    "github.com/spool-ml/spool/ops"
//	    "github.com/spool-ml/spool/tape"
//	)
//
//	func main() {
//	    t := tape.New(tape.DefaultOptions())
//	    t.SetActive()
//	    a := t.RegisterInput(3)
//	    b := t.RegisterInput(4)
//	    y := t.Store(ops.Mul(a, b))
//	    t.SetPassive()
//
//	    t.SetGradient(y.Identifier(), 1)
//	    t.Evaluate()
//	    // t.Gradient(a.Identifier()) == 4
//	}
//
// Tape fixes partial derivatives at record time (Jacobian encoding).
// PrimalValueTape stores re-evaluable statements instead, enabling primal
// re-evaluation at new inputs and exact Hessians.
package tape

import (
	"io"

	"github.com/spool-ml/spool/internal/indices"
	"github.com/spool-ml/spool/internal/tape"
)

type (
	// Tape is the Jacobian-encoding gradient tape.
	Tape = tape.Tape

	// PrimalValueTape stores re-evaluable statements instead of literal
	// partials.
	PrimalValueTape = tape.PrimalValueTape

	// Options configures chunk sizes and runtime checking.
	Options = tape.Options

	// Position marks a point in a recording for partial sweeps and
	// truncation.
	Position = tape.Position

	// Stats describes a tape's recorded size.
	Stats = tape.Stats

	// VectorAccess abstracts adjoint and primal storage for sweeps and
	// low-level function callbacks.
	VectorAccess = tape.VectorAccess

	// LowLevelEntry is the callback table of a registered low-level
	// function.
	LowLevelEntry = tape.LowLevelEntry

	// ExternalFunction is the closure-based external function variant.
	ExternalFunction = tape.ExternalFunction

	// ByteView reads and writes a low-level function's serialized
	// arguments.
	ByteView = tape.ByteView

	// LLToken identifies a registered low-level function.
	LLToken = tape.LLToken

	// IOError reports a persistence failure.
	IOError = tape.IOError

	// Identifier names an active value on the tape.
	Identifier = tape.Identifier

	// Real is the numeric type of the engine.
	Real = tape.Real
)

var (
	ErrRecordingActive = tape.ErrRecordingActive
	ErrStalePosition   = tape.ErrStalePosition
	ErrTemporaryLeak   = tape.ErrTemporaryLeak
	ErrNotPersistable  = tape.ErrNotPersistable
)

// New creates a Jacobian-encoding tape with a linear index manager.
func New(opts Options) *Tape { return tape.New(opts) }

// NewWithManager creates a Jacobian-encoding tape using the given index
// manager variant.
func NewWithManager(opts Options, mgr indices.Manager) *Tape {
	return tape.NewWithManager(opts, mgr)
}

// NewPrimalValue creates a primal-value tape.
func NewPrimalValue(opts Options) *PrimalValueTape { return tape.NewPrimalValue(opts) }

// DefaultOptions returns the default configuration.
func DefaultOptions() Options { return tape.DefaultOptions() }

// OptionsFromYAML overlays YAML configuration over the defaults.
func OptionsFromYAML(data []byte) (Options, error) { return tape.OptionsFromYAML(data) }

// LoadOptions reads a YAML configuration file.
func LoadOptions(path string) (Options, error) { return tape.LoadOptions(path) }

// NewVectorAccess wraps plain slices as sweep storage.
func NewVectorAccess(adjoints, primals []Real) VectorAccess {
	return tape.NewVectorAccess(adjoints, primals)
}

// ReadTape deserializes a tape written by Tape.Encode.
func ReadTape(r io.Reader, opts Options) (*Tape, error) { return tape.ReadTape(r, opts) }

// ReadFile loads a persisted tape.
func ReadFile(path string, opts Options) (*Tape, error) { return tape.ReadFile(path, opts) }
