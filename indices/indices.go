// Copyright 2025 Spool Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package indices provides the identifier managers that control how tape
// identifiers are assigned, recycled and shared.
//
// Linear never recycles and supports identical re-recordings; Reuse
// recycles freed identifiers to keep the adjoint vector compact; MultiUse
// adds reference counting and the copy optimization; Parallel claims
// disjoint ranges from a shared counter for concurrent recordings.
package indices

import (
	"github.com/spool-ml/spool/internal/indices"
)

// Inactive is the sentinel identifier of passive values.
const Inactive = indices.Inactive

type (
	// Identifier names an active value on a tape.
	Identifier = indices.Identifier

	// Manager hands out and recycles identifiers.
	Manager = indices.Manager

	// CopyManager is implemented by managers that share identifiers on
	// copy instead of recording an identity statement.
	CopyManager = indices.CopyManager

	// Linear is the never-recycling manager.
	Linear = indices.Linear

	// Reuse recycles freed identifiers.
	Reuse = indices.Reuse

	// MultiUse reference-counts identifiers, enabling the copy
	// optimization.
	MultiUse = indices.MultiUse

	// Parallel claims private identifier blocks from a shared counter.
	Parallel = indices.Parallel

	// GlobalCounter is the shared range source of Parallel managers.
	GlobalCounter = indices.GlobalCounter

	// ReuseOption configures Reuse and MultiUse managers.
	ReuseOption = indices.ReuseOption
)

// IsActive reports whether id names an active value.
func IsActive(id Identifier) bool { return indices.IsActive(id) }

// NewLinear creates a Linear manager.
func NewLinear() *Linear { return indices.NewLinear() }

// NewReuse creates a Reuse manager.
func NewReuse(opts ...ReuseOption) *Reuse { return indices.NewReuse(opts...) }

// NewMultiUse creates a MultiUse manager.
func NewMultiUse(opts ...ReuseOption) *MultiUse { return indices.NewMultiUse(opts...) }

// NewGlobalCounter creates the shared counter for Parallel managers.
func NewGlobalCounter() *GlobalCounter { return indices.NewGlobalCounter() }

// NewParallel creates a Parallel manager drawing from global.
func NewParallel(global *GlobalCounter) *Parallel { return indices.NewParallel(global) }

// WithBlockSize sets how many identifiers are generated per refill.
func WithBlockSize(n int) ReuseOption { return indices.WithBlockSize(n) }

// WithSortedReset sorts the recycled pool on Reset.
func WithSortedReset() ReuseOption { return indices.WithSortedReset() }
