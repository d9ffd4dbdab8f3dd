// Copyright 2025 Spool Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package algorithms provides derivative drivers on top of the tapes:
// gradients, full Jacobians with automatic mode selection, and exact
// Hessians via forward-over-reverse sweeps on a primal-value tape.
package algorithms

import (
	"github.com/spool-ml/spool/internal/algorithms"
	"github.com/spool-ml/spool/internal/tape"
)

type (
	// Jacobian is the first-derivative matrix filled by ComputeJacobian.
	Jacobian = algorithms.Jacobian

	// DenseJacobian is the row-major dense Jacobian.
	DenseJacobian = algorithms.DenseJacobian

	// Hessian is the second-derivative tensor filled by ComputeHessian.
	Hessian = algorithms.Hessian

	// DenseHessian is the dense output-major Hessian.
	DenseHessian = algorithms.DenseHessian

	// Mode selects the sweep direction of a Jacobian evaluation.
	Mode = algorithms.Mode

	// GradientTape is the sweep surface the drivers need; both tape kinds
	// provide it.
	GradientTape = algorithms.GradientTape
)

const (
	Auto        = algorithms.Auto
	ForwardMode = algorithms.ForwardMode
	ReverseMode = algorithms.ReverseMode
)

// NewDenseJacobian allocates a zeroed rows-by-cols Jacobian.
func NewDenseJacobian(rows, cols int) *DenseJacobian {
	return algorithms.NewDenseJacobian(rows, cols)
}

// NewDenseHessian allocates a zeroed Hessian for the given output and input
// counts.
func NewDenseHessian(outputs, inputs int) *DenseHessian {
	return algorithms.NewDenseHessian(outputs, inputs)
}

// ComputeJacobian fills jac with d out_i / d in_j over the whole recording.
func ComputeJacobian(t GradientTape, inputs, outputs []tape.Identifier, jac Jacobian, mode Mode) error {
	return algorithms.ComputeJacobian(t, inputs, outputs, jac, mode)
}

// ComputeGradient runs one reverse sweep for a single output and returns
// the gradient in input order.
func ComputeGradient(t GradientTape, inputs []tape.Identifier, output tape.Identifier) []float64 {
	return algorithms.ComputeGradient(t, inputs, output)
}

// ComputeHessian fills hes with exact second derivatives using one
// forward-over-reverse pass per input direction.
func ComputeHessian(t *tape.PrimalValueTape, inputs, outputs []tape.Identifier, hes Hessian) error {
	return algorithms.ComputeHessian(t, inputs, outputs, hes)
}

// ComputeHessianWithJacobian also fills the first-derivative Jacobian from
// the same recording.
func ComputeHessianWithJacobian(t *tape.PrimalValueTape, inputs, outputs []tape.Identifier, hes Hessian, jac Jacobian) error {
	return algorithms.ComputeHessianWithJacobian(t, inputs, outputs, hes, jac)
}
