// Copyright 2025 Spool Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ops provides the elementary operations recorded on a tape.
//
// Operations build expression trees over active values and constants; a
// tape's Store consumes a tree and records it as one or more statements.
// Every operation carries an evaluation handle with its primal, first and
// second partial derivatives, used by the primal-value tape and the
// Hessian driver.
//
// Argument checking is off by default; enabling Options.CheckArguments
// makes out-of-domain operands panic with a *DomainError instead of
// producing NaN or Inf derivatives.
package ops

import (
	"github.com/spool-ml/spool/internal/ops"
)

type (
	// Real is the numeric type of the engine.
	Real = ops.Real

	// Identifier names an active value on a tape.
	Identifier = ops.Identifier

	// Active is a value tracked on a tape.
	Active = ops.Active

	// Expr is an expression tree node consumed by a tape's Store.
	Expr = ops.Expr

	// Handle is an operation's evaluation table: primal, first and second
	// partial derivatives.
	Handle = ops.Handle

	// Token identifies a registered evaluation handle.
	Token = ops.Token

	// Recorder receives decomposed elementary statements; implemented by
	// the primal-value tape.
	Recorder = ops.Recorder

	// DomainError reports an out-of-domain operand when argument checking
	// is enabled.
	DomainError = ops.DomainError
)

// NewActive builds an active value from a primal and an identifier. Mostly
// useful in tests and low-level function glue; regular code receives active
// values from a tape.
func NewActive(value Real, id Identifier) Active { return ops.NewActive(value, id) }

// Const wraps a passive constant as an expression operand.
func Const(v Real) Expr { return ops.Const(v) }

// Arithmetic.
func Add(a, b Expr) Expr { return ops.Add(a, b) }
func Sub(a, b Expr) Expr { return ops.Sub(a, b) }
func Mul(a, b Expr) Expr { return ops.Mul(a, b) }
func Div(a, b Expr) Expr { return ops.Div(a, b) }
func Neg(x Expr) Expr    { return ops.Neg(x) }
func Pow(a, b Expr) Expr { return ops.Pow(a, b) }

// Exponentials and roots.
func Exp(x Expr) Expr  { return ops.Exp(x) }
func Log(x Expr) Expr  { return ops.Log(x) }
func Sqrt(x Expr) Expr { return ops.Sqrt(x) }

// Trigonometric and hyperbolic.
func Sin(x Expr) Expr   { return ops.Sin(x) }
func Cos(x Expr) Expr   { return ops.Cos(x) }
func Tanh(x Expr) Expr  { return ops.Tanh(x) }
func Asin(x Expr) Expr  { return ops.Asin(x) }
func Acos(x Expr) Expr  { return ops.Acos(x) }
func Atanh(x Expr) Expr { return ops.Atanh(x) }

// RegisterHandle adds a custom operation's evaluation handle to the global
// table and returns its token. Registration must happen before any tape
// records the operation, typically from an init function.
func RegisterHandle(h Handle) Token { return ops.RegisterHandle(h) }

// HandleFor returns the handle registered under tok; unknown tokens panic.
func HandleFor(tok Token) Handle { return ops.HandleFor(tok) }

// NumHandles returns the number of registered handles.
func NumHandles() int { return ops.NumHandles() }
