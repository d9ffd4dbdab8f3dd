package ops_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spool-ml/spool/internal/ops"
)

// collectPartials walks an expression and returns the (identifier, partial)
// pairs its active leaves produce.
func collectPartials(e ops.Expr) map[ops.Identifier]ops.Real {
	got := map[ops.Identifier]ops.Real{}
	e.AccumulatePartials(func(id ops.Identifier, p ops.Real) {
		got[id] += p
	}, 1)
	return got
}

func TestMul_ValueAndPartials(t *testing.T) {
	a := ops.NewActive(3, 1)
	b := ops.NewActive(4, 2)

	e := ops.Mul(a, b)
	assert.Equal(t, 12.0, e.Value())
	assert.Equal(t, 2, e.ActiveCount())

	p := collectPartials(e)
	assert.Equal(t, 4.0, p[1])
	assert.Equal(t, 3.0, p[2])
}

func TestChainRule_SinCos(t *testing.T) {
	x := ops.NewActive(0, 1)

	// d/dx sin(x)cos(x) = cos(2x) = 1 at x = 0.
	e := ops.Mul(ops.Sin(x), ops.Cos(x))
	assert.InDelta(t, 0.0, e.Value(), 1e-15)

	p := collectPartials(e)
	assert.InDelta(t, 1.0, p[1], 1e-15)
}

func TestRepeatedOperand_PartialsAccumulate(t *testing.T) {
	x := ops.NewActive(5, 1)

	// x*x pushes the partial for identifier 1 twice; summed they must give
	// d(x²)/dx = 2x = 10.
	e := ops.Mul(x, x)

	var pushes int
	var sum ops.Real
	e.AccumulatePartials(func(id ops.Identifier, p ops.Real) {
		require.Equal(t, ops.Identifier(1), id)
		pushes++
		sum += p
	}, 1)
	assert.Equal(t, 2, pushes)
	assert.Equal(t, 10.0, sum)
}

func TestPassiveExpression_HasNoActiveLeaves(t *testing.T) {
	e := ops.Mul(ops.Const(2), ops.Add(ops.Const(3), ops.Const(4)))
	assert.Equal(t, 14.0, e.Value())
	assert.Equal(t, 0, e.ActiveCount())
	assert.Empty(t, collectPartials(e))
}

func TestMixedActivePassive(t *testing.T) {
	x := ops.NewActive(3, 1)
	e := ops.Add(ops.Mul(x, ops.Const(2)), ops.Const(7))
	assert.Equal(t, 13.0, e.Value())
	assert.Equal(t, 1, e.ActiveCount())
	assert.Equal(t, 2.0, collectPartials(e)[1])
}

func TestUnaryValues(t *testing.T) {
	x := ops.NewActive(0.5, 1)
	tests := []struct {
		name    string
		expr    ops.Expr
		value   ops.Real
		partial ops.Real
	}{
		{"neg", ops.Neg(x), -0.5, -1},
		{"exp", ops.Exp(x), math.Exp(0.5), math.Exp(0.5)},
		{"log", ops.Log(x), math.Log(0.5), 2},
		{"sqrt", ops.Sqrt(x), math.Sqrt(0.5), 1 / (2 * math.Sqrt(0.5))},
		{"tanh", ops.Tanh(x), math.Tanh(0.5), 1 - math.Tanh(0.5)*math.Tanh(0.5)},
		{"asin", ops.Asin(x), math.Asin(0.5), 1 / math.Sqrt(0.75)},
		{"acos", ops.Acos(x), math.Acos(0.5), -1 / math.Sqrt(0.75)},
		{"atanh", ops.Atanh(x), math.Atanh(0.5), 1 / 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.value, tt.expr.Value(), 1e-15)
			assert.InDelta(t, tt.partial, collectPartials(tt.expr)[1], 1e-12)
		})
	}
}

func TestDiv_DomainChecking(t *testing.T) {
	a := ops.NewActive(1, 1)
	b := ops.NewActive(0, 2)

	// Checking disabled: IEEE semantics, no panic.
	ops.CheckArguments = false
	e := ops.Div(a, b)
	assert.True(t, math.IsInf(e.Value(), 1))

	// Checking enabled: divide by zero raises a DomainError.
	ops.CheckArguments = true
	defer func() { ops.CheckArguments = false }()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a DomainError panic")
		derr, ok := r.(*ops.DomainError)
		require.True(t, ok, "panic value must be a *DomainError, got %T", r)
		assert.Equal(t, "div", derr.Op)
	}()
	ops.Div(a, b)
}

func TestDomainChecks(t *testing.T) {
	ops.CheckArguments = true
	defer func() { ops.CheckArguments = false }()

	bad := []struct {
		name string
		fn   func()
	}{
		{"log of negative", func() { ops.Log(ops.NewActive(-1, 1)) }},
		{"sqrt of negative", func() { ops.Sqrt(ops.NewActive(-4, 1)) }},
		{"asin out of range", func() { ops.Asin(ops.NewActive(1.5, 1)) }},
		{"acos out of range", func() { ops.Acos(ops.NewActive(-1.5, 1)) }},
		{"atanh out of range", func() { ops.Atanh(ops.NewActive(1, 1)) }},
		{"pow negative base active exponent", func() {
			ops.Pow(ops.NewActive(-2, 1), ops.NewActive(3, 2))
		}},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, tt.fn)
		})
	}

	// A negative base with a passive exponent stays legal.
	assert.NotPanics(t, func() {
		e := ops.Pow(ops.NewActive(-2, 1), ops.Const(3))
		assert.Equal(t, -8.0, e.Value())
	})
}

func TestPow_Partials(t *testing.T) {
	a := ops.NewActive(2, 1)
	b := ops.NewActive(3, 2)

	e := ops.Pow(a, b)
	assert.Equal(t, 8.0, e.Value())

	p := collectPartials(e)
	assert.InDelta(t, 12.0, p[1], 1e-12)              // b·a^(b-1)
	assert.InDelta(t, 8*math.Log(2), p[2], 1e-12) // a^b·ln(a)
}
