package algorithms_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spool-ml/spool/internal/algorithms"
	"github.com/spool-ml/spool/internal/ops"
	"github.com/spool-ml/spool/internal/tape"
)

// f(a, b) = (a+b, a-b), J = [[1, 1], [1, -1]].
func recordSumDiff(tp *tape.Tape) (inputs, outputs []tape.Identifier) {
	tp.SetActive()
	a := tp.RegisterInput(2)
	b := tp.RegisterInput(3)
	s := tp.Store(ops.Add(a, b))
	d := tp.Store(ops.Sub(a, b))
	tp.SetPassive()
	return []tape.Identifier{a.Identifier(), b.Identifier()},
		[]tape.Identifier{s.Identifier(), d.Identifier()}
}

func TestJacobianBothModes(t *testing.T) {
	for _, mode := range []algorithms.Mode{algorithms.ForwardMode, algorithms.ReverseMode, algorithms.Auto} {
		t.Run(mode.String(), func(t *testing.T) {
			tp := tape.New(tape.DefaultOptions())
			inputs, outputs := recordSumDiff(tp)

			jac := algorithms.NewDenseJacobian(2, 2)
			require.NoError(t, algorithms.ComputeJacobian(tp, inputs, outputs, jac, mode))

			assert.Equal(t, 1.0, jac.At(0, 0))
			assert.Equal(t, 1.0, jac.At(0, 1))
			assert.Equal(t, 1.0, jac.At(1, 0))
			assert.Equal(t, -1.0, jac.At(1, 1))
		})
	}
}

func TestJacobianClearsAdjoints(t *testing.T) {
	tp := tape.New(tape.DefaultOptions())
	inputs, outputs := recordSumDiff(tp)

	jac := algorithms.NewDenseJacobian(2, 2)
	require.NoError(t, algorithms.ComputeJacobian(tp, inputs, outputs, jac, algorithms.ReverseMode))

	for _, id := range append(append([]tape.Identifier{}, inputs...), outputs...) {
		assert.Zero(t, tp.Gradient(id))
	}
}

func TestJacobianShapeMismatch(t *testing.T) {
	tp := tape.New(tape.DefaultOptions())
	inputs, outputs := recordSumDiff(tp)

	jac := algorithms.NewDenseJacobian(1, 2)
	assert.Error(t, algorithms.ComputeJacobian(tp, inputs, outputs, jac, algorithms.Auto))
}

func TestJacobianNonlinear(t *testing.T) {
	// f(a, b) = (a*b, sin(a)) at (1.5, -2).
	tp := tape.New(tape.DefaultOptions())
	tp.SetActive()
	a := tp.RegisterInput(1.5)
	b := tp.RegisterInput(-2)
	p := tp.Store(ops.Mul(a, b))
	s := tp.Store(ops.Sin(a))
	tp.SetPassive()

	inputs := []tape.Identifier{a.Identifier(), b.Identifier()}
	outputs := []tape.Identifier{p.Identifier(), s.Identifier()}

	fwd := algorithms.NewDenseJacobian(2, 2)
	rev := algorithms.NewDenseJacobian(2, 2)
	require.NoError(t, algorithms.ComputeJacobian(tp, inputs, outputs, fwd, algorithms.ForwardMode))
	require.NoError(t, algorithms.ComputeJacobian(tp, inputs, outputs, rev, algorithms.ReverseMode))

	want := [][]float64{
		{-2, 1.5},
		{math.Cos(1.5), 0},
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.InDelta(t, want[i][j], fwd.At(i, j), 1e-15, "forward (%d,%d)", i, j)
			assert.InDelta(t, want[i][j], rev.At(i, j), 1e-15, "reverse (%d,%d)", i, j)
		}
	}
}

func TestJacobianOnPrimalValueTape(t *testing.T) {
	pt := tape.NewPrimalValue(tape.DefaultOptions())
	pt.SetActive()
	a := pt.RegisterInput(2)
	b := pt.RegisterInput(3)
	s := pt.Store(ops.Add(a, b))
	d := pt.Store(ops.Sub(a, b))
	pt.SetPassive()

	inputs := []tape.Identifier{a.Identifier(), b.Identifier()}
	outputs := []tape.Identifier{s.Identifier(), d.Identifier()}

	jac := algorithms.NewDenseJacobian(2, 2)
	require.NoError(t, algorithms.ComputeJacobian(pt, inputs, outputs, jac, algorithms.Auto))
	assert.Equal(t, 1.0, jac.At(0, 0))
	assert.Equal(t, -1.0, jac.At(1, 1))
}

func TestComputeGradient(t *testing.T) {
	tp := tape.New(tape.DefaultOptions())
	tp.SetActive()
	a := tp.RegisterInput(1.5)
	b := tp.RegisterInput(-2)
	y := tp.Store(ops.Add(ops.Mul(a, b), ops.Sin(a)))
	tp.SetPassive()

	grad := algorithms.ComputeGradient(tp,
		[]tape.Identifier{a.Identifier(), b.Identifier()}, y.Identifier())
	require.Len(t, grad, 2)
	assert.InDelta(t, -2+math.Cos(1.5), grad[0], 1e-15)
	assert.InDelta(t, 1.5, grad[1], 1e-15)
}

func TestHessianBilinear(t *testing.T) {
	// f(a, b) = a*b, H = [[0, 1], [1, 0]].
	pt := tape.NewPrimalValue(tape.DefaultOptions())
	pt.SetActive()
	a := pt.RegisterInput(1.5)
	b := pt.RegisterInput(-2)
	y := pt.Store(ops.Mul(a, b))
	pt.SetPassive()

	hes := algorithms.NewDenseHessian(1, 2)
	err := algorithms.ComputeHessian(pt,
		[]tape.Identifier{a.Identifier(), b.Identifier()},
		[]tape.Identifier{y.Identifier()}, hes)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, hes.At(0, 0, 0), 1e-15)
	assert.InDelta(t, 1.0, hes.At(0, 0, 1), 1e-15)
	assert.InDelta(t, 1.0, hes.At(0, 1, 0), 1e-15)
	assert.InDelta(t, 0.0, hes.At(0, 1, 1), 1e-15)
}

func TestHessianAgainstFiniteDifferences(t *testing.T) {
	// f(a, b) = exp(a*b) + sin(a).
	record := func(av, bv float64) (*tape.PrimalValueTape, []tape.Identifier, tape.Identifier) {
		pt := tape.NewPrimalValue(tape.DefaultOptions())
		pt.SetActive()
		a := pt.RegisterInput(av)
		b := pt.RegisterInput(bv)
		y := pt.Store(ops.Add(ops.Exp(ops.Mul(a, b)), ops.Sin(a)))
		pt.SetPassive()
		return pt, []tape.Identifier{a.Identifier(), b.Identifier()}, y.Identifier()
	}

	const a0, b0 = 0.4, -0.3
	pt, inputs, out := record(a0, b0)
	hes := algorithms.NewDenseHessian(1, 2)
	require.NoError(t, algorithms.ComputeHessian(pt, inputs, []tape.Identifier{out}, hes))

	grad := func(av, bv float64) []float64 {
		p, in, o := record(av, bv)
		return algorithms.ComputeGradient(p, in, o)
	}
	const h = 1e-6
	gaP, gaM := grad(a0+h, b0), grad(a0-h, b0)
	gbP, gbM := grad(a0, b0+h), grad(a0, b0-h)

	assert.InDelta(t, (gaP[0]-gaM[0])/(2*h), hes.At(0, 0, 0), 1e-6)
	assert.InDelta(t, (gbP[0]-gbM[0])/(2*h), hes.At(0, 0, 1), 1e-6)
	assert.InDelta(t, (gaP[1]-gaM[1])/(2*h), hes.At(0, 1, 0), 1e-6)
	assert.InDelta(t, (gbP[1]-gbM[1])/(2*h), hes.At(0, 1, 1), 1e-6)
}

func TestHessianSymmetry(t *testing.T) {
	pt := tape.NewPrimalValue(tape.DefaultOptions())
	pt.SetActive()
	a := pt.RegisterInput(0.9)
	b := pt.RegisterInput(1.7)
	y := pt.Store(ops.Mul(ops.Exp(a), ops.Log(b)))
	pt.SetPassive()

	hes := algorithms.NewDenseHessian(1, 2)
	err := algorithms.ComputeHessian(pt,
		[]tape.Identifier{a.Identifier(), b.Identifier()},
		[]tape.Identifier{y.Identifier()}, hes)
	require.NoError(t, err)
	assert.InDelta(t, hes.At(0, 0, 1), hes.At(0, 1, 0), 1e-12)
}

func TestHessianWithJacobian(t *testing.T) {
	pt := tape.NewPrimalValue(tape.DefaultOptions())
	pt.SetActive()
	a := pt.RegisterInput(1.5)
	b := pt.RegisterInput(-2)
	y := pt.Store(ops.Mul(a, b))
	pt.SetPassive()

	inputs := []tape.Identifier{a.Identifier(), b.Identifier()}
	outputs := []tape.Identifier{y.Identifier()}
	hes := algorithms.NewDenseHessian(1, 2)
	jac := algorithms.NewDenseJacobian(1, 2)
	require.NoError(t, algorithms.ComputeHessianWithJacobian(pt, inputs, outputs, hes, jac))

	assert.InDelta(t, -2.0, jac.At(0, 0), 1e-15)
	assert.InDelta(t, 1.5, jac.At(0, 1), 1e-15)
	assert.InDelta(t, 1.0, hes.At(0, 0, 1), 1e-15)
}
