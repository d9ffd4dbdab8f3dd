package tape_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spool-ml/spool/internal/ops"
	"github.com/spool-ml/spool/internal/tape"
)

// f(a, b) = a*b + sin(a), df/da = b + cos(a), df/db = a.
func recordPrimalSample(tp *tape.PrimalValueTape, av, bv tape.Real) (a, b, y ops.Active) {
	tp.SetActive()
	a = tp.RegisterInput(av)
	b = tp.RegisterInput(bv)
	y = tp.Store(ops.Add(ops.Mul(a, b), ops.Sin(a)))
	tp.SetPassive()
	return a, b, y
}

func TestPrimalValueReverseMatchesJacobianTape(t *testing.T) {
	jt := tape.New(tape.DefaultOptions())
	jt.SetActive()
	ja := jt.RegisterInput(1.5)
	jb := jt.RegisterInput(-2.0)
	jy := jt.Store(ops.Add(ops.Mul(ja, jb), ops.Sin(ja)))
	jt.SetPassive()
	jt.SetGradient(jy.Identifier(), 1)
	jt.Evaluate()

	pt := tape.NewPrimalValue(tape.DefaultOptions())
	a, b, y := recordPrimalSample(pt, 1.5, -2.0)
	require.Equal(t, jy.Value(), y.Value())
	pt.SetGradient(y.Identifier(), 1)
	pt.Evaluate()

	assert.InDelta(t, jt.Gradient(ja.Identifier()), pt.Gradient(a.Identifier()), 1e-15)
	assert.InDelta(t, jt.Gradient(jb.Identifier()), pt.Gradient(b.Identifier()), 1e-15)
}

func TestPrimalReevaluationAtNewInputs(t *testing.T) {
	pt := tape.NewPrimalValue(tape.DefaultOptions())
	a, b, y := recordPrimalSample(pt, 1.5, -2.0)

	// Move the inputs and re-run the recorded statements.
	pt.SetPrimal(a.Identifier(), 0.25)
	pt.SetPrimal(b.Identifier(), 3.0)
	pt.EvaluatePrimal(pt.ZeroPosition(), pt.Position())
	assert.InDelta(t, 0.25*3.0+math.Sin(0.25), pt.Primal(y.Identifier()), 1e-15)

	// Derivatives now come out at the new point.
	pt.SetGradient(y.Identifier(), 1)
	pt.Evaluate()
	assert.InDelta(t, 3.0+math.Cos(0.25), pt.Gradient(a.Identifier()), 1e-15)
	assert.InDelta(t, 0.25, pt.Gradient(b.Identifier()), 1e-15)
}

func TestRevertPrimalsRestoresRecordedState(t *testing.T) {
	pt := tape.NewPrimalValue(tape.DefaultOptions())
	a, _, y := recordPrimalSample(pt, 1.5, -2.0)
	recorded := pt.Primal(y.Identifier())

	pt.SetPrimal(a.Identifier(), 9)
	pt.EvaluatePrimal(pt.ZeroPosition(), pt.Position())
	require.NotEqual(t, recorded, pt.Primal(y.Identifier()))

	pt.RevertPrimals()
	assert.Equal(t, recorded, pt.Primal(y.Identifier()))
	assert.Equal(t, 1.5, pt.Primal(a.Identifier()))
}

func TestPrimalValuePassiveConstants(t *testing.T) {
	// One operand is a plain constant; its value travels in the constant
	// stream and must resolve in both sweep directions.
	pt := tape.NewPrimalValue(tape.DefaultOptions())
	pt.SetActive()
	x := pt.RegisterInput(3)
	y := pt.Store(ops.Mul(ops.Const(2.5), x))
	pt.SetPassive()

	require.Equal(t, 7.5, y.Value())
	pt.SetGradient(y.Identifier(), 1)
	pt.Evaluate()
	assert.Equal(t, 2.5, pt.Gradient(x.Identifier()))

	pt.SetPrimal(x.Identifier(), 4)
	pt.EvaluatePrimal(pt.ZeroPosition(), pt.Position())
	assert.Equal(t, 10.0, pt.Primal(y.Identifier()))
}

func TestPrimalValueForwardSweep(t *testing.T) {
	pt := tape.NewPrimalValue(tape.DefaultOptions())
	a, b, y := recordPrimalSample(pt, 1.5, -2.0)

	pt.SetGradient(a.Identifier(), 1)
	pt.SetGradient(b.Identifier(), 0)
	pt.EvaluateForward(pt.ZeroPosition(), pt.Position())
	assert.InDelta(t, -2.0+math.Cos(1.5), pt.Gradient(y.Identifier()), 1e-15)
}

func TestForwardTangentsDirectionalDerivative(t *testing.T) {
	pt := tape.NewPrimalValue(tape.DefaultOptions())
	a, b, y := recordPrimalSample(pt, 1.5, -2.0)

	n := int(pt.Stats().MaxIdentifier) + 1
	tangents := make([]tape.Real, n)
	tangents[a.Identifier()] = 2
	tangents[b.Identifier()] = -1
	pt.EvaluateForwardTangents(tangents)

	// d/dt f(a+2t, b-t) = 2*(b+cos a) - a
	want := 2*(-2.0+math.Cos(1.5)) - 1.5
	assert.InDelta(t, want, tangents[y.Identifier()], 1e-14)
}

func TestSecondOrderBilinear(t *testing.T) {
	// f(a, b) = a*b: the Hessian is [[0, 1], [1, 0]].
	pt := tape.NewPrimalValue(tape.DefaultOptions())
	pt.SetActive()
	a := pt.RegisterInput(1.5)
	b := pt.RegisterInput(-2.0)
	y := pt.Store(ops.Mul(a, b))
	pt.SetPassive()

	n := int(pt.Stats().MaxIdentifier) + 1
	hessCol := func(seed ops.Active) (daa, dab tape.Real) {
		tangents := make([]tape.Real, n)
		tangents[seed.Identifier()] = 1
		pt.EvaluateForwardTangents(tangents)

		adjoints := make([]tape.Real, n)
		adjointDots := make([]tape.Real, n)
		adjoints[y.Identifier()] = 1
		pt.EvaluateReverseSecondOrder(adjoints, adjointDots, tangents)
		return adjointDots[a.Identifier()], adjointDots[b.Identifier()]
	}

	daa, dba := hessCol(a)
	assert.InDelta(t, 0.0, daa, 1e-15)
	assert.InDelta(t, 1.0, dba, 1e-15)

	dab, dbb := hessCol(b)
	assert.InDelta(t, 1.0, dab, 1e-15)
	assert.InDelta(t, 0.0, dbb, 1e-15)
}

func TestSecondOrderSin(t *testing.T) {
	// f(x) = sin(x), f''(x) = -sin(x).
	pt := tape.NewPrimalValue(tape.DefaultOptions())
	pt.SetActive()
	x := pt.RegisterInput(0.7)
	y := pt.Store(ops.Sin(x))
	pt.SetPassive()

	n := int(pt.Stats().MaxIdentifier) + 1
	tangents := make([]tape.Real, n)
	tangents[x.Identifier()] = 1
	pt.EvaluateForwardTangents(tangents)

	adjoints := make([]tape.Real, n)
	adjointDots := make([]tape.Real, n)
	adjoints[y.Identifier()] = 1
	pt.EvaluateReverseSecondOrder(adjoints, adjointDots, tangents)

	assert.InDelta(t, math.Cos(0.7), adjoints[x.Identifier()], 1e-15)
	assert.InDelta(t, -math.Sin(0.7), adjointDots[x.Identifier()], 1e-15)
}

func TestPrimalValueResetTo(t *testing.T) {
	pt := tape.NewPrimalValue(tape.DefaultOptions())
	pt.SetActive()
	x := pt.RegisterInput(2)
	pt.Store(ops.Exp(x))
	mark := pt.Position()
	markStats := pt.Stats()

	pt.Store(ops.Mul(x, x))
	pt.ResetTo(mark)

	got := pt.Stats()
	assert.Equal(t, markStats.Statements, got.Statements)
	assert.Equal(t, markStats.ConstantEntries, got.ConstantEntries)
	assert.Equal(t, mark, pt.Position())
}

func TestPrimalValueDecomposesExpressions(t *testing.T) {
	// A three-node expression tree records one statement per node.
	pt := tape.NewPrimalValue(tape.DefaultOptions())
	pt.SetActive()
	a := pt.RegisterInput(1)
	b := pt.RegisterInput(2)
	pt.Store(ops.Add(ops.Mul(a, b), ops.Sin(a)))
	pt.SetPassive()

	assert.Equal(t, 3, pt.Stats().Statements)
}
