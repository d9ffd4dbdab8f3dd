package algorithms

import (
	"fmt"

	"github.com/spool-ml/spool/internal/tape"
)

// Mode selects the sweep direction of a Jacobian evaluation.
type Mode int

const (
	// Auto picks forward mode when there are at most as many inputs as
	// outputs, reverse mode otherwise.
	Auto Mode = iota
	ForwardMode
	ReverseMode
)

func (m Mode) String() string {
	switch m {
	case Auto:
		return "auto"
	case ForwardMode:
		return "forward"
	case ReverseMode:
		return "reverse"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// GradientTape is the sweep surface the drivers need; both tape kinds
// provide it.
type GradientTape interface {
	Gradient(id tape.Identifier) tape.Real
	SetGradient(id tape.Identifier, v tape.Real)
	ClearAdjoints()
	EvaluateForward(start, end tape.Position)
	EvaluateReverse(start, end tape.Position)
	ZeroPosition() tape.Position
	Position() tape.Position
}

// ComputeJacobian fills jac with the derivative of every output with
// respect to every input, using one sweep per seed direction. The adjoint
// vector is cleared before the first seed and left cleared afterwards, so
// interleaved manual seeding does not contaminate the result.
func ComputeJacobian(t GradientTape, inputs, outputs []tape.Identifier, jac Jacobian, mode Mode) error {
	if jac.Rows() != len(outputs) || jac.Cols() != len(inputs) {
		return fmt.Errorf("algorithms: jacobian shape %dx%d does not match %d outputs and %d inputs",
			jac.Rows(), jac.Cols(), len(outputs), len(inputs))
	}
	if mode == Auto {
		if len(inputs) <= len(outputs) {
			mode = ForwardMode
		} else {
			mode = ReverseMode
		}
	}
	start, end := t.ZeroPosition(), t.Position()
	t.ClearAdjoints()
	defer t.ClearAdjoints()

	switch mode {
	case ForwardMode:
		for j, in := range inputs {
			t.SetGradient(in, 1)
			t.EvaluateForward(start, end)
			for i, out := range outputs {
				jac.Set(i, j, float64(t.Gradient(out)))
			}
			t.ClearAdjoints()
		}
	case ReverseMode:
		for i, out := range outputs {
			t.SetGradient(out, 1)
			t.EvaluateReverse(start, end)
			for j, in := range inputs {
				jac.Set(i, j, float64(t.Gradient(in)))
			}
			t.ClearAdjoints()
		}
	default:
		return fmt.Errorf("algorithms: unknown jacobian mode %d", mode)
	}
	return nil
}

// ComputeGradient is the single-output convenience wrapper: one reverse
// sweep, gradients returned in input order.
func ComputeGradient(t GradientTape, inputs []tape.Identifier, output tape.Identifier) []float64 {
	t.ClearAdjoints()
	t.SetGradient(output, 1)
	t.EvaluateReverse(t.ZeroPosition(), t.Position())
	grad := make([]float64, len(inputs))
	for j, in := range inputs {
		grad[j] = float64(t.Gradient(in))
	}
	t.ClearAdjoints()
	return grad
}
