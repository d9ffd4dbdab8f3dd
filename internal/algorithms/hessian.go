package algorithms

import (
	"fmt"

	"github.com/spool-ml/spool/internal/tape"
)

// ComputeHessian fills hes with exact second derivatives of every output
// with respect to every input pair, one forward-over-reverse pass per
// input direction. Only the primal-value tape supports this: the Jacobian
// encoding fixes its partials at record time, while re-deriving second
// partials needs the evaluation handles.
//
// The tape's primal vector is left as recorded.
func ComputeHessian(t *tape.PrimalValueTape, inputs, outputs []tape.Identifier, hes Hessian) error {
	if hes.Outputs() != len(outputs) || hes.Inputs() != len(inputs) {
		return fmt.Errorf("algorithms: hessian shape %dx%dx%d does not match %d outputs and %d inputs",
			hes.Outputs(), hes.Inputs(), hes.Inputs(), len(outputs), len(inputs))
	}
	n := int(t.Stats().MaxIdentifier) + 1
	tangents := make([]tape.Real, n)
	adjoints := make([]tape.Real, n)
	adjointDots := make([]tape.Real, n)

	for k, ink := range inputs {
		for i := range tangents {
			tangents[i] = 0
		}
		tangents[ink] = 1
		t.EvaluateForwardTangents(tangents)

		for i, out := range outputs {
			for j := range adjoints {
				adjoints[j] = 0
				adjointDots[j] = 0
			}
			adjoints[out] = 1
			t.EvaluateReverseSecondOrder(adjoints, adjointDots, tangents)
			for j, inj := range inputs {
				hes.Set(i, j, k, float64(adjointDots[inj]))
			}
		}
	}
	return nil
}

// ComputeHessianWithJacobian also fills the first-derivative Jacobian,
// using reverse sweeps over the same recording.
func ComputeHessianWithJacobian(t *tape.PrimalValueTape, inputs, outputs []tape.Identifier, hes Hessian, jac Jacobian) error {
	if jac.Rows() != len(outputs) || jac.Cols() != len(inputs) {
		return fmt.Errorf("algorithms: jacobian shape %dx%d does not match %d outputs and %d inputs",
			jac.Rows(), jac.Cols(), len(outputs), len(inputs))
	}
	if err := ComputeHessian(t, inputs, outputs, hes); err != nil {
		return err
	}
	return ComputeJacobian(t, inputs, outputs, jac, ReverseMode)
}
