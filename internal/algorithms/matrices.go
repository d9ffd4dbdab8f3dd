// Package algorithms provides the derivative drivers built on top of the
// tapes: full Jacobians with automatic sweep-mode selection and exact
// Hessians via forward-over-reverse evaluation.
package algorithms

import "fmt"

// Jacobian is the m-by-n derivative matrix of m outputs with respect to n
// inputs. Entry (i, j) is d out_i / d in_j.
type Jacobian interface {
	Rows() int
	Cols() int
	At(i, j int) float64
	Set(i, j int, v float64)
}

// DenseJacobian stores the matrix row-major in one slice.
type DenseJacobian struct {
	rows, cols int
	data       []float64
}

// NewDenseJacobian allocates a zeroed m-by-n Jacobian.
func NewDenseJacobian(rows, cols int) *DenseJacobian {
	return &DenseJacobian{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

func (m *DenseJacobian) Rows() int { return m.rows }
func (m *DenseJacobian) Cols() int { return m.cols }

func (m *DenseJacobian) At(i, j int) float64 { return m.data[i*m.cols+j] }

func (m *DenseJacobian) Set(i, j int, v float64) { m.data[i*m.cols+j] = v }

// Row returns output i's gradient as a slice view.
func (m *DenseJacobian) Row(i int) []float64 { return m.data[i*m.cols : (i+1)*m.cols] }

func (m *DenseJacobian) String() string {
	return fmt.Sprintf("Jacobian(%dx%d)", m.rows, m.cols)
}

// Hessian holds the second derivatives of m outputs with respect to n
// inputs. Entry (i, j, k) is d^2 out_i / (d in_j d in_k); for twice
// continuously differentiable functions it is symmetric in j and k.
type Hessian interface {
	Outputs() int
	Inputs() int
	At(i, j, k int) float64
	Set(i, j, k int, v float64)
}

// DenseHessian stores the tensor output-major, each output holding an
// n-by-n row-major block.
type DenseHessian struct {
	outputs, inputs int
	data            []float64
}

// NewDenseHessian allocates a zeroed m-output n-input Hessian.
func NewDenseHessian(outputs, inputs int) *DenseHessian {
	return &DenseHessian{outputs: outputs, inputs: inputs, data: make([]float64, outputs*inputs*inputs)}
}

func (h *DenseHessian) Outputs() int { return h.outputs }
func (h *DenseHessian) Inputs() int  { return h.inputs }

func (h *DenseHessian) At(i, j, k int) float64 {
	return h.data[(i*h.inputs+j)*h.inputs+k]
}

func (h *DenseHessian) Set(i, j, k int, v float64) {
	h.data[(i*h.inputs+j)*h.inputs+k] = v
}
