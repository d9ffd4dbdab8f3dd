package ops

import "math"

// Sqrt returns an expression for the square root of x.
//
// Partial: d(√x)/dx = 1/(2√x). With argument checking enabled, a negative
// argument raises a DomainError.
func Sqrt(x Expr) Expr {
	xv := x.Value()
	checkArg(xv >= 0, "sqrt", xv, "square root of a negative value")
	v := math.Sqrt(xv)
	return &unaryExpr{arg: x, value: v, partial: 1 / (2 * v), tok: sqrtToken}
}

type sqrtHandle struct{}

var sqrtToken = RegisterHandle(sqrtHandle{})

func (sqrtHandle) Name() string { return "sqrt" }
func (sqrtHandle) Arity() int   { return 1 }

func (sqrtHandle) Primal(args [2]Real) Real {
	checkArg(args[0] >= 0, "sqrt", args[0], "square root of a negative value")
	return math.Sqrt(args[0])
}

func (sqrtHandle) Partials(args [2]Real) [2]Real {
	return [2]Real{1 / (2 * math.Sqrt(args[0])), 0}
}

func (sqrtHandle) SecondPartials(args [2]Real) [2][2]Real {
	x := args[0]
	return [2][2]Real{{-1 / (4 * x * math.Sqrt(x)), 0}, {0, 0}}
}
