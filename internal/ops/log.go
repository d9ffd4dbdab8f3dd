package ops

import "math"

// Log returns an expression for the natural logarithm of x.
//
// Partial: d(log x)/dx = 1/x. With argument checking enabled, a
// non-positive argument raises a DomainError.
func Log(x Expr) Expr {
	xv := x.Value()
	checkArg(xv > 0, "log", xv, "logarithm of a non-positive value")
	return &unaryExpr{arg: x, value: math.Log(xv), partial: 1 / xv, tok: logToken}
}

type logHandle struct{}

var logToken = RegisterHandle(logHandle{})

func (logHandle) Name() string { return "log" }
func (logHandle) Arity() int   { return 1 }

func (logHandle) Primal(args [2]Real) Real {
	checkArg(args[0] > 0, "log", args[0], "logarithm of a non-positive value")
	return math.Log(args[0])
}

func (logHandle) Partials(args [2]Real) [2]Real {
	return [2]Real{1 / args[0], 0}
}

func (logHandle) SecondPartials(args [2]Real) [2][2]Real {
	x := args[0]
	return [2][2]Real{{-1 / (x * x), 0}, {0, 0}}
}
