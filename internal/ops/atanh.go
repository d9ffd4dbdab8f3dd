package ops

import "math"

// Atanh returns an expression for the inverse hyperbolic tangent of x.
//
// Partial: d(atanh x)/dx = 1/(1-x²). With argument checking enabled, an
// argument outside (-1, 1) raises a DomainError.
func Atanh(x Expr) Expr {
	xv := x.Value()
	checkArg(xv > -1 && xv < 1, "atanh", xv, "argument outside (-1, 1)")
	return &unaryExpr{arg: x, value: math.Atanh(xv), partial: 1 / (1 - xv*xv), tok: atanhToken}
}

type atanhHandle struct{}

var atanhToken = RegisterHandle(atanhHandle{})

func (atanhHandle) Name() string { return "atanh" }
func (atanhHandle) Arity() int   { return 1 }

func (atanhHandle) Primal(args [2]Real) Real {
	checkArg(args[0] > -1 && args[0] < 1, "atanh", args[0], "argument outside (-1, 1)")
	return math.Atanh(args[0])
}

func (atanhHandle) Partials(args [2]Real) [2]Real {
	x := args[0]
	return [2]Real{1 / (1 - x*x), 0}
}

func (atanhHandle) SecondPartials(args [2]Real) [2][2]Real {
	x := args[0]
	d := 1 - x*x
	return [2][2]Real{{2 * x / (d * d), 0}, {0, 0}}
}
