package ops

import "math"

// Asin returns an expression for arcsin(x).
//
// Partial: d(asin x)/dx = 1/√(1-x²). With argument checking enabled, an
// argument outside [-1, 1] raises a DomainError.
func Asin(x Expr) Expr {
	xv := x.Value()
	checkArg(xv >= -1 && xv <= 1, "asin", xv, "argument outside [-1, 1]")
	return &unaryExpr{arg: x, value: math.Asin(xv), partial: 1 / math.Sqrt(1-xv*xv), tok: asinToken}
}

type asinHandle struct{}

var asinToken = RegisterHandle(asinHandle{})

func (asinHandle) Name() string { return "asin" }
func (asinHandle) Arity() int   { return 1 }

func (asinHandle) Primal(args [2]Real) Real {
	checkArg(args[0] >= -1 && args[0] <= 1, "asin", args[0], "argument outside [-1, 1]")
	return math.Asin(args[0])
}

func (asinHandle) Partials(args [2]Real) [2]Real {
	x := args[0]
	return [2]Real{1 / math.Sqrt(1-x*x), 0}
}

func (asinHandle) SecondPartials(args [2]Real) [2][2]Real {
	x := args[0]
	d := 1 - x*x
	return [2][2]Real{{x / (d * math.Sqrt(d)), 0}, {0, 0}}
}
