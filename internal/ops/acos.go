package ops

import "math"

// Acos returns an expression for arccos(x).
//
// Partial: d(acos x)/dx = -1/√(1-x²). With argument checking enabled, an
// argument outside [-1, 1] raises a DomainError.
func Acos(x Expr) Expr {
	xv := x.Value()
	checkArg(xv >= -1 && xv <= 1, "acos", xv, "argument outside [-1, 1]")
	return &unaryExpr{arg: x, value: math.Acos(xv), partial: -1 / math.Sqrt(1-xv*xv), tok: acosToken}
}

type acosHandle struct{}

var acosToken = RegisterHandle(acosHandle{})

func (acosHandle) Name() string { return "acos" }
func (acosHandle) Arity() int   { return 1 }

func (acosHandle) Primal(args [2]Real) Real {
	checkArg(args[0] >= -1 && args[0] <= 1, "acos", args[0], "argument outside [-1, 1]")
	return math.Acos(args[0])
}

func (acosHandle) Partials(args [2]Real) [2]Real {
	x := args[0]
	return [2]Real{-1 / math.Sqrt(1-x*x), 0}
}

func (acosHandle) SecondPartials(args [2]Real) [2][2]Real {
	x := args[0]
	d := 1 - x*x
	return [2][2]Real{{-x / (d * math.Sqrt(d)), 0}, {0, 0}}
}
