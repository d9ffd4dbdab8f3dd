package ops

import "math"

// Sin returns an expression for sin(x).
func Sin(x Expr) Expr {
	xv := x.Value()
	return &unaryExpr{arg: x, value: math.Sin(xv), partial: math.Cos(xv), tok: sinToken}
}

type sinHandle struct{}

var sinToken = RegisterHandle(sinHandle{})

func (sinHandle) Name() string             { return "sin" }
func (sinHandle) Arity() int               { return 1 }
func (sinHandle) Primal(args [2]Real) Real { return math.Sin(args[0]) }

func (sinHandle) Partials(args [2]Real) [2]Real {
	return [2]Real{math.Cos(args[0]), 0}
}

func (sinHandle) SecondPartials(args [2]Real) [2][2]Real {
	return [2][2]Real{{-math.Sin(args[0]), 0}, {0, 0}}
}
