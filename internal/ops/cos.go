package ops

import "math"

// Cos returns an expression for cos(x).
func Cos(x Expr) Expr {
	xv := x.Value()
	return &unaryExpr{arg: x, value: math.Cos(xv), partial: -math.Sin(xv), tok: cosToken}
}

type cosHandle struct{}

var cosToken = RegisterHandle(cosHandle{})

func (cosHandle) Name() string             { return "cos" }
func (cosHandle) Arity() int               { return 1 }
func (cosHandle) Primal(args [2]Real) Real { return math.Cos(args[0]) }

func (cosHandle) Partials(args [2]Real) [2]Real {
	return [2]Real{-math.Sin(args[0]), 0}
}

func (cosHandle) SecondPartials(args [2]Real) [2][2]Real {
	return [2][2]Real{{-math.Cos(args[0]), 0}, {0, 0}}
}
