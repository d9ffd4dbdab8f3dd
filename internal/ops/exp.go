package ops

import "math"

// Exp returns an expression for e^x.
func Exp(x Expr) Expr {
	v := math.Exp(x.Value())
	return &unaryExpr{arg: x, value: v, partial: v, tok: expToken}
}

type expHandle struct{}

var expToken = RegisterHandle(expHandle{})

func (expHandle) Name() string             { return "exp" }
func (expHandle) Arity() int               { return 1 }
func (expHandle) Primal(args [2]Real) Real { return math.Exp(args[0]) }

func (expHandle) Partials(args [2]Real) [2]Real {
	return [2]Real{math.Exp(args[0]), 0}
}

func (expHandle) SecondPartials(args [2]Real) [2][2]Real {
	return [2][2]Real{{math.Exp(args[0]), 0}, {0, 0}}
}
