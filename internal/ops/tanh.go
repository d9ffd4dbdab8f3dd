package ops

import "math"

// Tanh returns an expression for tanh(x).
//
// Partial: d(tanh x)/dx = 1 - tanh²(x).
func Tanh(x Expr) Expr {
	v := math.Tanh(x.Value())
	return &unaryExpr{arg: x, value: v, partial: 1 - v*v, tok: tanhToken}
}

type tanhHandle struct{}

var tanhToken = RegisterHandle(tanhHandle{})

func (tanhHandle) Name() string             { return "tanh" }
func (tanhHandle) Arity() int               { return 1 }
func (tanhHandle) Primal(args [2]Real) Real { return math.Tanh(args[0]) }

func (tanhHandle) Partials(args [2]Real) [2]Real {
	t := math.Tanh(args[0])
	return [2]Real{1 - t*t, 0}
}

func (tanhHandle) SecondPartials(args [2]Real) [2][2]Real {
	t := math.Tanh(args[0])
	return [2][2]Real{{-2 * t * (1 - t*t), 0}, {0, 0}}
}
