package ops

// Mul returns an expression for a * b.
//
// Partials: d(a*b)/da = b, d(a*b)/db = a.
func Mul(a, b Expr) Expr {
	return &binaryExpr{a: a, b: b, value: a.Value() * b.Value(), pa: b.Value(), pb: a.Value(), tok: mulToken}
}

type mulHandle struct{}

var mulToken = RegisterHandle(mulHandle{})

func (mulHandle) Name() string                  { return "mul" }
func (mulHandle) Arity() int                    { return 2 }
func (mulHandle) Primal(args [2]Real) Real      { return args[0] * args[1] }
func (mulHandle) Partials(args [2]Real) [2]Real { return [2]Real{args[1], args[0]} }

func (mulHandle) SecondPartials(args [2]Real) [2][2]Real {
	return [2][2]Real{{0, 1}, {1, 0}}
}
