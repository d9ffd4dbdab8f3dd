package ops

// Neg returns an expression for -x.
func Neg(x Expr) Expr {
	return &unaryExpr{arg: x, value: -x.Value(), partial: -1, tok: negToken}
}

type negHandle struct{}

var negToken = RegisterHandle(negHandle{})

func (negHandle) Name() string                        { return "neg" }
func (negHandle) Arity() int                          { return 1 }
func (negHandle) Primal(args [2]Real) Real            { return -args[0] }
func (negHandle) Partials(args [2]Real) [2]Real       { return [2]Real{-1, 0} }
func (negHandle) SecondPartials(args [2]Real) [2][2]Real { return [2][2]Real{} }
