package ops

// Sub returns an expression for a - b.
//
// Partials: d(a-b)/da = 1, d(a-b)/db = -1.
func Sub(a, b Expr) Expr {
	return &binaryExpr{a: a, b: b, value: a.Value() - b.Value(), pa: 1, pb: -1, tok: subToken}
}

type subHandle struct{}

var subToken = RegisterHandle(subHandle{})

func (subHandle) Name() string                        { return "sub" }
func (subHandle) Arity() int                          { return 2 }
func (subHandle) Primal(args [2]Real) Real            { return args[0] - args[1] }
func (subHandle) Partials(args [2]Real) [2]Real       { return [2]Real{1, -1} }
func (subHandle) SecondPartials(args [2]Real) [2][2]Real { return [2][2]Real{} }
