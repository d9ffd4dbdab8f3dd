package ops

// Add returns an expression for a + b.
//
// Partials: d(a+b)/da = 1, d(a+b)/db = 1.
func Add(a, b Expr) Expr {
	return &binaryExpr{a: a, b: b, value: a.Value() + b.Value(), pa: 1, pb: 1, tok: addToken}
}

type addHandle struct{}

var addToken = RegisterHandle(addHandle{})

func (addHandle) Name() string                        { return "add" }
func (addHandle) Arity() int                          { return 2 }
func (addHandle) Primal(args [2]Real) Real            { return args[0] + args[1] }
func (addHandle) Partials(args [2]Real) [2]Real       { return [2]Real{1, 1} }
func (addHandle) SecondPartials(args [2]Real) [2][2]Real { return [2][2]Real{} }
