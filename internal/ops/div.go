package ops

// Div returns an expression for a / b.
//
// Partials: d(a/b)/da = 1/b, d(a/b)/db = -a/b².
//
// With argument checking enabled, a zero divisor raises a DomainError;
// otherwise the result follows IEEE 754 division (Inf or NaN).
func Div(a, b Expr) Expr {
	bv := b.Value()
	checkArg(bv != 0, "div", bv, "division by zero")
	av := a.Value()
	return &binaryExpr{a: a, b: b, value: av / bv, pa: 1 / bv, pb: -av / (bv * bv), tok: divToken}
}

type divHandle struct{}

var divToken = RegisterHandle(divHandle{})

func (divHandle) Name() string { return "div" }
func (divHandle) Arity() int   { return 2 }

func (divHandle) Primal(args [2]Real) Real {
	checkArg(args[1] != 0, "div", args[1], "division by zero")
	return args[0] / args[1]
}

func (divHandle) Partials(args [2]Real) [2]Real {
	b := args[1]
	return [2]Real{1 / b, -args[0] / (b * b)}
}

func (divHandle) SecondPartials(args [2]Real) [2][2]Real {
	b := args[1]
	dab := -1 / (b * b)
	dbb := 2 * args[0] / (b * b * b)
	return [2][2]Real{{0, dab}, {dab, dbb}}
}
