package ops

import "math"

// Pow returns an expression for a^b.
//
// Partials: d(a^b)/da = b·a^(b-1); d(a^b)/db = a^b·ln(a) for a > 0, taken
// as zero otherwise (the exponent partial is undefined there).
//
// With argument checking enabled, a negative base with an active exponent
// raises a DomainError: the derivative with respect to the exponent does
// not exist for negative bases.
func Pow(a, b Expr) Expr {
	av, bv := a.Value(), b.Value()
	if b.ActiveCount() > 0 {
		checkArg(av >= 0, "pow", av, "negative base with an active exponent")
	}
	return &binaryExpr{
		a:     a,
		b:     b,
		value: math.Pow(av, bv),
		pa:    bv * math.Pow(av, bv-1),
		pb:    powExponentPartial(av, bv),
		tok:   powToken,
	}
}

func powExponentPartial(a, b Real) Real {
	if a > 0 {
		return math.Pow(a, b) * math.Log(a)
	}
	return 0
}

type powHandle struct{}

var powToken = RegisterHandle(powHandle{})

func (powHandle) Name() string             { return "pow" }
func (powHandle) Arity() int               { return 2 }
func (powHandle) Primal(args [2]Real) Real { return math.Pow(args[0], args[1]) }

func (powHandle) Partials(args [2]Real) [2]Real {
	a, b := args[0], args[1]
	return [2]Real{b * math.Pow(a, b-1), powExponentPartial(a, b)}
}

func (powHandle) SecondPartials(args [2]Real) [2][2]Real {
	a, b := args[0], args[1]
	daa := b * (b - 1) * math.Pow(a, b-2)
	dab := math.Pow(a, b-1)
	var dbb Real
	if a > 0 {
		la := math.Log(a)
		dab *= 1 + b*la
		dbb = math.Pow(a, b) * la * la
	}
	return [2][2]Real{{daa, dab}, {dab, dbb}}
}
