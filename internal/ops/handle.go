package ops

import "fmt"

// Token indexes the evaluation-handle table. Tokens are assigned at package
// initialization and are stable for the life of the process.
type Token uint16

// Handle re-evaluates one elementary operation from operand values alone.
// Primal-value tapes store a token per statement instead of literal
// partials; sweeps resolve the token here to recompute the primal and its
// first and second partial derivatives at the current operand values.
//
// Operands beyond Arity are ignored; implementations read args[0] and, for
// binary operations, args[1].
type Handle interface {
	// Name identifies the operation in diagnostics.
	Name() string

	// Arity returns the number of operands, 1 or 2.
	Arity() int

	// Primal computes the operation's value.
	Primal(args [2]Real) Real

	// Partials returns d f / d args[i] for each operand.
	Partials(args [2]Real) [2]Real

	// SecondPartials returns d2 f / d args[i] d args[j]. The result is
	// symmetric; it feeds the second-order sweeps of the Hessian driver.
	SecondPartials(args [2]Real) [2][2]Real
}

var handleTable []Handle

// RegisterHandle adds h to the global handle table and returns its token.
// Registration happens during package initialization and is not safe for
// concurrent use.
func RegisterHandle(h Handle) Token {
	handleTable = append(handleTable, h)
	return Token(len(handleTable) - 1)
}

// HandleFor resolves a token recorded on a tape.
func HandleFor(tok Token) Handle {
	if int(tok) >= len(handleTable) {
		panic(fmt.Sprintf("ops: unknown evaluation handle token %d", tok))
	}
	return handleTable[tok]
}

// NumHandles returns the number of registered handles.
func NumHandles() int { return len(handleTable) }
