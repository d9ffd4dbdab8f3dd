package ops

import "fmt"

// CheckArguments enables domain validation in elementary operations
// (divide by zero, log of a negative, inverse trig out of range, power of a
// negative base with an active exponent). When enabled, violations panic
// with a *DomainError; when disabled they silently produce NaN or Inf per
// IEEE 754 semantics. Off by default, this is the deliberate perf/safety
// tradeoff; tape options flip it.
//
// The flag is read without synchronization, matching the engine's
// single-threaded recording model.
var CheckArguments = false

// DomainError reports a domain violation in an elementary operation. It is
// raised via panic so it can interrupt expression construction mid-tree;
// callers that want to treat it as recoverable recover it at the statement
// boundary.
type DomainError struct {
	Op    string
	Value Real
	Msg   string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("ops: %s: %s (argument %g)", e.Op, e.Msg, e.Value)
}

// checkArg panics with a DomainError when checking is enabled and ok is
// false.
func checkArg(ok bool, op string, v Real, msg string) {
	if CheckArguments && !ok {
		panic(&DomainError{Op: op, Value: v, Msg: msg})
	}
}
