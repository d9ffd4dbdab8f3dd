package ops_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spool-ml/spool/internal/ops"
)

// handlePoints lists sample operand values per operation, chosen inside each
// operation's domain.
var handlePoints = map[string][][2]ops.Real{
	"add":   {{1.5, -2.25}, {0, 0}},
	"sub":   {{3, 7}, {-1, 1}},
	"mul":   {{3, 4}, {-2, 0.5}},
	"div":   {{1, 3}, {-4, 0.25}},
	"neg":   {{2.5, 0}},
	"exp":   {{0.5, 0}, {-1, 0}},
	"log":   {{0.5, 0}, {3, 0}},
	"sqrt":  {{0.25, 0}, {4, 0}},
	"pow":   {{2, 3}, {1.5, -0.5}},
	"sin":   {{0.3, 0}, {-1.2, 0}},
	"cos":   {{0.3, 0}, {-1.2, 0}},
	"tanh":  {{0.8, 0}, {-0.3, 0}},
	"asin":  {{0.4, 0}, {-0.6, 0}},
	"acos":  {{0.4, 0}, {-0.6, 0}},
	"atanh": {{0.4, 0}, {-0.6, 0}},
}

// TestHandles_PartialsMatchFiniteDifferences cross-checks every registered
// handle's analytic partials against central finite differences of its
// primal, and its second partials against finite differences of the
// partials.
func TestHandles_PartialsMatchFiniteDifferences(t *testing.T) {
	const h = 1e-6
	const tol = 1e-4

	for tok := 0; tok < ops.NumHandles(); tok++ {
		handle := ops.HandleFor(ops.Token(tok))
		points, okPoints := handlePoints[handle.Name()]
		require.True(t, okPoints, "no sample points for handle %q", handle.Name())

		for _, args := range points {
			p := handle.Partials(args)
			s := handle.SecondPartials(args)

			for i := 0; i < handle.Arity(); i++ {
				up, down := args, args
				up[i] += h
				down[i] -= h

				fd := (handle.Primal(up) - handle.Primal(down)) / (2 * h)
				assert.InDelta(t, fd, p[i], tol,
					"%s: partial %d at %v", handle.Name(), i, args)

				for j := 0; j < handle.Arity(); j++ {
					fd2 := (handle.Partials(up)[j] - handle.Partials(down)[j]) / (2 * h)
					assert.InDelta(t, fd2, s[i][j], tol,
						"%s: second partial (%d,%d) at %v", handle.Name(), i, j, args)
					assert.Equal(t, s[i][j], s[j][i],
						"%s: second partials must be symmetric", handle.Name())
				}
			}
		}
	}
}

func TestHandleFor_UnknownTokenPanics(t *testing.T) {
	assert.Panics(t, func() { ops.HandleFor(ops.Token(9999)) })
}
