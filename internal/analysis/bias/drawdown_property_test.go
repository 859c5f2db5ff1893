package bias

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Max drawdown never shrinks as later points are appended to the equity
// series: consuming more of the chronological record set can only reveal a
// deeper decline, never undo one.
func TestPropertyDrawdownMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("appending points never shrinks max drawdown", prop.ForAll(
		func(equity []float64) bool {
			prev := 0.0
			for i := 1; i <= len(equity); i++ {
				dd := MaxDrawdown(equity[:i])
				if dd < prev {
					return false
				}
				prev = dd
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(-1e6, 1e6)),
	))

	properties.Property("drawdown is a bounded percentage", prop.ForAll(
		func(equity []float64) bool {
			dd := MaxDrawdown(equity)
			return dd >= 0
		},
		gen.SliceOf(gen.Float64Range(-1e6, 1e6)),
	))

	properties.TestingRun(t)
}
