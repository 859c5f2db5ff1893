package utils

import (
	"math"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// decodeCompact reverses FormatCompact for finite decimal output: it strips a
// trailing suffix and scales the mantissa back up.
func decodeCompact(s string) (float64, bool) {
	mult := SuffixMultiplier(s)
	if mult > 1 {
		s = s[:len(s)-1]
	}
	mantissa, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return mantissa * mult, true
}

func TestPropertyFormatCompact(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	const budget = 12

	properties.Property("output respects the budget", prop.ForAll(
		func(value float64) bool {
			return len(FormatCompact(value, budget)) <= budget
		},
		gen.Float64Range(-9.9e11, 9.9e11),
	))

	properties.Property("magnitude survives the round trip", prop.ForAll(
		func(value float64) bool {
			formatted := FormatCompact(value, budget)
			decoded, ok := decodeCompact(formatted)
			if !ok {
				return false
			}
			// Rounding loses at most half a unit of the rendered scale.
			tolerance := 0.5 * SuffixMultiplier(formatted)
			return math.Abs(decoded-value) <= tolerance
		},
		gen.Float64Range(-9.9e11, 9.9e11),
	))

	properties.Property("suffix multiplier matches the value scale", prop.ForAll(
		func(value float64) bool {
			formatted := FormatCompact(value, budget)
			mult := SuffixMultiplier(formatted)
			if mult == 1 {
				return true
			}
			return math.Abs(value)/mult < 10000
		},
		gen.Float64Range(-9.9e11, 9.9e11),
	))

	properties.TestingRun(t)
}
