// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"math"
	"strconv"
)

// numberScales are tried smallest first; precision degrades within a scale
// before the next suffix is attempted.
var numberScales = []struct {
	div    float64
	suffix string
}{
	{1, ""},
	{1e3, "K"},
	{1e6, "M"},
	{1e9, "B"},
}

// FormatCompact renders a number within a maximum character budget. Sign is
// always preserved and order of magnitude is kept via K/M/B suffixes, with
// scientific notation as a last resort. Within each representation the
// decimal precision degrades 2 -> 1 -> 0 before switching. Non-finite values
// become literal tokens and never fault. Purely presentational: the numeric
// value itself is never altered.
func FormatCompact(value float64, budget int) string {
	if math.IsNaN(value) {
		return "NaN"
	}
	if math.IsInf(value, 1) {
		return "Infinity"
	}
	if math.IsInf(value, -1) {
		return "-Infinity"
	}

	abs := math.Abs(value)
	for _, s := range numberScales {
		if s.div > 1 && abs < s.div {
			continue
		}
		scaled := value / s.div
		// A suffixed mantissa of 1000+ reads better at the next scale up.
		if s.suffix != "B" && math.Abs(scaled) >= 1000 && s.div > 1 {
			continue
		}
		for dec := 2; dec >= 0; dec-- {
			str := strconv.FormatFloat(scaled, 'f', dec, 64) + s.suffix
			if len(str) <= budget {
				return str
			}
		}
	}

	for dec := 2; dec >= 0; dec-- {
		str := strconv.FormatFloat(value, 'e', dec, 64)
		if len(str) <= budget {
			return str
		}
	}
	return strconv.FormatFloat(value, 'e', 0, 64)
}

// SuffixMultiplier returns the multiplier for a compact-format suffix rune,
// or 1 when the string carries none.
func SuffixMultiplier(s string) float64 {
	if s == "" {
		return 1
	}
	switch s[len(s)-1] {
	case 'K':
		return 1e3
	case 'M':
		return 1e6
	case 'B':
		return 1e9
	}
	return 1
}

// FormatPercent formats a percentage with an explicit sign for gains.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatPnL formats a signed P/L amount within the default 10-rune budget.
func FormatPnL(pnl float64) string {
	formatted := FormatCompact(pnl, 10)
	if pnl > 0 {
		return "+" + formatted
	}
	return formatted
}
