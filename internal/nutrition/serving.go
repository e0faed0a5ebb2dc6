package nutrition

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// metricAmount matches a number directly followed by g or ml, e.g. "15g", "240 ml".
	metricAmount = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(ml|g)\b`)
	// parenthesized captures the inside of each (...) group.
	parenthesized = regexp.MustCompile(`\(([^()]*)\)`)
)

// ParseServingGrams extracts a gram amount from a free-form serving size such
// as "15g", "100 g", "1 pod (15g)" or "2 cups (473ml)". An amount inside
// parentheses wins over one outside them; otherwise the first amount in the
// string is used. Millilitres count as grams. ok is false when the string has
// no positive numeric amount with a g/ml unit.
func ParseServingGrams(text string) (grams float64, ok bool) {
	for _, m := range parenthesized.FindAllStringSubmatch(text, -1) {
		if g, ok := firstMetricAmount(m[1]); ok {
			return g, true
		}
	}
	return firstMetricAmount(text)
}

func firstMetricAmount(s string) (float64, bool) {
	m := metricAmount.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	return positive(m[1])
}

// ParseServingQuantity parses a bare gram count as OFF stores it in
// serving_quantity ("15", "236.0"). A trailing g/ml unit is tolerated.
func ParseServingQuantity(text string) (float64, bool) {
	s := strings.TrimSpace(strings.ToLower(text))
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(s, "ml"), "g"))
	return positive(s)
}

func positive(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

// FormatGrams renders a gram amount for labels: one decimal at most, no
// trailing zeros ("15 g", "12.5 g").
func FormatGrams(g float64) string {
	return strconv.FormatFloat(roundTenth(g), 'f', -1, 64) + " g"
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
