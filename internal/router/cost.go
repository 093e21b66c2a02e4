package router

import (
	"math"
	"strings"
)

// estimateTextUnits approximates the billable token count of a text
// request: prompt word count scaled by the configured token factor,
// plus the full completion budget.
func estimateTextUnits(prompt string, maxTokens int, tokenFactor float64) float64 {
	words := len(strings.Fields(prompt))
	return math.Ceil(float64(words)*tokenFactor) + float64(maxTokens)
}

// textCost prices an estimated unit count at a provider's per-1k rate.
func textCost(units, costPer1K float64) float64 {
	return units / 1000 * costPer1K
}
