package scoring

import "strings"

// DimensionResult captures one dimension's contribution to the composite.
// Score is 0-100, Multiplier 0.0-1.0; Weighted is filled in by the engine
// once weights are resolved.
type DimensionResult struct {
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	Multiplier float64 `json:"multiplier"`
	Weight     float64 `json:"weight"`
	Weighted   float64 `json:"weighted"`
	Reasoning  string  `json:"reasoning"`
}

// dimension clamps score and multiplier to their contracts and joins the
// reasoning clauses. Every scorer returns through here.
func dimension(name string, score, mult float64, reasons []string) DimensionResult {
	return DimensionResult{
		Name:       name,
		Score:      clamp(score, 0, 100),
		Multiplier: clamp(mult, 0, 1),
		Reasoning:  strings.Join(reasons, "; "),
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// containsFold reports whether list contains s, ignoring case.
func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// overlapCount counts how many of items appear in list, ignoring case.
func overlapCount(items, list []string) int {
	n := 0
	for _, it := range items {
		if containsFold(list, it) {
			n++
		}
	}
	return n
}
