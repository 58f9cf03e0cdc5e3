package scoring

import (
	"strings"

	"github.com/dealgrid/fitscore/internal/store"
)

// Learning penalty bounds. A buyer can never be boosted by more than 5 nor
// penalized by more than 25 purely from learned history.
const (
	minLearningPenalty = -5
	maxLearningPenalty = 25
	minLearningActions = 3
)

// LearningResult is the bounded score adjustment derived from a buyer's
// historical approve/pass pattern.
type LearningResult struct {
	Penalty float64 `json:"penalty"`
	Note    string  `json:"note"`
}

// LearningPenalty computes the adjustment for a buyer's decision history.
// Fewer than three actions is insufficient signal and yields (0, "").
// Category penalties stack independently; the final value is clamped to
// [-5, +25].
func LearningPenalty(p *store.LearningPattern) LearningResult {
	if p == nil || p.TotalActions < minLearningActions {
		return LearningResult{}
	}

	var penalty float64
	var notes []string

	if p.PassCategories[store.PassSize] >= 2 {
		penalty += 10
		notes = append(notes, "repeated size rejections (+10)")
	}
	if p.PassCategories[store.PassGeography] >= 2 {
		penalty += 8
		notes = append(notes, "repeated geography rejections (+8)")
	}
	if p.PassCategories[store.PassServices] >= 2 {
		penalty += 8
		notes = append(notes, "repeated service rejections (+8)")
	}
	if p.PassCategories[store.PassTiming] >= 3 {
		penalty += 5
		notes = append(notes, "repeated timing rejections (+5)")
	}
	if p.PassCategories[store.PassPortfolioConflict] >= 1 {
		penalty += 3
		notes = append(notes, "portfolio conflict on record (+3)")
	}

	switch {
	case p.ApprovalRate >= 0.7:
		penalty -= 5
		notes = append(notes, "high approval rate (-5)")
	case p.ApprovalRate < 0.3:
		penalty += 3
		notes = append(notes, "low approval rate (+3)")
	}

	penalty = clamp(penalty, minLearningPenalty, maxLearningPenalty)

	return LearningResult{Penalty: penalty, Note: strings.Join(notes, "; ")}
}
