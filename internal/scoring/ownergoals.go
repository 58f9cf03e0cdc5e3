package scoring

import (
	"strings"

	"github.com/dealgrid/fitscore/internal/store"
)

// Signal phrases mined from owner_goals_text. Matching is substring-based
// and case-insensitive; the text is short free-form broker notes.
var (
	exitSignals = []string{"retire", "retirement", "exit", "sell outright", "full sale", "move on", "wind down"}
	staySignals = []string{"stay on", "stay involved", "partner", "partnership", "roll equity", "rollover", "second bite", "growth capital", "keep running"}
)

// exitFriendly buyer types acquire outright; the rest generally want the
// owner to continue.
func exitFriendly(t store.BuyerType) bool {
	switch t {
	case store.BuyerTypePEFirm, store.BuyerTypePlatform, store.BuyerTypeSearchFund:
		return true
	}
	return false
}

func continuityFriendly(t store.BuyerType) bool {
	switch t {
	case store.BuyerTypeStrategic, store.BuyerTypeFamilyOffice:
		return true
	}
	return false
}

// ScoreOwnerGoals rates the alignment between the seller's stated goals and
// the buyer's acquisition model. Absent text scores neutral, mirroring the
// size scorer's missing-data stance.
func ScoreOwnerGoals(deal *store.Deal, buyer *store.Buyer) DimensionResult {
	var reasons []string

	text := strings.ToLower(deal.OwnerGoalsText)
	if strings.TrimSpace(text) == "" {
		reasons = append(reasons, "no owner goals recorded, scoring neutral")
		return dimension("owner_goals", 60, 1.0, reasons)
	}

	exit := matchSignal(text, exitSignals)
	stay := matchSignal(text, staySignals)

	var score, mult float64
	switch {
	case exit != "" && stay == "":
		switch {
		case exitFriendly(buyer.BuyerType):
			score, mult = 85, 1.0
			reasons = append(reasons, "full-exit goals align with "+string(buyer.BuyerType)+" acquisition model")
		case buyer.BuyerType == "":
			score, mult = 65, 0.95
			reasons = append(reasons, "full-exit goals, buyer type unknown")
		default:
			score, mult = 55, 0.85
			reasons = append(reasons, "full-exit goals conflict with "+string(buyer.BuyerType)+" continuity preference")
		}
	case stay != "" && exit == "":
		switch {
		case continuityFriendly(buyer.BuyerType):
			score, mult = 85, 1.0
			reasons = append(reasons, "continuity goals align with "+string(buyer.BuyerType)+" acquisition model")
		case buyer.BuyerType == "":
			score, mult = 65, 0.95
			reasons = append(reasons, "continuity goals, buyer type unknown")
		default:
			score, mult = 55, 0.85
			reasons = append(reasons, "continuity goals conflict with "+string(buyer.BuyerType)+" buyout model")
		}
	case exit != "" && stay != "":
		score, mult = 70, 0.95
		reasons = append(reasons, "mixed goal signals, partial alignment assumed")
	default:
		score, mult = 65, 0.95
		reasons = append(reasons, "owner goals present but no clear signals")
	}

	// Thesis echo: a buyer whose thesis speaks to the matched signal is a
	// stronger cultural fit.
	signal := exit
	if signal == "" {
		signal = stay
	}
	if signal != "" && buyer.ThesisSummary != "" &&
		strings.Contains(strings.ToLower(buyer.ThesisSummary), signal) {
		score += 5
		reasons = append(reasons, "buyer thesis echoes owner goals")
	}

	return dimension("owner_goals", score, mult, reasons)
}

// matchSignal returns the first signal phrase found in text, or "".
func matchSignal(text string, signals []string) string {
	for _, s := range signals {
		if strings.Contains(text, s) {
			return s
		}
	}
	return ""
}
