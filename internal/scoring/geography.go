package scoring

import (
	"fmt"

	"github.com/dealgrid/fitscore/internal/config"
	"github.com/dealgrid/fitscore/internal/store"
)

// ScoreGeography rates the overlap between the deal's operating states and
// the buyer's target footprint, modulated by the universe's geography mode.
// Tier thresholds come from policy, not constants.
func ScoreGeography(deal *store.Deal, buyer *store.Buyer, behavior store.ScoringBehavior, policy config.GeoPolicy) DimensionResult {
	var reasons []string

	mode := behavior.GeographyMode
	if mode == "" {
		mode = store.GeoFlexible
	}

	if mode == store.GeoNational {
		if len(deal.GeographicStates) == 0 {
			reasons = append(reasons, "deal geography unknown")
			return dimension("geography", 55, 0.9, reasons)
		}
		reasons = append(reasons, "buyer acquires nationally")
		return dimension("geography", policy.NationalScore, 1.0, reasons)
	}

	if len(buyer.TargetGeographies) == 0 {
		reasons = append(reasons, "buyer lists no target geographies, scoring neutral")
		return dimension("geography", 60, 1.0, reasons)
	}
	if len(deal.GeographicStates) == 0 {
		reasons = append(reasons, "deal geography unknown against a targeted buyer")
		return dimension("geography", 55, 0.9, reasons)
	}

	matched := overlapCount(deal.GeographicStates, buyer.TargetGeographies)
	overlap := float64(matched) / float64(len(deal.GeographicStates))
	reasons = append(reasons, fmt.Sprintf("%d of %d deal states in buyer footprint", matched, len(deal.GeographicStates)))

	if mode == store.GeoStrict {
		switch {
		case overlap == 1:
			reasons = append(reasons, "full containment (strict mode)")
			return dimension("geography", policy.FullScore, policy.FullMult, reasons)
		case overlap > 0:
			reasons = append(reasons, "partial containment fails strict mode")
			return dimension("geography", policy.StrictPartScore, policy.StrictPartMult, reasons)
		default:
			reasons = append(reasons, "no containment (strict mode)")
			return dimension("geography", policy.StrictNoneScore, policy.StrictNoneMult, reasons)
		}
	}

	// Flexible mode rewards partial overlap.
	switch {
	case overlap == 1:
		reasons = append(reasons, "full footprint overlap")
		return dimension("geography", policy.FullScore, policy.FullMult, reasons)
	case overlap >= policy.HighThreshold:
		reasons = append(reasons, "strong footprint overlap")
		return dimension("geography", policy.HighScore, policy.HighMult, reasons)
	case overlap >= policy.PartThreshold:
		reasons = append(reasons, "partial footprint overlap")
		return dimension("geography", policy.PartScore, policy.PartMult, reasons)
	case overlap > 0:
		reasons = append(reasons, "minor footprint overlap")
		return dimension("geography", policy.LowScore, policy.LowMult, reasons)
	default:
		reasons = append(reasons, "no footprint overlap")
		return dimension("geography", policy.NoneScore, policy.NoneMult, reasons)
	}
}
