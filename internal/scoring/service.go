package scoring

import (
	"fmt"

	"github.com/dealgrid/fitscore/internal/config"
	"github.com/dealgrid/fitscore/internal/store"
)

// ScoreService rates the overlap between the deal's service lines and the
// buyer's required and preferred service lists. Preferred-only matches are
// capped below the required-list ceiling.
func ScoreService(deal *store.Deal, buyer *store.Buyer, policy config.ServicePolicy) DimensionResult {
	var reasons []string

	if len(buyer.TargetServices) == 0 && len(buyer.PreferredServices) == 0 {
		reasons = append(reasons, "buyer lists no target services, scoring neutral")
		return dimension("service", 60, 1.0, reasons)
	}
	if len(deal.Services) == 0 {
		reasons = append(reasons, "deal services unknown against a targeted buyer")
		return dimension("service", 55, 0.9, reasons)
	}

	reqMatched := overlapCount(deal.Services, buyer.TargetServices)
	prefMatched := overlapCount(deal.Services, buyer.PreferredServices)

	if len(buyer.TargetServices) == 0 {
		// Preferred-only buyer.
		if prefMatched > 0 {
			reasons = append(reasons, fmt.Sprintf("%d preferred service match(es), no required list", prefMatched))
			return dimension("service", policy.PreferredCeiling, policy.PreferredMult, reasons)
		}
		reasons = append(reasons, "no service overlap with buyer preferences")
		return dimension("service", policy.NoneScore, policy.NoneMult, reasons)
	}

	overlap := float64(reqMatched) / float64(len(deal.Services))
	reasons = append(reasons, fmt.Sprintf("%d of %d deal services on buyer required list", reqMatched, len(deal.Services)))

	switch {
	case overlap == 1:
		reasons = append(reasons, "all deal services targeted")
		return dimension("service", policy.FullScore, policy.FullMult, reasons)
	case overlap >= policy.HighThreshold:
		reasons = append(reasons, "strong service overlap")
		return dimension("service", policy.HighScore, policy.HighMult, reasons)
	case overlap >= policy.PartThreshold:
		reasons = append(reasons, "partial service overlap")
		return dimension("service", policy.PartScore, policy.PartMult, reasons)
	case overlap > 0:
		reasons = append(reasons, "minor service overlap")
		return dimension("service", policy.LowScore, policy.LowMult, reasons)
	case prefMatched > 0:
		reasons = append(reasons, fmt.Sprintf("preferred-only match (%d service(s))", prefMatched))
		return dimension("service", policy.PreferredCeiling, policy.PreferredMult, reasons)
	default:
		reasons = append(reasons, "no service overlap")
		return dimension("service", policy.NoneScore, policy.NoneMult, reasons)
	}
}
