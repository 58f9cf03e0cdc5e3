package scoring

import (
	"fmt"
	"math"

	"github.com/dealgrid/fitscore/internal/store"
)

// wideRangeRatio is the max/min ratio above which a buyer's revenue band is
// considered wide enough that missing deal financials carry no penalty.
const wideRangeRatio = 3.0

// sweetSpotTolerances returns the deviation bands around the midpoint of the
// buyer's range for the near-perfect and strong tiers. The asymmetry between
// below-floor and above-ceiling handling lives in fitBelowMin/fitAboveMax,
// not here.
func sweetSpotTolerances(strictness store.SizeStrictness) (near, strong float64) {
	switch strictness {
	case store.SizeStrict:
		return 0.05, 0.10
	case store.SizeFlexible:
		return 0.15, 0.30
	default: // moderate
		return 0.10, 0.20
	}
}

// ScoreSize rates how well a deal's financial size fits the buyer's target
// range. Missing data on either side degrades to a neutral score rather than
// a penalty: unenriched deals should not be buried.
func ScoreSize(deal *store.Deal, buyer *store.Buyer, behavior store.ScoringBehavior) DimensionResult {
	var reasons []string

	score, mult := sizeFit(deal, buyer, behavior, &reasons)

	if behavior.PenalizeSingleLocation && deal.LocationCount == 1 {
		mult *= 0.85
		reasons = append(reasons, "single-location penalty applied")
	}

	return dimension("size", score, mult, reasons)
}

func sizeFit(deal *store.Deal, buyer *store.Buyer, behavior store.ScoringBehavior, reasons *[]string) (float64, float64) {
	noCriteria := buyer.TargetRevenueMin == nil && buyer.TargetRevenueMax == nil &&
		buyer.TargetEBITDAMin == nil && buyer.TargetEBITDAMax == nil

	if deal.Revenue == nil && deal.EBITDA == nil {
		return missingFinancialsFit(buyer, noCriteria, reasons)
	}

	switch {
	case deal.Revenue != nil && (buyer.TargetRevenueMin != nil || buyer.TargetRevenueMax != nil):
		return rangeFit(*deal.Revenue, buyer.TargetRevenueMin, buyer.TargetRevenueMax, "revenue", behavior, reasons)
	case deal.EBITDA != nil && (buyer.TargetEBITDAMin != nil || buyer.TargetEBITDAMax != nil):
		return rangeFit(*deal.EBITDA, buyer.TargetEBITDAMin, buyer.TargetEBITDAMax, "EBITDA", behavior, reasons)
	default:
		*reasons = append(*reasons, "no comparable size criteria between deal and buyer, scoring neutral")
		return 60, 1.0
	}
}

// missingFinancialsFit handles deals with no revenue and no EBITDA. A buyer
// with no size criteria, or a wide one, does not care; only a narrow band
// produces mild uncertainty.
func missingFinancialsFit(buyer *store.Buyer, noCriteria bool, reasons *[]string) (float64, float64) {
	if noCriteria {
		*reasons = append(*reasons, "no deal financials and no buyer size criteria, scoring neutral")
		return 60, 1.0
	}

	if buyer.TargetRevenueMin != nil && buyer.TargetRevenueMax != nil && *buyer.TargetRevenueMin > 0 {
		if *buyer.TargetRevenueMax / *buyer.TargetRevenueMin >= wideRangeRatio {
			*reasons = append(*reasons, "no deal financials; buyer revenue range is wide, scoring neutral")
			return 60, 1.0
		}
		*reasons = append(*reasons, "no deal financials against a narrow buyer revenue range")
		return 55, 0.9
	}

	*reasons = append(*reasons, "no deal financials; buyer size criteria are open-ended, scoring neutral")
	return 60, 1.0
}

func rangeFit(value float64, min, max *float64, label string, behavior store.ScoringBehavior, reasons *[]string) (float64, float64) {
	if min != nil && max != nil && *min > 0 {
		sweet := (*min + *max) / 2
		near, strong := sweetSpotTolerances(behavior.SizeStrictness)
		deviation := math.Abs(value-sweet) / sweet
		if deviation <= near {
			*reasons = append(*reasons, fmt.Sprintf("%s within %.0f%% of buyer sweet spot", label, near*100))
			return 95, 1.0
		}
		if deviation <= strong {
			*reasons = append(*reasons, fmt.Sprintf("%s within %.0f%% of buyer sweet spot", label, strong*100))
			return 88, 0.95
		}
		if value >= *min && value <= *max {
			*reasons = append(*reasons, label+" inside buyer target range")
			return 85, 1.0
		}
		if value < *min {
			return fitBelowMin(value, *min, label, behavior, reasons)
		}
		return fitAboveMax(value, *max, label, reasons)
	}

	if min != nil && *min > 0 {
		if value >= *min {
			*reasons = append(*reasons, label+" above buyer minimum (no ceiling set)")
			return 80, 1.0
		}
		return fitBelowMin(value, *min, label, behavior, reasons)
	}

	if max != nil && *max > 0 {
		if value <= *max {
			*reasons = append(*reasons, label+" below buyer maximum (no floor set)")
			return 80, 1.0
		}
		return fitAboveMax(value, *max, label, reasons)
	}

	*reasons = append(*reasons, "buyer "+label+" criteria unusable, scoring neutral")
	return 60, 1.0
}

// fitBelowMin penalizes undersized deals gently near the floor and harshly
// far below it, with the heavy band resolved by policy.
func fitBelowMin(value, min float64, label string, behavior store.ScoringBehavior, reasons *[]string) (float64, float64) {
	ratio := value / min
	switch {
	case ratio >= 0.9:
		*reasons = append(*reasons, label+" slightly below buyer minimum")
		return 70, 0.7
	case ratio >= 0.7:
		*reasons = append(*reasons, label+" moderately below buyer minimum")
		return 50, 0.5
	}

	// Heavy shortfall: below_minimum_handling takes precedence over any
	// global default.
	switch behavior.BelowMinimumHandling {
	case store.BelowMinDisqualify:
		*reasons = append(*reasons, label+" far below buyer minimum (policy: disqualify)")
		return 10, 0.3
	case store.BelowMinAllow:
		*reasons = append(*reasons, label+" far below buyer minimum (policy: allow)")
		return 40, 0.5
	default:
		*reasons = append(*reasons, label+" far below buyer minimum")
		return 25, 0.3
	}
}

// fitAboveMax tolerates oversized deals up to 50% over the ceiling before a
// hard rejection. Oversized is a softer mismatch than undersized.
func fitAboveMax(value, max float64, label string, reasons *[]string) (float64, float64) {
	if value/max >= 1.5 {
		*reasons = append(*reasons, label+" far above buyer maximum, hard disqualify")
		return 0, 0.0
	}
	*reasons = append(*reasons, label+" above buyer maximum but within tolerance")
	return 60, 0.7
}
