package scoring

import (
	"strings"

	"github.com/dealgrid/fitscore/internal/store"
)

const (
	CompletenessHigh   = "high"
	CompletenessMedium = "medium"
	CompletenessLow    = "low"
)

// Completeness describes how much of a buyer's profile is populated and how
// trustworthy its provenance is. It gates how much a consumer should trust
// the composite score; it does not feed the arithmetic.
type Completeness struct {
	Level              string   `json:"level"`
	MissingFields      []string `json:"missing_fields,omitempty"`
	ProvenanceWarnings []string `json:"provenance_warnings,omitempty"`
}

// AssessCompleteness runs the required-field presence checks and the
// transcript-backing provenance checks against a buyer profile.
func AssessCompleteness(buyer *store.Buyer) Completeness {
	var c Completeness

	thesis := strings.TrimSpace(buyer.ThesisSummary)
	hasRevenue := buyer.TargetRevenueMin != nil || buyer.TargetRevenueMax != nil
	hasEBITDA := buyer.TargetEBITDAMin != nil || buyer.TargetEBITDAMax != nil

	if len(thesis) < 20 {
		c.MissingFields = append(c.MissingFields, "investment thesis")
	}
	if len(buyer.TargetServices) == 0 {
		c.MissingFields = append(c.MissingFields, "target services")
	}
	if len(buyer.TargetGeographies) == 0 {
		c.MissingFields = append(c.MissingFields, "target geographies")
	}
	if !hasRevenue {
		c.MissingFields = append(c.MissingFields, "revenue range")
	}
	if !hasEBITDA {
		c.MissingFields = append(c.MissingFields, "EBITDA range")
	}
	if strings.TrimSpace(buyer.HQLocation) == "" {
		c.MissingFields = append(c.MissingFields, "headquarters location")
	}
	if buyer.BuyerType == "" {
		c.MissingFields = append(c.MissingFields, "buyer type")
	}

	// High-value fields present without a transcript source may originate
	// from generic research guides rather than a conversation with the
	// buyer; flag them as lower-trust.
	if !hasTranscriptSource(buyer.ExtractionSources) {
		if thesis != "" {
			c.ProvenanceWarnings = append(c.ProvenanceWarnings, "investment thesis not backed by a transcript source")
		}
		if hasRevenue {
			c.ProvenanceWarnings = append(c.ProvenanceWarnings, "revenue range not backed by a transcript source")
		}
		if hasEBITDA {
			c.ProvenanceWarnings = append(c.ProvenanceWarnings, "EBITDA range not backed by a transcript source")
		}
	}

	// The level ladder is deliberately boolean, not weighted.
	targets := len(buyer.TargetServices) > 0 && len(buyer.TargetGeographies) > 0
	financials := hasRevenue || hasEBITDA
	history := len(buyer.RecentAcquisitions) > 0 || len(buyer.PortfolioCompanies) > 0

	switch {
	case len(thesis) > 50 && targets && financials && history:
		c.Level = CompletenessHigh
	case thesis != "" || (targets && financials):
		c.Level = CompletenessMedium
	default:
		c.Level = CompletenessLow
	}

	return c
}

func hasTranscriptSource(sources []store.ExtractionSource) bool {
	for _, s := range sources {
		if s.Type == "transcript" {
			return true
		}
	}
	return false
}
