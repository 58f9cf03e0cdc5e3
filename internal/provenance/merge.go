// Package provenance ranks buyer profile data by where it was extracted
// from. Transcript-sourced attributes outrank research-guide attributes,
// which outrank inferred ones; an enrichment update may only overwrite a
// field with data of equal or higher rank.
package provenance

import "github.com/dealgrid/fitscore/internal/store"

const (
	PriorityTranscript = 3
	PriorityGuide      = 2
	PriorityInferred   = 1
)

// PriorityFor maps an extraction source type to its rank. Unknown types
// rank below inferred so they can never displace anything.
func PriorityFor(sourceType string) int {
	switch sourceType {
	case "transcript":
		return PriorityTranscript
	case "guide":
		return PriorityGuide
	case "inferred":
		return PriorityInferred
	default:
		return 0
	}
}

// highestPriority returns the best rank among a buyer's recorded sources.
func highestPriority(sources []store.ExtractionSource) int {
	best := 0
	for _, s := range sources {
		if p := PriorityFor(s.Type); p > best {
			best = p
		}
	}
	return best
}

// Merge applies an enrichment update onto an existing buyer profile,
// honoring source priority: updated fields land only when the update's
// best source ranks at least as high as the existing profile's. It returns
// the names of fields the update carried but priority dropped.
//
// Identity fields (ID, UniverseID, timestamps) are never touched.
func Merge(existing *store.Buyer, update *store.Buyer) []string {
	existingRank := highestPriority(existing.ExtractionSources)
	updateRank := highestPriority(update.ExtractionSources)

	if updateRank >= existingRank {
		applyAll(existing, update)
		existing.ExtractionSources = append(existing.ExtractionSources, update.ExtractionSources...)
		return nil
	}

	var dropped []string
	if update.ThesisSummary != "" {
		dropped = append(dropped, "thesis_summary")
	}
	if update.TargetRevenueMin != nil || update.TargetRevenueMax != nil {
		dropped = append(dropped, "revenue range")
	}
	if update.TargetEBITDAMin != nil || update.TargetEBITDAMax != nil {
		dropped = append(dropped, "EBITDA range")
	}
	if len(update.TargetGeographies) > 0 {
		dropped = append(dropped, "target_geographies")
	}
	if len(update.TargetServices) > 0 {
		dropped = append(dropped, "target_services")
	}
	if len(update.PreferredServices) > 0 {
		dropped = append(dropped, "preferred_services")
	}
	if update.BuyerType != "" {
		dropped = append(dropped, "buyer_type")
	}
	if update.HQLocation != "" {
		dropped = append(dropped, "hq_location")
	}

	// Additive history fields carry no conflict risk; take them regardless.
	existing.RecentAcquisitions = appendNew(existing.RecentAcquisitions, update.RecentAcquisitions)
	existing.PortfolioCompanies = appendNew(existing.PortfolioCompanies, update.PortfolioCompanies)
	existing.ExtractionSources = append(existing.ExtractionSources, update.ExtractionSources...)

	return dropped
}

func applyAll(existing, update *store.Buyer) {
	if update.ThesisSummary != "" {
		existing.ThesisSummary = update.ThesisSummary
	}
	if update.TargetRevenueMin != nil {
		existing.TargetRevenueMin = update.TargetRevenueMin
	}
	if update.TargetRevenueMax != nil {
		existing.TargetRevenueMax = update.TargetRevenueMax
	}
	if update.TargetEBITDAMin != nil {
		existing.TargetEBITDAMin = update.TargetEBITDAMin
	}
	if update.TargetEBITDAMax != nil {
		existing.TargetEBITDAMax = update.TargetEBITDAMax
	}
	if len(update.TargetGeographies) > 0 {
		existing.TargetGeographies = update.TargetGeographies
	}
	if len(update.TargetServices) > 0 {
		existing.TargetServices = update.TargetServices
	}
	if len(update.PreferredServices) > 0 {
		existing.PreferredServices = update.PreferredServices
	}
	if update.BuyerType != "" {
		existing.BuyerType = update.BuyerType
	}
	if update.HQLocation != "" {
		existing.HQLocation = update.HQLocation
	}
	existing.RecentAcquisitions = appendNew(existing.RecentAcquisitions, update.RecentAcquisitions)
	existing.PortfolioCompanies = appendNew(existing.PortfolioCompanies, update.PortfolioCompanies)
}

func appendNew(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[v] = true
	}
	for _, v := range incoming {
		if !seen[v] {
			existing = append(existing, v)
			seen[v] = true
		}
	}
	return existing
}
