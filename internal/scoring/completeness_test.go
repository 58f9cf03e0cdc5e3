package scoring

import (
	"testing"

	"github.com/dealgrid/fitscore/internal/store"
)

func fullBuyer() *store.Buyer {
	return &store.Buyer{
		Name:               "Summit Partners",
		BuyerType:          store.BuyerTypePEFirm,
		ThesisSummary:      "Roll up regional home-services operators across the Southeast US.",
		TargetRevenueMin:   fptr(5_000_000),
		TargetRevenueMax:   fptr(20_000_000),
		TargetEBITDAMin:    fptr(1_000_000),
		TargetGeographies:  []string{"GA", "FL"},
		TargetServices:     []string{"HVAC"},
		HQLocation:         "Atlanta, GA",
		RecentAcquisitions: []string{"Peach State Plumbing"},
		ExtractionSources: []store.ExtractionSource{
			{Type: "transcript", URL: "https://example.com/call-1"},
		},
	}
}

func TestAssessCompletenessHigh(t *testing.T) {
	c := AssessCompleteness(fullBuyer())
	if c.Level != CompletenessHigh {
		t.Fatalf("level: got %s, want %s", c.Level, CompletenessHigh)
	}
	if len(c.MissingFields) != 0 {
		t.Errorf("unexpected missing fields: %v", c.MissingFields)
	}
	if len(c.ProvenanceWarnings) != 0 {
		t.Errorf("unexpected provenance warnings: %v", c.ProvenanceWarnings)
	}
}

func TestAssessCompletenessEmptyProfile(t *testing.T) {
	c := AssessCompleteness(&store.Buyer{Name: "Mystery Holdco"})
	if c.Level != CompletenessLow {
		t.Fatalf("level: got %s, want %s", c.Level, CompletenessLow)
	}
	if len(c.MissingFields) != 7 {
		t.Errorf("missing fields: got %d (%v), want 7", len(c.MissingFields), c.MissingFields)
	}
	// Nothing present means nothing to warn about.
	if len(c.ProvenanceWarnings) != 0 {
		t.Errorf("unexpected provenance warnings: %v", c.ProvenanceWarnings)
	}
}

func TestAssessCompletenessMedium(t *testing.T) {
	b := &store.Buyer{
		ThesisSummary: "Acquires owner-operated service businesses.",
		ExtractionSources: []store.ExtractionSource{
			{Type: "transcript"},
		},
	}
	c := AssessCompleteness(b)
	if c.Level != CompletenessMedium {
		t.Fatalf("level: got %s, want %s", c.Level, CompletenessMedium)
	}

	// Targets plus financials without a thesis also reaches medium.
	b = &store.Buyer{
		TargetServices:    []string{"HVAC"},
		TargetGeographies: []string{"TX"},
		TargetRevenueMin:  fptr(1_000_000),
	}
	c = AssessCompleteness(b)
	if c.Level != CompletenessMedium {
		t.Fatalf("targets+financials level: got %s, want %s", c.Level, CompletenessMedium)
	}
}

func TestAssessCompletenessProvenanceWarnings(t *testing.T) {
	b := fullBuyer()
	b.ExtractionSources = []store.ExtractionSource{{Type: "guide"}}

	c := AssessCompleteness(b)
	if len(c.ProvenanceWarnings) != 3 {
		t.Fatalf("warnings: got %d (%v), want 3", len(c.ProvenanceWarnings), c.ProvenanceWarnings)
	}
	// Level is about presence, not provenance.
	if c.Level != CompletenessHigh {
		t.Errorf("level: got %s, want %s", c.Level, CompletenessHigh)
	}
}

func TestAssessCompletenessShortThesisIsMissing(t *testing.T) {
	b := fullBuyer()
	b.ThesisSummary = "Buys stuff."

	c := AssessCompleteness(b)
	found := false
	for _, f := range c.MissingFields {
		if f == "investment thesis" {
			found = true
		}
	}
	if !found {
		t.Fatalf("short thesis should be reported missing: %v", c.MissingFields)
	}
	if c.Level == CompletenessHigh {
		t.Error("short thesis should not reach high completeness")
	}
}
