package scoring

import (
	"strings"
	"testing"

	"github.com/dealgrid/fitscore/internal/store"
)

func TestScoreOwnerGoalsAlignment(t *testing.T) {
	tests := []struct {
		name      string
		goals     string
		buyerType store.BuyerType
		score     float64
		mult      float64
	}{
		{"exit goals, PE buyer", "owner wants to retire within a year", store.BuyerTypePEFirm, 85, 1.0},
		{"exit goals, search fund", "looking for a full sale and exit", store.BuyerTypeSearchFund, 85, 1.0},
		{"exit goals, strategic buyer", "owner wants to retire", store.BuyerTypeStrategic, 55, 0.85},
		{"exit goals, unknown buyer type", "owner wants to retire", "", 65, 0.95},
		{"continuity goals, family office", "wants to stay on and roll equity", store.BuyerTypeFamilyOffice, 85, 1.0},
		{"continuity goals, PE buyer", "owner wants to stay involved", store.BuyerTypePEFirm, 55, 0.85},
		{"mixed signals", "open to a full sale but would stay on for a transition", store.BuyerTypePEFirm, 70, 0.95},
		{"no recognizable signals", "owner is evaluating options", store.BuyerTypePEFirm, 65, 0.95},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deal := &store.Deal{OwnerGoalsText: tt.goals}
			buyer := &store.Buyer{BuyerType: tt.buyerType}

			got := ScoreOwnerGoals(deal, buyer)
			if got.Score != tt.score || got.Multiplier != tt.mult {
				t.Errorf("got (%.0f, %.2f), want (%.0f, %.2f)", got.Score, got.Multiplier, tt.score, tt.mult)
			}
		})
	}
}

func TestScoreOwnerGoalsAbsentText(t *testing.T) {
	got := ScoreOwnerGoals(&store.Deal{}, &store.Buyer{BuyerType: store.BuyerTypePEFirm})
	if got.Score != 60 || got.Multiplier != 1.0 {
		t.Fatalf("got (%.0f, %.2f), want (60, 1.00)", got.Score, got.Multiplier)
	}
}

func TestScoreOwnerGoalsThesisEcho(t *testing.T) {
	deal := &store.Deal{OwnerGoalsText: "owner plans to retire after closing"}
	buyer := &store.Buyer{
		BuyerType:     store.BuyerTypePEFirm,
		ThesisSummary: "We buy from owners ready to retire and install operators.",
	}

	got := ScoreOwnerGoals(deal, buyer)
	if got.Score != 90 {
		t.Fatalf("got %.0f, want 90 (85 aligned + 5 echo)", got.Score)
	}
	if !strings.Contains(got.Reasoning, "thesis") {
		t.Errorf("reasoning should mention the thesis echo: %q", got.Reasoning)
	}
}
