package scoring

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/dealgrid/fitscore/internal/config"
	"github.com/dealgrid/fitscore/internal/store"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := config.ScoringConfig{
		DefaultWeights: config.WeightsConfig{Size: 25, Geography: 25, Service: 25, OwnerGoals: 25},
		Geography:      config.DefaultGeoPolicy(),
		Service:        config.DefaultServicePolicy(),
	}
	e, err := NewEngine(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func testInput() Input {
	return Input{
		Deal: &store.Deal{
			ID:               uuid.New(),
			Revenue:          fptr(10_000_000),
			LocationCount:    3,
			GeographicStates: []string{"TX", "OK"},
			Services:         []string{"HVAC"},
			OwnerGoalsText:   "owner wants to retire",
		},
		Buyer: &store.Buyer{
			ID:                uuid.New(),
			BuyerType:         store.BuyerTypePEFirm,
			TargetRevenueMin:  fptr(5_000_000),
			TargetRevenueMax:  fptr(15_000_000),
			TargetGeographies: []string{"TX", "OK", "LA"},
			TargetServices:    []string{"HVAC", "Plumbing"},
		},
		Universe: &store.Universe{
			ID:               uuid.New(),
			SizeWeight:       25,
			GeographyWeight:  25,
			ServiceWeight:    25,
			OwnerGoalsWeight: 25,
		},
	}
}

func TestEngineScoreComposite(t *testing.T) {
	e := testEngine(t)

	res, err := e.Score(testInput())
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	// Revenue 10M is the exact sweet spot of [5M, 15M]; full geography
	// containment; full service overlap; exit goals aligned with a PE buyer.
	// Composite = (95 + 95 + 95 + 85) * 1.0 * 25 / 100 = 92.5.
	if res.Composite != 92.5 {
		t.Fatalf("composite: got %.2f, want 92.50", res.Composite)
	}
	if res.Tier != TierA {
		t.Errorf("tier: got %s, want A", res.Tier)
	}
	if res.Disqualified {
		t.Error("unexpected disqualification")
	}
}

func TestEngineScoreDeterministic(t *testing.T) {
	e := testEngine(t)
	in := testInput()

	first, err := e.Score(in)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := e.Score(in)
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		if again.Composite != first.Composite || again.Tier != first.Tier || again.Reasoning != first.Reasoning {
			t.Fatalf("run %d diverged: %+v vs %+v", i, again, first)
		}
	}
}

func TestEngineScoreDisqualifyOverridesArithmetic(t *testing.T) {
	e := testEngine(t)
	in := testInput()
	in.Universe.Instructions = []store.CustomInstruction{
		{AdjustmentType: AdjustDisqualify, Reason: "conflict with portfolio company"},
	}

	res, err := e.Score(in)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !res.Disqualified {
		t.Fatal("expected disqualification")
	}
	if res.Composite != 0 {
		t.Errorf("composite: got %.2f, want 0", res.Composite)
	}
	if res.Tier != TierD {
		t.Errorf("tier: got %s, want D", res.Tier)
	}
}

func TestEngineScoreAppliesLearningAndBonus(t *testing.T) {
	e := testEngine(t)
	in := testInput()
	in.Pattern = &store.LearningPattern{
		TotalActions:   5,
		ApprovalRate:   0.5,
		PassCategories: map[store.PassCategory]int{store.PassSize: 2},
	}
	in.Universe.Instructions = []store.CustomInstruction{
		{AdjustmentType: AdjustBoost, AdjustmentValue: 4},
	}

	res, err := e.Score(in)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	// 92.5 base, -10 learning, +4 boost.
	if res.Composite != 86.5 {
		t.Fatalf("composite: got %.2f, want 86.50", res.Composite)
	}
	if res.LearningPenalty != 10 {
		t.Errorf("learning penalty: got %.0f, want 10", res.LearningPenalty)
	}
	if res.InstructionBonus != 4 {
		t.Errorf("instruction bonus: got %.0f, want 4", res.InstructionBonus)
	}
}

func TestEngineScoreAdjustmentMultipliers(t *testing.T) {
	e := testEngine(t)
	in := testInput()
	in.Adjustments = &store.DealAdjustments{
		SizeMultiplier:      0.8,
		ServiceMultiplier:   2.5, // clamped to 1.4
		GeographyMultiplier: 0,   // unset reads as 1.0
	}

	res, err := e.Score(in)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if math.Abs(res.Size.Weight-20) > 1e-9 {
		t.Errorf("size weight: got %.2f, want 20", res.Size.Weight)
	}
	if math.Abs(res.Service.Weight-35) > 1e-9 {
		t.Errorf("service weight: got %.2f, want 35 (clamped multiplier)", res.Service.Weight)
	}
	if res.Geography.Weight != 25 {
		t.Errorf("geography weight: got %.2f, want 25", res.Geography.Weight)
	}
	if res.OwnerGoals.Weight != 25 {
		t.Errorf("owner goals weight: got %.2f, want 25", res.OwnerGoals.Weight)
	}
}

func TestEngineScoreDefaultWeightsWhenUnset(t *testing.T) {
	e := testEngine(t)
	in := testInput()
	in.Universe.SizeWeight = 0
	in.Universe.GeographyWeight = 0
	in.Universe.ServiceWeight = 0
	in.Universe.OwnerGoalsWeight = 0

	res, err := e.Score(in)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if res.Size.Weight != 25 {
		t.Fatalf("size weight: got %.2f, want default 25", res.Size.Weight)
	}
}

func TestEngineScoreInputValidation(t *testing.T) {
	e := testEngine(t)

	if _, err := e.Score(Input{}); !errors.Is(err, ErrMissingInput) {
		t.Errorf("empty input: got %v, want ErrMissingInput", err)
	}

	in := testInput()
	in.Buyer.BuyerType = "hedge_fund"
	if _, err := e.Score(in); !errors.Is(err, ErrUnknownBuyerType) {
		t.Errorf("bad buyer type: got %v, want ErrUnknownBuyerType", err)
	}

	in = testInput()
	in.Universe.Behavior.GeographyMode = "galactic"
	if _, err := e.Score(in); err == nil {
		t.Error("bad geography mode: expected error")
	}
}

func TestEngineReasoningOrder(t *testing.T) {
	e := testEngine(t)

	res, err := e.Score(testInput())
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	want := "Size: "
	if res.Reasoning[:len(want)] != want {
		t.Fatalf("reasoning should open with the size narrative: %q", res.Reasoning)
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		composite    float64
		disqualified bool
		want         string
	}{
		{92, false, TierA},
		{85, false, TierA},
		{84.9, false, TierB},
		{70, false, TierB},
		{69.9, false, TierC},
		{55, false, TierC},
		{54.9, false, TierD},
		{0, false, TierD},
		{95, true, TierD},
	}
	for _, tt := range tests {
		if got := TierFor(tt.composite, tt.disqualified); got != tt.want {
			t.Errorf("TierFor(%.1f, %v) = %s, want %s", tt.composite, tt.disqualified, got, tt.want)
		}
	}
}

func TestResultToScore(t *testing.T) {
	e := testEngine(t)
	in := testInput()

	res, err := e.Score(in)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	s := res.ToScore(in.Universe.ID, in.Deal.ID, in.Buyer.ID)
	if s.CompositeScore != res.Composite || s.Tier != res.Tier {
		t.Fatalf("score record diverges from result: %+v", s)
	}
	if s.ScoringVersion != ScoringVersion {
		t.Errorf("scoring version: got %d, want %d", s.ScoringVersion, ScoringVersion)
	}
	if s.UniverseID != in.Universe.ID || s.DealID != in.Deal.ID || s.BuyerID != in.Buyer.ID {
		t.Error("score record identity fields not carried over")
	}
}
