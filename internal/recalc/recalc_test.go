package recalc

import (
	"math"
	"testing"

	"github.com/dealgrid/fitscore/internal/scoring"
	"github.com/dealgrid/fitscore/internal/store"
)

func decision(action store.DecisionAction, cat store.PassCategory, size, geo, svc, goals float64) *store.Decision {
	return &store.Decision{
		Action:          action,
		PassCategory:    cat,
		SizeScore:       size,
		GeographyScore:  geo,
		ServiceScore:    svc,
		OwnerGoalsScore: goals,
	}
}

func TestProposeWeightsPromotesDiscriminatingDimension(t *testing.T) {
	// Size splits approved (90) from passed (60); the other dimensions read
	// the same on both sides.
	decisions := []*store.Decision{
		decision(store.ActionApproved, "", 90, 80, 80, 80),
		decision(store.ActionApproved, "", 90, 80, 80, 80),
		decision(store.ActionPassed, store.PassOther, 60, 80, 80, 80),
		decision(store.ActionPassed, store.PassOther, 60, 80, 80, 80),
	}
	current := scoring.DefaultWeights()

	got := ProposeWeights(decisions, current)
	if got.Size != 35 {
		t.Errorf("size: got %.0f, want 35 (promoted)", got.Size)
	}
	// Flat dimensions above 20 get demoted.
	if got.Geography != 20 || got.Service != 20 || got.OwnerGoals != 20 {
		t.Errorf("flat dimensions: got %+v, want 20 each", got)
	}
}

func TestProposeWeightsCaps(t *testing.T) {
	decisions := []*store.Decision{
		decision(store.ActionApproved, "", 95, 50, 50, 50),
		decision(store.ActionPassed, store.PassSize, 40, 50, 50, 50),
	}
	current := scoring.Weights{Size: 45, Geography: 20, Service: 20, OwnerGoals: 15}

	got := ProposeWeights(decisions, current)
	if got.Size != 50 {
		t.Errorf("size: got %.0f, want 50 (capped)", got.Size)
	}
	// At exactly 20 a flat dimension is left alone; the demotion needs > 20.
	if got.Geography != 20 {
		t.Errorf("geography: got %.0f, want 20", got.Geography)
	}
	if got.OwnerGoals != 15 {
		t.Errorf("owner goals: got %.0f, want 15", got.OwnerGoals)
	}
}

func TestProposeWeightsFloor(t *testing.T) {
	decisions := []*store.Decision{
		decision(store.ActionApproved, "", 70, 70, 70, 70),
		decision(store.ActionPassed, store.PassOther, 70, 70, 70, 70),
	}
	current := scoring.Weights{Size: 21, Geography: 25, Service: 25, OwnerGoals: 29}

	got := ProposeWeights(decisions, current)
	// 21 - 5 would cross the floor.
	if got.Size != 16 {
		t.Errorf("size: got %.0f, want 16", got.Size)
	}
	if got.OwnerGoals != 24 {
		t.Errorf("owner goals: got %.0f, want 24", got.OwnerGoals)
	}
}

func TestProposeWeightsNeedsBothGroups(t *testing.T) {
	current := scoring.DefaultWeights()

	onlyApproved := []*store.Decision{
		decision(store.ActionApproved, "", 90, 20, 20, 20),
		decision(store.ActionApproved, "", 90, 20, 20, 20),
	}
	if got := ProposeWeights(onlyApproved, current); got != current {
		t.Errorf("approved-only history should not move weights: %+v", got)
	}

	if got := ProposeWeights(nil, current); got != current {
		t.Errorf("empty history should not move weights: %+v", got)
	}
}

func TestProposeWeightsIdempotent(t *testing.T) {
	decisions := []*store.Decision{
		decision(store.ActionApproved, "", 90, 80, 80, 80),
		decision(store.ActionPassed, store.PassOther, 60, 80, 80, 80),
	}
	current := scoring.DefaultWeights()

	first := ProposeWeights(decisions, current)
	second := ProposeWeights(decisions, current)
	if first != second {
		t.Fatalf("same history, same base weights, different proposals: %+v vs %+v", first, second)
	}
}

func TestProposeMultipliers(t *testing.T) {
	// 10 decisions, 4 size passes (40%), 1 geography pass (10%).
	var decisions []*store.Decision
	for i := 0; i < 5; i++ {
		decisions = append(decisions, decision(store.ActionApproved, "", 80, 80, 80, 80))
	}
	for i := 0; i < 4; i++ {
		decisions = append(decisions, decision(store.ActionPassed, store.PassSize, 50, 80, 80, 80))
	}
	decisions = append(decisions, decision(store.ActionPassed, store.PassGeography, 80, 50, 80, 80))

	m := ProposeMultipliers(decisions)

	// size: 1.0 + (0.40 - 0.15) * 2 = 1.5 -> clamped to 1.4
	if m.Size != 1.4 {
		t.Errorf("size: got %.2f, want 1.40", m.Size)
	}
	// geography: 1.0 + (0.10 - 0.15) * 2 = 0.9
	if math.Abs(m.Geography-0.9) > 1e-9 {
		t.Errorf("geography: got %.2f, want 0.90", m.Geography)
	}
	// no service passes: neutral
	if m.Service != 1.0 {
		t.Errorf("service: got %.2f, want 1.00", m.Service)
	}
	if m.OwnerGoals != 1.0 {
		t.Errorf("owner goals: got %.2f, want 1.00", m.OwnerGoals)
	}
}

func TestProposeMultipliersEmptyHistory(t *testing.T) {
	m := ProposeMultipliers(nil)
	if m.Size != 1.0 || m.Geography != 1.0 || m.Service != 1.0 || m.OwnerGoals != 1.0 {
		t.Fatalf("got %+v, want all neutral", m)
	}
}
