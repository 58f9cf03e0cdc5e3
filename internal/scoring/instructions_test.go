package scoring

import (
	"strings"
	"testing"

	"github.com/dealgrid/fitscore/internal/store"
)

func newEvaluator(t *testing.T) *InstructionEvaluator {
	t.Helper()
	eval, err := NewInstructionEvaluator()
	if err != nil {
		t.Fatalf("NewInstructionEvaluator: %v", err)
	}
	return eval
}

func TestInstructionsUnconditionalBoost(t *testing.T) {
	eval := newEvaluator(t)
	ins := []store.CustomInstruction{
		{AdjustmentType: AdjustBoost, AdjustmentValue: 10, Reason: "priority buyer"},
	}

	res := eval.Apply(ins, &store.Deal{}, &store.Buyer{})
	if res.Bonus != 10 {
		t.Fatalf("bonus: got %.0f, want 10", res.Bonus)
	}
	if !strings.Contains(res.Reasoning, "priority buyer") {
		t.Errorf("reasoning should carry the reason: %q", res.Reasoning)
	}
}

func TestInstructionsConditionFilters(t *testing.T) {
	eval := newEvaluator(t)
	ins := []store.CustomInstruction{
		{AdjustmentType: AdjustPenalize, AdjustmentValue: 15, Condition: "revenue < 2000000.0"},
	}

	small := eval.Apply(ins, &store.Deal{Revenue: fptr(1_000_000)}, &store.Buyer{})
	if small.Bonus != -15 {
		t.Fatalf("small deal bonus: got %.0f, want -15", small.Bonus)
	}

	large := eval.Apply(ins, &store.Deal{Revenue: fptr(5_000_000)}, &store.Buyer{})
	if large.Bonus != 0 {
		t.Fatalf("large deal bonus: got %.0f, want 0", large.Bonus)
	}
}

func TestInstructionsDealAndBuyerAttributes(t *testing.T) {
	eval := newEvaluator(t)
	ins := []store.CustomInstruction{
		{AdjustmentType: AdjustBoost, AdjustmentValue: 5, Condition: `"TX" in states && buyer_type == "pe_firm"`},
		{AdjustmentType: AdjustBoost, AdjustmentValue: 7, Condition: `services.exists(s, s == "HVAC")`},
	}
	deal := &store.Deal{
		GeographicStates: []string{"TX", "OK"},
		Services:         []string{"HVAC"},
	}
	buyer := &store.Buyer{BuyerType: store.BuyerTypePEFirm}

	res := eval.Apply(ins, deal, buyer)
	if res.Bonus != 12 {
		t.Fatalf("bonus: got %.0f, want 12", res.Bonus)
	}
}

func TestInstructionsDisqualifyIsSticky(t *testing.T) {
	eval := newEvaluator(t)
	ins := []store.CustomInstruction{
		{AdjustmentType: AdjustDisqualify, Reason: "active portfolio conflict"},
		{AdjustmentType: AdjustBoost, AdjustmentValue: 50},
	}

	res := eval.Apply(ins, &store.Deal{}, &store.Buyer{})
	if !res.Disqualify {
		t.Fatal("expected disqualify")
	}
	if !strings.Contains(res.Reasoning, "DISQUALIFIED (active portfolio conflict)") {
		t.Errorf("reasoning: %q", res.Reasoning)
	}
	// A later boost still accumulates but cannot undo disqualification.
	if res.Bonus != 50 {
		t.Errorf("bonus: got %.0f, want 50", res.Bonus)
	}
}

func TestInstructionsDisqualifyDefaultReason(t *testing.T) {
	eval := newEvaluator(t)
	ins := []store.CustomInstruction{{AdjustmentType: AdjustDisqualify}}

	res := eval.Apply(ins, &store.Deal{}, &store.Buyer{})
	if !strings.Contains(res.Reasoning, "DISQUALIFIED (admin disqualification)") {
		t.Fatalf("reasoning: %q", res.Reasoning)
	}
}

func TestInstructionsSkipMalformed(t *testing.T) {
	eval := newEvaluator(t)
	ins := []store.CustomInstruction{
		{AdjustmentType: "multiply", AdjustmentValue: 2},
		{AdjustmentType: AdjustBoost, AdjustmentValue: 5, Condition: "revenue >"},
		{AdjustmentType: AdjustBoost, AdjustmentValue: 5, Condition: "revenue + 1.0"},
		{AdjustmentType: AdjustBoost, AdjustmentValue: 3},
	}

	res := eval.Apply(ins, &store.Deal{}, &store.Buyer{})
	if len(res.Skipped) != 3 {
		t.Fatalf("skipped: got %d (%v), want 3", len(res.Skipped), res.Skipped)
	}
	if res.Bonus != 3 {
		t.Fatalf("bonus: got %.0f, want 3 from the one valid rule", res.Bonus)
	}
}

func TestInstructionValidate(t *testing.T) {
	eval := newEvaluator(t)

	tests := []struct {
		name    string
		ins     store.CustomInstruction
		wantErr bool
	}{
		{"valid boost", store.CustomInstruction{AdjustmentType: AdjustBoost, Condition: "revenue > 1000000.0"}, false},
		{"valid empty condition", store.CustomInstruction{AdjustmentType: AdjustDisqualify}, false},
		{"unknown type", store.CustomInstruction{AdjustmentType: "halve"}, true},
		{"syntax error", store.CustomInstruction{AdjustmentType: AdjustBoost, Condition: "revenue >"}, true},
		{"non-boolean", store.CustomInstruction{AdjustmentType: AdjustBoost, Condition: "revenue + 1.0"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := eval.Validate(tt.ins)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
