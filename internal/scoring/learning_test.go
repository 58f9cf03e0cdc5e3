package scoring

import (
	"strings"
	"testing"

	"github.com/dealgrid/fitscore/internal/store"
)

func TestLearningPenaltyInsufficientHistory(t *testing.T) {
	if got := LearningPenalty(nil); got.Penalty != 0 || got.Note != "" {
		t.Fatalf("nil pattern: got %+v, want zero", got)
	}

	p := &store.LearningPattern{
		TotalActions:   2,
		ApprovalRate:   0,
		PassCategories: map[store.PassCategory]int{store.PassSize: 2},
	}
	if got := LearningPenalty(p); got.Penalty != 0 || got.Note != "" {
		t.Fatalf("two actions: got %+v, want zero", got)
	}
}

func TestLearningPenaltyStacksAndClamps(t *testing.T) {
	// 10 + 8 + 8 + 3 = 29, clamped to the +25 ceiling.
	p := &store.LearningPattern{
		TotalActions: 8,
		ApprovalRate: 0.5,
		PassCategories: map[store.PassCategory]int{
			store.PassSize:              2,
			store.PassGeography:         2,
			store.PassServices:          2,
			store.PassPortfolioConflict: 1,
		},
	}
	got := LearningPenalty(p)
	if got.Penalty != 25 {
		t.Fatalf("penalty: got %.0f, want 25", got.Penalty)
	}
	if !strings.Contains(got.Note, "size") {
		t.Errorf("note should name the size pattern: %q", got.Note)
	}
}

func TestLearningPenaltyCategories(t *testing.T) {
	tests := []struct {
		name    string
		cats    map[store.PassCategory]int
		rate    float64
		penalty float64
	}{
		{"size pattern", map[store.PassCategory]int{store.PassSize: 2}, 0.5, 10},
		{"geography pattern", map[store.PassCategory]int{store.PassGeography: 3}, 0.5, 8},
		{"timing below threshold", map[store.PassCategory]int{store.PassTiming: 2}, 0.5, 0},
		{"timing pattern", map[store.PassCategory]int{store.PassTiming: 3}, 0.5, 5},
		{"single portfolio conflict", map[store.PassCategory]int{store.PassPortfolioConflict: 1}, 0.5, 3},
		{"other passes carry nothing", map[store.PassCategory]int{store.PassOther: 5}, 0.5, 0},
		{"high approval rate floor", nil, 0.9, -5},
		{"low approval rate", nil, 0.2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &store.LearningPattern{
				TotalActions:   5,
				ApprovalRate:   tt.rate,
				PassCategories: tt.cats,
			}
			if got := LearningPenalty(p); got.Penalty != tt.penalty {
				t.Errorf("got %.0f, want %.0f", got.Penalty, tt.penalty)
			}
		})
	}
}

func TestLearningPenaltyBoostNeverBelowFloor(t *testing.T) {
	// High approval is the only negative contribution, so -5 is the floor.
	p := &store.LearningPattern{TotalActions: 10, ApprovalRate: 1.0}
	if got := LearningPenalty(p); got.Penalty != -5 {
		t.Fatalf("got %.0f, want -5", got.Penalty)
	}
}
