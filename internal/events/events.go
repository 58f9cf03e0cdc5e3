package events

import "time"

type ScoreComputedEvent struct {
	ScoreID      string  `json:"score_id"`
	UniverseID   string  `json:"universe_id"`
	DealID       string  `json:"deal_id"`
	BuyerID      string  `json:"buyer_id"`
	Composite    float64 `json:"composite"`
	Tier         string  `json:"tier"`
	Disqualified bool    `json:"disqualified"`
	Completeness string  `json:"completeness"`
}

type DecisionRecordedEvent struct {
	DecisionID   string `json:"decision_id"`
	ScoreID      string `json:"score_id"`
	DealID       string `json:"deal_id"`
	BuyerID      string `json:"buyer_id"`
	Action       string `json:"action"`
	PassCategory string `json:"pass_category,omitempty"`
}

type AdjustmentsRecalculatedEvent struct {
	DealID    string    `json:"deal_id"`
	Version   int       `json:"version"`
	Decisions int       `json:"decisions"`
	Timestamp time.Time `json:"timestamp"`
}
