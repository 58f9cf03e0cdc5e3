package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dealgrid/fitscore/internal/events"
	"github.com/dealgrid/fitscore/internal/store"
)

type DecisionsHandler struct {
	store  store.Store
	events events.Client
}

func NewDecisionsHandler(s store.Store, ev events.Client) *DecisionsHandler {
	return &DecisionsHandler{store: s, events: ev}
}

type DecisionRequest struct {
	Action       store.DecisionAction `json:"action"`
	PassCategory store.PassCategory   `json:"pass_category,omitempty"`
	DecidedBy    string               `json:"decided_by,omitempty"`
}

// Create records an approve/pass decision against a score, freezing the
// dimension scores as they stood. Decisions are append-only.
func (h *DecisionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	scoreID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid score id"})
		return
	}

	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Action != store.ActionApproved && req.Action != store.ActionPassed {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "action must be approved or passed"})
		return
	}
	if !req.PassCategory.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown pass_category"})
		return
	}
	if req.Action == store.ActionApproved && req.PassCategory != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pass_category only applies to passed decisions"})
		return
	}

	score, err := h.store.GetScore(r.Context(), scoreID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load score"})
		return
	}
	if score == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "score not found"})
		return
	}

	d := &store.Decision{
		ScoreID:    score.ID,
		UniverseID: score.UniverseID,
		DealID:     score.DealID,
		BuyerID:    score.BuyerID,

		Action:       req.Action,
		PassCategory: req.PassCategory,
		DecidedBy:    req.DecidedBy,

		SizeScore:       score.SizeScore,
		GeographyScore:  score.GeographyScore,
		ServiceScore:    score.ServiceScore,
		OwnerGoalsScore: score.OwnerGoalsScore,
		CompositeScore:  score.CompositeScore,
	}
	if err := h.store.CreateDecision(r.Context(), d); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to record decision"})
		return
	}

	decisionsRecorded.WithLabelValues(string(d.Action)).Inc()

	if h.events != nil {
		_ = h.events.Publish(events.SubjectDecisionRecorded(d.ID.String()), events.DecisionRecordedEvent{
			DecisionID:   d.ID.String(),
			ScoreID:      score.ID.String(),
			DealID:       score.DealID.String(),
			BuyerID:      score.BuyerID.String(),
			Action:       string(d.Action),
			PassCategory: string(d.PassCategory),
		})
	}

	writeJSON(w, http.StatusCreated, d)
}
