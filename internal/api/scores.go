package api

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dealgrid/fitscore/internal/events"
	"github.com/dealgrid/fitscore/internal/scoring"
	"github.com/dealgrid/fitscore/internal/store"
)

type ScoresHandler struct {
	store       store.Store
	events      events.Client
	engine      *scoring.Engine
	concurrency int
	logger      *slog.Logger
}

func NewScoresHandler(s store.Store, ev events.Client, e *scoring.Engine, concurrency int, logger *slog.Logger) *ScoresHandler {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &ScoresHandler{store: s, events: ev, engine: e, concurrency: concurrency, logger: logger}
}

// ScoreDeal scores every buyer in the universe against one deal, ranked by
// composite descending. Buyers that fail to score are reported, not fatal.
func (h *ScoresHandler) ScoreDeal(w http.ResponseWriter, r *http.Request) {
	universe, deal, ok := h.loadPairContext(w, r)
	if !ok {
		return
	}

	buyers, err := h.store.ListBuyers(r.Context(), universe.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list buyers"})
		return
	}
	if len(buyers) == 0 {
		writeJSON(w, http.StatusOK, map[string]interface{}{"scores": []*store.Score{}, "count": 0})
		return
	}

	adj, err := h.store.GetDealAdjustments(r.Context(), deal.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load adjustments"})
		return
	}

	type outcome struct {
		score *store.Score
		buyer uuid.UUID
		err   error
	}
	results := make([]outcome, len(buyers))

	sem := make(chan struct{}, h.concurrency)
	var wg sync.WaitGroup
	for i, b := range buyers {
		wg.Add(1)
		go func(i int, b *store.Buyer) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			s, err := h.scoreOne(r.Context(), universe, deal, b, adj)
			results[i] = outcome{score: s, buyer: b.ID, err: err}
		}(i, b)
	}
	wg.Wait()

	var scores []*store.Score
	var failures []map[string]string
	for _, o := range results {
		if o.err != nil {
			h.logger.Warn("failed to score buyer", "buyer_id", o.buyer, "deal_id", deal.ID, "error", o.err)
			failures = append(failures, map[string]string{"buyer_id": o.buyer.String(), "error": o.err.Error()})
			continue
		}
		scores = append(scores, o.score)
	}

	sort.Slice(scores, func(i, j int) bool {
		return scores[i].CompositeScore > scores[j].CompositeScore
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scores":   scores,
		"count":    len(scores),
		"failures": failures,
	})
}

// ScorePair scores a single deal×buyer pair.
func (h *ScoresHandler) ScorePair(w http.ResponseWriter, r *http.Request) {
	universe, deal, ok := h.loadPairContext(w, r)
	if !ok {
		return
	}
	buyerID, err := uuid.Parse(chi.URLParam(r, "buyer_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid buyer id"})
		return
	}
	buyer, err := h.store.GetBuyer(r.Context(), buyerID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load buyer"})
		return
	}
	if buyer == nil || buyer.UniverseID != universe.ID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "buyer not found in universe"})
		return
	}

	adj, err := h.store.GetDealAdjustments(r.Context(), deal.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load adjustments"})
		return
	}

	score, err := h.scoreOne(r.Context(), universe, deal, buyer, adj)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, score)
}

func (h *ScoresHandler) loadPairContext(w http.ResponseWriter, r *http.Request) (*store.Universe, *store.Deal, bool) {
	universeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid universe id"})
		return nil, nil, false
	}
	dealID, err := uuid.Parse(chi.URLParam(r, "deal_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid deal id"})
		return nil, nil, false
	}

	universe, err := h.store.GetUniverse(r.Context(), universeID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load universe"})
		return nil, nil, false
	}
	if universe == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "universe not found"})
		return nil, nil, false
	}

	deal, err := h.store.GetDeal(r.Context(), dealID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load deal"})
		return nil, nil, false
	}
	if deal == nil || deal.UniverseID != universe.ID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "deal not found in universe"})
		return nil, nil, false
	}
	return universe, deal, true
}

func (h *ScoresHandler) scoreOne(ctx context.Context, universe *store.Universe, deal *store.Deal, buyer *store.Buyer, adj *store.DealAdjustments) (*store.Score, error) {
	pattern, err := h.store.GetLearningPattern(ctx, universe.ID, buyer.ID)
	if err != nil {
		return nil, err
	}

	result, err := h.engine.Score(scoring.Input{
		Deal:        deal,
		Buyer:       buyer,
		Universe:    universe,
		Pattern:     pattern,
		Adjustments: adj,
	})
	if err != nil {
		return nil, err
	}

	score := result.ToScore(universe.ID, deal.ID, buyer.ID)
	if err := h.store.CreateScore(ctx, score); err != nil {
		return nil, err
	}

	scoresComputed.WithLabelValues(score.Tier).Inc()
	compositeObserved.Observe(score.CompositeScore)
	if score.Disqualified {
		scoresDisqualified.Inc()
	}

	if h.events != nil {
		_ = h.events.Publish(events.SubjectScoreComputed(score.ID.String()), events.ScoreComputedEvent{
			ScoreID:      score.ID.String(),
			UniverseID:   universe.ID.String(),
			DealID:       deal.ID.String(),
			BuyerID:      buyer.ID.String(),
			Composite:    score.CompositeScore,
			Tier:         score.Tier,
			Disqualified: score.Disqualified,
			Completeness: score.CompletenessLevel,
		})
	}
	return score, nil
}

func (h *ScoresHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid score id"})
		return
	}
	s, err := h.store.GetScore(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load score"})
		return
	}
	if s == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "score not found"})
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *ScoresHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter store.ScoreFilter

	if v := r.URL.Query().Get("deal_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid deal_id"})
			return
		}
		filter.DealID = &id
	}
	if v := r.URL.Query().Get("buyer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid buyer_id"})
			return
		}
		filter.BuyerID = &id
	}
	filter.Tier = r.URL.Query().Get("tier")
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	list, err := h.store.ListScores(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list scores"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"scores": list, "count": len(list)})
}

// Explain returns the persisted per-dimension breakdown for a score in a
// shape meant for human review.
func (h *ScoresHandler) Explain(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "score_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid score id"})
		return
	}
	s, err := h.store.GetScore(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load score"})
		return
	}
	if s == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "score not found"})
		return
	}

	dim := func(score, mult float64, reasoning string) map[string]interface{} {
		return map[string]interface{}{
			"score":      score,
			"multiplier": mult,
			"reasoning":  reasoning,
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"score_id":        s.ID.String(),
		"composite_score": s.CompositeScore,
		"tier":            s.Tier,
		"disqualified":    s.Disqualified,
		"scoring_version": s.ScoringVersion,
		"dimensions": map[string]interface{}{
			"size":        dim(s.SizeScore, s.SizeMultiplier, s.SizeReasoning),
			"geography":   dim(s.GeographyScore, s.GeographyMultiplier, s.GeographyReasoning),
			"service":     dim(s.ServiceScore, s.ServiceMultiplier, s.ServiceReasoning),
			"owner_goals": dim(s.OwnerGoalsScore, s.OwnerGoalsMultiplier, s.OwnerGoalsReasoning),
		},
		"learning_penalty":         s.LearningPenalty,
		"custom_instruction_bonus": s.CustomInstructionBonus,
		"completeness": map[string]interface{}{
			"level":               s.CompletenessLevel,
			"missing_fields":      s.MissingFields,
			"provenance_warnings": s.ProvenanceWarnings,
		},
		"reasoning": s.Reasoning,
	})
}
