package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dealgrid/fitscore/internal/recalc"
	"github.com/dealgrid/fitscore/internal/store"
)

type AdjustmentsHandler struct {
	store  store.Store
	recalc *recalc.Recalculator
}

func NewAdjustmentsHandler(s store.Store, rc *recalc.Recalculator) *AdjustmentsHandler {
	return &AdjustmentsHandler{store: s, recalc: rc}
}

func (h *AdjustmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	dealID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid deal id"})
		return
	}
	adj, err := h.store.GetDealAdjustments(r.Context(), dealID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load adjustments"})
		return
	}
	if adj == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no adjustments for deal"})
		return
	}
	writeJSON(w, http.StatusOK, adj)
}

// Recalc triggers an immediate recalculation for one deal, outside the
// periodic schedule.
func (h *AdjustmentsHandler) Recalc(w http.ResponseWriter, r *http.Request) {
	dealID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid deal id"})
		return
	}
	adj, err := h.recalc.RecalcDealNow(r.Context(), dealID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "recalculation failed"})
		return
	}
	if adj == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "skipped", "reason": "insufficient decision history"})
		return
	}
	writeJSON(w, http.StatusOK, adj)
}
