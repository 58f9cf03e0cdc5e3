package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dealgrid/fitscore/internal/store"
)

type DealsHandler struct {
	store store.Store
}

func NewDealsHandler(s store.Store) *DealsHandler {
	return &DealsHandler{store: s}
}

type DealRequest struct {
	Name             string   `json:"name"`
	Revenue          *float64 `json:"revenue,omitempty"`
	EBITDA           *float64 `json:"ebitda,omitempty"`
	LocationCount    int      `json:"location_count,omitempty"`
	GeographicStates []string `json:"geographic_states,omitempty"`
	Services         []string `json:"services,omitempty"`
	OwnerGoalsText   string   `json:"owner_goals_text,omitempty"`
}

func (h *DealsHandler) Create(w http.ResponseWriter, r *http.Request) {
	universeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid universe id"})
		return
	}
	var req DealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name required"})
		return
	}

	d := &store.Deal{
		UniverseID:       universeID,
		Name:             req.Name,
		Revenue:          req.Revenue,
		EBITDA:           req.EBITDA,
		LocationCount:    req.LocationCount,
		GeographicStates: req.GeographicStates,
		Services:         req.Services,
		OwnerGoalsText:   req.OwnerGoalsText,
	}
	if d.LocationCount == 0 {
		d.LocationCount = 1
	}
	if err := h.store.CreateDeal(r.Context(), d); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create deal"})
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *DealsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid deal id"})
		return
	}
	d, err := h.store.GetDeal(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load deal"})
		return
	}
	if d == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "deal not found"})
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DealsHandler) List(w http.ResponseWriter, r *http.Request) {
	universeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid universe id"})
		return
	}
	list, err := h.store.ListDeals(r.Context(), universeID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list deals"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deals": list, "count": len(list)})
}
