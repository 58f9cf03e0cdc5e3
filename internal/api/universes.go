package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dealgrid/fitscore/internal/scoring"
	"github.com/dealgrid/fitscore/internal/store"
)

type UniversesHandler struct {
	store  store.Store
	engine *scoring.Engine
}

func NewUniversesHandler(s store.Store, e *scoring.Engine) *UniversesHandler {
	return &UniversesHandler{store: s, engine: e}
}

type UniverseRequest struct {
	Name             string                    `json:"name"`
	SizeWeight       float64                   `json:"size_weight"`
	GeographyWeight  float64                   `json:"geography_weight"`
	ServiceWeight    float64                   `json:"service_weight"`
	OwnerGoalsWeight float64                   `json:"owner_goals_weight"`
	Behavior         store.ScoringBehavior     `json:"behavior"`
	Instructions     []store.CustomInstruction `json:"instructions,omitempty"`
}

func (h *UniversesHandler) validate(req *UniverseRequest) string {
	weights := scoring.Weights{
		Size:       req.SizeWeight,
		Geography:  req.GeographyWeight,
		Service:    req.ServiceWeight,
		OwnerGoals: req.OwnerGoalsWeight,
	}
	if err := weights.Validate(); err != nil {
		return err.Error()
	}
	if err := req.Behavior.Validate(); err != nil {
		return err.Error()
	}
	for i := range req.Instructions {
		if req.Instructions[i].ID == uuid.Nil {
			req.Instructions[i].ID = uuid.New()
		}
		if err := h.engine.ValidateInstruction(req.Instructions[i]); err != nil {
			return "instruction " + req.Instructions[i].ID.String() + ": " + err.Error()
		}
	}
	return ""
}

func (h *UniversesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req UniverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name required"})
		return
	}
	if msg := h.validate(&req); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	u := &store.Universe{
		Name:             req.Name,
		SizeWeight:       req.SizeWeight,
		GeographyWeight:  req.GeographyWeight,
		ServiceWeight:    req.ServiceWeight,
		OwnerGoalsWeight: req.OwnerGoalsWeight,
		Behavior:         req.Behavior,
		Instructions:     req.Instructions,
	}
	if err := h.store.CreateUniverse(r.Context(), u); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create universe"})
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *UniversesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid universe id"})
		return
	}
	u, err := h.store.GetUniverse(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load universe"})
		return
	}
	if u == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "universe not found"})
		return
	}

	var req UniverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if msg := h.validate(&req); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	if req.Name != "" {
		u.Name = req.Name
	}
	u.SizeWeight = req.SizeWeight
	u.GeographyWeight = req.GeographyWeight
	u.ServiceWeight = req.ServiceWeight
	u.OwnerGoalsWeight = req.OwnerGoalsWeight
	u.Behavior = req.Behavior
	u.Instructions = req.Instructions

	if err := h.store.UpdateUniverse(r.Context(), u); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update universe"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UniversesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid universe id"})
		return
	}
	u, err := h.store.GetUniverse(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load universe"})
		return
	}
	if u == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "universe not found"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UniversesHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListUniverses(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list universes"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"universes": list, "count": len(list)})
}
