package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dealgrid/fitscore/internal/provenance"
	"github.com/dealgrid/fitscore/internal/store"
)

type BuyersHandler struct {
	store store.Store
}

func NewBuyersHandler(s store.Store) *BuyersHandler {
	return &BuyersHandler{store: s}
}

func (h *BuyersHandler) Create(w http.ResponseWriter, r *http.Request) {
	universeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid universe id"})
		return
	}
	var b store.Buyer
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if b.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name required"})
		return
	}
	if !b.BuyerType.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown buyer_type"})
		return
	}
	b.ID = uuid.Nil
	b.UniverseID = universeID

	if err := h.store.CreateBuyer(r.Context(), &b); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create buyer"})
		return
	}
	writeJSON(w, http.StatusCreated, &b)
}

// Update applies an enrichment payload onto an existing buyer through the
// provenance merge, so lower-trust sources never displace transcript data.
func (h *BuyersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid buyer id"})
		return
	}
	existing, err := h.store.GetBuyer(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load buyer"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "buyer not found"})
		return
	}

	var update store.Buyer
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !update.BuyerType.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown buyer_type"})
		return
	}

	dropped := provenance.Merge(existing, &update)
	if err := h.store.UpdateBuyer(r.Context(), existing); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update buyer"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"buyer":          existing,
		"dropped_fields": dropped,
	})
}

func (h *BuyersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid buyer id"})
		return
	}
	b, err := h.store.GetBuyer(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load buyer"})
		return
	}
	if b == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "buyer not found"})
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BuyersHandler) List(w http.ResponseWriter, r *http.Request) {
	universeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid universe id"})
		return
	}
	list, err := h.store.ListBuyers(r.Context(), universeID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list buyers"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"buyers": list, "count": len(list)})
}
