package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/models"
	"github.com/otcheredev/clinic-core/internal/services"
)

type InventoryHandler struct {
	inventory *services.InventoryService
}

func NewInventoryHandler(inventory *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// Create adds a new stock item
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req models.InventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	item, err := h.inventory.CreateItem(r.Context(), actor, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// List retrieves the clinic's inventory
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	items, err := h.inventory.List(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// LowStock retrieves items at or below their reorder threshold
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	items, err := h.inventory.LowStock(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *InventoryHandler) movement(w http.ResponseWriter, r *http.Request, dispense bool) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	var req models.StockMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var item *models.InventoryItem
	if dispense {
		item, err = h.inventory.Dispense(r.Context(), actor, id, req.Quantity)
	} else {
		item, err = h.inventory.Restock(r.Context(), actor, id, req.Quantity)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Dispense deducts stock for a pharmacy handout
func (h *InventoryHandler) Dispense(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, true)
}

// Restock adds stock for a received delivery
func (h *InventoryHandler) Restock(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, false)
}

// History retrieves an item's movement log
func (h *InventoryHandler) History(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.inventory.History(r.Context(), actor, id, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
