package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/models"
	"github.com/otcheredev/clinic-core/internal/services"
)

type TeamHandler struct {
	team *services.TeamService
}

func NewTeamHandler(team *services.TeamService) *TeamHandler {
	return &TeamHandler{team: team}
}

// Invite creates a staff account in the invited state
func (h *TeamHandler) Invite(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req models.InviteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.team.Invite(r.Context(), actor, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// List retrieves the clinic's staff roster
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	users, err := h.team.List(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// ChangeRole reassigns a staff member's role
func (h *TeamHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req models.ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.team.ChangeRole(r.Context(), actor, id, req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *TeamHandler) setStatus(w http.ResponseWriter, r *http.Request, apply func(models.Actor, uuid.UUID) error) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := apply(actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Suspend puts a staff account on hold
func (h *TeamHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, func(actor models.Actor, id uuid.UUID) error {
		return h.team.Suspend(r.Context(), actor, id)
	})
}

// Deactivate retires a staff account
func (h *TeamHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, func(actor models.Actor, id uuid.UUID) error {
		return h.team.Deactivate(r.Context(), actor, id)
	})
}

// Activate returns an account to active service
func (h *TeamHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, func(actor models.Actor, id uuid.UUID) error {
		return h.team.Activate(r.Context(), actor, id)
	})
}

// Clinic retrieves the acting user's clinic profile
func (h *TeamHandler) Clinic(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	clinic, err := h.team.Clinic(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clinic)
}
