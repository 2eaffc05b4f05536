package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/models"
	"github.com/otcheredev/clinic-core/internal/services"
)

type VisitHandler struct {
	visits *services.VisitService
}

func NewVisitHandler(visits *services.VisitService) *VisitHandler {
	return &VisitHandler{visits: visits}
}

// CheckIn opens a new visit for a patient
func (h *VisitHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req models.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PatientID == uuid.Nil {
		http.Error(w, "patient_id is required", http.StatusBadRequest)
		return
	}

	visit, err := h.visits.CheckIn(r.Context(), actor, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, visit)
}

// Get retrieves a visit with its lab orders and prescription
func (h *VisitHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid visit ID", http.StatusBadRequest)
		return
	}

	visit, err := h.visits.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, visit)
}

// Transition moves a visit to the requested stage
func (h *VisitHandler) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid visit ID", http.StatusBadRequest)
		return
	}

	var req models.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	visit, err := h.visits.Transition(r.Context(), actor, id, req.TargetStage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, visit)
}

// Complete moves a visit into the terminal Clearance stage
func (h *VisitHandler) Complete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid visit ID", http.StatusBadRequest)
		return
	}

	visit, err := h.visits.Complete(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, visit)
}

// RecordVitals stores a vitals snapshot on the visit
func (h *VisitHandler) RecordVitals(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid visit ID", http.StatusBadRequest)
		return
	}

	var vitals models.Vitals
	if err := json.NewDecoder(r.Body).Decode(&vitals); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	visit, err := h.visits.RecordVitals(r.Context(), actor, id, vitals)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, visit)
}

type consultationRequest struct {
	Diagnosis       string  `json:"diagnosis"`
	DoctorNotes     string  `json:"doctor_notes"`
	ConsultationFee float64 `json:"consultation_fee"`
}

// RecordConsultation stores the doctor's diagnosis, notes and fee
func (h *VisitHandler) RecordConsultation(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid visit ID", http.StatusBadRequest)
		return
	}

	var req consultationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	visit, err := h.visits.RecordConsultation(r.Context(), actor, id, req.Diagnosis, req.DoctorNotes, req.ConsultationFee)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, visit)
}

type labOrderRequest struct {
	TestName string  `json:"test_name"`
	Price    float64 `json:"price"`
}

// OrderLab attaches a lab order to a visit
func (h *VisitHandler) OrderLab(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid visit ID", http.StatusBadRequest)
		return
	}

	var req labOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	order, err := h.visits.OrderLab(r.Context(), actor, id, req.TestName, req.Price)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// Prescribe attaches a priced prescription item to a visit
func (h *VisitHandler) Prescribe(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid visit ID", http.StatusBadRequest)
		return
	}

	var item models.PrescriptionItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.visits.Prescribe(r.Context(), actor, id, item)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
