package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/otcheredev/clinic-core/internal/models"
	"github.com/otcheredev/clinic-core/internal/services"
)

type QueueHandler struct {
	queue *services.QueueService
}

func NewQueueHandler(queue *services.QueueService) *QueueHandler {
	return &QueueHandler{queue: queue}
}

// ByStage returns the ordered waiting list for one stage
func (h *QueueHandler) ByStage(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	stage := models.VisitStage(chi.URLParam(r, "stage"))
	entries, err := h.queue.Queue(r.Context(), actor.ClinicID, stage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
