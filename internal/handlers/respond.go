package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/otcheredev/clinic-core/internal/apperrors"
	"github.com/otcheredev/clinic-core/internal/middleware"
	"github.com/otcheredev/clinic-core/internal/models"
	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes a success payload
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps a service error to its HTTP status and stable code. The
// underlying cause stays in the log; the response carries only the typed
// message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	code := apperrors.CodeOf(err)

	var appErr *apperrors.Error
	message := "internal error"
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	}

	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// requireActor pulls the authenticated actor from context, failing the
// request when the auth middleware did not run
func requireActor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return models.Actor{}, false
	}
	return actor, true
}
