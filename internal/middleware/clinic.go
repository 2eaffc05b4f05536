package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type contextKey string

const ClinicIDKey contextKey = "clinic_id"

// ClinicID middleware extracts the clinic (tenant) ID from the header
func ClinicID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clinicIDStr := r.Header.Get("X-Clinic-ID")
		if clinicIDStr == "" {
			log.Warn().Msg("Missing X-Clinic-ID header")
			http.Error(w, "X-Clinic-ID header is required", http.StatusBadRequest)
			return
		}

		clinicID, err := uuid.Parse(clinicIDStr)
		if err != nil {
			log.Warn().Err(err).Str("clinic_id", clinicIDStr).Msg("Invalid clinic ID")
			http.Error(w, "Invalid X-Clinic-ID format", http.StatusBadRequest)
			return
		}

		ctx := context.WithValue(r.Context(), ClinicIDKey, clinicID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClinicID extracts the clinic ID from context
func GetClinicID(ctx context.Context) (uuid.UUID, bool) {
	clinicID, ok := ctx.Value(ClinicIDKey).(uuid.UUID)
	return clinicID, ok
}
