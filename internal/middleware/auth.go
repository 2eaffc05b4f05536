package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/otcheredev/clinic-core/internal/models"
	"github.com/rs/zerolog/log"
)

const ActorKey contextKey = "actor"

// Auth middleware validates the Bearer token and puts the authenticated
// actor into the request context. The actor's clinic must match the
// X-Clinic-ID header set by the clinic middleware; a token from another
// tenant is rejected, not silently re-scoped.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "Authorization header is required", http.StatusUnauthorized)
				return
			}
			tokenStr := strings.TrimPrefix(header, "Bearer ")

			claims := &models.JWTClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("Invalid token")
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			if clinicID, ok := GetClinicID(r.Context()); ok && clinicID != claims.ClinicID {
				log.Warn().
					Str("token_clinic", claims.ClinicID.String()).
					Str("header_clinic", clinicID.String()).
					Msg("Token clinic does not match request clinic")
				http.Error(w, "Token not valid for this clinic", http.StatusForbidden)
				return
			}

			actor := models.Actor{
				UserID:   claims.UserID,
				ClinicID: claims.ClinicID,
				Role:     claims.Role,
			}
			ctx := context.WithValue(r.Context(), ActorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetActor extracts the authenticated actor from context
func GetActor(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(models.Actor)
	return actor, ok
}
