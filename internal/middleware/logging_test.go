package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLoggingLabelsDurationByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Logging)
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	before := testutil.CollectAndCount(metrics.RequestDuration)

	// Two requests with distinct path parameters must share one series
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/items/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	after := testutil.CollectAndCount(metrics.RequestDuration)
	assert.Equal(t, before+1, after)
}
