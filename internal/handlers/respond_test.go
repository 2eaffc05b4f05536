package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/otcheredev/clinic-core/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestWriteErrorCarriesStableCode(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/visits", nil)

	writeError(rec, req, apperrors.StaleWrite("visit"))

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp errorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.CodeStaleWrite, resp.Code)
	assert.NotEmpty(t, resp.Message)
}

func TestWriteErrorHidesUntypedCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)

	writeError(rec, req, errors.New("pq: relation does not exist"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp errorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.CodeDatabaseError, resp.Code)
	assert.NotContains(t, rec.Body.String(), "pq: relation")
}

func TestWriteErrorUnwrapsNestedError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/visits", nil)

	wrapped := fmt.Errorf("service call: %w", apperrors.AuthorizationDenied("visits.manage"))
	writeError(rec, req, wrapped)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var resp errorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.CodeAuthorizationDenied, resp.Code)
}
