package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"authorization denied", AuthorizationDenied("visits.manage"), http.StatusForbidden},
		{"invalid transition", InvalidTransition("check_in", "billing"), http.StatusBadRequest},
		{"stale write", StaleWrite("visit"), http.StatusConflict},
		{"not found", NotFound("patient"), http.StatusNotFound},
		{"validation", Validation("name is required"), http.StatusBadRequest},
		{"reconciliation conflict", ReconciliationConflict("txn_1", "amount mismatch"), http.StatusUnprocessableEntity},
		{"database", Database(errors.New("connection refused")), http.StatusInternalServerError},
		{"untyped", errors.New("something broke"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestCodeOfWrappedError(t *testing.T) {
	inner := StaleWrite("visit")
	wrapped := fmt.Errorf("transition failed: %w", inner)

	assert.Equal(t, CodeStaleWrite, CodeOf(wrapped))
	assert.True(t, Is(wrapped, CodeStaleWrite))
	assert.False(t, Is(wrapped, CodeValidationError))
}

func TestCodeOfUntypedDefaultsToDatabase(t *testing.T) {
	assert.Equal(t, CodeDatabaseError, CodeOf(errors.New("boom")))
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Database(cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "DATABASE_ERROR")
}
