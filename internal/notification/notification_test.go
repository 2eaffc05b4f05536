package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	subject, body, ok := Render("appointment-reminder", map[string]string{
		"patient_name": "Ama Mensah",
		"date":         "2026-09-01",
		"time":         "09:30",
	})

	assert.True(t, ok)
	assert.Equal(t, "Appointment Reminder", subject)
	assert.Contains(t, body, "Ama Mensah")
	assert.Contains(t, body, "2026-09-01")
	assert.Contains(t, body, "09:30")
	assert.NotContains(t, body, "{{")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, ok := Render("no-such-template", nil)
	assert.False(t, ok)
}

func TestRenderLeavesUnmatchedPlaceholders(t *testing.T) {
	_, body, ok := Render("payment-receipt", map[string]string{"patient_name": "Kofi"})
	assert.True(t, ok)
	// amount was not supplied; the placeholder stays visible rather than
	// rendering an empty blank
	assert.Contains(t, body, "{{amount}}")
}
