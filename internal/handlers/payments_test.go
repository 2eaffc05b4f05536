package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/otcheredev/clinic-core/internal/services"
	"github.com/otcheredev/clinic-core/internal/webhook"
	"github.com/stretchr/testify/assert"
)

const webhookTestSecret = "webhook-test-secret"

func TestWebhookRejectsMissingSignature(t *testing.T) {
	h := NewPaymentHandler(nil, webhookTestSecret)

	body := []byte(`{"reference":"txn_1","status":"success","amount":100}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWebhookRejectsTamperedBody(t *testing.T) {
	h := NewPaymentHandler(nil, webhookTestSecret)

	signed := []byte(`{"reference":"txn_1","status":"success","amount":100}`)
	tampered := []byte(`{"reference":"txn_1","status":"success","amount":999}`)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader(tampered))
	req.Header.Set(webhook.SignatureHeader, webhook.Sign(webhookTestSecret, signed))
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWebhookRejectsWrongSecret(t *testing.T) {
	h := NewPaymentHandler(nil, webhookTestSecret)

	body := []byte(`{"reference":"txn_1","status":"success","amount":100}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader(body))
	req.Header.Set(webhook.SignatureHeader, webhook.Sign("other-secret", body))
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWebhookRejectsMissingReference(t *testing.T) {
	// The reference check runs before any store access, so a bare service
	// is enough here
	h := NewPaymentHandler(services.NewPaymentService(nil, nil, nil, nil, nil), webhookTestSecret)

	// Correctly signed and well-formed, but with nothing to reconcile
	// against; a provider retry of this payload cannot succeed
	body := []byte(`{"reference":"","status":"success","amount":100}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader(body))
	req.Header.Set(webhook.SignatureHeader, webhook.Sign(webhookTestSecret, body))
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	h := NewPaymentHandler(nil, webhookTestSecret)

	// Correctly signed but not JSON; the signature check passes and the
	// parse fails
	body := []byte(`not-json`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader(body))
	req.Header.Set(webhook.SignatureHeader, webhook.Sign(webhookTestSecret, body))
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
