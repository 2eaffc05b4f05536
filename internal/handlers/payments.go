package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/metrics"
	"github.com/otcheredev/clinic-core/internal/models"
	"github.com/otcheredev/clinic-core/internal/services"
	"github.com/otcheredev/clinic-core/internal/webhook"
	"github.com/rs/zerolog/log"
)

// maxWebhookBody bounds how much of a webhook request is read
const maxWebhookBody = 1 << 20

type PaymentHandler struct {
	payments      *services.PaymentService
	webhookSecret string
}

func NewPaymentHandler(payments *services.PaymentService, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{
		payments:      payments,
		webhookSecret: webhookSecret,
	}
}

// Initiate opens a pending transaction for a visit's bill
func (h *PaymentHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req models.InitiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.VisitID == uuid.Nil {
		http.Error(w, "visit_id is required", http.StatusBadRequest)
		return
	}

	txn, err := h.payments.Initiate(r.Context(), actor, req.VisitID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

type subscribeRequest struct {
	Plan models.PlanTier `json:"plan"`
}

// Subscribe opens a pending transaction for a plan upgrade
func (h *PaymentHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	txn, err := h.payments.InitiateSubscription(r.Context(), actor, req.Plan)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

// Transactions lists the clinic's payment transactions
func (h *PaymentHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	txns, err := h.payments.Transactions(r.Context(), actor, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

// Webhook receives payment-provider callbacks. The raw body is verified
// against the shared-secret signature before any parsing; an unverifiable
// delivery is rejected without being read further. Acknowledged outcomes
// return 200 even for anomalies like an unknown reference, because a
// provider retry cannot fix those.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	if err := webhook.Verify(h.webhookSecret, body, r.Header.Get(webhook.SignatureHeader)); err != nil {
		metrics.WebhookResults.WithLabelValues("signature_rejected").Inc()
		log.Warn().Err(err).Msg("Webhook signature rejected")
		http.Error(w, "Invalid signature", http.StatusForbidden)
		return
	}

	var payload models.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	outcome, err := h.payments.Reconcile(r.Context(), &payload)
	switch outcome {
	case services.OutcomeRejected:
		// Malformed delivery; retrying the same payload cannot succeed
		writeError(w, r, err)
	case services.OutcomeError:
		// Transient failure; the provider should retry this delivery
		log.Error().Err(err).Str("reference", payload.Reference).Msg("Webhook reconciliation failed")
		http.Error(w, "Reconciliation failed", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"outcome": string(outcome)})
	}
}
