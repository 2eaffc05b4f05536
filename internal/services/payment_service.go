package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/apperrors"
	"github.com/otcheredev/clinic-core/internal/cache"
	"github.com/otcheredev/clinic-core/internal/metrics"
	"github.com/otcheredev/clinic-core/internal/models"
	"github.com/otcheredev/clinic-core/internal/notification"
	"github.com/otcheredev/clinic-core/internal/rbac"
	"github.com/otcheredev/clinic-core/internal/visitflow"
	"github.com/rs/zerolog/log"
)

// ReconcileOutcome labels how a webhook delivery was handled. Every
// outcome except OutcomeError is acknowledged to the provider; retrying an
// unrecoverable mismatch forever helps no one.
type ReconcileOutcome string

const (
	OutcomeProcessed        ReconcileOutcome = "processed"
	OutcomeDuplicate        ReconcileOutcome = "duplicate"
	OutcomeUnknownReference ReconcileOutcome = "unknown_reference"
	OutcomeAmountMismatch   ReconcileOutcome = "amount_mismatch"
	OutcomeIgnored          ReconcileOutcome = "ignored"
	OutcomeRejected         ReconcileOutcome = "rejected"
	OutcomeError            ReconcileOutcome = "error"
)

// webhookSeenTTL bounds the duplicate fast-path marker
const webhookSeenTTL = 24 * time.Hour

// planPrices is the monthly price per paid tier
var planPrices = map[models.PlanTier]float64{
	models.PlanStandard:   99.00,
	models.PlanEnterprise: 499.00,
}

// transactionStore is the slice of TransactionRepository the payment
// service needs
type transactionStore interface {
	Create(ctx context.Context, txn *models.Transaction) error
	GetByReference(ctx context.Context, reference string) (*models.Transaction, error)
	MarkStatusFrom(ctx context.Context, reference string, from, to models.TransactionStatus) (bool, error)
	ReconcileVisitSuccess(ctx context.Context, reference string, clinicID, visitID uuid.UUID, confirmedTotal float64, nextStage models.VisitStage, now time.Time) (bool, error)
	ReconcileSubscriptionSuccess(ctx context.Context, reference string, clinicID uuid.UUID, plan models.PlanTier) (bool, error)
	ListByClinic(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]models.Transaction, error)
}

// visitStore is the slice of VisitRepository the payment service needs
type visitStore interface {
	GetByID(ctx context.Context, clinicID, id uuid.UUID) (*models.Visit, error)
	UpdateClinical(ctx context.Context, visit *models.Visit) error
}

// patientStore is the slice of PatientRepository the payment service needs
type patientStore interface {
	GetByID(ctx context.Context, clinicID, id uuid.UUID) (*models.Patient, error)
}

// PaymentService initiates payments and reconciles provider webhooks into
// transaction, visit and clinic state exactly once per reference.
type PaymentService struct {
	txnRepo     transactionStore
	visitRepo   visitStore
	patientRepo patientStore
	cache       cache.Cache
	notifier    *notification.Notifier
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	txnRepo transactionStore,
	visitRepo visitStore,
	patientRepo patientStore,
	c cache.Cache,
	notifier *notification.Notifier,
) *PaymentService {
	return &PaymentService{
		txnRepo:     txnRepo,
		visitRepo:   visitRepo,
		patientRepo: patientRepo,
		cache:       c,
		notifier:    notifier,
	}
}

// Initiate opens a pending transaction for a visit's bill. The visit must
// already be in Billing; the bill is recomputed from the visit's parts at
// this point, not read from the persisted total.
func (s *PaymentService) Initiate(ctx context.Context, actor models.Actor, visitID uuid.UUID) (*models.Transaction, error) {
	if err := authorize(actor, rbac.CapBillingManage); err != nil {
		return nil, err
	}

	visit, err := s.visitRepo.GetByID(ctx, actor.ClinicID, visitID)
	if err != nil {
		return nil, apperrors.NotFound("visit")
	}
	if visit.Stage != models.StageBilling {
		return nil, apperrors.InvalidTransition(string(visit.Stage), string(models.StageBilling))
	}
	if visit.PaymentStatus == models.PaymentPaid {
		return nil, apperrors.Validation("visit is already paid")
	}

	amount := visitflow.ComputeTotal(visit)
	txn := &models.Transaction{
		ClinicID:  actor.ClinicID,
		Reference: fmt.Sprintf("txn_%s", uuid.NewString()),
		Amount:    amount,
		Status:    models.TransactionPending,
		Metadata: map[string]string{
			"kind":     models.TransactionKindVisit,
			"visit_id": visit.ID.String(),
		},
	}
	if err := s.txnRepo.Create(ctx, txn); err != nil {
		return nil, apperrors.Database(err)
	}

	// Keep the reference on the visit so staff can trace the pending
	// payment from the patient card
	if visit.Metadata == nil {
		visit.Metadata = map[string]string{}
	}
	visit.Metadata["payment_reference"] = txn.Reference
	visit.TotalBill = amount
	if err := s.visitRepo.UpdateClinical(ctx, visit); err != nil {
		log.Error().Err(err).Str("reference", txn.Reference).Msg("Failed to store payment reference on visit")
	}

	return txn, nil
}

// InitiateSubscription opens a pending transaction for a plan upgrade.
// The clinic is upgraded only when the provider confirms via webhook.
func (s *PaymentService) InitiateSubscription(ctx context.Context, actor models.Actor, plan models.PlanTier) (*models.Transaction, error) {
	if err := authorize(actor, rbac.CapTeamManage); err != nil {
		return nil, err
	}

	price, ok := planPrices[plan]
	if !ok {
		return nil, apperrors.Validation("unknown or free plan: " + string(plan))
	}

	txn := &models.Transaction{
		ClinicID:  actor.ClinicID,
		Reference: fmt.Sprintf("txn_%s", uuid.NewString()),
		Amount:    price,
		Status:    models.TransactionPending,
		Metadata: map[string]string{
			"kind": models.TransactionKindSubscription,
			"plan": string(plan),
		},
	}
	if err := s.txnRepo.Create(ctx, txn); err != nil {
		return nil, apperrors.Database(err)
	}
	return txn, nil
}

// Reconcile applies a provider webhook at most once. The reference is the
// idempotency key: terminal transactions are never rewritten, an unknown
// reference is a reportable anomaly, and an amount mismatch parks the
// transaction for manual review instead of looping provider retries.
// Signature verification has already happened at the HTTP boundary.
func (s *PaymentService) Reconcile(ctx context.Context, payload *models.WebhookPayload) (ReconcileOutcome, error) {
	// A payload without a reference cannot be reconciled or deduplicated;
	// it is a malformed delivery, not an ignorable one
	if payload.Reference == "" {
		metrics.WebhookResults.WithLabelValues(string(OutcomeRejected)).Inc()
		return OutcomeRejected, apperrors.Validation("webhook payload missing reference")
	}

	// Fast path for provider retries of an already-applied reference; the
	// transaction's terminal state below stays authoritative
	seenKey := cache.WebhookSeenKey(payload.Reference)
	if seen, err := s.cache.Exists(ctx, seenKey); err == nil && seen {
		metrics.WebhookResults.WithLabelValues(string(OutcomeDuplicate)).Inc()
		return OutcomeDuplicate, nil
	}

	txn, err := s.txnRepo.GetByReference(ctx, payload.Reference)
	if err != nil {
		metrics.WebhookResults.WithLabelValues(string(OutcomeError)).Inc()
		return OutcomeError, apperrors.Database(err)
	}
	if txn == nil {
		metrics.WebhookResults.WithLabelValues(string(OutcomeUnknownReference)).Inc()
		log.Warn().
			Str("reference", payload.Reference).
			Str("status", payload.Status).
			Msg("Webhook for unknown transaction reference")
		return OutcomeUnknownReference, nil
	}
	if txn.IsTerminal() || txn.Status == models.TransactionAmountMismatch {
		metrics.WebhookResults.WithLabelValues(string(OutcomeDuplicate)).Inc()
		return OutcomeDuplicate, nil
	}

	switch payload.Status {
	case "success":
		return s.reconcileSuccess(ctx, txn, payload)
	case "failed":
		applied, err := s.txnRepo.MarkStatusFrom(ctx, txn.Reference, models.TransactionPending, models.TransactionFailed)
		if err != nil {
			metrics.WebhookResults.WithLabelValues(string(OutcomeError)).Inc()
			return OutcomeError, apperrors.Database(err)
		}
		if !applied {
			metrics.WebhookResults.WithLabelValues(string(OutcomeDuplicate)).Inc()
			return OutcomeDuplicate, nil
		}
		s.markSeen(ctx, txn.Reference)
		metrics.WebhookResults.WithLabelValues(string(OutcomeProcessed)).Inc()
		return OutcomeProcessed, nil
	default:
		metrics.WebhookResults.WithLabelValues(string(OutcomeIgnored)).Inc()
		log.Warn().Str("reference", txn.Reference).Str("status", payload.Status).Msg("Webhook with unrecognized status")
		return OutcomeIgnored, nil
	}
}

// reconcileSuccess dispatches the success effect by the transaction's
// metadata kind, never by amount
func (s *PaymentService) reconcileSuccess(ctx context.Context, txn *models.Transaction, payload *models.WebhookPayload) (ReconcileOutcome, error) {
	switch txn.Metadata["kind"] {
	case models.TransactionKindVisit:
		return s.reconcileVisit(ctx, txn, payload)
	case models.TransactionKindSubscription:
		return s.reconcileSubscription(ctx, txn)
	default:
		metrics.WebhookResults.WithLabelValues(string(OutcomeError)).Inc()
		log.Error().
			Str("reference", txn.Reference).
			Str("kind", txn.Metadata["kind"]).
			Msg("Transaction with unknown metadata kind")
		return OutcomeError, apperrors.ReconciliationConflict(txn.Reference, "unknown transaction kind")
	}
}

func (s *PaymentService) reconcileVisit(ctx context.Context, txn *models.Transaction, payload *models.WebhookPayload) (ReconcileOutcome, error) {
	visitID, err := uuid.Parse(txn.Metadata["visit_id"])
	if err != nil {
		metrics.WebhookResults.WithLabelValues(string(OutcomeError)).Inc()
		return OutcomeError, apperrors.ReconciliationConflict(txn.Reference, "transaction metadata has no valid visit id")
	}

	visit, err := s.visitRepo.GetByID(ctx, txn.ClinicID, visitID)
	if err != nil {
		metrics.WebhookResults.WithLabelValues(string(OutcomeError)).Inc()
		log.Error().Err(err).
			Str("reference", txn.Reference).
			Str("visit_id", visitID.String()).
			Msg("Reconciliation could not load visit; manual replay required")
		return OutcomeError, apperrors.Database(err)
	}

	// The confirmed amount must match the bill recomputed from the
	// visit's parts. A mismatch is an error condition, not a warning.
	expected := visitflow.ComputeTotal(visit)
	if payload.Amount != expected {
		if _, err := s.txnRepo.MarkStatusFrom(ctx, txn.Reference, models.TransactionPending, models.TransactionAmountMismatch); err != nil {
			metrics.WebhookResults.WithLabelValues(string(OutcomeError)).Inc()
			return OutcomeError, apperrors.Database(err)
		}
		metrics.WebhookResults.WithLabelValues(string(OutcomeAmountMismatch)).Inc()
		log.Error().
			Str("reference", txn.Reference).
			Float64("expected", expected).
			Float64("confirmed", payload.Amount).
			Msg("Payment amount mismatch; transaction parked for review")
		return OutcomeAmountMismatch, apperrors.ReconciliationConflict(txn.Reference,
			fmt.Sprintf("confirmed amount %.2f does not match expected bill %.2f", payload.Amount, expected))
	}

	nextStage := visitflow.NextAfterBilling(visit)
	applied, err := s.txnRepo.ReconcileVisitSuccess(ctx, txn.Reference, txn.ClinicID, visit.ID, expected, nextStage, time.Now().UTC())
	if err != nil {
		metrics.WebhookResults.WithLabelValues(string(OutcomeError)).Inc()
		log.Error().Err(err).
			Str("reference", txn.Reference).
			Str("visit_id", visit.ID.String()).
			Str("intended_stage", string(nextStage)).
			Msg("Reconciliation write failed; manual replay required")
		return OutcomeError, apperrors.Database(err)
	}
	if !applied {
		metrics.WebhookResults.WithLabelValues(string(OutcomeDuplicate)).Inc()
		return OutcomeDuplicate, nil
	}

	s.markSeen(ctx, txn.Reference)
	metrics.WebhookResults.WithLabelValues(string(OutcomeProcessed)).Inc()
	log.Info().
		Str("reference", txn.Reference).
		Str("visit_id", visit.ID.String()).
		Str("next_stage", string(nextStage)).
		Msg("Visit payment reconciled")

	if patient, err := s.patientRepo.GetByID(ctx, txn.ClinicID, visit.PatientID); err == nil {
		s.notifier.SendSMSAsync(patient.Phone, "payment-receipt", map[string]string{
			"patient_name": patient.Name,
			"amount":       fmt.Sprintf("%.2f", expected),
		})
	}

	return OutcomeProcessed, nil
}

func (s *PaymentService) reconcileSubscription(ctx context.Context, txn *models.Transaction) (ReconcileOutcome, error) {
	plan := models.PlanTier(txn.Metadata["plan"])
	switch plan {
	case models.PlanFree, models.PlanStandard, models.PlanEnterprise:
	default:
		metrics.WebhookResults.WithLabelValues(string(OutcomeError)).Inc()
		return OutcomeError, apperrors.ReconciliationConflict(txn.Reference, "transaction metadata has no valid plan")
	}

	applied, err := s.txnRepo.ReconcileSubscriptionSuccess(ctx, txn.Reference, txn.ClinicID, plan)
	if err != nil {
		metrics.WebhookResults.WithLabelValues(string(OutcomeError)).Inc()
		log.Error().Err(err).
			Str("reference", txn.Reference).
			Str("intended_plan", string(plan)).
			Msg("Subscription reconciliation write failed; manual replay required")
		return OutcomeError, apperrors.Database(err)
	}
	if !applied {
		metrics.WebhookResults.WithLabelValues(string(OutcomeDuplicate)).Inc()
		return OutcomeDuplicate, nil
	}

	s.markSeen(ctx, txn.Reference)
	metrics.WebhookResults.WithLabelValues(string(OutcomeProcessed)).Inc()
	log.Info().Str("reference", txn.Reference).Str("plan", string(plan)).Msg("Subscription payment reconciled")
	return OutcomeProcessed, nil
}

func (s *PaymentService) markSeen(ctx context.Context, reference string) {
	if err := s.cache.Set(ctx, cache.WebhookSeenKey(reference), []byte("1"), webhookSeenTTL); err != nil {
		log.Debug().Err(err).Str("reference", reference).Msg("Failed to set webhook seen marker")
	}
}

// Transactions lists a clinic's payment transactions
func (s *PaymentService) Transactions(ctx context.Context, actor models.Actor, limit, offset int) ([]models.Transaction, error) {
	if err := authorize(actor, rbac.CapBillingManage); err != nil {
		return nil, err
	}
	txns, err := s.txnRepo.ListByClinic(ctx, actor.ClinicID, limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return txns, nil
}
