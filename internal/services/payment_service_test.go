package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/apperrors"
	"github.com/otcheredev/clinic-core/internal/cache"
	"github.com/otcheredev/clinic-core/internal/models"
	"github.com/otcheredev/clinic-core/internal/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransactionStore keeps transactions in a map keyed by reference and
// mimics the repository's compare-and-swap semantics, so the reconciliation
// branches can be exercised without a database.
type fakeTransactionStore struct {
	byReference map[string]*models.Transaction

	visitReconciles int
	lastNextStage   models.VisitStage
	subReconciles   int
	lastPlan        models.PlanTier
}

func newFakeTransactionStore(txns ...*models.Transaction) *fakeTransactionStore {
	s := &fakeTransactionStore{byReference: make(map[string]*models.Transaction)}
	for _, txn := range txns {
		s.byReference[txn.Reference] = txn
	}
	return s
}

func (s *fakeTransactionStore) Create(_ context.Context, txn *models.Transaction) error {
	s.byReference[txn.Reference] = txn
	return nil
}

func (s *fakeTransactionStore) GetByReference(_ context.Context, reference string) (*models.Transaction, error) {
	txn, ok := s.byReference[reference]
	if !ok {
		return nil, nil
	}
	copied := *txn
	return &copied, nil
}

func (s *fakeTransactionStore) MarkStatusFrom(_ context.Context, reference string, from, to models.TransactionStatus) (bool, error) {
	txn, ok := s.byReference[reference]
	if !ok || txn.Status != from {
		return false, nil
	}
	txn.Status = to
	return true, nil
}

func (s *fakeTransactionStore) ReconcileVisitSuccess(_ context.Context, reference string, _, _ uuid.UUID, _ float64, nextStage models.VisitStage, _ time.Time) (bool, error) {
	txn, ok := s.byReference[reference]
	if !ok || txn.Status != models.TransactionPending {
		return false, nil
	}
	txn.Status = models.TransactionSuccess
	s.visitReconciles++
	s.lastNextStage = nextStage
	return true, nil
}

func (s *fakeTransactionStore) ReconcileSubscriptionSuccess(_ context.Context, reference string, _ uuid.UUID, plan models.PlanTier) (bool, error) {
	txn, ok := s.byReference[reference]
	if !ok || txn.Status != models.TransactionPending {
		return false, nil
	}
	txn.Status = models.TransactionSuccess
	s.subReconciles++
	s.lastPlan = plan
	return true, nil
}

func (s *fakeTransactionStore) ListByClinic(_ context.Context, _ uuid.UUID, _, _ int) ([]models.Transaction, error) {
	return nil, nil
}

type fakeVisitStore struct {
	visits map[uuid.UUID]*models.Visit
}

func (s *fakeVisitStore) GetByID(_ context.Context, _, id uuid.UUID) (*models.Visit, error) {
	visit, ok := s.visits[id]
	if !ok {
		return nil, errors.New("visit not found")
	}
	return visit, nil
}

func (s *fakeVisitStore) UpdateClinical(_ context.Context, _ *models.Visit) error {
	return nil
}

type fakePatientStore struct{}

func (s *fakePatientStore) GetByID(_ context.Context, _, _ uuid.UUID) (*models.Patient, error) {
	return nil, errors.New("patient not found")
}

// billedVisit is a visit sitting in Billing with a 1050.00 bill: a 500 fee,
// one 200x2 prescription line and a 150 lab order.
func billedVisit(clinicID uuid.UUID) *models.Visit {
	return &models.Visit{
		ID:              uuid.New(),
		ClinicID:        clinicID,
		PatientID:       uuid.New(),
		Stage:           models.StageBilling,
		PaymentStatus:   models.PaymentPending,
		ConsultationFee: 500,
		Prescription: []models.PrescriptionItem{
			{Name: "Amoxicillin", Price: 200, Quantity: 2},
		},
		LabOrders: []models.LabOrder{
			{TestName: "CBC", Price: 150},
		},
	}
}

func visitTransaction(clinicID uuid.UUID, visit *models.Visit, amount float64) *models.Transaction {
	return &models.Transaction{
		ClinicID:  clinicID,
		Reference: "txn_" + uuid.NewString(),
		Amount:    amount,
		Status:    models.TransactionPending,
		Metadata: map[string]string{
			"kind":     models.TransactionKindVisit,
			"visit_id": visit.ID.String(),
		},
	}
}

func paymentServiceForTest(txns *fakeTransactionStore, visits *fakeVisitStore) *PaymentService {
	return NewPaymentService(txns, visits, &fakePatientStore{}, cache.NewMemoryCache(), notification.NewNotifier(nil, nil))
}

func TestReconcileAppliesSuccessOnce(t *testing.T) {
	clinicID := uuid.New()
	visit := billedVisit(clinicID)
	txn := visitTransaction(clinicID, visit, 1050)
	txns := newFakeTransactionStore(txn)
	svc := paymentServiceForTest(txns, &fakeVisitStore{visits: map[uuid.UUID]*models.Visit{visit.ID: visit}})

	payload := &models.WebhookPayload{Reference: txn.Reference, Status: "success", Amount: 1050}

	outcome, err := svc.Reconcile(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, outcome)
	assert.Equal(t, 1, txns.visitReconciles)

	// A provider retry of the same delivery must not apply again
	outcome, err = svc.Reconcile(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)
	assert.Equal(t, 1, txns.visitReconciles)
}

func TestReconcileSuccessAfterFailureIsDuplicate(t *testing.T) {
	clinicID := uuid.New()
	visit := billedVisit(clinicID)
	txn := visitTransaction(clinicID, visit, 1050)
	txns := newFakeTransactionStore(txn)
	visits := &fakeVisitStore{visits: map[uuid.UUID]*models.Visit{visit.ID: visit}}
	svc := paymentServiceForTest(txns, visits)

	outcome, err := svc.Reconcile(context.Background(), &models.WebhookPayload{Reference: txn.Reference, Status: "failed"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, outcome)
	assert.Equal(t, models.TransactionFailed, txns.byReference[txn.Reference].Status)

	// A fresh service shares the store but not the seen-marker cache, so
	// the out-of-order success must bounce off the terminal status itself
	cold := paymentServiceForTest(txns, visits)
	outcome, err = cold.Reconcile(context.Background(), &models.WebhookPayload{Reference: txn.Reference, Status: "success", Amount: 1050})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)
	assert.Equal(t, models.TransactionFailed, txns.byReference[txn.Reference].Status)
	assert.Equal(t, 0, txns.visitReconciles)
}

func TestReconcileAmountMismatchParksTransaction(t *testing.T) {
	clinicID := uuid.New()
	visit := billedVisit(clinicID)
	txn := visitTransaction(clinicID, visit, 1050)
	txns := newFakeTransactionStore(txn)
	svc := paymentServiceForTest(txns, &fakeVisitStore{visits: map[uuid.UUID]*models.Visit{visit.ID: visit}})

	outcome, err := svc.Reconcile(context.Background(), &models.WebhookPayload{Reference: txn.Reference, Status: "success", Amount: 900})
	assert.Equal(t, OutcomeAmountMismatch, outcome)
	assert.Equal(t, apperrors.CodeReconciliationConflict, apperrors.CodeOf(err))
	assert.Equal(t, models.TransactionAmountMismatch, txns.byReference[txn.Reference].Status)
	assert.Equal(t, 0, txns.visitReconciles)
}

func TestReconcileRoutesVisitByPrescription(t *testing.T) {
	clinicID := uuid.New()

	withRx := billedVisit(clinicID)
	rxTxn := visitTransaction(clinicID, withRx, 1050)
	rxStore := newFakeTransactionStore(rxTxn)
	rxSvc := paymentServiceForTest(rxStore, &fakeVisitStore{visits: map[uuid.UUID]*models.Visit{withRx.ID: withRx}})

	outcome, err := rxSvc.Reconcile(context.Background(), &models.WebhookPayload{Reference: rxTxn.Reference, Status: "success", Amount: 1050})
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, outcome)
	assert.Equal(t, models.StagePharmacy, rxStore.lastNextStage)

	noRx := &models.Visit{
		ID:              uuid.New(),
		ClinicID:        clinicID,
		PatientID:       uuid.New(),
		Stage:           models.StageBilling,
		PaymentStatus:   models.PaymentPending,
		ConsultationFee: 500,
	}
	plainTxn := visitTransaction(clinicID, noRx, 500)
	plainStore := newFakeTransactionStore(plainTxn)
	plainSvc := paymentServiceForTest(plainStore, &fakeVisitStore{visits: map[uuid.UUID]*models.Visit{noRx.ID: noRx}})

	outcome, err = plainSvc.Reconcile(context.Background(), &models.WebhookPayload{Reference: plainTxn.Reference, Status: "success", Amount: 500})
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, outcome)
	assert.Equal(t, models.StageClearance, plainStore.lastNextStage)
}

func TestReconcileUnknownReference(t *testing.T) {
	svc := paymentServiceForTest(newFakeTransactionStore(), &fakeVisitStore{})

	outcome, err := svc.Reconcile(context.Background(), &models.WebhookPayload{Reference: "txn_unknown", Status: "success", Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnknownReference, outcome)
}

func TestReconcileRejectsMissingReference(t *testing.T) {
	svc := paymentServiceForTest(newFakeTransactionStore(), &fakeVisitStore{})

	outcome, err := svc.Reconcile(context.Background(), &models.WebhookPayload{Status: "success", Amount: 100})
	assert.Equal(t, OutcomeRejected, outcome)
	assert.Equal(t, apperrors.CodeValidationError, apperrors.CodeOf(err))
}
