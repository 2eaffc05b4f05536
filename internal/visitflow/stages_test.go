package visitflow

import (
	"testing"

	"github.com/otcheredev/clinic-core/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanTransitionNormalFlow(t *testing.T) {
	assert.True(t, CanTransition(models.StageCheckIn, models.StageVitals))
	assert.True(t, CanTransition(models.StageVitals, models.StageConsultation))
	assert.True(t, CanTransition(models.StageConsultation, models.StageLab))
	assert.True(t, CanTransition(models.StageLab, models.StageBilling))
	assert.True(t, CanTransition(models.StageBilling, models.StagePharmacy))
	assert.True(t, CanTransition(models.StagePharmacy, models.StageClearance))
}

func TestCanTransitionLabIsOptional(t *testing.T) {
	assert.True(t, CanTransition(models.StageConsultation, models.StageBilling))
}

func TestCanTransitionRejectsSkipsAndReversals(t *testing.T) {
	// Skipping consultation straight to pharmacy
	assert.False(t, CanTransition(models.StageVitals, models.StagePharmacy))
	assert.False(t, CanTransition(models.StageCheckIn, models.StageBilling))
	// Reversals
	assert.False(t, CanTransition(models.StageBilling, models.StageConsultation))
	assert.False(t, CanTransition(models.StageVitals, models.StageCheckIn))
}

func TestClearanceIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(models.StageClearance))
	for _, target := range []models.VisitStage{
		models.StageCheckIn, models.StageVitals, models.StageConsultation,
		models.StageLab, models.StageBilling, models.StagePharmacy,
	} {
		assert.False(t, CanTransition(models.StageClearance, target), target)
	}
}

func TestNextAfterBilling(t *testing.T) {
	withRx := &models.Visit{
		Prescription: []models.PrescriptionItem{{Name: "Amoxicillin", Price: 200, Quantity: 2}},
	}
	assert.Equal(t, models.StagePharmacy, NextAfterBilling(withRx))

	withoutRx := &models.Visit{}
	assert.Equal(t, models.StageClearance, NextAfterBilling(withoutRx))
}

func TestCanLeaveBillingRequiresPayment(t *testing.T) {
	unpaidWithRx := &models.Visit{
		PaymentStatus: models.PaymentPending,
		Prescription:  []models.PrescriptionItem{{Name: "Amoxicillin", Price: 200, Quantity: 2}},
	}
	assert.False(t, CanLeaveBilling(unpaidWithRx, models.StagePharmacy))
	assert.False(t, CanLeaveBilling(unpaidWithRx, models.StageClearance))

	unpaidNoRx := &models.Visit{PaymentStatus: models.PaymentPending}
	assert.False(t, CanLeaveBilling(unpaidNoRx, models.StageClearance))
}

func TestCanLeaveBillingFollowsPrescription(t *testing.T) {
	paidWithRx := &models.Visit{
		PaymentStatus: models.PaymentPaid,
		Prescription:  []models.PrescriptionItem{{Name: "Amoxicillin", Price: 200, Quantity: 2}},
	}
	assert.True(t, CanLeaveBilling(paidWithRx, models.StagePharmacy))
	// A prescription-carrying visit never jumps straight to Clearance
	assert.False(t, CanLeaveBilling(paidWithRx, models.StageClearance))

	paidNoRx := &models.Visit{PaymentStatus: models.PaymentPaid}
	assert.True(t, CanLeaveBilling(paidNoRx, models.StageClearance))
	assert.False(t, CanLeaveBilling(paidNoRx, models.StagePharmacy))
}

func TestRequiredCapability(t *testing.T) {
	assert.Equal(t, "billing.manage", RequiredCapability(models.StageBilling))
	assert.Equal(t, "visits.complete", RequiredCapability(models.StageClearance))
	assert.Equal(t, "", RequiredCapability(models.StageVitals))
	assert.Equal(t, "", RequiredCapability(models.StageLab))
}

func TestComputeTotal(t *testing.T) {
	v := &models.Visit{
		ConsultationFee: 500,
		Prescription: []models.PrescriptionItem{
			{Name: "Amoxicillin", Price: 200, Quantity: 2},
		},
		LabOrders: []models.LabOrder{
			{TestName: "CBC", Price: 150},
		},
	}
	assert.Equal(t, 1050.0, ComputeTotal(v))
}

func TestComputeTotalDefaultsZeroQuantityToOne(t *testing.T) {
	v := &models.Visit{
		ConsultationFee: 100,
		Prescription: []models.PrescriptionItem{
			{Name: "Paracetamol", Price: 50, Quantity: 0},
		},
	}
	assert.Equal(t, 150.0, ComputeTotal(v))
}

func TestIsValidStage(t *testing.T) {
	assert.True(t, IsValidStage(models.StageBilling))
	assert.False(t, IsValidStage(models.VisitStage("triage")))
	assert.False(t, IsValidStage(models.VisitStage("")))
}
