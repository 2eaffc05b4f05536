// Package visitflow encodes the visit stage pipeline, transition guards,
// fee computation and the queue projection. Everything here is pure; the
// service layer owns persistence and actor checks.
package visitflow

import (
	"github.com/otcheredev/clinic-core/internal/models"
)

// stageOrder fixes the pipeline position of each stage. Clearance is
// terminal.
var stageOrder = map[models.VisitStage]int{
	models.StageCheckIn:      0,
	models.StageVitals:       1,
	models.StageConsultation: 2,
	models.StageLab:          3,
	models.StageBilling:      4,
	models.StagePharmacy:     5,
	models.StageClearance:    6,
}

// allowedTransitions maps each stage to the stages reachable from it in
// normal flow. Lab is optional (Consultation may go straight to Billing),
// and Billing branches to Pharmacy or Clearance depending on whether a
// prescription exists.
var allowedTransitions = map[models.VisitStage][]models.VisitStage{
	models.StageCheckIn:      {models.StageVitals},
	models.StageVitals:       {models.StageConsultation},
	models.StageConsultation: {models.StageLab, models.StageBilling},
	models.StageLab:          {models.StageBilling},
	models.StageBilling:      {models.StagePharmacy, models.StageClearance},
	models.StagePharmacy:     {models.StageClearance},
	models.StageClearance:    {},
}

// IsValidStage reports whether s is one of the fixed stage set
func IsValidStage(s models.VisitStage) bool {
	_, ok := stageOrder[s]
	return ok
}

// IsTerminal reports whether a visit in stage s can still move
func IsTerminal(s models.VisitStage) bool {
	return s == models.StageClearance
}

// CanTransition reports whether target is reachable from current in one
// step
func CanTransition(current, target models.VisitStage) bool {
	for _, next := range allowedTransitions[current] {
		if next == target {
			return true
		}
	}
	return false
}

// NextAfterBilling computes the stage that follows a successful payment:
// Pharmacy when the visit carries a prescription, Clearance otherwise.
func NextAfterBilling(v *models.Visit) models.VisitStage {
	if len(v.Prescription) > 0 {
		return models.StagePharmacy
	}
	return models.StageClearance
}

// CanLeaveBilling guards the manual exit from Billing. Leaving Billing is
// driven by payment: an unpaid visit stays put, and a paid visit may only
// move to the stage the prescription dictates. Reconciliation normally
// performs this move itself; the manual path exists for replaying a
// confirmed payment and must agree with it.
func CanLeaveBilling(v *models.Visit, target models.VisitStage) bool {
	if v.PaymentStatus != models.PaymentPaid {
		return false
	}
	return target == NextAfterBilling(v)
}

// RequiredCapability returns the capability guarding entry into the target
// stage beyond the baseline visits.manage, or "" when no extra guard
// applies. Entering Billing needs billing.manage; entering Clearance
// completes the visit and needs visits.complete.
func RequiredCapability(target models.VisitStage) string {
	switch target {
	case models.StageBilling:
		return "billing.manage"
	case models.StageClearance:
		return "visits.complete"
	default:
		return ""
	}
}

// ComputeTotal recomputes a visit's bill from its parts: consultation fee
// plus priced prescription items plus lab orders. Reconciliation compares
// the confirmed payment amount against this, not against the persisted
// TotalBill.
func ComputeTotal(v *models.Visit) float64 {
	total := v.ConsultationFee
	for _, item := range v.Prescription {
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		total += item.Price * float64(qty)
	}
	for _, order := range v.LabOrders {
		total += order.Price
	}
	return total
}
