package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/apperrors"
	"github.com/otcheredev/clinic-core/internal/metrics"
	"github.com/otcheredev/clinic-core/internal/models"
	"github.com/otcheredev/clinic-core/internal/notification"
	"github.com/otcheredev/clinic-core/internal/rbac"
	"github.com/otcheredev/clinic-core/internal/repository"
	"github.com/otcheredev/clinic-core/internal/visitflow"
	"github.com/rs/zerolog/log"
)

// VisitService owns the visit stage pipeline. Every mutating method takes
// the acting user and re-checks capability here, at the mutation boundary;
// UI-side checks are a convenience, never the guard.
type VisitService struct {
	visitRepo   *repository.VisitRepository
	patientRepo *repository.PatientRepository
	notifier    *notification.Notifier
}

// NewVisitService creates a new visit service
func NewVisitService(visitRepo *repository.VisitRepository, patientRepo *repository.PatientRepository, notifier *notification.Notifier) *VisitService {
	return &VisitService{
		visitRepo:   visitRepo,
		patientRepo: patientRepo,
		notifier:    notifier,
	}
}

// authorize resolves the actor's role and checks one capability,
// failing closed on unknown roles
func authorize(actor models.Actor, capability string) error {
	if !rbac.LabelAllowed(actor.Role, capability) {
		return apperrors.AuthorizationDenied(capability)
	}
	return nil
}

// CheckIn opens a new visit for a patient at the Check-In stage
func (s *VisitService) CheckIn(ctx context.Context, actor models.Actor, req *models.CheckInRequest) (*models.Visit, error) {
	if err := authorize(actor, rbac.CapVisitsManage); err != nil {
		return nil, err
	}

	if _, err := s.patientRepo.GetByID(ctx, actor.ClinicID, req.PatientID); err != nil {
		return nil, apperrors.NotFound("patient")
	}

	priority := req.Priority
	if visitflow.PriorityRank(priority) == 0 {
		priority = models.PriorityNormal
	}

	// A patient may legitimately have another active visit (e.g. a queued
	// follow-up while an older visit is still in billing); log it but do
	// not reject.
	if active, err := s.visitRepo.ListActiveByPatient(ctx, actor.ClinicID, req.PatientID); err == nil && len(active) > 0 {
		log.Warn().
			Str("patient_id", req.PatientID.String()).
			Int("active_visits", len(active)).
			Msg("Patient checked in with other active visits")
	}

	visit := &models.Visit{
		ClinicID:        actor.ClinicID,
		PatientID:       req.PatientID,
		Stage:           models.StageCheckIn,
		Priority:        priority,
		StageStartTime:  time.Now().UTC(),
		ConsultationFee: req.ConsultationFee,
		PaymentStatus:   models.PaymentPending,
	}
	if err := s.visitRepo.Create(ctx, visit); err != nil {
		return nil, apperrors.Database(err)
	}
	return visit, nil
}

// Get retrieves a visit with its lab orders and prescription
func (s *VisitService) Get(ctx context.Context, actor models.Actor, visitID uuid.UUID) (*models.Visit, error) {
	if err := authorize(actor, rbac.CapVisitsView); err != nil {
		return nil, err
	}
	visit, err := s.visitRepo.GetByID(ctx, actor.ClinicID, visitID)
	if err != nil {
		return nil, apperrors.NotFound("visit")
	}
	return visit, nil
}

// Transition moves a visit to the target stage. The guard is evaluated
// against the latest persisted stage and the write is a compare-and-swap,
// so a concurrent transition surfaces as a stale-write conflict rather
// than silently overwriting a newer stage.
func (s *VisitService) Transition(ctx context.Context, actor models.Actor, visitID uuid.UUID, target models.VisitStage) (*models.Visit, error) {
	if err := authorize(actor, rbac.CapVisitsManage); err != nil {
		metrics.StageTransitions.WithLabelValues(string(target), "denied").Inc()
		return nil, err
	}
	if extra := visitflow.RequiredCapability(target); extra != "" {
		if err := authorize(actor, extra); err != nil {
			metrics.StageTransitions.WithLabelValues(string(target), "denied").Inc()
			return nil, err
		}
	}

	if !visitflow.IsValidStage(target) {
		metrics.StageTransitions.WithLabelValues(string(target), "invalid").Inc()
		return nil, apperrors.Validation("unknown target stage")
	}

	visit, err := s.visitRepo.GetByID(ctx, actor.ClinicID, visitID)
	if err != nil {
		return nil, apperrors.NotFound("visit")
	}

	if !visitflow.CanTransition(visit.Stage, target) {
		metrics.StageTransitions.WithLabelValues(string(target), "invalid").Inc()
		return nil, apperrors.InvalidTransition(string(visit.Stage), string(target))
	}

	// Leaving Billing is driven by payment success, not the stage button:
	// unpaid visits stay in Billing, and a paid visit may only move to the
	// stage its prescription dictates.
	if visit.Stage == models.StageBilling && !visitflow.CanLeaveBilling(visit, target) {
		metrics.StageTransitions.WithLabelValues(string(target), "invalid").Inc()
		return nil, apperrors.InvalidTransition(string(visit.Stage), string(target))
	}

	now := time.Now().UTC()
	applied, err := s.visitRepo.UpdateStageFrom(ctx, actor.ClinicID, visitID, visit.Stage, target, now)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if !applied {
		metrics.StageTransitions.WithLabelValues(string(target), "stale").Inc()
		return nil, apperrors.StaleWrite("visit")
	}

	metrics.StageTransitions.WithLabelValues(string(target), "accepted").Inc()
	log.Info().
		Str("visit_id", visitID.String()).
		Str("from", string(visit.Stage)).
		Str("to", string(target)).
		Str("actor_id", actor.UserID.String()).
		Msg("Visit stage transition")

	if target == models.StageClearance {
		if patient, err := s.patientRepo.GetByID(ctx, actor.ClinicID, visit.PatientID); err == nil {
			s.notifier.SendSMSAsync(patient.Phone, "visit-cleared", map[string]string{
				"patient_name": patient.Name,
			})
		}
	}

	visit.Stage = target
	visit.StageStartTime = now
	return visit, nil
}

// Complete moves a visit into the terminal Clearance stage. Requires
// visits.complete in addition to any stage-specific guard.
func (s *VisitService) Complete(ctx context.Context, actor models.Actor, visitID uuid.UUID) (*models.Visit, error) {
	return s.Transition(ctx, actor, visitID, models.StageClearance)
}

// RecordVitals stores a vitals snapshot on the visit and the patient card
func (s *VisitService) RecordVitals(ctx context.Context, actor models.Actor, visitID uuid.UUID, vitals models.Vitals) (*models.Visit, error) {
	if err := authorize(actor, rbac.CapVitalsRecord); err != nil {
		return nil, err
	}

	visit, err := s.visitRepo.GetByID(ctx, actor.ClinicID, visitID)
	if err != nil {
		return nil, apperrors.NotFound("visit")
	}

	visit.Vitals = vitals
	if err := s.visitRepo.UpdateClinical(ctx, visit); err != nil {
		return nil, apperrors.Database(err)
	}

	if patient, err := s.patientRepo.GetByID(ctx, actor.ClinicID, visit.PatientID); err == nil {
		patient.Vitals = vitals
		if err := s.patientRepo.Update(ctx, patient); err != nil {
			log.Error().Err(err).Str("patient_id", patient.ID.String()).Msg("Failed to mirror vitals to patient card")
		}
	}
	return visit, nil
}

// RecordConsultation stores the doctor's diagnosis, notes and fee
func (s *VisitService) RecordConsultation(ctx context.Context, actor models.Actor, visitID uuid.UUID, diagnosis, notes string, fee float64) (*models.Visit, error) {
	if err := authorize(actor, rbac.CapConsultationManage); err != nil {
		return nil, err
	}

	visit, err := s.visitRepo.GetByID(ctx, actor.ClinicID, visitID)
	if err != nil {
		return nil, apperrors.NotFound("visit")
	}

	visit.Diagnosis = diagnosis
	visit.DoctorNotes = notes
	if fee > 0 {
		visit.ConsultationFee = fee
	}
	visit.TotalBill = visitflow.ComputeTotal(visit)
	if err := s.visitRepo.UpdateClinical(ctx, visit); err != nil {
		return nil, apperrors.Database(err)
	}
	return visit, nil
}

// OrderLab attaches a lab order to a visit
func (s *VisitService) OrderLab(ctx context.Context, actor models.Actor, visitID uuid.UUID, testName string, price float64) (*models.LabOrder, error) {
	if err := authorize(actor, rbac.CapLabManage); err != nil {
		return nil, err
	}
	if testName == "" {
		return nil, apperrors.Validation("test name is required")
	}

	visit, err := s.visitRepo.GetByID(ctx, actor.ClinicID, visitID)
	if err != nil {
		return nil, apperrors.NotFound("visit")
	}
	if visitflow.IsTerminal(visit.Stage) {
		return nil, apperrors.InvalidTransition(string(visit.Stage), string(models.StageLab))
	}

	order := &models.LabOrder{
		VisitID:  visit.ID,
		TestName: testName,
		Price:    price,
	}
	if err := s.visitRepo.AddLabOrder(ctx, order); err != nil {
		return nil, apperrors.Database(err)
	}
	return order, nil
}

// Prescribe attaches a priced prescription item to a visit
func (s *VisitService) Prescribe(ctx context.Context, actor models.Actor, visitID uuid.UUID, item models.PrescriptionItem) (*models.PrescriptionItem, error) {
	if err := authorize(actor, rbac.CapConsultationManage); err != nil {
		return nil, err
	}
	if item.Name == "" {
		return nil, apperrors.Validation("prescription item name is required")
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	visit, err := s.visitRepo.GetByID(ctx, actor.ClinicID, visitID)
	if err != nil {
		return nil, apperrors.NotFound("visit")
	}
	if visitflow.IsTerminal(visit.Stage) {
		return nil, apperrors.InvalidTransition(string(visit.Stage), string(models.StagePharmacy))
	}

	item.VisitID = visit.ID
	if err := s.visitRepo.AddPrescriptionItem(ctx, &item); err != nil {
		return nil, apperrors.Database(err)
	}
	return &item, nil
}
