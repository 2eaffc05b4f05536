package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/apperrors"
	"github.com/otcheredev/clinic-core/internal/models"
	"github.com/otcheredev/clinic-core/internal/rbac"
	"github.com/otcheredev/clinic-core/internal/repository"
)

// PatientService manages the patient registry
type PatientService struct {
	patientRepo *repository.PatientRepository
	visitRepo   *repository.VisitRepository
}

// NewPatientService creates a new patient service
func NewPatientService(patientRepo *repository.PatientRepository, visitRepo *repository.VisitRepository) *PatientService {
	return &PatientService{
		patientRepo: patientRepo,
		visitRepo:   visitRepo,
	}
}

// Register creates a new patient record
func (s *PatientService) Register(ctx context.Context, actor models.Actor, req *models.PatientRequest) (*models.Patient, error) {
	if err := authorize(actor, rbac.CapPatientsManage); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, apperrors.Validation("patient name is required")
	}

	patient := &models.Patient{
		ClinicID:         actor.ClinicID,
		Name:             req.Name,
		Phone:            req.Phone,
		Age:              req.Age,
		Gender:           req.Gender,
		Allergies:        req.Allergies,
		ChronicHistory:   req.ChronicHistory,
		EmergencyContact: req.EmergencyContact,
	}
	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return nil, apperrors.Database(err)
	}
	return patient, nil
}

// Get retrieves a patient record
func (s *PatientService) Get(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Patient, error) {
	if err := authorize(actor, rbac.CapPatientsView); err != nil {
		return nil, err
	}
	patient, err := s.patientRepo.GetByID(ctx, actor.ClinicID, id)
	if err != nil {
		return nil, apperrors.NotFound("patient")
	}
	return patient, nil
}

// List retrieves the clinic's patient registry
func (s *PatientService) List(ctx context.Context, actor models.Actor) ([]models.Patient, error) {
	if err := authorize(actor, rbac.CapPatientsView); err != nil {
		return nil, err
	}
	patients, err := s.patientRepo.ListByClinic(ctx, actor.ClinicID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return patients, nil
}

// Update modifies a patient's demographic and history fields. The vitals
// snapshot is owned by the visit flow and is not writable here.
func (s *PatientService) Update(ctx context.Context, actor models.Actor, id uuid.UUID, req *models.PatientRequest) (*models.Patient, error) {
	if err := authorize(actor, rbac.CapPatientsManage); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, apperrors.Validation("patient name is required")
	}

	patient, err := s.patientRepo.GetByID(ctx, actor.ClinicID, id)
	if err != nil {
		return nil, apperrors.NotFound("patient")
	}

	patient.Name = req.Name
	patient.Phone = req.Phone
	patient.Age = req.Age
	patient.Gender = req.Gender
	patient.Allergies = req.Allergies
	patient.ChronicHistory = req.ChronicHistory
	patient.EmergencyContact = req.EmergencyContact
	if err := s.patientRepo.Update(ctx, patient); err != nil {
		return nil, apperrors.Database(err)
	}
	return patient, nil
}

// Delete soft-removes a patient record. The patient's visit history stays
// intact for reporting.
func (s *PatientService) Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if err := authorize(actor, rbac.CapPatientsDelete); err != nil {
		return err
	}
	if _, err := s.patientRepo.GetByID(ctx, actor.ClinicID, id); err != nil {
		return apperrors.NotFound("patient")
	}
	if err := s.patientRepo.Delete(ctx, actor.ClinicID, id); err != nil {
		return apperrors.Database(err)
	}
	return nil
}

// Visits retrieves a patient's active visits
func (s *PatientService) Visits(ctx context.Context, actor models.Actor, id uuid.UUID) ([]models.Visit, error) {
	if err := authorize(actor, rbac.CapVisitsView); err != nil {
		return nil, err
	}
	if _, err := s.patientRepo.GetByID(ctx, actor.ClinicID, id); err != nil {
		return nil, apperrors.NotFound("patient")
	}
	visits, err := s.visitRepo.ListActiveByPatient(ctx, actor.ClinicID, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return visits, nil
}
