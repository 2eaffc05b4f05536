package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/database"
	"github.com/otcheredev/clinic-core/internal/models"
)

// PatientRepository handles patient database operations
type PatientRepository struct{}

// NewPatientRepository creates a new patient repository
func NewPatientRepository() *PatientRepository {
	return &PatientRepository{}
}

// Create registers a new patient
func (r *PatientRepository) Create(ctx context.Context, patient *models.Patient) error {
	if err := database.DB.WithContext(ctx).Create(patient).Error; err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

// GetByID retrieves a patient scoped to a clinic
func (r *PatientRepository) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*models.Patient, error) {
	var patient models.Patient
	if err := database.DB.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", id, clinicID).
		First(&patient).Error; err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

// ListByClinic retrieves all patients for a clinic
func (r *PatientRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]models.Patient, error) {
	var patients []models.Patient
	if err := database.DB.WithContext(ctx).
		Where("clinic_id = ?", clinicID).
		Order("created_at DESC").
		Find(&patients).Error; err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

// Update saves patient edits
func (r *PatientRepository) Update(ctx context.Context, patient *models.Patient) error {
	if err := database.DB.WithContext(ctx).Save(patient).Error; err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

// Delete soft deletes a patient
func (r *PatientRepository) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	result := database.DB.WithContext(ctx).
		Where("clinic_id = ?", clinicID).
		Delete(&models.Patient{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete patient: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("patient %s not found in clinic", id)
	}
	return nil
}
