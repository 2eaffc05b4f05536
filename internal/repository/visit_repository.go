package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/database"
	"github.com/otcheredev/clinic-core/internal/models"
)

// VisitRepository handles visit database operations
type VisitRepository struct{}

// NewVisitRepository creates a new visit repository
func NewVisitRepository() *VisitRepository {
	return &VisitRepository{}
}

// Create opens a new visit
func (r *VisitRepository) Create(ctx context.Context, visit *models.Visit) error {
	if err := database.DB.WithContext(ctx).Create(visit).Error; err != nil {
		return fmt.Errorf("failed to create visit: %w", err)
	}
	return nil
}

// GetByID retrieves a visit with its lab orders and prescription, scoped
// to a clinic
func (r *VisitRepository) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*models.Visit, error) {
	var visit models.Visit
	if err := database.DB.WithContext(ctx).
		Preload("LabOrders").
		Preload("Prescription").
		Where("id = ? AND clinic_id = ?", id, clinicID).
		First(&visit).Error; err != nil {
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}
	return &visit, nil
}

// ListByStage retrieves the visits currently in a stage for a clinic,
// ordered deterministically for fingerprinting
func (r *VisitRepository) ListByStage(ctx context.Context, clinicID uuid.UUID, stage models.VisitStage) ([]models.Visit, error) {
	var visits []models.Visit
	if err := database.DB.WithContext(ctx).
		Preload("Prescription").
		Where("clinic_id = ? AND stage = ?", clinicID, stage).
		Order("created_at ASC").
		Find(&visits).Error; err != nil {
		return nil, fmt.Errorf("failed to list visits by stage: %w", err)
	}
	return visits, nil
}

// ListActiveByPatient retrieves a patient's non-terminal visits. Multiple
// active visits per patient are allowed; callers may warn.
func (r *VisitRepository) ListActiveByPatient(ctx context.Context, clinicID, patientID uuid.UUID) ([]models.Visit, error) {
	var visits []models.Visit
	if err := database.DB.WithContext(ctx).
		Where("clinic_id = ? AND patient_id = ? AND stage <> ?", clinicID, patientID, models.StageClearance).
		Order("created_at DESC").
		Find(&visits).Error; err != nil {
		return nil, fmt.Errorf("failed to list active visits: %w", err)
	}
	return visits, nil
}

// UpdateStageFrom applies a stage transition as a compare-and-swap against
// the stage the caller read. A zero rows-affected result means the
// persisted stage has since changed and the caller must re-fetch.
// StageStartTime is always reset with the stage, never left stale.
func (r *VisitRepository) UpdateStageFrom(ctx context.Context, clinicID, id uuid.UUID, from, to models.VisitStage, now time.Time) (bool, error) {
	result := database.DB.WithContext(ctx).
		Model(&models.Visit{}).
		Where("id = ? AND clinic_id = ? AND stage = ?", id, clinicID, from).
		Updates(map[string]interface{}{
			"stage":            to,
			"stage_start_time": now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update stage: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// UpdateClinical saves consultation output (vitals, diagnosis, notes, fee)
func (r *VisitRepository) UpdateClinical(ctx context.Context, visit *models.Visit) error {
	if err := database.DB.WithContext(ctx).
		Model(&models.Visit{}).
		Where("id = ? AND clinic_id = ?", visit.ID, visit.ClinicID).
		Updates(map[string]interface{}{
			"vitals":           visit.Vitals,
			"diagnosis":        visit.Diagnosis,
			"doctor_notes":     visit.DoctorNotes,
			"consultation_fee": visit.ConsultationFee,
			"total_bill":       visit.TotalBill,
			"metadata":         visit.Metadata,
		}).Error; err != nil {
		return fmt.Errorf("failed to update visit: %w", err)
	}
	return nil
}

// AddLabOrder attaches a lab order to a visit
func (r *VisitRepository) AddLabOrder(ctx context.Context, order *models.LabOrder) error {
	if err := database.DB.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to add lab order: %w", err)
	}
	return nil
}

// AddPrescriptionItem attaches a prescription item to a visit
func (r *VisitRepository) AddPrescriptionItem(ctx context.Context, item *models.PrescriptionItem) error {
	if err := database.DB.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to add prescription item: %w", err)
	}
	return nil
}

// CountByStage returns visit counts per stage for a clinic, for reporting
func (r *VisitRepository) CountByStage(ctx context.Context, clinicID uuid.UUID) (map[models.VisitStage]int64, error) {
	type row struct {
		Stage models.VisitStage
		Count int64
	}
	var rows []row
	if err := database.DB.WithContext(ctx).
		Model(&models.Visit{}).
		Select("stage, count(*) as count").
		Where("clinic_id = ?", clinicID).
		Group("stage").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count visits by stage: %w", err)
	}

	counts := make(map[models.VisitStage]int64, len(rows))
	for _, r := range rows {
		counts[r.Stage] = r.Count
	}
	return counts, nil
}

// SumPaidTotals returns revenue (sum of paid visit totals) in a date
// range. The upper bound is exclusive so callers pass the day after the
// last day they want included.
func (r *VisitRepository) SumPaidTotals(ctx context.Context, clinicID uuid.UUID, from, before time.Time) (float64, error) {
	var total float64
	if err := database.DB.WithContext(ctx).
		Model(&models.Visit{}).
		Select("coalesce(sum(total_bill), 0)").
		Where("clinic_id = ? AND payment_status = ? AND updated_at >= ? AND updated_at < ?",
			clinicID, models.PaymentPaid, from, before).
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum paid totals: %w", err)
	}
	return total, nil
}
