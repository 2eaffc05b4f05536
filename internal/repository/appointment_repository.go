package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/database"
	"github.com/otcheredev/clinic-core/internal/models"
)

// AppointmentRepository handles appointment database operations
type AppointmentRepository struct{}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{}
}

// Create schedules a new appointment
func (r *AppointmentRepository) Create(ctx context.Context, appt *models.Appointment) error {
	if err := database.DB.WithContext(ctx).Create(appt).Error; err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

// GetByID retrieves an appointment scoped to a clinic
func (r *AppointmentRepository) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*models.Appointment, error) {
	var appt models.Appointment
	if err := database.DB.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", id, clinicID).
		First(&appt).Error; err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appt, nil
}

// ListByClinic retrieves a clinic's appointments, optionally filtered by
// date (YYYY-MM-DD)
func (r *AppointmentRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID, date string) ([]models.Appointment, error) {
	query := database.DB.WithContext(ctx).
		Where("clinic_id = ?", clinicID)
	if date != "" {
		query = query.Where("date = ?", date)
	}

	var appts []models.Appointment
	if err := query.Order("date ASC, time ASC").Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appts, nil
}

// UpdateStatusFrom moves an appointment between states as a
// compare-and-swap, so a cancelled slot cannot be checked in concurrently
func (r *AppointmentRepository) UpdateStatusFrom(ctx context.Context, clinicID, id uuid.UUID, from, to models.AppointmentStatus) (bool, error) {
	result := database.DB.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND clinic_id = ? AND status = ?", id, clinicID, from).
		Update("status", to)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update appointment status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// CountByStatus returns appointment counts per status for a clinic
func (r *AppointmentRepository) CountByStatus(ctx context.Context, clinicID uuid.UUID) (map[models.AppointmentStatus]int64, error) {
	type row struct {
		Status models.AppointmentStatus
		Count  int64
	}
	var rows []row
	if err := database.DB.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("status, count(*) as count").
		Where("clinic_id = ?", clinicID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}

	counts := make(map[models.AppointmentStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
