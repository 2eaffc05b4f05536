package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/database"
	"github.com/otcheredev/clinic-core/internal/models"
)

// ClinicRepository handles clinic (tenant) database operations
type ClinicRepository struct{}

// NewClinicRepository creates a new clinic repository
func NewClinicRepository() *ClinicRepository {
	return &ClinicRepository{}
}

// GetByID retrieves a clinic
func (r *ClinicRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Clinic, error) {
	var clinic models.Clinic
	if err := database.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&clinic).Error; err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return &clinic, nil
}
