package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/database"
	"github.com/otcheredev/clinic-core/internal/models"
)

// UserRepository handles staff account database operations
type UserRepository struct{}

// NewUserRepository creates a new user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := database.DB.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user scoped to a clinic
func (r *UserRepository) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := database.DB.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", id, clinicID).
		First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// ListByClinic retrieves all staff for a clinic
func (r *UserRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]models.User, error) {
	var users []models.User
	if err := database.DB.WithContext(ctx).
		Where("clinic_id = ?", clinicID).
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateRole changes a user's role
func (r *UserRepository) UpdateRole(ctx context.Context, clinicID, id uuid.UUID, role string) error {
	result := database.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND clinic_id = ?", id, clinicID).
		Update("role", role)
	if result.Error != nil {
		return fmt.Errorf("failed to update role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %s not found in clinic", id)
	}
	return nil
}

// UpdateStatus changes a user's lifecycle status. Accounts are never hard
// deleted.
func (r *UserRepository) UpdateStatus(ctx context.Context, clinicID, id uuid.UUID, status models.UserStatus) error {
	result := database.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND clinic_id = ?", id, clinicID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %s not found in clinic", id)
	}
	return nil
}
