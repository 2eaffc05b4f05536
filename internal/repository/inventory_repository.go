package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/database"
	"github.com/otcheredev/clinic-core/internal/models"
	"gorm.io/gorm"
)

// InventoryRepository handles inventory and stock-log database operations
type InventoryRepository struct{}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{}
}

// Create adds a new stock item
func (r *InventoryRepository) Create(ctx context.Context, item *models.InventoryItem) error {
	if err := database.DB.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create inventory item: %w", err)
	}
	return nil
}

// GetByID retrieves an item scoped to a clinic
func (r *InventoryRepository) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := database.DB.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", id, clinicID).
		First(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return &item, nil
}

// ListByClinic retrieves a clinic's inventory
func (r *InventoryRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := database.DB.WithContext(ctx).
		Where("clinic_id = ?", clinicID).
		Order("name ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}

// ListBelowReorderLevel retrieves items whose stock has fallen to or below
// their reorder threshold
func (r *InventoryRepository) ListBelowReorderLevel(ctx context.Context, clinicID uuid.UUID) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := database.DB.WithContext(ctx).
		Where("clinic_id = ? AND stock <= reorder_level", clinicID).
		Order("stock ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}
	return items, nil
}

// AdjustStock applies a stock delta and appends the immutable movement log
// entry in one transaction. A dispense that would push stock below zero is
// rejected by the guarded update.
func (r *InventoryRepository) AdjustStock(ctx context.Context, clinicID, itemID, actorID uuid.UUID, action models.StockAction, delta int) (bool, error) {
	applied := false
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&models.InventoryItem{}).
			Where("id = ? AND clinic_id = ?", itemID, clinicID)
		if delta < 0 {
			query = query.Where("stock >= ?", -delta)
		}

		result := query.Update("stock", gorm.Expr("stock + ?", delta))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		entry := &models.StockEntry{
			ClinicID: clinicID,
			ItemID:   itemID,
			Action:   action,
			Delta:    delta,
			ActorID:  actorID,
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to adjust stock: %w", err)
	}
	return applied, nil
}

// ListStockEntries retrieves the movement log for an item, newest first
func (r *InventoryRepository) ListStockEntries(ctx context.Context, clinicID, itemID uuid.UUID, limit int) ([]models.StockEntry, error) {
	query := database.DB.WithContext(ctx).
		Where("clinic_id = ? AND item_id = ?", clinicID, itemID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []models.StockEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list stock entries: %w", err)
	}
	return entries, nil
}
