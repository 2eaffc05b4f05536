package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/apperrors"
	"github.com/otcheredev/clinic-core/internal/models"
	"github.com/otcheredev/clinic-core/internal/rbac"
	"github.com/otcheredev/clinic-core/internal/repository"
	"github.com/rs/zerolog/log"
)

// InventoryService manages pharmacy stock. Every stock movement goes
// through the guarded delta so the level can never go negative and every
// change lands in the movement log.
type InventoryService struct {
	invRepo *repository.InventoryRepository
}

// NewInventoryService creates a new inventory service
func NewInventoryService(invRepo *repository.InventoryRepository) *InventoryService {
	return &InventoryService{invRepo: invRepo}
}

// CreateItem adds a new stock item
func (s *InventoryService) CreateItem(ctx context.Context, actor models.Actor, req *models.InventoryItemRequest) (*models.InventoryItem, error) {
	if err := authorize(actor, rbac.CapInventoryManage); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, apperrors.Validation("item name is required")
	}
	if req.Stock < 0 {
		return nil, apperrors.Validation("stock cannot be negative")
	}

	item := &models.InventoryItem{
		ClinicID:     actor.ClinicID,
		Name:         req.Name,
		Stock:        req.Stock,
		ReorderLevel: req.ReorderLevel,
		Price:        req.Price,
		ExpiryDate:   req.ExpiryDate,
	}
	if err := s.invRepo.Create(ctx, item); err != nil {
		return nil, apperrors.Database(err)
	}
	return item, nil
}

// List retrieves the clinic's inventory
func (s *InventoryService) List(ctx context.Context, actor models.Actor) ([]models.InventoryItem, error) {
	if err := authorize(actor, rbac.CapInventoryView); err != nil {
		return nil, err
	}
	items, err := s.invRepo.ListByClinic(ctx, actor.ClinicID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return items, nil
}

// LowStock retrieves items at or below their reorder threshold
func (s *InventoryService) LowStock(ctx context.Context, actor models.Actor) ([]models.InventoryItem, error) {
	if err := authorize(actor, rbac.CapInventoryView); err != nil {
		return nil, err
	}
	items, err := s.invRepo.ListBelowReorderLevel(ctx, actor.ClinicID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return items, nil
}

// Dispense deducts stock for a pharmacy handout. The deduction is rejected
// when it would take the level below zero.
func (s *InventoryService) Dispense(ctx context.Context, actor models.Actor, itemID uuid.UUID, quantity int) (*models.InventoryItem, error) {
	if err := authorize(actor, rbac.CapPharmacyDispense); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, apperrors.Validation("quantity must be positive")
	}

	applied, err := s.invRepo.AdjustStock(ctx, actor.ClinicID, itemID, actor.UserID, models.StockActionDispense, -quantity)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if !applied {
		return nil, apperrors.Validation("insufficient stock")
	}

	item, err := s.invRepo.GetByID(ctx, actor.ClinicID, itemID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if item.Stock <= item.ReorderLevel {
		log.Warn().
			Str("item_id", item.ID.String()).
			Str("name", item.Name).
			Int("stock", item.Stock).
			Int("reorder_level", item.ReorderLevel).
			Msg("Item at or below reorder level")
	}
	return item, nil
}

// Restock adds stock for a received delivery
func (s *InventoryService) Restock(ctx context.Context, actor models.Actor, itemID uuid.UUID, quantity int) (*models.InventoryItem, error) {
	if err := authorize(actor, rbac.CapInventoryManage); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, apperrors.Validation("quantity must be positive")
	}

	applied, err := s.invRepo.AdjustStock(ctx, actor.ClinicID, itemID, actor.UserID, models.StockActionRestock, quantity)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if !applied {
		return nil, apperrors.NotFound("inventory item")
	}
	return s.invRepo.GetByID(ctx, actor.ClinicID, itemID)
}

// History retrieves an item's movement log, newest first
func (s *InventoryService) History(ctx context.Context, actor models.Actor, itemID uuid.UUID, limit int) ([]models.StockEntry, error) {
	if err := authorize(actor, rbac.CapInventoryView); err != nil {
		return nil, err
	}
	if _, err := s.invRepo.GetByID(ctx, actor.ClinicID, itemID); err != nil {
		return nil, apperrors.NotFound("inventory item")
	}
	entries, err := s.invRepo.ListStockEntries(ctx, actor.ClinicID, itemID, limit)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return entries, nil
}
