package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockAction labels an inventory movement
type StockAction string

const (
	StockActionDispense StockAction = "dispense"
	StockActionRestock  StockAction = "restock"
)

// InventoryItem represents a pharmacy stock item
type InventoryItem struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"clinic_id"`
	Name         string     `gorm:"type:varchar(255);not null" json:"name"`
	Stock        int        `gorm:"not null;default:0" json:"stock"`
	ReorderLevel int        `gorm:"not null;default:0" json:"reorder_level"`
	Price        float64    `gorm:"not null;default:0" json:"price"`
	ExpiryDate   *time.Time `gorm:"index" json:"expiry_date,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// BeforeCreate hook
func (i *InventoryItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// StockEntry is the append-only movement log. Entries are immutable once
// written.
type StockEntry struct {
	ID       uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID uuid.UUID   `gorm:"type:uuid;not null;index" json:"clinic_id"`
	ItemID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"item_id"`
	Action   StockAction `gorm:"type:varchar(20);not null;index" json:"action"`
	Delta    int         `gorm:"not null" json:"delta"`
	ActorID  uuid.UUID   `gorm:"type:uuid;index" json:"actor_id"`

	CreatedAt time.Time `gorm:"index" json:"timestamp"`
}

// TableName overrides the table name
func (StockEntry) TableName() string {
	return "stock_entries"
}

// BeforeCreate hook
func (s *StockEntry) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// InventoryItemRequest represents a request to create or update an item
type InventoryItemRequest struct {
	Name         string     `json:"name" binding:"required"`
	Stock        int        `json:"stock"`
	ReorderLevel int        `json:"reorder_level"`
	Price        float64    `json:"price"`
	ExpiryDate   *time.Time `json:"expiry_date"`
}

// StockMovementRequest represents a dispense or restock request
type StockMovementRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}
