package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlanTier represents a clinic's subscription plan
type PlanTier string

const (
	PlanFree       PlanTier = "free"
	PlanStandard   PlanTier = "standard"
	PlanEnterprise PlanTier = "enterprise"
)

// Clinic represents a tenant. All patient, visit and staff data is scoped
// to exactly one clinic.
type Clinic struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Plan       PlanTier  `gorm:"type:varchar(50);not null;default:'free'" json:"plan"`
	PlanActive bool      `gorm:"default:true" json:"plan_active"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Clinic) TableName() string {
	return "clinics"
}

// BeforeCreate hook
func (c *Clinic) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
