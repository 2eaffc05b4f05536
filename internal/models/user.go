package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStatus represents a staff account's lifecycle state. Users are never
// hard-deleted; deactivation is a status change only.
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusInvited     UserStatus = "invited"
	UserStatusSuspended   UserStatus = "suspended"
	UserStatusDeactivated UserStatus = "deactivated"
)

// User represents a staff member of a clinic
type User struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID uuid.UUID  `gorm:"type:uuid;not null;index" json:"clinic_id"`
	Name     string     `gorm:"type:varchar(255);not null" json:"name"`
	Email    string     `gorm:"type:varchar(255);not null;index" json:"email"`
	Role     string     `gorm:"type:varchar(50);not null" json:"role"`
	Status   UserStatus `gorm:"type:varchar(20);not null;default:'invited'" json:"status"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// InviteUserRequest represents a request to invite a staff member
type InviteUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Role  string `json:"role" binding:"required"`
}

// ChangeRoleRequest represents a request to change a staff member's role
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}
