package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentStatus represents an appointment's lifecycle state
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Appointment represents a scheduled patient slot. A scheduled appointment
// may turn into a visit via check-in, but the two are not structurally
// linked beyond that action.
type Appointment struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"clinic_id"`
	PatientID uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	Date      string            `gorm:"type:varchar(10);not null;index" json:"date"` // YYYY-MM-DD
	Time      string            `gorm:"type:varchar(5);not null" json:"time"`        // HH:MM
	Reason    string            `gorm:"type:text" json:"reason,omitempty"`
	Status    AppointmentStatus `gorm:"type:varchar(20);not null;default:'scheduled'" json:"status"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Appointment) TableName() string {
	return "appointments"
}

// BeforeCreate hook
func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AppointmentRequest represents a request to schedule an appointment
type AppointmentRequest struct {
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
	Date      string    `json:"date" binding:"required"`
	Time      string    `json:"time" binding:"required"`
	Reason    string    `json:"reason"`
}
