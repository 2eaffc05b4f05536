package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vitals is a point-in-time vitals snapshot
type Vitals struct {
	Temperature   float64 `json:"temperature,omitempty"`
	BloodPressure string  `json:"blood_pressure,omitempty"`
	HeartRate     int     `json:"heart_rate,omitempty"`
	Weight        float64 `json:"weight,omitempty"`
	Height        float64 `json:"height,omitempty"`
}

// Patient represents a registered patient. Patients exist independently of
// visits; one patient may have many visits over time.
type Patient struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID         uuid.UUID `gorm:"type:uuid;not null;index" json:"clinic_id"`
	Name             string    `gorm:"type:varchar(255);not null" json:"name"`
	Phone            string    `gorm:"type:varchar(30)" json:"phone"`
	Age              int       `json:"age"`
	Gender           string    `gorm:"type:varchar(20)" json:"gender"`
	Allergies        string    `gorm:"type:text" json:"allergies,omitempty"`
	ChronicHistory   []string  `gorm:"type:text[];serializer:json" json:"chronic_history,omitempty"`
	EmergencyContact string    `gorm:"type:varchar(255)" json:"emergency_contact,omitempty"`

	// Latest recorded vitals snapshot
	Vitals Vitals `gorm:"serializer:json" json:"vitals"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Patient) TableName() string {
	return "patients"
}

// BeforeCreate hook
func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PatientRequest represents a request to register or update a patient
type PatientRequest struct {
	Name             string   `json:"name" binding:"required"`
	Phone            string   `json:"phone"`
	Age              int      `json:"age"`
	Gender           string   `json:"gender"`
	Allergies        string   `json:"allergies"`
	ChronicHistory   []string `json:"chronic_history"`
	EmergencyContact string   `json:"emergency_contact"`
}
