package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VisitStage represents one station in a visit's lifecycle
type VisitStage string

const (
	StageCheckIn      VisitStage = "check_in"
	StageVitals       VisitStage = "vitals"
	StageConsultation VisitStage = "consultation"
	StageLab          VisitStage = "lab"
	StageBilling      VisitStage = "billing"
	StagePharmacy     VisitStage = "pharmacy"
	StageClearance    VisitStage = "clearance"
)

// VisitPriority represents a visit's triage priority
type VisitPriority string

const (
	PriorityEmergency VisitPriority = "emergency"
	PriorityUrgent    VisitPriority = "urgent"
	PriorityNormal    VisitPriority = "normal"
)

// PaymentStatus represents a visit's billing state
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Visit represents one patient journey through the stage pipeline
type Visit struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"clinic_id"`
	PatientID uuid.UUID     `gorm:"type:uuid;not null;index" json:"patient_id"`
	Stage     VisitStage    `gorm:"type:varchar(30);not null;index" json:"stage"`
	Priority  VisitPriority `gorm:"type:varchar(20);not null;default:'normal'" json:"priority"`

	// StageStartTime is reset on every stage transition. The queue view
	// derives wait duration from it, so it must never be left stale.
	StageStartTime time.Time `gorm:"not null;index" json:"stage_start_time"`

	Vitals      Vitals `gorm:"serializer:json" json:"vitals"`
	Diagnosis   string `gorm:"type:text" json:"diagnosis,omitempty"`
	DoctorNotes string `gorm:"type:text" json:"doctor_notes,omitempty"`

	LabOrders    []LabOrder         `gorm:"foreignKey:VisitID;constraint:OnDelete:CASCADE" json:"lab_orders"`
	Prescription []PrescriptionItem `gorm:"foreignKey:VisitID;constraint:OnDelete:CASCADE" json:"prescription"`

	ConsultationFee float64       `gorm:"not null;default:0" json:"consultation_fee"`
	TotalBill       float64       `gorm:"not null;default:0" json:"total_bill"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`

	// Extensible metadata bag, e.g. payment provider reference
	Metadata map[string]string `gorm:"serializer:json" json:"metadata,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Visit) TableName() string {
	return "visits"
}

// BeforeCreate hook
func (v *Visit) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// LabOrder belongs to exactly one visit and is deleted with it
type LabOrder struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	VisitID  uuid.UUID `gorm:"type:uuid;not null;index" json:"visit_id"`
	TestName string    `gorm:"type:varchar(255);not null" json:"test_name"`
	Price    float64   `gorm:"not null;default:0" json:"price"`
	Result   string    `gorm:"type:text" json:"result,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (LabOrder) TableName() string {
	return "lab_orders"
}

// BeforeCreate hook
func (l *LabOrder) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// PrescriptionItem belongs to exactly one visit and is deleted with it
type PrescriptionItem struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	VisitID  uuid.UUID `gorm:"type:uuid;not null;index" json:"visit_id"`
	ItemID   uuid.UUID `gorm:"type:uuid" json:"item_id,omitempty"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`
	Price    float64   `gorm:"not null;default:0" json:"price"`
	Quantity int       `gorm:"not null;default:1" json:"quantity"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (PrescriptionItem) TableName() string {
	return "prescription_items"
}

// BeforeCreate hook
func (p *PrescriptionItem) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// CheckInRequest represents a request to open a visit for a patient
type CheckInRequest struct {
	PatientID       uuid.UUID     `json:"patient_id" binding:"required"`
	Priority        VisitPriority `json:"priority"`
	ConsultationFee float64       `json:"consultation_fee"`
}

// TransitionRequest represents a request to move a visit to another stage
type TransitionRequest struct {
	TargetStage VisitStage `json:"target_stage" binding:"required"`
}

// QueueEntry is a queue row decorated with the wait duration computed at
// read time
type QueueEntry struct {
	Visit       Visit `json:"visit"`
	WaitSeconds int64 `json:"wait_seconds"`
}
