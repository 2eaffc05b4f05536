package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionStatus represents a payment transaction's state. Terminal
// states (success, failed) are sticky; a later webhook for the same
// reference never overwrites them. amount_mismatch parks a transaction for
// manual review.
type TransactionStatus string

const (
	TransactionPending        TransactionStatus = "pending"
	TransactionSuccess        TransactionStatus = "success"
	TransactionFailed         TransactionStatus = "failed"
	TransactionAmountMismatch TransactionStatus = "amount_mismatch"
)

// Transaction metadata kinds. The reconciliation effect is dispatched by
// this tag, never inferred from the amount.
const (
	TransactionKindVisit        = "visit"
	TransactionKindSubscription = "subscription"
)

// Transaction represents one payment attempt. Reference is the idempotency
// key for webhook delivery.
type Transaction struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"clinic_id"`
	Reference string            `gorm:"type:varchar(100);not null;uniqueIndex" json:"reference"`
	Amount    float64           `gorm:"not null" json:"amount"`
	Status    TransactionStatus `gorm:"type:varchar(30);not null;default:'pending';index" json:"status"`

	// Metadata links the transaction back to the visit or plan it funds
	Metadata map[string]string `gorm:"serializer:json" json:"metadata,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate hook
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// IsTerminal reports whether the transaction may still change state
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionSuccess || t.Status == TransactionFailed
}

// InitiatePaymentRequest represents a request to start a payment
type InitiatePaymentRequest struct {
	VisitID uuid.UUID `json:"visit_id" binding:"required"`
}

// WebhookPayload is the provider-normalized webhook body
type WebhookPayload struct {
	Reference string            `json:"reference"`
	Status    string            `json:"status"`
	Amount    float64           `json:"amount"`
	Metadata  map[string]string `json:"metadata"`
}
