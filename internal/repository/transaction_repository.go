package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/database"
	"github.com/otcheredev/clinic-core/internal/models"
	"gorm.io/gorm"
)

// TransactionRepository handles payment transaction database operations
type TransactionRepository struct{}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{}
}

// Create records a new pending transaction
func (r *TransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	if err := database.DB.WithContext(ctx).Create(txn).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetByReference looks a transaction up by its provider reference, the
// idempotency key for webhook processing. Returns (nil, nil) when the
// reference is unknown so callers can treat it as a reportable anomaly
// rather than a hard failure.
func (r *TransactionRepository) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	var txn models.Transaction
	err := database.DB.WithContext(ctx).
		Where("reference = ?", reference).
		First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &txn, nil
}

// MarkStatusFrom moves a transaction between states as a compare-and-swap.
// A false return means the transaction was no longer in the expected state
// (a duplicate or out-of-order webhook) and nothing was written; terminal
// states stay sticky.
func (r *TransactionRepository) MarkStatusFrom(ctx context.Context, reference string, from, to models.TransactionStatus) (bool, error) {
	result := database.DB.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("reference = ? AND status = ?", reference, from).
		Update("status", to)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update transaction status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ReconcileVisitSuccess applies a successful visit payment atomically: the
// transaction moves pending to success and the visit is marked paid with
// the confirmed total and advanced out of Billing, all in one database
// transaction. If the visit has already left Billing the stage is left
// alone and only the payment fields are written; the stage is never
// regressed. Returns false without writing when the transaction was no
// longer pending (duplicate or out-of-order webhook).
func (r *TransactionRepository) ReconcileVisitSuccess(ctx context.Context, reference string, clinicID, visitID uuid.UUID, confirmedTotal float64, nextStage models.VisitStage, now time.Time) (bool, error) {
	applied := false
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Transaction{}).
			Where("reference = ? AND status = ?", reference, models.TransactionPending).
			Update("status", models.TransactionSuccess)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		staged := tx.Model(&models.Visit{}).
			Where("id = ? AND clinic_id = ? AND stage = ?", visitID, clinicID, models.StageBilling).
			Updates(map[string]interface{}{
				"payment_status":   models.PaymentPaid,
				"total_bill":       confirmedTotal,
				"stage":            nextStage,
				"stage_start_time": now,
			})
		if staged.Error != nil {
			return staged.Error
		}
		if staged.RowsAffected == 0 {
			// Visit already moved on; record the payment without
			// touching the stage
			if err := tx.Model(&models.Visit{}).
				Where("id = ? AND clinic_id = ?", visitID, clinicID).
				Updates(map[string]interface{}{
					"payment_status": models.PaymentPaid,
					"total_bill":     confirmedTotal,
				}).Error; err != nil {
				return err
			}
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to reconcile visit payment: %w", err)
	}
	return applied, nil
}

// ReconcileSubscriptionSuccess applies a successful plan purchase
// atomically: the transaction moves pending to success and the clinic's
// plan tier is upgraded and activated in the same database transaction.
func (r *TransactionRepository) ReconcileSubscriptionSuccess(ctx context.Context, reference string, clinicID uuid.UUID, plan models.PlanTier) (bool, error) {
	applied := false
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Transaction{}).
			Where("reference = ? AND status = ?", reference, models.TransactionPending).
			Update("status", models.TransactionSuccess)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if err := tx.Model(&models.Clinic{}).
			Where("id = ?", clinicID).
			Updates(map[string]interface{}{
				"plan":        plan,
				"plan_active": true,
			}).Error; err != nil {
			return err
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to reconcile subscription payment: %w", err)
	}
	return applied, nil
}

// ListByClinic retrieves a clinic's transactions, newest first
func (r *TransactionRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	var txns []models.Transaction
	query := database.DB.WithContext(ctx).
		Where("clinic_id = ?", clinicID).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}
