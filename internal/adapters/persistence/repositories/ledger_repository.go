package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"swearjar-backend/internal/adapters/persistence/models"
	"swearjar-backend/internal/core/domain"
)

// GormLedgerRepository is the single write path for jar balances.
// Every balance mutation runs inside one database transaction holding
// a row lock on the jar, so concurrent operations against the same jar
// serialize and the non-negative balance invariant holds.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Apply inserts a completed transaction and adjusts the jar balance and
// statistics atomically
func (r *GormLedgerRepository) Apply(ctx context.Context, draft *models.Transaction) (*models.Transaction, *models.Jar, error) {
	var jar models.Jar

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&jar, draft.JarID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if !jar.IsActive {
			return domain.ErrNotFound
		}

		newBalance := jar.Balance.Add(draft.SignedDelta())
		if newBalance.IsNegative() {
			return domain.ErrInsufficientFunds
		}

		now := time.Now()
		jar.Balance = newBalance
		jar.Statistics.Apply(draft.Type, draft.Amount, now)

		draft.Status = models.TxStatusCompleted
		draft.BalanceAfter = newBalance
		draft.ProcessedAt = &now

		if err := tx.Create(draft).Error; err != nil {
			return err
		}
		return tx.Save(&jar).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return draft, &jar, nil
}

// CreatePending inserts a pending transaction with an optimistic
// balance_after snapshot. No balance effect until Transition.
func (r *GormLedgerRepository) CreatePending(ctx context.Context, draft *models.Transaction) (*models.Transaction, *models.Jar, error) {
	var jar models.Jar
	if err := r.db.WithContext(ctx).First(&jar, draft.JarID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, err
	}
	if !jar.IsActive {
		return nil, nil, domain.ErrNotFound
	}

	draft.Status = models.TxStatusPending
	draft.BalanceAfter = jar.Balance.Add(draft.SignedDelta())

	if err := r.db.WithContext(ctx).Create(draft).Error; err != nil {
		return nil, nil, err
	}
	return draft, &jar, nil
}

// Transition moves a pending transaction to a terminal status. When
// opts.ApplyBalance is set the deferred balance delta and statistics
// update happen in the same database transaction as the status change,
// so the delta can never be applied twice or skipped.
func (r *GormLedgerRepository) Transition(ctx context.Context, txID uint, newStatus string, opts TransitionOpts) (*models.Transaction, *models.Jar, error) {
	var record models.Transaction
	var jar models.Jar

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&record, txID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if !record.IsPending() {
			return domain.ErrInvalidState
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&jar, record.JarID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		now := time.Now()
		record.Status = newStatus
		record.ProcessedAt = &now
		if opts.ApprovedBy != "" {
			record.ApprovedBy = opts.ApprovedBy
		}

		if opts.ApplyBalance {
			newBalance := jar.Balance.Add(record.SignedDelta())
			if newBalance.IsNegative() {
				return domain.ErrInsufficientFunds
			}
			jar.Balance = newBalance
			jar.Statistics.Apply(record.Type, record.Amount, now)
			record.BalanceAfter = newBalance
			if err := tx.Save(&jar).Error; err != nil {
				return err
			}
		}

		return tx.Save(&record).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &record, &jar, nil
}
