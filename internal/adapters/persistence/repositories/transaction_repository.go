package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"swearjar-backend/internal/adapters/persistence/models"
	"swearjar-backend/internal/core/domain"
)

// GormTransactionRepository handles transaction log reads
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// GetByID gets a transaction by ID
func (r *GormTransactionRepository) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).First(&tx, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// GetByReference gets a transaction by its public reference
func (r *GormTransactionRepository) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// ListByJar lists a jar's transactions, newest first, with pagination
func (r *GormTransactionRepository) ListByJar(ctx context.Context, jarID uint, offset, limit int) ([]*models.Transaction, int64, error) {
	var txs []*models.Transaction
	var total int64

	r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("jar_id = ?", jarID).Count(&total)

	err := r.db.WithContext(ctx).
		Where("jar_id = ?", jarID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&txs).Error

	return txs, total, err
}

// ListStalePending lists pending transactions created before the cutoff
func (r *GormTransactionRepository) ListStalePending(ctx context.Context, olderThan time.Time) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.TxStatusPending, olderThan).
		Order("created_at ASC").
		Find(&txs).Error
	return txs, err
}
