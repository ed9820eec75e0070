package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"swearjar-backend/internal/adapters/persistence/models"
	"swearjar-backend/internal/core/domain"
)

// GormBankAccountRepository handles linked bank account data access
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewBankAccountRepository creates a new bank account repository
func NewBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

// Create creates a new linked bank account
func (r *GormBankAccountRepository) Create(ctx context.Context, account *models.BankAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// GetByID gets a bank account by ID
func (r *GormBankAccountRepository) GetByID(ctx context.Context, id uint) (*models.BankAccount, error) {
	var account models.BankAccount
	err := r.db.WithContext(ctx).First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// ListByUser lists a user's linked bank accounts
func (r *GormBankAccountRepository) ListByUser(ctx context.Context, userID string) ([]*models.BankAccount, error) {
	var accounts []*models.BankAccount
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&accounts).Error
	return accounts, err
}

// Update updates a bank account
func (r *GormBankAccountRepository) Update(ctx context.Context, account *models.BankAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// Delete soft deletes a bank account
func (r *GormBankAccountRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.BankAccount{}, id).Error
}
