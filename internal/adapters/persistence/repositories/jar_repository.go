package repositories

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"swearjar-backend/internal/adapters/persistence/models"
	"swearjar-backend/internal/core/domain"
)

// GormJarRepository handles jar data access
type GormJarRepository struct {
	db *gorm.DB
}

// NewJarRepository creates a new jar repository
func NewJarRepository(db *gorm.DB) *GormJarRepository {
	return &GormJarRepository{db: db}
}

// CreateWithOwner creates a jar and its owner membership in one unit of work
func (r *GormJarRepository) CreateWithOwner(ctx context.Context, jar *models.Jar, owner *models.Membership) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(jar).Error; err != nil {
			return err
		}
		owner.JarID = jar.ID
		return tx.Create(owner).Error
	})
}

// GetByID gets a jar by ID with its swear words
func (r *GormJarRepository) GetByID(ctx context.Context, id uint) (*models.Jar, error) {
	var jar models.Jar
	err := r.db.WithContext(ctx).
		Preload("SwearWords").
		First(&jar, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &jar, nil
}

// ListByUser lists jars the user is a member of, with pagination
func (r *GormJarRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*models.Jar, int64, error) {
	var jars []*models.Jar
	var total int64

	r.db.WithContext(ctx).Model(&models.Jar{}).
		Joins("JOIN memberships ON memberships.jar_id = jars.id").
		Where("memberships.user_id = ? AND jars.is_active = ?", userID, true).
		Count(&total)

	err := r.db.WithContext(ctx).Model(&models.Jar{}).
		Joins("JOIN memberships ON memberships.jar_id = jars.id").
		Where("memberships.user_id = ? AND jars.is_active = ?", userID, true).
		Order("jars.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&jars).Error

	return jars, total, err
}

// UpdateSettings saves the jar's name, description and settings.
// Balance and statistics columns are owned by the ledger repository
// and excluded here.
func (r *GormJarRepository) UpdateSettings(ctx context.Context, jar *models.Jar) error {
	return r.db.WithContext(ctx).Model(jar).
		Omit("balance", "stat_total_deposits", "stat_total_withdrawals",
			"stat_transaction_count", "stat_average_deposit", "stat_last_activity").
		Updates(map[string]interface{}{
			"name":                                       jar.Name,
			"description":                                jar.Description,
			"setting_minimum_deposit":                    jar.Settings.MinimumDeposit,
			"setting_maximum_deposit":                    jar.Settings.MaximumDeposit,
			"setting_require_approval_for_withdrawals":   jar.Settings.RequireApprovalForWithdrawals,
			"setting_public":                             jar.Settings.Public,
			"setting_auto_deduct":                        jar.Settings.AutoDeduct,
		}).Error
}

// SoftDelete marks a jar inactive and soft deletes it
func (r *GormJarRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Jar{}).Where("id = ?", id).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Jar{}, id).Error
	})
}

// ReplaceSwearWords replaces the jar's penalty word table
func (r *GormJarRepository) ReplaceSwearWords(ctx context.Context, jarID uint, words []models.SwearWord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("jar_id = ?", jarID).Delete(&models.SwearWord{}).Error; err != nil {
			return err
		}
		for i := range words {
			words[i].JarID = jarID
			words[i].Word = strings.ToLower(words[i].Word)
			if err := tx.Create(&words[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetSwearWord looks up a configured penalty word (case-insensitive)
func (r *GormJarRepository) GetSwearWord(ctx context.Context, jarID uint, word string) (*models.SwearWord, error) {
	var sw models.SwearWord
	err := r.db.WithContext(ctx).
		Where("jar_id = ? AND word = ?", jarID, strings.ToLower(word)).
		First(&sw).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &sw, nil
}

// ListSwearWords lists the jar's configured penalty words
func (r *GormJarRepository) ListSwearWords(ctx context.Context, jarID uint) ([]*models.SwearWord, error) {
	var words []*models.SwearWord
	err := r.db.WithContext(ctx).
		Where("jar_id = ?", jarID).
		Order("word ASC").
		Find(&words).Error
	return words, err
}
