package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"swearjar-backend/internal/adapters/persistence/models"
	"swearjar-backend/internal/core/domain"
)

// GormMembershipRepository handles membership data access
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *gorm.DB) *GormMembershipRepository {
	return &GormMembershipRepository{db: db}
}

// Create creates a new membership
func (r *GormMembershipRepository) Create(ctx context.Context, m *models.Membership) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// GetByJarAndUser gets a user's membership in a jar
func (r *GormMembershipRepository) GetByJarAndUser(ctx context.Context, jarID uint, userID string) (*models.Membership, error) {
	var m models.Membership
	err := r.db.WithContext(ctx).
		Where("jar_id = ? AND user_id = ?", jarID, userID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListByJar lists all memberships of a jar
func (r *GormMembershipRepository) ListByJar(ctx context.Context, jarID uint) ([]*models.Membership, error) {
	var members []*models.Membership
	err := r.db.WithContext(ctx).
		Where("jar_id = ?", jarID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}

// Update updates a membership
func (r *GormMembershipRepository) Update(ctx context.Context, m *models.Membership) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// Delete removes a membership
func (r *GormMembershipRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Membership{}, id).Error
}
