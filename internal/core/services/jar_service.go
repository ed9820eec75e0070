package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"swearjar-backend/internal/adapters/persistence/models"
	"swearjar-backend/internal/adapters/persistence/repositories"
	"swearjar-backend/internal/core/domain"
)

// Jar service errors
var (
	ErrJarNotFound    = errors.New("jar not found")
	ErrOwnerImmutable = errors.New("owner role cannot be changed or removed")
)

// Default deposit limits applied when a jar is created without explicit settings
var (
	defaultMinimumDeposit = decimal.NewFromFloat(0.01)
	defaultMaximumDeposit = decimal.NewFromInt(1000)
)

// JarService handles jar lifecycle and membership management
type JarService struct {
	jarRepo        repositories.JarRepository
	membershipRepo repositories.MembershipRepository
	permissions    *PermissionService
}

// NewJarService creates a new jar service
func NewJarService(
	jarRepo repositories.JarRepository,
	membershipRepo repositories.MembershipRepository,
	permissions *PermissionService,
) *JarService {
	return &JarService{
		jarRepo:        jarRepo,
		membershipRepo: membershipRepo,
		permissions:    permissions,
	}
}

// SwearWordInput represents one penalty word entry
type SwearWordInput struct {
	Word    string          `json:"word"`
	Penalty decimal.Decimal `json:"penalty"`
}

// CreateJarInput represents create jar input
type CreateJarInput struct {
	Name                          string           `json:"name"`
	Description                   string           `json:"description,omitempty"`
	Currency                      string           `json:"currency"`
	MinimumDeposit                *decimal.Decimal `json:"minimum_deposit,omitempty"`
	MaximumDeposit                *decimal.Decimal `json:"maximum_deposit,omitempty"`
	RequireApprovalForWithdrawals bool             `json:"require_approval_for_withdrawals"`
	Public                        bool             `json:"public"`
	AutoDeduct                    bool             `json:"auto_deduct"`
	SwearWords                    []SwearWordInput `json:"swear_words,omitempty"`
}

// Create creates a new jar with the creator as owner. The jar row and
// the owner membership are written in one unit of work.
func (s *JarService) Create(ctx context.Context, ownerID string, input *CreateJarInput) (*models.Jar, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	currency := domain.Currency(strings.ToUpper(input.Currency))
	if !currency.Valid() {
		return nil, domain.ErrInvalidCurrency
	}

	settings := models.JarSettings{
		MinimumDeposit:                defaultMinimumDeposit,
		MaximumDeposit:                defaultMaximumDeposit,
		RequireApprovalForWithdrawals: input.RequireApprovalForWithdrawals,
		Public:                        input.Public,
		AutoDeduct:                    input.AutoDeduct,
	}
	if input.MinimumDeposit != nil {
		settings.MinimumDeposit = *input.MinimumDeposit
	}
	if input.MaximumDeposit != nil {
		settings.MaximumDeposit = *input.MaximumDeposit
	}
	if settings.MinimumDeposit.LessThan(decimal.NewFromFloat(0.01)) ||
		settings.MaximumDeposit.LessThan(settings.MinimumDeposit) {
		return nil, domain.ErrInvalidInput
	}

	jar := &models.Jar{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		OwnerID:     ownerID,
		Currency:    string(currency),
		Balance:     decimal.Zero,
		Settings:    settings,
		IsActive:    true,
	}

	owner := &models.Membership{
		UserID:              ownerID,
		Role:                string(domain.RoleOwner),
		CanDeposit:          true,
		CanWithdraw:         true,
		CanInvite:           true,
		CanViewTransactions: true,
	}

	if err := s.jarRepo.CreateWithOwner(ctx, jar, owner); err != nil {
		return nil, err
	}

	if len(input.SwearWords) > 0 {
		words := make([]models.SwearWord, 0, len(input.SwearWords))
		for _, w := range input.SwearWords {
			if strings.TrimSpace(w.Word) == "" || !w.Penalty.IsPositive() {
				continue
			}
			words = append(words, models.SwearWord{Word: w.Word, Penalty: w.Penalty})
		}
		if err := s.jarRepo.ReplaceSwearWords(ctx, jar.ID, words); err != nil {
			return nil, err
		}
	}

	return s.jarRepo.GetByID(ctx, jar.ID)
}

// Get returns a jar visible to the actor: public jars are visible to
// anyone, private jars to members only
func (s *JarService) Get(ctx context.Context, actorID string, jarID uint) (*models.Jar, error) {
	jar, err := s.jarRepo.GetByID(ctx, jarID)
	if err != nil {
		return nil, err
	}
	if !jar.IsActive {
		return nil, domain.ErrNotFound
	}
	if jar.Settings.Public {
		return jar, nil
	}
	if err := s.permissions.Require(ctx, actorID, jar, domain.CapMember); err != nil {
		return nil, err
	}
	return jar, nil
}

// ListForUser lists jars the user belongs to
func (s *JarService) ListForUser(ctx context.Context, userID string, offset, limit int) ([]*models.Jar, int64, error) {
	return s.jarRepo.ListByUser(ctx, userID, offset, limit)
}

// UpdateSettingsInput represents update settings input
type UpdateSettingsInput struct {
	Name                          *string          `json:"name,omitempty"`
	Description                   *string          `json:"description,omitempty"`
	MinimumDeposit                *decimal.Decimal `json:"minimum_deposit,omitempty"`
	MaximumDeposit                *decimal.Decimal `json:"maximum_deposit,omitempty"`
	RequireApprovalForWithdrawals *bool            `json:"require_approval_for_withdrawals,omitempty"`
	Public                        *bool            `json:"public,omitempty"`
	AutoDeduct                    *bool            `json:"auto_deduct,omitempty"`
	SwearWords                    []SwearWordInput `json:"swear_words,omitempty"`
}

// UpdateSettings updates jar settings and the penalty word table.
// Requires admin role or above.
func (s *JarService) UpdateSettings(ctx context.Context, actorID string, jarID uint, input *UpdateSettingsInput) (*models.Jar, error) {
	jar, err := s.jarRepo.GetByID(ctx, jarID)
	if err != nil {
		return nil, err
	}
	if err := s.permissions.Require(ctx, actorID, jar, domain.CapAdmin); err != nil {
		return nil, err
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		jar.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		jar.Description = *input.Description
	}
	if input.MinimumDeposit != nil {
		jar.Settings.MinimumDeposit = *input.MinimumDeposit
	}
	if input.MaximumDeposit != nil {
		jar.Settings.MaximumDeposit = *input.MaximumDeposit
	}
	if input.RequireApprovalForWithdrawals != nil {
		jar.Settings.RequireApprovalForWithdrawals = *input.RequireApprovalForWithdrawals
	}
	if input.Public != nil {
		jar.Settings.Public = *input.Public
	}
	if input.AutoDeduct != nil {
		jar.Settings.AutoDeduct = *input.AutoDeduct
	}
	if jar.Settings.MinimumDeposit.LessThan(decimal.NewFromFloat(0.01)) ||
		jar.Settings.MaximumDeposit.LessThan(jar.Settings.MinimumDeposit) {
		return nil, domain.ErrInvalidInput
	}

	if err := s.jarRepo.UpdateSettings(ctx, jar); err != nil {
		return nil, err
	}

	if input.SwearWords != nil {
		words := make([]models.SwearWord, 0, len(input.SwearWords))
		for _, w := range input.SwearWords {
			if strings.TrimSpace(w.Word) == "" || !w.Penalty.IsPositive() {
				continue
			}
			words = append(words, models.SwearWord{Word: w.Word, Penalty: w.Penalty})
		}
		if err := s.jarRepo.ReplaceSwearWords(ctx, jar.ID, words); err != nil {
			return nil, err
		}
	}

	return s.jarRepo.GetByID(ctx, jar.ID)
}

// Delete soft deletes a jar. Owner only, and only when the balance is zero.
func (s *JarService) Delete(ctx context.Context, actorID string, jarID uint) error {
	jar, err := s.jarRepo.GetByID(ctx, jarID)
	if err != nil {
		return err
	}
	if err := s.permissions.Require(ctx, actorID, jar, domain.CapOwner); err != nil {
		return err
	}
	if !jar.Balance.IsZero() {
		return domain.ErrJarNotEmpty
	}
	return s.jarRepo.SoftDelete(ctx, jarID)
}

// AddMemberInput represents add member input
type AddMemberInput struct {
	UserID              string `json:"user_id"`
	CanDeposit          bool   `json:"can_deposit"`
	CanWithdraw         bool   `json:"can_withdraw"`
	CanInvite           bool   `json:"can_invite"`
	CanViewTransactions bool   `json:"can_view_transactions"`
}

// AddMember adds a user to a jar. Requires the canInvite flag.
func (s *JarService) AddMember(ctx context.Context, actorID string, jarID uint, input *AddMemberInput) (*models.Membership, error) {
	jar, err := s.jarRepo.GetByID(ctx, jarID)
	if err != nil {
		return nil, err
	}
	if !jar.IsActive {
		return nil, domain.ErrNotFound
	}
	if err := s.permissions.Require(ctx, actorID, jar, domain.CapInvite); err != nil {
		return nil, err
	}
	if input.UserID == "" {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.membershipRepo.GetByJarAndUser(ctx, jarID, input.UserID); err == nil {
		return nil, domain.ErrAlreadyMember
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	membership := &models.Membership{
		JarID:               jarID,
		UserID:              input.UserID,
		Role:                string(domain.RoleMember),
		CanDeposit:          input.CanDeposit,
		CanWithdraw:         input.CanWithdraw,
		CanInvite:           input.CanInvite,
		CanViewTransactions: input.CanViewTransactions,
	}
	if err := s.membershipRepo.Create(ctx, membership); err != nil {
		return nil, err
	}
	return membership, nil
}

// RemoveMember removes a member from a jar. A member may remove
// themself (leave); removing someone else requires admin. The owner
// can never be removed.
func (s *JarService) RemoveMember(ctx context.Context, actorID string, jarID uint, userID string) error {
	jar, err := s.jarRepo.GetByID(ctx, jarID)
	if err != nil {
		return err
	}

	membership, err := s.membershipRepo.GetByJarAndUser(ctx, jarID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotAMember
		}
		return err
	}
	if membership.IsOwner() {
		return ErrOwnerImmutable
	}

	if actorID != userID {
		if err := s.permissions.Require(ctx, actorID, jar, domain.CapAdmin); err != nil {
			return err
		}
	}

	return s.membershipRepo.Delete(ctx, membership.ID)
}

// UpdateMemberInput represents role/permission change input
type UpdateMemberInput struct {
	Role                *string `json:"role,omitempty"`
	CanDeposit          *bool   `json:"can_deposit,omitempty"`
	CanWithdraw         *bool   `json:"can_withdraw,omitempty"`
	CanInvite           *bool   `json:"can_invite,omitempty"`
	CanViewTransactions *bool   `json:"can_view_transactions,omitempty"`
}

// UpdateMember changes a member's role or permission flags. Owner only.
// The owner's own membership is immutable.
func (s *JarService) UpdateMember(ctx context.Context, actorID string, jarID uint, userID string, input *UpdateMemberInput) (*models.Membership, error) {
	jar, err := s.jarRepo.GetByID(ctx, jarID)
	if err != nil {
		return nil, err
	}
	if err := s.permissions.Require(ctx, actorID, jar, domain.CapOwner); err != nil {
		return nil, err
	}

	membership, err := s.membershipRepo.GetByJarAndUser(ctx, jarID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotAMember
		}
		return nil, err
	}
	if membership.IsOwner() {
		return nil, ErrOwnerImmutable
	}

	if input.Role != nil {
		role := domain.Role(strings.ToUpper(*input.Role))
		if !role.Valid() || role == domain.RoleOwner {
			return nil, domain.ErrInvalidRole
		}
		membership.Role = string(role)
	}
	if input.CanDeposit != nil {
		membership.CanDeposit = *input.CanDeposit
	}
	if input.CanWithdraw != nil {
		membership.CanWithdraw = *input.CanWithdraw
	}
	if input.CanInvite != nil {
		membership.CanInvite = *input.CanInvite
	}
	if input.CanViewTransactions != nil {
		membership.CanViewTransactions = *input.CanViewTransactions
	}

	if err := s.membershipRepo.Update(ctx, membership); err != nil {
		return nil, err
	}
	return membership, nil
}

// ListMembers lists a jar's memberships. Requires membership.
func (s *JarService) ListMembers(ctx context.Context, actorID string, jarID uint) ([]*models.Membership, error) {
	jar, err := s.jarRepo.GetByID(ctx, jarID)
	if err != nil {
		return nil, err
	}
	if err := s.permissions.Require(ctx, actorID, jar, domain.CapMember); err != nil {
		return nil, err
	}
	return s.membershipRepo.ListByJar(ctx, jarID)
}
