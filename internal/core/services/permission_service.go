package services

import (
	"context"
	"errors"

	"swearjar-backend/internal/adapters/persistence/models"
	"swearjar-backend/internal/adapters/persistence/repositories"
	"swearjar-backend/internal/core/domain"
)

// PermissionService resolves whether an actor may perform an operation
// against a jar. All role-and-flag rules live here; no other component
// inspects membership rows for authorization.
type PermissionService struct {
	membershipRepo repositories.MembershipRepository
}

// NewPermissionService creates a new permission service
func NewPermissionService(membershipRepo repositories.MembershipRepository) *PermissionService {
	return &PermissionService{membershipRepo: membershipRepo}
}

// Authorize reports whether the actor holds the required capability on
// the jar. The jar owner passes every check. A missing membership is
// an ordinary false, not an error.
func (s *PermissionService) Authorize(ctx context.Context, actorID string, jar *models.Jar, capability domain.Capability) (bool, error) {
	if jar.OwnerID == actorID {
		return true, nil
	}

	membership, err := s.membershipRepo.GetByJarAndUser(ctx, jar.ID, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	switch capability {
	case domain.CapMember:
		return true, nil
	case domain.CapDeposit:
		return membership.CanDeposit, nil
	case domain.CapWithdraw:
		return membership.CanWithdraw, nil
	case domain.CapInvite:
		return membership.CanInvite, nil
	case domain.CapViewTransactions:
		return membership.CanViewTransactions, nil
	case domain.CapAdmin:
		return domain.Role(membership.Role).Rank() >= domain.RoleAdmin.Rank(), nil
	case domain.CapOwner:
		return domain.Role(membership.Role).Rank() >= domain.RoleOwner.Rank(), nil
	default:
		return false, nil
	}
}

// Require is Authorize with the access-denied translation applied
func (s *PermissionService) Require(ctx context.Context, actorID string, jar *models.Jar, capability domain.Capability) error {
	ok, err := s.Authorize(ctx, actorID, jar, capability)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrAccessDenied
	}
	return nil
}
