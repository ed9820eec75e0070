package services

import (
	"context"
	"strings"

	"swearjar-backend/internal/adapters/persistence/models"
	"swearjar-backend/internal/adapters/persistence/repositories"
	"swearjar-backend/internal/core/domain"
)

// BankAccountService manages linked bank account records. The actual
// linking flow (OAuth, institution selection) happens in the external
// provider; this service only stores the resulting record and its
// verification flags.
type BankAccountService struct {
	bankAccountRepo repositories.BankAccountRepository
}

// NewBankAccountService creates a new bank account service
func NewBankAccountService(bankAccountRepo repositories.BankAccountRepository) *BankAccountService {
	return &BankAccountService{bankAccountRepo: bankAccountRepo}
}

// LinkInput represents link bank account input
type LinkInput struct {
	InstitutionName string `json:"institution_name"`
	AccountName     string `json:"account_name,omitempty"`
	Mask            string `json:"mask,omitempty"`
}

// Link records a newly linked bank account, unverified
func (s *BankAccountService) Link(ctx context.Context, userID string, input *LinkInput) (*models.BankAccount, error) {
	if strings.TrimSpace(input.InstitutionName) == "" {
		return nil, domain.ErrInvalidInput
	}

	account := &models.BankAccount{
		UserID:          userID,
		InstitutionName: strings.TrimSpace(input.InstitutionName),
		AccountName:     input.AccountName,
		Mask:            input.Mask,
	}
	if err := s.bankAccountRepo.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// List lists the user's linked bank accounts
func (s *BankAccountService) List(ctx context.Context, userID string) ([]*models.BankAccount, error) {
	return s.bankAccountRepo.ListByUser(ctx, userID)
}

// MarkVerified records the provider's verification outcome for an
// account. WithdrawalsEnabled requires a separate, stricter provider
// check and is reported independently.
func (s *BankAccountService) MarkVerified(ctx context.Context, userID string, accountID uint, withdrawalsEnabled bool) (*models.BankAccount, error) {
	account, err := s.bankAccountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, domain.ErrAccessDenied
	}

	account.Verified = true
	account.WithdrawalsEnabled = withdrawalsEnabled
	if err := s.bankAccountRepo.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Unlink removes a linked bank account
func (s *BankAccountService) Unlink(ctx context.Context, userID string, accountID uint) error {
	account, err := s.bankAccountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.UserID != userID {
		return domain.ErrAccessDenied
	}
	return s.bankAccountRepo.Delete(ctx, accountID)
}
