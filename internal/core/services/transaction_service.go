package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"swearjar-backend/internal/adapters/persistence/models"
	"swearjar-backend/internal/adapters/persistence/repositories"
	"swearjar-backend/internal/core/domain"
)

// Transaction engine errors
var (
	ErrBankAccountRequired    = errors.New("withdrawal requires a linked bank account")
	ErrBankAccountNotVerified = errors.New("bank account is not verified for withdrawals")
)

// defaultPenalty is charged when a penalty word has no configured amount
var defaultPenalty = decimal.NewFromInt(1)

// minimumAmount is the smallest valid transaction amount
var minimumAmount = decimal.NewFromFloat(0.01)

// TransactionService is the state machine governing how each
// transaction type mutates jar balance. Every balance change goes
// through the ledger repository's atomic operations; this service
// decides which operation and with what preconditions.
type TransactionService struct {
	jarRepo         repositories.JarRepository
	transactionRepo repositories.TransactionRepository
	bankAccountRepo repositories.BankAccountRepository
	ledger          repositories.LedgerRepository
	permissions     *PermissionService
	settlement      *SettlementService
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	jarRepo repositories.JarRepository,
	transactionRepo repositories.TransactionRepository,
	bankAccountRepo repositories.BankAccountRepository,
	ledger repositories.LedgerRepository,
	permissions *PermissionService,
	settlement *SettlementService,
) *TransactionService {
	return &TransactionService{
		jarRepo:         jarRepo,
		transactionRepo: transactionRepo,
		bankAccountRepo: bankAccountRepo,
		ledger:          ledger,
		permissions:     permissions,
		settlement:      settlement,
	}
}

// activeJar loads a jar and rejects inactive ones
func (s *TransactionService) activeJar(ctx context.Context, jarID uint) (*models.Jar, error) {
	jar, err := s.jarRepo.GetByID(ctx, jarID)
	if err != nil {
		return nil, err
	}
	if !jar.IsActive {
		return nil, domain.ErrNotFound
	}
	return jar, nil
}

// validAmount checks the minimum currency unit
func validAmount(amount decimal.Decimal) error {
	if amount.LessThan(minimumAmount) {
		return domain.ErrInvalidAmount
	}
	return nil
}

// DepositInput represents deposit input
type DepositInput struct {
	JarID         uint            `json:"jar_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	BankAccountID *uint           `json:"bank_account_id,omitempty"`
}

// Deposit adds money to a jar. Without a bank account the balance is
// applied immediately; with one, the transaction stays pending until
// the settlement provider reports success.
func (s *TransactionService) Deposit(ctx context.Context, actorID string, input *DepositInput) (*models.Transaction, *models.Jar, error) {
	jar, err := s.activeJar(ctx, input.JarID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.permissions.Require(ctx, actorID, jar, domain.CapDeposit); err != nil {
		return nil, nil, err
	}
	if err := validAmount(input.Amount); err != nil {
		return nil, nil, err
	}
	if input.Amount.LessThan(jar.Settings.MinimumDeposit) ||
		input.Amount.GreaterThan(jar.Settings.MaximumDeposit) {
		return nil, nil, domain.ErrLimitExceeded
	}

	draft := &models.Transaction{
		Reference:   uuid.NewString(),
		JarID:       jar.ID,
		UserID:      actorID,
		Type:        models.TxTypeDeposit,
		Amount:      input.Amount,
		Currency:    jar.Currency,
		Description: input.Description,
	}

	if input.BankAccountID == nil {
		return s.ledger.Apply(ctx, draft)
	}

	account, err := s.bankAccountRepo.GetByID(ctx, *input.BankAccountID)
	if err != nil {
		return nil, nil, err
	}
	if account.UserID != actorID {
		return nil, nil, domain.ErrAccessDenied
	}

	draft.BankAccountID = &account.ID
	tx, jar, err := s.ledger.CreatePending(ctx, draft)
	if err != nil {
		return nil, nil, err
	}
	if s.settlement != nil {
		s.settlement.InitiateTransfer(tx, account)
	}
	return tx, jar, nil
}

// WithdrawInput represents withdrawal input
type WithdrawInput struct {
	JarID         uint            `json:"jar_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	BankAccountID uint            `json:"bank_account_id"`
}

// Withdraw moves money out of a jar to a verified bank account. When
// the jar requires approval the transaction stays pending with no
// balance effect; otherwise the balance is decremented immediately and
// the external leg settles asynchronously.
func (s *TransactionService) Withdraw(ctx context.Context, actorID string, input *WithdrawInput) (*models.Transaction, *models.Jar, error) {
	jar, err := s.activeJar(ctx, input.JarID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.permissions.Require(ctx, actorID, jar, domain.CapWithdraw); err != nil {
		return nil, nil, err
	}
	if err := validAmount(input.Amount); err != nil {
		return nil, nil, err
	}

	if input.BankAccountID == 0 {
		return nil, nil, ErrBankAccountRequired
	}
	account, err := s.bankAccountRepo.GetByID(ctx, input.BankAccountID)
	if err != nil {
		return nil, nil, err
	}
	if account.UserID != actorID {
		return nil, nil, domain.ErrAccessDenied
	}
	if !account.Verified || !account.WithdrawalsEnabled {
		return nil, nil, ErrBankAccountNotVerified
	}

	if jar.Balance.LessThan(input.Amount) {
		return nil, nil, domain.ErrInsufficientFunds
	}

	draft := &models.Transaction{
		Reference:     uuid.NewString(),
		JarID:         jar.ID,
		UserID:        actorID,
		Type:          models.TxTypeWithdrawal,
		Amount:        input.Amount,
		Currency:      jar.Currency,
		Description:   input.Description,
		BankAccountID: &account.ID,
	}

	if jar.Settings.RequireApprovalForWithdrawals {
		return s.ledger.CreatePending(ctx, draft)
	}

	tx, jar, err := s.ledger.Apply(ctx, draft)
	if err != nil {
		return nil, nil, err
	}
	if s.settlement != nil {
		s.settlement.InitiateTransfer(tx, account)
	}
	return tx, jar, nil
}

// Approve completes a pending withdrawal, decrementing the balance
// atomically with the status change. Requires the canWithdraw flag.
// The approver identity is recorded on the transaction.
func (s *TransactionService) Approve(ctx context.Context, actorID string, txID uint) (*models.Transaction, *models.Jar, error) {
	record, err := s.transactionRepo.GetByID(ctx, txID)
	if err != nil {
		return nil, nil, err
	}
	if record.Type != models.TxTypeWithdrawal || !record.IsPending() {
		return nil, nil, domain.ErrInvalidState
	}

	jar, err := s.activeJar(ctx, record.JarID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.permissions.Require(ctx, actorID, jar, domain.CapWithdraw); err != nil {
		return nil, nil, err
	}

	tx, jar, err := s.ledger.Transition(ctx, txID, models.TxStatusCompleted, repositories.TransitionOpts{
		ApplyBalance: true,
		ApprovedBy:   actorID,
	})
	if err != nil {
		return nil, nil, err
	}

	if s.settlement != nil && tx.BankAccountID != nil {
		if account, accErr := s.bankAccountRepo.GetByID(ctx, *tx.BankAccountID); accErr == nil {
			s.settlement.InitiateTransfer(tx, account)
		}
	}
	return tx, jar, nil
}

// Cancel cancels any pending transaction with no balance effect.
// Callable by the original actor or by anyone holding canWithdraw.
func (s *TransactionService) Cancel(ctx context.Context, actorID string, txID uint) (*models.Transaction, *models.Jar, error) {
	record, err := s.transactionRepo.GetByID(ctx, txID)
	if err != nil {
		return nil, nil, err
	}
	if !record.IsPending() {
		return nil, nil, domain.ErrInvalidState
	}

	if record.UserID != actorID {
		jar, err := s.activeJar(ctx, record.JarID)
		if err != nil {
			return nil, nil, err
		}
		if err := s.permissions.Require(ctx, actorID, jar, domain.CapWithdraw); err != nil {
			return nil, nil, err
		}
	}

	return s.ledger.Transition(ctx, txID, models.TxStatusCancelled, repositories.TransitionOpts{})
}

// PenaltyInput represents penalty input
type PenaltyInput struct {
	JarID       uint             `json:"jar_id"`
	Word        string           `json:"word"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description string           `json:"description,omitempty"`
}

// Penalty charges a rule-violation penalty into the jar. Any member
// may trigger one; it always completes immediately. The amount comes
// from the explicit input, the jar's per-word table (case-insensitive),
// or the flat default, in that order.
func (s *TransactionService) Penalty(ctx context.Context, actorID string, input *PenaltyInput) (*models.Transaction, *models.Jar, error) {
	jar, err := s.activeJar(ctx, input.JarID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.permissions.Require(ctx, actorID, jar, domain.CapMember); err != nil {
		return nil, nil, err
	}

	amount := defaultPenalty
	switch {
	case input.Amount != nil:
		amount = *input.Amount
	case input.Word != "":
		if sw, err := s.jarRepo.GetSwearWord(ctx, jar.ID, input.Word); err == nil {
			amount = sw.Penalty
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, nil, err
		}
	}
	if err := validAmount(amount); err != nil {
		return nil, nil, err
	}

	draft := &models.Transaction{
		Reference:   uuid.NewString(),
		JarID:       jar.ID,
		UserID:      actorID,
		Type:        models.TxTypePenalty,
		Amount:      amount,
		Currency:    jar.Currency,
		Description: input.Description,
		Word:        input.Word,
	}
	return s.ledger.Apply(ctx, draft)
}

// Reverse creates a compensating REFUND transaction for a completed
// deposit or penalty. The new transaction carries the inverse balance
// effect and references the original, which is never edited.
func (s *TransactionService) Reverse(ctx context.Context, actorID string, txID uint, description string) (*models.Transaction, *models.Jar, error) {
	original, err := s.transactionRepo.GetByID(ctx, txID)
	if err != nil {
		return nil, nil, err
	}
	if original.Status != models.TxStatusCompleted {
		return nil, nil, domain.ErrInvalidState
	}
	if original.Type != models.TxTypeDeposit && original.Type != models.TxTypePenalty {
		return nil, nil, domain.ErrInvalidState
	}

	jar, err := s.activeJar(ctx, original.JarID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.permissions.Require(ctx, actorID, jar, domain.CapWithdraw); err != nil {
		return nil, nil, err
	}

	draft := &models.Transaction{
		Reference:   uuid.NewString(),
		JarID:       jar.ID,
		UserID:      actorID,
		Type:        models.TxTypeRefund,
		Amount:      original.Amount,
		Currency:    original.Currency,
		Description: description,
		ReversesID:  &original.ID,
	}
	return s.ledger.Apply(ctx, draft)
}

// CompleteSettlement is the settlement provider's success re-entry for
// a bank-backed pending deposit: the deferred balance adjustment
// happens atomically with the status change.
func (s *TransactionService) CompleteSettlement(ctx context.Context, reference string) (*models.Transaction, *models.Jar, error) {
	record, err := s.transactionRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, nil, err
	}
	if record.BankAccountID == nil || record.Type != models.TxTypeDeposit {
		return nil, nil, domain.ErrInvalidState
	}
	return s.ledger.Transition(ctx, record.ID, models.TxStatusCompleted, repositories.TransitionOpts{
		ApplyBalance: true,
	})
}

// FailSettlement is the settlement provider's failure re-entry: the
// transaction moves to FAILED with no balance effect and no retry here.
func (s *TransactionService) FailSettlement(ctx context.Context, reference string) (*models.Transaction, *models.Jar, error) {
	record, err := s.transactionRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, nil, err
	}
	if record.BankAccountID == nil {
		return nil, nil, domain.ErrInvalidState
	}
	return s.ledger.Transition(ctx, record.ID, models.TxStatusFailed, repositories.TransitionOpts{})
}

// History lists a jar's transactions. Requires canViewTransactions.
func (s *TransactionService) History(ctx context.Context, actorID string, jarID uint, offset, limit int) ([]*models.Transaction, int64, error) {
	jar, err := s.jarRepo.GetByID(ctx, jarID)
	if err != nil {
		return nil, 0, err
	}
	if err := s.permissions.Require(ctx, actorID, jar, domain.CapViewTransactions); err != nil {
		return nil, 0, err
	}
	return s.transactionRepo.ListByJar(ctx, jarID, offset, limit)
}

// Get returns a single transaction visible to the actor
func (s *TransactionService) Get(ctx context.Context, actorID string, txID uint) (*models.Transaction, error) {
	record, err := s.transactionRepo.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	jar, err := s.jarRepo.GetByID(ctx, record.JarID)
	if err != nil {
		return nil, err
	}
	if err := s.permissions.Require(ctx, actorID, jar, domain.CapViewTransactions); err != nil {
		return nil, err
	}
	return record, nil
}
