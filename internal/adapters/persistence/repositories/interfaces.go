package repositories

import (
	"context"
	"time"

	"swearjar-backend/internal/adapters/persistence/models"
)

// JarRepository defines jar data access
type JarRepository interface {
	CreateWithOwner(ctx context.Context, jar *models.Jar, owner *models.Membership) error
	GetByID(ctx context.Context, id uint) (*models.Jar, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*models.Jar, int64, error)
	UpdateSettings(ctx context.Context, jar *models.Jar) error
	SoftDelete(ctx context.Context, id uint) error
	ReplaceSwearWords(ctx context.Context, jarID uint, words []models.SwearWord) error
	GetSwearWord(ctx context.Context, jarID uint, word string) (*models.SwearWord, error)
	ListSwearWords(ctx context.Context, jarID uint) ([]*models.SwearWord, error)
}

// MembershipRepository defines membership data access
type MembershipRepository interface {
	Create(ctx context.Context, m *models.Membership) error
	GetByJarAndUser(ctx context.Context, jarID uint, userID string) (*models.Membership, error)
	ListByJar(ctx context.Context, jarID uint) ([]*models.Membership, error)
	Update(ctx context.Context, m *models.Membership) error
	Delete(ctx context.Context, id uint) error
}

// TransactionRepository defines read access to the transaction log
type TransactionRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Transaction, error)
	GetByReference(ctx context.Context, reference string) (*models.Transaction, error)
	ListByJar(ctx context.Context, jarID uint, offset, limit int) ([]*models.Transaction, int64, error)
	ListStalePending(ctx context.Context, olderThan time.Time) ([]*models.Transaction, error)
}

// BankAccountRepository defines linked bank account data access
type BankAccountRepository interface {
	Create(ctx context.Context, account *models.BankAccount) error
	GetByID(ctx context.Context, id uint) (*models.BankAccount, error)
	ListByUser(ctx context.Context, userID string) ([]*models.BankAccount, error)
	Update(ctx context.Context, account *models.BankAccount) error
	Delete(ctx context.Context, id uint) error
}

// TransitionOpts controls how a pending transaction is moved to a
// terminal status
type TransitionOpts struct {
	// ApplyBalance applies the transaction's deferred balance delta
	// (and statistics update) atomically with the status change
	ApplyBalance bool
	// ApprovedBy records the approver identity on approval paths
	ApprovedBy string
}

// LedgerRepository is the single write path for jar balances. All
// balance mutations go through Apply or Transition; no other component
// writes jar.balance.
type LedgerRepository interface {
	// Apply inserts a completed transaction and adjusts the jar balance
	// and statistics in one atomic unit. Calls for the same jar
	// serialize; the balance never goes negative.
	Apply(ctx context.Context, draft *models.Transaction) (*models.Transaction, *models.Jar, error)

	// CreatePending inserts a pending transaction with an optimistic
	// balance_after snapshot and no balance effect.
	CreatePending(ctx context.Context, draft *models.Transaction) (*models.Transaction, *models.Jar, error)

	// Transition moves a pending transaction to a terminal status,
	// performing the deferred balance adjustment when opts.ApplyBalance
	// is set. Transitioning an already-terminal transaction fails with
	// domain.ErrInvalidState.
	Transition(ctx context.Context, txID uint, newStatus string, opts TransitionOpts) (*models.Transaction, *models.Jar, error)
}
