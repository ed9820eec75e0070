package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"swearjar-backend/internal/core/domain"
)

// ============================================================
// Jars
// ============================================================

// Jar represents the jars table — a shared monetary pool
type Jar struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:100;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	OwnerID     string          `gorm:"size:64;not null;index" json:"owner_id"`
	Currency    string          `gorm:"size:3;not null" json:"currency"`
	Balance     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"balance"`
	Settings    JarSettings     `gorm:"embedded;embeddedPrefix:setting_" json:"settings"`
	Statistics  JarStatistics   `gorm:"embedded;embeddedPrefix:stat_" json:"statistics"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	Members    []Membership `gorm:"foreignKey:JarID" json:"members,omitempty"`
	SwearWords []SwearWord  `gorm:"foreignKey:JarID" json:"swear_words,omitempty"`
}

func (Jar) TableName() string {
	return "jars"
}

// JarSettings holds per-jar configuration, embedded in the jars table
type JarSettings struct {
	MinimumDeposit                decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"minimum_deposit"`
	MaximumDeposit                decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"maximum_deposit"`
	RequireApprovalForWithdrawals bool            `gorm:"default:false" json:"require_approval_for_withdrawals"`
	Public                        bool            `gorm:"default:false" json:"public"`
	AutoDeduct                    bool            `gorm:"default:false" json:"auto_deduct"`
}

// JarStatistics is the derived statistics view, embedded in the jars table.
// It is only ever mutated through Apply, inside the ledger's atomic
// balance-update operation.
type JarStatistics struct {
	TotalDeposits    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_deposits"`
	TotalWithdrawals decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_withdrawals"`
	TransactionCount int64           `gorm:"default:0" json:"transaction_count"`
	AverageDeposit   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"average_deposit"`
	LastActivity     *time.Time      `json:"last_activity"`
}

// Apply folds one completed balance-affecting transaction into the statistics
func (s *JarStatistics) Apply(txType string, amount decimal.Decimal, now time.Time) {
	s.TransactionCount++
	switch txType {
	case TxTypeDeposit, TxTypePenalty:
		s.TotalDeposits = s.TotalDeposits.Add(amount)
	case TxTypeWithdrawal, TxTypeRefund:
		s.TotalWithdrawals = s.TotalWithdrawals.Add(amount)
	}
	if s.TransactionCount > 0 {
		s.AverageDeposit = s.TotalDeposits.DivRound(decimal.NewFromInt(s.TransactionCount), 2)
	}
	s.LastActivity = &now
}

// SwearWord represents the jar_swear_words table — per-word penalty amounts.
// Words are stored lowercase; lookups are case-insensitive.
type SwearWord struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	JarID     uint            `gorm:"not null;uniqueIndex:idx_jar_word" json:"jar_id"`
	Word      string          `gorm:"size:100;not null;uniqueIndex:idx_jar_word" json:"word"`
	Penalty   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"penalty"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (SwearWord) TableName() string {
	return "jar_swear_words"
}

// ============================================================
// Memberships
// ============================================================

// Membership represents the memberships table — a user's role and
// permission flags within a jar. Exactly one OWNER row per jar.
type Membership struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	JarID               uint      `gorm:"not null;uniqueIndex:idx_jar_user" json:"jar_id"`
	UserID              string    `gorm:"size:64;not null;uniqueIndex:idx_jar_user;index" json:"user_id"`
	Role                string    `gorm:"size:20;not null;default:'MEMBER'" json:"role"`
	CanDeposit          bool      `gorm:"default:true" json:"can_deposit"`
	CanWithdraw         bool      `gorm:"default:false" json:"can_withdraw"`
	CanInvite           bool      `gorm:"default:false" json:"can_invite"`
	CanViewTransactions bool      `gorm:"default:true" json:"can_view_transactions"`
	JoinedAt            time.Time `gorm:"autoCreateTime" json:"joined_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Jar *Jar `gorm:"foreignKey:JarID" json:"jar,omitempty"`
}

func (Membership) TableName() string {
	return "memberships"
}

// IsOwner reports whether this membership holds the owner role
func (m *Membership) IsOwner() bool {
	return domain.Role(m.Role) == domain.RoleOwner
}

// ============================================================
// Bank Accounts
// ============================================================

// BankAccount represents the bank_accounts table — a user's linked
// external account. The linking flow itself (Plaid) is external; only
// the verification flags matter to the ledger.
type BankAccount struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	UserID             string         `gorm:"size:64;not null;index" json:"user_id"`
	InstitutionName    string         `gorm:"size:100;not null" json:"institution_name"`
	AccountName        string         `gorm:"size:100" json:"account_name"`
	Mask               string         `gorm:"size:10" json:"mask"`
	Verified           bool           `gorm:"default:false" json:"verified"`
	WithdrawalsEnabled bool           `gorm:"default:false" json:"withdrawals_enabled"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (BankAccount) TableName() string {
	return "bank_accounts"
}

// ============================================================
// Transactions
// ============================================================

// Transaction represents the transactions table — an immutable-intent
// record of a monetary event with a mutable status. Terminal statuses
// never change again; reversals are recorded as new REFUND rows.
type Transaction struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Reference     string          `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	JarID         uint            `gorm:"not null;index" json:"jar_id"`
	UserID        string          `gorm:"size:64;not null;index" json:"user_id"`
	Type          string          `gorm:"size:20;not null" json:"type"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency      string          `gorm:"size:3;not null" json:"currency"`
	Description   string          `gorm:"type:text" json:"description"`
	Status        string          `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	BankAccountID *uint           `json:"bank_account_id"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"balance_after"`
	FeeAmount     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"fee_amount"`
	FeeNote       string          `gorm:"size:200" json:"fee_note,omitempty"`
	Word          string          `gorm:"size:100" json:"word,omitempty"`
	ApprovedBy    string          `gorm:"size:64" json:"approved_by,omitempty"`
	ReversesID    *uint           `gorm:"index" json:"reverses_id,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	ProcessedAt   *time.Time      `json:"processed_at"`

	// Relations
	Jar         *Jar         `gorm:"foreignKey:JarID" json:"jar,omitempty"`
	BankAccount *BankAccount `gorm:"foreignKey:BankAccountID" json:"bank_account,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// Transaction Types
const (
	TxTypeDeposit    = "DEPOSIT"
	TxTypeWithdrawal = "WITHDRAWAL"
	TxTypePenalty    = "PENALTY"
	TxTypeTransfer   = "TRANSFER"
	TxTypeRefund     = "REFUND"
)

// Transaction Statuses
const (
	TxStatusPending   = "PENDING"
	TxStatusCompleted = "COMPLETED"
	TxStatusFailed    = "FAILED"
	TxStatusCancelled = "CANCELLED"
)

// IsTerminal reports whether the status is one of the terminal statuses
func IsTerminalStatus(status string) bool {
	return status == TxStatusCompleted || status == TxStatusFailed || status == TxStatusCancelled
}

// SignedDelta returns the signed balance effect of this transaction:
// positive for money into the jar, negative for money out.
func (t *Transaction) SignedDelta() decimal.Decimal {
	switch t.Type {
	case TxTypeWithdrawal, TxTypeRefund:
		return t.Amount.Neg()
	default:
		return t.Amount
	}
}

// IsPending reports whether the transaction is still pending
func (t *Transaction) IsPending() bool {
	return t.Status == TxStatusPending
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all ledger tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Jar{},
		&SwearWord{},
		&Membership{},
		&BankAccount{},
		&Transaction{},
	)
}
