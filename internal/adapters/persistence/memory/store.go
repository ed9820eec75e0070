// Package memory provides an in-memory implementation of the
// persistence interfaces. It backs the service tests and the
// STORAGE_DRIVER=memory dev mode, where no MySQL instance is available.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"swearjar-backend/internal/adapters/persistence/models"
	"swearjar-backend/internal/adapters/persistence/repositories"
	"swearjar-backend/internal/core/domain"
)

// Store holds all ledger state behind a single mutex. Holding one lock
// for every balance mutation trivially satisfies the per-jar
// serialization requirement.
type Store struct {
	mu sync.Mutex

	jars         map[uint]*models.Jar
	memberships  map[uint]*models.Membership
	transactions map[uint]*models.Transaction
	bankAccounts map[uint]*models.BankAccount
	swearWords   map[uint][]*models.SwearWord

	nextJarID         uint
	nextMembershipID  uint
	nextTransactionID uint
	nextBankAccountID uint
	nextSwearWordID   uint
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		jars:         make(map[uint]*models.Jar),
		memberships:  make(map[uint]*models.Membership),
		transactions: make(map[uint]*models.Transaction),
		bankAccounts: make(map[uint]*models.BankAccount),
		swearWords:   make(map[uint][]*models.SwearWord),
	}
}

// Typed repository views sharing the same store and lock
func (s *Store) Jars() repositories.JarRepository                  { return jarRepo{s} }
func (s *Store) Memberships() repositories.MembershipRepository    { return membershipRepo{s} }
func (s *Store) Transactions() repositories.TransactionRepository  { return transactionRepo{s} }
func (s *Store) BankAccounts() repositories.BankAccountRepository  { return bankAccountRepo{s} }
func (s *Store) Ledger() repositories.LedgerRepository             { return ledgerRepo{s} }

// ============================================================
// JarRepository
// ============================================================

type jarRepo struct{ s *Store }

func (r jarRepo) CreateWithOwner(_ context.Context, jar *models.Jar, owner *models.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextJarID++
	jar.ID = r.s.nextJarID
	jar.CreatedAt = time.Now()
	cp := *jar
	r.s.jars[jar.ID] = &cp

	r.s.nextMembershipID++
	owner.ID = r.s.nextMembershipID
	owner.JarID = jar.ID
	owner.JoinedAt = time.Now()
	mcp := *owner
	r.s.memberships[owner.ID] = &mcp
	return nil
}

func (r jarRepo) GetByID(_ context.Context, id uint) (*models.Jar, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	jar, ok := r.s.jars[id]
	if !ok || jar.DeletedAt.Valid {
		return nil, domain.ErrNotFound
	}
	cp := *jar
	for _, sw := range r.s.swearWords[id] {
		cp.SwearWords = append(cp.SwearWords, *sw)
	}
	return &cp, nil
}

func (r jarRepo) ListByUser(_ context.Context, userID string, offset, limit int) ([]*models.Jar, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var all []*models.Jar
	for _, m := range r.s.memberships {
		if m.UserID != userID {
			continue
		}
		if jar, ok := r.s.jars[m.JarID]; ok && jar.IsActive && !jar.DeletedAt.Valid {
			cp := *jar
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, offset, limit)
}

func (r jarRepo) UpdateSettings(_ context.Context, jar *models.Jar) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.jars[jar.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Name = jar.Name
	stored.Description = jar.Description
	stored.Settings = jar.Settings
	return nil
}

func (r jarRepo) SoftDelete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	jar, ok := r.s.jars[id]
	if !ok {
		return domain.ErrNotFound
	}
	jar.IsActive = false
	jar.DeletedAt.Time = time.Now()
	jar.DeletedAt.Valid = true
	return nil
}

func (r jarRepo) ReplaceSwearWords(_ context.Context, jarID uint, words []models.SwearWord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.swearWords[jarID] = nil
	for i := range words {
		r.s.nextSwearWordID++
		sw := words[i]
		sw.ID = r.s.nextSwearWordID
		sw.JarID = jarID
		sw.Word = strings.ToLower(sw.Word)
		r.s.swearWords[jarID] = append(r.s.swearWords[jarID], &sw)
	}
	return nil
}

func (r jarRepo) GetSwearWord(_ context.Context, jarID uint, word string) (*models.SwearWord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	needle := strings.ToLower(word)
	for _, sw := range r.s.swearWords[jarID] {
		if sw.Word == needle {
			cp := *sw
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r jarRepo) ListSwearWords(_ context.Context, jarID uint) ([]*models.SwearWord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*models.SwearWord
	for _, sw := range r.s.swearWords[jarID] {
		cp := *sw
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	return out, nil
}

// ============================================================
// MembershipRepository
// ============================================================

type membershipRepo struct{ s *Store }

func (r membershipRepo) Create(_ context.Context, m *models.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextMembershipID++
	m.ID = r.s.nextMembershipID
	m.JoinedAt = time.Now()
	cp := *m
	r.s.memberships[m.ID] = &cp
	return nil
}

func (r membershipRepo) GetByJarAndUser(_ context.Context, jarID uint, userID string) (*models.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, m := range r.s.memberships {
		if m.JarID == jarID && m.UserID == userID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r membershipRepo) ListByJar(_ context.Context, jarID uint) ([]*models.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*models.Membership
	for _, m := range r.s.memberships {
		if m.JarID == jarID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (r membershipRepo) Update(_ context.Context, m *models.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.memberships[m.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *m
	r.s.memberships[m.ID] = &cp
	return nil
}

func (r membershipRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.memberships[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.memberships, id)
	return nil
}

// ============================================================
// TransactionRepository
// ============================================================

type transactionRepo struct{ s *Store }

func (r transactionRepo) GetByID(_ context.Context, id uint) (*models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tx, ok := r.s.transactions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *tx
	return &cp, nil
}

func (r transactionRepo) GetByReference(_ context.Context, reference string) (*models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, tx := range r.s.transactions {
		if tx.Reference == reference {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r transactionRepo) ListByJar(_ context.Context, jarID uint, offset, limit int) ([]*models.Transaction, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var all []*models.Transaction
	for _, tx := range r.s.transactions {
		if tx.JarID == jarID {
			cp := *tx
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return page(all, offset, limit)
}

func (r transactionRepo) ListStalePending(_ context.Context, olderThan time.Time) ([]*models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*models.Transaction
	for _, tx := range r.s.transactions {
		if tx.Status == models.TxStatusPending && tx.CreatedAt.Before(olderThan) {
			cp := *tx
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ============================================================
// LedgerRepository
// ============================================================

type ledgerRepo struct{ s *Store }

func (r ledgerRepo) Apply(_ context.Context, draft *models.Transaction) (*models.Transaction, *models.Jar, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	jar, ok := r.s.jars[draft.JarID]
	if !ok || !jar.IsActive || jar.DeletedAt.Valid {
		return nil, nil, domain.ErrNotFound
	}

	newBalance := jar.Balance.Add(draft.SignedDelta())
	if newBalance.IsNegative() {
		return nil, nil, domain.ErrInsufficientFunds
	}

	now := time.Now()
	jar.Balance = newBalance
	jar.Statistics.Apply(draft.Type, draft.Amount, now)

	r.s.nextTransactionID++
	draft.ID = r.s.nextTransactionID
	draft.Status = models.TxStatusCompleted
	draft.BalanceAfter = newBalance
	draft.CreatedAt = now
	draft.ProcessedAt = &now

	cp := *draft
	r.s.transactions[draft.ID] = &cp

	jcp := *jar
	return draft, &jcp, nil
}

func (r ledgerRepo) CreatePending(_ context.Context, draft *models.Transaction) (*models.Transaction, *models.Jar, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	jar, ok := r.s.jars[draft.JarID]
	if !ok || !jar.IsActive || jar.DeletedAt.Valid {
		return nil, nil, domain.ErrNotFound
	}

	r.s.nextTransactionID++
	draft.ID = r.s.nextTransactionID
	draft.Status = models.TxStatusPending
	draft.BalanceAfter = jar.Balance.Add(draft.SignedDelta())
	draft.CreatedAt = time.Now()

	cp := *draft
	r.s.transactions[draft.ID] = &cp

	jcp := *jar
	return draft, &jcp, nil
}

func (r ledgerRepo) Transition(_ context.Context, txID uint, newStatus string, opts repositories.TransitionOpts) (*models.Transaction, *models.Jar, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	record, ok := r.s.transactions[txID]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	if !record.IsPending() {
		return nil, nil, domain.ErrInvalidState
	}

	jar, ok := r.s.jars[record.JarID]
	if !ok || !jar.IsActive || jar.DeletedAt.Valid {
		return nil, nil, domain.ErrNotFound
	}

	now := time.Now()

	if opts.ApplyBalance {
		newBalance := jar.Balance.Add(record.SignedDelta())
		if newBalance.IsNegative() {
			return nil, nil, domain.ErrInsufficientFunds
		}
		jar.Balance = newBalance
		jar.Statistics.Apply(record.Type, record.Amount, now)
		record.BalanceAfter = newBalance
	}

	record.Status = newStatus
	record.ProcessedAt = &now
	if opts.ApprovedBy != "" {
		record.ApprovedBy = opts.ApprovedBy
	}

	tcp := *record
	jcp := *jar
	return &tcp, &jcp, nil
}

// ============================================================
// BankAccountRepository
// ============================================================

type bankAccountRepo struct{ s *Store }

func (r bankAccountRepo) Create(_ context.Context, account *models.BankAccount) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextBankAccountID++
	account.ID = r.s.nextBankAccountID
	account.CreatedAt = time.Now()
	cp := *account
	r.s.bankAccounts[account.ID] = &cp
	return nil
}

func (r bankAccountRepo) GetByID(_ context.Context, id uint) (*models.BankAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	account, ok := r.s.bankAccounts[id]
	if !ok || account.DeletedAt.Valid {
		return nil, domain.ErrNotFound
	}
	cp := *account
	return &cp, nil
}

func (r bankAccountRepo) ListByUser(_ context.Context, userID string) ([]*models.BankAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*models.BankAccount
	for _, a := range r.s.bankAccounts {
		if a.UserID == userID && !a.DeletedAt.Valid {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r bankAccountRepo) Update(_ context.Context, account *models.BankAccount) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.bankAccounts[account.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *account
	r.s.bankAccounts[account.ID] = &cp
	return nil
}

func (r bankAccountRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	account, ok := r.s.bankAccounts[id]
	if !ok {
		return domain.ErrNotFound
	}
	account.DeletedAt.Time = time.Now()
	account.DeletedAt.Valid = true
	return nil
}

// page applies offset/limit slicing and returns the pre-slice total
func page[T any](all []T, offset, limit int) ([]T, int64, error) {
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}
