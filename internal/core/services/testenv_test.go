package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"swearjar-backend/internal/adapters/persistence/memory"
	"swearjar-backend/internal/adapters/persistence/models"
)

// testEnv wires the services against the in-memory store
type testEnv struct {
	store        *memory.Store
	permissions  *PermissionService
	jars         *JarService
	transactions *TransactionService
	bankAccounts *BankAccountService
	stats        *StatsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	permissions := NewPermissionService(store.Memberships())
	return &testEnv{
		store:       store,
		permissions: permissions,
		jars:        NewJarService(store.Jars(), store.Memberships(), permissions),
		transactions: NewTransactionService(
			store.Jars(),
			store.Transactions(),
			store.BankAccounts(),
			store.Ledger(),
			permissions,
			NewSettlementService(),
		),
		bankAccounts: NewBankAccountService(store.BankAccounts()),
		stats:        NewStatsService(store.Jars(), store.Memberships(), store.Transactions(), permissions),
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (e *testEnv) createJar(t *testing.T, owner string, requireApproval bool) *models.Jar {
	t.Helper()
	jar, err := e.jars.Create(context.Background(), owner, &CreateJarInput{
		Name:                          "Office Swear Jar",
		Currency:                      "USD",
		RequireApprovalForWithdrawals: requireApproval,
		SwearWords: []SwearWordInput{
			{Word: "dang", Penalty: dec("2.50")},
		},
	})
	if err != nil {
		t.Fatalf("Failed to create jar: %v", err)
	}
	return jar
}

func (e *testEnv) addMember(t *testing.T, owner string, jarID uint, input *AddMemberInput) *models.Membership {
	t.Helper()
	m, err := e.jars.AddMember(context.Background(), owner, jarID, input)
	if err != nil {
		t.Fatalf("Failed to add member %s: %v", input.UserID, err)
	}
	return m
}

func (e *testEnv) verifiedAccount(t *testing.T, userID string) *models.BankAccount {
	t.Helper()
	ctx := context.Background()
	account, err := e.bankAccounts.Link(ctx, userID, &LinkInput{
		InstitutionName: "Test Credit Union",
		Mask:            "1234",
	})
	if err != nil {
		t.Fatalf("Failed to link bank account: %v", err)
	}
	account, err = e.bankAccounts.MarkVerified(ctx, userID, account.ID, true)
	if err != nil {
		t.Fatalf("Failed to verify bank account: %v", err)
	}
	return account
}

func (e *testEnv) deposit(t *testing.T, userID string, jarID uint, amount string) *models.Transaction {
	t.Helper()
	tx, _, err := e.transactions.Deposit(context.Background(), userID, &DepositInput{
		JarID:  jarID,
		Amount: dec(amount),
	})
	if err != nil {
		t.Fatalf("Failed to deposit %s: %v", amount, err)
	}
	return tx
}

func (e *testEnv) jarBalance(t *testing.T, jarID uint) decimal.Decimal {
	t.Helper()
	jar, err := e.store.Jars().GetByID(context.Background(), jarID)
	if err != nil {
		t.Fatalf("Failed to reload jar: %v", err)
	}
	return jar.Balance
}
