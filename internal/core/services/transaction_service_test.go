package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"swearjar-backend/internal/adapters/persistence/models"
	"swearjar-backend/internal/core/domain"
)

func TestDepositCompletesImmediately(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)

	tx, updated, err := env.transactions.Deposit(context.Background(), "alice", &DepositInput{
		JarID:  jar.ID,
		Amount: dec("25.00"),
	})
	if err != nil {
		t.Fatalf("Failed to deposit: %v", err)
	}
	if tx.Status != models.TxStatusCompleted {
		t.Fatalf("Expected status COMPLETED, got %s", tx.Status)
	}
	if !tx.BalanceAfter.Equal(dec("25.00")) {
		t.Fatalf("Expected balance_after 25.00, got %s", tx.BalanceAfter)
	}
	if tx.ProcessedAt == nil {
		t.Fatal("Expected processed_at to be set")
	}
	if !updated.Balance.Equal(dec("25.00")) {
		t.Fatalf("Expected jar balance 25.00, got %s", updated.Balance)
	}
	if updated.Statistics.TransactionCount != 1 {
		t.Fatalf("Expected transaction count 1, got %d", updated.Statistics.TransactionCount)
	}
	if !updated.Statistics.TotalDeposits.Equal(dec("25.00")) {
		t.Fatalf("Expected total deposits 25.00, got %s", updated.Statistics.TotalDeposits)
	}
}

func TestDepositRejectsAmountOutsideLimits(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)

	_, _, err := env.transactions.Deposit(context.Background(), "alice", &DepositInput{
		JarID:  jar.ID,
		Amount: dec("1500.00"),
	})
	if !errors.Is(err, domain.ErrLimitExceeded) {
		t.Fatalf("Expected ErrLimitExceeded, got %v", err)
	}

	_, _, err = env.transactions.Deposit(context.Background(), "alice", &DepositInput{
		JarID:  jar.ID,
		Amount: dec("0.001"),
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("Expected ErrInvalidAmount, got %v", err)
	}
	if !env.jarBalance(t, jar.ID).IsZero() {
		t.Fatal("Rejected deposits must not change the balance")
	}
}

func TestDepositRequiresPermission(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	env.addMember(t, "alice", jar.ID, &AddMemberInput{UserID: "bob", CanDeposit: false})

	_, _, err := env.transactions.Deposit(context.Background(), "bob", &DepositInput{
		JarID:  jar.ID,
		Amount: dec("5.00"),
	})
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("Expected ErrAccessDenied for member without canDeposit, got %v", err)
	}

	_, _, err = env.transactions.Deposit(context.Background(), "stranger", &DepositInput{
		JarID:  jar.ID,
		Amount: dec("5.00"),
	})
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("Expected ErrAccessDenied for non-member, got %v", err)
	}
}

func TestPenaltyUsesWordTableCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	env.addMember(t, "alice", jar.ID, &AddMemberInput{UserID: "bob", CanDeposit: true})

	tx, updated, err := env.transactions.Penalty(context.Background(), "bob", &PenaltyInput{
		JarID: jar.ID,
		Word:  "DANG",
	})
	if err != nil {
		t.Fatalf("Failed to charge penalty: %v", err)
	}
	if !tx.Amount.Equal(dec("2.50")) {
		t.Fatalf("Expected configured penalty 2.50, got %s", tx.Amount)
	}
	if tx.Word != "DANG" {
		t.Fatalf("Expected word to be recorded, got %q", tx.Word)
	}
	if !updated.Balance.Equal(dec("2.50")) {
		t.Fatalf("Expected jar balance 2.50, got %s", updated.Balance)
	}
}

func TestPenaltyFallsBackToDefault(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)

	tx, _, err := env.transactions.Penalty(context.Background(), "alice", &PenaltyInput{
		JarID: jar.ID,
		Word:  "heck",
	})
	if err != nil {
		t.Fatalf("Failed to charge penalty: %v", err)
	}
	if !tx.Amount.Equal(dec("1.00")) {
		t.Fatalf("Expected default penalty 1.00, got %s", tx.Amount)
	}
}

func TestPenaltyExplicitAmountWins(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)

	amount := dec("3.75")
	tx, _, err := env.transactions.Penalty(context.Background(), "alice", &PenaltyInput{
		JarID:  jar.ID,
		Word:   "dang",
		Amount: &amount,
	})
	if err != nil {
		t.Fatalf("Failed to charge penalty: %v", err)
	}
	if !tx.Amount.Equal(dec("3.75")) {
		t.Fatalf("Expected explicit amount 3.75, got %s", tx.Amount)
	}
}

func TestWithdrawalApprovalFlow(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", true)
	env.deposit(t, "alice", jar.ID, "27.50")
	account := env.verifiedAccount(t, "alice")

	pending, _, err := env.transactions.Withdraw(context.Background(), "alice", &WithdrawInput{
		JarID:         jar.ID,
		Amount:        dec("10.00"),
		BankAccountID: account.ID,
	})
	if err != nil {
		t.Fatalf("Failed to request withdrawal: %v", err)
	}
	if pending.Status != models.TxStatusPending {
		t.Fatalf("Expected status PENDING, got %s", pending.Status)
	}
	if !env.jarBalance(t, jar.ID).Equal(dec("27.50")) {
		t.Fatal("Pending withdrawal must not change the balance")
	}

	approved, updated, err := env.transactions.Approve(context.Background(), "alice", pending.ID)
	if err != nil {
		t.Fatalf("Failed to approve withdrawal: %v", err)
	}
	if approved.Status != models.TxStatusCompleted {
		t.Fatalf("Expected status COMPLETED, got %s", approved.Status)
	}
	if approved.ApprovedBy != "alice" {
		t.Fatalf("Expected approver to be recorded, got %q", approved.ApprovedBy)
	}
	if !approved.BalanceAfter.Equal(dec("17.50")) {
		t.Fatalf("Expected balance_after 17.50, got %s", approved.BalanceAfter)
	}
	if !updated.Balance.Equal(dec("17.50")) {
		t.Fatalf("Expected jar balance 17.50, got %s", updated.Balance)
	}

	// Terminal transactions cannot transition again
	if _, _, err := env.transactions.Approve(context.Background(), "alice", pending.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState on double approve, got %v", err)
	}
}

func TestWithdrawalWithoutApprovalAppliesImmediately(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	env.deposit(t, "alice", jar.ID, "20.00")
	account := env.verifiedAccount(t, "alice")

	tx, updated, err := env.transactions.Withdraw(context.Background(), "alice", &WithdrawInput{
		JarID:         jar.ID,
		Amount:        dec("6.00"),
		BankAccountID: account.ID,
	})
	if err != nil {
		t.Fatalf("Failed to withdraw: %v", err)
	}
	if tx.Status != models.TxStatusCompleted {
		t.Fatalf("Expected status COMPLETED, got %s", tx.Status)
	}
	if !updated.Balance.Equal(dec("14.00")) {
		t.Fatalf("Expected jar balance 14.00, got %s", updated.Balance)
	}
	if !updated.Statistics.TotalWithdrawals.Equal(dec("6.00")) {
		t.Fatalf("Expected total withdrawals 6.00, got %s", updated.Statistics.TotalWithdrawals)
	}
}

func TestWithdrawalRejectsOverdraft(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	env.deposit(t, "alice", jar.ID, "5.00")
	account := env.verifiedAccount(t, "alice")

	_, _, err := env.transactions.Withdraw(context.Background(), "alice", &WithdrawInput{
		JarID:         jar.ID,
		Amount:        dec("10.00"),
		BankAccountID: account.ID,
	})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}
	if !env.jarBalance(t, jar.ID).Equal(dec("5.00")) {
		t.Fatal("Rejected withdrawal must not change the balance")
	}
}

func TestWithdrawalRequiresVerifiedBankAccount(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	env.deposit(t, "alice", jar.ID, "20.00")

	_, _, err := env.transactions.Withdraw(context.Background(), "alice", &WithdrawInput{
		JarID:  jar.ID,
		Amount: dec("5.00"),
	})
	if !errors.Is(err, ErrBankAccountRequired) {
		t.Fatalf("Expected ErrBankAccountRequired, got %v", err)
	}

	account, err := env.bankAccounts.Link(context.Background(), "alice", &LinkInput{InstitutionName: "Test Credit Union"})
	if err != nil {
		t.Fatalf("Failed to link bank account: %v", err)
	}
	_, _, err = env.transactions.Withdraw(context.Background(), "alice", &WithdrawInput{
		JarID:         jar.ID,
		Amount:        dec("5.00"),
		BankAccountID: account.ID,
	})
	if !errors.Is(err, ErrBankAccountNotVerified) {
		t.Fatalf("Expected ErrBankAccountNotVerified, got %v", err)
	}
}

func TestCancelPendingWithdrawal(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", true)
	env.deposit(t, "alice", jar.ID, "15.00")
	account := env.verifiedAccount(t, "alice")

	pending, _, err := env.transactions.Withdraw(context.Background(), "alice", &WithdrawInput{
		JarID:         jar.ID,
		Amount:        dec("10.00"),
		BankAccountID: account.ID,
	})
	if err != nil {
		t.Fatalf("Failed to request withdrawal: %v", err)
	}

	cancelled, updated, err := env.transactions.Cancel(context.Background(), "alice", pending.ID)
	if err != nil {
		t.Fatalf("Failed to cancel: %v", err)
	}
	if cancelled.Status != models.TxStatusCancelled {
		t.Fatalf("Expected status CANCELLED, got %s", cancelled.Status)
	}
	if !updated.Balance.Equal(dec("15.00")) {
		t.Fatalf("Cancel must not change the balance, got %s", updated.Balance)
	}

	if _, _, err := env.transactions.Approve(context.Background(), "alice", pending.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState approving a cancelled transaction, got %v", err)
	}
}

func TestReverseCreatesCompensatingRefund(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	original := env.deposit(t, "alice", jar.ID, "25.00")

	refund, updated, err := env.transactions.Reverse(context.Background(), "alice", original.ID, "charged twice")
	if err != nil {
		t.Fatalf("Failed to reverse: %v", err)
	}
	if refund.Type != models.TxTypeRefund {
		t.Fatalf("Expected type REFUND, got %s", refund.Type)
	}
	if refund.ReversesID == nil || *refund.ReversesID != original.ID {
		t.Fatal("Refund must reference the original transaction")
	}
	if !updated.Balance.IsZero() {
		t.Fatalf("Expected jar balance 0, got %s", updated.Balance)
	}

	// The original row is never edited
	reloaded, err := env.store.Transactions().GetByID(context.Background(), original.ID)
	if err != nil {
		t.Fatalf("Failed to reload original: %v", err)
	}
	if reloaded.Status != models.TxStatusCompleted {
		t.Fatalf("Original must stay COMPLETED, got %s", reloaded.Status)
	}
	if !reloaded.BalanceAfter.Equal(dec("25.00")) {
		t.Fatalf("Original balance_after must be untouched, got %s", reloaded.BalanceAfter)
	}
}

func TestReverseRejectsNonRefundableTransactions(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	env.deposit(t, "alice", jar.ID, "20.00")
	account := env.verifiedAccount(t, "alice")

	withdrawal, _, err := env.transactions.Withdraw(context.Background(), "alice", &WithdrawInput{
		JarID:         jar.ID,
		Amount:        dec("5.00"),
		BankAccountID: account.ID,
	})
	if err != nil {
		t.Fatalf("Failed to withdraw: %v", err)
	}
	if _, _, err := env.transactions.Reverse(context.Background(), "alice", withdrawal.ID, ""); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState reversing a withdrawal, got %v", err)
	}
}

func TestReverseRejectsOverdraft(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	original := env.deposit(t, "alice", jar.ID, "25.00")
	account := env.verifiedAccount(t, "alice")

	if _, _, err := env.transactions.Withdraw(context.Background(), "alice", &WithdrawInput{
		JarID:         jar.ID,
		Amount:        dec("20.00"),
		BankAccountID: account.ID,
	}); err != nil {
		t.Fatalf("Failed to withdraw: %v", err)
	}

	// Refunding 25.00 from a 5.00 balance would overdraw the jar
	if _, _, err := env.transactions.Reverse(context.Background(), "alice", original.ID, ""); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}
	if !env.jarBalance(t, jar.ID).Equal(dec("5.00")) {
		t.Fatal("Failed reversal must not change the balance")
	}
}

func TestConcurrentWithdrawalsSingleWinner(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	env.deposit(t, "alice", jar.ID, "10.00")
	account := env.verifiedAccount(t, "alice")

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := env.transactions.Withdraw(context.Background(), "alice", &WithdrawInput{
				JarID:         jar.ID,
				Amount:        dec("6.00"),
				BankAccountID: account.ID,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInsufficientFunds):
			rejected++
		default:
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	if succeeded != 1 || rejected != 1 {
		t.Fatalf("Expected exactly one winner, got %d succeeded / %d rejected", succeeded, rejected)
	}
	if !env.jarBalance(t, jar.ID).Equal(dec("4.00")) {
		t.Fatalf("Expected final balance 4.00, got %s", env.jarBalance(t, jar.ID))
	}
}

func TestBankBackedDepositSettlement(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	account := env.verifiedAccount(t, "alice")

	pending, _, err := env.transactions.Deposit(context.Background(), "alice", &DepositInput{
		JarID:         jar.ID,
		Amount:        dec("25.00"),
		BankAccountID: &account.ID,
	})
	if err != nil {
		t.Fatalf("Failed to create bank-backed deposit: %v", err)
	}
	if pending.Status != models.TxStatusPending {
		t.Fatalf("Expected status PENDING, got %s", pending.Status)
	}
	if !env.jarBalance(t, jar.ID).IsZero() {
		t.Fatal("Bank-backed deposit must not change the balance before settlement")
	}

	completed, updated, err := env.transactions.CompleteSettlement(context.Background(), pending.Reference)
	if err != nil {
		t.Fatalf("Failed to complete settlement: %v", err)
	}
	if completed.Status != models.TxStatusCompleted {
		t.Fatalf("Expected status COMPLETED, got %s", completed.Status)
	}
	if !updated.Balance.Equal(dec("25.00")) {
		t.Fatalf("Expected jar balance 25.00 after settlement, got %s", updated.Balance)
	}

	// A settlement callback replay must not double-apply
	if _, _, err := env.transactions.CompleteSettlement(context.Background(), pending.Reference); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState on replay, got %v", err)
	}
	if !env.jarBalance(t, jar.ID).Equal(dec("25.00")) {
		t.Fatal("Replay must not change the balance")
	}
}

func TestSettlementRejectsDeletedJar(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	account := env.verifiedAccount(t, "alice")

	pending, _, err := env.transactions.Deposit(context.Background(), "alice", &DepositInput{
		JarID:         jar.ID,
		Amount:        dec("25.00"),
		BankAccountID: &account.ID,
	})
	if err != nil {
		t.Fatalf("Failed to create bank-backed deposit: %v", err)
	}

	// A pending deposit holds no balance, so the jar is deletable
	if err := env.jars.Delete(context.Background(), "alice", jar.ID); err != nil {
		t.Fatalf("Failed to delete jar: %v", err)
	}

	// The provider's late success report must not move money into a deleted jar
	if _, _, err := env.transactions.CompleteSettlement(context.Background(), pending.Reference); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound settling into a deleted jar, got %v", err)
	}

	reloaded, err := env.store.Transactions().GetByID(context.Background(), pending.ID)
	if err != nil {
		t.Fatalf("Failed to reload transaction: %v", err)
	}
	if reloaded.Status != models.TxStatusPending {
		t.Fatalf("Transaction must stay PENDING, got %s", reloaded.Status)
	}
}

func TestBankBackedDepositSettlementFailure(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	account := env.verifiedAccount(t, "alice")

	pending, _, err := env.transactions.Deposit(context.Background(), "alice", &DepositInput{
		JarID:         jar.ID,
		Amount:        dec("25.00"),
		BankAccountID: &account.ID,
	})
	if err != nil {
		t.Fatalf("Failed to create bank-backed deposit: %v", err)
	}

	failed, updated, err := env.transactions.FailSettlement(context.Background(), pending.Reference)
	if err != nil {
		t.Fatalf("Failed to record settlement failure: %v", err)
	}
	if failed.Status != models.TxStatusFailed {
		t.Fatalf("Expected status FAILED, got %s", failed.Status)
	}
	if !updated.Balance.IsZero() {
		t.Fatalf("Failed settlement must not change the balance, got %s", updated.Balance)
	}
	if updated.Statistics.TransactionCount != 0 {
		t.Fatalf("Failed settlement must not count towards statistics, got %d", updated.Statistics.TransactionCount)
	}
}

func TestHistoryRequiresViewPermission(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	env.deposit(t, "alice", jar.ID, "5.00")
	env.addMember(t, "alice", jar.ID, &AddMemberInput{UserID: "bob", CanViewTransactions: false})

	if _, _, err := env.transactions.History(context.Background(), "bob", jar.ID, 0, 20); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("Expected ErrAccessDenied, got %v", err)
	}

	list, total, err := env.transactions.History(context.Background(), "alice", jar.ID, 0, 20)
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("Expected 1 transaction, got %d (total %d)", len(list), total)
	}
}
