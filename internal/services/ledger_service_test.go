package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("failed to open test repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return NewLedger(repo, nil)
}

func mustCreateAccount(t *testing.T, l *Ledger, balanceCents int64) core.Account {
	t.Helper()
	account, err := l.CreateAccount(context.Background(), AccountInput{
		BankName:     "Test Bank",
		Type:         core.AccountChecking,
		NumberMask:   "****1234",
		Currency:     "EUR",
		BalanceCents: balanceCents,
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	return account
}

func mustCreateCard(t *testing.T, l *Ledger, balanceCents, limitCents int64) core.CreditCard {
	t.Helper()
	card, err := l.CreateCreditCard(context.Background(), CardInput{
		BankName:     "Test Bank",
		Label:        "Everyday",
		LastFour:     "4242",
		LimitCents:   limitCents,
		BalanceCents: balanceCents,
		CutoffDay:    15,
		PaymentDay:   28,
	})
	if err != nil {
		t.Fatalf("CreateCreditCard: %v", err)
	}
	return card
}

func accountFunding(id string) *core.FundingRef {
	return &core.FundingRef{Type: core.OwnerAccount, ID: id}
}

func expenseInput(amountCents int64, funding *core.FundingRef) ExpenseInput {
	return ExpenseInput{
		Description: "groceries run",
		Amount:      core.Money{Cents: amountCents},
		Date:        core.NewDate(2026, 3, 5),
		Category:    "Groceries",
		Method:      core.PaymentDebit,
		Funding:     funding,
	}
}

func getBalance(t *testing.T, l *Ledger, accountID string) int64 {
	t.Helper()
	account, err := l.GetAccount(context.Background(), accountID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	return account.BalanceCents
}

func TestFundedExpenseAndIncomeAdjustBalance(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(t)
	account := mustCreateAccount(t, ledger, 100000) // 1000.00

	if _, err := ledger.CreateExpense(ctx, expenseInput(30000, accountFunding(account.ID))); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	if got := getBalance(t, ledger, account.ID); got != 70000 {
		t.Errorf("after 300.00 expense: balance = %d, want 70000", got)
	}

	_, err := ledger.CreateIncome(ctx, IncomeInput{
		Description: "salary",
		Amount:      core.Money{Cents: 50000},
		Date:        core.NewDate(2026, 3, 27),
		Category:    "Salary",
		Funding:     accountFunding(account.ID),
	})
	if err != nil {
		t.Fatalf("CreateIncome: %v", err)
	}
	if got := getBalance(t, ledger, account.ID); got != 120000 {
		t.Errorf("after 500.00 income: balance = %d, want 120000", got)
	}
}

func TestDeleteExpenseRestoresBalance(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(t)
	account := mustCreateAccount(t, ledger, 100000)

	expense, err := ledger.CreateExpense(ctx, expenseInput(30000, accountFunding(account.ID)))
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	if err := ledger.DeleteExpense(ctx, expense.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}

	if got := getBalance(t, ledger, account.ID); got != 100000 {
		t.Errorf("create-then-delete expense: balance = %d, want 100000", got)
	}
	txns, err := ledger.ListTransactions(ctx, account.ID)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txns) != 0 {
		t.Errorf("expected no transactions after source delete, got %d", len(txns))
	}
}

func TestUpdateExpenseMovesFunding(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(t)
	first := mustCreateAccount(t, ledger, 100000)
	second := mustCreateAccount(t, ledger, 50000)

	expense, err := ledger.CreateExpense(ctx, expenseInput(20000, accountFunding(first.ID)))
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	in := expenseInput(20000, accountFunding(second.ID))
	if _, err := ledger.UpdateExpense(ctx, expense.ID, in); err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}

	if got := getBalance(t, ledger, first.ID); got != 100000 {
		t.Errorf("old funding account balance = %d, want 100000", got)
	}
	if got := getBalance(t, ledger, second.ID); got != 30000 {
		t.Errorf("new funding account balance = %d, want 30000", got)
	}
}

func TestUpdateExpenseToUnfundedRevertsBalance(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(t)
	account := mustCreateAccount(t, ledger, 100000)

	expense, err := ledger.CreateExpense(ctx, expenseInput(20000, accountFunding(account.ID)))
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	if _, err := ledger.UpdateExpense(ctx, expense.ID, expenseInput(20000, nil)); err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}

	if got := getBalance(t, ledger, account.ID); got != 100000 {
		t.Errorf("balance after funding removed = %d, want 100000", got)
	}
	txns, err := ledger.ListTransactions(ctx, account.ID)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txns) != 0 {
		t.Errorf("expected transaction removed, got %d", len(txns))
	}
}

func TestUnfundedExpenseProducesNoTransaction(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(t)
	account := mustCreateAccount(t, ledger, 100000)

	if _, err := ledger.CreateExpense(ctx, expenseInput(30000, nil)); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	if got := getBalance(t, ledger, account.ID); got != 100000 {
		t.Errorf("unfunded expense must not touch balances, balance = %d", got)
	}
}

func TestZeroAmountExpenseSynthesizesTransaction(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(t)
	account := mustCreateAccount(t, ledger, 100000)

	if _, err := ledger.CreateExpense(ctx, expenseInput(0, accountFunding(account.ID))); err != nil {
		t.Fatalf("CreateExpense with zero amount: %v", err)
	}

	txns, err := ledger.ListTransactions(ctx, account.ID)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("expected one zero-effect transaction, got %d", len(txns))
	}
	if txns[0].AmountCents != 0 {
		t.Errorf("transaction amount = %d, want 0", txns[0].AmountCents)
	}
	if got := getBalance(t, ledger, account.ID); got != 100000 {
		t.Errorf("balance = %d, want unchanged 100000", got)
	}
}

func TestCreateExpenseRejectsUnknownFunding(t *testing.T) {
	ledger := newTestLedger(t)

	_, err := ledger.CreateExpense(context.Background(), expenseInput(1000, accountFunding("no-such-account")))
	if !errors.Is(err, core.ErrInvalidReference) {
		t.Errorf("expected ErrInvalidReference, got %v", err)
	}
}

func TestCardExpenseGrowsDebtAndPaymentShrinksIt(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(t)
	card := mustCreateCard(t, ledger, 0, 3000000)
	cardRef := &core.FundingRef{Type: core.OwnerCard, ID: card.ID}

	if _, err := ledger.CreateExpense(ctx, expenseInput(80000, cardRef)); err != nil {
		t.Fatalf("CreateExpense on card: %v", err)
	}
	got, err := ledger.GetCreditCard(ctx, card.ID)
	if err != nil {
		t.Fatalf("GetCreditCard: %v", err)
	}
	if got.BalanceCents != 80000 {
		t.Errorf("card debt after expense = %d, want 80000", got.BalanceCents)
	}

	_, err = ledger.CreateIncome(ctx, IncomeInput{
		Description: "card payment",
		Amount:      core.Money{Cents: 30000},
		Date:        core.NewDate(2026, 3, 28),
		Category:    "Other",
		Funding:     cardRef,
	})
	if err != nil {
		t.Fatalf("CreateIncome on card: %v", err)
	}
	got, err = ledger.GetCreditCard(ctx, card.ID)
	if err != nil {
		t.Fatalf("GetCreditCard: %v", err)
	}
	if got.BalanceCents != 50000 {
		t.Errorf("card debt after payment = %d, want 50000", got.BalanceCents)
	}
}

func TestDeleteAccountWithTransactionsRefused(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(t)
	account := mustCreateAccount(t, ledger, 100000)

	expense, err := ledger.CreateExpense(ctx, expenseInput(1000, accountFunding(account.ID)))
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	if err := ledger.DeleteAccount(ctx, account.ID); !errors.Is(err, core.ErrAccountInUse) {
		t.Errorf("expected ErrAccountInUse, got %v", err)
	}

	// Removing the expense removes its transaction, freeing the account.
	if err := ledger.DeleteExpense(ctx, expense.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if err := ledger.DeleteAccount(ctx, account.ID); err != nil {
		t.Errorf("DeleteAccount after clearing transactions: %v", err)
	}
}

func TestUpdateAccountDirectBalanceEdit(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(t)
	account := mustCreateAccount(t, ledger, 100000)

	if _, err := ledger.CreateExpense(ctx, expenseInput(30000, accountFunding(account.ID))); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	// Direct edit to 90000 shifts the initial balance, so the edited
	// value survives a recompute.
	_, err := ledger.UpdateAccount(ctx, account.ID, AccountInput{
		BankName:     account.BankName,
		Type:         account.Type,
		NumberMask:   account.NumberMask,
		Currency:     account.Currency,
		BalanceCents: 90000,
	})
	if err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}

	recomputed, err := ledger.RecomputeBalance(ctx, core.OwnerAccount, account.ID)
	if err != nil {
		t.Fatalf("RecomputeBalance: %v", err)
	}
	if recomputed != 90000 {
		t.Errorf("recomputed balance = %d, want 90000", recomputed)
	}
}

func TestRecomputeBalanceMatchesIncremental(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(t)
	account := mustCreateAccount(t, ledger, 100000)

	if _, err := ledger.CreateExpense(ctx, expenseInput(12345, accountFunding(account.ID))); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	_, err := ledger.CreateIncome(ctx, IncomeInput{
		Description: "refund",
		Amount:      core.Money{Cents: 700},
		Date:        core.NewDate(2026, 3, 10),
		Category:    "Other",
		Funding:     accountFunding(account.ID),
	})
	if err != nil {
		t.Fatalf("CreateIncome: %v", err)
	}

	incremental := getBalance(t, ledger, account.ID)
	recomputed, err := ledger.RecomputeBalance(ctx, core.OwnerAccount, account.ID)
	if err != nil {
		t.Fatalf("RecomputeBalance: %v", err)
	}
	if recomputed != incremental {
		t.Errorf("recomputed = %d, incremental = %d, want equal", recomputed, incremental)
	}
}

func TestUpdateExpenseAmountReconciles(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(t)
	account := mustCreateAccount(t, ledger, 100000)

	expense, err := ledger.CreateExpense(ctx, expenseInput(30000, accountFunding(account.ID)))
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	if _, err := ledger.UpdateExpense(ctx, expense.ID, expenseInput(10000, accountFunding(account.ID))); err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}

	if got := getBalance(t, ledger, account.ID); got != 90000 {
		t.Errorf("balance after amount edit = %d, want 90000", got)
	}
	txns, err := ledger.ListTransactions(ctx, account.ID)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("expected exactly one transaction, got %d", len(txns))
	}
	if txns[0].AmountCents != -10000 {
		t.Errorf("transaction amount = %d, want -10000", txns[0].AmountCents)
	}
}

func TestConcurrentEditsKeepBalanceInvariant(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(t)
	account := mustCreateAccount(t, ledger, 100000)

	const workers = 4
	const perWorker = 5

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := ledger.CreateExpense(ctx, expenseInput(1000, accountFunding(account.ID))); err != nil {
					t.Errorf("CreateExpense: %v", err)
				}
			}
		}()
	}

	// Direct balance edits racing the expense writes. Each edit reads
	// the account inside its own transaction, so the initial balance
	// shift can never be computed from a stale read.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < perWorker; j++ {
			current, err := ledger.GetAccount(ctx, account.ID)
			if err != nil {
				t.Errorf("GetAccount: %v", err)
				return
			}
			_, err = ledger.UpdateAccount(ctx, account.ID, AccountInput{
				BankName:     current.BankName,
				Type:         current.Type,
				NumberMask:   current.NumberMask,
				Currency:     current.Currency,
				BalanceCents: current.BalanceCents + 500,
			})
			if err != nil {
				t.Errorf("UpdateAccount: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	stored := getBalance(t, ledger, account.ID)
	recomputed, err := ledger.RecomputeBalance(ctx, core.OwnerAccount, account.ID)
	if err != nil {
		t.Fatalf("RecomputeBalance: %v", err)
	}
	if recomputed != stored {
		t.Errorf("recomputed = %d, stored = %d, want equal after concurrent edits", recomputed, stored)
	}

	txns, err := ledger.ListTransactions(ctx, account.ID)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txns) != workers*perWorker {
		t.Errorf("transaction count = %d, want %d", len(txns), workers*perWorker)
	}
}
