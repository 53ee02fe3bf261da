package services

import (
	"context"
	"testing"

	"fintrack/internal/core"
)

func TestMonthlySummary(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(t)
	aggregator := NewAggregator(ledger.storage)

	mustExpense := func(amountCents int64, month, day int, category string) {
		t.Helper()
		_, err := ledger.CreateExpense(ctx, ExpenseInput{
			Description: "expense",
			Amount:      core.Money{Cents: amountCents},
			Date:        core.NewDate(2026, month, day),
			Category:    category,
			Method:      core.PaymentCash,
		})
		if err != nil {
			t.Fatalf("CreateExpense: %v", err)
		}
	}

	mustExpense(5000, 3, 5, "Groceries")
	mustExpense(10000, 3, 5, "Transport")
	mustExpense(2500, 3, 20, "Groceries")

	// Dated outside the month, must not count.
	mustExpense(99999, 4, 1, "Groceries")

	_, err := ledger.CreateIncome(ctx, IncomeInput{
		Description: "salary",
		Amount:      core.Money{Cents: 200000},
		Date:        core.NewDate(2026, 3, 27),
		Category:    "Salary",
	})
	if err != nil {
		t.Fatalf("CreateIncome: %v", err)
	}
	_, err = ledger.CreateIncome(ctx, IncomeInput{
		Description: "april salary",
		Amount:      core.Money{Cents: 200000},
		Date:        core.NewDate(2026, 4, 27),
		Category:    "Salary",
	})
	if err != nil {
		t.Fatalf("CreateIncome: %v", err)
	}

	summary, err := aggregator.MonthlySummary(ctx, 2026, 3)
	if err != nil {
		t.Fatalf("MonthlySummary: %v", err)
	}

	wantExpense := int64(5000 + 10000 + 2500)
	if summary.ExpenseTotal.Cents != wantExpense {
		t.Errorf("expense total = %d, want %d", summary.ExpenseTotal.Cents, wantExpense)
	}
	if summary.IncomeTotal.Cents != 200000 {
		t.Errorf("income total = %d, want 200000", summary.IncomeTotal.Cents)
	}
	if summary.Net.Cents != 200000-wantExpense {
		t.Errorf("net = %d, want %d", summary.Net.Cents, 200000-wantExpense)
	}

	byCategory := make(map[string]int64)
	for _, c := range summary.ByCategory {
		byCategory[c.Name] = c.Amount.Cents
	}
	if byCategory["Groceries"] != 5000+2500 {
		t.Errorf("Groceries total = %d, want %d", byCategory["Groceries"], 5000+2500)
	}
	if byCategory["Transport"] != 10000 {
		t.Errorf("Transport total = %d, want 10000", byCategory["Transport"])
	}
}

func TestCalendarTotals(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(t)
	aggregator := NewAggregator(ledger.storage)

	for _, cents := range []int64{5000, 10000} {
		_, err := ledger.CreateExpense(ctx, ExpenseInput{
			Description: "expense",
			Amount:      core.Money{Cents: cents},
			Date:        core.NewDate(2026, 3, 5),
			Category:    "Groceries",
			Method:      core.PaymentCash,
		})
		if err != nil {
			t.Fatalf("CreateExpense: %v", err)
		}
	}

	totals, err := aggregator.CalendarTotals(ctx, 2026, 3)
	if err != nil {
		t.Fatalf("CalendarTotals: %v", err)
	}

	day, ok := totals[5]
	if !ok {
		t.Fatal("expected an entry for day 5")
	}
	if day.Amount.Cents != 15000 {
		t.Errorf("day 5 amount = %d, want 15000", day.Amount.Cents)
	}
	if day.Count != 2 {
		t.Errorf("day 5 count = %d, want 2", day.Count)
	}
	if _, ok := totals[6]; ok {
		t.Error("day without expenses must have no entry")
	}
}

func TestNetWorth(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(t)
	aggregator := NewAggregator(ledger.storage)

	mustCreateAccount(t, ledger, 100000)
	mustCreateAccount(t, ledger, 50000)
	mustCreateCard(t, ledger, 20000, 3000000)

	nw, err := aggregator.NetWorth(ctx)
	if err != nil {
		t.Fatalf("NetWorth: %v", err)
	}
	if nw.AccountsCents != 150000 {
		t.Errorf("accounts sum = %d, want 150000", nw.AccountsCents)
	}
	if nw.CardsCents != 20000 {
		t.Errorf("cards sum = %d, want 20000", nw.CardsCents)
	}
	if nw.TotalCents != 130000 {
		t.Errorf("net worth = %d, want 130000", nw.TotalCents)
	}
}

func TestCreditUtilization(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(t)
	aggregator := NewAggregator(ledger.storage)

	card := mustCreateCard(t, ledger, 800000, 3000000)

	got, err := aggregator.CreditUtilization(ctx, card.ID)
	if err != nil {
		t.Fatalf("CreditUtilization: %v", err)
	}
	if got != "26.7%" {
		t.Errorf("utilization = %q, want %q", got, "26.7%")
	}

	zeroLimit := mustCreateCard(t, ledger, 800000, 0)
	got, err = aggregator.CreditUtilization(ctx, zeroLimit.ID)
	if err != nil {
		t.Fatalf("CreditUtilization: %v", err)
	}
	if got != "0.0%" {
		t.Errorf("zero-limit utilization = %q, want %q", got, "0.0%")
	}
}
