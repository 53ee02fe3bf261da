package services

import (
	"context"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Aggregator computes read-only derived views over the current store
// state. It performs no mutation; every call reads committed state, so
// a read immediately following a ledger write observes it.
type Aggregator struct {
	storage *storage.SQLiteRepository
}

func NewAggregator(storage *storage.SQLiteRepository) *Aggregator {
	return &Aggregator{storage: storage}
}

// MonthlySummary sums expenses and income whose date falls inside the
// calendar month, with a per-category expense breakdown.
func (a *Aggregator) MonthlySummary(ctx context.Context, year, month int) (core.MonthlySummary, error) {
	summary := core.MonthlySummary{Year: year, Month: month}

	expenseTotal, err := a.storage.MonthExpenseTotal(ctx, year, month)
	if err != nil {
		return summary, fmt.Errorf("month expense total: %w", err)
	}
	incomeTotal, err := a.storage.MonthIncomeTotal(ctx, year, month)
	if err != nil {
		return summary, fmt.Errorf("month income total: %w", err)
	}
	byCategory, err := a.storage.MonthExpenseByCategory(ctx, year, month)
	if err != nil {
		return summary, fmt.Errorf("month expense by category: %w", err)
	}

	summary.ExpenseTotal = core.Money{Cents: expenseTotal}
	summary.IncomeTotal = core.Money{Cents: incomeTotal}
	summary.Net = core.Money{Cents: incomeTotal - expenseTotal}
	summary.ByCategory = byCategory
	return summary, nil
}

// NetWorth is the sum of all account balances minus the sum of all card
// outstanding balances.
func (a *Aggregator) NetWorth(ctx context.Context) (core.NetWorth, error) {
	accounts, err := a.storage.SumAccountBalances(ctx)
	if err != nil {
		return core.NetWorth{}, fmt.Errorf("sum account balances: %w", err)
	}
	cards, err := a.storage.SumCardBalances(ctx)
	if err != nil {
		return core.NetWorth{}, fmt.Errorf("sum card balances: %w", err)
	}
	return core.NetWorth{
		AccountsCents: accounts,
		CardsCents:    cards,
		TotalCents:    accounts - cards,
	}, nil
}

// CreditUtilization reports a card's balance-to-limit ratio formatted
// with one decimal place, rounding half away from zero.
func (a *Aggregator) CreditUtilization(ctx context.Context, cardID string) (string, error) {
	card, err := a.storage.GetCreditCard(ctx, cardID)
	if err != nil {
		return "", fmt.Errorf("credit utilization: %w", err)
	}
	return core.FormatUtilization(card.BalanceCents, card.LimitCents), nil
}

// CalendarTotals maps day-of-month to (expense total, count) for the
// given month.
func (a *Aggregator) CalendarTotals(ctx context.Context, year, month int) (map[int]core.DayTotal, error) {
	totals, err := a.storage.CalendarExpenseTotals(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("calendar totals: %w", err)
	}
	return totals, nil
}
