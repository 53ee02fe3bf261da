package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthlySummary is a compact cash-flow summary for a specific year+month.
type MonthlySummary struct {
	Year         int
	Month        int // 1-12
	ExpenseTotal Money
	IncomeTotal  Money
	Net          Money
	ByCategory   []CategoryAmount
}

// DayTotal aggregates the expenses dated a single day of the month.
type DayTotal struct {
	Amount Money
	Count  int
}

// NetWorth is the sum of account balances minus outstanding card debt.
type NetWorth struct {
	AccountsCents int64
	CardsCents    int64
	TotalCents    int64
}
