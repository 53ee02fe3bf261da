package storage

import (
	"context"
	"database/sql"
	"encoding/json"

	"fintrack/internal/core"
)

func tagsToJSON(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func tagsFromJSON(s string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) error {
	fType, fID := fundingToColumns(e.Funding)
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO expenses (id, description, amount_cents, expense_date, category,
			subcategory, payment_method, funding_type, funding_id, tags, recurring, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Description, e.Amount.Cents, dateString(e.Date), e.Category,
		e.Subcategory, string(e.Method), fType, fID, tagsToJSON(e.Tags),
		e.Recurring, timeString(e.CreatedAt))
	if err != nil {
		return persistErr("create expense", err)
	}
	return nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	var (
		e          core.Expense
		date       string
		method     string
		fType, fID sql.NullString
		tags       string
		createdAt  string
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, description, amount_cents, expense_date, category, subcategory,
			payment_method, funding_type, funding_id, tags, recurring, created_at
		FROM expenses WHERE id = ?`, id).
		Scan(&e.ID, &e.Description, &e.Amount.Cents, &date, &e.Category, &e.Subcategory,
			&method, &fType, &fID, &tags, &e.Recurring, &createdAt)
	if err != nil {
		return core.Expense{}, persistErr("get expense", err)
	}
	e.Date = parseDateString(date)
	e.Method = core.PaymentMethod(method)
	e.Funding = fundingFromColumns(fType, fID)
	e.Tags = tagsFromJSON(tags)
	e.CreatedAt = parseTimeString(createdAt)
	return e, nil
}

func (r *SQLiteRepository) ListExpensesByMonth(ctx context.Context, year, month int) ([]core.Expense, error) {
	start, end := monthBounds(year, month)
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, description, amount_cents, expense_date, category, subcategory,
			payment_method, funding_type, funding_id, tags, recurring, created_at
		FROM expenses
		WHERE expense_date >= ? AND expense_date < ?
		ORDER BY expense_date DESC, created_at DESC`, start, end)
	if err != nil {
		return nil, persistErr("list expenses", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			e          core.Expense
			date       string
			method     string
			fType, fID sql.NullString
			tags       string
			createdAt  string
		)
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount.Cents, &date, &e.Category,
			&e.Subcategory, &method, &fType, &fID, &tags, &e.Recurring, &createdAt); err != nil {
			return nil, persistErr("scan expense", err)
		}
		e.Date = parseDateString(date)
		e.Method = core.PaymentMethod(method)
		e.Funding = fundingFromColumns(fType, fID)
		e.Tags = tagsFromJSON(tags)
		e.CreatedAt = parseTimeString(createdAt)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list expenses", err)
	}
	return expenses, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	fType, fID := fundingToColumns(e.Funding)
	res, err := r.q.ExecContext(ctx, `
		UPDATE expenses
		SET description = ?, amount_cents = ?, expense_date = ?, category = ?,
			subcategory = ?, payment_method = ?, funding_type = ?, funding_id = ?,
			tags = ?, recurring = ?
		WHERE id = ?`,
		e.Description, e.Amount.Cents, dateString(e.Date), e.Category,
		e.Subcategory, string(e.Method), fType, fID,
		tagsToJSON(e.Tags), e.Recurring, e.ID)
	if err != nil {
		return persistErr("update expense", err)
	}
	return requireRow(res, "update expense")
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return persistErr("delete expense", err)
	}
	return requireRow(res, "delete expense")
}

func (r *SQLiteRepository) CreateIncome(ctx context.Context, in core.Income) error {
	fType, fID := fundingToColumns(in.Funding)
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO incomes (id, description, amount_cents, income_date, category,
			source, funding_type, funding_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Description, in.Amount.Cents, dateString(in.Date), in.Category,
		in.Source, fType, fID, timeString(in.CreatedAt))
	if err != nil {
		return persistErr("create income", err)
	}
	return nil
}

func (r *SQLiteRepository) GetIncome(ctx context.Context, id string) (core.Income, error) {
	var (
		in         core.Income
		date       string
		fType, fID sql.NullString
		createdAt  string
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, description, amount_cents, income_date, category, source,
			funding_type, funding_id, created_at
		FROM incomes WHERE id = ?`, id).
		Scan(&in.ID, &in.Description, &in.Amount.Cents, &date, &in.Category, &in.Source,
			&fType, &fID, &createdAt)
	if err != nil {
		return core.Income{}, persistErr("get income", err)
	}
	in.Date = parseDateString(date)
	in.Funding = fundingFromColumns(fType, fID)
	in.CreatedAt = parseTimeString(createdAt)
	return in, nil
}

func (r *SQLiteRepository) ListIncomesByMonth(ctx context.Context, year, month int) ([]core.Income, error) {
	start, end := monthBounds(year, month)
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, description, amount_cents, income_date, category, source,
			funding_type, funding_id, created_at
		FROM incomes
		WHERE income_date >= ? AND income_date < ?
		ORDER BY income_date DESC, created_at DESC`, start, end)
	if err != nil {
		return nil, persistErr("list incomes", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		var (
			in         core.Income
			date       string
			fType, fID sql.NullString
			createdAt  string
		)
		if err := rows.Scan(&in.ID, &in.Description, &in.Amount.Cents, &date, &in.Category,
			&in.Source, &fType, &fID, &createdAt); err != nil {
			return nil, persistErr("scan income", err)
		}
		in.Date = parseDateString(date)
		in.Funding = fundingFromColumns(fType, fID)
		in.CreatedAt = parseTimeString(createdAt)
		incomes = append(incomes, in)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list incomes", err)
	}
	return incomes, nil
}

func (r *SQLiteRepository) UpdateIncome(ctx context.Context, in core.Income) error {
	fType, fID := fundingToColumns(in.Funding)
	res, err := r.q.ExecContext(ctx, `
		UPDATE incomes
		SET description = ?, amount_cents = ?, income_date = ?, category = ?,
			source = ?, funding_type = ?, funding_id = ?
		WHERE id = ?`,
		in.Description, in.Amount.Cents, dateString(in.Date), in.Category,
		in.Source, fType, fID, in.ID)
	if err != nil {
		return persistErr("update income", err)
	}
	return requireRow(res, "update income")
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM incomes WHERE id = ?`, id)
	if err != nil {
		return persistErr("delete income", err)
	}
	return requireRow(res, "delete income")
}

// MonthExpenseTotal sums expense amounts for a calendar month.
func (r *SQLiteRepository) MonthExpenseTotal(ctx context.Context, year, month int) (int64, error) {
	start, end := monthBounds(year, month)
	var total sql.NullInt64
	err := r.q.QueryRowContext(ctx, `
		SELECT SUM(amount_cents) FROM expenses
		WHERE expense_date >= ? AND expense_date < ?`, start, end).Scan(&total)
	if err != nil {
		return 0, persistErr("month expense total", err)
	}
	return total.Int64, nil
}

// MonthIncomeTotal sums income amounts for a calendar month.
func (r *SQLiteRepository) MonthIncomeTotal(ctx context.Context, year, month int) (int64, error) {
	start, end := monthBounds(year, month)
	var total sql.NullInt64
	err := r.q.QueryRowContext(ctx, `
		SELECT SUM(amount_cents) FROM incomes
		WHERE income_date >= ? AND income_date < ?`, start, end).Scan(&total)
	if err != nil {
		return 0, persistErr("month income total", err)
	}
	return total.Int64, nil
}

// MonthExpenseByCategory returns per-category expense sums for a month,
// largest first.
func (r *SQLiteRepository) MonthExpenseByCategory(ctx context.Context, year, month int) ([]core.CategoryAmount, error) {
	start, end := monthBounds(year, month)
	rows, err := r.q.QueryContext(ctx, `
		SELECT category, SUM(amount_cents) AS total
		FROM expenses
		WHERE expense_date >= ? AND expense_date < ?
		GROUP BY category ORDER BY total DESC`, start, end)
	if err != nil {
		return nil, persistErr("month expense by category", err)
	}
	defer rows.Close()

	var sums []core.CategoryAmount
	for rows.Next() {
		var ca core.CategoryAmount
		if err := rows.Scan(&ca.Name, &ca.Amount.Cents); err != nil {
			return nil, persistErr("scan category sum", err)
		}
		sums = append(sums, ca)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("month expense by category", err)
	}
	return sums, nil
}

// CalendarExpenseTotals returns (total, count) per day-of-month for the
// expenses dated inside the month.
func (r *SQLiteRepository) CalendarExpenseTotals(ctx context.Context, year, month int) (map[int]core.DayTotal, error) {
	start, end := monthBounds(year, month)
	rows, err := r.q.QueryContext(ctx, `
		SELECT expense_date, SUM(amount_cents), COUNT(*)
		FROM expenses
		WHERE expense_date >= ? AND expense_date < ?
		GROUP BY expense_date`, start, end)
	if err != nil {
		return nil, persistErr("calendar expense totals", err)
	}
	defer rows.Close()

	totals := make(map[int]core.DayTotal)
	for rows.Next() {
		var (
			date  string
			dt    core.DayTotal
		)
		if err := rows.Scan(&date, &dt.Amount.Cents, &dt.Count); err != nil {
			return nil, persistErr("scan calendar total", err)
		}
		totals[parseDateString(date).Day()] = dt
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("calendar expense totals", err)
	}
	return totals, nil
}
