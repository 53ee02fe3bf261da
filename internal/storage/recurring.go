package storage

import (
	"context"
	"database/sql"
	"time"

	"fintrack/internal/core"
)

func (r *SQLiteRepository) CreateRecurringExpense(ctx context.Context, re core.RecurringExpense) error {
	fType, fID := fundingToColumns(re.Funding)
	var endDate sql.NullString
	if !re.EndDate.IsZero() {
		endDate = sql.NullString{String: dateString(re.EndDate), Valid: true}
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO recurring_expenses (id, start_date, end_date, frequency, description,
			amount_cents, category, subcategory, payment_method, funding_type, funding_id,
			last_execution, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)`,
		re.ID, dateString(re.StartDate), endDate, string(re.Frequency), re.Description,
		re.Amount.Cents, re.Category, re.Subcategory, string(re.Method), fType, fID,
		re.Active, timeString(re.CreatedAt))
	if err != nil {
		return persistErr("create recurring expense", err)
	}
	return nil
}

func (r *SQLiteRepository) GetRecurringExpense(ctx context.Context, id string) (core.RecurringExpense, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, start_date, end_date, frequency, description, amount_cents,
			category, subcategory, payment_method, funding_type, funding_id,
			last_execution, active, created_at
		FROM recurring_expenses WHERE id = ?`, id)
	return scanRecurring(row.Scan)
}

// ListActiveRecurringExpenses returns active templates whose window
// covers the given date.
func (r *SQLiteRepository) ListActiveRecurringExpenses(ctx context.Context, now time.Time) ([]core.RecurringExpense, error) {
	today := now.UTC().Format(dateLayout)
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, start_date, end_date, frequency, description, amount_cents,
			category, subcategory, payment_method, funding_type, funding_id,
			last_execution, active, created_at
		FROM recurring_expenses
		WHERE active = 1 AND start_date <= ? AND (end_date IS NULL OR end_date >= ?)
		ORDER BY created_at, id`, today, today)
	if err != nil {
		return nil, persistErr("list active recurring expenses", err)
	}
	defer rows.Close()

	var templates []core.RecurringExpense
	for rows.Next() {
		re, err := scanRecurring(rows.Scan)
		if err != nil {
			return nil, err
		}
		templates = append(templates, re)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list active recurring expenses", err)
	}
	return templates, nil
}

func (r *SQLiteRepository) ListRecurringExpenses(ctx context.Context) ([]core.RecurringExpense, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, start_date, end_date, frequency, description, amount_cents,
			category, subcategory, payment_method, funding_type, funding_id,
			last_execution, active, created_at
		FROM recurring_expenses ORDER BY created_at, id`)
	if err != nil {
		return nil, persistErr("list recurring expenses", err)
	}
	defer rows.Close()

	var templates []core.RecurringExpense
	for rows.Next() {
		re, err := scanRecurring(rows.Scan)
		if err != nil {
			return nil, err
		}
		templates = append(templates, re)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list recurring expenses", err)
	}
	return templates, nil
}

func (r *SQLiteRepository) UpdateRecurringExpense(ctx context.Context, re core.RecurringExpense) error {
	fType, fID := fundingToColumns(re.Funding)
	var endDate sql.NullString
	if !re.EndDate.IsZero() {
		endDate = sql.NullString{String: dateString(re.EndDate), Valid: true}
	}
	res, err := r.q.ExecContext(ctx, `
		UPDATE recurring_expenses
		SET start_date = ?, end_date = ?, frequency = ?, description = ?,
			amount_cents = ?, category = ?, subcategory = ?, payment_method = ?,
			funding_type = ?, funding_id = ?, active = ?
		WHERE id = ?`,
		dateString(re.StartDate), endDate, string(re.Frequency), re.Description,
		re.Amount.Cents, re.Category, re.Subcategory, string(re.Method),
		fType, fID, re.Active, re.ID)
	if err != nil {
		return persistErr("update recurring expense", err)
	}
	return requireRow(res, "update recurring expense")
}

func (r *SQLiteRepository) DeleteRecurringExpense(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM recurring_expenses WHERE id = ?`, id)
	if err != nil {
		return persistErr("delete recurring expense", err)
	}
	return requireRow(res, "delete recurring expense")
}

// MarkRecurringExecuted records when a template last materialized.
func (r *SQLiteRepository) MarkRecurringExecuted(ctx context.Context, id string, at time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE recurring_expenses SET last_execution = ? WHERE id = ?`,
		timeString(at), id)
	if err != nil {
		return persistErr("mark recurring executed", err)
	}
	return requireRow(res, "mark recurring executed")
}

func scanRecurring(scan func(dest ...any) error) (core.RecurringExpense, error) {
	var (
		re            core.RecurringExpense
		startDate     string
		endDate       sql.NullString
		frequency     string
		method        string
		fType, fID    sql.NullString
		lastExecution sql.NullString
		createdAt     string
	)
	err := scan(&re.ID, &startDate, &endDate, &frequency, &re.Description,
		&re.Amount.Cents, &re.Category, &re.Subcategory, &method, &fType, &fID,
		&lastExecution, &re.Active, &createdAt)
	if err != nil {
		return core.RecurringExpense{}, persistErr("scan recurring expense", err)
	}
	re.StartDate = parseDateString(startDate)
	if endDate.Valid {
		re.EndDate = parseDateString(endDate.String)
	}
	re.Frequency = core.Frequency(frequency)
	re.Method = core.PaymentMethod(method)
	re.Funding = fundingFromColumns(fType, fID)
	if lastExecution.Valid {
		re.LastExecution = parseTimeString(lastExecution.String)
	}
	re.CreatedAt = parseTimeString(createdAt)
	return re, nil
}
