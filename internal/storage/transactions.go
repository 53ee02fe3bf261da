package storage

import (
	"context"
	"database/sql"

	"fintrack/internal/core"
)

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO transactions (id, owner_type, owner_id, amount_cents, description,
			txn_date, source_type, source_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.OwnerType), t.OwnerID, t.AmountCents, t.Description,
		dateString(t.Date), string(t.SourceType), t.SourceID, timeString(t.CreatedAt))
	if err != nil {
		return persistErr("create transaction", err)
	}
	return nil
}

// GetTransactionBySource returns the transaction a source record owns, or
// ErrNotFound when the record never named a funding reference.
func (r *SQLiteRepository) GetTransactionBySource(ctx context.Context, src core.SourceType, sourceID string) (core.Transaction, error) {
	return r.scanTransaction(r.q.QueryRowContext(ctx, `
		SELECT id, owner_type, owner_id, amount_cents, description, txn_date,
			source_type, source_id, created_at
		FROM transactions WHERE source_type = ? AND source_id = ?`,
		string(src), sourceID), "get transaction by source")
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return persistErr("delete transaction", err)
	}
	return requireRow(res, "delete transaction")
}

// ListTransactionsByOwner returns all live transactions against an
// account or card, most recent first.
func (r *SQLiteRepository) ListTransactionsByOwner(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, owner_type, owner_id, amount_cents, description, txn_date,
			source_type, source_id, created_at
		FROM transactions WHERE owner_id = ?
		ORDER BY txn_date DESC, created_at DESC`, ownerID)
	if err != nil {
		return nil, persistErr("list transactions", err)
	}
	defer rows.Close()

	var txns []core.Transaction
	for rows.Next() {
		var (
			t          core.Transaction
			ownerType  string
			date       string
			sourceType string
			createdAt  string
		)
		if err := rows.Scan(&t.ID, &ownerType, &t.OwnerID, &t.AmountCents, &t.Description,
			&date, &sourceType, &t.SourceID, &createdAt); err != nil {
			return nil, persistErr("scan transaction", err)
		}
		t.OwnerType = core.OwnerType(ownerType)
		t.Date = parseDateString(date)
		t.SourceType = core.SourceType(sourceType)
		t.CreatedAt = parseTimeString(createdAt)
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list transactions", err)
	}
	return txns, nil
}

// CountTransactionsByOwner reports how many live transactions reference
// an account or card. Used to refuse deleting owners that would orphan
// transactions.
func (r *SQLiteRepository) CountTransactionsByOwner(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE owner_id = ?`, ownerID).Scan(&n)
	if err != nil {
		return 0, persistErr("count transactions", err)
	}
	return n, nil
}

// SumTransactionsByOwner returns the signed sum of all live transactions
// against an owner. Feeds the consistency-repair recomputation.
func (r *SQLiteRepository) SumTransactionsByOwner(ctx context.Context, ownerID string) (int64, error) {
	var total sql.NullInt64
	err := r.q.QueryRowContext(ctx,
		`SELECT SUM(amount_cents) FROM transactions WHERE owner_id = ?`, ownerID).Scan(&total)
	if err != nil {
		return 0, persistErr("sum transactions", err)
	}
	return total.Int64, nil
}

func (r *SQLiteRepository) scanTransaction(row *sql.Row, op string) (core.Transaction, error) {
	var (
		t          core.Transaction
		ownerType  string
		date       string
		sourceType string
		createdAt  string
	)
	err := row.Scan(&t.ID, &ownerType, &t.OwnerID, &t.AmountCents, &t.Description,
		&date, &sourceType, &t.SourceID, &createdAt)
	if err != nil {
		return core.Transaction{}, persistErr(op, err)
	}
	t.OwnerType = core.OwnerType(ownerType)
	t.Date = parseDateString(date)
	t.SourceType = core.SourceType(sourceType)
	t.CreatedAt = parseTimeString(createdAt)
	return t, nil
}
