package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO accounts (id, bank_name, account_type, number_mask, currency,
			initial_balance_cents, balance_cents, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.BankName, string(a.Type), a.NumberMask, a.Currency,
		a.InitialCents, a.BalanceCents, timeString(a.CreatedAt))
	if err != nil {
		return persistErr("create account", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id string) (core.Account, error) {
	var (
		a         core.Account
		typ       string
		createdAt string
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, bank_name, account_type, number_mask, currency,
			initial_balance_cents, balance_cents, created_at
		FROM accounts WHERE id = ?`, id).
		Scan(&a.ID, &a.BankName, &typ, &a.NumberMask, &a.Currency,
			&a.InitialCents, &a.BalanceCents, &createdAt)
	if err != nil {
		return core.Account{}, persistErr("get account", err)
	}
	a.Type = core.AccountType(typ)
	a.CreatedAt = parseTimeString(createdAt)
	return a, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, bank_name, account_type, number_mask, currency,
			initial_balance_cents, balance_cents, created_at
		FROM accounts ORDER BY created_at, id`)
	if err != nil {
		return nil, persistErr("list accounts", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var (
			a         core.Account
			typ       string
			createdAt string
		)
		if err := rows.Scan(&a.ID, &a.BankName, &typ, &a.NumberMask, &a.Currency,
			&a.InitialCents, &a.BalanceCents, &createdAt); err != nil {
			return nil, persistErr("scan account", err)
		}
		a.Type = core.AccountType(typ)
		a.CreatedAt = parseTimeString(createdAt)
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list accounts", err)
	}
	return accounts, nil
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE accounts
		SET bank_name = ?, account_type = ?, number_mask = ?, currency = ?,
			initial_balance_cents = ?, balance_cents = ?
		WHERE id = ?`,
		a.BankName, string(a.Type), a.NumberMask, a.Currency,
		a.InitialCents, a.BalanceCents, a.ID)
	if err != nil {
		return persistErr("update account", err)
	}
	return requireRow(res, "update account")
}

func (r *SQLiteRepository) DeleteAccount(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return persistErr("delete account", err)
	}
	return requireRow(res, "delete account")
}

// AdjustAccountBalance adds delta (which may be negative) to the stored
// balance. This is the reconciler's single write against an account.
func (r *SQLiteRepository) AdjustAccountBalance(ctx context.Context, id string, delta int64) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE accounts SET balance_cents = balance_cents + ? WHERE id = ?`, delta, id)
	if err != nil {
		return persistErr("adjust account balance", err)
	}
	return requireRow(res, "adjust account balance")
}

func (r *SQLiteRepository) SumAccountBalances(ctx context.Context) (int64, error) {
	var total sql.NullInt64
	err := r.q.QueryRowContext(ctx, `SELECT SUM(balance_cents) FROM accounts`).Scan(&total)
	if err != nil {
		return 0, persistErr("sum account balances", err)
	}
	return total.Int64, nil
}

func (r *SQLiteRepository) CreateCreditCard(ctx context.Context, c core.CreditCard) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO credit_cards (id, bank_name, label, last_four, credit_limit_cents,
			opening_balance_cents, current_balance_cents, cutoff_day, payment_day,
			interest_rate, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.BankName, c.Label, c.LastFour, c.LimitCents,
		c.OpeningCents, c.BalanceCents, c.CutoffDay, c.PaymentDay,
		c.InterestRate, timeString(c.CreatedAt))
	if err != nil {
		return persistErr("create credit card", err)
	}
	return nil
}

func (r *SQLiteRepository) GetCreditCard(ctx context.Context, id string) (core.CreditCard, error) {
	var (
		c         core.CreditCard
		createdAt string
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, bank_name, label, last_four, credit_limit_cents,
			opening_balance_cents, current_balance_cents, cutoff_day, payment_day,
			interest_rate, created_at
		FROM credit_cards WHERE id = ?`, id).
		Scan(&c.ID, &c.BankName, &c.Label, &c.LastFour, &c.LimitCents,
			&c.OpeningCents, &c.BalanceCents, &c.CutoffDay, &c.PaymentDay,
			&c.InterestRate, &createdAt)
	if err != nil {
		return core.CreditCard{}, persistErr("get credit card", err)
	}
	c.CreatedAt = parseTimeString(createdAt)
	return c, nil
}

func (r *SQLiteRepository) ListCreditCards(ctx context.Context) ([]core.CreditCard, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, bank_name, label, last_four, credit_limit_cents,
			opening_balance_cents, current_balance_cents, cutoff_day, payment_day,
			interest_rate, created_at
		FROM credit_cards ORDER BY created_at, id`)
	if err != nil {
		return nil, persistErr("list credit cards", err)
	}
	defer rows.Close()

	var cards []core.CreditCard
	for rows.Next() {
		var (
			c         core.CreditCard
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.BankName, &c.Label, &c.LastFour, &c.LimitCents,
			&c.OpeningCents, &c.BalanceCents, &c.CutoffDay, &c.PaymentDay,
			&c.InterestRate, &createdAt); err != nil {
			return nil, persistErr("scan credit card", err)
		}
		c.CreatedAt = parseTimeString(createdAt)
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list credit cards", err)
	}
	return cards, nil
}

func (r *SQLiteRepository) UpdateCreditCard(ctx context.Context, c core.CreditCard) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE credit_cards
		SET bank_name = ?, label = ?, last_four = ?, credit_limit_cents = ?,
			opening_balance_cents = ?, current_balance_cents = ?, cutoff_day = ?,
			payment_day = ?, interest_rate = ?
		WHERE id = ?`,
		c.BankName, c.Label, c.LastFour, c.LimitCents,
		c.OpeningCents, c.BalanceCents, c.CutoffDay,
		c.PaymentDay, c.InterestRate, c.ID)
	if err != nil {
		return persistErr("update credit card", err)
	}
	return requireRow(res, "update credit card")
}

func (r *SQLiteRepository) DeleteCreditCard(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM credit_cards WHERE id = ?`, id)
	if err != nil {
		return persistErr("delete credit card", err)
	}
	return requireRow(res, "delete credit card")
}

// AdjustCardBalance adds delta to the outstanding balance. Same sign
// convention as AdjustAccountBalance: the transaction amount already
// encodes the direction.
func (r *SQLiteRepository) AdjustCardBalance(ctx context.Context, id string, delta int64) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE credit_cards SET current_balance_cents = current_balance_cents + ? WHERE id = ?`, delta, id)
	if err != nil {
		return persistErr("adjust card balance", err)
	}
	return requireRow(res, "adjust card balance")
}

func (r *SQLiteRepository) SumCardBalances(ctx context.Context) (int64, error) {
	var total sql.NullInt64
	err := r.q.QueryRowContext(ctx, `SELECT SUM(current_balance_cents) FROM credit_cards`).Scan(&total)
	if err != nil {
		return 0, persistErr("sum card balances", err)
	}
	return total.Int64, nil
}

// requireRow turns a zero-row mutation into ErrNotFound so updates and
// deletes against missing ids surface cleanly without partial effects.
func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return persistErr(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}
