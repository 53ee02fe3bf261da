// Package services holds the ledger business logic: record CRUD with
// transaction synthesis, balance reconciliation and the recurring
// expense processor.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Ledger orchestrates the record store, transaction synthesis and
// balance reconciliation. Every multi-step mutation runs inside one
// database transaction so a source record, its synthesized transaction
// and the balance adjustment commit or fail together.
type Ledger struct {
	storage *storage.SQLiteRepository
	events  *amqp.Client
}

func NewLedger(storage *storage.SQLiteRepository, events *amqp.Client) *Ledger {
	return &Ledger{
		storage: storage,
		events:  events,
	}
}

// AccountInput carries the caller-editable account fields. BalanceCents
// on create is the opening balance; on update a changed balance shifts
// the stored initial balance by the same delta (see UpdateAccount).
type AccountInput struct {
	BankName     string
	Type         core.AccountType
	NumberMask   string
	Currency     string
	BalanceCents int64
}

type CardInput struct {
	BankName     string
	Label        string
	LastFour     string
	LimitCents   int64
	BalanceCents int64
	CutoffDay    int
	PaymentDay   int
	InterestRate float64
}

type ExpenseInput struct {
	Description string
	Amount      core.Money
	Date        core.Date
	Category    string
	Subcategory string
	Method      core.PaymentMethod
	Funding     *core.FundingRef
	Tags        []string
	Recurring   bool
}

type IncomeInput struct {
	Description string
	Amount      core.Money
	Date        core.Date
	Category    string
	Source      string
	Funding     *core.FundingRef
}

func (l *Ledger) CreateAccount(ctx context.Context, in AccountInput) (core.Account, error) {
	account := core.Account{
		ID:           uuid.NewString(),
		BankName:     in.BankName,
		Type:         in.Type,
		NumberMask:   in.NumberMask,
		Currency:     in.Currency,
		InitialCents: in.BalanceCents,
		BalanceCents: in.BalanceCents,
		CreatedAt:    time.Now(),
	}
	if err := account.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := l.storage.CreateAccount(ctx, account); err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	l.publishEvent(ctx, "account", "created", account.ID)
	return account, nil
}

func (l *Ledger) GetAccount(ctx context.Context, id string) (core.Account, error) {
	return l.storage.GetAccount(ctx, id)
}

func (l *Ledger) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return l.storage.ListAccounts(ctx)
}

// UpdateAccount applies metadata edits. A direct balance edit shifts the
// stored initial balance by the same delta, so the invariant
// balance == initial + sum(live transactions) survives without a
// synthetic adjustment transaction.
func (l *Ledger) UpdateAccount(ctx context.Context, id string, in AccountInput) (core.Account, error) {
	var account core.Account
	err := l.storage.WithTx(ctx, func(tx *storage.SQLiteRepository) error {
		existing, err := tx.GetAccount(ctx, id)
		if err != nil {
			return err
		}

		account = existing
		account.BankName = in.BankName
		account.Type = in.Type
		account.NumberMask = in.NumberMask
		account.Currency = in.Currency
		if delta := in.BalanceCents - account.BalanceCents; delta != 0 {
			account.InitialCents += delta
			account.BalanceCents = in.BalanceCents
		}

		if err := account.Validate(); err != nil {
			return err
		}
		return tx.UpdateAccount(ctx, account)
	})
	if err != nil {
		return core.Account{}, fmt.Errorf("update account: %w", err)
	}
	l.publishEvent(ctx, "account", "updated", account.ID)
	return account, nil
}

// DeleteAccount refuses to delete an account that still owns live
// transactions; removing it would orphan them and break the net worth
// aggregate.
func (l *Ledger) DeleteAccount(ctx context.Context, id string) error {
	err := l.storage.WithTx(ctx, func(tx *storage.SQLiteRepository) error {
		if _, err := tx.GetAccount(ctx, id); err != nil {
			return err
		}
		n, err := tx.CountTransactionsByOwner(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return core.ErrAccountInUse
		}
		return tx.DeleteAccount(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	l.publishEvent(ctx, "account", "deleted", id)
	return nil
}

func (l *Ledger) CreateCreditCard(ctx context.Context, in CardInput) (core.CreditCard, error) {
	card := core.CreditCard{
		ID:           uuid.NewString(),
		BankName:     in.BankName,
		Label:        in.Label,
		LastFour:     in.LastFour,
		LimitCents:   in.LimitCents,
		OpeningCents: in.BalanceCents,
		BalanceCents: in.BalanceCents,
		CutoffDay:    in.CutoffDay,
		PaymentDay:   in.PaymentDay,
		InterestRate: in.InterestRate,
		CreatedAt:    time.Now(),
	}
	if err := card.Validate(); err != nil {
		return core.CreditCard{}, err
	}
	if err := l.storage.CreateCreditCard(ctx, card); err != nil {
		return core.CreditCard{}, fmt.Errorf("create credit card: %w", err)
	}
	l.publishEvent(ctx, "card", "created", card.ID)
	return card, nil
}

func (l *Ledger) GetCreditCard(ctx context.Context, id string) (core.CreditCard, error) {
	return l.storage.GetCreditCard(ctx, id)
}

func (l *Ledger) ListCreditCards(ctx context.Context) ([]core.CreditCard, error) {
	return l.storage.ListCreditCards(ctx)
}

// UpdateCreditCard mirrors UpdateAccount: direct balance edits shift the
// opening balance so current == opening + sum(live transactions) holds.
func (l *Ledger) UpdateCreditCard(ctx context.Context, id string, in CardInput) (core.CreditCard, error) {
	var card core.CreditCard
	err := l.storage.WithTx(ctx, func(tx *storage.SQLiteRepository) error {
		existing, err := tx.GetCreditCard(ctx, id)
		if err != nil {
			return err
		}

		card = existing
		card.BankName = in.BankName
		card.Label = in.Label
		card.LastFour = in.LastFour
		card.LimitCents = in.LimitCents
		card.CutoffDay = in.CutoffDay
		card.PaymentDay = in.PaymentDay
		card.InterestRate = in.InterestRate
		if delta := in.BalanceCents - card.BalanceCents; delta != 0 {
			card.OpeningCents += delta
			card.BalanceCents = in.BalanceCents
		}

		if err := card.Validate(); err != nil {
			return err
		}
		return tx.UpdateCreditCard(ctx, card)
	})
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("update credit card: %w", err)
	}
	l.publishEvent(ctx, "card", "updated", card.ID)
	return card, nil
}

func (l *Ledger) DeleteCreditCard(ctx context.Context, id string) error {
	err := l.storage.WithTx(ctx, func(tx *storage.SQLiteRepository) error {
		if _, err := tx.GetCreditCard(ctx, id); err != nil {
			return err
		}
		n, err := tx.CountTransactionsByOwner(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return core.ErrAccountInUse
		}
		return tx.DeleteCreditCard(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete credit card: %w", err)
	}
	l.publishEvent(ctx, "card", "deleted", id)
	return nil
}

// CreateExpense stores the record and, when it names a funding
// reference, synthesizes exactly one transaction and applies its effect
// to the referenced balance, all in one database transaction.
func (l *Ledger) CreateExpense(ctx context.Context, in ExpenseInput) (core.Expense, error) {
	expense := core.Expense{
		ID:          uuid.NewString(),
		Description: in.Description,
		Amount:      in.Amount,
		Date:        in.Date,
		Category:    in.Category,
		Subcategory: in.Subcategory,
		Method:      in.Method,
		Funding:     in.Funding,
		Tags:        in.Tags,
		Recurring:   in.Recurring,
		CreatedAt:   time.Now(),
	}
	if err := expense.Validate(); err != nil {
		return core.Expense{}, err
	}

	err := l.storage.WithTx(ctx, func(tx *storage.SQLiteRepository) error {
		if err := resolveFunding(ctx, tx, expense.Funding); err != nil {
			return err
		}
		if err := tx.CreateExpense(ctx, expense); err != nil {
			return err
		}
		return synthesize(ctx, tx, core.SourceExpense, expense.ID,
			expense.Description, expense.Date, expense.Amount, expense.Funding)
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense created",
		"id", expense.ID,
		"description", expense.Description,
		"amount_cents", expense.Amount.Cents,
		"funded", expense.Funding != nil)
	l.publishEvent(ctx, "expense", "created", expense.ID)
	return expense, nil
}

// UpdateExpense reverses and deletes any linked transaction, rewrites
// the record, then re-synthesizes per the create rule. The one sequence
// covers all four edit cases: funding unchanged, changed, removed or
// added.
func (l *Ledger) UpdateExpense(ctx context.Context, id string, in ExpenseInput) (core.Expense, error) {
	var expense core.Expense
	err := l.storage.WithTx(ctx, func(tx *storage.SQLiteRepository) error {
		existing, err := tx.GetExpense(ctx, id)
		if err != nil {
			return err
		}
		if err := desynthesize(ctx, tx, core.SourceExpense, id); err != nil {
			return err
		}

		expense = existing
		expense.Description = in.Description
		expense.Amount = in.Amount
		expense.Date = in.Date
		expense.Category = in.Category
		expense.Subcategory = in.Subcategory
		expense.Method = in.Method
		expense.Funding = in.Funding
		expense.Tags = in.Tags
		expense.Recurring = in.Recurring
		if err := expense.Validate(); err != nil {
			return err
		}

		if err := resolveFunding(ctx, tx, expense.Funding); err != nil {
			return err
		}
		if err := tx.UpdateExpense(ctx, expense); err != nil {
			return err
		}
		return synthesize(ctx, tx, core.SourceExpense, expense.ID,
			expense.Description, expense.Date, expense.Amount, expense.Funding)
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	l.publishEvent(ctx, "expense", "updated", id)
	return expense, nil
}

// DeleteExpense reverses and removes the linked transaction before
// deleting the record. The source record owns its transaction, so the
// transaction never outlives it.
func (l *Ledger) DeleteExpense(ctx context.Context, id string) error {
	err := l.storage.WithTx(ctx, func(tx *storage.SQLiteRepository) error {
		if _, err := tx.GetExpense(ctx, id); err != nil {
			return err
		}
		if err := desynthesize(ctx, tx, core.SourceExpense, id); err != nil {
			return err
		}
		return tx.DeleteExpense(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	l.publishEvent(ctx, "expense", "deleted", id)
	return nil
}

func (l *Ledger) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	return l.storage.GetExpense(ctx, id)
}

func (l *Ledger) ListExpensesByMonth(ctx context.Context, year, month int) ([]core.Expense, error) {
	return l.storage.ListExpensesByMonth(ctx, year, month)
}

func (l *Ledger) CreateIncome(ctx context.Context, in IncomeInput) (core.Income, error) {
	income := core.Income{
		ID:          uuid.NewString(),
		Description: in.Description,
		Amount:      in.Amount,
		Date:        in.Date,
		Category:    in.Category,
		Source:      in.Source,
		Funding:     in.Funding,
		CreatedAt:   time.Now(),
	}
	if err := income.Validate(); err != nil {
		return core.Income{}, err
	}

	err := l.storage.WithTx(ctx, func(tx *storage.SQLiteRepository) error {
		if err := resolveFunding(ctx, tx, income.Funding); err != nil {
			return err
		}
		if err := tx.CreateIncome(ctx, income); err != nil {
			return err
		}
		return synthesize(ctx, tx, core.SourceIncome, income.ID,
			income.Description, income.Date, income.Amount, income.Funding)
	})
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}

	slog.InfoContext(ctx, "Income created",
		"id", income.ID,
		"description", income.Description,
		"amount_cents", income.Amount.Cents,
		"funded", income.Funding != nil)
	l.publishEvent(ctx, "income", "created", income.ID)
	return income, nil
}

func (l *Ledger) UpdateIncome(ctx context.Context, id string, in IncomeInput) (core.Income, error) {
	var income core.Income
	err := l.storage.WithTx(ctx, func(tx *storage.SQLiteRepository) error {
		existing, err := tx.GetIncome(ctx, id)
		if err != nil {
			return err
		}
		if err := desynthesize(ctx, tx, core.SourceIncome, id); err != nil {
			return err
		}

		income = existing
		income.Description = in.Description
		income.Amount = in.Amount
		income.Date = in.Date
		income.Category = in.Category
		income.Source = in.Source
		income.Funding = in.Funding
		if err := income.Validate(); err != nil {
			return err
		}

		if err := resolveFunding(ctx, tx, income.Funding); err != nil {
			return err
		}
		if err := tx.UpdateIncome(ctx, income); err != nil {
			return err
		}
		return synthesize(ctx, tx, core.SourceIncome, income.ID,
			income.Description, income.Date, income.Amount, income.Funding)
	})
	if err != nil {
		return core.Income{}, fmt.Errorf("update income: %w", err)
	}

	l.publishEvent(ctx, "income", "updated", id)
	return income, nil
}

func (l *Ledger) DeleteIncome(ctx context.Context, id string) error {
	err := l.storage.WithTx(ctx, func(tx *storage.SQLiteRepository) error {
		if _, err := tx.GetIncome(ctx, id); err != nil {
			return err
		}
		if err := desynthesize(ctx, tx, core.SourceIncome, id); err != nil {
			return err
		}
		return tx.DeleteIncome(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}

	l.publishEvent(ctx, "income", "deleted", id)
	return nil
}

func (l *Ledger) GetIncome(ctx context.Context, id string) (core.Income, error) {
	return l.storage.GetIncome(ctx, id)
}

func (l *Ledger) ListIncomesByMonth(ctx context.Context, year, month int) ([]core.Income, error) {
	return l.storage.ListIncomesByMonth(ctx, year, month)
}

// ListTransactions returns the live transactions against an account or
// card, most recent first.
func (l *Ledger) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	return l.storage.ListTransactionsByOwner(ctx, ownerID)
}

func (l *Ledger) ListCategories(ctx context.Context, domain core.CategoryDomain) ([]core.Category, error) {
	if err := domain.Validate(); err != nil {
		return nil, err
	}
	return l.storage.ListCategories(ctx, domain)
}

// publishEvent emits a ledger change event without blocking the caller.
// Publish failures are logged and swallowed: the mutation already
// committed locally.
func (l *Ledger) publishEvent(ctx context.Context, entity, action, id string) {
	if l.events == nil {
		return
	}
	if err := l.events.PublishLedgerEvent(ctx, entity, action, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"entity", entity, "action", action, "id", id, "error", err)
	}
}
