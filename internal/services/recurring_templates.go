package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// RecurringInput carries the caller-editable recurring template fields.
type RecurringInput struct {
	StartDate   core.Date
	EndDate     core.Date
	Frequency   core.Frequency
	Description string
	Amount      core.Money
	Category    string
	Subcategory string
	Method      core.PaymentMethod
	Funding     *core.FundingRef
	Active      bool
}

// CreateRecurringExpense stores a template for the recurring processor.
// Templates produce no transaction themselves; materialized expenses do.
func (l *Ledger) CreateRecurringExpense(ctx context.Context, in RecurringInput) (core.RecurringExpense, error) {
	re := core.RecurringExpense{
		ID:          uuid.NewString(),
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Frequency:   in.Frequency,
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
		Subcategory: in.Subcategory,
		Method:      in.Method,
		Funding:     in.Funding,
		Active:      in.Active,
		CreatedAt:   time.Now(),
	}
	if err := re.Validate(); err != nil {
		return core.RecurringExpense{}, err
	}
	if re.Funding != nil {
		if err := resolveFunding(ctx, l.storage, re.Funding); err != nil {
			return core.RecurringExpense{}, err
		}
	}
	if err := l.storage.CreateRecurringExpense(ctx, re); err != nil {
		return core.RecurringExpense{}, fmt.Errorf("create recurring expense: %w", err)
	}
	l.publishEvent(ctx, "recurring", "created", re.ID)
	return re, nil
}

func (l *Ledger) GetRecurringExpense(ctx context.Context, id string) (core.RecurringExpense, error) {
	return l.storage.GetRecurringExpense(ctx, id)
}

func (l *Ledger) ListRecurringExpenses(ctx context.Context) ([]core.RecurringExpense, error) {
	return l.storage.ListRecurringExpenses(ctx)
}

// UpdateRecurringExpense rewrites the template. Expenses already
// materialized from it are ordinary records and stay untouched.
func (l *Ledger) UpdateRecurringExpense(ctx context.Context, id string, in RecurringInput) (core.RecurringExpense, error) {
	re, err := l.storage.GetRecurringExpense(ctx, id)
	if err != nil {
		return core.RecurringExpense{}, fmt.Errorf("update recurring expense: %w", err)
	}

	re.StartDate = in.StartDate
	re.EndDate = in.EndDate
	re.Frequency = in.Frequency
	re.Description = in.Description
	re.Amount = in.Amount
	re.Category = in.Category
	re.Subcategory = in.Subcategory
	re.Method = in.Method
	re.Funding = in.Funding
	re.Active = in.Active

	if err := re.Validate(); err != nil {
		return core.RecurringExpense{}, err
	}
	if re.Funding != nil {
		if err := resolveFunding(ctx, l.storage, re.Funding); err != nil {
			return core.RecurringExpense{}, err
		}
	}
	if err := l.storage.UpdateRecurringExpense(ctx, re); err != nil {
		return core.RecurringExpense{}, fmt.Errorf("update recurring expense: %w", err)
	}
	l.publishEvent(ctx, "recurring", "updated", re.ID)
	return re, nil
}

func (l *Ledger) DeleteRecurringExpense(ctx context.Context, id string) error {
	if _, err := l.storage.GetRecurringExpense(ctx, id); err != nil {
		return fmt.Errorf("delete recurring expense: %w", err)
	}
	if err := l.storage.DeleteRecurringExpense(ctx, id); err != nil {
		return fmt.Errorf("delete recurring expense: %w", err)
	}
	l.publishEvent(ctx, "recurring", "deleted", id)
	return nil
}
