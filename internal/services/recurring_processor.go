package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// RecurringProcessor materializes due recurring expense templates into
// ordinary ledger expenses. Because materialization goes through
// Ledger.CreateExpense, funded templates synthesize transactions and
// adjust balances exactly like hand-entered expenses.
type RecurringProcessor struct {
	storage *storage.SQLiteRepository
	ledger  *Ledger
}

func NewRecurringProcessor(storage *storage.SQLiteRepository, ledger *Ledger) *RecurringProcessor {
	return &RecurringProcessor{
		storage: storage,
		ledger:  ledger,
	}
}

// ProcessDueExpenses walks all active templates and creates an expense
// for every one that is due. Failures on individual templates are
// logged and skipped so one bad template cannot stall the rest.
func (p *RecurringProcessor) ProcessDueExpenses(ctx context.Context, now time.Time) (int, error) {
	if p.storage == nil || p.ledger == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	templates, err := p.storage.ListActiveRecurringExpenses(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list active recurring expenses: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring expenses",
		"total_active", len(templates),
		"processing_date", now.Format("2006-01-02"))

	processedCount := 0

	for _, re := range templates {
		isDue, err := p.isDueForProcessing(re, now)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to check if template is due",
				"id", re.ID,
				"error", err)
			continue
		}
		if !isDue {
			continue
		}

		_, err = p.ledger.CreateExpense(ctx, ExpenseInput{
			Description: re.Description,
			Amount:      re.Amount,
			Date:        core.NewDate(now.Year(), int(now.Month()), now.Day()),
			Category:    re.Category,
			Subcategory: re.Subcategory,
			Method:      re.Method,
			Funding:     re.Funding,
			Recurring:   true,
		})
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create expense from recurring template",
				"recurring_id", re.ID,
				"description", re.Description,
				"error", err)
			continue
		}

		if err := p.storage.MarkRecurringExecuted(ctx, re.ID, now); err != nil {
			slog.ErrorContext(ctx, "Failed to update last execution date",
				"recurring_id", re.ID,
				"error", err)
			continue
		}

		processedCount++
	}

	slog.InfoContext(ctx, "Recurring expense processing completed",
		"processed", processedCount,
		"total_active", len(templates))

	return processedCount, nil
}

func (p *RecurringProcessor) isDueForProcessing(re core.RecurringExpense, now time.Time) (bool, error) {
	checker, err := GetDuenessChecker(re.Frequency)
	if err != nil {
		return false, err
	}
	return checker.IsDue(re.LastExecution, now, re.StartDate), nil
}
