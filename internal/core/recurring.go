package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

type Frequency string

// RecurringExpense is a template the recurring processor materializes
// into ordinary expenses. Materialized expenses flow through the normal
// ledger path, so funded templates produce transactions and balance
// adjustments like any hand-entered expense.
type RecurringExpense struct {
	ID            string
	StartDate     Date
	EndDate       Date // zero means no end
	Frequency     Frequency
	Description   string
	Amount        Money
	Category      string
	Subcategory   string
	Method        PaymentMethod
	Funding       *FundingRef
	LastExecution time.Time
	Active        bool
	CreatedAt     time.Time
}

func (f Frequency) Validate() error {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return nil
	}
	return errors.New("invalid frequency")
}

func (re RecurringExpense) Validate() error {
	if err := re.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}
	if !re.EndDate.IsZero() && re.EndDate.Before(re.StartDate.Time) {
		return errors.New("end date must not precede start date")
	}
	if err := re.Frequency.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(re.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(re.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := re.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(re.Category) == "" {
		return ErrEmptyCategory
	}
	if err := re.Method.Validate(); err != nil {
		return err
	}
	return re.Funding.Validate()
}
