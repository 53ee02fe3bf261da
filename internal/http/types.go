package http

import (
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

// Request payloads carry monetary values as decimal strings ("12.34"),
// the format clients submit. Responses always report integer cents.

type fundingPayload struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func (f *fundingPayload) toRef() *core.FundingRef {
	if f == nil {
		return nil
	}
	return &core.FundingRef{Type: core.OwnerType(f.Type), ID: f.ID}
}

func fundingDTO(f *core.FundingRef) *fundingPayload {
	if f == nil {
		return nil
	}
	return &fundingPayload{Type: string(f.Type), ID: f.ID}
}

type accountPayload struct {
	BankName   string `json:"bank_name"`
	Type       string `json:"type"`
	NumberMask string `json:"number_mask"`
	Currency   string `json:"currency"`
	Balance    string `json:"balance"`
}

func (p accountPayload) toInput() (services.AccountInput, error) {
	cents, err := core.ParseDecimalToCents(p.Balance)
	if err != nil {
		return services.AccountInput{}, fmt.Errorf("balance: %w", err)
	}
	return services.AccountInput{
		BankName:     sanitizeInput(p.BankName),
		Type:         core.AccountType(p.Type),
		NumberMask:   sanitizeInput(p.NumberMask),
		Currency:     sanitizeInput(p.Currency),
		BalanceCents: cents,
	}, nil
}

type accountDTO struct {
	ID           string    `json:"id"`
	BankName     string    `json:"bank_name"`
	Type         string    `json:"type"`
	NumberMask   string    `json:"number_mask"`
	Currency     string    `json:"currency"`
	BalanceCents int64     `json:"balance_cents"`
	CreatedAt    time.Time `json:"created_at"`
}

func toAccountDTO(a core.Account) accountDTO {
	return accountDTO{
		ID:           a.ID,
		BankName:     a.BankName,
		Type:         string(a.Type),
		NumberMask:   a.NumberMask,
		Currency:     a.Currency,
		BalanceCents: a.BalanceCents,
		CreatedAt:    a.CreatedAt,
	}
}

type cardPayload struct {
	BankName     string  `json:"bank_name"`
	Label        string  `json:"label"`
	LastFour     string  `json:"last_four"`
	Limit        string  `json:"limit"`
	Balance      string  `json:"balance"`
	CutoffDay    int     `json:"cutoff_day"`
	PaymentDay   int     `json:"payment_day"`
	InterestRate float64 `json:"interest_rate"`
}

func (p cardPayload) toInput() (services.CardInput, error) {
	limitCents, err := core.ParseDecimalToCents(p.Limit)
	if err != nil {
		return services.CardInput{}, fmt.Errorf("limit: %w", err)
	}
	balanceCents, err := core.ParseDecimalToCents(p.Balance)
	if err != nil {
		return services.CardInput{}, fmt.Errorf("balance: %w", err)
	}
	return services.CardInput{
		BankName:     sanitizeInput(p.BankName),
		Label:        sanitizeInput(p.Label),
		LastFour:     sanitizeInput(p.LastFour),
		LimitCents:   limitCents,
		BalanceCents: balanceCents,
		CutoffDay:    p.CutoffDay,
		PaymentDay:   p.PaymentDay,
		InterestRate: p.InterestRate,
	}, nil
}

type cardDTO struct {
	ID           string    `json:"id"`
	BankName     string    `json:"bank_name"`
	Label        string    `json:"label"`
	LastFour     string    `json:"last_four"`
	LimitCents   int64     `json:"limit_cents"`
	BalanceCents int64     `json:"balance_cents"`
	CutoffDay    int       `json:"cutoff_day"`
	PaymentDay   int       `json:"payment_day"`
	InterestRate float64   `json:"interest_rate"`
	CreatedAt    time.Time `json:"created_at"`
}

func toCardDTO(c core.CreditCard) cardDTO {
	return cardDTO{
		ID:           c.ID,
		BankName:     c.BankName,
		Label:        c.Label,
		LastFour:     c.LastFour,
		LimitCents:   c.LimitCents,
		BalanceCents: c.BalanceCents,
		CutoffDay:    c.CutoffDay,
		PaymentDay:   c.PaymentDay,
		InterestRate: c.InterestRate,
		CreatedAt:    c.CreatedAt,
	}
}

type expensePayload struct {
	Description string          `json:"description"`
	Amount      string          `json:"amount"`
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	Method      string          `json:"method"`
	Funding     *fundingPayload `json:"funding"`
	Tags        []string        `json:"tags"`
	Recurring   bool            `json:"recurring"`
}

func (p expensePayload) toInput() (services.ExpenseInput, error) {
	cents, err := core.ParseDecimalToCents(p.Amount)
	if err != nil {
		return services.ExpenseInput{}, fmt.Errorf("amount: %w", err)
	}
	date, err := parseDate(p.Date)
	if err != nil {
		return services.ExpenseInput{}, fmt.Errorf("date: %w", err)
	}
	return services.ExpenseInput{
		Description: sanitizeInput(p.Description),
		Amount:      core.Money{Cents: cents},
		Date:        date,
		Category:    sanitizeInput(p.Category),
		Subcategory: sanitizeInput(p.Subcategory),
		Method:      core.PaymentMethod(p.Method),
		Funding:     p.Funding.toRef(),
		Tags:        p.Tags,
		Recurring:   p.Recurring,
	}, nil
}

type expenseDTO struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	AmountCents int64           `json:"amount_cents"`
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	Method      string          `json:"method"`
	Funding     *fundingPayload `json:"funding,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Recurring   bool            `json:"recurring"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toExpenseDTO(e core.Expense) expenseDTO {
	return expenseDTO{
		ID:          e.ID,
		Description: e.Description,
		AmountCents: e.Amount.Cents,
		Date:        e.Date.Format("2006-01-02"),
		Category:    e.Category,
		Subcategory: e.Subcategory,
		Method:      string(e.Method),
		Funding:     fundingDTO(e.Funding),
		Tags:        e.Tags,
		Recurring:   e.Recurring,
		CreatedAt:   e.CreatedAt,
	}
}

type incomePayload struct {
	Description string          `json:"description"`
	Amount      string          `json:"amount"`
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	Source      string          `json:"source"`
	Funding     *fundingPayload `json:"funding"`
}

func (p incomePayload) toInput() (services.IncomeInput, error) {
	cents, err := core.ParseDecimalToCents(p.Amount)
	if err != nil {
		return services.IncomeInput{}, fmt.Errorf("amount: %w", err)
	}
	date, err := parseDate(p.Date)
	if err != nil {
		return services.IncomeInput{}, fmt.Errorf("date: %w", err)
	}
	return services.IncomeInput{
		Description: sanitizeInput(p.Description),
		Amount:      core.Money{Cents: cents},
		Date:        date,
		Category:    sanitizeInput(p.Category),
		Source:      sanitizeInput(p.Source),
		Funding:     p.Funding.toRef(),
	}, nil
}

type incomeDTO struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	AmountCents int64           `json:"amount_cents"`
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	Source      string          `json:"source,omitempty"`
	Funding     *fundingPayload `json:"funding,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toIncomeDTO(i core.Income) incomeDTO {
	return incomeDTO{
		ID:          i.ID,
		Description: i.Description,
		AmountCents: i.Amount.Cents,
		Date:        i.Date.Format("2006-01-02"),
		Category:    i.Category,
		Source:      i.Source,
		Funding:     fundingDTO(i.Funding),
		CreatedAt:   i.CreatedAt,
	}
}

type recurringPayload struct {
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	Frequency   string          `json:"frequency"`
	Description string          `json:"description"`
	Amount      string          `json:"amount"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	Method      string          `json:"method"`
	Funding     *fundingPayload `json:"funding"`
	Active      bool            `json:"active"`
}

func (p recurringPayload) toInput() (services.RecurringInput, error) {
	cents, err := core.ParseDecimalToCents(p.Amount)
	if err != nil {
		return services.RecurringInput{}, fmt.Errorf("amount: %w", err)
	}
	start, err := parseDate(p.StartDate)
	if err != nil {
		return services.RecurringInput{}, fmt.Errorf("start_date: %w", err)
	}
	var end core.Date
	if p.EndDate != "" {
		end, err = parseDate(p.EndDate)
		if err != nil {
			return services.RecurringInput{}, fmt.Errorf("end_date: %w", err)
		}
	}
	return services.RecurringInput{
		StartDate:   start,
		EndDate:     end,
		Frequency:   core.Frequency(p.Frequency),
		Description: sanitizeInput(p.Description),
		Amount:      core.Money{Cents: cents},
		Category:    sanitizeInput(p.Category),
		Subcategory: sanitizeInput(p.Subcategory),
		Method:      core.PaymentMethod(p.Method),
		Funding:     p.Funding.toRef(),
		Active:      p.Active,
	}, nil
}

type recurringDTO struct {
	ID            string          `json:"id"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date,omitempty"`
	Frequency     string          `json:"frequency"`
	Description   string          `json:"description"`
	AmountCents   int64           `json:"amount_cents"`
	Category      string          `json:"category"`
	Subcategory   string          `json:"subcategory,omitempty"`
	Method        string          `json:"method"`
	Funding       *fundingPayload `json:"funding,omitempty"`
	LastExecution *time.Time      `json:"last_execution,omitempty"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toRecurringDTO(re core.RecurringExpense) recurringDTO {
	dto := recurringDTO{
		ID:          re.ID,
		StartDate:   re.StartDate.Format("2006-01-02"),
		Frequency:   string(re.Frequency),
		Description: re.Description,
		AmountCents: re.Amount.Cents,
		Category:    re.Category,
		Subcategory: re.Subcategory,
		Method:      string(re.Method),
		Funding:     fundingDTO(re.Funding),
		Active:      re.Active,
		CreatedAt:   re.CreatedAt,
	}
	if !re.EndDate.IsZero() {
		dto.EndDate = re.EndDate.Format("2006-01-02")
	}
	if !re.LastExecution.IsZero() {
		t := re.LastExecution
		dto.LastExecution = &t
	}
	return dto
}

type transactionDTO struct {
	ID          string    `json:"id"`
	OwnerType   string    `json:"owner_type"`
	OwnerID     string    `json:"owner_id"`
	AmountCents int64     `json:"amount_cents"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	SourceType  string    `json:"source_type"`
	SourceID    string    `json:"source_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func toTransactionDTO(t core.Transaction) transactionDTO {
	return transactionDTO{
		ID:          t.ID,
		OwnerType:   string(t.OwnerType),
		OwnerID:     t.OwnerID,
		AmountCents: t.AmountCents,
		Description: t.Description,
		Date:        t.Date.Format("2006-01-02"),
		SourceType:  string(t.SourceType),
		SourceID:    t.SourceID,
		CreatedAt:   t.CreatedAt,
	}
}

type categoryDTO struct {
	ID        int64  `json:"id"`
	Domain    string `json:"domain"`
	Name      string `json:"name"`
	Icon      string `json:"icon,omitempty"`
	SortOrder int    `json:"sort_order"`
}

func toCategoryDTO(c core.Category) categoryDTO {
	return categoryDTO{
		ID:        c.ID,
		Domain:    string(c.Domain),
		Name:      c.Name,
		Icon:      c.Icon,
		SortOrder: c.SortOrder,
	}
}

type categoryAmountDTO struct {
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
}

type summaryDTO struct {
	Year              int                 `json:"year"`
	Month             int                 `json:"month"`
	ExpenseTotalCents int64               `json:"expense_total_cents"`
	IncomeTotalCents  int64               `json:"income_total_cents"`
	NetCents          int64               `json:"net_cents"`
	ByCategory        []categoryAmountDTO `json:"by_category"`
}

func toSummaryDTO(s core.MonthlySummary) summaryDTO {
	dto := summaryDTO{
		Year:              s.Year,
		Month:             s.Month,
		ExpenseTotalCents: s.ExpenseTotal.Cents,
		IncomeTotalCents:  s.IncomeTotal.Cents,
		NetCents:          s.Net.Cents,
		ByCategory:        make([]categoryAmountDTO, 0, len(s.ByCategory)),
	}
	for _, c := range s.ByCategory {
		dto.ByCategory = append(dto.ByCategory, categoryAmountDTO{Name: c.Name, AmountCents: c.Amount.Cents})
	}
	return dto
}

type dayTotalDTO struct {
	AmountCents int64 `json:"amount_cents"`
	Count       int   `json:"count"`
}

type calendarDTO struct {
	Year  int                    `json:"year"`
	Month int                    `json:"month"`
	Days  map[string]dayTotalDTO `json:"days"`
}

func toCalendarDTO(year, month int, totals map[int]core.DayTotal) calendarDTO {
	dto := calendarDTO{Year: year, Month: month, Days: make(map[string]dayTotalDTO, len(totals))}
	for day, t := range totals {
		dto.Days[fmt.Sprintf("%d", day)] = dayTotalDTO{AmountCents: t.Amount.Cents, Count: t.Count}
	}
	return dto
}

type netWorthDTO struct {
	AccountsCents int64 `json:"accounts_cents"`
	CardsCents    int64 `json:"cards_cents"`
	TotalCents    int64 `json:"total_cents"`
}

type utilizationDTO struct {
	CardID      string `json:"card_id"`
	Utilization string `json:"utilization"`
}

type balanceDTO struct {
	ID           string `json:"id"`
	BalanceCents int64  `json:"balance_cents"`
}
