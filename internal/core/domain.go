package core

import (
	"errors"
	"strings"
	"time"
)

const (
	AccountChecking AccountType = "checking"
	AccountSavings  AccountType = "savings"
	AccountOther    AccountType = "other"
)

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentDebit  PaymentMethod = "debit"
	PaymentCredit PaymentMethod = "credit"
	PaymentOther  PaymentMethod = "other"
)

const (
	OwnerAccount OwnerType = "account"
	OwnerCard    OwnerType = "card"
)

const (
	SourceExpense SourceType = "expense"
	SourceIncome  SourceType = "income"
)

const (
	DomainExpense CategoryDomain = "expense"
	DomainIncome  CategoryDomain = "income"
)

type (
	AccountType    string
	PaymentMethod  string
	OwnerType      string
	SourceType     string
	CategoryDomain string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// FundingRef names the account or credit card an expense or income
	// record draws on. A record with no FundingRef produces no transaction.
	FundingRef struct {
		Type OwnerType
		ID   string
	}

	Account struct {
		ID           string
		BankName     string
		Type         AccountType
		NumberMask   string
		Currency     string
		InitialCents int64
		BalanceCents int64
		CreatedAt    time.Time
	}

	CreditCard struct {
		ID           string
		BankName     string
		Label        string
		LastFour     string
		LimitCents   int64
		OpeningCents int64
		BalanceCents int64 // current outstanding debt
		CutoffDay    int
		PaymentDay   int
		InterestRate float64
		CreatedAt    time.Time
	}

	Expense struct {
		ID          string
		Description string
		Amount      Money
		Date        Date
		Category    string
		Subcategory string
		Method      PaymentMethod
		Funding     *FundingRef
		Tags        []string
		Recurring   bool
		CreatedAt   time.Time
	}

	Income struct {
		ID          string
		Description string
		Amount      Money
		Date        Date
		Category    string
		Source      string
		Funding     *FundingRef
		CreatedAt   time.Time
	}

	// Transaction is the monetary movement a funded expense or income
	// produces against its owner. AmountCents is the signed delta applied
	// to the owner's balance. A transaction never exists without exactly
	// one source record; its lifecycle follows the source record's.
	Transaction struct {
		ID          string
		OwnerType   OwnerType
		OwnerID     string
		AmountCents int64
		Description string
		Date        Date
		SourceType  SourceType
		SourceID    string
		CreatedAt   time.Time
	}

	Category struct {
		ID        int64
		Domain    CategoryDomain
		Name      string
		Icon      string
		SortOrder int
	}
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrInvalidReference = errors.New("funding reference does not exist")
	ErrAccountInUse     = errors.New("account or card has live transactions")
	ErrPersistence      = errors.New("persistence failure")

	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyBankName    = errors.New("empty bank name")
	ErrInvalidType      = errors.New("invalid type")
	ErrInvalidDomain    = errors.New("invalid category domain")
	ErrInvalidLimit     = errors.New("invalid credit limit")
	ErrInvalidDay       = errors.New("invalid day of month")
)

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// Validate rejects negative amounts. Zero is permitted: a zero-amount
// record still synthesizes a transaction so later amount edits reconcile
// through the normal update path.
func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t AccountType) Validate() error {
	switch t {
	case AccountChecking, AccountSavings, AccountOther:
		return nil
	}
	return ErrInvalidType
}

func (p PaymentMethod) Validate() error {
	switch p {
	case PaymentCash, PaymentDebit, PaymentCredit, PaymentOther:
		return nil
	}
	return ErrInvalidType
}

func (d CategoryDomain) Validate() error {
	switch d {
	case DomainExpense, DomainIncome:
		return nil
	}
	return ErrInvalidDomain
}

func (f *FundingRef) Validate() error {
	if f == nil {
		return nil
	}
	switch f.Type {
	case OwnerAccount, OwnerCard:
	default:
		return ErrInvalidType
	}
	if strings.TrimSpace(f.ID) == "" {
		return ErrInvalidReference
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.BankName) == "" {
		return ErrEmptyBankName
	}
	if err := a.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(a.Currency) == "" {
		return errors.New("empty currency")
	}
	return nil
}

func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.BankName) == "" {
		return ErrEmptyBankName
	}
	if strings.TrimSpace(c.Label) == "" {
		return errors.New("empty card label")
	}
	if c.LimitCents < 0 {
		return ErrInvalidLimit
	}
	if c.CutoffDay < 1 || c.CutoffDay > 31 {
		return ErrInvalidDay
	}
	if c.PaymentDay < 1 || c.PaymentDay > 31 {
		return ErrInvalidDay
	}
	if c.InterestRate < 0 {
		return errors.New("negative interest rate")
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if err := e.Method.Validate(); err != nil {
		return err
	}
	return e.Funding.Validate()
}

func (i Income) Validate() error {
	if err := i.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(i.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(i.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(i.Category) == "" {
		return ErrEmptyCategory
	}
	return i.Funding.Validate()
}

// SignedAmount returns the balance delta a source record produces against
// the given owner. The sign already encodes the effect on the owner, so
// applying a transaction is always a single addition: bank balances shrink
// on expenses and grow on income, card debt grows on expenses and shrinks
// on income (payments).
func SignedAmount(src SourceType, owner OwnerType, amount Money) int64 {
	switch {
	case src == SourceExpense && owner == OwnerAccount:
		return -amount.Cents
	case src == SourceIncome && owner == OwnerAccount:
		return amount.Cents
	case src == SourceExpense && owner == OwnerCard:
		return amount.Cents
	default: // income against a card is a payment
		return -amount.Cents
	}
}
