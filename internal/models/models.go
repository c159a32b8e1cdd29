// Package models defines the domain entities for the finance engine.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the default currency for new users.
const DefaultCurrency = "USD"

// SupportedCurrencies maps currency codes to display symbols.
var SupportedCurrencies = map[string]string{
	"USD": "$",
	"SGD": "S$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"MYR": "RM",
	"THB": "฿",
	"IDR": "Rp",
	"PHP": "₱",
	"VND": "₫",
	"KRW": "₩",
	"INR": "₹",
	"AUD": "A$",
	"NZD": "NZ$",
	"HKD": "HK$",
	"TWD": "NT$",
}

// CurrencySymbol returns the display symbol for a currency code,
// falling back to the code itself for unknown currencies.
func CurrencySymbol(code string) string {
	if sym, ok := SupportedCurrencies[code]; ok {
		return sym
	}
	return code
}

// Transaction types.
const (
	TransactionTypeExpense = "expense"
	TransactionTypeIncome  = "income"
)

// Frequency values for recurring definitions.
const (
	FrequencyDaily     = "daily"
	FrequencyWeekly    = "weekly"
	FrequencyBiweekly  = "biweekly"
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
	FrequencyYearly    = "yearly"
)

// Bill frequency values. Bill scheduling only cares about the due
// day-of-month, so bills are simpler than recurring definitions.
const (
	BillFrequencyOnce      = "once"
	BillFrequencyMonthly   = "monthly"
	BillFrequencyQuarterly = "quarterly"
	BillFrequencyYearly    = "yearly"
)

// DefaultBillCategory is assigned to bills created without a category.
const DefaultBillCategory = "bills"

// User represents an account holder.
type User struct {
	ID            string
	CurrencyCode  string
	MonthlyBudget *decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Transaction represents a single ledger entry. Expenses carry negative
// amounts, income positive. Instances materialized from a recurring
// definition carry the definition id and their index in its stream.
type Transaction struct {
	ID            string
	UserID        string
	Amount        decimal.Decimal
	Currency      string
	Category      string
	Type          string
	Date          time.Time
	Note          string
	RecurringID   *string
	InstanceIndex *int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsExpense reports whether the transaction is an expense entry.
func (t *Transaction) IsExpense() bool {
	return t.Type == TransactionTypeExpense
}

// Bill represents a payable with a due date.
type Bill struct {
	ID        string
	UserID    string
	Name      string
	Amount    decimal.Decimal
	DueDate   time.Time
	Frequency string
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BaseTransaction is the template a recurring definition stamps out.
// It has no date; the expander supplies one per instance.
type BaseTransaction struct {
	ID       string
	Amount   decimal.Decimal
	Currency string
	Category string
	Type     string
	Note     string
}

// RecurringDefinition is a rule producing a stream of dated transaction
// instances. EndDate and Occurrences are mutually exclusive; both unset
// means open-ended. Only the materializer mutates CreatedInstances,
// LastCreatedDate and Active.
type RecurringDefinition struct {
	ID               string
	UserID           string
	Base             BaseTransaction
	Frequency        string
	StartDate        time.Time
	EndDate          *time.Time
	Occurrences      *int
	CreatedInstances int
	LastCreatedDate  *time.Time
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Instance is one concrete dated occurrence produced by the expander.
// Its id is deterministic: "{base transaction id}_{index}".
type Instance struct {
	ID            string
	RecurringID   string
	InstanceIndex int
	Date          time.Time
	Amount        decimal.Decimal
	Currency      string
	Category      string
	Type          string
	Note          string
}

// Transaction converts an instance into a persistable ledger entry
// owned by the given user.
func (i Instance) Transaction(userID string) *Transaction {
	recurringID := i.RecurringID
	index := i.InstanceIndex
	return &Transaction{
		ID:            i.ID,
		UserID:        userID,
		Amount:        i.Amount,
		Currency:      i.Currency,
		Category:      i.Category,
		Type:          i.Type,
		Date:          i.Date,
		Note:          i.Note,
		RecurringID:   &recurringID,
		InstanceIndex: &index,
	}
}

// ThresholdEvent is emitted when current-month spending crosses a budget
// threshold for the first time that month.
type ThresholdEvent struct {
	UserID        string
	Percent       int
	TotalSpent    decimal.Decimal
	MonthlyBudget decimal.Decimal
	CurrencyCode  string
	Year          int
	Month         time.Month
}

// Notification is a queued local notification awaiting delivery.
type Notification struct {
	ID        int64
	UserID    string
	FireAt    time.Time
	Title     string
	Body      string
	Payload   map[string]string
	Delivered bool
	CreatedAt time.Time
}
