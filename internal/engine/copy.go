package engine

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/finflow/internal/models"
)

// Notification titles. The bodies below are bit-stable so clients and
// tests can assert on them.
const (
	BillReminderTitle = "Upcoming Bills Reminder"
	BillDueTitle      = "Bills Due Today"
	BudgetAlertTitle  = "Budget Alert"
)

// billReminderBody renders the T-minus-lead reminder text for a group of
// bills due on the same day of the month.
func billReminderBody(day int, names []string, total decimal.Decimal) string {
	return fmt.Sprintf("You have bills due on the %s: %s (Total: $%s)",
		ordinal(day), strings.Join(names, ", "), total.StringFixed(2))
}

// billDueBody renders the due-date alert text.
func billDueBody(names []string, total decimal.Decimal) string {
	return fmt.Sprintf("Don't forget to pay today's bills: %s (Total: $%s)",
		strings.Join(names, ", "), total.StringFixed(2))
}

// BudgetAlertBody renders the budget alert text for a threshold event.
func BudgetAlertBody(event *models.ThresholdEvent) string {
	var msg string
	switch event.Percent {
	case 80:
		msg = "You have used 80% of your monthly budget."
	case 90:
		msg = "You have used 90% of your monthly budget! Be careful with additional expenses."
	case 100:
		msg = "You have reached your monthly budget limit!"
	case 110:
		msg = "Warning: You have exceeded your monthly budget by 10%!"
	default:
		msg = fmt.Sprintf("You have used %d%% of your monthly budget.", event.Percent)
	}
	return fmt.Sprintf("%s (%s of %s)", msg,
		formatMoney(event.TotalSpent, event.CurrencyCode),
		formatMoney(event.MonthlyBudget, event.CurrencyCode))
}

// formatMoney renders an amount with its currency symbol.
func formatMoney(amount decimal.Decimal, currencyCode string) string {
	return models.CurrencySymbol(currencyCode) + amount.StringFixed(2)
}

// ordinal renders a day of month with its English suffix: 1st, 2nd, 3rd,
// 11th-13th, 21st, 22nd and so on.
func ordinal(day int) string {
	suffix := "th"
	switch {
	case day%100 == 11, day%100 == 12, day%100 == 13:
		suffix = "th"
	case day%10 == 1:
		suffix = "st"
	case day%10 == 2:
		suffix = "nd"
	case day%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", day, suffix)
}
