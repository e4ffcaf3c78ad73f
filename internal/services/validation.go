package services

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"spendwise/internal/budget"
	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
	"spendwise/internal/money"
)

// Validation messages, reported in this order.
const (
	MsgAmountNotPositive  = "Amount must be greater than 0"
	MsgDescriptionEmpty   = "Description cannot be empty"
	MsgDateInFuture       = "Date cannot be in the future"
	MsgInvalidCategory    = "Invalid category selected"
	MsgDescriptionTooLong = "Description cannot exceed 255 characters"
	MsgAmountOutOfRange   = "Amount cannot exceed 1000000000000.00"
	maxDescriptionLength  = 255
)

// ExpenseInput carries user-supplied expense fields before they are stored.
type ExpenseInput struct {
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	Category    string
}

// ValidateExpenseData checks every rule and reports all violations in one
// VALIDATION_FAILED error, or returns nil. now is the reference for "future".
func ValidateExpenseData(input ExpenseInput, budgets *budget.Table, now time.Time) error {
	var problems []string

	// Amounts that round to zero cents are not positive either.
	switch {
	case input.Amount.IsPositive() && money.ExceedsMax(input.Amount):
		problems = append(problems, MsgAmountOutOfRange)
	case !money.InRange(input.Amount), !money.FromDecimal(input.Amount).IsPositive():
		problems = append(problems, MsgAmountNotPositive)
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		problems = append(problems, MsgDescriptionEmpty)
	}

	if models.CalendarDate(input.Date).After(models.CalendarDate(now)) {
		problems = append(problems, MsgDateInFuture)
	}

	if !budgets.Has(budget.NormalizeCategory(input.Category)) {
		problems = append(problems, MsgInvalidCategory)
	}

	if utf8.RuneCountInString(description) > maxDescriptionLength {
		problems = append(problems, MsgDescriptionTooLong)
	}

	if len(problems) > 0 {
		return apperrors.WithMessage(apperrors.ErrValidation, strings.Join(problems, ", "))
	}
	return nil
}

// buildExpense turns validated input into a model owned by userID.
func buildExpense(userID string, input ExpenseInput) *models.Expense {
	return &models.Expense{
		UserID:      userID,
		Date:        models.CalendarDate(input.Date),
		Category:    budget.NormalizeCategory(input.Category),
		AmountCents: money.FromDecimal(input.Amount).Cents(),
		Description: strings.TrimSpace(input.Description),
	}
}
