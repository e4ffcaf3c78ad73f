package services

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/testutil"
)

func TestValidateExpenseData(t *testing.T) {
	table := testutil.TestBudgetTable(t)
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	valid := func() ExpenseInput {
		return ExpenseInput{
			Amount:      decimal.RequireFromString("12.50"),
			Description: "Weekly shop",
			Date:        time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			Category:    "groceries",
		}
	}

	t.Run("valid", func(t *testing.T) {
		testutil.AssertNoError(t, ValidateExpenseData(valid(), table, now))
	})

	t.Run("category_is_normalized", func(t *testing.T) {
		in := valid()
		in.Category = "  Groceries "
		testutil.AssertNoError(t, ValidateExpenseData(in, table, now))
	})

	t.Run("today_is_not_future", func(t *testing.T) {
		in := valid()
		in.Date = time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC)
		testutil.AssertNoError(t, ValidateExpenseData(in, table, now))
	})

	cases := []struct {
		name   string
		mutate func(*ExpenseInput)
		want   string
	}{
		{"zero_amount", func(in *ExpenseInput) { in.Amount = decimal.Zero }, MsgAmountNotPositive},
		{"negative_amount", func(in *ExpenseInput) { in.Amount = decimal.RequireFromString("-3") }, MsgAmountNotPositive},
		{"rounds_to_zero_cents", func(in *ExpenseInput) { in.Amount = decimal.RequireFromString("0.004") }, MsgAmountNotPositive},
		{"amount_beyond_cents_range", func(in *ExpenseInput) { in.Amount = decimal.RequireFromString("99999999999999999999") }, MsgAmountOutOfRange},
		{"just_over_max_amount", func(in *ExpenseInput) { in.Amount = decimal.RequireFromString("1000000000000.01") }, MsgAmountOutOfRange},
		{"huge_negative_amount", func(in *ExpenseInput) { in.Amount = decimal.RequireFromString("-99999999999999999999") }, MsgAmountNotPositive},
		{"extreme_scale", func(in *ExpenseInput) { in.Amount = decimal.New(1, -300000000) }, MsgAmountNotPositive},
		{"blank_description", func(in *ExpenseInput) { in.Description = "   " }, MsgDescriptionEmpty},
		{"tomorrow", func(in *ExpenseInput) { in.Date = now.AddDate(0, 0, 1) }, MsgDateInFuture},
		{"unknown_category", func(in *ExpenseInput) { in.Category = "pets" }, MsgInvalidCategory},
		{"long_description", func(in *ExpenseInput) { in.Description = strings.Repeat("x", 256) }, MsgDescriptionTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid()
			tc.mutate(&in)

			err := ValidateExpenseData(in, table, now)
			testutil.AssertAppErrorMessage(t, err, "VALIDATION_FAILED", tc.want)
		})
	}

	t.Run("reports_every_violation_in_order", func(t *testing.T) {
		in := ExpenseInput{
			Amount:      decimal.Zero,
			Description: "",
			Date:        now.AddDate(1, 0, 0),
			Category:    "pets",
		}

		err := ValidateExpenseData(in, table, now)
		want := "Amount must be greater than 0, Description cannot be empty, Date cannot be in the future, Invalid category selected"
		if err == nil || err.Error() != want {
			t.Errorf("expected %q, got %v", want, err)
		}
	})
}
