package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"spendwise/internal/budget"
	"spendwise/internal/money"
	"spendwise/internal/repository"
	"spendwise/internal/testutil"
)

func TestGenerateAlerts(t *testing.T) {
	table := budget.MustNew(
		budget.Entry{Category: "groceries", Budget: money.FromCents(30000)},
		budget.Entry{Category: "transport", Budget: money.FromCents(50000)},
		budget.Entry{Category: "utilities", Budget: money.FromCents(10000)},
	)
	ctx := context.Background()

	t.Run("one_category_over_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestExpense(t, db, user.ID, "2024-01-10", "groceries", "350.00")
		testutil.CreateTestExpense(t, db, user.ID, "2024-01-12", "transport", "200.00")
		svc := NewAlertService(repository.NewExpenseRepository(db), table)

		alerts, err := svc.Generate(ctx, user.ID, 2024, 1)
		testutil.AssertNoError(t, err)

		if len(alerts) != 1 {
			t.Fatalf("expected 1 alert, got %+v", alerts)
		}
		a := alerts[0]
		if a.Type != AlertWarning || a.Category != "groceries" {
			t.Errorf("unexpected alert: %+v", a)
		}
		if a.Budget != money.FromCents(30000) || a.Spent != money.FromCents(35000) || a.Overspent != money.FromCents(5000) {
			t.Errorf("unexpected amounts: budget %s spent %s overspent %s", a.Budget, a.Spent, a.Overspent)
		}
		if a.Message != "groceries budget exceeded by 50.00" {
			t.Errorf("unexpected message %q", a.Message)
		}
	})

	t.Run("warnings_follow_table_order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestExpense(t, db, user.ID, "2024-01-10", "utilities", "100.01")
		testutil.CreateTestExpense(t, db, user.ID, "2024-01-12", "groceries", "300.01")
		svc := NewAlertService(repository.NewExpenseRepository(db), table)

		alerts, err := svc.Generate(ctx, user.ID, 2024, 1)
		testutil.AssertNoError(t, err)

		if len(alerts) != 2 || alerts[0].Category != "groceries" || alerts[1].Category != "utilities" {
			t.Errorf("expected groceries then utilities, got %+v", alerts)
		}
	})

	t.Run("exactly_at_budget_is_fine", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestExpense(t, db, user.ID, "2024-01-10", "groceries", "300.00")
		svc := NewAlertService(repository.NewExpenseRepository(db), table)

		alerts, err := svc.Generate(ctx, user.ID, 2024, 1)
		testutil.AssertNoError(t, err)

		if len(alerts) != 1 || alerts[0].Type != AlertSuccess {
			t.Errorf("expected a single success alert, got %+v", alerts)
		}
	})

	t.Run("no_expenses", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		user := testutil.CreateTestUser(t, db)
		svc := NewAlertService(repository.NewExpenseRepository(db), table)

		alerts, err := svc.Generate(ctx, user.ID, 2024, 1)
		testutil.AssertNoError(t, err)

		if len(alerts) != 1 || alerts[0].Type != AlertSuccess || alerts[0].Message != MsgWithinBudget {
			t.Errorf("expected a single success alert, got %+v", alerts)
		}
	})

	t.Run("zero_budget_warning_keeps_every_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestExpense(t, db, user.ID, "2024-01-10", "gifts", "5.00")
		zeroTable := budget.MustNew(budget.Entry{Category: "gifts", Budget: money.Zero})
		svc := NewAlertService(repository.NewExpenseRepository(db), zeroTable)

		alerts, err := svc.Generate(ctx, user.ID, 2024, 1)
		testutil.AssertNoError(t, err)
		if len(alerts) != 1 || alerts[0].Type != AlertWarning {
			t.Fatalf("expected a single warning, got %+v", alerts)
		}

		raw, err := json.Marshal(alerts[0])
		testutil.AssertNoError(t, err)
		for _, field := range []string{`"budget":"0.00"`, `"spent":"5.00"`, `"overspent":"5.00"`} {
			if !strings.Contains(string(raw), field) {
				t.Errorf("expected %s in %s", field, raw)
			}
		}
	})

	t.Run("success_alert_has_no_amounts", func(t *testing.T) {
		raw, err := json.Marshal(Alert{Type: AlertSuccess, Message: MsgWithinBudget})
		testutil.AssertNoError(t, err)
		if strings.Contains(string(raw), "budget\"") || strings.Contains(string(raw), "spent") {
			t.Errorf("expected only type and message, got %s", raw)
		}
	})

	t.Run("read_error_propagates", func(t *testing.T) {
		svc := NewAlertService(failingReader{err: errStore}, table)

		alerts, err := svc.Generate(ctx, "u", 2024, 1)
		if !errors.Is(err, errStore) || alerts != nil {
			t.Errorf("expected store error and no alerts, got %v, %+v", err, alerts)
		}
	})
}
