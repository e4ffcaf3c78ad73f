package repository

import (
	"context"
	"testing"
	"time"

	"spendwise/internal/models"
	"spendwise/internal/money"
	"spendwise/internal/testutil"
)

func setupRepo(t *testing.T) (ExpenseRepository, string, string) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	alice := testutil.CreateTestUser(t, db)
	bob := testutil.CreateTestUser(t, db)

	testutil.CreateTestExpense(t, db, alice.ID, "2024-01-05", "groceries", "100.00")
	testutil.CreateTestExpense(t, db, alice.ID, "2024-01-20", "groceries", "50.25")
	testutil.CreateTestExpense(t, db, alice.ID, "2024-01-31", "transport", "20.00")
	testutil.CreateTestExpense(t, db, alice.ID, "2024-02-01", "groceries", "7.00")
	testutil.CreateTestExpense(t, db, alice.ID, "2023-01-15", "transport", "3.00")
	testutil.CreateTestExpense(t, db, bob.ID, "2024-01-10", "groceries", "999.99")

	return NewExpenseRepository(db), alice.ID, bob.ID
}

func TestExpenseRepository_FindBy(t *testing.T) {
	repo, alice, _ := setupRepo(t)
	ctx := context.Background()

	t.Run("month_window", func(t *testing.T) {
		got, err := repo.FindBy(ctx, ForMonth(alice, 2024, 1), 0, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 expenses in January 2024, got %d", len(got))
		}
		if got[0].Date.Day() != 31 || got[2].Date.Day() != 5 {
			t.Errorf("expected newest first, got %v .. %v", got[0].Date, got[2].Date)
		}
	})

	t.Run("month_across_years", func(t *testing.T) {
		got, err := repo.FindBy(ctx, Criteria{UserID: alice, Month: 1}, 0, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 4 {
			t.Errorf("expected 4 January expenses across years, got %d", len(got))
		}
	})

	t.Run("pagination", func(t *testing.T) {
		page, err := repo.FindBy(ctx, Criteria{UserID: alice}, 2, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page) != 2 {
			t.Fatalf("expected 2 expenses, got %d", len(page))
		}
		if page[0].Date.Format(models.DateLayout) != "2024-01-20" {
			t.Errorf("expected third newest expense first, got %s", page[0].Date.Format(models.DateLayout))
		}
	})
}

func TestExpenseRepository_Aggregates(t *testing.T) {
	repo, alice, bob := setupRepo(t)
	ctx := context.Background()
	jan := ForMonth(alice, 2024, 1)

	t.Run("count", func(t *testing.T) {
		n, err := repo.CountBy(ctx, jan)
		if err != nil || n != 3 {
			t.Errorf("expected 3, got %d (err %v)", n, err)
		}
	})

	t.Run("sum", func(t *testing.T) {
		total, err := repo.SumAmounts(ctx, jan)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if total != money.FromCents(17025) {
			t.Errorf("expected 170.25, got %s", total)
		}
	})

	t.Run("sum_empty_is_zero", func(t *testing.T) {
		total, err := repo.SumAmounts(ctx, ForMonth(alice, 2022, 6))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if total != money.Zero {
			t.Errorf("expected zero, got %s", total)
		}
	})

	t.Run("sum_by_category", func(t *testing.T) {
		totals, err := repo.SumAmountsByCategory(ctx, jan)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(totals) != 2 || totals["groceries"] != 15025 || totals["transport"] != 2000 {
			t.Errorf("unexpected totals: %v", totals)
		}
	})

	t.Run("average_by_category", func(t *testing.T) {
		averages, err := repo.AverageAmountsByCategory(ctx, jan)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := averages["groceries"].String(); got != "75.125" {
			t.Errorf("expected exact groceries average 75.125, got %s", got)
		}
		if got := averages["transport"].String(); got != "20" {
			t.Errorf("expected transport average 20, got %s", got)
		}
	})

	t.Run("scoped_to_user", func(t *testing.T) {
		total, err := repo.SumAmounts(ctx, ForMonth(bob, 2024, 1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if total != money.FromCents(99999) {
			t.Errorf("expected 999.99 for bob, got %s", total)
		}
	})
}

func TestExpenseRepository_ListExpenditureYears(t *testing.T) {
	repo, alice, _ := setupRepo(t)

	years, err := repo.ListExpenditureYears(context.Background(), alice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(years) != 2 || years[0] != 2024 || years[1] != 2023 {
		t.Errorf("expected [2024 2023], got %v", years)
	}
}

func TestExpenseRepository_SaveFindDelete(t *testing.T) {
	repo, alice, _ := setupRepo(t)
	ctx := context.Background()

	expense := &models.Expense{
		UserID:      alice,
		Date:        time.Date(2024, 3, 9, 17, 45, 0, 0, time.UTC),
		Category:    "utilities",
		AmountCents: 4200,
		Description: "Power bill",
	}
	if err := repo.Save(ctx, expense); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if expense.ID == "" {
		t.Fatal("expected ID to be assigned")
	}

	expense.AmountCents = 4300
	if err := repo.Save(ctx, expense); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	found, err := repo.Find(ctx, expense.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if found.AmountCents != 4300 {
		t.Errorf("expected updated amount 4300, got %d", found.AmountCents)
	}
	if found.Date.Hour() != 0 || found.Date.Day() != 9 {
		t.Errorf("expected date truncated to the calendar day, got %v", found.Date)
	}

	if err := repo.Delete(ctx, expense.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	_, err = repo.Find(ctx, expense.ID)
	testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")

	err = repo.Delete(ctx, expense.ID)
	testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
}

func TestExpenseRepository_Transaction(t *testing.T) {
	repo, alice, _ := setupRepo(t)
	ctx := context.Background()
	march := ForMonth(alice, 2024, 3)

	newExpense := func(cents int64) *models.Expense {
		return &models.Expense{
			UserID:      alice,
			Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Category:    "groceries",
			AmountCents: cents,
			Description: "Market",
		}
	}

	t.Run("rollback_discards_writes", func(t *testing.T) {
		tx, err := repo.Begin(ctx)
		if err != nil {
			t.Fatalf("begin failed: %v", err)
		}
		if err := tx.Save(ctx, newExpense(100)); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if err := tx.Rollback(); err != nil {
			t.Fatalf("rollback failed: %v", err)
		}

		n, err := repo.CountBy(ctx, march)
		if err != nil || n != 0 {
			t.Errorf("expected no March expenses after rollback, got %d (err %v)", n, err)
		}
	})

	t.Run("commit_persists_writes", func(t *testing.T) {
		tx, err := repo.Begin(ctx)
		if err != nil {
			t.Fatalf("begin failed: %v", err)
		}
		for _, cents := range []int64{100, 250} {
			if err := tx.Save(ctx, newExpense(cents)); err != nil {
				t.Fatalf("save failed: %v", err)
			}
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("commit failed: %v", err)
		}
		if err := tx.Rollback(); err != nil {
			t.Errorf("rollback after commit should be a no-op, got %v", err)
		}

		total, err := repo.SumAmounts(ctx, march)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if total != money.FromCents(350) {
			t.Errorf("expected 3.50 in March, got %s", total)
		}
	})
}
