package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"spendwise/internal/budget"
	"spendwise/internal/models"
	"spendwise/internal/money"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique username.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithUsername(t, db, fmt.Sprintf("user%d", nextID()))
}

// CreateTestUserWithUsername creates a user with the given username.
func CreateTestUserWithUsername(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: username,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestExpense stores an expense. date uses the YYYY-MM-DD layout and
// amount is in major units, e.g. "12.50".
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, date, category, amount string) *models.Expense {
	t.Helper()

	day, err := time.Parse(models.DateLayout, date)
	if err != nil {
		t.Fatalf("bad fixture date %q: %v", date, err)
	}
	cents, err := money.Parse(amount)
	if err != nil {
		t.Fatalf("bad fixture amount %q: %v", amount, err)
	}

	expense := &models.Expense{
		UserID:      userID,
		Date:        day,
		Category:    category,
		AmountCents: cents.Cents(),
		Description: fmt.Sprintf("Test expense %d", nextID()),
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// TestBudgetTable returns the budget table used across service and handler
// tests: groceries 300.00, transport 500.00, utilities 150.00.
func TestBudgetTable(t *testing.T) *budget.Table {
	t.Helper()

	table, err := budget.New(
		budget.Entry{Category: "groceries", Budget: money.FromCents(30000)},
		budget.Entry{Category: "transport", Budget: money.FromCents(50000)},
		budget.Entry{Category: "utilities", Budget: money.FromCents(15000)},
	)
	if err != nil {
		t.Fatalf("failed to build test budget table: %v", err)
	}
	return table
}
