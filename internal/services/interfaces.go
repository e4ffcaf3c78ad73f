package services

import (
	"context"
	"io"

	"spendwise/internal/models"
	"spendwise/internal/money"
	"spendwise/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(username, password string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(username, password string) (*models.User, error)
}

// ExpenseServicer defines the contract for expense CRUD. Every call is scoped
// to the given user; touching another user's expense yields ErrForbidden.
type ExpenseServicer interface {
	ListExpenses(ctx context.Context, userID string, year, month int, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
	CreateExpense(ctx context.Context, userID string, input ExpenseInput) (*models.Expense, error)
	GetExpenseByID(ctx context.Context, userID, expenseID string) (*models.Expense, error)
	UpdateExpense(ctx context.Context, userID, expenseID string, input ExpenseInput) (*models.Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID string) error
	ListYears(ctx context.Context, userID string) ([]int, error)
}

// ImportServicer defines the contract for bulk CSV imports.
type ImportServicer interface {
	ImportCSV(ctx context.Context, userID string, r io.Reader) (*ImportOutcome, error)
}

// SummaryServicer computes monthly aggregates for one user.
type SummaryServicer interface {
	ComputeTotal(ctx context.Context, userID string, year, month int) (money.Money, error)
	ComputePerCategoryTotals(ctx context.Context, userID string, year, month int) ([]CategoryAggregate, error)
	ComputePerCategoryAverages(ctx context.Context, userID string, year, month int) ([]CategoryAggregate, error)
	MonthlySummary(ctx context.Context, userID string, year, month int) (*MonthlySummary, error)
}

// AlertServicer compares monthly spending against the budget table.
type AlertServicer interface {
	Generate(ctx context.Context, userID string, year, month int) ([]Alert, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
