package services

import (
	"context"
	"sort"
	"time"

	"spendwise/internal/budget"
	apperrors "spendwise/internal/errors"
	"spendwise/internal/logger"
	"spendwise/internal/models"
	"spendwise/internal/pagination"
	"spendwise/internal/repository"
)

// expenseService handles expense-related business logic.
type expenseService struct {
	repo    repository.ExpenseRepository
	budgets *budget.Table
	now     func() time.Time
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(repo repository.ExpenseRepository, budgets *budget.Table) ExpenseServicer {
	return &expenseService{repo: repo, budgets: budgets, now: time.Now}
}

// ListExpenses returns a page of the user's expenses for the given year and
// month, newest first. A zero year or month is not filtered on.
func (s *expenseService) ListExpenses(ctx context.Context, userID string, year, month int, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()
	criteria := repository.Criteria{UserID: userID, Year: year, Month: month}

	totalItems, err := s.repo.CountBy(ctx, criteria)
	if err != nil {
		return nil, err
	}

	expenses, err := s.repo.FindBy(ctx, criteria, page.Offset(), page.PageSize)
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// CreateExpense validates and stores a new expense.
func (s *expenseService) CreateExpense(ctx context.Context, userID string, input ExpenseInput) (*models.Expense, error) {
	if err := ValidateExpenseData(input, s.budgets, s.now()); err != nil {
		return nil, err
	}

	expense := buildExpense(userID, input)
	if err := s.repo.Save(ctx, expense); err != nil {
		return nil, err
	}

	logger.Get().Infow("Expense created", "user_id", userID, "expense_id", expense.ID, "category", expense.Category)
	return expense, nil
}

// GetExpenseByID retrieves an expense owned by the user.
func (s *expenseService) GetExpenseByID(ctx context.Context, userID, expenseID string) (*models.Expense, error) {
	expense, err := s.repo.Find(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return expense, nil
}

// UpdateExpense replaces every editable field of an expense owned by the user.
func (s *expenseService) UpdateExpense(ctx context.Context, userID, expenseID string, input ExpenseInput) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}
	if err := ValidateExpenseData(input, s.budgets, s.now()); err != nil {
		return nil, err
	}

	updated := buildExpense(userID, input)
	expense.Date = updated.Date
	expense.Category = updated.Category
	expense.AmountCents = updated.AmountCents
	expense.Description = updated.Description

	if err := s.repo.Save(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// DeleteExpense removes an expense owned by the user.
func (s *expenseService) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	if _, err := s.GetExpenseByID(ctx, userID, expenseID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, expenseID); err != nil {
		return err
	}

	logger.Get().Infow("Expense deleted", "user_id", userID, "expense_id", expenseID)
	return nil
}

// ListYears returns the years the user has expenses in, newest first. The
// current year is always present so a new user can still pick a period.
func (s *expenseService) ListYears(ctx context.Context, userID string) ([]int, error) {
	years, err := s.repo.ListExpenditureYears(ctx, userID)
	if err != nil {
		return nil, err
	}

	current := s.now().Year()
	hasCurrent := false
	for _, y := range years {
		if y == current {
			hasCurrent = true
			break
		}
	}
	if !hasCurrent {
		years = append(years, current)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}
