// Package repository is the persistence boundary for expenses. The import
// engine writes through ExpenseTx; the summary and alert engines only see
// AggregationReader.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
	"spendwise/internal/money"
)

// Criteria filters expenses. Zero-valued fields are not applied; Year and
// Month match the calendar date of the expense.
type Criteria struct {
	UserID string
	Year   int
	Month  int
}

// ForMonth builds criteria for one user's calendar month.
func ForMonth(userID string, year, month int) Criteria {
	return Criteria{UserID: userID, Year: year, Month: month}
}

// ExpenseWriter persists expenses: insert when the ID is empty, update otherwise.
type ExpenseWriter interface {
	Save(ctx context.Context, expense *models.Expense) error
}

// ExpenseTx is a write handle scoped to one database transaction.
// Rollback after Commit is a no-op.
type ExpenseTx interface {
	ExpenseWriter
	Commit() error
	Rollback() error
}

// AggregationReader is the read-only query surface over stored expenses.
type AggregationReader interface {
	FindBy(ctx context.Context, c Criteria, offset, limit int) ([]models.Expense, error)
	CountBy(ctx context.Context, c Criteria) (int64, error)
	SumAmounts(ctx context.Context, c Criteria) (money.Money, error)
	SumAmountsByCategory(ctx context.Context, c Criteria) (map[string]money.Money, error)
	AverageAmountsByCategory(ctx context.Context, c Criteria) (map[string]decimal.Decimal, error)
	ListExpenditureYears(ctx context.Context, userID string) ([]int, error)
}

// ExpenseRepository is the full persistence contract for expenses.
type ExpenseRepository interface {
	ExpenseWriter
	AggregationReader
	Find(ctx context.Context, id string) (*models.Expense, error)
	Delete(ctx context.Context, id string) error
	Begin(ctx context.Context) (ExpenseTx, error)
}

// expenseRepository implements ExpenseRepository on gorm.
type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

// Find returns the expense with the given ID.
func (r *expenseRepository) Find(ctx context.Context, id string) (*models.Expense, error) {
	var expense models.Expense
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// Save inserts or updates an expense outside of any explicit transaction.
func (r *expenseRepository) Save(ctx context.Context, expense *models.Expense) error {
	return save(r.db.WithContext(ctx), expense)
}

// Delete soft-deletes an expense.
func (r *expenseRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Expense{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrExpenseNotFound
	}
	return nil
}

// Begin opens a transaction. The caller must Commit or Rollback.
func (r *expenseRepository) Begin(ctx context.Context) (ExpenseTx, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, tx.Error)
	}
	return &expenseTx{tx: tx}, nil
}

// FindBy returns matching expenses, newest first. A non-positive limit means no limit.
func (r *expenseRepository) FindBy(ctx context.Context, c Criteria, offset, limit int) ([]models.Expense, error) {
	q := r.scoped(ctx, c).Order("date DESC").Order("created_at DESC")
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var expenses []models.Expense
	if err := q.Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

// CountBy counts matching expenses.
func (r *expenseRepository) CountBy(ctx context.Context, c Criteria) (int64, error) {
	var count int64
	if err := r.scoped(ctx, c).Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}

// SumAmounts totals matching expenses; zero when nothing matches.
func (r *expenseRepository) SumAmounts(ctx context.Context, c Criteria) (money.Money, error) {
	var total int64
	err := r.scoped(ctx, c).
		Select("CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT)").
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return money.FromCents(total), nil
}

type categoryRow struct {
	Category     string
	Total        int64
	ExpenseCount int64
}

func (r *expenseRepository) categoryRows(ctx context.Context, c Criteria) ([]categoryRow, error) {
	var rows []categoryRow
	err := r.scoped(ctx, c).
		Select("category, CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT) AS total, COUNT(*) AS expense_count").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

// SumAmountsByCategory totals matching expenses per category.
func (r *expenseRepository) SumAmountsByCategory(ctx context.Context, c Criteria) (map[string]money.Money, error) {
	rows, err := r.categoryRows(ctx, c)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]money.Money, len(rows))
	for _, row := range rows {
		totals[row.Category] = money.FromCents(row.Total)
	}
	return totals, nil
}

// AverageAmountsByCategory returns the mean expense per category in major
// units. The mean is computed from the exact cent sum, not with SQL AVG.
func (r *expenseRepository) AverageAmountsByCategory(ctx context.Context, c Criteria) (map[string]decimal.Decimal, error) {
	rows, err := r.categoryRows(ctx, c)
	if err != nil {
		return nil, err
	}

	averages := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		averages[row.Category] = money.Mean(money.FromCents(row.Total), row.ExpenseCount)
	}
	return averages, nil
}

// ListExpenditureYears returns the distinct years with expenses, newest first.
func (r *expenseRepository) ListExpenditureYears(ctx context.Context, userID string) ([]int, error) {
	var years []int
	err := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select("DISTINCT "+datePart(r.db, "year")+" AS year").
		Where("user_id = ?", userID).
		Order("year DESC").
		Scan(&years).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return years, nil
}

func (r *expenseRepository) scoped(ctx context.Context, c Criteria) *gorm.DB {
	return applyCriteria(r.db.WithContext(ctx).Model(&models.Expense{}), c)
}

func applyCriteria(q *gorm.DB, c Criteria) *gorm.DB {
	if c.UserID != "" {
		q = q.Where("user_id = ?", c.UserID)
	}

	// Half-open ranges keep the (user_id, date) index usable.
	switch {
	case c.Year > 0 && c.Month > 0:
		from := time.Date(c.Year, time.Month(c.Month), 1, 0, 0, 0, 0, time.UTC)
		q = q.Where("date >= ? AND date < ?", from, from.AddDate(0, 1, 0))
	case c.Year > 0:
		from := time.Date(c.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		q = q.Where("date >= ? AND date < ?", from, from.AddDate(1, 0, 0))
	case c.Month > 0:
		q = q.Where(datePart(q, "month")+" = ?", c.Month)
	}
	return q
}

// datePart returns a SQL expression extracting "year" or "month" from the date column.
func datePart(db *gorm.DB, part string) string {
	if db.Dialector.Name() == "sqlite" {
		format := "%Y"
		if part == "month" {
			format = "%m"
		}
		return fmt.Sprintf("CAST(strftime('%s', date) AS INTEGER)", format)
	}
	return fmt.Sprintf("CAST(EXTRACT(%s FROM date) AS INTEGER)", strings.ToUpper(part))
}

func save(db *gorm.DB, expense *models.Expense) error {
	expense.Date = models.CalendarDate(expense.Date)

	var err error
	if expense.IsPersisted() {
		err = db.Save(expense).Error
	} else {
		err = db.Create(expense).Error
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// expenseTx implements ExpenseTx on a gorm transaction.
type expenseTx struct {
	tx   *gorm.DB
	done bool
}

func (t *expenseTx) Save(_ context.Context, expense *models.Expense) error {
	// The context was bound when the transaction began.
	return save(t.tx, expense)
}

func (t *expenseTx) Commit() error {
	t.done = true
	if err := t.tx.Commit().Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (t *expenseTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Rollback().Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
