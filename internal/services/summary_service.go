package services

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"spendwise/internal/money"
	"spendwise/internal/repository"
)

// CategoryAggregate is one category's value for a month with its share of
// the reference value as a percentage rounded to one decimal.
type CategoryAggregate struct {
	Category   string          `json:"category"`
	Value      decimal.Decimal `json:"value"`
	Percentage float64         `json:"percentage"`
}

// MonthlySummary bundles every monthly aggregate shown on the dashboard.
type MonthlySummary struct {
	Year             int                 `json:"year"`
	Month            int                 `json:"month"`
	Total            money.Money         `json:"total"`
	CategoryTotals   []CategoryAggregate `json:"category_totals"`
	CategoryAverages []CategoryAggregate `json:"category_averages"`
}

// summaryService computes monthly aggregates from stored expenses.
type summaryService struct {
	reader repository.AggregationReader
}

// NewSummaryService creates a new SummaryServicer.
func NewSummaryService(reader repository.AggregationReader) SummaryServicer {
	return &summaryService{reader: reader}
}

// ComputeTotal returns the sum of the user's expenses in the month.
func (s *summaryService) ComputeTotal(ctx context.Context, userID string, year, month int) (money.Money, error) {
	return s.reader.SumAmounts(ctx, repository.ForMonth(userID, year, month))
}

// ComputePerCategoryTotals returns each category's total with its share of
// the month's spending.
func (s *summaryService) ComputePerCategoryTotals(ctx context.Context, userID string, year, month int) ([]CategoryAggregate, error) {
	totals, err := s.reader.SumAmountsByCategory(ctx, repository.ForMonth(userID, year, month))
	if err != nil {
		return nil, err
	}

	values := make(map[string]decimal.Decimal, len(totals))
	sum := decimal.Zero
	for category, total := range totals {
		values[category] = total.Decimal()
		sum = sum.Add(total.Decimal())
	}
	return buildAggregates(values, sum), nil
}

// ComputePerCategoryAverages returns each category's mean expense with its
// size relative to the largest average.
func (s *summaryService) ComputePerCategoryAverages(ctx context.Context, userID string, year, month int) ([]CategoryAggregate, error) {
	averages, err := s.reader.AverageAmountsByCategory(ctx, repository.ForMonth(userID, year, month))
	if err != nil {
		return nil, err
	}

	highest := decimal.Zero
	for _, avg := range averages {
		if avg.GreaterThan(highest) {
			highest = avg
		}
	}
	return buildAggregates(averages, highest), nil
}

// MonthlySummary computes the total, per-category totals and averages.
func (s *summaryService) MonthlySummary(ctx context.Context, userID string, year, month int) (*MonthlySummary, error) {
	total, err := s.ComputeTotal(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}
	totals, err := s.ComputePerCategoryTotals(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}
	averages, err := s.ComputePerCategoryAverages(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}

	return &MonthlySummary{
		Year:             year,
		Month:            month,
		Total:            total,
		CategoryTotals:   totals,
		CategoryAverages: averages,
	}, nil
}

// buildAggregates sorts by value descending, ties by category name.
func buildAggregates(values map[string]decimal.Decimal, reference decimal.Decimal) []CategoryAggregate {
	aggregates := make([]CategoryAggregate, 0, len(values))
	for category, value := range values {
		aggregates = append(aggregates, CategoryAggregate{
			Category:   category,
			Value:      value,
			Percentage: money.Percentage(value, reference),
		})
	}

	sort.Slice(aggregates, func(i, j int) bool {
		if c := aggregates[i].Value.Cmp(aggregates[j].Value); c != 0 {
			return c > 0
		}
		return aggregates[i].Category < aggregates[j].Category
	})
	return aggregates
}
