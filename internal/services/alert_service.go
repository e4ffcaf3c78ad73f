package services

import (
	"context"
	"fmt"

	"spendwise/internal/budget"
	"spendwise/internal/money"
	"spendwise/internal/repository"
)

// Alert types.
const (
	AlertWarning = "warning"
	AlertSuccess = "success"
)

// MsgWithinBudget is the message of the alert returned when no category is over budget.
const MsgWithinBudget = "Looking good! You're within budget for this month."

// Alert reports budget status. Warning alerts always carry all three
// amounts, zero included; the success alert carries only its message.
type Alert struct {
	Type     string `json:"type"`
	Category string `json:"category,omitempty"`
	*AlertAmounts
	Message string `json:"message"`
}

// AlertAmounts holds the figures behind a warning alert.
type AlertAmounts struct {
	Budget    money.Money `json:"budget"`
	Spent     money.Money `json:"spent"`
	Overspent money.Money `json:"overspent"`
}

// alertService checks monthly category totals against the budget table.
type alertService struct {
	reader  repository.AggregationReader
	budgets *budget.Table
}

// NewAlertService creates a new AlertServicer.
func NewAlertService(reader repository.AggregationReader, budgets *budget.Table) AlertServicer {
	return &alertService{reader: reader, budgets: budgets}
}

// Generate returns one warning per overspent category in budget-table order,
// or a single success alert. The result is never empty.
func (s *alertService) Generate(ctx context.Context, userID string, year, month int) ([]Alert, error) {
	totals, err := s.reader.SumAmountsByCategory(ctx, repository.ForMonth(userID, year, month))
	if err != nil {
		return nil, err
	}

	var alerts []Alert
	for _, entry := range s.budgets.Entries() {
		spent := totals[entry.Category]
		if spent <= entry.Budget {
			continue
		}
		overspent := spent - entry.Budget
		alerts = append(alerts, Alert{
			Type:     AlertWarning,
			Category: entry.Category,
			AlertAmounts: &AlertAmounts{
				Budget:    entry.Budget,
				Spent:     spent,
				Overspent: overspent,
			},
			Message: fmt.Sprintf("%s budget exceeded by %s", entry.Category, overspent),
		})
	}

	if len(alerts) == 0 {
		alerts = append(alerts, Alert{Type: AlertSuccess, Message: MsgWithinBudget})
	}
	return alerts, nil
}
