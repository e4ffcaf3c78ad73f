package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"spendwise/internal/models"
	"spendwise/internal/money"
	"spendwise/internal/repository"
)

var errStore = errors.New("store unavailable")

// fakeRepo only implements Begin; any other call panics through the nil
// embedded interface.
type fakeRepo struct {
	repository.ExpenseRepository
	tx       *fakeTx
	beginErr error
}

func (f *fakeRepo) Begin(context.Context) (repository.ExpenseTx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return f.tx, nil
}

// fakeTx stages writes until Commit. failOnSave makes the n-th Save fail.
type fakeTx struct {
	failOnSave int
	commitErr  error

	saves      int
	staged     []*models.Expense
	committed  []*models.Expense
	rolledBack bool
	done       bool
}

func (f *fakeTx) Save(_ context.Context, expense *models.Expense) error {
	f.saves++
	if f.failOnSave == f.saves {
		return errStore
	}
	f.staged = append(f.staged, expense)
	return nil
}

func (f *fakeTx) Commit() error {
	f.done = true
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = f.staged
	return nil
}

func (f *fakeTx) Rollback() error {
	if f.done {
		return nil
	}
	f.done = true
	f.rolledBack = true
	f.staged = nil
	return nil
}

// failingReader returns err from every aggregation.
type failingReader struct {
	repository.AggregationReader
	err error
}

func (f failingReader) SumAmounts(context.Context, repository.Criteria) (money.Money, error) {
	return 0, f.err
}

func (f failingReader) SumAmountsByCategory(context.Context, repository.Criteria) (map[string]money.Money, error) {
	return nil, f.err
}

func (f failingReader) AverageAmountsByCategory(context.Context, repository.Criteria) (map[string]decimal.Decimal, error) {
	return nil, f.err
}
