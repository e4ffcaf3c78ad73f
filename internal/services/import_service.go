package services

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"spendwise/internal/budget"
	apperrors "spendwise/internal/errors"
	"spendwise/internal/logger"
	"spendwise/internal/models"
	"spendwise/internal/money"
	"spendwise/internal/repository"
)

const (
	importColumns         = 4
	reasonInvalidColumns  = "invalid column count"
	reasonDuplicateRow    = "duplicate row"
	reasonUnknownCategory = "unknown category %q"
)

// SkipReason explains why a CSV line was not imported.
type SkipReason struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportOutcome summarizes one CSV import.
type ImportOutcome struct {
	ImportedCount int          `json:"imported_count"`
	SkippedCount  int          `json:"skipped_count"`
	SkipReasons   []SkipReason `json:"skip_reasons"`
}

func (o *ImportOutcome) skip(line int, reason string) {
	o.SkippedCount++
	o.SkipReasons = append(o.SkipReasons, SkipReason{Line: line, Reason: reason})
}

// rowKey identifies a row for de-duplication. Fields hold the raw text, so
// "10.00" and "10.0" are different rows.
type rowKey struct {
	date        string
	amount      string
	description string
	category    string
}

// importService reads CSV streams into expenses inside a single transaction.
type importService struct {
	repo    repository.ExpenseRepository
	budgets *budget.Table
	now     func() time.Time
}

// NewImportService creates a new ImportServicer.
func NewImportService(repo repository.ExpenseRepository, budgets *budget.Table) ImportServicer {
	return &importService{repo: repo, budgets: budgets, now: time.Now}
}

// ImportCSV imports every valid line of r for userID. Rows with problems are
// skipped and reported; any storage or stream failure rolls back the whole
// import and returns ErrImportFailed.
func (s *importService) ImportCSV(ctx context.Context, userID string, r io.Reader) (*ImportOutcome, error) {
	log := logger.Named("import").With("user_id", userID)

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, importFailure(log, "begin", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Errorw("Failed to roll back CSV import", "error", rbErr)
		}
	}()

	outcome := &ImportOutcome{SkipReasons: []SkipReason{}}
	seen := make(map[rowKey]struct{})
	now := s.now()

	reader := bufio.NewReader(r)
	for lineNo := 1; ; lineNo++ {
		line, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, importFailure(log, "read", readErr)
		}
		if line == "" && readErr != nil {
			break
		}

		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) != "" {
			expense, key, reason := s.parseRow(userID, line, now)
			if reason == "" {
				if _, dup := seen[key]; dup {
					reason = reasonDuplicateRow
				}
			}

			if reason != "" {
				outcome.skip(lineNo, reason)
			} else {
				if err := tx.Save(ctx, expense); err != nil {
					return nil, importFailure(log, "save", err)
				}
				seen[key] = struct{}{}
				outcome.ImportedCount++
			}
		}

		if readErr != nil {
			break
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, importFailure(log, "commit", err)
	}
	committed = true

	log.Infow("CSV import completed",
		"imported", outcome.ImportedCount,
		"skipped", outcome.SkippedCount,
	)
	return outcome, nil
}

// parseRow converts one non-blank CSV line into an expense. A non-empty
// reason means the row must be skipped.
func (s *importService) parseRow(userID, line string, now time.Time) (*models.Expense, rowKey, string) {
	fields, err := csv.NewReader(strings.NewReader(line)).Read()
	if err != nil {
		return nil, rowKey{}, err.Error()
	}
	if len(fields) != importColumns {
		return nil, rowKey{}, reasonInvalidColumns
	}

	key := rowKey{
		date:        strings.TrimSpace(fields[0]),
		amount:      strings.TrimSpace(fields[1]),
		description: strings.TrimSpace(fields[2]),
		category:    budget.NormalizeCategory(fields[3]),
	}

	date, err := time.Parse(models.DateLayout, key.date)
	if err != nil {
		return nil, key, err.Error()
	}
	amount, err := money.ParseDecimal(key.amount)
	if err != nil {
		return nil, key, err.Error()
	}
	if !s.budgets.Has(key.category) {
		return nil, key, fmt.Sprintf(reasonUnknownCategory, key.category)
	}

	input := ExpenseInput{
		Amount:      amount,
		Description: key.description,
		Date:        date,
		Category:    key.category,
	}
	if err := ValidateExpenseData(input, s.budgets, now); err != nil {
		return nil, key, err.Error()
	}

	return buildExpense(userID, input), key, ""
}

func importFailure(log *zap.SugaredLogger, stage string, err error) error {
	log.Errorw("CSV import failed, rolling back", "stage", stage, "error", err)
	return apperrors.Wrap(apperrors.ErrImportFailed, err)
}
