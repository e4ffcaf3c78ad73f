package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/logger"
	"spendwise/internal/models"
	"spendwise/internal/money"
	"spendwise/internal/pagination"
	"spendwise/internal/services"
)

// csvFormField is the multipart field carrying the CSV upload.
const csvFormField = "csv"

// multipartOverhead leaves room for the multipart envelope around the file.
const multipartOverhead = 1 << 20

// ExpenseHandler handles expense-related requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	importService  services.ImportServicer
	auditService   services.AuditServicer
	maxImportBytes int64
	now            func() time.Time
}

// NewExpenseHandler creates a new ExpenseHandler. Uploads larger than
// maxImportBytes are rejected.
func NewExpenseHandler(
	expenseService services.ExpenseServicer,
	importService services.ImportServicer,
	auditService services.AuditServicer,
	maxImportBytes int64,
) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		importService:  importService,
		auditService:   auditService,
		maxImportBytes: maxImportBytes,
		now:            time.Now,
	}
}

// ExpenseRequest represents the payload for creating or updating an expense.
// Amount is a decimal string in major units, e.g. "49.99".
type ExpenseRequest struct {
	Date        string `json:"date" binding:"required,iso_date"`
	Amount      string `json:"amount" binding:"required,decimal_amount"`
	Description string `json:"description" binding:"max=1024"`
	Category    string `json:"category" binding:"max=64"`
}

func (r ExpenseRequest) toInput() services.ExpenseInput {
	// Both parses already passed the binding tags.
	date, _ := time.Parse(models.DateLayout, r.Date)
	amount, _ := money.ParseDecimal(r.Amount)
	return services.ExpenseInput{
		Amount:      amount,
		Description: r.Description,
		Date:        date,
		Category:    r.Category,
	}
}

// ExpenseResponse is the wire form of an expense.
type ExpenseResponse struct {
	ID          string      `json:"id"`
	Date        string      `json:"date"`
	Category    string      `json:"category"`
	Amount      money.Money `json:"amount" swaggertype:"string" example:"49.99"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func newExpenseResponse(e models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Date:        e.Date.Format(models.DateLayout),
		Category:    e.Category,
		Amount:      e.Amount(),
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// ListExpenses handles listing the user's expenses for a month.
// @Summary     List expenses
// @Description Get a paginated list of the user's expenses for a year and month, newest first
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       year      query int false "Year (defaults to the current year)"
// @Param       month     query int false "Month 1-12 (defaults to the current month)"
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[ExpenseResponse] "Paginated expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [get]
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, month, err := parsePeriod(c, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.expenseService.ListExpenses(c.Request.Context(), userID, year, month, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Map(*result, newExpenseResponse))
}

// CreateExpense handles the creation of a new expense.
// @Summary     Create an expense
// @Description Record a new expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ExpenseRequest true "Expense details"
// @Success     201 {object} ExpenseResponse "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), userID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionCreateExpense, "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"category": expense.Category, "amount": expense.Amount().String(), "date": req.Date})

	c.JSON(http.StatusCreated, newExpenseResponse(*expense))
}

// GetExpense handles retrieving a single expense.
// @Summary     Get an expense
// @Description Get an expense owned by the authenticated user
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} ExpenseResponse "Expense"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(c.Request.Context(), userID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newExpenseResponse(*expense))
}

// UpdateExpense handles replacing an expense.
// @Summary     Update an expense
// @Description Replace the date, amount, description and category of an expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Expense ID"
// @Param       request body ExpenseRequest true "Expense details"
// @Success     200 {object} ExpenseResponse "Expense updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), userID, expenseID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionUpdateExpense, "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"category": expense.Category, "amount": expense.Amount().String(), "date": req.Date})

	c.JSON(http.StatusOK, newExpenseResponse(*expense))
}

// DeleteExpense handles deleting an expense.
// @Summary     Delete an expense
// @Description Delete an expense owned by the authenticated user
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} map[string]string "Expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(c.Request.Context(), userID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionDeleteExpense, "expense", expenseID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

// ListYears handles listing the years the user has expenses in.
// @Summary     List expenditure years
// @Description Years with recorded expenses, newest first; always includes the current year
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]int "Years"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/years [get]
func (h *ExpenseHandler) ListYears(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	years, err := h.expenseService.ListYears(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"years": years})
}

// ImportCSV handles bulk import of expenses from a CSV upload.
// @Summary     Import expenses from CSV
// @Description Each line holds date (YYYY-MM-DD), amount, description and category. Invalid lines are skipped and reported; the valid ones are imported atomically.
// @Tags        expenses
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       csv formData file true "CSV file"
// @Success     200 {object} services.ImportOutcome "Import outcome"
// @Failure     400 {object} ErrorResponse "Missing file"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     413 {object} ErrorResponse "File too large"
// @Failure     500 {object} ErrorResponse "Import failed"
// @Router      /expenses/import [post]
func (h *ExpenseHandler) ImportCSV(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImportBytes+multipartOverhead)
	fileHeader, err := c.FormFile(csvFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(c, apperrors.ErrFileTooLarge)
			return
		}
		respondWithError(c, apperrors.ErrMissingFile)
		return
	}
	if fileHeader.Size > h.maxImportBytes {
		respondWithError(c, apperrors.ErrFileTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	defer file.Close()

	outcome, err := h.importService.ImportCSV(c.Request.Context(), userID, file)
	if err != nil {
		respondWithError(c, err)
		return
	}

	logger.Get().Infow("CSV uploaded",
		"user_id", userID,
		"file", fileHeader.Filename,
		"bytes", fileHeader.Size,
		"imported", outcome.ImportedCount,
		"skipped", outcome.SkippedCount,
	)
	h.auditService.Log(userID, services.AuditActionImportExpenses, "expense", "", c.ClientIP(),
		map[string]interface{}{"file": fileHeader.Filename, "imported": outcome.ImportedCount, "skipped": outcome.SkippedCount})

	c.JSON(http.StatusOK, outcome)
}
