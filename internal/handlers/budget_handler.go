package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spendwise/internal/budget"
)

// BudgetHandler exposes the configured category budgets.
type BudgetHandler struct {
	budgets *budget.Table
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgets *budget.Table) *BudgetHandler {
	return &BudgetHandler{budgets: budgets}
}

// ListCategories handles listing the expense categories with their budgets.
// @Summary     List categories
// @Description Expense categories and their monthly budgets, in configuration order
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]budget.Entry "Categories"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /categories [get]
func (h *BudgetHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.budgets.Entries()})
}
