package handler

import (
	"net/http"
	"time"

	"github.com/Md-FarhadHossain/profit-first-server/internal/model"
	"github.com/Md-FarhadHossain/profit-first-server/internal/service"

	"github.com/gin-gonic/gin"
)

// ExpenseHandler is the HTTP surface of the expense ledger.
type ExpenseHandler struct {
	expenses service.ExpenseService
}

// NewExpenseHandler creates a new expense handler.
func NewExpenseHandler(expenses service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// Add records an expense entry.
func (h *ExpenseHandler) Add(c *gin.Context) {
	var req model.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	expense, err := h.expenses.Add(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "expense": expense})
}

// Delete removes an expense entry.
func (h *ExpenseHandler) Delete(c *gin.Context) {
	if err := h.expenses.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Expense deleted"})
}

// List returns all expense entries.
func (h *ExpenseHandler) List(c *gin.Context) {
	expenses, err := h.expenses.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

// FinanceSummary aggregates the ledger, optionally within from/to dates
// (RFC 3339 or YYYY-MM-DD).
func (h *ExpenseHandler) FinanceSummary(c *gin.Context) {
	from, ok := parseDateParam(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateParam(c, "to")
	if !ok {
		return
	}

	summary, err := h.expenses.Summary(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
}

// parseDateParam reads an optional date query parameter. On a malformed
// value it writes the error response and reports false.
func parseDateParam(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, true
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   kindValidation,
		"message": "invalid " + name + " date",
	})
	return nil, false
}
