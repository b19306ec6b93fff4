package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/freelancedesk/models"
	"github.com/yourusername/freelancedesk/records"
)

type ExpenseHandler struct {
	records *records.Service
}

func NewExpenseHandler(rec *records.Service) *ExpenseHandler {
	return &ExpenseHandler{records: rec}
}

type CreateExpenseRequest struct {
	Description string        `json:"description" binding:"required"`
	Amount      models.Amount `json:"amount" binding:"required"`
	Currency    string        `json:"currency"`
	Category    string        `json:"category"`
	Date        models.Date   `json:"date"`
	Notes       string        `json:"notes"`
	Receipt     string        `json:"receipt"`
}

func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, ok := owner(c)
	if !ok {
		return
	}
	var req CreateExpenseRequest
	if !bind(c, &req) {
		return
	}

	expense, err := h.records.CreateExpense(c.Request.Context(), userID, &models.Expense{
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Category:    req.Category,
		Date:        req.Date,
		Notes:       req.Notes,
		Receipt:     req.Receipt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	userID, ok := owner(c)
	if !ok {
		return
	}
	expenses, err := h.records.ListExpenses(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	id, userID, ok := target(c)
	if !ok {
		return
	}
	expense, err := h.records.GetExpense(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	id, userID, ok := target(c)
	if !ok {
		return
	}
	var patch models.ExpensePatch
	if !bind(c, &patch) {
		return
	}
	expense, err := h.records.UpdateExpense(c.Request.Context(), id, userID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	id, userID, ok := target(c)
	if !ok {
		return
	}
	deleted, err := h.records.DeleteExpense(c.Request.Context(), id, userID)
	respondDeleted(c, deleted, err)
}
