package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/freelancedesk/models"
	"github.com/yourusername/freelancedesk/records"
)

type InvoiceHandler struct {
	records *records.Service
}

func NewInvoiceHandler(rec *records.Service) *InvoiceHandler {
	return &InvoiceHandler{records: rec}
}

type CreateInvoiceRequest struct {
	ClientID      uint                 `json:"client_id" binding:"required"`
	InvoiceNumber string               `json:"invoice_number"`
	Title         string               `json:"title" binding:"required"`
	Description   string               `json:"description"`
	Amount        models.Amount        `json:"amount" binding:"required"`
	Currency      string               `json:"currency"`
	Status        models.InvoiceStatus `json:"status"`
	IssueDate     models.Date          `json:"issue_date"`
	DueDate       models.Date          `json:"due_date"`
	PaidDate      *models.Date         `json:"paid_date"`
}

func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	userID, ok := owner(c)
	if !ok {
		return
	}
	var req CreateInvoiceRequest
	if !bind(c, &req) {
		return
	}

	invoice, err := h.records.CreateInvoice(c.Request.Context(), userID, &models.Invoice{
		ClientID:      req.ClientID,
		InvoiceNumber: req.InvoiceNumber,
		Title:         req.Title,
		Description:   req.Description,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Status:        req.Status,
		IssueDate:     req.IssueDate,
		DueDate:       req.DueDate,
		PaidDate:      req.PaidDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	userID, ok := owner(c)
	if !ok {
		return
	}
	invoices, err := h.records.ListInvoices(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, userID, ok := target(c)
	if !ok {
		return
	}
	invoice, err := h.records.GetInvoice(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	id, userID, ok := target(c)
	if !ok {
		return
	}
	var patch models.InvoicePatch
	if !bind(c, &patch) {
		return
	}
	invoice, err := h.records.UpdateInvoice(c.Request.Context(), id, userID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	id, userID, ok := target(c)
	if !ok {
		return
	}
	deleted, err := h.records.DeleteInvoice(c.Request.Context(), id, userID)
	respondDeleted(c, deleted, err)
}
