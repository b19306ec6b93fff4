package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/freelancedesk/models"
	"github.com/yourusername/freelancedesk/records"
)

type PaymentHandler struct {
	records *records.Service
}

func NewPaymentHandler(rec *records.Service) *PaymentHandler {
	return &PaymentHandler{records: rec}
}

type CreatePaymentRequest struct {
	InvoiceID      uint                 `json:"invoice_id" binding:"required"`
	ClientID       uint                 `json:"client_id"`
	Amount         models.Amount        `json:"amount" binding:"required"`
	Currency       string               `json:"currency"`
	Method         models.PaymentMethod `json:"method"`
	Status         models.PaymentStatus `json:"status"`
	ReceivedDate   models.Date          `json:"received_date"`
	StellarAccount string               `json:"stellar_account"`
	Reference      string               `json:"reference"`
}

func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	userID, ok := owner(c)
	if !ok {
		return
	}
	var req CreatePaymentRequest
	if !bind(c, &req) {
		return
	}

	payment, err := h.records.CreatePayment(c.Request.Context(), userID, &models.Payment{
		InvoiceID:      req.InvoiceID,
		ClientID:       req.ClientID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Method:         req.Method,
		Status:         req.Status,
		ReceivedDate:   req.ReceivedDate,
		StellarAccount: req.StellarAccount,
		Reference:      req.Reference,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	userID, ok := owner(c)
	if !ok {
		return
	}
	payments, err := h.records.ListPayments(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, userID, ok := target(c)
	if !ok {
		return
	}
	payment, err := h.records.GetPayment(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	id, userID, ok := target(c)
	if !ok {
		return
	}
	var patch models.PaymentPatch
	if !bind(c, &patch) {
		return
	}
	payment, err := h.records.UpdatePayment(c.Request.Context(), id, userID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	id, userID, ok := target(c)
	if !ok {
		return
	}
	deleted, err := h.records.DeletePayment(c.Request.Context(), id, userID)
	respondDeleted(c, deleted, err)
}
