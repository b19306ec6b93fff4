package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/freelancedesk/dashboard"
	"github.com/yourusername/freelancedesk/models"
	"github.com/yourusername/freelancedesk/records"
)

type ClientHandler struct {
	records   *records.Service
	dashboard *dashboard.Service
}

func NewClientHandler(rec *records.Service, dash *dashboard.Service) *ClientHandler {
	return &ClientHandler{records: rec, dashboard: dash}
}

type CreateClientRequest struct {
	CompanyName   string              `json:"company_name" binding:"required"`
	ContactPerson string              `json:"contact_person"`
	Email         string              `json:"email"`
	Phone         string              `json:"phone"`
	Address       string              `json:"address"`
	Status        models.ClientStatus `json:"status"`
	PaymentTerms  string              `json:"payment_terms"`
}

func (h *ClientHandler) CreateClient(c *gin.Context) {
	userID, ok := owner(c)
	if !ok {
		return
	}
	var req CreateClientRequest
	if !bind(c, &req) {
		return
	}

	client, err := h.records.CreateClient(c.Request.Context(), userID, &models.Client{
		CompanyName:   req.CompanyName,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		Status:        req.Status,
		PaymentTerms:  req.PaymentTerms,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *ClientHandler) ListClients(c *gin.Context) {
	userID, ok := owner(c)
	if !ok {
		return
	}
	clients, err := h.records.ListClients(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// ClientStats lists every client with billed revenue, invoice count and last invoice date.
func (h *ClientHandler) ClientStats(c *gin.Context) {
	userID, ok := owner(c)
	if !ok {
		return
	}
	stats, err := h.dashboard.ClientStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ClientHandler) GetClient(c *gin.Context) {
	id, userID, ok := target(c)
	if !ok {
		return
	}
	client, err := h.records.GetClient(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, userID, ok := target(c)
	if !ok {
		return
	}
	var patch models.ClientPatch
	if !bind(c, &patch) {
		return
	}
	client, err := h.records.UpdateClient(c.Request.Context(), id, userID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, userID, ok := target(c)
	if !ok {
		return
	}
	deleted, err := h.records.DeleteClient(c.Request.Context(), id, userID)
	respondDeleted(c, deleted, err)
}
