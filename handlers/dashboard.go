package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/freelancedesk/assistant"
	"github.com/yourusername/freelancedesk/dashboard"
)

type DashboardHandler struct {
	dashboard *dashboard.Service
	assistant *assistant.Service
}

func NewDashboardHandler(dash *dashboard.Service, asst *assistant.Service) *DashboardHandler {
	return &DashboardHandler{dashboard: dash, assistant: asst}
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	userID, ok := owner(c)
	if !ok {
		return
	}
	stats, err := h.dashboard.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
	Mode    string `json:"mode"`
}

func (h *DashboardHandler) Chat(c *gin.Context) {
	userID, ok := owner(c)
	if !ok {
		return
	}
	var req ChatRequest
	if !bind(c, &req) {
		return
	}
	reply, err := h.assistant.Chat(c.Request.Context(), userID, req.Message, req.Mode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}
