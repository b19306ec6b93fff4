package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yourusername/freelancedesk/assistant"
	"github.com/yourusername/freelancedesk/config"
	"github.com/yourusername/freelancedesk/dashboard"
	"github.com/yourusername/freelancedesk/logger"
	"github.com/yourusername/freelancedesk/metrics"
	"github.com/yourusername/freelancedesk/middleware"
	"github.com/yourusername/freelancedesk/records"
	"go.uber.org/zap"
)

const serviceName = "freelancedesk-api"

// Services bundles what the HTTP layer calls into.
type Services struct {
	Records   *records.Service
	Dashboard *dashboard.Service
	Assistant *assistant.Service
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(cfg *config.Config, svc Services, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(logger.Middleware(log))
	router.Use(metrics.Middleware(serviceName))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", logger.RequestIDKey}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	router.Use(cors.New(corsConfig))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": serviceName,
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	authHandler := NewAuthHandler(cfg)
	router.POST("/api/auth/refresh", authHandler.Refresh)

	api := router.Group("/api")
	api.Use(middleware.JwtAuthMiddleware(cfg))
	{
		clientHandler := NewClientHandler(svc.Records, svc.Dashboard)
		api.POST("/clients", clientHandler.CreateClient)
		api.GET("/clients", clientHandler.ListClients)
		api.GET("/clients/stats", clientHandler.ClientStats)
		api.GET("/clients/:id", clientHandler.GetClient)
		api.PUT("/clients/:id", clientHandler.UpdateClient)
		api.PATCH("/clients/:id", clientHandler.UpdateClient)
		api.DELETE("/clients/:id", clientHandler.DeleteClient)

		invoiceHandler := NewInvoiceHandler(svc.Records)
		api.POST("/invoices", invoiceHandler.CreateInvoice)
		api.GET("/invoices", invoiceHandler.ListInvoices)
		api.GET("/invoices/:id", invoiceHandler.GetInvoice)
		api.PUT("/invoices/:id", invoiceHandler.UpdateInvoice)
		api.PATCH("/invoices/:id", invoiceHandler.UpdateInvoice)
		api.DELETE("/invoices/:id", invoiceHandler.DeleteInvoice)

		expenseHandler := NewExpenseHandler(svc.Records)
		api.POST("/expenses", expenseHandler.CreateExpense)
		api.GET("/expenses", expenseHandler.ListExpenses)
		api.GET("/expenses/:id", expenseHandler.GetExpense)
		api.PUT("/expenses/:id", expenseHandler.UpdateExpense)
		api.PATCH("/expenses/:id", expenseHandler.UpdateExpense)
		api.DELETE("/expenses/:id", expenseHandler.DeleteExpense)

		paymentHandler := NewPaymentHandler(svc.Records)
		api.POST("/payments", paymentHandler.CreatePayment)
		api.GET("/payments", paymentHandler.ListPayments)
		api.GET("/payments/:id", paymentHandler.GetPayment)
		api.PUT("/payments/:id", paymentHandler.UpdatePayment)
		api.PATCH("/payments/:id", paymentHandler.UpdatePayment)
		api.DELETE("/payments/:id", paymentHandler.DeletePayment)

		dashboardHandler := NewDashboardHandler(svc.Dashboard, svc.Assistant)
		api.GET("/dashboard/stats", dashboardHandler.Stats)
		api.POST("/assistant/chat", dashboardHandler.Chat)
	}

	return router
}
