package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kisanpay/milkledger/internal/server/handlers"
	"github.com/kisanpay/milkledger/internal/server/middleware"
)

// New wires the Gin engine with required routes and middlewares.
func New(authHandler *handlers.AuthHandler, adminHandler *handlers.AdminHandler, customerHandler *handlers.CustomerHandler, verifier middleware.TokenVerifier, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	authn := middleware.RequireAuth(verifier, logger)

	authRoutes := r.Group("/api/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/register-admin", authHandler.RegisterAdmin)
		authRoutes.POST("/register", authn, middleware.RequireAdmin(), authHandler.Register)
	}

	adminRoutes := r.Group("/api/admin", authn, middleware.RequireAdmin())
	{
		adminRoutes.POST("/milk-entries", adminHandler.RecordEntry)
		adminRoutes.PUT("/milk-entries/:id", adminHandler.UpdateEntry)
		adminRoutes.POST("/payments", adminHandler.RecordPayment)
		adminRoutes.GET("/customers", adminHandler.ListCustomers)
		adminRoutes.GET("/customers/:customerId/summary", adminHandler.CustomerSummary)
		adminRoutes.GET("/customers/:customerId/entries", adminHandler.CustomerEntries)
		adminRoutes.GET("/session-summary", adminHandler.SessionSummary)
	}

	customerRoutes := r.Group("/api/customer", authn)
	{
		customerRoutes.GET("/my-entries", customerHandler.MyEntries)
		customerRoutes.GET("/my-summary", customerHandler.MySummary)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
