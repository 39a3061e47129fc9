package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wallet-ledger-engine/internal/api/handler"
	"github.com/wallet-ledger-engine/internal/api/middleware"
	"github.com/wallet-ledger-engine/internal/api/service"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	authService service.AuthService,
	authHandler *handler.AuthHandler,
	accountHandler *handler.AccountHandler,
	movementHandler *handler.MovementHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Registration and login
		auth := v1.Group("/auth")
		{
			auth.POST("/users", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Everything else requires a bearer token
		authed := v1.Group("")
		authed.Use(middleware.RequireAuth(logger, authService))
		{
			// Money movements
			authed.POST("/deposits", movementHandler.Deposit)
			authed.POST("/withdrawals", movementHandler.Withdraw)
			authed.POST("/transfers", movementHandler.Transfer)
			authed.POST("/reversals", movementHandler.Reverse)

			// Account and history reads
			accounts := authed.Group("/accounts")
			{
				accounts.GET("/:id", accountHandler.GetByID)
				accounts.GET("/:id/entries", accountHandler.GetEntries)
			}
			authed.GET("/movements/:reference", accountHandler.GetMovement)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
