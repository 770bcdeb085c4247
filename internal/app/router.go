// internal/app/router.go
package app

import (
	authHandler "leadhub-service/internal/handlers/auth"
	"leadhub-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler    *authHandler.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/login", h.AuthHandler.Login)
		authPublic.POST("/request-code", h.AuthHandler.RequestCode)
		authPublic.POST("/resend-code", h.AuthHandler.ResendCode)
		authPublic.POST("/verify-code", h.AuthHandler.VerifyCode)
		authPublic.POST("/forgot-password", h.AuthHandler.ForgotPassword)
		authPublic.POST("/reset-password", h.AuthHandler.ResetPassword)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.POST("/logout-all", h.AuthHandler.LogoutAll)
		authProtected.GET("/me", h.AuthHandler.GetMe)
		authProtected.PUT("/change-password", h.AuthHandler.ChangePassword)
		authProtected.PUT("/two-factor", h.AuthHandler.ToggleTwoFactor)
		authProtected.GET("/sessions", h.AuthHandler.GetSessions)
		authProtected.DELETE("/sessions/:token_ref", h.AuthHandler.RevokeSession)
		authProtected.GET("/login-history", h.AuthHandler.GetLoginHistory)
	}

	// ==================== Super Admin Routes ====================
	superAdmin := api.Group("/admin")
	superAdmin.Use(h.AuthMiddleware.SuperAdminOnly()...)
	{
		superAdmin.DELETE("/admins/:id", h.AuthHandler.DeactivateAdmin)
	}
}
