// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"
	"strconv"

	"leadhub-service/internal/domain/admin"
	"leadhub-service/internal/middleware"
	"leadhub-service/internal/pkg/response"
	authUsecase "leadhub-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *authUsecase.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// ========== Login ==========

// Login handles the password step. Accounts with two-factor enabled get a
// challenge instead of tokens.
func (h *AuthHandler) Login(c *gin.Context) {
	var req admin.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.authService.PasswordLogin(c.Request.Context(), &req, middleware.RequestContext(c))
	if err != nil {
		h.logger.Warn("login failed",
			zap.String("email", req.Email),
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		response.FromError(c, err)
		return
	}

	if result.TwoFactorRequired {
		response.Success(c, http.StatusOK, "verification code sent", result)
		return
	}

	h.logger.Info("admin logged in",
		zap.Int64("admin_id", result.Login.Admin.ID),
		zap.String("email", result.Login.Admin.Email),
	)
	response.Success(c, http.StatusOK, "login successful", result.Login)
}

// RequestCode issues a passwordless login code (public endpoint)
func (h *AuthHandler) RequestCode(c *gin.Context) {
	var req admin.RequestCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	if err := h.authService.RequestLoginCode(c.Request.Context(), &req, middleware.RequestContext(c)); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "verification code sent", nil)
}

// ResendCode re-issues the outstanding code (public endpoint, throttled)
func (h *AuthHandler) ResendCode(c *gin.Context) {
	var req admin.RequestCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	if err := h.authService.ResendCode(c.Request.Context(), &req, middleware.RequestContext(c)); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "verification code sent", nil)
}

// VerifyCode completes a code-based login and issues tokens
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req admin.VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	login, err := h.authService.VerifyLoginCode(c.Request.Context(), &req, middleware.RequestContext(c))
	if err != nil {
		h.logger.Warn("code verification failed",
			zap.String("email", req.Email),
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		response.FromError(c, err)
		return
	}

	h.logger.Info("admin logged in",
		zap.Int64("admin_id", login.Admin.ID),
		zap.String("email", login.Admin.Email),
	)
	response.Success(c, http.StatusOK, "login successful", login)
}

// ========== Logout & Sessions ==========

// Logout removes the current session record (requires auth)
func (h *AuthHandler) Logout(c *gin.Context) {
	adminID := middleware.MustGetAdminID(c)
	jti := middleware.MustGetJTI(c)

	if err := h.authService.Logout(c.Request.Context(), adminID, jti); err != nil {
		h.logger.Error("logout failed",
			zap.Int64("admin_id", adminID),
			zap.Error(err),
		)
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "logout successful", nil)
}

// LogoutAll removes all session records for the admin (requires auth)
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	adminID := middleware.MustGetAdminID(c)

	if err := h.authService.LogoutAll(c.Request.Context(), adminID); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "all sessions logged out", nil)
}

// GetSessions lists the admin's recorded sessions (requires auth)
func (h *AuthHandler) GetSessions(c *gin.Context) {
	adminID := middleware.MustGetAdminID(c)

	sessions, err := h.authService.Sessions(c.Request.Context(), adminID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "sessions retrieved", sessions)
}

// RevokeSession removes one session by token reference (requires auth)
func (h *AuthHandler) RevokeSession(c *gin.Context) {
	adminID := middleware.MustGetAdminID(c)
	tokenRef := c.Param("token_ref")
	if tokenRef == "" {
		response.Error(c, http.StatusBadRequest, "missing token reference", nil)
		return
	}

	if err := h.authService.RevokeSession(c.Request.Context(), adminID, tokenRef); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "session revoked", nil)
}

// GetLoginHistory lists recent login attempts (requires auth)
func (h *AuthHandler) GetLoginHistory(c *gin.Context) {
	adminID := middleware.MustGetAdminID(c)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	history, err := h.authService.LoginHistory(c.Request.Context(), adminID, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "login history retrieved", history)
}

// ========== Account Settings ==========

// GetMe returns the authenticated admin's profile (requires auth)
func (h *AuthHandler) GetMe(c *gin.Context) {
	adm, ok := middleware.GetAdmin(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	response.Success(c, http.StatusOK, "profile retrieved", adm.Info())
}

// ChangePassword handles an authenticated password change (requires auth)
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	adminID := middleware.MustGetAdminID(c)

	var req admin.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), adminID, &req); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "password changed successfully", nil)
}

// ToggleTwoFactor flips the two-factor flag (requires auth)
func (h *AuthHandler) ToggleTwoFactor(c *gin.Context) {
	adminID := middleware.MustGetAdminID(c)

	var req admin.ToggleTwoFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}
	if err := req.Validate(); err != nil {
		response.FromError(c, err)
		return
	}

	if err := h.authService.ToggleTwoFactor(c.Request.Context(), adminID, *req.Enabled); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "two-factor setting updated", nil)
}

// ========== Admin Management ==========

// DeactivateAdmin disables another admin account (super admin only)
func (h *AuthHandler) DeactivateAdmin(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid admin id", err)
		return
	}

	if err := h.authService.DeactivateAdmin(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}

	h.logger.Info("admin deactivated",
		zap.Int64("admin_id", id),
		zap.Int64("by", middleware.MustGetAdminID(c)),
	)
	response.Success(c, http.StatusOK, "admin deactivated", nil)
}

// ========== Password Reset ==========

// ForgotPassword handles a password reset request (public endpoint)
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req admin.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), &req); err != nil {
		h.logger.Error("forgot password failed",
			zap.String("email", req.Email),
			zap.Error(err),
		)
		// Don't reveal if the email exists
	}

	// Always return success to prevent email enumeration
	response.Success(c, http.StatusOK, "if email exists, reset link has been sent", nil)
}

// ResetPassword completes a token-based password reset (public endpoint)
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req admin.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), &req); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "password reset successful", nil)
}
