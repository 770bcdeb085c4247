// internal/middleware/auth_middleware.go
package middleware

import (
	"strings"
	"time"

	"leadhub-service/internal/domain/admin"
	xerrors "leadhub-service/internal/pkg/errors"
	"leadhub-service/internal/pkg/jwt"
	"leadhub-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	verifier  *jwt.Verifier
	adminRepo admin.Repository
}

func NewAuthMiddleware(verifier *jwt.Verifier, adminRepo admin.Repository) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:  verifier,
		adminRepo: adminRepo,
	}
}

// Auth is the request gate: it verifies the bearer token, then re-fetches
// the account so a deactivated or locked admin is rejected even while
// holding a cryptographically valid token. That re-check is the only
// revocation mechanism; there is no token blacklist.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "missing authorization token")
			return
		}

		claims, err := m.verifier.VerifyAccessToken(token)
		if err != nil {
			response.FromError(c, err)
			return
		}

		adm, err := m.adminRepo.FindByID(c.Request.Context(), claims.AdminID)
		if err != nil {
			if xerrors.Is(err, xerrors.ErrNotFound) {
				response.Unauthorized(c, "account no longer exists")
				return
			}
			response.FromError(c, err)
			return
		}

		if !adm.IsActive {
			response.Unauthorized(c, "account is deactivated")
			return
		}
		if adm.IsLocked(time.Now()) {
			response.FromError(c, &xerrors.AccountLockedError{RetryAfter: adm.LockRemaining(time.Now())})
			return
		}

		c.Set("admin_id", claims.AdminID)
		c.Set("admin", adm)
		c.Set("jti", claims.ID)
		c.Set("role", adm.Role)

		c.Next()
	}
}

// RequireRole requires the authenticated admin to hold one of the given
// roles. MUST be used after Auth().
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			response.Forbidden(c, "authentication required")
			return
		}

		for _, required := range roles {
			if role == required {
				c.Next()
				return
			}
		}

		response.Error(c, 403, "insufficient permissions", nil, map[string]interface{}{
			"required_roles": roles,
		})
	}
}

// SuperAdminOnly returns middlewares for super admin-only routes (Auth + RequireRole)
func (m *AuthMiddleware) SuperAdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireRole(admin.RoleSuperAdmin),
	}
}

// extractToken extracts Bearer token from Authorization header
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	return ""
}

// GetAdminID gets the authenticated admin's id from context
func GetAdminID(c *gin.Context) (int64, bool) {
	adminID, exists := c.Get("admin_id")
	if !exists {
		return 0, false
	}

	id, ok := adminID.(int64)
	return id, ok
}

// GetAdmin gets the re-fetched admin record from context
func GetAdmin(c *gin.Context) (*admin.Admin, bool) {
	value, exists := c.Get("admin")
	if !exists {
		return nil, false
	}

	adm, ok := value.(*admin.Admin)
	return adm, ok
}

// GetJTI gets the token reference (jti) from context
func GetJTI(c *gin.Context) (string, bool) {
	jti, exists := c.Get("jti")
	if !exists {
		return "", false
	}

	jtiStr, ok := jti.(string)
	return jtiStr, ok
}

// GetRole gets the authenticated admin's role from context
func GetRole(c *gin.Context) (string, bool) {
	role, exists := c.Get("role")
	if !exists {
		return "", false
	}

	roleStr, ok := role.(string)
	return roleStr, ok
}
