// internal/middleware/helpers.go
package middleware

import (
	"leadhub-service/internal/domain/admin"

	"github.com/gin-gonic/gin"
)

// MustGetAdminID gets the admin id from context or panics
func MustGetAdminID(c *gin.Context) int64 {
	adminID, exists := GetAdminID(c)
	if !exists {
		panic("admin_id not found in context")
	}
	return adminID
}

// MustGetJTI gets the token reference from context or panics
func MustGetJTI(c *gin.Context) string {
	jti, exists := GetJTI(c)
	if !exists {
		panic("jti not found in context")
	}
	return jti
}

// IsAuthenticated checks if request is authenticated
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get("admin_id")
	return exists
}

// IsSuperAdmin checks if the authenticated admin is a super admin
func IsSuperAdmin(c *gin.Context) bool {
	role, ok := GetRole(c)
	return ok && role == admin.RoleSuperAdmin
}

// RequestContext extracts the caller metadata recorded on attempts,
// sessions and issued codes.
func RequestContext(c *gin.Context) admin.RequestContext {
	return admin.RequestContext{
		Device:    c.GetHeader("X-Device-ID"),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
