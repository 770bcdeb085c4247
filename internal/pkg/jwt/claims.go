// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token uses distinguishing the two token kinds this issuer mints.
const (
	UseAccess  = "access"
	UseRefresh = "refresh"
)

// Claims represents the JWT claims. Access tokens carry identity (admin id,
// email, role, login time); refresh tokens carry the admin id only.
type Claims struct {
	AdminID  int64            `json:"admin_id"`
	Email    string           `json:"email,omitempty"`
	Role     string           `json:"role,omitempty"`
	TokenUse string           `json:"token_use"`
	LoginAt  *jwt.NumericDate `json:"login_time,omitempty"`
	jwt.RegisteredClaims
}

// IsSuperAdmin checks if the token belongs to a super admin
func (c *Claims) IsSuperAdmin() bool {
	return c.Role == "super_admin"
}

// VerifyAudience checks if the expected audience is listed in the claims.
func (c *Claims) VerifyAudience(audience string, required bool) bool {
	if len(c.Audience) == 0 {
		return !required
	}
	for _, aud := range c.Audience {
		if aud == audience {
			return true
		}
	}
	return false
}
