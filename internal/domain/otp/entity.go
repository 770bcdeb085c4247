// internal/domain/otp/entity.go
package otp

import "time"

// Purposes a one-time code can be issued for. An email holds at most one
// outstanding code regardless of purpose: issuing any code supersedes all
// prior ones for that address.
const (
	PurposeLogin         = "login"
	PurposePasswordReset = "password_reset"
	PurposeTwoFactor     = "two_factor"
)

// CodeLength is the number of digits in an issued code.
const CodeLength = 6

// Code is a short-lived, purpose-scoped one-time code.
type Code struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	Purpose   string    `json:"purpose"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
	Verified  bool      `json:"verified"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the code's window has elapsed.
func (c *Code) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// UsableForLogin reports whether a code of this purpose may complete the
// shared login-verification step. Reset codes never mint tokens.
func (c *Code) UsableForLogin() bool {
	return c.Purpose == PurposeLogin || c.Purpose == PurposeTwoFactor
}
