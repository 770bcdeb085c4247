// internal/domain/admin/entity.go
package admin

import "time"

// Roles an administrator account can hold.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Caps on the per-account audit windows. Oldest entries are evicted first.
const (
	MaxSessions     = 10
	MaxLoginHistory = 50
)

type Admin struct {
	ID                  int64      `json:"id" db:"id"`
	FullName            string     `json:"full_name" db:"full_name"`
	Email               string     `json:"email" db:"email"`
	Role                string     `json:"role" db:"role"`
	IsActive            bool       `json:"is_active" db:"is_active"`
	PasswordHash        string     `json:"-" db:"password_hash"`
	PasswordChangedAt   *time.Time `json:"-" db:"password_changed_at"`
	TwoFactorEnabled    bool       `json:"two_factor_enabled" db:"two_factor_enabled"`
	FailedLoginAttempts int        `json:"-" db:"failed_login_attempts"`
	LockedUntil         *time.Time `json:"-" db:"locked_until"`
	ResetToken          *string    `json:"-" db:"reset_token"`
	ResetTokenExpiresAt *time.Time `json:"-" db:"reset_token_expires_at"`
	LastLogin           *time.Time `json:"last_login" db:"last_login"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// IsLocked reports whether the account is currently locked out: a lock
// timestamp is set and has not yet elapsed.
func (a *Admin) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}

// LockRemaining returns the remaining lock duration, or zero when not locked.
func (a *Admin) LockRemaining(now time.Time) time.Duration {
	if !a.IsLocked(now) {
		return 0
	}
	return a.LockedUntil.Sub(now)
}

// HasValidResetToken reports whether a reset token is present and unexpired.
// Both fields must be set; a half-set pair fails closed.
func (a *Admin) HasValidResetToken(now time.Time) bool {
	return a.ResetToken != nil && a.ResetTokenExpiresAt != nil && a.ResetTokenExpiresAt.After(now)
}

// Info strips credential and lockout state for responses.
func (a *Admin) Info() AdminInfo {
	return AdminInfo{
		ID:               a.ID,
		FullName:         a.FullName,
		Email:            a.Email,
		Role:             a.Role,
		IsActive:         a.IsActive,
		TwoFactorEnabled: a.TwoFactorEnabled,
		LastLogin:        a.LastLogin,
	}
}

// Session is the persisted audit record of a token issuance. It is keyed by
// the token reference (jti), not the token's cryptographic content.
type Session struct {
	ID        int64     `json:"id" db:"id"`
	AdminID   int64     `json:"admin_id" db:"admin_id"`
	TokenRef  string    `json:"token_ref" db:"token_ref"`
	Device    string    `json:"device" db:"device"`
	IPAddress string    `json:"ip_address" db:"ip_address"`
	UserAgent string    `json:"user_agent" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// TrimSessions reduces an oldest-first session list to its newest max
// entries, evicting oldest first. It mirrors the storage-layer trim that
// runs on every insert.
func TrimSessions(sessions []*Session, max int) []*Session {
	if len(sessions) <= max {
		return sessions
	}
	return sessions[len(sessions)-max:]
}

// LoginAttempt is one entry of the per-account login history window.
type LoginAttempt struct {
	ID        int64     `json:"id" db:"id"`
	AdminID   int64     `json:"admin_id" db:"admin_id"`
	At        time.Time `json:"at" db:"at"`
	IPAddress string    `json:"ip_address" db:"ip_address"`
	UserAgent string    `json:"user_agent" db:"user_agent"`
	Success   bool      `json:"success" db:"success"`
}

// RequestContext carries the caller metadata recorded on attempts, sessions
// and issued codes.
type RequestContext struct {
	Device    string
	IPAddress string
	UserAgent string
}
