// internal/domain/admin/dto.go
package admin

import (
	"strings"
	"time"

	xerrors "leadhub-service/internal/pkg/errors"
)

// LoginRequest for the password login step
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Device   string `json:"device"`
}

func (r *LoginRequest) Validate() error {
	v := &xerrors.ValidationError{}
	validateEmail(v, r.Email)
	if r.Password == "" {
		v.Add("password", "is required")
	}
	return v.OrNil()
}

// RequestCodeRequest for the passwordless login code request (and resend)
type RequestCodeRequest struct {
	Email string `json:"email"`
}

func (r *RequestCodeRequest) Validate() error {
	v := &xerrors.ValidationError{}
	validateEmail(v, r.Email)
	return v.OrNil()
}

// VerifyCodeRequest for the shared code-verification step
type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (r *VerifyCodeRequest) Validate() error {
	v := &xerrors.ValidationError{}
	validateEmail(v, r.Email)
	if len(r.Code) != 6 {
		v.Add("code", "must be 6 digits")
	} else {
		for _, c := range r.Code {
			if c < '0' || c > '9' {
				v.Add("code", "must be 6 digits")
				break
			}
		}
	}
	return v.OrNil()
}

// ChangePasswordRequest for authenticated password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r *ChangePasswordRequest) Validate() error {
	v := &xerrors.ValidationError{}
	if r.CurrentPassword == "" {
		v.Add("current_password", "is required")
	}
	if len(r.NewPassword) < 8 {
		v.Add("new_password", "must be at least 8 characters")
	}
	return v.OrNil()
}

// ToggleTwoFactorRequest flips the two-factor flag. Pointer so that a missing
// field is distinguishable from an explicit false.
type ToggleTwoFactorRequest struct {
	Enabled *bool `json:"enabled"`
}

func (r *ToggleTwoFactorRequest) Validate() error {
	v := &xerrors.ValidationError{}
	if r.Enabled == nil {
		v.Add("enabled", "is required")
	}
	return v.OrNil()
}

// ForgotPasswordRequest initiates the reset-token flow
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r *ForgotPasswordRequest) Validate() error {
	v := &xerrors.ValidationError{}
	validateEmail(v, r.Email)
	return v.OrNil()
}

// ResetPasswordRequest completes the reset-token flow
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (r *ResetPasswordRequest) Validate() error {
	v := &xerrors.ValidationError{}
	if r.Token == "" {
		v.Add("token", "is required")
	}
	if len(r.NewPassword) < 8 {
		v.Add("new_password", "must be at least 8 characters")
	}
	return v.OrNil()
}

// AdminInfo is the sanitized profile returned to clients
type AdminInfo struct {
	ID               int64      `json:"id"`
	FullName         string     `json:"full_name"`
	Email            string     `json:"email"`
	Role             string     `json:"role"`
	IsActive         bool       `json:"is_active"`
	TwoFactorEnabled bool       `json:"two_factor_enabled"`
	LastLogin        *time.Time `json:"last_login"`
}

// LoginResponse carries issued tokens after a completed login
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	Admin        AdminInfo `json:"admin"`
}

// LoginResult is what the password step hands back: either a completed login
// or a two-factor challenge with no tokens attached.
type LoginResult struct {
	TwoFactorRequired bool           `json:"two_factor_required"`
	Email             string         `json:"email,omitempty"`
	Login             *LoginResponse `json:"login,omitempty"`
}

func validateEmail(v *xerrors.ValidationError, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		v.Add("email", "is required")
		return
	}
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at+1:], ".") {
		v.Add("email", "must be a valid email address")
	}
}

// NormalizeEmail lowercases and trims an address; lookups are
// case-insensitive throughout.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
