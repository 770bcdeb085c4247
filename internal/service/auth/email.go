// internal/service/auth/email.go
package auth

import (
	"context"
	"fmt"
	"time"

	"leadhub-service/internal/domain/otp"
	"leadhub-service/internal/service/email"

	"go.uber.org/zap"
)

// EmailHelper handles email template generation and sending
type EmailHelper struct {
	sender  email.Sender
	logger  *zap.Logger
	baseURL string
}

func NewEmailHelper(sender email.Sender, logger *zap.Logger, baseURL string) *EmailHelper {
	return &EmailHelper{
		sender:  sender,
		logger:  logger,
		baseURL: baseURL,
	}
}

// ========== Login / Two-Factor Codes ==========

// LoginCodeEmail builds the verification code email for a purpose.
func (h *EmailHelper) LoginCodeEmail(fullName, code, purpose string, expiry time.Duration) (string, string) {
	subject := "Your LeadHub Sign-In Code"
	intro := "Use the code below to sign in to the LeadHub admin panel."
	if purpose == otp.PurposeTwoFactor {
		subject = "Your LeadHub Verification Code"
		intro = "Use the code below to finish signing in to the LeadHub admin panel."
	}

	body := fmt.Sprintf(`
		<h2>%s</h2>
		<p>Hello %s,</p>
		<p>%s</p>
		<p style="text-align:center;"><span class="code">%s</span></p>
		<p>The code expires in %d minutes and can only be used once.</p>
		<p>If you didn't request this code, you can safely ignore this email.</p>
	`, subject, fullName, intro, code, int(expiry.Minutes()))

	return subject, body
}

// SendLoginCode delivers a verification code synchronously so callers can
// surface delivery failures.
func (h *EmailHelper) SendLoginCode(ctx context.Context, to, fullName, code, purpose string, expiry time.Duration) error {
	subject, body := h.LoginCodeEmail(fullName, code, purpose, expiry)
	if err := h.sender.Send(to, subject, body); err != nil {
		return err
	}
	h.logger.Info("verification code email sent", zap.String("email", to))
	return nil
}

// ========== Password Reset ==========

// PasswordResetEmail builds a password reset email
func (h *EmailHelper) PasswordResetEmail(fullName, token string, expiry time.Duration) (string, string) {
	resetURL := fmt.Sprintf("%s/auth/reset-password?token=%s", h.baseURL, token)

	subject := "Password Reset Request - LeadHub"
	body := fmt.Sprintf(`
		<h2>Password Reset Request</h2>
		<p>Hello %s,</p>
		<p>We received a request to reset the password of your LeadHub admin account.</p>
		<p>Click the button below to reset your password:</p>
		<p><a href="%s" class="button">Reset Password</a></p>
		<p>Or copy and paste this link into your browser:</p>
		<p><a href="%s">%s</a></p>
		<p>This link expires in %d hour(s). If you didn't request a reset, ignore this email.</p>
	`, fullName, resetURL, resetURL, resetURL, int(expiry.Hours()))

	return subject, body
}

// SendPasswordResetEmail sends password reset email asynchronously
func (h *EmailHelper) SendPasswordResetEmail(ctx context.Context, to, fullName, token string, expiry time.Duration) {
	go func() {
		subject, body := h.PasswordResetEmail(fullName, token, expiry)
		if err := h.sender.Send(to, subject, body); err != nil {
			h.logger.Error("failed to send password reset email",
				zap.String("email", to),
				zap.Error(err),
			)
		} else {
			h.logger.Info("password reset email sent",
				zap.String("email", to),
			)
		}
	}()
}

// ========== Notices ==========

// PasswordChangedEmail builds the password change notification
func (h *EmailHelper) PasswordChangedEmail(fullName string) (string, string) {
	subject := "Your LeadHub Password Was Changed"
	body := fmt.Sprintf(`
		<h2>Password Changed</h2>
		<p>Hello %s,</p>
		<p>The password of your LeadHub admin account was just changed. All active sessions have been signed out.</p>
		<p>If this wasn't you, reset your password immediately and contact your administrator.</p>
	`, fullName)
	return subject, body
}

// SendPasswordChangedNotice notifies asynchronously after a password change
func (h *EmailHelper) SendPasswordChangedNotice(ctx context.Context, to, fullName string) {
	go func() {
		subject, body := h.PasswordChangedEmail(fullName)
		if err := h.sender.Send(to, subject, body); err != nil {
			h.logger.Error("failed to send password changed notice",
				zap.String("email", to),
				zap.Error(err),
			)
		}
	}()
}

// AccountLockedEmail builds the lockout notification
func (h *EmailHelper) AccountLockedEmail(fullName string, lockFor time.Duration) (string, string) {
	subject := "LeadHub Account Temporarily Locked"
	body := fmt.Sprintf(`
		<h2>Account Locked</h2>
		<p>Hello %s,</p>
		<p>Your LeadHub admin account was temporarily locked after repeated failed sign-in attempts.</p>
		<p>You can try again in %d minutes, or reset your password now.</p>
		<p>If this wasn't you, we recommend resetting your password.</p>
	`, fullName, int(lockFor.Minutes()))
	return subject, body
}

// SendAccountLockedNotice notifies asynchronously after a lockout
func (h *EmailHelper) SendAccountLockedNotice(ctx context.Context, to, fullName string, lockFor time.Duration) {
	go func() {
		subject, body := h.AccountLockedEmail(fullName, lockFor)
		if err := h.sender.Send(to, subject, body); err != nil {
			h.logger.Error("failed to send account locked notice",
				zap.String("email", to),
				zap.Error(err),
			)
		}
	}()
}
