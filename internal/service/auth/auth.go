// internal/service/auth/auth.go
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"leadhub-service/internal/domain/admin"
	"leadhub-service/internal/domain/otp"
	xerrors "leadhub-service/internal/pkg/errors"
	"leadhub-service/internal/pkg/jwt"
	"leadhub-service/internal/service/email"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Policy bundles the tunable authentication knobs.
type Policy struct {
	MaxLoginAttempts int
	LockTime         time.Duration
	OTPExpiry        time.Duration
	MaxOTPAttempts   int
	ResendDelay      time.Duration
	HashCost         int
	ResetTokenExpiry time.Duration
	BaseURL          string
}

type AuthService struct {
	adminRepo   admin.Repository
	codes       otp.Repository
	jwtManager  *jwt.Manager
	emailHelper *EmailHelper
	policy      Policy
	logger      *zap.Logger
}

func NewAuthService(
	adminRepo admin.Repository,
	codes otp.Repository,
	jwtManager *jwt.Manager,
	sender email.Sender,
	policy Policy,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		adminRepo:   adminRepo,
		codes:       codes,
		jwtManager:  jwtManager,
		emailHelper: NewEmailHelper(sender, logger, policy.BaseURL),
		policy:      policy,
		logger:      logger,
	}
}

// ========== Password Login ==========

// PasswordLogin authenticates an administrator with email/password. When the
// account has two-factor enabled it issues a code and returns a challenge
// with no tokens; otherwise it completes the login.
func (s *AuthService) PasswordLogin(ctx context.Context, req *admin.LoginRequest, reqCtx admin.RequestContext) (*admin.LoginResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	emailAddr := admin.NormalizeEmail(req.Email)
	if req.Device != "" {
		reqCtx.Device = req.Device
	}

	adm, err := s.adminRepo.FindActiveByEmail(ctx, emailAddr)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	now := time.Now()
	if adm.IsLocked(now) {
		return nil, &xerrors.AccountLockedError{RetryAfter: adm.LockRemaining(now)}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(adm.PasswordHash), []byte(req.Password)); err != nil {
		return nil, s.registerFailedLogin(ctx, adm, reqCtx)
	}

	if adm.TwoFactorEnabled {
		if err := s.issueCode(ctx, adm, otp.PurposeTwoFactor, reqCtx); err != nil {
			return nil, err
		}
		return &admin.LoginResult{TwoFactorRequired: true, Email: emailAddr}, nil
	}

	login, err := s.finishLogin(ctx, adm, reqCtx, false)
	if err != nil {
		return nil, err
	}
	return &admin.LoginResult{Login: login}, nil
}

// registerFailedLogin persists the failed attempt and converts the outcome
// into the caller-facing error. Hitting the attempt ceiling locks the
// account; a lock set here also rejects the correct password until it
// elapses.
func (s *AuthService) registerFailedLogin(ctx context.Context, adm *admin.Admin, reqCtx admin.RequestContext) error {
	attempts, lockedUntil, err := s.adminRepo.RecordFailedAttempt(ctx, adm.ID, s.policy.MaxLoginAttempts, s.policy.LockTime)
	if err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	s.recordHistory(ctx, adm.ID, reqCtx, false)

	if lockedUntil != nil {
		s.logger.Warn("admin account locked after repeated failures",
			zap.Int64("admin_id", adm.ID),
			zap.Int("attempts", attempts),
			zap.Time("locked_until", *lockedUntil),
		)
		s.emailHelper.SendAccountLockedNotice(ctx, adm.Email, adm.FullName, s.policy.LockTime)
		return &xerrors.AccountLockedError{RetryAfter: time.Until(*lockedUntil)}
	}
	return xerrors.ErrUnauthorized
}

// ========== Passwordless / Code Login ==========

// RequestLoginCode issues a passwordless login code to a known
// administrator email. Issuing supersedes any outstanding code for the
// address and is throttled by the resend delay.
func (s *AuthService) RequestLoginCode(ctx context.Context, req *admin.RequestCodeRequest, reqCtx admin.RequestContext) error {
	if err := req.Validate(); err != nil {
		return err
	}
	adm, err := s.lookupForCode(ctx, admin.NormalizeEmail(req.Email))
	if err != nil {
		return err
	}
	return s.issueCode(ctx, adm, otp.PurposeLogin, reqCtx)
}

// ResendCode re-issues the outstanding code for the email, keeping its
// purpose. With no outstanding code it falls back to a login code.
func (s *AuthService) ResendCode(ctx context.Context, req *admin.RequestCodeRequest, reqCtx admin.RequestContext) error {
	if err := req.Validate(); err != nil {
		return err
	}
	emailAddr := admin.NormalizeEmail(req.Email)
	adm, err := s.lookupForCode(ctx, emailAddr)
	if err != nil {
		return err
	}

	purpose := otp.PurposeLogin
	if existing, err := s.codes.Find(ctx, emailAddr); err == nil {
		purpose = existing.Purpose
	}
	return s.issueCode(ctx, adm, purpose, reqCtx)
}

// VerifyLoginCode completes a code-based login (passwordless or the second
// factor of a password login) and issues tokens.
func (s *AuthService) VerifyLoginCode(ctx context.Context, req *admin.VerifyCodeRequest, reqCtx admin.RequestContext) (*admin.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	emailAddr := admin.NormalizeEmail(req.Email)

	adm, err := s.lookupForCode(ctx, emailAddr)
	if err != nil {
		return nil, err
	}

	code, err := s.codes.Verify(ctx, emailAddr, req.Code, s.policy.MaxOTPAttempts)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrCodeInvalid) || xerrors.Is(err, xerrors.ErrAttemptsExceeded) {
			// Wrong guesses feed the same lockout counter as bad passwords.
			failErr := s.registerFailedLogin(ctx, adm, reqCtx)
			if locked, ok := xerrors.AsAccountLocked(failErr); ok {
				return nil, locked
			}
			return nil, err
		}
		s.recordHistory(ctx, adm.ID, reqCtx, false)
		return nil, err
	}
	if !code.UsableForLogin() {
		// Reset codes never mint tokens.
		return nil, xerrors.ErrCodeInvalid
	}

	return s.finishLogin(ctx, adm, reqCtx, true)
}

// lookupForCode fetches an active admin for the code flows, rejecting
// locked accounts up front. An unknown or inactive address surfaces as
// Unauthorized, indistinguishable from a bad credential.
func (s *AuthService) lookupForCode(ctx context.Context, emailAddr string) (*admin.Admin, error) {
	adm, err := s.adminRepo.FindActiveByEmail(ctx, emailAddr)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}
	if adm.IsLocked(time.Now()) {
		return nil, &xerrors.AccountLockedError{RetryAfter: adm.LockRemaining(time.Now())}
	}
	return adm, nil
}

// issueCode applies the resend throttle, stores a fresh code and delivers
// it. Delivery is synchronous so the caller learns about a failed send.
func (s *AuthService) issueCode(ctx context.Context, adm *admin.Admin, purpose string, reqCtx admin.RequestContext) error {
	emailAddr := admin.NormalizeEmail(adm.Email)

	if existing, err := s.codes.Find(ctx, emailAddr); err == nil {
		elapsed := time.Since(existing.CreatedAt)
		if elapsed < s.policy.ResendDelay {
			return &xerrors.RateLimitedError{RetryAfter: s.policy.ResendDelay - elapsed}
		}
	}

	code, err := s.codes.Issue(ctx, emailAddr, purpose, s.policy.OTPExpiry, otp.RequesterContext{
		IPAddress: reqCtx.IPAddress,
		UserAgent: reqCtx.UserAgent,
	})
	if err != nil {
		return fmt.Errorf("failed to issue code: %w", err)
	}

	if err := s.emailHelper.SendLoginCode(ctx, adm.Email, adm.FullName, code.Code, purpose, s.policy.OTPExpiry); err != nil {
		s.logger.Error("code delivery failed",
			zap.String("email", adm.Email),
			zap.String("purpose", purpose),
			zap.Error(err),
		)
		return xerrors.ErrDeliveryFailure
	}

	s.logger.Info("verification code issued",
		zap.Int64("admin_id", adm.ID),
		zap.String("purpose", purpose),
	)
	return nil
}

// ========== Token Issuance ==========

// finishLogin mints the tokens, records the session and the successful
// attempt, and resets the failure counters. A refresh token is minted only
// for the code-verification flow; the password step never carries one.
func (s *AuthService) finishLogin(ctx context.Context, adm *admin.Admin, reqCtx admin.RequestContext, withRefresh bool) (*admin.LoginResponse, error) {
	now := time.Now()

	accessToken, jti, err := s.jwtManager.Generator.AccessToken(jwt.TokenSubject{
		AdminID: adm.ID,
		Email:   adm.Email,
		Role:    adm.Role,
	}, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	var refreshToken string
	if withRefresh {
		refreshToken, _, err = s.jwtManager.Generator.RefreshToken(adm.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to generate refresh token: %w", err)
		}
	}

	expiresAt := now.Add(s.jwtManager.Generator.AccessTTL)
	session := &admin.Session{
		AdminID:   adm.ID,
		TokenRef:  jti,
		Device:    reqCtx.Device,
		IPAddress: reqCtx.IPAddress,
		UserAgent: reqCtx.UserAgent,
		ExpiresAt: expiresAt,
	}
	if err := s.adminRepo.AddSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to record session: %w", err)
	}

	if err := s.adminRepo.RecordSuccessfulLogin(ctx, adm.ID); err != nil {
		s.logger.Error("failed to record successful login", zap.Int64("admin_id", adm.ID), zap.Error(err))
	}
	s.recordHistory(ctx, adm.ID, reqCtx, true)

	info := adm.Info()
	info.LastLogin = &now

	return &admin.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.jwtManager.Generator.AccessTTL.Seconds()),
		ExpiresAt:    expiresAt,
		Admin:        info,
	}, nil
}

// VerifyRefreshToken validates a refresh token and returns the admin it was
// minted for, re-checked against the store.
func (s *AuthService) VerifyRefreshToken(ctx context.Context, token string) (*admin.Admin, error) {
	claims, err := s.jwtManager.Verifier.VerifyRefreshToken(token)
	if err != nil {
		return nil, err
	}
	adm, err := s.adminRepo.FindByID(ctx, claims.AdminID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}
	if !adm.IsActive {
		return nil, xerrors.ErrUnauthorized
	}
	return adm, nil
}

// ========== Password Management ==========

// ChangePassword changes the password of an authenticated admin. The
// current password must match; all recorded sessions are dropped after.
func (s *AuthService) ChangePassword(ctx context.Context, adminID int64, req *admin.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	adm, err := s.adminRepo.FindByID(ctx, adminID)
	if err != nil {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(adm.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return xerrors.ErrUnauthorized
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.policy.HashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.adminRepo.UpdatePassword(ctx, adminID, string(hashed)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.adminRepo.RemoveAllSessions(ctx, adminID); err != nil {
		s.logger.Error("failed to drop sessions after password change", zap.Int64("admin_id", adminID), zap.Error(err))
	}

	s.emailHelper.SendPasswordChangedNotice(ctx, adm.Email, adm.FullName)
	return nil
}

// ToggleTwoFactor flips the two-factor flag for an admin.
func (s *AuthService) ToggleTwoFactor(ctx context.Context, adminID int64, enabled bool) error {
	if err := s.adminRepo.SetTwoFactor(ctx, adminID, enabled); err != nil {
		return fmt.Errorf("failed to update two-factor flag: %w", err)
	}
	s.logger.Info("two-factor flag updated", zap.Int64("admin_id", adminID), zap.Bool("enabled", enabled))
	return nil
}

// ForgotPassword issues a password reset token and emails the reset link.
// Unknown addresses are ignored so the endpoint does not reveal accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, req *admin.ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	emailAddr := admin.NormalizeEmail(req.Email)

	adm, err := s.adminRepo.FindActiveByEmail(ctx, emailAddr)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			s.logger.Debug("password reset requested for unknown email", zap.String("email", emailAddr))
			return nil
		}
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	token, err := generateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	expiresAt := time.Now().Add(s.policy.ResetTokenExpiry)
	if err := s.adminRepo.SetPasswordResetToken(ctx, adm.ID, token, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	s.emailHelper.SendPasswordResetEmail(ctx, adm.Email, adm.FullName, token, s.policy.ResetTokenExpiry)
	return nil
}

// ResetPassword consumes a reset token, sets the new password and drops all
// recorded sessions. The token is single use.
func (s *AuthService) ResetPassword(ctx context.Context, req *admin.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	adm, err := s.adminRepo.FindByResetToken(ctx, req.Token)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return xerrors.ErrUnauthorized
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.policy.HashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.adminRepo.UpdatePassword(ctx, adm.ID, string(hashed)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.adminRepo.ClearPasswordResetToken(ctx, adm.ID); err != nil {
		s.logger.Error("failed to clear reset token", zap.Int64("admin_id", adm.ID), zap.Error(err))
	}
	if err := s.adminRepo.RemoveAllSessions(ctx, adm.ID); err != nil {
		s.logger.Error("failed to drop sessions after password reset", zap.Int64("admin_id", adm.ID), zap.Error(err))
	}

	s.emailHelper.SendPasswordChangedNotice(ctx, adm.Email, adm.FullName)
	return nil
}

// ========== Session Bookkeeping ==========

// Logout removes the session record behind the presented token. Access
// tokens stay cryptographically valid until expiry; deactivation is the
// hard revocation path.
func (s *AuthService) Logout(ctx context.Context, adminID int64, tokenRef string) error {
	if err := s.adminRepo.RemoveSession(ctx, adminID, tokenRef); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

// LogoutAll drops every recorded session for the admin.
func (s *AuthService) LogoutAll(ctx context.Context, adminID int64) error {
	if err := s.adminRepo.RemoveAllSessions(ctx, adminID); err != nil {
		return fmt.Errorf("failed to remove sessions: %w", err)
	}
	return nil
}

// Sessions lists the admin's recorded sessions, pruning expired ones first.
func (s *AuthService) Sessions(ctx context.Context, adminID int64) ([]*admin.Session, error) {
	if err := s.adminRepo.PruneExpiredSessions(ctx, adminID); err != nil {
		s.logger.Error("failed to prune expired sessions", zap.Int64("admin_id", adminID), zap.Error(err))
	}
	sessions, err := s.adminRepo.ListSessions(ctx, adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// RevokeSession removes one recorded session by its token reference.
func (s *AuthService) RevokeSession(ctx context.Context, adminID int64, tokenRef string) error {
	if err := s.adminRepo.RemoveSession(ctx, adminID, tokenRef); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// DeactivateAdmin disables an account and drops its sessions. Because the
// request gate re-fetches the account on every call, deactivation revokes
// outstanding tokens immediately.
func (s *AuthService) DeactivateAdmin(ctx context.Context, adminID int64) error {
	adm, err := s.adminRepo.FindByID(ctx, adminID)
	if err != nil {
		return fmt.Errorf("failed to look up admin: %w", err)
	}
	if adm.Role == admin.RoleSuperAdmin {
		return xerrors.ErrForbidden
	}

	if err := s.adminRepo.Deactivate(ctx, adminID); err != nil {
		return fmt.Errorf("failed to deactivate admin: %w", err)
	}
	if err := s.adminRepo.RemoveAllSessions(ctx, adminID); err != nil {
		s.logger.Error("failed to drop sessions after deactivation", zap.Int64("admin_id", adminID), zap.Error(err))
	}

	s.logger.Info("admin deactivated", zap.Int64("admin_id", adminID))
	return nil
}

// LoginHistory returns the most recent login attempts for the admin.
func (s *AuthService) LoginHistory(ctx context.Context, adminID int64, limit int) ([]*admin.LoginAttempt, error) {
	if limit <= 0 || limit > admin.MaxLoginHistory {
		limit = admin.MaxLoginHistory
	}
	history, err := s.adminRepo.ListLoginHistory(ctx, adminID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list login history: %w", err)
	}
	return history, nil
}

// ========== Helpers ==========

func (s *AuthService) recordHistory(ctx context.Context, adminID int64, reqCtx admin.RequestContext, success bool) {
	attempt := &admin.LoginAttempt{
		AdminID:   adminID,
		At:        time.Now(),
		IPAddress: reqCtx.IPAddress,
		UserAgent: reqCtx.UserAgent,
		Success:   success,
	}
	if err := s.adminRepo.AddLoginHistory(ctx, attempt); err != nil {
		s.logger.Error("failed to record login history", zap.Int64("admin_id", adminID), zap.Error(err))
	}
}

func generateResetToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}
