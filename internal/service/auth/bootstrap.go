// internal/service/auth/bootstrap.go
package auth

import (
	"context"
	"fmt"

	"leadhub-service/internal/domain/admin"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// EnsureSuperAdminExists creates a super admin account if none exists (called on startup)
func (s *AuthService) EnsureSuperAdminExists(ctx context.Context, email, password, fullName string) error {
	exists, err := s.adminRepo.SuperAdminExists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check super admin existence: %w", err)
	}

	if exists {
		s.logger.Info("super admin already exists, skipping creation")
		return nil
	}

	if email == "" || password == "" || fullName == "" {
		return fmt.Errorf("super admin email, password, and name must be provided via environment variables")
	}
	email = admin.NormalizeEmail(email)

	s.logger.Info("creating super admin account", zap.String("email", email))

	// Shouldn't happen, but double-check
	emailExists, err := s.adminRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if emailExists {
		return fmt.Errorf("email %s already exists but super admin role not assigned", email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.policy.HashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	account := &admin.Admin{
		FullName:     fullName,
		Email:        email,
		Role:         admin.RoleSuperAdmin,
		IsActive:     true,
		PasswordHash: string(hashedPassword),
	}

	if err := s.adminRepo.Create(ctx, account); err != nil {
		return fmt.Errorf("failed to create super admin: %w", err)
	}

	s.logger.Info("super admin created successfully",
		zap.String("email", email),
		zap.String("full_name", fullName),
		zap.Int64("admin_id", account.ID),
	)

	return nil
}
