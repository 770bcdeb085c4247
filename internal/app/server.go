// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"leadhub-service/internal/config"
	"leadhub-service/internal/db"
	authHandler "leadhub-service/internal/handlers/auth"
	"leadhub-service/internal/middleware"
	"leadhub-service/internal/pkg/jwt"
	"leadhub-service/internal/repository/postgres"
	"leadhub-service/internal/repository/redisstore"
	authUsecase "leadhub-service/internal/service/auth"
	"leadhub-service/internal/service/email"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg         config.AppConfig
	engine      *gin.Engine
	logger      *zap.Logger
	authService *authUsecase.AuthService
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := postgres.Connect(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()

	// ----- JWT Manager -----
	jwtManager, err := jwt.Build(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to build JWT manager: %w", err)
	}

	// ----- Email -----
	emailSender := email.NewEmailSender(
		s.cfg.SMTPHost,
		s.cfg.SMTPPort,
		s.cfg.SMTPUser,
		s.cfg.SMTPPass,
		s.cfg.SMTPFromName,
		s.cfg.SMTPSecure,
	)

	// ----- Repositories -----
	adminRepo := postgres.NewAdminRepository(pool)
	codeRepo := redisstore.NewOTPRepository(redisClient)

	// ----- Services -----
	authService := authUsecase.NewAuthService(
		adminRepo,
		codeRepo,
		jwtManager,
		emailSender,
		authUsecase.Policy{
			MaxLoginAttempts: s.cfg.MaxLoginAttempts,
			LockTime:         s.cfg.LockTime,
			OTPExpiry:        s.cfg.OTPExpiry,
			MaxOTPAttempts:   s.cfg.MaxOTPAttempts,
			ResendDelay:      s.cfg.OTPResendDelay,
			HashCost:         s.cfg.PasswordHashCost,
			ResetTokenExpiry: s.cfg.ResetTokenExpiry,
			BaseURL:          s.cfg.BaseURL,
		},
		logger,
	)
	s.authService = authService

	// ----- Initialize Super Admin -----
	if err := s.initializeSuperAdmin(); err != nil {
		logger.Error("failed to initialize super admin", zap.Error(err))
		// Don't fail startup, just log the error
	}

	// ----- Handlers & Middleware -----
	authHandlerInst := authHandler.NewAuthHandler(authService, logger)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager.Verifier, adminRepo)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.RequestIDMiddleware(),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	handlers := &Handlers{
		AuthHandler:    authHandlerInst,
		AuthMiddleware: authMiddleware,
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}

// initializeSuperAdmin creates the super admin account if it doesn't exist
func (s *Server) initializeSuperAdmin() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	email := s.cfg.SuperAdminEmail
	password := s.cfg.SuperAdminPassword
	fullName := s.cfg.SuperAdminName

	if email == "" || password == "" {
		s.logger.Warn("SUPER_ADMIN_EMAIL or SUPER_ADMIN_PASSWORD not set, skipping super admin bootstrap")
		return nil
	}
	if len(password) < 8 {
		return fmt.Errorf("super admin password must be at least 8 characters")
	}

	if err := s.authService.EnsureSuperAdminExists(ctx, email, password, fullName); err != nil {
		return fmt.Errorf("failed to ensure super admin exists: %w", err)
	}

	return nil
}
