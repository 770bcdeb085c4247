// internal/pkg/jwt/manager.go
package jwt

import (
	"fmt"
	"time"
)

type Config struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	Audience      string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type Manager struct {
	Generator *Generator
	Verifier  *Verifier
}

// Build validates the configured secrets and wires a generator/verifier
// pair. The access and refresh secrets must differ so a refresh token can
// never pass access verification.
func Build(cfg Config) (*Manager, error) {
	if len(cfg.AccessSecret) < 32 {
		return nil, fmt.Errorf("ACCESS_TOKEN_SECRET must be at least 32 characters")
	}
	if len(cfg.RefreshSecret) < 32 {
		return nil, fmt.Errorf("REFRESH_TOKEN_SECRET must be at least 32 characters")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, fmt.Errorf("access and refresh token secrets must be distinct")
	}

	access, refresh := []byte(cfg.AccessSecret), []byte(cfg.RefreshSecret)
	gen := NewGenerator(access, refresh, cfg.Issuer, cfg.Audience, cfg.AccessTTL, cfg.RefreshTTL)
	ver := NewVerifier(access, refresh, cfg.Issuer, cfg.Audience)

	return &Manager{Generator: gen, Verifier: ver}, nil
}
