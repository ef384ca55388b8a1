package config

import (
	"os"
	"time"
)

// Server captures process-level configuration for the auth server.
type Server struct {
	Addr          string
	DatabaseURL   string
	JWTSigningKey string
	JWTIssuer     string
	TokenTTL      time.Duration
	SecureCookies bool
}

const defaultTokenTTL = 30 * 24 * time.Hour

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("IMMICH_ADDR")
	if addr == "" {
		addr = ":3001"
	}

	tokenTTL := defaultTokenTTL
	if raw := os.Getenv("IMMICH_TOKEN_TTL"); raw != "" {
		if duration, err := time.ParseDuration(raw); err == nil {
			tokenTTL = duration
		}
	}

	jwtSigningKey := os.Getenv("IMMICH_JWT_SECRET")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	jwtIssuer := os.Getenv("IMMICH_JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "immich"
	}

	return Server{
		Addr:          addr,
		DatabaseURL:   os.Getenv("IMMICH_DATABASE_URL"),
		JWTSigningKey: jwtSigningKey,
		JWTIssuer:     jwtIssuer,
		TokenTTL:      tokenTTL,
		SecureCookies: os.Getenv("IMMICH_SECURE_COOKIES") == "true",
	}
}
