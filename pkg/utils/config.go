package utils

import (
	"os"
	"strconv"
	"time"
)

type AuthConfig struct {
	JWTSecret     string
	JWTIssuer     string
	JWTDuration   time.Duration
	AdminPassword string
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("LOREVAULT_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("LOREVAULT_JWT_ISSUER")
	if issuer == "" {
		issuer = "lorevault"
	}

	password := os.Getenv("LOREVAULT_ADMIN_PASSWORD")
	if password == "" {
		password = "dev-password-change-me"
	}

	duration := 24 * time.Hour
	if ttl := os.Getenv("LOREVAULT_JWT_TTL_HOURS"); ttl != "" {
		if h, err := strconv.Atoi(ttl); err == nil && h > 0 {
			duration = time.Duration(h) * time.Hour
		}
	}

	return AuthConfig{
		JWTSecret:     secret,
		JWTIssuer:     issuer,
		JWTDuration:   duration,
		AdminPassword: password,
	}
}
