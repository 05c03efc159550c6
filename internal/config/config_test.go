package config

import (
	"errors"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENV", "STORE_DRIVER", "DATABASE_DSN", "JWT_SECRET",
		"JWT_EXPIRES_IN", "HASH_ALGORITHM", "BCRYPT_COST", "RESET_NOTICE_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "5000" {
		t.Errorf("Port = %q, want 5000", cfg.Port)
	}
	if cfg.StoreDriver != StoreMemory {
		t.Errorf("StoreDriver = %q, want memory", cfg.StoreDriver)
	}
	if cfg.JWTExpiry != 7*24*time.Hour {
		t.Errorf("JWTExpiry = %v, want 168h", cfg.JWTExpiry)
	}
	if cfg.HashAlgorithm != "bcrypt" || cfg.BcryptCost != 10 {
		t.Errorf("hash = %q/%d, want bcrypt/10", cfg.HashAlgorithm, cfg.BcryptCost)
	}
	if cfg.ResetNoticeInterval != time.Minute {
		t.Errorf("ResetNoticeInterval = %v, want 1m", cfg.ResetNoticeInterval)
	}
	if len(cfg.JWTSecret) != generatedSecretLength {
		t.Errorf("generated secret length = %d, want %d", len(cfg.JWTSecret), generatedSecretLength)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_DRIVER", "mysql")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRES_IN", "2h")
	t.Setenv("HASH_ALGORITHM", "argon2id")
	t.Setenv("BCRYPT_COST", "12")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "8080" || cfg.StoreDriver != StoreMySQL || cfg.JWTSecret != "s3cret" {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.JWTExpiry != 2*time.Hour {
		t.Errorf("JWTExpiry = %v, want 2h", cfg.JWTExpiry)
	}
	if cfg.HashAlgorithm != "argon2id" || cfg.BcryptCost != 12 {
		t.Errorf("hash = %q/%d", cfg.HashAlgorithm, cfg.BcryptCost)
	}
}

func TestLoadProductionRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")

	if _, err := Load(); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("Load() error = %v, want ErrMissingSecret", err)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"JWT_EXPIRES_IN", "7 days"},
		{"RESET_NOTICE_INTERVAL", "soon"},
		{"BCRYPT_COST", "high"},
		{"STORE_DRIVER", "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q succeeded, want error", tt.key, tt.value)
			}
		})
	}
}
