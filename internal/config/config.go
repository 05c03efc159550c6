package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/iMallco/iMall/internal/crypto"
)

const (
	StoreMemory = "memory"
	StoreMySQL  = "mysql"

	generatedSecretLength = 48
)

var ErrMissingSecret = errors.New("JWT_SECRET must be set in production environment")

type Config struct {
	Port                string
	Env                 string
	StoreDriver         string
	DatabaseDSN         string
	JWTSecret           string
	JWTExpiry           time.Duration
	HashAlgorithm       string
	BcryptCost          int
	ResetNoticeInterval time.Duration
}

// Load reads the configuration from the environment. Outside production a
// missing JWT_SECRET is replaced with a random one, so tokens do not survive
// a restart.
func Load() (Config, error) {
	cfg := Config{
		Port:          getEnv("PORT", "5000"),
		Env:           getEnv("ENV", "development"),
		StoreDriver:   getEnv("STORE_DRIVER", StoreMemory),
		DatabaseDSN:   getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/imall?parseTime=true"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		HashAlgorithm: getEnv("HASH_ALGORITHM", crypto.AlgorithmBcrypt),
	}

	var err error
	if cfg.JWTExpiry, err = getDuration("JWT_EXPIRES_IN", 7*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.ResetNoticeInterval, err = getDuration("RESET_NOTICE_INTERVAL", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", 10); err != nil {
		return Config{}, err
	}

	switch cfg.StoreDriver {
	case StoreMemory, StoreMySQL:
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.StoreDriver)
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			return Config{}, ErrMissingSecret
		}
		secret, err := crypto.GenerateSecret(generatedSecretLength)
		if err != nil {
			return Config{}, fmt.Errorf("generating JWT secret: %w", err)
		}
		cfg.JWTSecret = secret
		slog.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
