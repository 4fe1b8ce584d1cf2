package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port string

	DBDriver string
	DBDSN    string

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	RedisAddr     string
	RedisPassword string

	CORSAllowedOrigins []string

	OTLPEndpoint string
	LogLevel     slog.Level
}

// Load reads the configuration from the environment, after loading a .env
// file from the working directory when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load() // a missing .env is fine

	cfg := &Config{
		Port:          getenv("PORT", "8080"),
		DBDriver:      getenv("DB_DRIVER", "sqlite"),
		DBDSN:         getenv("DB_DSN", "./tasks.db"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		OTLPEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	minutes, err := strconv.Atoi(getenv("ACCESS_TOKEN_EXPIRE_MINUTES", "30"))
	if err != nil || minutes <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be a positive integer")
	}
	cfg.TokenTTL = time.Duration(minutes) * time.Minute

	cfg.BcryptCost, err = strconv.Atoi(getenv("BCRYPT_COST", strconv.Itoa(bcrypt.DefaultCost)))
	if err != nil || cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST must be an integer between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	for _, origin := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
