package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"bmr-backend/internal/bmr"
	"bmr-backend/internal/testreport"
)

const (
	defaultDSN     = "host=localhost user=postgres password=postgres dbname=bmr port=5432 sslmode=disable"
	defaultOrigins = "http://localhost:5173"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string

	LogLevel  string
	LogFormat string

	// SearchRateLimit is the number of lookup requests a client may make per minute.
	SearchRateLimit int

	Assignees      bmr.DefaultAssignees
	ReportDefaults testreport.Defaults

	TestedBySignature   string
	ReviewedBySignature string
}

// Load reads the environment, after loading .env when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	qa := getEnv("DEFAULT_QA_VERIFIER", "")
	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseDSN: getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", defaultOrigins),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		Assignees: bmr.DefaultAssignees{
			ProductionVerifier:    getEnv("DEFAULT_PRODUCTION_VERIFIER", ""),
			QAVerifier:            qa,
			SterilizationOperator: getEnv("DEFAULT_STERILIZATION_OPERATOR", ""),
			HeadProduction:        getEnv("DEFAULT_HEAD_PRODUCTION", ""),
			MaterialMeasuredBy:    getEnv("DEFAULT_MATERIAL_MEASURER", ""),
			MaterialVerifiedBy:    getEnv("DEFAULT_MATERIAL_VERIFIER", qa),
			Brand:                 getEnv("DEFAULT_BRAND", ""),
		},
		ReportDefaults: testreport.Defaults{
			TestedBy:   getEnv("DEFAULT_TESTED_BY", ""),
			ReviewedBy: getEnv("DEFAULT_REVIEWED_BY", qa),
		},
		TestedBySignature:   getEnv("SIGNATURE_TESTED_BY_IMAGE", ""),
		ReviewedBySignature: getEnv("SIGNATURE_REVIEWED_BY_IMAGE", ""),
	}

	limit, err := strconv.Atoi(getEnv("SEARCH_RATE_LIMIT", "120"))
	if err != nil || limit <= 0 {
		return nil, fmt.Errorf("SEARCH_RATE_LIMIT must be a positive integer")
	}
	cfg.SearchRateLimit = limit

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET must be at least 32 characters")
	}
	switch cfg.LogFormat {
	case "json", "console":
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be json or console, got %q", cfg.LogFormat)
	}
	return cfg, nil
}

// Warnings lists settings still on their development defaults.
func (c *Config) Warnings() []string {
	var out []string
	if c.DatabaseDSN == defaultDSN {
		out = append(out, "DATABASE_DSN is using the local default")
	}
	if c.CORSOrigins == defaultOrigins {
		out = append(out, "CORS_ALLOWED_ORIGINS is using the local default")
	}
	return out
}

// Origins returns the comma separated CORS origins, trimmed.
func (c *Config) Origins() string {
	parts := strings.Split(c.CORSOrigins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ",")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
