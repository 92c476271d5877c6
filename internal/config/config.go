// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server settings.
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Signing key settings.
	SigningPrivateKeyPath string // Path to Ed25519 private key PEM file.
	SigningPublicKeyPath  string // Path to Ed25519 public key PEM file.

	// Admin auth settings.
	AdminJWTPrivateKeyPath string
	AdminJWTPublicKeyPath  string
	AdminJWTExpiration     time.Duration
	AdminAPIKeyHash        string // Argon2id hash of the bootstrap admin API key.

	// Embedding provider settings.
	EmbeddingProvider   string // "deterministic" or "ollama"
	EmbeddingDimensions int
	OllamaURL           string
	OllamaModel         string

	// OTEL settings.
	OTELEnabled bool
	ServiceName string

	// Oracle registry / consensus settings.
	MinStake                   float64
	MinOracles                 int
	MaxOracles                 int
	ThresholdOptionalReview    float64
	ThresholdMandatoryMulti    float64
	AdminOracleReputationThreshold int
	VerdictTimeout             time.Duration
	ConsensusTimeout           time.Duration

	// Operational settings.
	LogLevel            string
	CORSAllowedOrigins  []string
	MaxRequestBodyBytes int64
}

// Load reads configuration from environment variables with sensible defaults.
// Returns an error if any environment variable contains an unparseable value.
// Missing variables use sensible defaults; only malformed values are rejected.
func Load() (Config, error) {
	var errs []error
	cfg := Config{
		SigningPrivateKeyPath:  envStr("ORACLE_SIGNING_PRIVATE_KEY", ""),
		SigningPublicKeyPath:   envStr("ORACLE_SIGNING_PUBLIC_KEY", ""),
		AdminJWTPrivateKeyPath: envStr("ORACLE_ADMIN_JWT_PRIVATE_KEY", ""),
		AdminJWTPublicKeyPath:  envStr("ORACLE_ADMIN_JWT_PUBLIC_KEY", ""),
		AdminAPIKeyHash:        envStr("ORACLE_ADMIN_API_KEY_HASH", ""),
		EmbeddingProvider:      envStr("ORACLE_EMBEDDING_PROVIDER", "deterministic"),
		OllamaURL:              envStr("ORACLE_OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:            envStr("ORACLE_OLLAMA_MODEL", "mxbai-embed-large"),
		ServiceName:            envStr("OTEL_SERVICE_NAME", "oracle"),
		LogLevel:               envStr("ORACLE_LOG_LEVEL", "info"),
		CORSAllowedOrigins:     envStrSlice("ORACLE_CORS_ALLOWED_ORIGINS", nil),
	}

	cfg.Port, errs = collectInt(errs, "ORACLE_PORT", 8080)
	cfg.EmbeddingDimensions, errs = collectInt(errs, "ORACLE_EMBEDDING_DIMENSIONS", 384)
	cfg.MinOracles, errs = collectInt(errs, "ORACLE_MIN_ORACLES", 3)
	cfg.MaxOracles, errs = collectInt(errs, "ORACLE_MAX_ORACLES", 5)
	cfg.AdminOracleReputationThreshold, errs = collectInt(errs, "ORACLE_ADMIN_REPUTATION_THRESHOLD", 900)

	var maxReqBody int
	maxReqBody, errs = collectInt(errs, "ORACLE_MAX_REQUEST_BODY_BYTES", 1*1024*1024)
	cfg.MaxRequestBodyBytes = int64(maxReqBody)

	cfg.OTELEnabled, errs = collectBool(errs, "ORACLE_OTEL_ENABLED", false)

	cfg.ReadTimeout, errs = collectDuration(errs, "ORACLE_READ_TIMEOUT", 30*time.Second)
	cfg.WriteTimeout, errs = collectDuration(errs, "ORACLE_WRITE_TIMEOUT", 30*time.Second)
	cfg.AdminJWTExpiration, errs = collectDuration(errs, "ORACLE_ADMIN_JWT_EXPIRATION", 24*time.Hour)
	cfg.VerdictTimeout, errs = collectDuration(errs, "ORACLE_VERDICT_TIMEOUT", 30*time.Second)
	cfg.ConsensusTimeout, errs = collectDuration(errs, "ORACLE_CONSENSUS_TIMEOUT", time.Hour)

	cfg.MinStake, errs = collectFloat(errs, "ORACLE_MIN_STAKE", 10.0)
	cfg.ThresholdOptionalReview, errs = collectFloat(errs, "ORACLE_THRESHOLD_OPTIONAL_REVIEW", 0.1)
	cfg.ThresholdMandatoryMulti, errs = collectFloat(errs, "ORACLE_THRESHOLD_MANDATORY_MULTI", 1.0)

	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return Config{}, fmt.Errorf("config: invalid environment variables:\n  %s", strings.Join(msgs, "\n  "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func collectInt(errs []error, key string, fallback int) (int, []error) {
	v, err := envInt(key, fallback)
	if err != nil {
		errs = append(errs, err)
	}
	return v, errs
}

func collectFloat(errs []error, key string, fallback float64) (float64, []error) {
	v, err := envFloat(key, fallback)
	if err != nil {
		errs = append(errs, err)
	}
	return v, errs
}

func collectBool(errs []error, key string, fallback bool) (bool, []error) {
	v, err := envBool(key, fallback)
	if err != nil {
		errs = append(errs, err)
	}
	return v, errs
}

func collectDuration(errs []error, key string, fallback time.Duration) (time.Duration, []error) {
	v, err := envDuration(key, fallback)
	if err != nil {
		errs = append(errs, err)
	}
	return v, errs
}

// Validate checks that required configuration is present and sane.
func (c Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, errors.New("config: ORACLE_PORT must be between 1 and 65535"))
	}
	if c.EmbeddingDimensions <= 0 {
		errs = append(errs, errors.New("config: ORACLE_EMBEDDING_DIMENSIONS must be positive"))
	}
	if c.EmbeddingProvider != "deterministic" && c.EmbeddingProvider != "ollama" {
		errs = append(errs, errors.New("config: ORACLE_EMBEDDING_PROVIDER must be \"deterministic\" or \"ollama\""))
	}
	if c.MaxRequestBodyBytes <= 0 {
		errs = append(errs, errors.New("config: ORACLE_MAX_REQUEST_BODY_BYTES must be positive"))
	}
	if c.ReadTimeout <= 0 {
		errs = append(errs, errors.New("config: ORACLE_READ_TIMEOUT must be positive"))
	}
	if c.WriteTimeout <= 0 {
		errs = append(errs, errors.New("config: ORACLE_WRITE_TIMEOUT must be positive"))
	}
	if c.MinStake < 0 {
		errs = append(errs, errors.New("config: ORACLE_MIN_STAKE must be non-negative"))
	}
	if c.MinOracles < 1 {
		errs = append(errs, errors.New("config: ORACLE_MIN_ORACLES must be at least 1"))
	}
	if c.MaxOracles < c.MinOracles {
		errs = append(errs, errors.New("config: ORACLE_MAX_ORACLES must be >= ORACLE_MIN_ORACLES"))
	}
	if c.AdminOracleReputationThreshold < 0 || c.AdminOracleReputationThreshold > 1000 {
		errs = append(errs, errors.New("config: ORACLE_ADMIN_REPUTATION_THRESHOLD must be between 0 and 1000"))
	}
	if c.VerdictTimeout <= 0 {
		errs = append(errs, errors.New("config: ORACLE_VERDICT_TIMEOUT must be positive"))
	}
	if c.ConsensusTimeout <= 0 {
		errs = append(errs, errors.New("config: ORACLE_CONSENSUS_TIMEOUT must be positive"))
	}
	if c.SigningPrivateKeyPath != "" {
		if err := validateKeyFile(c.SigningPrivateKeyPath, "ORACLE_SIGNING_PRIVATE_KEY"); err != nil {
			errs = append(errs, err)
		}
	}
	if c.SigningPublicKeyPath != "" {
		if err := validateKeyFile(c.SigningPublicKeyPath, "ORACLE_SIGNING_PUBLIC_KEY"); err != nil {
			errs = append(errs, err)
		}
	}
	if c.AdminJWTPrivateKeyPath != "" {
		if err := validateKeyFile(c.AdminJWTPrivateKeyPath, "ORACLE_ADMIN_JWT_PRIVATE_KEY"); err != nil {
			errs = append(errs, err)
		}
	}
	if c.AdminJWTPublicKeyPath != "" {
		if err := validateKeyFile(c.AdminJWTPublicKeyPath, "ORACLE_ADMIN_JWT_PUBLIC_KEY"); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// validateKeyFile checks that a key file exists, is readable, is non-empty,
// and has restrictive permissions (owner-only on Unix).
func validateKeyFile(path, envVar string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("config: %s %q: %w", envVar, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config: %s %q is a directory, expected a file", envVar, path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("config: %s %q is empty", envVar, path)
	}
	perm := info.Mode().Perm()
	if perm&0o077 != 0 {
		return fmt.Errorf("config: %s %q has overly permissive mode %04o (expected 0600 or stricter)", envVar, path, perm)
	}
	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid integer", key, v)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid number", key, v)
	}
	return f, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s=%q is not a valid boolean", key, v)
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid duration", key, v)
	}
	return d, nil
}

// envStrSlice reads a comma-separated env var into a string slice.
// Returns fallback if the env var is empty or unset.
func envStrSlice(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
