package config

import (
	"testing"
	"time"
)

func TestEnvIntValid(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	v, err := envInt("TEST_INT", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 {
		t.Fatalf("expected 42, got %d", v)
	}
}

func TestEnvIntFallback(t *testing.T) {
	v, err := envInt("TEST_INT_MISSING", 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 99 {
		t.Fatalf("expected fallback 99, got %d", v)
	}
}

func TestEnvIntInvalid(t *testing.T) {
	t.Setenv("TEST_INT_BAD", "abc")
	_, err := envInt("TEST_INT_BAD", 0)
	if err == nil {
		t.Fatal("expected error for non-integer value, got nil")
	}
	if got := err.Error(); got != `TEST_INT_BAD="abc" is not a valid integer` {
		t.Fatalf("unexpected error message: %s", got)
	}
}

func TestEnvFloatValid(t *testing.T) {
	t.Setenv("TEST_FLOAT", "1.5")
	v, err := envFloat("TEST_FLOAT", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 1.5 {
		t.Fatalf("expected 1.5, got %f", v)
	}
}

func TestEnvFloatInvalid(t *testing.T) {
	t.Setenv("TEST_FLOAT_BAD", "abc")
	_, err := envFloat("TEST_FLOAT_BAD", 0)
	if err == nil {
		t.Fatal("expected error for non-numeric value, got nil")
	}
}

func TestEnvBoolValid(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	v, err := envBool("TEST_BOOL", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v {
		t.Fatal("expected true")
	}
}

func TestEnvBoolInvalid(t *testing.T) {
	t.Setenv("TEST_BOOL_BAD", "maybe")
	_, err := envBool("TEST_BOOL_BAD", false)
	if err == nil {
		t.Fatal("expected error for non-boolean value, got nil")
	}
}

func TestEnvDurationValid(t *testing.T) {
	t.Setenv("TEST_DUR", "5s")
	v, err := envDuration("TEST_DUR", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Seconds() != 5 {
		t.Fatalf("expected 5s, got %s", v)
	}
}

func TestEnvDurationInvalid(t *testing.T) {
	t.Setenv("TEST_DUR_BAD", "five-seconds")
	_, err := envDuration("TEST_DUR_BAD", 0)
	if err == nil {
		t.Fatal("expected error for invalid duration, got nil")
	}
}

func TestLoadFailsOnInvalidPort(t *testing.T) {
	t.Setenv("ORACLE_PORT", "abc")
	_, err := Load()
	if err == nil {
		t.Fatal("expected Load() to fail with invalid ORACLE_PORT")
	}
	if got := err.Error(); !contains(got, "ORACLE_PORT") || !contains(got, "abc") {
		t.Fatalf("error should mention ORACLE_PORT and value 'abc', got: %s", got)
	}
}

func TestLoadFailsOnMultipleInvalid(t *testing.T) {
	t.Setenv("ORACLE_PORT", "abc")
	t.Setenv("ORACLE_EMBEDDING_DIMENSIONS", "xyz")
	_, err := Load()
	if err == nil {
		t.Fatal("expected Load() to fail with multiple invalid vars")
	}
	got := err.Error()
	if !contains(got, "ORACLE_PORT") {
		t.Fatalf("error should mention ORACLE_PORT, got: %s", got)
	}
	if !contains(got, "ORACLE_EMBEDDING_DIMENSIONS") {
		t.Fatalf("error should mention ORACLE_EMBEDDING_DIMENSIONS, got: %s", got)
	}
}

func TestLoadSucceedsWithDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected Load() to succeed with defaults, got: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.EmbeddingProvider != "deterministic" {
		t.Fatalf("expected default embedding provider \"deterministic\", got %q", cfg.EmbeddingProvider)
	}
	if cfg.MinStake != 10.0 {
		t.Fatalf("expected default MinStake 10.0, got %f", cfg.MinStake)
	}
	if cfg.MinOracles != 3 {
		t.Fatalf("expected default MinOracles 3, got %d", cfg.MinOracles)
	}
	if cfg.AdminOracleReputationThreshold != 900 {
		t.Fatalf("expected default admin reputation threshold 900, got %d", cfg.AdminOracleReputationThreshold)
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && searchSubstring(s, substr)
}

func searchSubstring(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func TestLoad_SigningKeyPathValidation(t *testing.T) {
	bogusPath := "/tmp/oracle-test-nonexistent-key-file.pem"
	t.Setenv("ORACLE_SIGNING_PRIVATE_KEY", bogusPath)

	_, err := Load()
	if err == nil {
		t.Fatal("expected Load() to fail when ORACLE_SIGNING_PRIVATE_KEY points to a nonexistent file")
	}
	got := err.Error()
	if !contains(got, bogusPath) {
		t.Fatalf("error should mention the path %q, got: %s", bogusPath, got)
	}
	if !contains(got, "ORACLE_SIGNING_PRIVATE_KEY") {
		t.Fatalf("error should mention ORACLE_SIGNING_PRIVATE_KEY, got: %s", got)
	}
}

func TestLoad_NoKeysSucceedsEphemeral(t *testing.T) {
	_, err := Load()
	if err != nil {
		t.Fatalf("expected Load() to succeed with no key paths set (ephemeral mode), got: %v", err)
	}
}

func TestLoad_InvalidEmbeddingProviderRejected(t *testing.T) {
	t.Setenv("ORACLE_EMBEDDING_PROVIDER", "openai")
	_, err := Load()
	if err == nil {
		t.Fatal("expected Load() to reject an unrecognized embedding provider")
	}
}

func TestLoad_MaxOraclesBelowMinOraclesRejected(t *testing.T) {
	t.Setenv("ORACLE_MIN_ORACLES", "5")
	t.Setenv("ORACLE_MAX_ORACLES", "3")
	_, err := Load()
	if err == nil {
		t.Fatal("expected Load() to reject MaxOracles < MinOracles")
	}
}

func TestLoad_AllEnvVarsHonored(t *testing.T) {
	t.Setenv("ORACLE_PORT", "9090")
	t.Setenv("ORACLE_EMBEDDING_DIMENSIONS", "768")
	t.Setenv("OTEL_SERVICE_NAME", "oracle-test")
	t.Setenv("ORACLE_LOG_LEVEL", "debug")
	t.Setenv("ORACLE_CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("ORACLE_ADMIN_JWT_EXPIRATION", "12h")
	t.Setenv("ORACLE_MIN_STAKE", "25.5")
	t.Setenv("ORACLE_THRESHOLD_MANDATORY_MULTI", "2.0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected Load() to succeed, got: %v", err)
	}

	if cfg.Port != 9090 {
		t.Fatalf("expected Port 9090, got %d", cfg.Port)
	}
	if cfg.EmbeddingDimensions != 768 {
		t.Fatalf("expected EmbeddingDimensions 768, got %d", cfg.EmbeddingDimensions)
	}
	if cfg.ServiceName != "oracle-test" {
		t.Fatalf("expected ServiceName %q, got %q", "oracle-test", cfg.ServiceName)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected LogLevel %q, got %q", "debug", cfg.LogLevel)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected 2 CORS origins, got %d", len(cfg.CORSAllowedOrigins))
	}
	if cfg.AdminJWTExpiration != 12*time.Hour {
		t.Fatalf("expected AdminJWTExpiration 12h, got %s", cfg.AdminJWTExpiration)
	}
	if cfg.MinStake != 25.5 {
		t.Fatalf("expected MinStake 25.5, got %f", cfg.MinStake)
	}
	if cfg.ThresholdMandatoryMulti != 2.0 {
		t.Fatalf("expected ThresholdMandatoryMulti 2.0, got %f", cfg.ThresholdMandatoryMulti)
	}
}
