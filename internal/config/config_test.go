package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingBaseURL(t *testing.T) {
	t.Setenv("BASE_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("missing BASE_URL should return an error")
	}
	if !strings.Contains(err.Error(), "BASE_URL") {
		t.Errorf("error should name the missing variable: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BASE_URL", "http://localhost:8080")
	t.Setenv("SESSION_MAX_AGE", "")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("GEMINI_TIMEOUT", "")
	t.Setenv("RATE_LIMIT_GENERAL", "")
	t.Setenv("RATE_LIMIT_AI", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("CORS_ALLOWED_ORIGIN", "")
	t.Setenv("SEED_DEMO_DATA", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SessionMaxAge != 86400 {
		t.Errorf("SessionMaxAge = %d, want 86400", cfg.SessionMaxAge)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.GeminiTimeout != 30*time.Second {
		t.Errorf("GeminiTimeout = %v", cfg.GeminiTimeout)
	}
	if cfg.RateLimitGeneral != 120 || cfg.RateLimitAI != 10 {
		t.Errorf("rate limits = (%d, %d), want (120, 10)", cfg.RateLimitGeneral, cfg.RateLimitAI)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.CORSAllowedOrigin != "http://localhost:3000" {
		t.Errorf("CORSAllowedOrigin = %q", cfg.CORSAllowedOrigin)
	}
	if !cfg.SeedDemoData {
		t.Error("SeedDemoData should default to true")
	}
}

func TestLoad_CookieSecureFollowsBaseURL(t *testing.T) {
	t.Setenv("BASE_URL", "https://classpulse.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.CookieSecure {
		t.Error("https BASE_URL should enable CookieSecure")
	}

	t.Setenv("BASE_URL", "http://localhost:8080")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CookieSecure {
		t.Error("http BASE_URL should not enable CookieSecure")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BASE_URL", "http://localhost:8080")
	t.Setenv("SESSION_MAX_AGE", "3600")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_TIMEOUT", "10s")
	t.Setenv("RATE_LIMIT_AI", "5")
	t.Setenv("SEED_DEMO_DATA", "false")
	t.Setenv("ADMIN_EMAIL", "ops@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SessionMaxAge != 3600 {
		t.Errorf("SessionMaxAge = %d, want 3600", cfg.SessionMaxAge)
	}
	if cfg.GeminiAPIKey != "test-key" {
		t.Errorf("GeminiAPIKey = %q", cfg.GeminiAPIKey)
	}
	if cfg.GeminiTimeout != 10*time.Second {
		t.Errorf("GeminiTimeout = %v", cfg.GeminiTimeout)
	}
	if cfg.RateLimitAI != 5 {
		t.Errorf("RateLimitAI = %d, want 5", cfg.RateLimitAI)
	}
	if cfg.SeedDemoData {
		t.Error("SeedDemoData should be false")
	}
	if cfg.AdminEmail != "ops@example.com" {
		t.Errorf("AdminEmail = %q", cfg.AdminEmail)
	}
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("BASE_URL", "http://localhost:8080")
	t.Setenv("SESSION_MAX_AGE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SessionMaxAge != 86400 {
		t.Errorf("SessionMaxAge = %d, want default 86400", cfg.SessionMaxAge)
	}
}
