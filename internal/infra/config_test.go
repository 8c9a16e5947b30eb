package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("MAX_RETRIES", "")
	t.Setenv("RETRY_BASE_DELAY_MS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.ImagenModel != "imagen-3.0-generate-001" {
		t.Fatalf("ImagenModel = %q", cfg.ImagenModel)
	}
	if cfg.MaxRetries != 3 {
		t.Fatalf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.RetryBaseDelay != time.Second {
		t.Fatalf("RetryBaseDelay = %v, want 1s", cfg.RetryBaseDelay)
	}
	if cfg.GeminiAPIKey != "" {
		t.Fatalf("GeminiAPIKey should default empty, got %q", cfg.GeminiAPIKey)
	}
}

func TestLoadConfigReadsOverrides(t *testing.T) {
	t.Setenv("PORT", "1919")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("IMAGEN_MODEL", "imagen-3.0-fast-generate-001")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("RETRY_BASE_DELAY_MS", "250")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "120")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "1919" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.GeminiAPIKey != "test-key" {
		t.Fatalf("GeminiAPIKey = %q", cfg.GeminiAPIKey)
	}
	if cfg.ImagenModel != "imagen-3.0-fast-generate-001" {
		t.Fatalf("ImagenModel = %q", cfg.ImagenModel)
	}
	if cfg.MaxRetries != 5 {
		t.Fatalf("MaxRetries = %d", cfg.MaxRetries)
	}
	if cfg.RetryBaseDelay != 250*time.Millisecond {
		t.Fatalf("RetryBaseDelay = %v", cfg.RetryBaseDelay)
	}
	if cfg.RateLimitPerMin != 120 {
		t.Fatalf("RateLimitPerMin = %d", cfg.RateLimitPerMin)
	}
}

func TestLoadConfigParsesOriginList(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://studio.example.com ,")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := []string{"https://app.example.com", "https://studio.example.com"}
	if len(cfg.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins = %#v", cfg.AllowedOrigins)
	}
	for i, origin := range want {
		if cfg.AllowedOrigins[i] != origin {
			t.Fatalf("AllowedOrigins[%d] = %q, want %q", i, cfg.AllowedOrigins[i], origin)
		}
	}
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("MAX_RETRIES", "not-a-number")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.MaxRetries != 3 {
		t.Fatalf("MaxRetries = %d, want fallback 3", cfg.MaxRetries)
	}
}
