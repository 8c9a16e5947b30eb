package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	GeoIPDBPath      string
	GeminiAPIKey     string
	GeminiModel      string
	ImagenModel      string
	GeminiBaseURL    string
	TTSBaseURL       string
	TTSVoice         string
	MaxRetries       int
	RetryBaseDelay   time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	AllowedOrigins   []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// A missing GEMINI_API_KEY is not an error: the service degrades to locally
// rendered placeholders instead of refusing to start.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash-exp"),
		ImagenModel:      getEnv("IMAGEN_MODEL", "imagen-3.0-generate-001"),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		TTSBaseURL:       getEnv("TTS_BASE_URL", "https://texttospeech.googleapis.com/v1"),
		TTSVoice:         getEnv("TTS_VOICE", "ko-KR-Neural2-A"),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),
		RetryBaseDelay:   time.Millisecond * time.Duration(getEnvInt("RETRY_BASE_DELAY_MS", 1000)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		AllowedOrigins:   getEnvList("CORS_ALLOWED_ORIGINS"),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
