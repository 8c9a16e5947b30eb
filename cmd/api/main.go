package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"shortvid/internal/http/handlers"
	httpapi "shortvid/internal/http/httpapi"
	"shortvid/internal/infra"
	"shortvid/internal/infra/geoip"
	"shortvid/internal/middleware"
	"shortvid/internal/providers/genai"
	"shortvid/internal/providers/image"
	"shortvid/internal/providers/tts"
	"shortvid/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	// GeoIP is optional; without a database the locale middleware relies on
	// headers alone.
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip unavailable, locale falls back to headers")
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		lookup = resolver.CountryCode
	}

	client := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		ImageModel: cfg.ImagenModel,
		TextModel:  cfg.GeminiModel,
		Logger:     &logger,
	})
	if !client.HasCredentials() {
		logger.Warn().Msg("GEMINI_API_KEY not set, serving placeholder images only")
	}

	generator := image.NewRetryingGenerator(image.GeneratorOptions{
		Client:     client,
		Logger:     &logger,
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  cfg.RetryBaseDelay,
	})

	speech := tts.NewClient(tts.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.TTSBaseURL,
		Voice:   cfg.TTSVoice,
	})

	images := store.NewMemoryStore()
	app := handlers.NewApp(cfg, &logger, generator, images, speech)

	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		RateLimitPerMin: cfg.RateLimitPerMin,
		CountryLookup:   lookup,
		AllowedOrigins:  cfg.AllowedOrigins,
		DefaultLocale:   strings.SplitN(cfg.TTSVoice, "-", 2)[0],
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
