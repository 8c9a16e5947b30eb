package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"shortvid/internal/infra"
	"shortvid/internal/providers/genai"
	"shortvid/internal/providers/image"
	"shortvid/internal/providers/tts"
	"shortvid/internal/store"
)

// SpeechSynthesizer is the narration surface the audio handler drives.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, req tts.Request) (*tts.Audio, error)
	DefaultVoice() string
}

// App bundles the dependencies request handlers need.
type App struct {
	Config *infra.Config
	Logger *infra.Logger
	Images image.Generator
	Store  store.Store
	Speech SpeechSynthesizer
}

func NewApp(cfg *infra.Config, logger *infra.Logger, images image.Generator, st store.Store, speech SpeechSynthesizer) *App {
	return &App{Config: cfg, Logger: logger, Images: images, Store: st, Speech: speech}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (a *App) error(w http.ResponseWriter, code int, message, details string) {
	a.json(w, code, errorBody{Error: message, Details: details})
}

// providerError maps a classified provider failure onto the public status
// taxonomy: quota 429, credentials 401, everything else 500.
func (a *App) providerError(w http.ResponseWriter, err error) {
	switch genai.KindOf(err) {
	case genai.KindRateLimited:
		a.error(w, http.StatusTooManyRequests, "provider quota exceeded", err.Error())
	case genai.KindAuth:
		a.error(w, http.StatusUnauthorized, "provider authentication failed", err.Error())
	default:
		a.error(w, http.StatusInternalServerError, "generation failed", err.Error())
	}
}
