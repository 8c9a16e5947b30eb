package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	"shortvid/internal/middleware"
	"shortvid/internal/providers/tts"
)

const maxNarrationLength = 5000

type audioSegment struct {
	Narrative string `json:"narrative"`
}

type audioRequest struct {
	Segments []audioSegment `json:"segments"`
	Voice    string         `json:"voice"`
	Language string         `json:"language"`
}

type audioResponse struct {
	AudioURL   string `json:"audioUrl"`
	Characters int    `json:"characters"`
	Voice      string `json:"voice"`
}

// GenerateAudio handles POST /v1/audio. It joins segment narratives into a
// single narration and synthesizes it as one MP3 clip.
func (a *App) GenerateAudio(w http.ResponseWriter, r *http.Request) {
	if a.Speech == nil {
		a.error(w, http.StatusServiceUnavailable, "speech synthesis not configured", "")
		return
	}

	var req audioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	parts := make([]string, 0, len(req.Segments))
	for _, seg := range req.Segments {
		if text := strings.TrimSpace(seg.Narrative); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		a.error(w, http.StatusBadRequest, "no narration text", "segments must contain at least one non-empty narrative")
		return
	}
	narration := strings.Join(parts, " ")
	if utf8.RuneCountInString(narration) > maxNarrationLength {
		a.error(w, http.StatusBadRequest, "narration too long",
			"combined narratives must be at most 5000 characters")
		return
	}

	voice := strings.TrimSpace(req.Voice)
	language := strings.TrimSpace(req.Language)
	if voice == "" {
		voice = a.Speech.DefaultVoice()
		// English callers get an English narrator unless a voice was named.
		if middleware.LocaleFromContext(r.Context()) == "en" {
			voice = "en-US-Neural2-C"
		}
	}

	audio, err := a.Speech.Synthesize(r.Context(), tts.Request{
		Text:         narration,
		Voice:        voice,
		LanguageCode: language,
	})
	if err != nil {
		a.providerError(w, err)
		return
	}

	a.json(w, http.StatusOK, audioResponse{
		AudioURL:   "data:" + audio.MIME + ";base64," + base64.StdEncoding.EncodeToString(audio.Data),
		Characters: utf8.RuneCountInString(narration),
		Voice:      voice,
	})
}
