package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"shortvid/internal/middleware"
	"shortvid/internal/providers/genai"
	"shortvid/internal/providers/tts"
)

func TestGenerateAudioJoinsNarratives(t *testing.T) {
	speech := &stubSpeech{audio: &tts.Audio{Data: []byte("mp3"), MIME: "audio/mpeg", SampleRate: 24000}}
	app := newTestApp(&stubGenerator{}, speech)

	body := `{"segments":[{"narrative":"첫 번째 장면."},{"narrative":" 두 번째 장면. "}]}`
	rec := postJSON(t, func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), middleware.LocaleKey, "ko")
		app.GenerateAudio(w, r.WithContext(ctx))
	}, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	if speech.lastReq.Text != "첫 번째 장면. 두 번째 장면." {
		t.Fatalf("joined narration = %q", speech.lastReq.Text)
	}
	var resp audioResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(resp.AudioURL, "data:audio/mpeg;base64,") {
		t.Fatalf("audio url = %.40q", resp.AudioURL)
	}
	if resp.Voice != "ko-KR-Neural2-A" {
		t.Fatalf("voice = %q", resp.Voice)
	}
}

func TestGenerateAudioRejectsLongNarration(t *testing.T) {
	speech := &stubSpeech{audio: &tts.Audio{Data: []byte("mp3"), MIME: "audio/mpeg"}}
	app := newTestApp(&stubGenerator{}, speech)

	body := fmt.Sprintf(`{"segments":[{"narrative":%q}]}`, strings.Repeat("가", 5001))
	rec := postJSON(t, app.GenerateAudio, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if speech.lastReq.Text != "" {
		t.Fatal("synthesizer called despite validation failure")
	}
}

func TestGenerateAudioRejectsEmptySegments(t *testing.T) {
	app := newTestApp(&stubGenerator{}, &stubSpeech{})
	rec := postJSON(t, app.GenerateAudio, `{"segments":[{"narrative":"  "}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateAudioMapsProviderErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"quota", &genai.Error{Kind: genai.KindRateLimited, Message: "quota exceeded"}, http.StatusTooManyRequests},
		{"auth", &genai.Error{Kind: genai.KindAuth, Message: "bad key"}, http.StatusUnauthorized},
		{"other", &genai.Error{Kind: genai.KindInternal, Message: "boom"}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(&stubGenerator{}, &stubSpeech{err: tc.err})
			rec := postJSON(t, app.GenerateAudio, `{"segments":[{"narrative":"hello"}]}`)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestGenerateAudioEnglishLocaleVoiceDefault(t *testing.T) {
	speech := &stubSpeech{audio: &tts.Audio{Data: []byte("mp3"), MIME: "audio/mpeg"}}
	app := newTestApp(&stubGenerator{}, speech)

	rec := postJSON(t, func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), middleware.LocaleKey, "en")
		app.GenerateAudio(w, r.WithContext(ctx))
	}, `{"segments":[{"narrative":"hello there"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if speech.lastReq.Voice != "en-US-Neural2-C" {
		t.Fatalf("voice = %q, want english default", speech.lastReq.Voice)
	}
}
