package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shortvid/internal/providers/genai"
)

func TestSynthesizeSendsExpectedPayload(t *testing.T) {
	var captured synthesizeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/text:synthesize" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(synthesizeResponse{
			AudioContent: base64.StdEncoding.EncodeToString([]byte("mp3-bytes")),
		})
	}))
	defer server.Close()

	client := NewClient(Options{APIKey: "test-key", BaseURL: server.URL})
	audio, err := client.Synthesize(context.Background(), Request{Text: "안녕하세요"})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}

	if captured.Input.Text != "안녕하세요" {
		t.Errorf("input text = %q", captured.Input.Text)
	}
	if captured.Voice.Name != "ko-KR-Neural2-A" || captured.Voice.LanguageCode != "ko-KR" {
		t.Errorf("voice = %+v", captured.Voice)
	}
	if captured.Voice.SSMLGender != "NEUTRAL" {
		t.Errorf("ssml gender = %q", captured.Voice.SSMLGender)
	}
	if captured.AudioConfig.AudioEncoding != "MP3" {
		t.Errorf("encoding = %q", captured.AudioConfig.AudioEncoding)
	}
	if captured.AudioConfig.SpeakingRate != 1.0 {
		t.Errorf("speaking rate = %v", captured.AudioConfig.SpeakingRate)
	}
	if captured.AudioConfig.SampleRateHertz != 24000 {
		t.Errorf("sample rate = %d", captured.AudioConfig.SampleRateHertz)
	}

	if string(audio.Data) != "mp3-bytes" {
		t.Errorf("audio data = %q", audio.Data)
	}
	if audio.MIME != "audio/mpeg" {
		t.Errorf("mime = %q", audio.MIME)
	}
}

func TestSynthesizeClassifiesQuotaErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(Options{APIKey: "test-key", BaseURL: server.URL})
	_, err := client.Synthesize(context.Background(), Request{Text: "hello"})
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := genai.KindOf(err); kind != genai.KindRateLimited {
		t.Fatalf("kind = %q, want %q", kind, genai.KindRateLimited)
	}
}

func TestSynthesizeWithoutCredentials(t *testing.T) {
	client := NewClient(Options{})
	_, err := client.Synthesize(context.Background(), Request{Text: "hello"})
	if genai.KindOf(err) != genai.KindAuth {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestLanguageForVoice(t *testing.T) {
	cases := map[string]string{
		"ko-KR-Neural2-A": "ko-KR",
		"en-US-Studio-O":  "en-US",
		"broken":          "ko-KR",
	}
	for voice, want := range cases {
		if got := languageForVoice(voice); got != want {
			t.Errorf("languageForVoice(%q) = %q, want %q", voice, got, want)
		}
	}
}
