package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shortvid/internal/providers/genai"
)

// Options configures the speech synthesis client.
type Options struct {
	APIKey     string
	BaseURL    string
	Voice      string
	HTTPClient *http.Client
}

// Client calls the Google Cloud text-to-speech REST endpoint and returns
// MP3 audio. Errors are classified the same way image provider errors are,
// so HTTP handlers can share one status mapping.
type Client struct {
	apiKey     string
	baseURL    string
	voice      string
	httpClient *http.Client
}

// Request is one synthesis job.
type Request struct {
	Text         string
	Voice        string
	LanguageCode string
	SpeakingRate float64
}

// Audio is the synthesized result.
type Audio struct {
	Data       []byte
	MIME       string
	SampleRate int
}

func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://texttospeech.googleapis.com/v1"
	}
	voice := opts.Voice
	if voice == "" {
		voice = "ko-KR-Neural2-A"
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		voice:      voice,
		httpClient: client,
	}
}

// HasCredentials reports whether an API key is configured.
func (c *Client) HasCredentials() bool {
	return c != nil && c.apiKey != ""
}

// DefaultVoice returns the voice used when a request does not name one.
func (c *Client) DefaultVoice() string {
	return c.voice
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
		SSMLGender   string `json:"ssmlGender"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding   string  `json:"audioEncoding"`
		SpeakingRate    float64 `json:"speakingRate"`
		SampleRateHertz int     `json:"sampleRateHertz"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

const synthSampleRate = 24000

// Synthesize converts text to MP3 audio.
func (c *Client) Synthesize(ctx context.Context, req Request) (*Audio, error) {
	if !c.HasCredentials() {
		return nil, genai.ErrMissingAPIKey
	}
	voice := req.Voice
	if voice == "" {
		voice = c.voice
	}
	language := req.LanguageCode
	if language == "" {
		language = languageForVoice(voice)
	}
	rate := req.SpeakingRate
	if rate <= 0 {
		rate = 1.0
	}

	var payload synthesizeRequest
	payload.Input.Text = req.Text
	payload.Voice.LanguageCode = language
	payload.Voice.Name = voice
	payload.Voice.SSMLGender = "NEUTRAL"
	payload.AudioConfig.AudioEncoding = "MP3"
	payload.AudioConfig.SpeakingRate = rate
	payload.AudioConfig.SampleRateHertz = synthSampleRate

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &genai.Error{Kind: genai.KindInternal, Message: "marshal request: " + err.Error()}
	}
	endpoint := c.baseURL + "/text:synthesize"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &genai.Error{Kind: genai.KindInternal, Message: "create request: " + err.Error()}
	}
	q := httpReq.URL.Query()
	q.Set("key", c.apiKey)
	httpReq.URL.RawQuery = q.Encode()
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, genai.Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		message := strings.TrimSpace(string(data))
		if message == "" {
			message = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, genai.ClassifyHTTP(resp.StatusCode, message)
	}

	var response synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, &genai.Error{Kind: genai.KindInternal, Message: "decode response: " + err.Error()}
	}
	if response.AudioContent == "" {
		return nil, &genai.Error{Kind: genai.KindInternal, Message: "synthesis returned no audio"}
	}
	data, err := base64.StdEncoding.DecodeString(response.AudioContent)
	if err != nil {
		return nil, &genai.Error{Kind: genai.KindInternal, Message: "decode audio payload: " + err.Error()}
	}
	return &Audio{Data: data, MIME: "audio/mpeg", SampleRate: synthSampleRate}, nil
}

// languageForVoice derives the locale prefix from a voice name like
// "ko-KR-Neural2-A".
func languageForVoice(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) >= 2 {
		return parts[0] + "-" + parts[1]
	}
	return "ko-KR"
}
