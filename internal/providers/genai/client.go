package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"shortvid/internal/infra"
)

// Options controls how the generative-AI client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	ImageModel string
	TextModel  string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client is a thin facade over the Google generative-AI REST surface: the
// Imagen endpoint for images and generateContent for text. It performs no
// retries and no fallbacks itself; it reports failures as classified *Error
// values and leaves recovery policy to callers.
type Client struct {
	apiKey     string
	baseURL    string
	imageModel string
	textModel  string
	httpClient *http.Client
	logger     *infra.Logger
}

// ImageRequest describes one remote image generation call.
type ImageRequest struct {
	Prompt      string
	AspectRatio string
	Quality     string
	Count       int
}

// ImageAsset is the normalized provider response.
type ImageAsset struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// NewClient constructs a client with sane defaults. A nil HTTP client gets a
// reusable one with a conservative timeout.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	imageModel := opts.ImageModel
	if imageModel == "" {
		imageModel = "imagen-3.0-generate-001"
	}
	textModel := opts.TextModel
	if textModel == "" {
		textModel = "gemini-2.0-flash-exp"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		imageModel: imageModel,
		textModel:  textModel,
		httpClient: client,
		logger:     logger,
	}
}

// HasCredentials reports whether an API key is configured.
func (c *Client) HasCredentials() bool {
	return c != nil && c.apiKey != ""
}

// Model returns the configured image model identifier.
func (c *Client) Model() string {
	return c.imageModel
}

type imagenRequest struct {
	Prompt            string `json:"prompt"`
	NumberOfImages    int    `json:"numberOfImages"`
	AspectRatio       string `json:"aspectRatio"`
	SafetyFilterLevel string `json:"safetyFilterLevel"`
	PersonGeneration  string `json:"personGeneration"`
}

type imagenResponse struct {
	GeneratedImages []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		Width              int    `json:"width"`
		Height             int    `json:"height"`
	} `json:"generatedImages"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerateImage performs a single remote Imagen call.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (*ImageAsset, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}

	count := req.Count
	if count <= 0 {
		count = 1
	}
	aspect := req.AspectRatio
	if aspect == "" {
		aspect = "16:9"
	}
	payload := imagenRequest{
		Prompt:            req.Prompt,
		NumberOfImages:    count,
		AspectRatio:       aspect,
		SafetyFilterLevel: "block_some",
		PersonGeneration:  "allow_adult",
	}

	var response imagenResponse
	path := fmt.Sprintf("/models/%s:generate", url.PathEscape(c.imageModel))
	if err := c.invoke(ctx, path, payload, &response); err != nil {
		return nil, err
	}
	if len(response.GeneratedImages) == 0 {
		return nil, &Error{Kind: KindInternal, Message: "imagen returned no images"}
	}

	first := response.GeneratedImages[0]
	data, err := base64.StdEncoding.DecodeString(first.BytesBase64Encoded)
	if err != nil {
		return nil, &Error{Kind: KindInternal, Message: "decode image payload: " + err.Error()}
	}
	width, height := first.Width, first.Height
	if width == 0 || height == 0 {
		width, height = 1024, 1024
	}

	c.logger.Debug().
		Str("model", c.imageModel).
		Int("width", width).
		Int("height", height).
		Msg("genai: remote image generated")

	return &ImageAsset{Data: data, MIME: "image/png", Width: width, Height: height}, nil
}

type textPart struct {
	Text string `json:"text"`
}

type textContent struct {
	Role  string     `json:"role"`
	Parts []textPart `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	CandidateCount  int     `json:"candidateCount"`
}

type generateContentRequest struct {
	Contents         []textContent    `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []textPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateText expands a prompt via the text model and returns the raw text.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingAPIKey
	}

	payload := generateContentRequest{
		Contents: []textContent{{Role: "user", Parts: []textPart{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.8,
			TopK:            32,
			TopP:            0.92,
			MaxOutputTokens: 4096,
			CandidateCount:  1,
		},
	}

	var response generateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.textModel))
	if err := c.invoke(ctx, path, payload, &response); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			b.WriteString(part.Text)
		}
	}
	if b.Len() == 0 {
		return "", &Error{Kind: KindInternal, Message: "text model returned no content"}
	}
	return b.String(), nil
}

func (c *Client) invoke(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &Error{Kind: KindInternal, Message: "marshal request: " + err.Error()}
	}
	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &Error{Kind: KindInternal, Message: "create request: " + err.Error()}
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		message := fmt.Sprintf("status %d", resp.StatusCode)
		var apiErr apiErrorResponse
		data, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			message = apiErr.Error.Message
		} else if len(data) > 0 {
			message = strings.TrimSpace(string(data))
		}
		return ClassifyHTTP(resp.StatusCode, message)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindInternal, Message: "decode response: " + err.Error()}
	}
	return nil
}
