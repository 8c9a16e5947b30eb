package image

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"shortvid/internal/providers/genai"
)

type scriptedClient struct {
	calls   int
	results []func() (*genai.ImageAsset, error)
	model   string
	noCreds bool
}

func (s *scriptedClient) GenerateImage(ctx context.Context, req genai.ImageRequest) (*genai.ImageAsset, error) {
	idx := s.calls
	s.calls++
	if idx >= len(s.results) {
		return nil, errors.New("no scripted result")
	}
	return s.results[idx]()
}

func (s *scriptedClient) HasCredentials() bool { return !s.noCreds }
func (s *scriptedClient) Model() string        { return s.model }

func recordedSleeper(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestGenerateRetriesTransientThenSucceeds(t *testing.T) {
	asset := &genai.ImageAsset{Data: []byte("png-bytes"), MIME: "image/png", Width: 1920, Height: 1080}
	client := &scriptedClient{
		model: "imagen-3.0-generate-001",
		results: []func() (*genai.ImageAsset, error){
			func() (*genai.ImageAsset, error) {
				return nil, &genai.Error{Kind: genai.KindRateLimited, Message: "quota exceeded"}
			},
			func() (*genai.ImageAsset, error) {
				return nil, errors.New("ETIMEDOUT while dialing")
			},
			func() (*genai.ImageAsset, error) { return asset, nil },
		},
	}

	gen := NewRetryingGenerator(GeneratorOptions{
		Client:     client,
		MaxRetries: 3,
		BaseDelay:  100 * time.Millisecond,
	})
	var delays []time.Duration
	gen.sleep = recordedSleeper(&delays)

	result, err := gen.Generate(context.Background(), Request{
		VideoID: "vid-1",
		Prompt:  "a blue mountain at sunset",
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if result.FallbackUsed {
		t.Fatal("expected remote result, got fallback")
	}
	if client.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", client.calls)
	}
	if len(delays) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d", len(delays))
	}
	if delays[0] != 100*time.Millisecond || delays[1] != 200*time.Millisecond {
		t.Fatalf("unexpected backoff schedule: %v", delays)
	}
	if result.Width != 1920 || result.Height != 1080 {
		t.Fatalf("unexpected dimensions: %dx%d", result.Width, result.Height)
	}
	if !strings.HasPrefix(result.DataURI, "data:image/png;base64,") {
		t.Fatalf("unexpected data URI prefix: %.40s", result.DataURI)
	}
}

func TestGenerateTerminalErrorFallsBackImmediately(t *testing.T) {
	client := &scriptedClient{
		results: []func() (*genai.ImageAsset, error){
			func() (*genai.ImageAsset, error) {
				return nil, &genai.Error{Kind: genai.KindSafety, Status: 400, Message: "blocked by safety filter"}
			},
		},
	}

	gen := NewRetryingGenerator(GeneratorOptions{
		Client:     client,
		MaxRetries: 3,
		BaseDelay:  100 * time.Millisecond,
	})
	var delays []time.Duration
	gen.sleep = recordedSleeper(&delays)

	result, err := gen.Generate(context.Background(), Request{
		VideoID: "vid-2",
		Prompt:  "a person in a city",
		Model:   "flux-realistic",
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !result.FallbackUsed {
		t.Fatal("expected placeholder fallback")
	}
	if client.calls != 1 {
		t.Fatalf("expected 1 attempt before fallback, got %d", client.calls)
	}
	if len(delays) != 0 {
		t.Fatalf("expected no sleeps on terminal error, got %v", delays)
	}
	if !strings.HasPrefix(result.DataURI, "data:image/svg+xml;base64,") {
		t.Fatalf("fallback should be an SVG data URI, got %.40s", result.DataURI)
	}
}

func TestGenerateWithoutCredentialsUsesFallback(t *testing.T) {
	client := &scriptedClient{noCreds: true}
	gen := NewRetryingGenerator(GeneratorOptions{Client: client})

	result, err := gen.Generate(context.Background(), Request{
		VideoID: "vid-3",
		Prompt:  "디테일한 선명한 풍경",
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !result.FallbackUsed {
		t.Fatal("expected fallback without credentials")
	}
	if client.calls != 0 {
		t.Fatalf("remote client should not be called, got %d calls", client.calls)
	}
	if result.Width != 1920 || result.Height != 1080 {
		t.Fatalf("scene placeholder should be 1920x1080, got %dx%d", result.Width, result.Height)
	}
}

func TestGenerateReportsProgressMilestones(t *testing.T) {
	client := &scriptedClient{noCreds: true}
	var stages []string
	var percents []int
	gen := NewRetryingGenerator(GeneratorOptions{
		Client: client,
		Progress: func(stage string, percent int) {
			stages = append(stages, stage)
			percents = append(percents, percent)
		},
	})

	if _, err := gen.Generate(context.Background(), Request{VideoID: "vid-4", Prompt: "ocean"}); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	wantStages := []string{"generating description", "rendering visual elements", "quality check", "complete"}
	wantPercents := []int{20, 60, 90, 100}
	if len(stages) != len(wantStages) {
		t.Fatalf("expected %d milestones, got %v", len(wantStages), stages)
	}
	for i := range wantStages {
		if stages[i] != wantStages[i] || percents[i] != wantPercents[i] {
			t.Fatalf("milestone %d = (%q, %d), want (%q, %d)", i, stages[i], percents[i], wantStages[i], wantPercents[i])
		}
	}
}

// blockingClient never answers; it only returns once its context is cut off.
type blockingClient struct {
	calls int
}

func (b *blockingClient) GenerateImage(ctx context.Context, _ genai.ImageRequest) (*genai.ImageAsset, error) {
	b.calls++
	<-ctx.Done()
	return nil, ctx.Err()
}

func (b *blockingClient) HasCredentials() bool { return true }
func (b *blockingClient) Model() string        { return "imagen-3.0-generate-001" }

func TestGenerateBoundsHangingAttempts(t *testing.T) {
	client := &blockingClient{}
	gen := NewRetryingGenerator(GeneratorOptions{
		Client:         client,
		MaxRetries:     3,
		BaseDelay:      time.Millisecond,
		AttemptTimeout: 20 * time.Millisecond,
	})
	var delays []time.Duration
	gen.sleep = recordedSleeper(&delays)

	start := time.Now()
	result, err := gen.Generate(context.Background(), Request{VideoID: "vid-hang", Prompt: "ocean"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !result.FallbackUsed {
		t.Fatal("expected fallback after timed-out attempts")
	}
	if client.calls != 3 {
		t.Fatalf("expected 3 bounded attempts, got %d", client.calls)
	}
	// Timed-out attempts classify as transient, so each gap gets a backoff.
	if len(delays) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %v", delays)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("attempts not bounded by the per-attempt timeout: %v", elapsed)
	}
}

func TestGenerateHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := NewRetryingGenerator(GeneratorOptions{Client: &scriptedClient{noCreds: true}})
	if _, err := gen.Generate(ctx, Request{VideoID: "vid-5", Prompt: "tree"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type describingClient struct {
	scriptedClient
	described string
}

func (d *describingClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	d.described = prompt
	return "a wide cinematic view of snowy peaks under warm light", nil
}

func TestGenerateEnrichesDescriptionForPremium(t *testing.T) {
	asset := &genai.ImageAsset{Data: []byte("png"), MIME: "image/png", Width: 1024, Height: 1024}
	client := &describingClient{scriptedClient: scriptedClient{
		results: []func() (*genai.ImageAsset, error){
			func() (*genai.ImageAsset, error) { return asset, nil },
		},
	}}
	gen := NewRetryingGenerator(GeneratorOptions{Client: client})

	if _, err := gen.Generate(context.Background(), Request{
		VideoID: "vid-6",
		Prompt:  "snowy mountains",
		Quality: "premium",
	}); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if client.described == "" {
		t.Fatal("text model not consulted for premium quality")
	}
	if !strings.Contains(client.described, `"snowy mountains"`) {
		t.Fatalf("description prompt missing user prompt: %.80q", client.described)
	}
}

func TestGenerateSkipsDescriptionForStandard(t *testing.T) {
	asset := &genai.ImageAsset{Data: []byte("png"), MIME: "image/png", Width: 1024, Height: 1024}
	client := &describingClient{scriptedClient: scriptedClient{
		results: []func() (*genai.ImageAsset, error){
			func() (*genai.ImageAsset, error) { return asset, nil },
		},
	}}
	gen := NewRetryingGenerator(GeneratorOptions{Client: client})

	if _, err := gen.Generate(context.Background(), Request{
		VideoID: "vid-7",
		Prompt:  "snowy mountains",
		Quality: "standard",
	}); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if client.described != "" {
		t.Fatal("text model consulted for standard quality")
	}
}

func TestFallbackContainsAnalyzedElements(t *testing.T) {
	gen := NewRetryingGenerator(GeneratorOptions{Client: &scriptedClient{noCreds: true}})
	result, err := gen.Generate(context.Background(), Request{
		VideoID: "p1",
		Prompt:  "a blue mountain at sunset",
		Model:   "flux-realistic",
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !result.FallbackUsed {
		t.Fatal("expected fallback")
	}
	const prefix = "data:image/svg+xml;base64,"
	doc, decErr := base64.StdEncoding.DecodeString(strings.TrimPrefix(result.DataURI, prefix))
	if decErr != nil {
		t.Fatalf("decode fallback: %v", decErr)
	}
	svg := string(doc)
	// Blue color-table gradient stops and the mountain icon must survive the
	// full pipeline, not just the renderer in isolation.
	if !strings.Contains(svg, "#dbeafe") || !strings.Contains(svg, "#3b82f6") {
		t.Fatal("blue gradient stops missing from fallback")
	}
	if !strings.Contains(svg, `points="0,50 40,0 80,50"`) {
		t.Fatal("mountain icon missing from fallback")
	}
}

func TestRetryableClassification(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&genai.Error{Kind: genai.KindRateLimited}, true},
		{&genai.Error{Kind: genai.KindTimeout}, true},
		{&genai.Error{Kind: genai.KindUnavailable}, true},
		{&genai.Error{Kind: genai.KindNetwork}, true},
		{&genai.Error{Kind: genai.KindAuth}, false},
		{&genai.Error{Kind: genai.KindSafety}, false},
		{&genai.Error{Kind: genai.KindInvalid}, false},
		{context.DeadlineExceeded, true},
		{errors.New("RateLimitError: too many requests"), true},
		{errors.New("ECONNRESET"), true},
		{errors.New("upstream timeout waiting for response"), true},
		{errors.New("invalid prompt payload"), false},
	}
	for _, tc := range cases {
		if got := retryable(tc.err); got != tc.want {
			t.Errorf("retryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
