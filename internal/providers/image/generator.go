package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"shortvid/internal/imagegen"
	"shortvid/internal/infra"
	"shortvid/internal/providers/genai"
)

// Request carries one image generation job through the pipeline.
type Request struct {
	VideoID          string
	Prompt           string
	SceneDescription string
	Model            string
	AspectRatio      string
	Quality          string
}

// Result is the outcome of a generation job. DataURI always holds a
// renderable asset: either the remote image or a locally rendered
// placeholder when FallbackUsed is true.
type Result struct {
	DataURI      string
	Width        int
	Height       int
	FallbackUsed bool
}

// Generator produces an image asset for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// RemoteClient is the provider surface the retrying generator drives.
type RemoteClient interface {
	GenerateImage(ctx context.Context, req genai.ImageRequest) (*genai.ImageAsset, error)
	HasCredentials() bool
	Model() string
}

// ProgressFunc observes pipeline milestones. Percent is monotonic per job.
type ProgressFunc func(stage string, percent int)

// RetryingGenerator wraps a remote client with bounded exponential backoff
// and a deterministic placeholder fallback. Retries happen only for
// transient failures; terminal failures fall back immediately.
type RetryingGenerator struct {
	client         RemoteClient
	logger         *infra.Logger
	maxRetries     int
	baseDelay      time.Duration
	attemptTimeout time.Duration
	progress       ProgressFunc
	sleep          func(ctx context.Context, d time.Duration) error
}

// GeneratorOptions configures a RetryingGenerator. Zero values pick the
// defaults below.
type GeneratorOptions struct {
	Client         RemoteClient
	Logger         *infra.Logger
	MaxRetries     int
	BaseDelay      time.Duration
	AttemptTimeout time.Duration
	Progress       ProgressFunc
}

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = time.Second
)

// NewRetryingGenerator builds a generator around the given remote client.
func NewRetryingGenerator(opts GeneratorOptions) *RetryingGenerator {
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	baseDelay := opts.BaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	progress := opts.Progress
	if progress == nil {
		progress = func(string, int) {}
	}
	return &RetryingGenerator{
		client:         opts.Client,
		logger:         logger,
		maxRetries:     maxRetries,
		baseDelay:      baseDelay,
		attemptTimeout: opts.AttemptTimeout,
		progress:       progress,
		sleep:          sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// textGenerator is the optional description surface; clients that expose it
// get prompt enrichment for high and premium quality tiers.
type textGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Generate runs the full pipeline: description enrichment, remote attempts
// with backoff, then the placeholder fallback. It returns an error only when
// the parent context is cancelled; provider failures degrade to the fallback
// instead.
func (g *RetryingGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.progress("generating description", 20)
	g.describe(ctx, &req)

	var lastErr error
	if g.client != nil && g.client.HasCredentials() {
		for attempt := 0; attempt < g.maxRetries; attempt++ {
			asset, err := g.attempt(ctx, req)
			if err == nil {
				g.progress("rendering visual elements", 60)
				g.progress("quality check", 90)
				g.progress("complete", 100)
				return remoteResult(asset, req.AspectRatio), nil
			}
			lastErr = err
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if !retryable(err) {
				g.logger.Warn().
					Err(err).
					Str("video_id", req.VideoID).
					Str("model", req.Model).
					Msg("image: terminal provider error, using placeholder")
				break
			}
			if attempt < g.maxRetries-1 {
				delay := g.baseDelay << uint(attempt)
				g.logger.Warn().
					Err(err).
					Str("video_id", req.VideoID).
					Int("attempt", attempt+1).
					Dur("delay", delay).
					Msg("image: transient provider error, retrying")
				if err := g.sleep(ctx, delay); err != nil {
					return nil, err
				}
			}
		}
	}

	if lastErr != nil {
		g.logger.Info().
			Err(lastErr).
			Str("video_id", req.VideoID).
			Msg("image: provider exhausted, rendering placeholder")
	}

	g.progress("rendering visual elements", 60)
	result := g.fallback(req)
	g.progress("quality check", 90)
	g.progress("complete", 100)
	return result, nil
}

// describe asks the text model for a scene description when the caller did
// not supply one and the quality tier warrants the extra call. Failures are
// logged and ignored; the description only enriches placeholders and the
// optimized prompt.
func (g *RetryingGenerator) describe(ctx context.Context, req *Request) {
	if req.SceneDescription != "" || req.Quality == "" || req.Quality == "standard" {
		return
	}
	describer, ok := g.client.(textGenerator)
	if !ok || g.client == nil || !g.client.HasCredentials() {
		return
	}
	profile, found := imagegen.LookupStyle(req.Model)
	if !found {
		profile = imagegen.DefaultStyle()
	}
	prompt := imagegen.BuildDescriptionPrompt(req.Prompt, profile, req.Quality, req.AspectRatio)
	description, err := describer.GenerateText(ctx, prompt)
	if err != nil {
		g.logger.Debug().Err(err).Str("video_id", req.VideoID).Msg("image: description generation skipped")
		return
	}
	req.SceneDescription = strings.TrimSpace(description)
}

func (g *RetryingGenerator) attempt(ctx context.Context, req Request) (*genai.ImageAsset, error) {
	attemptCtx := ctx
	if g.attemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, g.attemptTimeout)
		defer cancel()
	}
	profile, found := imagegen.LookupStyle(req.Model)
	if !found {
		profile = imagegen.DefaultStyle()
	}
	return g.client.GenerateImage(attemptCtx, genai.ImageRequest{
		Prompt:      imagegen.OptimizePrompt(req.Prompt, profile),
		AspectRatio: req.AspectRatio,
		Quality:     req.Quality,
		Count:       1,
	})
}

func (g *RetryingGenerator) fallback(req Request) *Result {
	profile, ok := imagegen.LookupStyle(req.Model)
	if !ok {
		profile = imagegen.DefaultStyle()
	}
	analysis := imagegen.Analyze(req.Prompt, req.SceneDescription, profile)
	uri, width, height := imagegen.RenderDataURI(imagegen.RenderOptions{
		Variant:  imagegen.VariantScene,
		Prompt:   req.Prompt,
		Scene:    req.SceneDescription,
		Model:    req.Model,
		Profile:  profile,
		Analysis: analysis,
		Now:      time.Now(),
	})
	return &Result{DataURI: uri, Width: width, Height: height, FallbackUsed: true}
}

func remoteResult(asset *genai.ImageAsset, aspect string) *Result {
	width, height := asset.Width, asset.Height
	if width == 0 || height == 0 {
		if aspect == "16:9" {
			width, height = 1920, 1080
		} else {
			width, height = 1024, 1024
		}
	}
	mime := asset.MIME
	if mime == "" {
		mime = "image/png"
	}
	uri := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(asset.Data))
	return &Result{DataURI: uri, Width: width, Height: height}
}

var retryTokens = []string{
	"ratelimiterror",
	"timeouterror",
	"connectionerror",
	"serviceunavailable",
	"networkerror",
	"fetcherror",
	"econnreset",
	"etimedout",
	"rate limit",
	"timeout",
	"connection",
	"network",
}

// retryable reports whether a provider error is worth another attempt.
// Classified errors decide directly; anything else falls back to message
// sniffing for known transient tokens.
func retryable(err error) bool {
	switch genai.KindOf(err) {
	case genai.KindRateLimited, genai.KindTimeout, genai.KindUnavailable, genai.KindNetwork:
		return true
	case genai.KindAuth, genai.KindSafety, genai.KindInvalid:
		return false
	}
	message := strings.ToLower(err.Error())
	for _, token := range retryTokens {
		if strings.Contains(message, token) {
			return true
		}
	}
	return false
}
