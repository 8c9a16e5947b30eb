package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shortvid/internal/imagegen"
	"shortvid/internal/providers/image"
	"shortvid/internal/store"
	"shortvid/pkg/zip"
)

const maxPromptLength = 1000

type generateImageRequest struct {
	VideoID          string `json:"video_id"`
	Prompt           string `json:"prompt"`
	SceneDescription string `json:"scene_description"`
	Model            string `json:"model"`
	Options          struct {
		AspectRatio string `json:"aspect_ratio"`
		Quality     string `json:"quality"`
	} `json:"options"`
}

type imageResponse struct {
	ID               string    `json:"id"`
	VideoID          string    `json:"videoId"`
	Prompt           string    `json:"prompt"`
	SceneDescription string    `json:"sceneDescription,omitempty"`
	Model            string    `json:"model"`
	Status           string    `json:"status"`
	ImageURL         string    `json:"imageUrl"`
	Width            int       `json:"width"`
	Height           int       `json:"height"`
	AspectRatio      string    `json:"aspectRatio"`
	CreatedAt        time.Time `json:"createdAt"`
	ProcessingTimeMs int64     `json:"processingTimeMs"`
	FallbackUsed     bool      `json:"fallbackUsed"`
	QualityScore     int       `json:"qualityScore"`
}

func imageToResponse(img store.Image) imageResponse {
	return imageResponse{
		ID:               img.ID,
		VideoID:          img.VideoID,
		Prompt:           img.Prompt,
		SceneDescription: img.SceneDescription,
		Model:            img.Model,
		Status:           img.Status,
		ImageURL:         img.DataURI,
		Width:            img.Width,
		Height:           img.Height,
		AspectRatio:      img.AspectRatio,
		CreatedAt:        img.CreatedAt,
		ProcessingTimeMs: img.ProcessingTimeMs,
		FallbackUsed:     img.FallbackUsed,
		QualityScore:     img.Quality,
	}
}

// normalizeAspectRatio accepts both ratio and orientation spellings.
func normalizeAspectRatio(v string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "16:9", "landscape":
		return "16:9", true
	case "9:16", "portrait":
		return "9:16", true
	case "1:1", "square":
		return "1:1", true
	}
	return "", false
}

func normalizeQuality(v string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "standard":
		return "standard", true
	case "high":
		return "high", true
	case "premium":
		return "premium", true
	}
	return "", false
}

// GenerateImage handles POST /v1/images.
func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req generateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	req.VideoID = strings.TrimSpace(req.VideoID)
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.VideoID == "" {
		a.error(w, http.StatusBadRequest, "video_id is required", "")
		return
	}
	if req.Prompt == "" {
		a.error(w, http.StatusBadRequest, "prompt is required", "")
		return
	}
	if utf8.RuneCountInString(req.Prompt) > maxPromptLength {
		a.error(w, http.StatusBadRequest, "prompt too long", fmt.Sprintf("prompt must be at most %d characters", maxPromptLength))
		return
	}
	aspect, ok := normalizeAspectRatio(req.Options.AspectRatio)
	if !ok {
		a.error(w, http.StatusBadRequest, "invalid aspect_ratio", "allowed values: 1:1, 9:16, 16:9")
		return
	}
	quality, ok := normalizeQuality(req.Options.Quality)
	if !ok {
		a.error(w, http.StatusBadRequest, "invalid quality", "allowed values: standard, high, premium")
		return
	}

	model := req.Model
	if _, known := imagegen.LookupStyle(model); !known {
		if model != "" {
			a.Logger.Warn().Str("model", model).Msg("unknown style model, using default")
		}
		model = imagegen.DefaultStyleID
	}

	img := a.generateAndStore(r, image.Request{
		VideoID:          req.VideoID,
		Prompt:           req.Prompt,
		SceneDescription: req.SceneDescription,
		Model:            model,
		AspectRatio:      aspect,
		Quality:          quality,
	})
	if img == nil {
		a.error(w, http.StatusInternalServerError, "generation failed", "request cancelled")
		return
	}
	a.json(w, http.StatusOK, imageToResponse(*img))
}

// generateAndStore runs one generation job and records the result. It
// returns nil only when the request context was cancelled.
func (a *App) generateAndStore(r *http.Request, req image.Request) *store.Image {
	started := time.Now()
	result, err := a.Images.Generate(r.Context(), req)
	if err != nil {
		a.Logger.Warn().Err(err).Str("video_id", req.VideoID).Msg("generation aborted")
		return nil
	}

	profile, _ := imagegen.LookupStyle(req.Model)
	optimized := imagegen.OptimizePrompt(req.Prompt, profile)
	score := imagegen.EvaluateImage(result.DataURI, optimized, req.Model)

	img := store.Image{
		ID:               uuid.NewString(),
		VideoID:          req.VideoID,
		Prompt:           req.Prompt,
		SceneDescription: req.SceneDescription,
		Model:            req.Model,
		DataURI:          result.DataURI,
		Width:            result.Width,
		Height:           result.Height,
		Status:           "completed",
		CreatedAt:        time.Now().UTC(),
		ProcessingTimeMs: time.Since(started).Milliseconds(),
		FallbackUsed:     result.FallbackUsed,
		Quality:          score.Overall,
		AspectRatio:      req.AspectRatio,
	}
	img.URL = "/v1/images/" + img.ID
	a.Store.Put(img)

	a.Logger.Info().
		Str("image_id", img.ID).
		Str("video_id", img.VideoID).
		Bool("fallback", img.FallbackUsed).
		Int("quality", img.Quality).
		Int64("elapsed_ms", img.ProcessingTimeMs).
		Msg("image generated")
	return &img
}

type listMetadata struct {
	AverageQuality    int       `json:"averageQuality"`
	RecentImages      int       `json:"recentImages"`
	RequestedAt       time.Time `json:"requestedAt"`
	TotalStoredImages int       `json:"totalStoredImages"`
}

type listImagesResponse struct {
	Images      []store.Projection `json:"images"`
	TotalImages int                `json:"totalImages"`
	Metadata    listMetadata       `json:"metadata"`
}

// ListImages handles GET /v1/images?video_id=.
func (a *App) ListImages(w http.ResponseWriter, r *http.Request) {
	videoID := strings.TrimSpace(r.URL.Query().Get("video_id"))
	if videoID == "" {
		a.error(w, http.StatusBadRequest, "video_id is required", "")
		return
	}

	records := a.Store.ListByVideo(videoID)
	projections := make([]store.Projection, 0, len(records))
	var qualitySum int
	var recent int
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, img := range records {
		projections = append(projections, img.Project())
		qualitySum += img.Quality
		if img.CreatedAt.After(cutoff) {
			recent++
		}
	}
	var avg int
	if len(records) > 0 {
		avg = int(math.Round(float64(qualitySum) / float64(len(records))))
	}

	a.json(w, http.StatusOK, listImagesResponse{
		Images:      projections,
		TotalImages: len(projections),
		Metadata: listMetadata{
			AverageQuality:    avg,
			RecentImages:      recent,
			RequestedAt:       time.Now().UTC(),
			TotalStoredImages: a.Store.Len(),
		},
	})
}

// GetImage handles GET /v1/images/{image_id}.
func (a *App) GetImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "image_id")
	img, ok := a.Store.Get(id)
	if !ok {
		a.error(w, http.StatusNotFound, "image not found", "")
		return
	}
	a.json(w, http.StatusOK, imageToResponse(img))
}

// DeleteImage handles DELETE /v1/images/{image_id}.
func (a *App) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "image_id")
	deleted := a.Store.Delete(id)
	a.json(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// DownloadArchive handles GET /v1/images/zip?video_id= and streams the
// stored payloads as a zip archive.
func (a *App) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	videoID := strings.TrimSpace(r.URL.Query().Get("video_id"))
	if videoID == "" {
		a.error(w, http.StatusBadRequest, "video_id is required", "")
		return
	}
	records := a.Store.ListByVideo(videoID)
	if len(records) == 0 {
		a.error(w, http.StatusNotFound, "no images for video", "")
		return
	}

	assets := make([]zip.Asset, 0, len(records))
	for i, img := range records {
		data, mime, err := decodeDataURI(img.DataURI)
		if err != nil {
			a.Logger.Warn().Err(err).Str("image_id", img.ID).Msg("skipping undecodable image payload")
			continue
		}
		assets = append(assets, zip.Asset{
			Filename: fmt.Sprintf("%03d-%s%s", i+1, img.ID, zip.ExtensionForMIME(mime)),
			MIME:     mime,
			Data:     data,
		})
	}
	if len(assets) == 0 {
		a.error(w, http.StatusInternalServerError, "no archivable image payloads", "")
		return
	}
	archive := zip.ArchiveAssets(assets)
	if archive == nil {
		a.error(w, http.StatusInternalServerError, "archive failed", "")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", videoID+"-images.zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func decodeDataURI(uri string) ([]byte, string, error) {
	const scheme = "data:"
	if !strings.HasPrefix(uri, scheme) {
		return nil, "", fmt.Errorf("not a data uri")
	}
	meta, payload, found := strings.Cut(uri[len(scheme):], ",")
	if !found {
		return nil, "", fmt.Errorf("malformed data uri")
	}
	mime := strings.TrimSuffix(meta, ";base64")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data uri payload: %w", err)
	}
	return data, mime, nil
}
