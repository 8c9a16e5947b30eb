package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"shortvid/internal/imagegen"
	"shortvid/internal/providers/image"
)

const maxBatchSegments = 10

type batchSegment struct {
	ID               string `json:"id"`
	Prompt           string `json:"prompt"`
	SceneDescription string `json:"scene_description"`
}

type batchRequest struct {
	VideoID  string         `json:"video_id"`
	Model    string         `json:"model"`
	Segments []batchSegment `json:"segments"`
	Options  struct {
		AspectRatio string `json:"aspect_ratio"`
		Quality     string `json:"quality"`
	} `json:"options"`
}

type batchSegmentResult struct {
	SegmentID string        `json:"segmentId,omitempty"`
	Image     imageResponse `json:"image"`
}

type batchResponse struct {
	VideoID string               `json:"videoId"`
	Results []batchSegmentResult `json:"results"`
	Total   int                  `json:"total"`
}

// GenerateImageBatch handles POST /v1/images/batch. Segments are generated
// sequentially so results come back in input order and a transient provider
// stall affects later segments instead of interleaving them.
func (a *App) GenerateImageBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	req.VideoID = strings.TrimSpace(req.VideoID)
	if req.VideoID == "" {
		a.error(w, http.StatusBadRequest, "video_id is required", "")
		return
	}
	if len(req.Segments) == 0 || len(req.Segments) > maxBatchSegments {
		a.error(w, http.StatusBadRequest, "invalid segment count",
			fmt.Sprintf("segments must contain 1 to %d entries", maxBatchSegments))
		return
	}
	for i, seg := range req.Segments {
		prompt := strings.TrimSpace(seg.Prompt)
		if prompt == "" {
			a.error(w, http.StatusBadRequest, "segment prompt is required", fmt.Sprintf("segment %d has no prompt", i))
			return
		}
		if utf8.RuneCountInString(prompt) > maxPromptLength {
			a.error(w, http.StatusBadRequest, "segment prompt too long", fmt.Sprintf("segment %d exceeds %d characters", i, maxPromptLength))
			return
		}
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

	results := make([]batchSegmentResult, 0, len(req.Segments))
	for _, seg := range req.Segments {
		img := a.generateAndStore(r, image.Request{
			VideoID:          req.VideoID,
			Prompt:           strings.TrimSpace(seg.Prompt),
			SceneDescription: seg.SceneDescription,
			Model:            model,
			AspectRatio:      aspect,
			Quality:          quality,
		})
		if img == nil {
			a.error(w, http.StatusInternalServerError, "generation failed", "request cancelled")
			return
		}
		results = append(results, batchSegmentResult{SegmentID: seg.ID, Image: imageToResponse(*img)})
	}

	a.json(w, http.StatusOK, batchResponse{
		VideoID: req.VideoID,
		Results: results,
		Total:   len(results),
	})
}
