package store

import (
	"sort"
	"sync"
	"time"
)

// Image is the canonical record for one generated asset.
type Image struct {
	ID               string    `json:"id"`
	VideoID          string    `json:"videoId"`
	Prompt           string    `json:"prompt"`
	SceneDescription string    `json:"sceneDescription,omitempty"`
	Model            string    `json:"model"`
	DataURI          string    `json:"dataUri"`
	URL              string    `json:"url"`
	Width            int       `json:"width"`
	Height           int       `json:"height"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
	ProcessingTimeMs int64     `json:"processingTimeMs"`
	FallbackUsed     bool      `json:"fallbackUsed"`
	Quality          int       `json:"quality"`
	AspectRatio      string    `json:"aspectRatio"`
}

// Projection is the review-oriented view served by list endpoints. New
// records start unreviewed with zero regenerations.
type Projection struct {
	ID               string    `json:"id"`
	URL              string    `json:"url"`
	SceneDescription string    `json:"sceneDescription,omitempty"`
	Prompt           string    `json:"prompt"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
	Reviewed         bool      `json:"reviewed"`
	Approved         bool      `json:"approved"`
	Regenerations    int       `json:"regenerations"`
}

// Project builds the review view of a record.
func (img Image) Project() Projection {
	return Projection{
		ID:               img.ID,
		URL:              img.URL,
		SceneDescription: img.SceneDescription,
		Prompt:           img.Prompt,
		Status:           img.Status,
		CreatedAt:        img.CreatedAt,
	}
}

// Store holds generated images for the lifetime of the process.
type Store interface {
	Put(img Image)
	Get(id string) (Image, bool)
	Delete(id string) bool
	ListByVideo(videoID string) []Image
	Clear()
	Len() int
}

// MemoryStore is a mutex-guarded map keyed by image id. It is the only
// Store implementation; assets live exactly as long as the process.
type MemoryStore struct {
	mu     sync.RWMutex
	images map[string]Image
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{images: make(map[string]Image)}
}

func (s *MemoryStore) Put(img Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[img.ID] = img
}

func (s *MemoryStore) Get(id string) (Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.images[id]
	return img, ok
}

func (s *MemoryStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.images[id]; !ok {
		return false
	}
	delete(s.images, id)
	return true
}

// ListByVideo returns all records for a video ordered by creation time,
// oldest first, so scene order survives concurrent inserts.
func (s *MemoryStore) ListByVideo(videoID string) []Image {
	s.mu.RLock()
	out := make([]Image, 0, 8)
	for _, img := range s.images {
		if img.VideoID == videoID {
			out = append(out, img)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = make(map[string]Image)
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}
