package imagegen

import "strings"

// DefaultStyleID is used whenever the caller omits or misspells the model id.
const DefaultStyleID = "flux-realistic"

// ColorScheme is the primary/secondary/text triple rendered into placeholder
// backgrounds and badges.
type ColorScheme struct {
	Primary   string
	Secondary string
	Text      string
}

// StyleProfile bundles the descriptive style text, mood text, and colors for
// one image model. The table is fixed at process start and never mutated.
type StyleProfile struct {
	ID          string
	Name        string
	DisplayName string
	Category    string
	Style       string
	Mood        string
	Colors      ColorScheme
}

var styleProfiles = []StyleProfile{
	{
		ID:          "animagine31",
		Name:        "Animagine V3.1",
		DisplayName: "animation",
		Category:    "anime",
		Style:       "anime illustration, Japanese animation style, vibrant colors, detailed artwork",
		Mood:        "energetic, dynamic, anime aesthetic",
		Colors:      ColorScheme{Primary: "#FF6B9D", Secondary: "#C66EFE", Text: "#FFE66D"},
	},
	{
		ID:          "chibitoon",
		Name:        "Chibi Toon",
		DisplayName: "chibi toon",
		Category:    "cartoon",
		Style:       "chibi cartoon style, cute characters, simplified features, playful",
		Mood:        "adorable, friendly, whimsical",
		Colors:      ColorScheme{Primary: "#4ECDC4", Secondary: "#44A08D", Text: "#F7FFF7"},
	},
	{
		ID:          "enna-sketch-style",
		Name:        "Enna Sketch",
		DisplayName: "sketch",
		Category:    "sketch",
		Style:       "pencil sketch, hand-drawn, artistic, monochrome with touches of color",
		Mood:        "artistic, creative, thoughtful",
		Colors:      ColorScheme{Primary: "#2C3E50", Secondary: "#34495E", Text: "#ECF0F1"},
	},
	{
		ID:          "flux-schnell-dark",
		Name:        "FLUX Schnell Dark",
		DisplayName: "dark theme",
		Category:    "dark",
		Style:       "dark theme, dramatic lighting, high contrast, moody atmosphere",
		Mood:        "mysterious, intense, dramatic",
		Colors:      ColorScheme{Primary: "#1A1A2E", Secondary: "#16213E", Text: "#E94560"},
	},
	{
		ID:          "flux-schnell-realitic",
		Name:        "FLUX Schnell Realistic",
		DisplayName: "realistic",
		Category:    "realistic",
		Style:       "photorealistic, high resolution, professional photography, detailed",
		Mood:        "authentic, professional, lifelike",
		Colors:      ColorScheme{Primary: "#667EEA", Secondary: "#764BA2", Text: "#F5F5F5"},
	},
	{
		ID:          "flux-schnell-webtoon",
		Name:        "FLUX Schnell Webtoon",
		DisplayName: "webtoon",
		Category:    "cartoon",
		Style:       "webtoon manhwa style, clean lines, digital art, Korean comic aesthetic",
		Mood:        "modern, engaging, colorful",
		Colors:      ColorScheme{Primary: "#FA8BFF", Secondary: "#2BD2FF", Text: "#2B1055"},
	},
	// Short aliases accepted by older clients.
	{
		ID:          "flux-dark",
		Name:        "FLUX Dark",
		DisplayName: "dark theme",
		Category:    "dark",
		Style:       "dark theme, dramatic lighting, high contrast, moody atmosphere",
		Mood:        "mysterious, intense, dramatic",
		Colors:      ColorScheme{Primary: "#1A1A2E", Secondary: "#16213E", Text: "#E94560"},
	},
	{
		ID:          "flux-realistic",
		Name:        "FLUX Realistic",
		DisplayName: "realistic",
		Category:    "realistic",
		Style:       "photorealistic, high resolution, professional photography, detailed",
		Mood:        "authentic, professional, lifelike",
		Colors:      ColorScheme{Primary: "#667EEA", Secondary: "#764BA2", Text: "#F5F5F5"},
	},
	{
		ID:          "flux-webtoon",
		Name:        "FLUX Webtoon",
		DisplayName: "webtoon",
		Category:    "cartoon",
		Style:       "webtoon manhwa style, clean lines, digital art, Korean comic aesthetic",
		Mood:        "modern, engaging, colorful",
		Colors:      ColorScheme{Primary: "#FA8BFF", Secondary: "#2BD2FF", Text: "#2B1055"},
	},
}

// LookupStyle returns the profile for a model id, matching case-insensitively.
func LookupStyle(id string) (*StyleProfile, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for i := range styleProfiles {
		if styleProfiles[i].ID == id {
			return &styleProfiles[i], true
		}
	}
	return nil, false
}

// DefaultStyle returns the profile used when no model id is supplied.
func DefaultStyle() *StyleProfile {
	profile, _ := LookupStyle(DefaultStyleID)
	return profile
}

// Styles returns the full catalog in declaration order.
func Styles() []StyleProfile {
	out := make([]StyleProfile, len(styleProfiles))
	copy(out, styleProfiles)
	return out
}
