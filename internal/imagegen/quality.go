package imagegen

import (
	"encoding/base64"
	"strings"
	"unicode"
)

// Korean quality-signal words; prompts in this service are predominantly
// Korean and these markers correlate with richer image descriptions.
var qualityKeywords = []string{
	"디테일", "선명한", "고화질", "빛나는", "어두운", "밝은", "색감", "실사",
}

// ScorePrompt grades prompt richness on a 0-100 scale. The score is
// informational metadata only; it never gates generation.
func ScorePrompt(text string) int {
	score := 0
	length := len([]rune(text))
	lower := strings.ToLower(text)

	switch {
	case length >= 10 && length <= 200:
		score += 25
	case length > 200:
		score += 15
	}
	for _, keyword := range qualityKeywords {
		if strings.Contains(lower, keyword) {
			score += 35
			break
		}
	}
	if strings.Contains(text, ",") || strings.Contains(text, "및") || strings.Contains(text, "와/과") {
		score += 20
	}
	if containsHangul(text) {
		score += 10
	}
	if length > 50 {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score
}

func containsHangul(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

// StyleMatchScore reports how well a model id maps onto the fixed style table.
func StyleMatchScore(model string) int {
	if _, ok := LookupStyle(model); ok {
		return 85
	}
	return 70
}

// TechnicalScore inspects a data URI and buckets its structural quality. It is
// intentionally coarse; the point is to distinguish broken payloads from SVG
// documents that carry gradients and filters.
func TechnicalScore(dataURI string) int {
	if !strings.HasPrefix(dataURI, "data:image/svg+xml;base64,") {
		return 50
	}
	payload := dataURI[strings.Index(dataURI, ",")+1:]
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return 40
	}
	doc := string(decoded)
	switch {
	case !strings.Contains(doc, "<svg"):
		return 30
	case !strings.Contains(doc, "</svg>"):
		return 40
	case !strings.Contains(doc, "rect") && !strings.Contains(doc, "circle") && !strings.Contains(doc, "text"):
		return 60
	case strings.Contains(doc, "linearGradient") || strings.Contains(doc, "filter"):
		return 90
	default:
		return 80
	}
}

// ImageScore is the weighted quality breakdown attached to generated images.
type ImageScore struct {
	Overall   int `json:"overall"`
	Prompt    int `json:"prompt"`
	Style     int `json:"style"`
	Technical int `json:"technical"`
}

// EvaluateImage combines prompt, style, and technical scores with fixed
// 0.3/0.3/0.4 weights.
func EvaluateImage(dataURI, prompt, model string) ImageScore {
	s := ImageScore{
		Prompt:    ScorePrompt(prompt),
		Style:     StyleMatchScore(model),
		Technical: TechnicalScore(dataURI),
	}
	s.Overall = int(0.3*float64(s.Prompt) + 0.3*float64(s.Style) + 0.4*float64(s.Technical) + 0.5)
	return s
}
