package imagegen

import (
	"strings"
	"testing"
)

func TestScorePromptRange(t *testing.T) {
	prompts := []string{
		"",
		"short",
		"a reasonable prompt about mountains",
		"디테일이 살아있는 선명한 고화질 이미지, 빛나는 색감",
		strings.Repeat("긴 프롬프트 ", 100),
		strings.Repeat("x", 5000),
	}
	for _, p := range prompts {
		got := ScorePrompt(p)
		if got < 0 || got > 100 {
			t.Errorf("ScorePrompt(%.20q) = %d, out of [0,100]", p, got)
		}
	}
}

func TestScorePromptEmpty(t *testing.T) {
	if got := ScorePrompt(""); got != 0 {
		t.Fatalf("ScorePrompt(\"\") = %d, want 0", got)
	}
}

func TestScorePromptComponents(t *testing.T) {
	cases := []struct {
		name   string
		prompt string
		want   int
	}{
		// 12 runes: length bonus only.
		{"plain english", "simple image", 25},
		// length 25 + keyword 35 + hangul 10.
		{"korean keyword", "선명한 풍경 사진입니다", 25 + 35 + 10},
		// length 25 + comma 20.
		{"comma separation", "a tree, a mountain", 25 + 20},
		// >200 runes: reduced length bonus.
		{"very long", strings.Repeat("a", 250), 15 + 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ScorePrompt(tc.prompt); got != tc.want {
				t.Fatalf("ScorePrompt = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestStyleMatchScore(t *testing.T) {
	if got := StyleMatchScore("flux-realistic"); got != 85 {
		t.Fatalf("known model score = %d, want 85", got)
	}
	if got := StyleMatchScore("no-such-model"); got != 70 {
		t.Fatalf("unknown model score = %d, want 70", got)
	}
}

func TestEvaluateImageWeights(t *testing.T) {
	uri, _, _ := RenderDataURI(RenderOptions{
		Variant: VariantScene,
		Prompt:  "a blue mountain at sunset",
	})
	score := EvaluateImage(uri, "선명한 풍경, 디테일", "flux-realistic")
	if score.Overall < 0 || score.Overall > 100 {
		t.Fatalf("overall out of range: %+v", score)
	}
	want := int(0.3*float64(score.Prompt) + 0.3*float64(score.Style) + 0.4*float64(score.Technical) + 0.5)
	if score.Overall != want {
		t.Fatalf("overall = %d, want %d from %+v", score.Overall, want, score)
	}
}

func TestTechnicalScoreNonSVG(t *testing.T) {
	svg := TechnicalScore("data:image/svg+xml;base64,PHN2Zz48L3N2Zz4=")
	if svg <= 0 || svg > 100 {
		t.Fatalf("svg technical score = %d", svg)
	}
	raster := TechnicalScore("data:image/png;base64,aGVsbG8=")
	if raster <= 0 || raster > 100 {
		t.Fatalf("raster technical score = %d", raster)
	}
}
