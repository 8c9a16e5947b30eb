package imagegen

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Variant selects the placeholder canvas and template.
type Variant int

const (
	// VariantSimple is the compact 512x512 badge used as the last styled tier.
	VariantSimple Variant = iota
	// VariantAdvanced is the 1024x1024 decorative card.
	VariantAdvanced
	// VariantScene is the 1920x1080 canvas with mood overlays and object icons.
	VariantScene
)

// ErrSVGTooLarge signals that a rendered document exceeded the byte ceiling
// for its variant; callers downgrade to the simple variant.
var ErrSVGTooLarge = errors.New("imagegen: svg exceeds size ceiling")

const (
	promptCharBudget = 60
	maxObjectIcons   = 5
)

// Per-variant byte ceilings. Variables so the degrade path stays testable.
var (
	simpleSizeCeiling   = 1_000_000
	advancedSizeCeiling = 2_000_000
)

// RenderOptions carries everything a placeholder render needs. Rendering is
// deterministic for fixed options; only Now varies between calls.
type RenderOptions struct {
	Variant  Variant
	Prompt   string
	Scene    string
	Model    string
	Analysis Analysis
	Profile  *StyleProfile
	Now      time.Time
}

// CanvasSize returns the pixel dimensions for a variant.
func CanvasSize(v Variant) (int, int) {
	switch v {
	case VariantSimple:
		return 512, 512
	case VariantAdvanced:
		return 1024, 1024
	default:
		return 1920, 1080
	}
}

type colorRamp struct {
	start     string
	end       string
	primary   string
	secondary string
}

var colorRamps = map[string]colorRamp{
	"blue":   {start: "#dbeafe", end: "#3b82f6", primary: "#2563eb", secondary: "#60a5fa"},
	"red":    {start: "#fee2e2", end: "#ef4444", primary: "#dc2626", secondary: "#f87171"},
	"green":  {start: "#dcfce7", end: "#22c55e", primary: "#16a34a", secondary: "#4ade80"},
	"yellow": {start: "#fef3c7", end: "#eab308", primary: "#ca8a04", secondary: "#facc15"},
	"purple": {start: "#f3e8ff", end: "#a855f7", primary: "#9333ea", secondary: "#c084fc"},
	"pink":   {start: "#fce7f3", end: "#ec4899", primary: "#db2777", secondary: "#f9a8d4"},
}

func resolveRamp(colors []string) colorRamp {
	if len(colors) > 0 {
		if ramp, ok := colorRamps[colors[0]]; ok {
			return ramp
		}
	}
	return colorRamps["blue"]
}

var objectIcons = map[string]string{
	"person":   `<g transform="translate(200, 300)"><circle cx="0" cy="0" r="20" fill="#94a3b8" /><rect x="-15" y="20" width="30" height="40" rx="5" fill="#94a3b8" /></g>`,
	"building": `<g transform="translate(1500, 400)"><rect x="0" y="0" width="60" height="80" fill="#cbd5e1" /><rect x="10" y="10" width="10" height="10" fill="#3b82f6" /><rect x="25" y="10" width="10" height="10" fill="#3b82f6" /><rect x="40" y="10" width="10" height="10" fill="#3b82f6" /><rect x="10" y="25" width="10" height="10" fill="#3b82f6" /><rect x="25" y="25" width="10" height="10" fill="#3b82f6" /><rect x="40" y="25" width="10" height="10" fill="#3b82f6" /></g>`,
	"tree":     `<g transform="translate(800, 600)"><rect x="-10" y="0" width="20" height="40" fill="#92400e" /><circle cx="0" cy="-20" r="40" fill="#22c55e" /><circle cx="-15" cy="-10" r="25" fill="#16a34a" /><circle cx="15" cy="-10" r="25" fill="#16a34a" /></g>`,
	"car":      `<g transform="translate(1000, 700)"><rect x="0" y="10" width="60" height="20" rx="5" fill="#3b82f6" /><rect x="10" y="0" width="40" height="15" rx="3" fill="#60a5fa" /><circle cx="15" cy="30" r="8" fill="#1e293b" /><circle cx="45" cy="30" r="8" fill="#1e293b" /></g>`,
	"food":     `<g transform="translate(600, 500)"><circle cx="0" cy="0" r="25" fill="#f59e0b" /><circle cx="-8" cy="-8" r="5" fill="#dc2626" /><circle cx="8" cy="-8" r="5" fill="#dc2626" /></g>`,
	"computer": `<g transform="translate(1200, 350)"><rect x="0" y="0" width="50" height="35" rx="2" fill="#475569" /><rect x="5" y="5" width="40" height="25" fill="#38bdf8" /><rect x="15" y="35" width="20" height="5" fill="#64748b" /></g>`,
	"phone":    `<g transform="translate(1400, 450)"><rect x="-10" y="-20" width="20" height="40" rx="3" fill="#1e293b" /><rect x="-8" y="-15" width="16" height="25" fill="#60a5fa" /></g>`,
	"book":     `<g transform="translate(300, 550)"><rect x="0" y="0" width="30" height="40" rx="2" fill="#dc2626" /><rect x="2" y="5" width="26" height="2" fill="white" /><rect x="2" y="10" width="20" height="2" fill="white" /><rect x="2" y="15" width="24" height="2" fill="white" /></g>`,
	"mountain": `<g transform="translate(1600, 600)"><polygon points="0,50 40,0 80,50" fill="#6b7280" /><polygon points="30,50 60,20 90,50" fill="#9ca3af" /><polygon points="40,50 70,30 100,50" fill="#d1d5db" /></g>`,
	"ocean":    `<g transform="translate(400, 750)"><path d="M0,0 Q10,-5 20,0 T40,0 T60,0 T80,0" stroke="#3b82f6" stroke-width="3" fill="none" /><path d="M0,10 Q10,5 20,10 T40,10 T60,10 T80,10" stroke="#60a5fa" stroke-width="2" fill="none" /></g>`,
}

var moodOverlays = map[string]string{
	"dramatic": `<rect x="0" y="0" width="100%" height="100%" fill="black" opacity="0.3" />
      <polygon points="0,0 200,0 0,200" fill="white" opacity="0.1" />
      <polygon points="1920,1080 1720,1080 1920,880" fill="white" opacity="0.1" />`,
	"bright": `<circle cx="85%" cy="15%" r="100" fill="#fbbf24" opacity="0.4" />
      <circle cx="75%" cy="25%" r="50" fill="#f59e0b" opacity="0.3" />`,
	"calm": `<ellipse cx="50%" cy="80%" rx="640" ry="100" fill="#e0f2fe" opacity="0.5" />`,
	"professional": `<rect x="0" y="0" width="100%" height="100%" fill="url(#verticalStripes)" opacity="0.1" />
      <defs>
        <pattern id="verticalStripes" patternUnits="userSpaceOnUse" width="20" height="20">
          <rect width="10" height="20" fill="#e2e8f0" />
          <rect x="10" width="10" height="20" fill="#f1f5f9" />
        </pattern>
      </defs>`,
	"natural": `<ellipse cx="15%" cy="70%" rx="300" ry="150" fill="#86efac" opacity="0.3" />
      <ellipse cx="85%" cy="65%" rx="250" ry="180" fill="#4ade80" opacity="0.2" />`,
}

// RenderSVG renders one placeholder document for the given options. The only
// failure mode is the per-variant byte ceiling.
func RenderSVG(opts RenderOptions) (string, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	var doc string
	ceiling := advancedSizeCeiling
	switch opts.Variant {
	case VariantSimple:
		doc = renderSimple(opts)
		ceiling = simpleSizeCeiling
	case VariantAdvanced:
		doc = renderAdvanced(opts)
	default:
		doc = renderScene(opts)
	}

	if len(doc) > ceiling {
		return "", ErrSVGTooLarge
	}
	return doc, nil
}

// RenderDataURI renders the requested variant and base64-encodes it into a
// data URI. It degrades instead of failing: a ceiling breach downgrades to the
// simple variant, and any further problem yields the minimal placeholder.
func RenderDataURI(opts RenderOptions) (uri string, width, height int) {
	width, height = CanvasSize(opts.Variant)

	doc, err := RenderSVG(opts)
	if err != nil && opts.Variant != VariantSimple {
		opts.Variant = VariantSimple
		width, height = CanvasSize(VariantSimple)
		doc, err = RenderSVG(opts)
	}
	if err != nil {
		return MinimalPlaceholder(), width, height
	}

	uri, encErr := encodeSVG(doc)
	if encErr != nil {
		return MinimalPlaceholder(), width, height
	}
	return uri, width, height
}

func encodeSVG(doc string) (string, error) {
	if doc == "" || !utf8.ValidString(doc) {
		return "", errors.New("imagegen: document is not valid UTF-8")
	}
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(doc)), nil
}

// MinimalPlaceholder is the hard-coded last-resort image.
func MinimalPlaceholder() string {
	const doc = `<svg width="512" height="512" xmlns="http://www.w3.org/2000/svg"><rect width="512" height="512" fill="#667EEA"/><text x="256" y="256" text-anchor="middle" fill="white">AI Image</text></svg>`
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(doc))
}

func renderScene(opts RenderOptions) string {
	const w, h = 1920, 1080
	ramp := resolveRamp(opts.Analysis.Colors)

	icons := make([]string, 0, maxObjectIcons)
	for _, object := range opts.Analysis.Objects {
		if len(icons) == maxObjectIcons {
			break
		}
		if icon, ok := objectIcons[object]; ok {
			icons = append(icons, icon)
		}
	}
	overlay := moodOverlays[opts.Analysis.Mood]

	display := "AI"
	category := "general"
	if opts.Profile != nil {
		display = opts.Profile.DisplayName
		category = opts.Profile.Category
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
  <defs>
    <linearGradient id="bgGradient" x1="0%%" y1="0%%" x2="100%%" y2="100%%">
      <stop offset="0%%" style="stop-color:%s;stop-opacity:1" />
      <stop offset="100%%" style="stop-color:%s;stop-opacity:1" />
    </linearGradient>
    <radialGradient id="centerGradient">
      <stop offset="0%%" style="stop-color:%s;stop-opacity:0.3" />
      <stop offset="100%%" style="stop-color:%s;stop-opacity:0.1" />
    </radialGradient>
  </defs>
  <rect width="100%%" height="100%%" fill="url(#bgGradient)" />
  %s
  <circle cx="80%%" cy="20%%" r="150" fill="url(#centerGradient)" opacity="0.6" />
  <circle cx="20%%" cy="80%%" r="200" fill="url(#centerGradient)" opacity="0.4" />
  %s
`, w, h, w, h, ramp.start, ramp.end, ramp.primary, ramp.secondary, overlay, strings.Join(icons, "\n  "))

	fmt.Fprintf(&b, `  <g>
    <rect x="50" y="%d" width="%d" height="80" rx="10" fill="white" fill-opacity="0.9" />
    <text x="50%%" y="%d" text-anchor="middle" font-family="Arial, sans-serif" font-size="28" font-weight="bold" fill="#1e293b">%s</text>
    <text x="50%%" y="%d" text-anchor="middle" font-family="Arial, sans-serif" font-size="18" fill="#64748b">%s style</text>
    <text x="50%%" y="%d" text-anchor="middle" font-family="Arial, sans-serif" font-size="14" fill="#94a3b8">%s</text>
  </g>
`, h/2-100, w-100, h/2-50, escapeText(truncate(opts.Prompt, promptCharBudget)), h/2-20, escapeText(display), h/2+5, escapeText(truncate(opts.Analysis.Style, 100)))

	fmt.Fprintf(&b, `  <g>
    <rect x="50" y="%d" width="300" height="80" rx="8" fill="white" fill-opacity="0.8" />
    <text x="70" y="%d" font-family="Arial, sans-serif" font-size="14" fill="#475569">%s image generation</text>
    <text x="70" y="%d" font-family="Arial, sans-serif" font-size="12" fill="#94a3b8">style: %s</text>
    <text x="70" y="%d" font-family="Arial, sans-serif" font-size="12" fill="#94a3b8">generated at %s</text>
  </g>
  <g>
    <rect x="%d" y="50" width="200" height="60" rx="8" fill="#fef3c7" stroke="#f59e0b" stroke-width="2" />
    <text x="%d" y="75" text-anchor="middle" font-family="Arial, sans-serif" font-size="14" font-weight="bold" fill="#92400e">%s image</text>
    <text x="%d" y="95" text-anchor="middle" font-family="Arial, sans-serif" font-size="12" fill="#78350f">provider unavailable</text>
  </g>
</svg>`, h-150, h-120, escapeText(display), h-100, escapeText(category), h-80, opts.Now.Format("15:04:05"), w-250, w-150, escapeText(display), w-150)

	return b.String()
}

func renderAdvanced(opts RenderOptions) string {
	const size = 1024
	scheme := ColorScheme{Primary: "#667EEA", Secondary: "#764BA2", Text: "#F5F5F5"}
	style := "AI Image Style"
	if opts.Profile != nil {
		scheme = opts.Profile.Colors
		style = opts.Profile.Style
	}

	keywords := descriptionKeywords(opts.Scene, maxObjectIcons)
	var keywordTexts strings.Builder
	for i, word := range keywords {
		x := 150 + (i%3)*250
		y := 580 + 25*(i/3)
		fmt.Fprintf(&keywordTexts, `<text x="%d" y="%d" font-family="Arial, sans-serif" font-size="12" fill="%s" opacity="0.8">%s</text>
          `, x, y, scheme.Text, escapeText(word))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">
  <defs>
    <linearGradient id="bg1" x1="0%%" y1="0%%" x2="100%%" y2="100%%">
      <stop offset="0%%" style="stop-color:%s;stop-opacity:1" />
      <stop offset="50%%" style="stop-color:%s;stop-opacity:0.8" />
      <stop offset="100%%" style="stop-color:%s;stop-opacity:0.6" />
    </linearGradient>
    <radialGradient id="bg2" cx="50%%" cy="50%%" r="50%%">
      <stop offset="0%%" style="stop-color:%s;stop-opacity:0.2" />
      <stop offset="100%%" style="stop-color:%s;stop-opacity:0.8" />
    </radialGradient>
    <filter id="blur">
      <feGaussianBlur in="SourceGraphic" stdDeviation="3" />
    </filter>
  </defs>
  <rect width="%d" height="%d" fill="url(#bg1)"/>
  <circle cx="512" cy="512" r="400" fill="url(#bg2)" opacity="0.5"/>
  <g opacity="0.3">
    <circle cx="200" cy="200" r="50" fill="%s" filter="url(#blur)"/>
    <circle cx="824" cy="200" r="30" fill="%s" filter="url(#blur)"/>
    <circle cx="200" cy="824" r="40" fill="%s" filter="url(#blur)"/>
    <circle cx="824" cy="824" r="60" fill="%s" filter="url(#blur)"/>
  </g>
  <g>
    <rect x="100" y="350" width="824" height="324" rx="20" fill="rgba(0,0,0,0.3)" stroke="%s" stroke-width="2"/>
    <text x="512" y="450" text-anchor="middle" font-family="Arial, sans-serif" font-size="36" font-weight="bold" fill="white">AI Generated</text>
    <text x="512" y="500" text-anchor="middle" font-family="Arial, sans-serif" font-size="20" fill="%s">%s</text>
    <text x="512" y="540" text-anchor="middle" font-family="Arial, sans-serif" font-size="16" fill="%s">%s...</text>
    %s
  </g>
  <text x="512" y="750" text-anchor="middle" font-family="Arial, sans-serif" font-size="14" fill="white" opacity="0.7">Synthetic placeholder asset</text>
  <text x="512" y="775" text-anchor="middle" font-family="Arial, sans-serif" font-size="12" fill="%s" opacity="0.6">%s</text>
</svg>`,
		size, size, size, size,
		scheme.Primary, scheme.Secondary, scheme.Primary,
		scheme.Text, scheme.Primary,
		size, size,
		scheme.Text, scheme.Secondary, scheme.Secondary, scheme.Text,
		scheme.Text,
		scheme.Text, escapeText(titleCase(opts.Model)),
		scheme.Text, escapeText(truncate(style, 60)),
		keywordTexts.String(),
		scheme.Text, opts.Now.Format("2006-01-02"))

	return b.String()
}

func renderSimple(opts RenderOptions) string {
	scheme := ColorScheme{Primary: "#667EEA", Secondary: "#764BA2", Text: "#F5F5F5"}
	style := "Digital Art"
	if opts.Profile != nil {
		scheme = opts.Profile.Colors
		if s := sanitizeLabel(opts.Profile.Style, 40); s != "" {
			style = s
		}
	}
	title := sanitizeLabel(opts.Prompt, 30)
	if title == "" {
		title = "Generated Image"
	}

	return fmt.Sprintf(`<svg width="512" height="512" viewBox="0 0 512 512" xmlns="http://www.w3.org/2000/svg">
  <defs>
    <linearGradient id="bg" x1="0%%" y1="0%%" x2="100%%" y2="100%%">
      <stop offset="0%%" style="stop-color:%s;stop-opacity:1" />
      <stop offset="100%%" style="stop-color:%s;stop-opacity:1" />
    </linearGradient>
  </defs>
  <rect width="512" height="512" fill="url(#bg)"/>
  <circle cx="256" cy="200" r="80" fill="%s" opacity="0.3"/>
  <text x="256" y="260" text-anchor="middle" dominant-baseline="middle" font-family="Arial, sans-serif" font-size="20" fill="white">AI Generated</text>
  <text x="256" y="290" text-anchor="middle" font-family="Arial, sans-serif" font-size="14" fill="%s">%s</text>
  <text x="256" y="310" text-anchor="middle" font-family="Arial, sans-serif" font-size="12" fill="%s">%s</text>
</svg>`, scheme.Primary, scheme.Secondary, scheme.Text, scheme.Text, escapeText(title), scheme.Text, escapeText(style))
}

func truncate(s string, budget int) string {
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget]) + "..."
}

// sanitizeLabel strips punctuation that would break SVG text nodes and trims
// to the given rune budget.
func sanitizeLabel(s string, budget int) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == ',' || r == '-':
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	runes := []rune(out)
	if len(runes) > budget {
		out = string(runes[:budget])
	}
	return strings.TrimSpace(out)
}

func descriptionKeywords(text string, limit int) []string {
	var words []string
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if len(word) > 3 {
			words = append(words, word)
		}
		if len(words) == limit {
			break
		}
	}
	return words
}

func escapeText(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return replacer.Replace(s)
}

func titleCase(s string) string {
	if s == "" {
		return "AI"
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
