package imagegen

import (
	"fmt"
	"strings"
)

var qualityInstructions = map[string]string{
	"standard": "Create clear, visually appealing images with good composition.",
	"high":     "Generate high-quality, detailed images with excellent lighting and composition.",
	"premium":  "Create premium, professional-grade images with exceptional detail, perfect lighting, and artistic composition.",
}

// OptimizePrompt normalizes a raw user prompt for the image provider: long
// prompts are clipped, Korean text is tagged so the model keeps the language,
// and the style profile's descriptors are appended.
func OptimizePrompt(prompt string, profile *StyleProfile) string {
	if profile == nil {
		profile = DefaultStyle()
	}
	runes := []rune(prompt)
	if len(runes) > 200 {
		prompt = string(runes[:200]) + "..."
	}
	if containsHangul(prompt) {
		prompt = "[Korean Content] " + prompt
	}
	return fmt.Sprintf("%s. Style: %s. Mood: %s", prompt, profile.Style, profile.Mood)
}

// BuildDescriptionPrompt produces the instruction sent to the text model when
// expanding a prompt into a richer visual description.
func BuildDescriptionPrompt(prompt string, profile *StyleProfile, quality, aspectRatio string) string {
	if profile == nil {
		profile = DefaultStyle()
	}
	instruction, ok := qualityInstructions[quality]
	if !ok {
		instruction = qualityInstructions["standard"]
	}

	var b strings.Builder
	b.WriteString("You are an expert AI image description generator. Create a detailed visual description for:\n\n")
	fmt.Fprintf(&b, "%q\n\n", prompt)
	b.WriteString("Requirements:\n")
	b.WriteString("- Visual Elements: Focus on colors, composition, lighting, and artistic style\n")
	fmt.Fprintf(&b, "- Style Reference: %s\n", profile.Style)
	fmt.Fprintf(&b, "- Target Mood: %s\n", profile.Mood)
	fmt.Fprintf(&b, "- Quality Level: %s\n", instruction)
	fmt.Fprintf(&b, "- Aspect Ratio: %s\n", aspectRatio)
	b.WriteString("- Length: 100-200 words\n")
	b.WriteString("- Format: Professional, descriptive, visually rich\n")
	return b.String()
}
