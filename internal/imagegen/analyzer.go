package imagegen

import "strings"

// Analysis is the bounded signal set extracted from free-text prompts. Colors
// and objects preserve vocabulary scan order with duplicates removed; Mood is
// always exactly one category name or "neutral".
type Analysis struct {
	Colors  []string
	Objects []string
	Mood    string
	Style   string
}

// MoodNeutral is the mood reported when no category keyword matches and the
// style profile supplies no category of its own.
const MoodNeutral = "neutral"

var colorVocabulary = []string{
	"blue", "red", "green", "yellow", "orange", "purple", "pink", "white", "black",
}

var objectVocabulary = []string{
	"person", "building", "tree", "car", "food", "computer", "phone", "book", "mountain", "ocean",
}

type moodCategory struct {
	name     string
	keywords []string
}

// Category order is a deliberate tie-break: the first matching category wins.
var moodCategories = []moodCategory{
	{name: "dramatic", keywords: []string{"dramatic", "intense", "powerful", "emotional"}},
	{name: "bright", keywords: []string{"bright", "happy", "cheerful", "colorful", "vibrant"}},
	{name: "calm", keywords: []string{"calm", "peaceful", "serene", "quiet", "gentle"}},
	{name: "professional", keywords: []string{"professional", "business", "corporate", "formal"}},
	{name: "natural", keywords: []string{"nature", "natural", "outdoor", "green", "organic"}},
}

// Analyze scans the prompt and scene description for known color words, object
// words, and a single mood category. It is a pure function of its inputs and
// the fixed vocabularies; it never fails, even on empty input.
func Analyze(prompt, scene string, profile *StyleProfile) Analysis {
	lowerPrompt := strings.ToLower(prompt)
	lowerScene := strings.ToLower(scene)
	contains := func(word string) bool {
		return strings.Contains(lowerPrompt, word) || strings.Contains(lowerScene, word)
	}

	analysis := Analysis{Mood: MoodNeutral, Style: "realistic"}
	if profile != nil {
		analysis.Mood = profile.Category
		analysis.Style = profile.Style
	}

	for _, color := range colorVocabulary {
		if contains(color) {
			analysis.Colors = append(analysis.Colors, color)
		}
	}
	for _, object := range objectVocabulary {
		if contains(object) {
			analysis.Objects = append(analysis.Objects, object)
		}
	}
	for _, category := range moodCategories {
		matched := false
		for _, keyword := range category.keywords {
			if contains(keyword) {
				matched = true
				break
			}
		}
		if matched {
			analysis.Mood = category.name
			break
		}
	}
	return analysis
}
