package handlers

import (
	"net/http"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shortvid/internal/imagegen"
)

type modelEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Category    string `json:"category"`
	Style       string `json:"style"`
	Mood        string `json:"mood"`
	Default     bool   `json:"default"`
}

type modelsResponse struct {
	Models  []modelEntry `json:"models"`
	Default string       `json:"default"`
}

var displayCaser = cases.Title(language.English)

// ListModels handles GET /v1/models and returns the fixed style catalog.
func (a *App) ListModels(w http.ResponseWriter, r *http.Request) {
	profiles := imagegen.Styles()
	models := make([]modelEntry, 0, len(profiles))
	for _, p := range profiles {
		models = append(models, modelEntry{
			ID:          p.ID,
			Name:        p.Name,
			DisplayName: displayCaser.String(p.DisplayName),
			Category:    p.Category,
			Style:       p.Style,
			Mood:        p.Mood,
			Default:     p.ID == imagegen.DefaultStyleID,
		})
	}
	a.json(w, http.StatusOK, modelsResponse{Models: models, Default: imagegen.DefaultStyleID})
}
