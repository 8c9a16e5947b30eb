package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"shortvid/internal/http/handlers"
	"shortvid/internal/middleware"
)

// RouterOptions wires cross-cutting request behavior.
type RouterOptions struct {
	RateLimitPerMin int
	CountryLookup   middleware.CountryLookup
	AllowedOrigins  []string
	DefaultLocale   string
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
	)
	if app.Logger != nil {
		r.Use(middleware.Logger(*app.Logger))
	}
	if len(opts.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(opts.AllowedOrigins))
	}
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}
	r.Use(middleware.I18N(opts.DefaultLocale, opts.CountryLookup))

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/models", app.ListModels)

	r.Route("/v1/images", func(r chi.Router) {
		r.Post("/", app.GenerateImage)
		r.Get("/", app.ListImages)
		r.Get("/zip", app.DownloadArchive)
		r.Post("/batch", app.GenerateImageBatch)
		r.Get("/{image_id}", app.GetImage)
		r.Delete("/{image_id}", app.DeleteImage)
	})

	r.Post("/v1/audio", app.GenerateAudio)

	return r
}
