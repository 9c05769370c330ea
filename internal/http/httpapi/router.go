package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tileviz/internal/http/handlers"
	"tileviz/internal/middleware"
)

// NewRouter wires the HTTP surface: the health probe, the visualization
// endpoint, generated artifact serving and the static public tree.
func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(app.Logger))
	r.Use(middleware.CORS(app.Config.CORSOrigins))
	r.Use(middleware.Recoverer(app.Logger))

	r.Get("/health", app.Health)
	r.Post("/api/visualize", app.Visualize)
	r.Get("/{artifact:temp_resized_.+}", app.ServeArtifact)
	r.Handle("/public/*", http.StripPrefix("/public/", http.FileServer(http.Dir(app.Config.PublicDir))))

	return r
}
