package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"tileviz/internal/catalog"
	"tileviz/internal/infra"
	"tileviz/internal/storage"
	"tileviz/internal/visualizer"
)

type App struct {
	Config     *infra.Config
	Logger     zerolog.Logger
	Catalog    *catalog.Catalog
	Visualizer *visualizer.Service
	Store      *storage.FileStore
}

func NewApp(cfg *infra.Config, logger zerolog.Logger, cat *catalog.Catalog, svc *visualizer.Service, store *storage.FileStore) *App {
	return &App{Config: cfg, Logger: logger, Catalog: cat, Visualizer: svc, Store: store}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// clientError reports a rejected input as HTTP 400. The extra fields carry
// diagnostics such as attempted paths alongside the stable "error" key.
func (a *App) clientError(w http.ResponseWriter, message string, extra map[string]any) {
	body := map[string]any{"error": message}
	for k, v := range extra {
		body[k] = v
	}
	a.json(w, http.StatusBadRequest, body)
}

// serverError reports a processing or provider failure as HTTP 500.
func (a *App) serverError(w http.ResponseWriter, message, details string) {
	a.json(w, http.StatusInternalServerError, map[string]any{
		"success": false,
		"error":   "Failed to process visualization",
		"message": message,
		"details": details,
	})
}
