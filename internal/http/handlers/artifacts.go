package handlers

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
)

// ServeArtifact serves a generated image from the public directory with
// caching disabled. Artifact names are unique per request, but browsers and
// the CDN in front of the marketing site have served stale results before, so
// every response carries a fresh validator set.
func (a *App) ServeArtifact(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "artifact")
	path, err := a.Store.Path(name)
	if err != nil {
		a.json(w, http.StatusNotFound, map[string]string{"error": "Resized image not found"})
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		a.json(w, http.StatusNotFound, map[string]string{"error": "Resized image not found"})
		return
	}
	f, err := os.Open(path)
	if err != nil {
		a.json(w, http.StatusNotFound, map[string]string{"error": "Resized image not found"})
		return
	}
	defer f.Close()

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Header().Set("ETag", fmt.Sprintf("%q", fmt.Sprintf("%x-%x", info.ModTime().UnixNano(), info.Size())))
	http.ServeContent(w, r, name, info.ModTime(), f)
}
