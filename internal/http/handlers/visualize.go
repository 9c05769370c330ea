package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"tileviz/internal/catalog"
	"tileviz/internal/middleware"
	"tileviz/internal/storage"
	"tileviz/internal/uploads"
	"tileviz/internal/visualizer"
)

// Visualize handles POST /api/visualize: it takes the multipart form apart,
// resolves the room image and material images to files on disk, hands the
// resolved job to the visualizer service and maps the outcome onto the JSON
// wire contract. Uploaded source files are removed on every exit path; only
// the generated artifact survives the request.
func (a *App) Visualize(w http.ResponseWriter, r *http.Request) {
	rid := middleware.RequestIDFromContext(r.Context())
	log := a.Logger.With().Str("request_id", rid).Logger()

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		a.clientError(w, "Invalid multipart form: "+err.Error(), nil)
		return
	}

	mode := visualizer.NormalizeMode(r.FormValue("visualizationType"))
	tileID := strings.TrimSpace(r.FormValue("tileId"))

	var uploaded []string
	defer func() { uploads.Remove(uploaded...) }()

	saveUpload := func(field string) (string, error) {
		fh := formFile(r, field)
		if fh == nil {
			return "", nil
		}
		path, err := uploads.Save(a.Config.UploadDir, field, fh)
		if err != nil {
			return "", err
		}
		uploaded = append(uploaded, path)
		return path, nil
	}

	roomPath, err := saveUpload("roomImage")
	if err != nil {
		a.clientError(w, err.Error(), nil)
		return
	}
	if roomPath == "" {
		roomPath, err = a.resolveRenderPath(r.FormValue("renderImagePath"))
		if err != nil {
			var nf *storage.RenderNotFoundError
			if errors.As(err, &nf) {
				a.clientError(w, "Render image not found on server", map[string]any{
					"renderPath":        nf.RenderPath,
					"attempted":         nf.Attempted,
					"directoryContents": nf.DirContents,
				})
				return
			}
			a.clientError(w, err.Error(), nil)
			return
		}
	}
	if roomPath == "" {
		a.clientError(w, "No room image uploaded or render path provided", nil)
		return
	}

	wallPath, err := saveUpload("wallTileFile")
	if err != nil {
		a.clientError(w, err.Error(), nil)
		return
	}
	if (mode == visualizer.ModeWalls || mode == visualizer.ModeBoth) && wallPath == "" {
		a.clientError(w, "Wall tile image is required for wall visualization", nil)
		return
	}

	var floorPath string
	if mode == visualizer.ModeFloor || mode == visualizer.ModeBoth {
		if tileID == "" {
			a.clientError(w, "No tile ID provided", nil)
			return
		}
		customPath, err := saveUpload("customTileFile")
		if err != nil {
			a.clientError(w, err.Error(), nil)
			return
		}
		if catalog.IsCustomID(tileID) && customPath != "" {
			floorPath = customPath
		} else {
			path, ok := a.Catalog.Lookup(tileID)
			if !ok {
				a.clientError(w, "Invalid tile ID", map[string]any{"tileId": tileID})
				return
			}
			floorPath = path
		}
	}

	log.Info().
		Str("mode", string(mode)).
		Str("tile_id", tileID).
		Str("room", roomPath).
		Msg("visualization requested")

	res, err := a.Visualizer.Visualize(r.Context(), visualizer.Request{
		RoomImagePath: roomPath,
		FloorTilePath: floorPath,
		WallTilePath:  wallPath,
		Mode:          mode,
		RequestID:     rid,
	})
	if err != nil {
		if ie, ok := visualizer.AsInputError(err); ok {
			a.clientError(w, ie.Message, ie.Details)
			return
		}
		log.Error().Err(err).Msg("visualization failed")
		a.serverError(w, err.Error(), fmt.Sprintf("%+v", err))
		return
	}

	log.Info().Str("image_url", res.ImageURL).Msg("visualization completed")
	a.json(w, http.StatusOK, map[string]any{
		"success":  true,
		"imageUrl": res.ImageURL,
		"message":  "Visualization completed successfully",
	})
}

// resolveRenderPath maps an optional URL-encoded render path from the form to
// a readable file under the public tree. Empty input yields ("", nil).
func (a *App) resolveRenderPath(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		decoded = raw
	}
	return storage.ResolveRender(a.Config.PublicDir, decoded)
}

func formFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}
