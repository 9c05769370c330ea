package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RenderNotFoundError reports a failed render lookup with enough context to
// debug deployment path mismatches: every candidate path tried and a listing
// of the nearest directory that actually exists.
type RenderNotFoundError struct {
	RenderPath  string
	Attempted   []string
	DirContents []string
}

func (e *RenderNotFoundError) Error() string {
	return fmt.Sprintf("render image not found: %s (tried %s)", e.RenderPath, strings.Join(e.Attempted, ", "))
}

// ResolveRender maps a public-relative render path (as sent by the UI, e.g.
// "/room_renders/kitchen/kitchen 1.jpg") to an absolute path on disk. The
// primary public dir is tried first, then a public dir under the process
// working directory; the main process and deploy scripts have historically
// disagreed on the working directory, so both bases are tolerated.
func ResolveRender(publicDir, renderPath string) (string, error) {
	rel := strings.TrimPrefix(strings.TrimSpace(renderPath), "/")
	if rel == "" {
		return "", &RenderNotFoundError{RenderPath: renderPath}
	}

	candidates := []string{filepath.Clean(filepath.Join(publicDir, filepath.FromSlash(rel)))}
	if wd, err := os.Getwd(); err == nil {
		alt := filepath.Clean(filepath.Join(wd, "public", filepath.FromSlash(rel)))
		if alt != candidates[0] {
			candidates = append(candidates, alt)
		}
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", &RenderNotFoundError{
		RenderPath:  renderPath,
		Attempted:   candidates,
		DirContents: listNearestParent(candidates[0]),
	}
}

// listNearestParent walks up from the missing path until it finds an existing
// directory and returns its entries.
func listNearestParent(path string) []string {
	dir := filepath.Dir(path)
	for i := 0; i < 16; i++ {
		entries, err := os.ReadDir(dir)
		if err == nil {
			names := make([]string, 0, len(entries))
			for _, entry := range entries {
				names = append(names, entry.Name())
			}
			return names
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil
}
