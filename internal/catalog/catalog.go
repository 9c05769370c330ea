package catalog

import (
	"path/filepath"
	"strings"
)

// CustomTilePrefix marks tile ids that refer to a freshly uploaded material
// rather than a predefined catalog entry.
const CustomTilePrefix = "custom-tile-"

// Catalog maps material ids to tile image paths on disk. It is populated once
// at startup and read-only afterwards, so concurrent request handlers can
// share it without locking.
type Catalog struct {
	tiles map[string]string
}

// New builds a catalog from an id → path mapping.
func New(tiles map[string]string) *Catalog {
	copied := make(map[string]string, len(tiles))
	for id, path := range tiles {
		copied[id] = path
	}
	return &Catalog{tiles: copied}
}

// Default returns the built-in tile catalog rooted at publicDir.
func Default(publicDir string) *Catalog {
	tile := func(name string) string {
		return filepath.Join(publicDir, "tiles", name)
	}
	return New(map[string]string{
		"marble-white-001":  tile("marble-tile.jpg"),
		"oak-wood-002":      tile("oak-wood.webp"),
		"oak-wood-001":      tile("wooden-tile.jpg"),
		"slate-grey-003":    tile("design-tile.jpg"),
		"terracotta-004":    tile("terracotta-004.jpg"),
		"black-granite-005": tile("black-granite-005.jpg"),
		"hexagon-white-006": tile("hexagon-white-006.jpg"),
	})
}

// Lookup resolves a predefined tile id to its image path.
func (c *Catalog) Lookup(id string) (string, bool) {
	if c == nil {
		return "", false
	}
	path, ok := c.tiles[strings.TrimSpace(id)]
	return path, ok
}

// IsCustomID reports whether the id denotes a custom uploaded tile.
func IsCustomID(id string) bool {
	return strings.HasPrefix(strings.TrimSpace(id), CustomTilePrefix)
}
