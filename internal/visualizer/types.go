package visualizer

import (
	"context"
	"strings"
)

// Mode enumerates which room surfaces get replaced.
type Mode string

const (
	ModeFloor Mode = "floor"
	ModeWalls Mode = "walls"
	ModeBoth  Mode = "both"
)

// NormalizeMode sanitizes free-form user input into a supported mode.
func NormalizeMode(mode string) Mode {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case string(ModeWalls):
		return ModeWalls
	case string(ModeBoth):
		return ModeBoth
	default:
		return ModeFloor
	}
}

// Request is one resolved visualization job: the room image on disk plus the
// material image paths the mode calls for. It lives for a single HTTP request
// and is never persisted.
type Request struct {
	RoomImagePath string
	FloorTilePath string
	WallTilePath  string
	Mode          Mode
	RequestID     string
}

// Validate enforces the mode/material invariants: floor mode needs a floor
// material, walls mode a wall material, both mode needs both.
func (r Request) Validate() error {
	if strings.TrimSpace(r.RoomImagePath) == "" {
		return &InputError{Message: "No room image uploaded or render path provided"}
	}
	if (r.Mode == ModeFloor || r.Mode == ModeBoth) && strings.TrimSpace(r.FloorTilePath) == "" {
		return &InputError{Message: "No tile ID provided"}
	}
	if (r.Mode == ModeWalls || r.Mode == ModeBoth) && strings.TrimSpace(r.WallTilePath) == "" {
		return &InputError{Message: "Wall tile image is required for wall visualization"}
	}
	return nil
}

// Result is the successful outcome: a public-relative artifact URL.
type Result struct {
	ImageURL string
}

// Transformer is the external image-to-image provider boundary: a prompt and
// an ordered list of reference images in, a result URL out. An empty URL with
// a nil error means the provider answered without usable output.
type Transformer interface {
	Transform(ctx context.Context, prompt string, images [][]byte) (string, error)
}
