package visualizer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Fixed file names inside a staging directory, so downstream steps never need
// to know the original upload names.
const (
	stagedTileName     = "tile.jpg"
	stagedWallTileName = "wall_tile.jpg"
	stagedRoomName     = "corrected_room.jpg"
)

// StagingJob owns one request's temporary working directory. The resolved
// material images are copied into it under fixed names; Close removes the
// whole directory and is safe on every exit path.
type StagingJob struct {
	Dir          string
	TilePath     string
	WallTilePath string
}

// NewStagingJob allocates a uniquely named directory under baseDir and copies
// the request's material sources into it. Missing or empty sources fail fast
// here, before any external call is spent on a doomed request.
func NewStagingJob(baseDir string, req Request) (*StagingJob, error) {
	name := fmt.Sprintf("temp_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
	dir := filepath.Join(baseDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("staging: create %s: %w", dir, err)
	}

	job := &StagingJob{Dir: dir}
	if req.FloorTilePath != "" {
		dst := filepath.Join(dir, stagedTileName)
		if err := copySource("Tile image", req.FloorTilePath, dst); err != nil {
			job.Close()
			return nil, err
		}
		job.TilePath = dst
	}
	if req.WallTilePath != "" {
		dst := filepath.Join(dir, stagedWallTileName)
		if err := copySource("Wall tile", req.WallTilePath, dst); err != nil {
			job.Close()
			return nil, err
		}
		job.WallTilePath = dst
	}
	return job, nil
}

// WriteRoom persists the orientation-corrected room image into the staging
// directory and returns its path.
func (j *StagingJob) WriteRoom(data []byte) (string, error) {
	path := filepath.Join(j.Dir, stagedRoomName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("staging: write corrected room: %w", err)
	}
	return path, nil
}

// Close removes the staging directory and everything in it. Idempotent.
func (j *StagingJob) Close() {
	if j == nil || j.Dir == "" {
		return
	}
	_ = os.RemoveAll(j.Dir)
}

// CheckSource verifies that a source image exists and is non-empty, returning
// a client-facing InputError otherwise.
func CheckSource(label, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &InputError{
			Message: label + " file not found",
			Details: map[string]any{"path": path},
		}
	}
	if info.Size() == 0 {
		return &InputError{
			Message: label + " file is empty",
			Details: map[string]any{"path": path},
		}
	}
	return nil
}

func copySource(label, src, dst string) error {
	if err := CheckSource(label, src); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("staging: open %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("staging: create %s: %w", dst, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("staging: copy %s: %w", src, err)
	}
	return nil
}
