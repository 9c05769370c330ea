package uploads

import (
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MaxFileSize caps each uploaded part at 10 MiB.
const MaxFileSize = 10 << 20

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
	".bmp":  {},
}

// ValidationError describes a rejected upload, naming the offending field so
// the client can point at the right input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate checks that the part looks like an image (by MIME type or
// extension) and fits the size cap.
func Validate(field string, fh *multipart.FileHeader) error {
	if fh.Size > MaxFileSize {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("file too large (%d bytes, limit %d)", fh.Size, MaxFileSize)}
	}
	mime := fh.Header.Get("Content-Type")
	if strings.HasPrefix(mime, "image/") {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if _, ok := imageExtensions[ext]; ok {
		return nil
	}
	if mime == "" {
		mime = "unknown type"
	}
	return &ValidationError{Field: field, Reason: "only image files are allowed, received: " + mime}
}

// Save validates the part and writes it under dir with a unique name in the
// form "<field>-<unixms>-<rand><ext>", returning the absolute path.
func Save(dir, field string, fh *multipart.FileHeader) (string, error) {
	if err := Validate(field, fh); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("uploads: ensure dir: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("uploads: open part %s: %w", field, err)
	}
	defer src.Close()

	name := fmt.Sprintf("%s-%d-%d%s", field, time.Now().UnixMilli(), rand.Int63n(1e9), strings.ToLower(filepath.Ext(fh.Filename)))
	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("uploads: create %s: %w", path, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, MaxFileSize+1)); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("uploads: write %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// Remove deletes uploaded source files, ignoring paths that are already gone.
// Catalog tiles and renders are never passed here.
func Remove(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		_ = os.Remove(path)
	}
}
