package uploads

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func fileHeader(t *testing.T, field, filename, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + filename + `"`}
	if contentType != "" {
		header["Content-Type"] = []string{contentType}
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse form: %v", err)
	}
	return req.MultipartForm.File[field][0]
}

func TestValidateAcceptsImageMIME(t *testing.T) {
	fh := fileHeader(t, "roomImage", "room.bin", "image/jpeg", []byte{0xff, 0xd8})
	if err := Validate("roomImage", fh); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateAcceptsImageExtension(t *testing.T) {
	fh := fileHeader(t, "roomImage", "room.PNG", "application/octet-stream", []byte{1})
	if err := Validate("roomImage", fh); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsNonImage(t *testing.T) {
	fh := fileHeader(t, "roomImage", "notes.txt", "text/plain", []byte("hello"))
	err := Validate("roomImage", fh)
	if err == nil {
		t.Fatalf("expected rejection")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if ve.Field != "roomImage" {
		t.Fatalf("field mismatch: %s", ve.Field)
	}
}

func TestSaveWritesUniqueName(t *testing.T) {
	dir := t.TempDir()
	fh := fileHeader(t, "customTileFile", "swatch.jpg", "image/jpeg", []byte{0xff, 0xd8, 0xff})

	first, err := Save(dir, "customTileFile", fh)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := Save(dir, "customTileFile", fh)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if first == second {
		t.Fatalf("expected unique names, both were %s", first)
	}
	if !strings.Contains(first, "customTileFile-") {
		t.Fatalf("name should carry the field prefix: %s", first)
	}
	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if len(data) != 3 {
		t.Fatalf("saved content mismatch: %d bytes", len(data))
	}
}

func TestRemoveIgnoresMissing(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/gone.jpg"
	Remove(path, "", path)
}
