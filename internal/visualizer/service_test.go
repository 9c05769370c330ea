package visualizer

import (
	"context"
	"errors"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"tileviz/internal/imageproc"
	"tileviz/internal/storage"
)

type fakeTransformer struct {
	calls int
	url   string
	err   error
}

func (f *fakeTransformer) Transform(ctx context.Context, prompt string, images [][]byte) (string, error) {
	f.calls++
	return f.url, f.err
}

func saveJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 180, G: 160, B: 140, A: 255})
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
}

func noSleep(ctx context.Context, d time.Duration) error { return nil }

type fixture struct {
	svc       *Service
	req       Request
	publicDir string
	staging   string
}

func newFixture(t *testing.T, tr Transformer) fixture {
	t.Helper()
	src := t.TempDir()
	room := filepath.Join(src, "room.jpg")
	tile := filepath.Join(src, "tile.jpg")
	saveJPEG(t, room, 1200, 800)
	saveJPEG(t, tile, 64, 64)

	publicDir := t.TempDir()
	store, err := storage.NewFileStore(publicDir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	staging := t.TempDir()
	svc := &Service{
		Transformer: tr,
		Store:       store,
		Downloader:  imageproc.Downloader{Sleep: noSleep},
		StagingRoot: staging,
		Timeout:     time.Minute,
		Logger:      zerolog.Nop(),
	}
	return fixture{
		svc:       svc,
		req:       Request{RoomImagePath: room, FloorTilePath: tile, Mode: ModeFloor, RequestID: "test"},
		publicDir: publicDir,
		staging:   staging,
	}
}

func resultImageServer(t *testing.T, w, h int) *httptest.Server {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 90, G: 90, B: 200, A: 255})
	data, err := imageproc.EncodeJPEG(img)
	if err != nil {
		t.Fatalf("encode result fixture: %v", err)
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(data)
	}))
}

func TestVisualizeProducesArtifactWithOriginalDimensions(t *testing.T) {
	ts := resultImageServer(t, 1104, 824)
	defer ts.Close()
	fx := newFixture(t, &fakeTransformer{url: ts.URL + "/out.jpg"})

	res, err := fx.svc.Visualize(context.Background(), fx.req)
	if err != nil {
		t.Fatalf("Visualize: %v", err)
	}
	if !strings.HasPrefix(res.ImageURL, "/"+ArtifactPrefix) {
		t.Fatalf("unexpected artifact url %s", res.ImageURL)
	}
	artifact := filepath.Join(fx.publicDir, strings.TrimPrefix(res.ImageURL, "/"))
	img, err := imaging.Open(artifact)
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	if img.Bounds().Dx() != 1200 || img.Bounds().Dy() != 800 {
		t.Fatalf("artifact is %dx%d, want 1200x800", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestVisualizeCleansStagingOnSuccess(t *testing.T) {
	ts := resultImageServer(t, 600, 400)
	defer ts.Close()
	fx := newFixture(t, &fakeTransformer{url: ts.URL + "/out.jpg"})

	if _, err := fx.svc.Visualize(context.Background(), fx.req); err != nil {
		t.Fatalf("Visualize: %v", err)
	}
	entries, err := os.ReadDir(fx.staging)
	if err != nil {
		t.Fatalf("read staging root: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("staging dirs left behind: %v", entries)
	}
}

func TestVisualizeCleansStagingOnProviderFailure(t *testing.T) {
	fx := newFixture(t, &fakeTransformer{err: errors.New("provider exploded")})

	_, err := fx.svc.Visualize(context.Background(), fx.req)
	if err == nil {
		t.Fatalf("expected provider failure")
	}
	if !strings.Contains(err.Error(), "provider exploded") {
		t.Fatalf("underlying error text missing: %v", err)
	}
	entries, _ := os.ReadDir(fx.staging)
	if len(entries) != 0 {
		t.Fatalf("staging dirs left behind after failure: %v", entries)
	}
}

func TestVisualizeNoUsableOutput(t *testing.T) {
	fx := newFixture(t, &fakeTransformer{url: ""})

	_, err := fx.svc.Visualize(context.Background(), fx.req)
	if !errors.Is(err, ErrNoOutput) {
		t.Fatalf("expected ErrNoOutput, got %v", err)
	}
}

func TestVisualizeDownloadFailureIsFatal(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()
	fx := newFixture(t, &fakeTransformer{url: ts.URL + "/gone.jpg"})

	if _, err := fx.svc.Visualize(context.Background(), fx.req); err == nil {
		t.Fatalf("expected download failure to be fatal")
	}
}

func TestVisualizeUndecodableResultDegradesToRawBytes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("definitely not a jpeg"))
	}))
	defer ts.Close()
	fx := newFixture(t, &fakeTransformer{url: ts.URL + "/out.jpg"})

	res, err := fx.svc.Visualize(context.Background(), fx.req)
	if err != nil {
		t.Fatalf("resize failure must degrade, not fail: %v", err)
	}
	artifact := filepath.Join(fx.publicDir, strings.TrimPrefix(res.ImageURL, "/"))
	data, err := os.ReadFile(artifact)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(data) != "definitely not a jpeg" {
		t.Fatalf("raw bytes should be served unchanged")
	}
}

func TestVisualizeValidatesModeInvariants(t *testing.T) {
	fx := newFixture(t, &fakeTransformer{})

	req := fx.req
	req.Mode = ModeWalls
	req.WallTilePath = ""
	_, err := fx.svc.Visualize(context.Background(), req)
	ie, ok := AsInputError(err)
	if !ok {
		t.Fatalf("expected InputError, got %v", err)
	}
	if !strings.Contains(ie.Message, "Wall tile") {
		t.Fatalf("error should name the wall tile: %s", ie.Message)
	}

	req = fx.req
	req.FloorTilePath = ""
	if _, err := fx.svc.Visualize(context.Background(), req); err == nil {
		t.Fatalf("floor mode without floor tile must fail")
	}
}

func TestVisualizeArtifactNamesAreDistinct(t *testing.T) {
	ts := resultImageServer(t, 300, 200)
	defer ts.Close()
	fx := newFixture(t, &fakeTransformer{url: ts.URL + "/out.jpg"})

	seen := map[string]struct{}{}
	for i := 0; i < 5; i++ {
		res, err := fx.svc.Visualize(context.Background(), fx.req)
		if err != nil {
			t.Fatalf("Visualize: %v", err)
		}
		if _, dup := seen[res.ImageURL]; dup {
			t.Fatalf("artifact name collision: %s", res.ImageURL)
		}
		seen[res.ImageURL] = struct{}{}
	}
}

func TestVisualizeTimeoutMessage(t *testing.T) {
	slow := &slowTransformer{}
	fx := newFixture(t, slow)
	fx.svc.Timeout = 10 * time.Millisecond

	_, err := fx.svc.Visualize(context.Background(), fx.req)
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

type slowTransformer struct{}

func (s *slowTransformer) Transform(ctx context.Context, prompt string, images [][]byte) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
