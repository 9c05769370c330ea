package infra

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("REPLICATE_API_TOKEN", "r8_test")
	t.Setenv("SERVER_ROOT", "/srv/tileviz")
	t.Setenv("PORT", "")
	t.Setenv("REPLICATE_MODEL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "3003" {
		t.Fatalf("Port mismatch: got %q want %q", cfg.Port, "3003")
	}
	if cfg.ReplicateModel != "google/nano-banana" {
		t.Fatalf("ReplicateModel mismatch: got %q", cfg.ReplicateModel)
	}
	if cfg.PublicDir != filepath.Join("/srv/tileviz", "public") {
		t.Fatalf("PublicDir mismatch: got %q", cfg.PublicDir)
	}
	if cfg.VisualizeTimeout != 5*time.Minute {
		t.Fatalf("VisualizeTimeout mismatch: got %s", cfg.VisualizeTimeout)
	}
	if cfg.ArtifactSweep {
		t.Fatalf("ArtifactSweep should default to false")
	}
}

func TestLoadConfigRequiresToken(t *testing.T) {
	t.Setenv("REPLICATE_API_TOKEN", "")
	t.Setenv("SERVER_ROOT", "/srv/tileviz")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when REPLICATE_API_TOKEN missing")
	}
}

func TestLoadConfigStretchesWriteTimeout(t *testing.T) {
	t.Setenv("REPLICATE_API_TOKEN", "r8_test")
	t.Setenv("SERVER_ROOT", "/srv/tileviz")
	t.Setenv("VISUALIZE_TIMEOUT_SECONDS", "600")
	t.Setenv("HTTP_WRITE_TIMEOUT_SECONDS", "30")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.HTTPWriteTimeout <= cfg.VisualizeTimeout {
		t.Fatalf("write timeout %s not stretched past visualize ceiling %s", cfg.HTTPWriteTimeout, cfg.VisualizeTimeout)
	}
}

func TestLoadConfigSplitsCORSOrigins(t *testing.T) {
	t.Setenv("REPLICATE_API_TOKEN", "r8_test")
	t.Setenv("SERVER_ROOT", "/srv/tileviz")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://tiles.example.com, http://localhost:5173 ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := []string{"https://tiles.example.com", "http://localhost:5173"}
	if len(cfg.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins mismatch: %#v", cfg.CORSOrigins)
	}
	for i, origin := range want {
		if cfg.CORSOrigins[i] != origin {
			t.Fatalf("CORSOrigins[%d] = %q, want %q", i, cfg.CORSOrigins[i], origin)
		}
	}
}
