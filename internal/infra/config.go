package infra

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	ReplicateAPIToken  string
	ReplicateModel     string
	ServerRoot         string
	PublicDir          string
	UploadDir          string
	CORSOrigins        []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	VisualizeTimeout   time.Duration
	ArtifactSweep      bool
	ArtifactMaxAge     time.Duration
	ArtifactSweepEvery time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	root := strings.TrimSpace(os.Getenv("SERVER_ROOT"))
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		root = wd
	}

	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "3003"),
		ReplicateAPIToken:  os.Getenv("REPLICATE_API_TOKEN"),
		ReplicateModel:     getEnv("REPLICATE_MODEL", "google/nano-banana"),
		ServerRoot:         root,
		PublicDir:          filepath.Join(root, "public"),
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		CORSOrigins:        splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 360)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		VisualizeTimeout:   time.Second * time.Duration(getEnvInt("VISUALIZE_TIMEOUT_SECONDS", 300)),
		ArtifactSweep:      getEnvBool("ARTIFACT_SWEEP_ENABLED", false),
		ArtifactMaxAge:     time.Second * time.Duration(getEnvInt("ARTIFACT_MAX_AGE_SECONDS", 3600)),
		ArtifactSweepEvery: time.Second * time.Duration(getEnvInt("ARTIFACT_SWEEP_INTERVAL_SECONDS", 600)),
	}

	if cfg.ReplicateAPIToken == "" {
		return nil, fmt.Errorf("REPLICATE_API_TOKEN is required")
	}

	// The write timeout must outlive the visualize ceiling or the response
	// gets cut off mid-request.
	if cfg.HTTPWriteTimeout <= cfg.VisualizeTimeout {
		cfg.HTTPWriteTimeout = cfg.VisualizeTimeout + time.Minute
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
