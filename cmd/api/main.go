package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tileviz/internal/catalog"
	"tileviz/internal/http/handlers"
	"tileviz/internal/http/httpapi"
	"tileviz/internal/imageproc"
	"tileviz/internal/infra"
	"tileviz/internal/providers/replicate"
	"tileviz/internal/storage"
	"tileviz/internal/visualizer"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		bootLogger := infra.NewLogger("production")
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger := infra.NewLogger(cfg.AppEnv)

	store, err := storage.NewFileStore(cfg.PublicDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize artifact store")
	}

	transformer, err := replicate.NewClient(replicate.Options{
		Token:  cfg.ReplicateAPIToken,
		Model:  cfg.ReplicateModel,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize replicate client")
	}

	svc := &visualizer.Service{
		Transformer: transformer,
		Store:       store,
		Downloader:  imageproc.Downloader{},
		StagingRoot: cfg.UploadDir,
		Timeout:     cfg.VisualizeTimeout,
		Logger:      logger,
	}

	app := handlers.NewApp(cfg, logger, catalog.Default(cfg.PublicDir), svc, store)
	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ArtifactSweep {
		sweeper := storage.NewSweeper(cfg.PublicDir, visualizer.ArtifactPrefix, cfg.ArtifactMaxAge, logger)
		go sweeper.Run(ctx, cfg.ArtifactSweepEvery)
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("server listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
