package visualizer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tileviz/internal/imageproc"
	"tileviz/internal/storage"
)

// ArtifactPrefix marks generated output files so the artifact route and the
// sweeper can recognize them.
const ArtifactPrefix = "temp_resized_"

// Service orchestrates one visualization end to end: staging, orientation
// correction, the external transform, post-processing, and the artifact
// write. Each call is isolated in its own staging directory, so a Service is
// safe for concurrent use.
type Service struct {
	Transformer Transformer
	Store       *storage.FileStore
	Downloader  imageproc.Downloader
	StagingRoot string
	Timeout     time.Duration
	Logger      zerolog.Logger
}

// Visualize runs the full pipeline and returns the public-relative URL of the
// generated artifact. Input problems come back as *InputError; everything
// else is a processing failure. The whole call is bounded by the configured
// wall-clock ceiling.
func (s *Service) Visualize(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := CheckSource("Room image", req.RoomImagePath); err != nil {
		return nil, err
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := s.run(ctx, req)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("visualization timed out after %s", timeout)
	}
	return result, err
}

func (s *Service) run(ctx context.Context, req Request) (*Result, error) {
	logger := s.Logger.With().Str("request_id", req.RequestID).Str("mode", string(req.Mode)).Logger()

	job, err := NewStagingJob(s.stagingRoot(), req)
	if err != nil {
		return nil, err
	}
	defer job.Close()

	// Correct embedded orientation before the model sees the photo, and use
	// the corrected dimensions as the resize target later.
	roomImg, err := imageproc.OpenOriented(req.RoomImagePath)
	if err != nil {
		return nil, err
	}
	roomJPEG, err := imageproc.EncodeJPEG(roomImg)
	if err != nil {
		return nil, err
	}
	if _, err := job.WriteRoom(roomJPEG); err != nil {
		return nil, err
	}

	images := [][]byte{roomJPEG}
	if req.Mode == ModeFloor || req.Mode == ModeBoth {
		tile, err := os.ReadFile(job.TilePath)
		if err != nil {
			return nil, fmt.Errorf("read staged tile: %w", err)
		}
		images = append(images, tile)
	}
	if req.Mode == ModeWalls || req.Mode == ModeBoth {
		wall, err := os.ReadFile(job.WallTilePath)
		if err != nil {
			return nil, fmt.Errorf("read staged wall tile: %w", err)
		}
		images = append(images, wall)
	}

	prompt := BuildPrompt(req.Mode)
	logger.Info().Int("images", len(images)).Msg("invoking image transform")

	outputURL, err := s.Transformer.Transform(ctx, prompt, images)
	if err != nil {
		return nil, err
	}
	if outputURL == "" {
		return nil, ErrNoOutput
	}
	logger.Info().Str("output_url", outputURL).Msg("transform produced image")

	data, err := s.Downloader.Fetch(ctx, outputURL)
	if err != nil {
		return nil, err
	}

	final := s.postProcess(logger, data, roomImg.Bounds())

	name := fmt.Sprintf("%s%d_%s.jpg", ArtifactPrefix, time.Now().UnixMilli(), uuid.NewString()[:8])
	key, err := s.Store.Write(ctx, name, final)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("artifact", key).Msg("visualization completed")
	return &Result{ImageURL: "/" + key}, nil
}

// postProcess crops the provider watermark and fits the result to the
// original dimensions. Failures here degrade to the raw downloaded bytes so
// the user still gets an image, just not a resized one.
func (s *Service) postProcess(logger zerolog.Logger, data []byte, target image.Rectangle) []byte {
	img, err := imageproc.DecodeOriented(data)
	if err != nil {
		logger.Warn().Err(err).Msg("could not decode generated image, serving as downloaded")
		return data
	}
	cropped := imageproc.CropWatermark(img)
	fitted, err := imageproc.FitToSize(cropped, target.Dx(), target.Dy())
	if err != nil {
		logger.Warn().Err(err).Msg("could not resize generated image, serving as downloaded")
		return data
	}
	encoded, err := imageproc.EncodeJPEG(fitted)
	if err != nil {
		logger.Warn().Err(err).Msg("could not encode resized image, serving as downloaded")
		return data
	}
	return encoded
}

func (s *Service) stagingRoot() string {
	if s.StagingRoot != "" {
		return s.StagingRoot
	}
	return os.TempDir()
}
