package replicate

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	replicate "github.com/replicate/replicate-go"
	"github.com/rs/zerolog"

	"tileviz/internal/retry"
)

const (
	transformAttempts = 3
	transformPause    = 2 * time.Second
)

// runner is the slice of the replicate-go client the transformer needs,
// extracted so tests can substitute a fake provider.
type runner interface {
	Run(ctx context.Context, identifier string, input replicate.PredictionInput, webhook *replicate.Webhook) (replicate.PredictionOutput, error)
}

// Options configures a Client.
type Options struct {
	Token  string
	Model  string
	Runner runner
	Sleep  retry.SleepFunc
	Logger zerolog.Logger
}

// Client invokes an image-to-image model hosted on Replicate. The model takes
// a text instruction plus an ordered list of reference images and returns a
// URL for the edited image.
type Client struct {
	runner runner
	model  string
	sleep  retry.SleepFunc
	logger zerolog.Logger
}

// NewClient builds a Client. The API token is read from Options and never
// hardcoded; when no runner is injected a real replicate-go client is built.
func NewClient(opts Options) (*Client, error) {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "google/nano-banana"
	}
	run := opts.Runner
	if run == nil {
		if strings.TrimSpace(opts.Token) == "" {
			return nil, errors.New("replicate: API token is missing")
		}
		r8, err := replicate.NewClient(replicate.WithToken(opts.Token))
		if err != nil {
			return nil, fmt.Errorf("replicate: build client: %w", err)
		}
		run = r8
	}
	return &Client{
		runner: run,
		model:  model,
		sleep:  opts.Sleep,
		logger: opts.Logger,
	}, nil
}

// Transform sends the prompt and ordered reference images to the model and
// returns the generated image URL. Transient provider failures are retried up
// to three times with a fixed two second pause; the last error is surfaced
// when every attempt fails. An answer that carries no recognizable URL is
// logged and reported as an empty URL with no error — the caller decides
// whether that is fatal.
func (c *Client) Transform(ctx context.Context, prompt string, images [][]byte) (string, error) {
	if len(images) == 0 {
		return "", errors.New("replicate: at least one input image is required")
	}

	refs := make([]string, len(images))
	for i, data := range images {
		refs[i] = dataURI(data)
	}
	input := replicate.PredictionInput{
		"prompt":      prompt,
		"image_input": refs,
	}

	var output replicate.PredictionOutput
	attempt := 0
	policy := retry.Policy{Attempts: transformAttempts, Delay: transformPause, Sleep: c.sleep}
	err := policy.Do(ctx, func(ctx context.Context) error {
		attempt++
		out, err := c.runner.Run(ctx, c.model, input, nil)
		if err != nil {
			c.logger.Warn().Err(err).Int("attempt", attempt).Int("max_attempts", transformAttempts).Msg("replicate call failed")
			return err
		}
		output = out
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("replicate call failed after retries: %w", err)
	}

	url := ParseOutput(output)
	if url == "" {
		c.logger.Warn().
			Str("output_type", fmt.Sprintf("%T", output)).
			Msg("no usable output returned by provider")
	}
	return url, nil
}

// ParseOutput extracts an image URL from the provider's loosely typed output:
// a URL string, a list whose first element is a URL, or any value whose
// string form is a URL.
func ParseOutput(out any) string {
	switch v := out.(type) {
	case nil:
		return ""
	case string:
		if strings.HasPrefix(v, "http") {
			return v
		}
	case []any:
		if len(v) > 0 {
			return ParseOutput(v[0])
		}
	case []string:
		if len(v) > 0 && strings.HasPrefix(v[0], "http") {
			return v[0]
		}
	default:
		if s := fmt.Sprint(v); strings.HasPrefix(s, "http") {
			return s
		}
	}
	return ""
}

func dataURI(data []byte) string {
	mime := http.DetectContentType(data)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
