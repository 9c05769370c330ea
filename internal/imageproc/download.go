package imageproc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"tileviz/internal/retry"
)

const (
	downloadAttempts = 3
	downloadPause    = 2 * time.Second
	downloadTimeout  = 30 * time.Second
)

// Downloader fetches generated images from the provider's CDN with bounded
// retries. The zero HTTPClient falls back to a default client; the per-attempt
// timeout is enforced with a context deadline either way.
type Downloader struct {
	HTTPClient *http.Client
	Sleep      retry.SleepFunc
}

// Fetch downloads url and returns the body bytes. Each attempt is capped at
// 30 seconds; three attempts with a 2 second pause before giving up.
func (d Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	client := d.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	var body []byte
	policy := retry.Policy{Attempts: downloadAttempts, Delay: downloadPause, Sleep: d.Sleep}
	err := policy.Do(ctx, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("imageproc: build download request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("imageproc: download: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("imageproc: download: http %d", resp.StatusCode)
		}
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("imageproc: read download: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
