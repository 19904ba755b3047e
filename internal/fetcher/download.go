package fetcher

import (
	"context"
	"errors"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DownloadOptions controls retries for fetching source documents.
// County BIP sites drop connections routinely, so transient failures
// are retried with exponential backoff and jitter.
type DownloadOptions struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Timeout        time.Duration
}

// DefaultDownloadOptions returns retry settings suited to slow
// government document servers.
func DefaultDownloadOptions() DownloadOptions {
	return DownloadOptions{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     15 * time.Second,
		Timeout:        60 * time.Second,
	}
}

// Download fetches url into dir and returns the local file path. The
// file name is taken from the URL path so extension-based dispatch
// keeps working on the result.
func Download(ctx context.Context, url, dir string, opts DownloadOptions) (string, error) {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 500 * time.Millisecond
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 15 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	name := path.Base(url)
	if name == "" || name == "." || name == "/" {
		name = "download"
	}
	dest := filepath.Join(dir, name)

	client := &http.Client{Timeout: opts.Timeout}

	var lastErr error
	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		lastErr = fetchOnce(ctx, client, url, dest)
		if lastErr == nil {
			return dest, nil
		}
		if ctx.Err() != nil || !retryable(lastErr) {
			return "", lastErr
		}
		if attempt >= opts.MaxAttempts-1 {
			break
		}

		zap.L().Warn("retrying download",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)

		timer := time.NewTimer(backoff(attempt, opts))
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", lastErr
		case <-timer.C:
		}
	}
	return "", lastErr
}

type httpStatusError struct {
	code int
	url  string
}

func (e *httpStatusError) Error() string {
	return "fetcher: " + e.url + " returned " + http.StatusText(e.code)
}

func fetchOnce(ctx context.Context, client *http.Client, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrapf(err, "fetcher: build request for %s", url)
	}

	resp, err := client.Do(req)
	if err != nil {
		return eris.Wrapf(err, "fetcher: get %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &httpStatusError{code: resp.StatusCode, url: url}
	}

	f, err := os.Create(dest)
	if err != nil {
		return eris.Wrapf(err, "fetcher: create %s", dest)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(dest)
		return eris.Wrapf(err, "fetcher: write %s", dest)
	}
	return eris.Wrapf(f.Close(), "fetcher: close %s", dest)
}

// retryable reports whether another attempt could succeed. Network
// errors and server-side failures qualify, client errors do not.
func retryable(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.code >= 500 || statusErr.code == http.StatusTooManyRequests
	}
	return true
}

func backoff(attempt int, opts DownloadOptions) time.Duration {
	delay := float64(opts.InitialBackoff) * math.Pow(2, float64(attempt))
	if delay > float64(opts.MaxBackoff) {
		delay = float64(opts.MaxBackoff)
	}
	delay += (rand.Float64()*2 - 1) * delay * 0.25
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}
