package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultInitialBackoff = 500 * time.Millisecond
	maxErrorBodyBytes     = 2048
)

// retryPolicy drives postJSON. Only transport failures, 429 and 5xx are
// retried; the caller's context bounds the total time spent.
type retryPolicy struct {
	provider       string
	maxRetries     int
	initialBackoff time.Duration
}

// postJSON sends body to endpoint and returns the response body of the first
// 2xx answer.
func postJSON(ctx context.Context, client *http.Client, endpoint string, header http.Header, body []byte, policy retryPolicy) ([]byte, error) {
	log := zerolog.Ctx(ctx)
	backoff := policy.initialBackoff
	if backoff <= 0 {
		backoff = defaultInitialBackoff
	}
	attempts := policy.maxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			wait := backoff * time.Duration(math.Pow(2, float64(i-1)))
			if !sleepCtx(ctx, wait) {
				break
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, &BackendError{Provider: policy.provider, Err: fmt.Errorf("create request: %w", err)}
		}
		req.Header.Set("Content-Type", "application/json")
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		log.Debug().Str("provider", policy.provider).Int("attempt", i+1).Msg("Calling text backend")

		resp, err := client.Do(req)
		if err != nil {
			// url.Error carries the request URL, which may hold an API key.
			var uerr *url.Error
			if errors.As(err, &uerr) {
				err = uerr.Err
			}
			lastErr = &BackendError{Provider: policy.provider, Err: fmt.Errorf("request failed: %w", err)}
			log.Warn().Err(lastErr).Int("attempt", i+1).Msg("Text backend attempt failed")
			if ctx.Err() != nil {
				break
			}
			continue
		}

		payload, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			snippet := payload
			if len(snippet) > maxErrorBodyBytes {
				snippet = snippet[:maxErrorBodyBytes]
			}
			lastErr = &BackendError{
				Provider:   policy.provider,
				StatusCode: resp.StatusCode,
				Err:        fmt.Errorf("unexpected status %s: %s", resp.Status, bytes.TrimSpace(snippet)),
			}
			log.Warn().Err(lastErr).Int("attempt", i+1).Msg("Text backend attempt failed")
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return nil, lastErr
		}

		if readErr != nil {
			return nil, &BackendError{Provider: policy.provider, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", readErr)}
		}
		return payload, nil
	}

	if lastErr == nil {
		lastErr = &BackendError{Provider: policy.provider, Err: ctx.Err()}
	}
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(lastErr, ctxErr) {
		lastErr = &BackendError{Provider: policy.provider, Err: fmt.Errorf("%w (last error: %v)", ctxErr, lastErr)}
	}
	return nil, lastErr
}

// sleepCtx sleeps for d or until ctx is cancelled. It reports whether the
// full duration elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
