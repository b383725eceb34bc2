package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/Belphemur/HLSCapture/internal/apperrors"
	"github.com/Belphemur/HLSCapture/internal/config"
)

// SubtitleFetcher downloads subtitle tracks as text.
type SubtitleFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// subtitleFetcher implements SubtitleFetcher over HTTP
type subtitleFetcher struct {
	httpClient *http.Client
	timeout    time.Duration
	maxBytes   int64
}

// NewSubtitleFetcher creates a fetcher that gives up after timeout and refuses
// bodies larger than maxBytes.
func NewSubtitleFetcher(httpClient *http.Client, timeout time.Duration, maxBytes int64) SubtitleFetcher {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &subtitleFetcher{httpClient: httpClient, timeout: timeout, maxBytes: maxBytes}
}

// FetchText downloads url and decodes the body as UTF-8 whatever charset the
// server declared. A byte order mark is dropped and invalid sequences become
// U+FFFD.
func (f *subtitleFetcher) FetchText(ctx context.Context, url string) (string, error) {
	logger := config.GetLogger()

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", &apperrors.ErrSubtitleResourceNotFound{URL: url}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(raw)) > f.maxBytes {
		return "", fmt.Errorf("subtitle larger than %d bytes", f.maxBytes)
	}

	decoded, _, err := transform.Bytes(transform.Chain(
		unicode.BOMOverride(unicode.UTF8.NewDecoder()),
		runes.ReplaceIllFormed(),
	), raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode subtitle: %w", err)
	}

	logger.Debug().
		Str("url", url).
		Str("declaredType", resp.Header.Get("Content-Type")).
		Int("size", len(decoded)).
		Msg("Fetched subtitle")

	return string(decoded), nil
}
