package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/Belphemur/HLSCapture/internal/apperrors"
	"github.com/Belphemur/HLSCapture/internal/models"
)

// FakeSubtitleFetcher serves subtitle bodies from memory. Unknown URLs yield
// an ErrSubtitleResourceNotFound, like an HTTP 404.
type FakeSubtitleFetcher struct {
	Bodies map[string]string
	// Errs overrides the result for specific URLs.
	Errs map[string]error

	mu    sync.Mutex
	calls []string
}

// FetchText implements client.SubtitleFetcher.
func (f *FakeSubtitleFetcher) FetchText(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := f.Errs[url]; ok {
		return "", err
	}
	body, ok := f.Bodies[url]
	if !ok {
		return "", &apperrors.ErrSubtitleResourceNotFound{URL: url}
	}
	return body, nil
}

// Calls returns the URLs fetched so far.
func (f *FakeSubtitleFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// FakeShowLookup answers metadata lookups from a map keyed by lower-cased
// title. Err, when set, is returned for every lookup.
type FakeShowLookup struct {
	Shows map[string]models.ShowMeta
	Err   error
}

// LookupShow implements metadata.Lookup.
func (f *FakeShowLookup) LookupShow(_ context.Context, title string) (*models.ShowMeta, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	meta, ok := f.Shows[strings.ToLower(title)]
	if !ok {
		return nil, apperrors.NewShowNotFoundError(title)
	}
	return &meta, nil
}

// FakeProber returns fixed formats for every manifest.
type FakeProber struct {
	Formats []models.Format
	Err     error
}

// ProbeFormats implements the services FormatProber interface.
func (f *FakeProber) ProbeFormats(context.Context, string) ([]models.Format, error) {
	return f.Formats, f.Err
}
