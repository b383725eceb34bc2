// Package metadata resolves a guessed show name to its canonical title and
// first-air year using the OMDb API.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/rs/zerolog"

	"github.com/Belphemur/HLSCapture/internal/apperrors"
	"github.com/Belphemur/HLSCapture/internal/cache"
	"github.com/Belphemur/HLSCapture/internal/models"
)

// DefaultBaseURL is the public OMDb endpoint.
const DefaultBaseURL = "https://www.omdbapi.com/"

// Lookup resolves a show title. Implementations return an
// *apperrors.ErrNotFound when the show is unknown or lookups are disabled.
type Lookup interface {
	LookupShow(ctx context.Context, title string) (*models.ShowMeta, error)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// MaxRetries defaults to 2; a negative value disables retries.
	MaxRetries int
	RetryDelay time.Duration
	Logger     zerolog.Logger
}

// Client queries OMDb with an exact title match first and a search second.
// Results, including misses, are kept in the cache when one is given.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
	cache      *cache.JSON[*models.ShowMeta]
	retry      retrypolicy.RetryPolicy[*http.Response]
	logger     zerolog.Logger
}

// omdbResponse covers both the title (t=) and search (s=) response shapes.
type omdbResponse struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Search   []struct {
		Title string `json:"Title"`
		Year  string `json:"Year"`
	} `json:"Search"`
}

// errServerStatus marks a 5xx answer, which is retried.
var errServerStatus = errors.New("omdb server error")

// NewClient creates an OMDb client. c may be nil to disable caching.
func NewClient(httpClient *http.Client, opts Options, c cache.Cache) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	switch {
	case opts.MaxRetries == 0:
		opts.MaxRetries = 2
	case opts.MaxRetries < 0:
		opts.MaxRetries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 500 * time.Millisecond
	}

	client := &Client{
		httpClient: httpClient,
		baseURL:    opts.BaseURL,
		apiKey:     strings.TrimSpace(opts.APIKey),
		timeout:    opts.Timeout,
		logger:     opts.Logger,
		retry: retrypolicy.NewBuilder[*http.Response]().
			HandleIf(func(resp *http.Response, err error) bool {
				if err != nil {
					return !errors.Is(err, context.Canceled)
				}
				return resp != nil && resp.StatusCode >= http.StatusInternalServerError
			}).
			WithMaxRetries(opts.MaxRetries).
			WithBackoff(opts.RetryDelay, 8*opts.RetryDelay).
			ReturnLastFailure().
			Build(),
	}
	if c != nil {
		client.cache = cache.NewJSON[*models.ShowMeta](c, opts.Logger)
	}
	return client
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// LookupShow returns the canonical title and four-digit year for title.
func (c *Client) LookupShow(ctx context.Context, title string) (*models.ShowMeta, error) {
	title = strings.TrimSpace(title)
	if !c.Enabled() || title == "" {
		return nil, apperrors.NewShowNotFoundError(title)
	}

	key := strings.ToLower(title)
	if c.cache != nil {
		if meta, ok := c.cache.Get(ctx, key); ok {
			if meta == nil {
				return nil, apperrors.NewShowNotFoundError(title)
			}
			return meta, nil
		}
	}

	meta, err := c.lookup(ctx, title)
	if err != nil {
		var notFound *apperrors.ErrNotFound
		if errors.As(err, &notFound) && c.cache != nil {
			c.cache.Set(ctx, key, nil)
		}
		return nil, err
	}
	if c.cache != nil {
		c.cache.Set(ctx, key, meta)
	}
	return meta, nil
}

func (c *Client) lookup(ctx context.Context, title string) (*models.ShowMeta, error) {
	exact, exactErr := c.query(ctx, url.Values{"t": {title}, "type": {"series"}})
	if exactErr == nil {
		if meta := newShowMeta(exact.Title, exact.Year); meta != nil {
			return meta, nil
		}
	}

	search, searchErr := c.query(ctx, url.Values{"s": {title}, "type": {"series"}})
	if searchErr == nil {
		for _, hit := range search.Search {
			if meta := newShowMeta(hit.Title, hit.Year); meta != nil {
				return meta, nil
			}
		}
	}

	// A miss is only final when both queries got an answer.
	if exactErr != nil || searchErr != nil {
		return nil, fmt.Errorf("omdb lookup %q: %w", title, errors.Join(exactErr, searchErr))
	}
	c.logger.Debug().Str("title", title).Msg("Show not found on OMDb")
	return nil, apperrors.NewShowNotFoundError(title)
}

// query performs one OMDb request with retries. A "Response":"False" answer
// is returned without error; callers treat it as a miss.
func (c *Client) query(ctx context.Context, params url.Values) (*omdbResponse, error) {
	params.Set("apikey", c.apiKey)
	endpoint := c.baseURL
	if strings.Contains(endpoint, "?") {
		endpoint += "&" + params.Encode()
	} else {
		endpoint += "?" + params.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := failsafe.With(c.retry).WithContext(ctx).Get(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %d", errServerStatus, resp.StatusCode)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb returned status %d", resp.StatusCode)
	}

	var body omdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode omdb response: %w", err)
	}
	if body.Response != "True" {
		c.logger.Debug().Str("error", body.Error).Msg("OMDb returned no result")
		return &omdbResponse{}, nil
	}
	return &body, nil
}

// newShowMeta keeps the first four digits of year, as in "2019–2023" or
// "2025–". It returns nil when the title is empty or no full year is present.
func newShowMeta(title, year string) *models.ShowMeta {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	digits := make([]byte, 0, 4)
	for i := 0; i < len(year) && len(digits) < 4; i++ {
		if year[i] >= '0' && year[i] <= '9' {
			digits = append(digits, year[i])
		}
	}
	if len(digits) != 4 {
		return nil
	}
	return &models.ShowMeta{Title: title, Year: string(digits)}
}
