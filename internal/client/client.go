// Package client builds the outbound HTTP client shared by the subtitle
// fetcher and the metadata lookup.
package client

import (
	"net/http"
	"net/url"
	"time"

	"github.com/Belphemur/HLSCapture/internal/config"
)

// NewHTTPClient creates an HTTP client honouring the configured proxy,
// timeout and User-Agent, with transparent gzip, brotli and zstd decoding.
func NewHTTPClient(cfg *config.Config) *http.Client {
	timeout := config.ParseDuration("client_timeout", cfg.ClientTimeout, 30*time.Second)

	// Clone DefaultTransport to preserve all its settings (timeouts, connection pooling, HTTP/2, etc.)
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			// Log error but continue without proxy
			logger := config.GetLogger()
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: newDecodingTransport(baseTransport, userAgent),
	}
}
