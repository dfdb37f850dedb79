package httpclient

import (
	"crypto/tls"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// New creates an HTTP client from cfg. The transport stack is, from the
// outside in: retry, logging, pooled TLS transport.
func New(cfg Config) (*http.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &http.Client{
		Transport: Wrap(newBaseTransport(cfg.Timeout), cfg),
		Timeout:   cfg.Timeout,
	}, nil
}

// Wrap layers logging and retries over base. Tests use it to wrap an
// httptest server's transport.
func Wrap(base http.RoundTripper, cfg Config) http.RoundTripper {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var rt http.RoundTripper = newLoggingTransport(base, cfg.UserAgent, logger)
	if cfg.RetryAttempts > 0 {
		rt = newRetryTransport(rt, cfg)
	}
	return rt
}

func newBaseTransport(timeout time.Duration) *http.Transport {
	return &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: time.Second,
	}
}
