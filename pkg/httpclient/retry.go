package httpclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"time"
)

// retryTransport retries transient failures with exponential backoff.
type retryTransport struct {
	base        http.RoundTripper
	maxAttempts int
	baseBackoff time.Duration
	maxBackoff  time.Duration
	retryWrites bool
}

func newRetryTransport(base http.RoundTripper, cfg Config) *retryTransport {
	return &retryTransport{
		base:        base,
		maxAttempts: cfg.RetryAttempts + 1,
		baseBackoff: cfg.RetryBackoff,
		maxBackoff:  cfg.MaxBackoff,
		retryWrites: cfg.RetryWrites,
	}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.retryable(req.Method) {
		return t.base.RoundTrip(req)
	}

	// Requests with a body are replayed from a buffered copy.
	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		b, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
		body = b
	}

	var prev *http.Response
	for attempt := 1; ; attempt++ {
		if attempt > 1 {
			delay := t.backoff(attempt - 1)
			if prev != nil {
				if ra := retryAfter(prev); ra > 0 && ra < delay {
					delay = ra
				}
			}
			select {
			case <-time.After(delay):
			case <-req.Context().Done():
				return nil, req.Context().Err()
			}
		}

		if body != nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
		}
		resp, err := t.base.RoundTrip(req)
		if err == nil && !retryStatus(resp.StatusCode) {
			return resp, nil
		}
		if err != nil && !transient(err) {
			return nil, err
		}
		if attempt == t.maxAttempts {
			return resp, err
		}

		prev = nil
		if resp != nil {
			// Only the headers are needed for Retry-After.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			prev = resp
		}
	}
}

func (t *retryTransport) retryable(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut:
		return true
	case http.MethodPost, http.MethodPatch:
		return t.retryWrites
	default:
		return false
	}
}

func retryStatus(code int) bool {
	return code >= 500 || code == http.StatusRequestTimeout || code == http.StatusTooManyRequests
}

func transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}

// backoff returns baseBackoff * 2^(n-1), capped at maxBackoff, plus up to 20% jitter.
func (t *retryTransport) backoff(n int) time.Duration {
	d := float64(t.baseBackoff) * math.Pow(2, float64(n-1))
	d = math.Min(d, float64(t.maxBackoff))
	return time.Duration(d + rand.Float64()*d*0.2)
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if s, err := strconv.Atoi(h); err == nil && s > 0 {
		return time.Duration(s) * time.Second
	}
	if at, err := http.ParseTime(h); err == nil {
		return max(time.Until(at), 0)
	}
	return 0
}
