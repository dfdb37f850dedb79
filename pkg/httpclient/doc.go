// Package httpclient builds the HTTP clients flowkit uses to talk to
// Flowise.
//
// Clients share one transport stack:
//   - retries with exponential backoff and jitter for transient failures
//   - request logging with credential query parameters redacted
//   - User-Agent injection and trace context propagation
//   - TLS 1.2 minimum and pooled connections
//
// Only GET, HEAD, OPTIONS and PUT are retried by default. Chatflow
// creation is a POST and is sent once unless RetryWrites is set.
//
//	client, err := httpclient.New(httpclient.DefaultConfig())
//	if err != nil {
//	    return err
//	}
package httpclient
