package health

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultHTTPTimeout = 5 * time.Second

// HTTPChecker reports whether the web server at rawURL answers, and how fast.
type HTTPChecker interface {
	Probe(ctx context.Context, rawURL string) (time.Duration, error)
}

// HTTPProber checks the modem web server with a HEAD request and falls back
// to GET when HEAD fails outright or times out; some modems reject HEAD. Any
// status below 500 counts as alive.
type HTTPProber struct {
	client  *http.Client
	timeout time.Duration
}

var _ HTTPChecker = (*HTTPProber)(nil)

// NewHTTPProber returns a prober that gives the HEAD attempt and the GET
// fallback each their own timeout.
func NewHTTPProber(timeout time.Duration, insecureSkipVerify bool) *HTTPProber {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: insecureSkipVerify, //nolint:gosec // modems ship self-signed certificates
	}
	return &HTTPProber{
		client:  &http.Client{Transport: transport},
		timeout: timeout,
	}
}

func (p *HTTPProber) Probe(ctx context.Context, rawURL string) (time.Duration, error) {
	start := time.Now()
	status, err := p.do(ctx, http.MethodHead, rawURL)
	if err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("%s %s: %w", http.MethodHead, rawURL, ctx.Err())
		}
		start = time.Now()
		status, err = p.do(ctx, http.MethodGet, rawURL)
	}
	if err != nil {
		return 0, err
	}
	if status >= http.StatusInternalServerError {
		return 0, fmt.Errorf("server error: HTTP %d", status)
	}
	return time.Since(start), nil
}

func (p *HTTPProber) do(ctx context.Context, method, rawURL string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create %s request: %w", method, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
	return resp.StatusCode, nil
}
