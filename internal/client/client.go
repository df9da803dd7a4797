package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const (
	defaultRequestTimeout    = 10 * time.Second
	defaultRequestsPerSecond = 2
	maxResponseBytes         = 4 * 1024 * 1024 // modem admin pages are a few hundred KB at most
	userAgent                = "cmm/1.0"
)

// ClientConfig holds configuration for Session.
type ClientConfig struct {
	BaseURL            string
	Username           string
	Password           string
	InsecureSkipVerify bool
	RequestTimeout     time.Duration
	// RequestsPerSecond paces requests so slow embedded web servers are not
	// flooded during probing and restart monitoring. <= 0 selects the default.
	RequestsPerSecond float64
}

// Response is a fully read HTTP response. Body is decoded to UTF-8 using the
// Content-Type charset when one is declared.
type Response struct {
	StatusCode int
	Body       string
	URL        string
}

// Session is the transport half of a modem session: one cookie jar, one
// HTTP client and one request pacer. Cookies set by a vendor login persist
// across calls made through the same Session.
type Session struct {
	http    *http.Client
	config  ClientConfig
	limiter *rate.Limiter
}

// NewSession constructs a Session from the given config.
// Returns an error if BaseURL is empty.
func NewSession(cfg ClientConfig) (*Session, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRequestsPerSecond
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // modems ship self-signed certificates
	}

	return &Session{
		http: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
			Jar:       jar,
		},
		config:  cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}, nil
}

// BaseURL returns the modem base URL without a trailing slash.
func (s *Session) BaseURL() string {
	return s.config.BaseURL
}

// URL joins path onto the base URL.
func (s *Session) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.config.BaseURL + path
}

// HasCredentials reports whether both a username and password are configured.
func (s *Session) HasCredentials() bool {
	return s.config.Username != "" && s.config.Password != ""
}

// Get fetches rawURL. When basicAuth is set and credentials are configured,
// HTTP Basic auth is applied. Non-2xx responses are returned, not treated as
// errors; only transport failures produce an error.
func (s *Session) Get(ctx context.Context, rawURL string, basicAuth bool) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if basicAuth && s.HasCredentials() {
		req.SetBasicAuth(s.config.Username, s.config.Password)
	}
	return s.do(req)
}

// PostForm submits form to rawURL as application/x-www-form-urlencoded.
func (s *Session) PostForm(ctx context.Context, rawURL string, form url.Values) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *Session) do(req *http.Request) (*Response, error) {
	if err := s.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("wait for request slot: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if decoded, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type")); err == nil {
		reader = decoded
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       string(body),
		URL:        resp.Request.URL.String(),
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
