package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dm/cmm-go/internal/client"
	"github.com/dm/cmm-go/internal/model"
	"github.com/dm/cmm-go/internal/parser"
)

// ScraperConfig holds per-modem settings for a Scraper.
type ScraperConfig struct {
	Credentials parser.Credentials
	// CachedURL is the page that worked on a previous run. It is tried first
	// when it is one of the candidates and ignored otherwise.
	CachedURL string
	// Candidates overrides the built-in endpoint list.
	Candidates []client.EndpointCandidate
}

// Scraper is one modem session: the transport with its cookies, the parser
// bound on first detection and the URL that last produced a page. A parser
// stays bound for the lifetime of the Scraper; Reset forgets it.
type Scraper struct {
	mu         sync.Mutex
	session    parser.Session
	prober     *client.Prober
	registry   *parser.Registry
	creds      parser.Credentials
	candidates []client.EndpointCandidate
	cachedURL  string
	parser     parser.Parser
	successURL string
	now        func() time.Time
	log        zerolog.Logger
}

// NewScraper returns a Scraper that fetches through session and picks a parser
// from registry.
func NewScraper(session parser.Session, registry *parser.Registry, cfg ScraperConfig, log zerolog.Logger) *Scraper {
	candidates := cfg.Candidates
	if len(candidates) == 0 {
		candidates = client.DefaultCandidates(session)
	}
	return &Scraper{
		session:    session,
		prober:     client.NewProber(session, log),
		registry:   registry,
		creds:      cfg.Credentials,
		candidates: candidates,
		cachedURL:  cfg.CachedURL,
		now:        time.Now,
		log:        log,
	}
}

// Fetch runs one probe → detect → login → parse cycle. On failure it returns
// an empty snapshot carrying the connection status for the failure class
// together with a *FetchError.
func (s *Scraper) Fetch(ctx context.Context) (*model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.now()
	page, err := s.loadPage(ctx)
	if err != nil {
		return model.EmptySnapshot(statusFor(err), at), err
	}

	if !s.creds.Empty() {
		page, err = s.login(ctx, page)
		if err != nil {
			return model.EmptySnapshot(model.StatusUnreachable, at), err
		}
	}

	raw, err := safeParse(s.parser, page)
	if err != nil {
		s.log.Error().Err(err).Str("parser", s.parser.Name()).Msg("Parser failed on modem page")
		return model.EmptySnapshot(model.StatusOffline, at), &FetchError{Reason: ReasonOffline, Err: err}
	}

	snap := Normalize(raw, at)
	s.successURL = s.prober.LastURL()
	s.cachedURL = s.successURL
	s.log.Debug().
		Str("status", string(snap.ConnectionStatus)).
		Int("downstream", snap.DownstreamCount).
		Int("upstream", snap.UpstreamCount).
		Int64("corrected", snap.TotalCorrected).
		Int64("uncorrected", snap.TotalUncorrected).
		Msg("Parsed modem data")
	return snap, nil
}

// loadPage probes the candidates and binds a parser if none is bound yet.
func (s *Scraper) loadPage(ctx context.Context) (parser.Page, error) {
	resp, err := s.prober.Probe(ctx, s.candidates, s.cachedURL)
	if err != nil {
		return parser.Page{}, &FetchError{Reason: ReasonUnreachable, Err: err}
	}

	page, err := parser.NewPage(resp.Body, s.prober.LastURL())
	if err != nil {
		return parser.Page{}, &FetchError{Reason: ReasonOffline, Err: err}
	}

	if s.parser == nil {
		p, err := s.registry.Detect(page)
		if err != nil {
			return parser.Page{}, &FetchError{Reason: ReasonParserNotFound, Err: err}
		}
		s.parser = p
	}
	return page, nil
}

// login authenticates through the bound parser and returns the page to parse:
// the refreshed page when the vendor flow supplied one, page otherwise.
func (s *Scraper) login(ctx context.Context, page parser.Page) (parser.Page, error) {
	res, err := s.parser.Login(ctx, s.session, s.creds)
	if err != nil {
		s.log.Error().Err(err).Str("parser", s.parser.Name()).Msg("Login request failed")
		return page, &FetchError{Reason: ReasonLoginFailed, Err: fmt.Errorf("%w: %w", ErrLoginFailed, err)}
	}
	if !res.OK {
		s.log.Error().Str("parser", s.parser.Name()).Str("user", s.creds.Username).Msg("Failed to log in to modem")
		return page, &FetchError{Reason: ReasonLoginFailed, Err: ErrLoginFailed}
	}
	if res.HTML == "" {
		return page, nil
	}

	refreshed, err := parser.NewPage(res.HTML, page.URL)
	if err != nil {
		return page, &FetchError{Reason: ReasonOffline, Err: err}
	}
	return refreshed, nil
}

// DetectionInfo returns the bound parser and the URL that worked. The second
// result is false until a fetch has succeeded.
func (s *Scraper) DetectionInfo() (model.DetectionInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.parser == nil || s.successURL == "" {
		return model.DetectionInfo{}, false
	}
	return model.DetectionInfo{
		ModemName:     s.parser.Name(),
		Manufacturer:  s.parser.Manufacturer(),
		SuccessfulURL: s.successURL,
	}, true
}

// CachedURL returns the URL that will be probed first on the next fetch.
func (s *Scraper) CachedURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cachedURL
}

// Restart sends the vendor reboot command. A parser is detected first when
// none is bound. It returns false without error when the bound parser has no
// restart support.
func (s *Scraper) Restart(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.parser == nil {
		if _, err := s.loadPage(ctx); err != nil {
			return false, fmt.Errorf("detect modem for restart: %w", err)
		}
	}

	r, ok := s.parser.(parser.Restarter)
	if !ok {
		s.log.Warn().Str("parser", s.parser.Name()).Msg("Modem does not support remote restart")
		return false, nil
	}

	if !s.creds.Empty() {
		res, err := s.parser.Login(ctx, s.session, s.creds)
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrLoginFailed, err)
		}
		if !res.OK {
			return false, ErrLoginFailed
		}
	}

	s.log.Info().Str("parser", s.parser.Name()).Msg("Sending restart command to modem")
	ok, err := r.Restart(ctx, s.session)
	if err != nil {
		return false, err
	}
	if !ok {
		s.log.Error().Str("parser", s.parser.Name()).Msg("Modem rejected restart command")
	}
	return ok, nil
}

// Reset unbinds the parser so the next fetch detects again.
func (s *Scraper) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parser = nil
	s.successURL = ""
}

// ModemName returns the name of the bound parser. Unlike DetectionInfo it
// reports a parser bound by Restart before any fetch succeeded.
func (s *Scraper) ModemName() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.parser == nil {
		return "", false
	}
	return s.parser.Name(), true
}

// Parser returns the bound parser, or nil.
func (s *Scraper) Parser() parser.Parser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parser
}

func statusFor(err error) model.ConnectionStatus {
	switch ReasonOf(err) {
	case ReasonUnreachable, ReasonLoginFailed:
		return model.StatusUnreachable
	default:
		return model.StatusOffline
	}
}

func safeParse(p parser.Parser, page parser.Page) (raw model.RawExtraction, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("parse panicked: %v", rec)
		}
	}()
	return p.Parse(page), nil
}
