package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

// ErrNoEndpoint is returned when no candidate answered with HTTP 200.
var ErrNoEndpoint = errors.New("no modem endpoint reachable")

// Fetcher is the subset of Session the prober needs.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, basicAuth bool) (*Response, error)
}

// Prober walks an ordered candidate list until one endpoint answers.
type Prober struct {
	fetcher Fetcher
	log     zerolog.Logger
	lastURL string
}

// NewProber returns a Prober issuing requests through f.
func NewProber(f Fetcher, log zerolog.Logger) *Prober {
	return &Prober{fetcher: f, log: log}
}

// OrderCandidates moves cachedURL to the front when it is one of the
// candidates. A cachedURL that is not in the list is ignored and the list
// order is kept as is.
func OrderCandidates(candidates []EndpointCandidate, cachedURL string) []EndpointCandidate {
	idx := -1
	if cachedURL != "" {
		for i, c := range candidates {
			if c.URL == cachedURL {
				idx = i
				break
			}
		}
	}
	if idx <= 0 {
		return append([]EndpointCandidate(nil), candidates...)
	}

	ordered := make([]EndpointCandidate, 0, len(candidates))
	ordered = append(ordered, candidates[idx])
	ordered = append(ordered, candidates[:idx]...)
	return append(ordered, candidates[idx+1:]...)
}

// Probe returns the first candidate response with status 200, in order,
// trying cachedURL first when it is a known candidate. Transport errors and
// other statuses advance to the next candidate. There are no retries; a
// failed probe returns ErrNoEndpoint.
func (p *Prober) Probe(ctx context.Context, candidates []EndpointCandidate, cachedURL string) (*Response, error) {
	for _, c := range OrderCandidates(candidates, cachedURL) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.log.Debug().Str("url", c.URL).Stringer("auth", c.Auth).Msg("Probing modem endpoint")

		resp, err := p.fetcher.Get(ctx, c.URL, c.Auth == AuthBasic)
		if err != nil {
			p.log.Debug().Err(err).Str("url", c.URL).Msg("Endpoint request failed")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			p.log.Debug().Int("status", resp.StatusCode).Str("url", c.URL).
				Str("body", truncate(resp.Body, 120)).Msg("Endpoint returned non-200 status")
			continue
		}

		p.lastURL = c.URL
		p.log.Info().Str("url", c.URL).Msg("Fetched modem page")
		return resp, nil
	}

	p.log.Warn().Int("candidates", len(candidates)).Msg("Could not fetch data from any known modem URL")
	return nil, ErrNoEndpoint
}

// LastURL returns the candidate URL that last answered, or "" if none has.
func (p *Prober) LastURL() string {
	return p.lastURL
}
