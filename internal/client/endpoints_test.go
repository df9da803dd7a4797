package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/cmm-go/internal/logger"
)

// fakeFetcher serves canned responses keyed by URL and records call order.
type fakeFetcher struct {
	responses map[string]*Response
	errs      map[string]error
	calls     []string
	basic     map[string]bool
}

func (f *fakeFetcher) Get(_ context.Context, rawURL string, basicAuth bool) (*Response, error) {
	f.calls = append(f.calls, rawURL)
	if f.basic == nil {
		f.basic = map[string]bool{}
	}
	f.basic[rawURL] = basicAuth
	if err, ok := f.errs[rawURL]; ok {
		return nil, err
	}
	if resp, ok := f.responses[rawURL]; ok {
		return resp, nil
	}
	return &Response{StatusCode: 404, URL: rawURL}, nil
}

var testCandidates = []EndpointCandidate{
	{URL: "http://m/a", Auth: AuthBasic},
	{URL: "http://m/b"},
	{URL: "http://m/c"},
}

func urls(cs []EndpointCandidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.URL
	}
	return out
}

func TestOrderCandidates(t *testing.T) {
	tests := []struct {
		name   string
		cached string
		want   []string
	}{
		{"no cached url", "", []string{"http://m/a", "http://m/b", "http://m/c"}},
		{"cached moves to front", "http://m/c", []string{"http://m/c", "http://m/a", "http://m/b"}},
		{"cached already first", "http://m/a", []string{"http://m/a", "http://m/b", "http://m/c"}},
		{"unknown cached is dropped", "http://m/stale", []string{"http://m/a", "http://m/b", "http://m/c"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, urls(OrderCandidates(testCandidates, tc.cached)))
		})
	}
	// The input slice is never reordered in place.
	assert.Equal(t, "http://m/a", testCandidates[0].URL)
}

func TestProbe_FirstOKWins(t *testing.T) {
	f := &fakeFetcher{
		responses: map[string]*Response{
			"http://m/b": {StatusCode: 200, Body: "page b", URL: "http://m/b"},
			"http://m/c": {StatusCode: 200, Body: "page c", URL: "http://m/c"},
		},
	}
	p := NewProber(f, logger.NewTestLogger())

	resp, err := p.Probe(context.Background(), testCandidates, "")
	require.NoError(t, err)
	assert.Equal(t, "page b", resp.Body)
	assert.Equal(t, []string{"http://m/a", "http://m/b"}, f.calls)
	assert.Equal(t, "http://m/b", p.LastURL())
	assert.True(t, f.basic["http://m/a"], "basic hint is forwarded")
	assert.False(t, f.basic["http://m/b"])
}

func TestProbe_CachedURLTriedFirst(t *testing.T) {
	f := &fakeFetcher{
		responses: map[string]*Response{
			"http://m/a": {StatusCode: 200, Body: "page a"},
			"http://m/c": {StatusCode: 200, Body: "page c"},
		},
	}
	p := NewProber(f, logger.NewTestLogger())

	resp, err := p.Probe(context.Background(), testCandidates, "http://m/c")
	require.NoError(t, err)
	assert.Equal(t, "page c", resp.Body)
	assert.Equal(t, []string{"http://m/c"}, f.calls)
}

func TestProbe_UnknownCachedURLIsNotTried(t *testing.T) {
	f := &fakeFetcher{responses: map[string]*Response{"http://m/a": {StatusCode: 200}}}
	p := NewProber(f, logger.NewTestLogger())

	_, err := p.Probe(context.Background(), testCandidates, "http://m/stale")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://m/a"}, f.calls)
}

func TestProbe_TransportErrorsAdvance(t *testing.T) {
	f := &fakeFetcher{
		errs:      map[string]error{"http://m/a": errors.New("connection refused")},
		responses: map[string]*Response{"http://m/b": {StatusCode: 200, Body: ""}},
	}
	p := NewProber(f, logger.NewTestLogger())

	resp, err := p.Probe(context.Background(), testCandidates, "")
	require.NoError(t, err)
	assert.Equal(t, "", resp.Body, "a 200 qualifies regardless of body content")
}

func TestProbe_NothingReachable(t *testing.T) {
	f := &fakeFetcher{errs: map[string]error{"http://m/a": errors.New("timeout")}}
	p := NewProber(f, logger.NewTestLogger())

	_, err := p.Probe(context.Background(), testCandidates, "")
	assert.ErrorIs(t, err, ErrNoEndpoint)
	assert.Len(t, f.calls, 3)
	assert.Equal(t, "", p.LastURL())
}

func TestProbe_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &fakeFetcher{}
	p := NewProber(f, logger.NewTestLogger())

	_, err := p.Probe(ctx, testCandidates, "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.calls)
}
