package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPProber_AnyStatusBelow500IsAlive(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusFound, http.StatusUnauthorized, http.StatusNotFound} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		_, err := NewHTTPProber(time.Second, false).Probe(context.Background(), srv.URL)
		assert.NoError(t, err, "status %d", status)
		srv.Close()
	}
}

func TestHTTPProber_ServerErrorIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPProber(time.Second, false).Probe(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestHTTPProber_FallsBackToGET(t *testing.T) {
	var (
		mu      sync.Mutex
		methods []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		mu.Unlock()
		if r.Method == http.MethodHead {
			// Drop the connection without answering, as some modem
			// firmware does for HEAD.
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			_ = conn.Close()
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d, err := NewHTTPProber(2*time.Second, false).Probe(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Positive(t, d)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodGet, methods[len(methods)-1])
	assert.Contains(t, methods, http.MethodHead)
}

func TestHTTPProber_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPProber(time.Second, false).Probe(context.Background(), url)
	assert.Error(t, err)
}

func TestHTTPProber_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	start := time.Now()
	_, err := NewHTTPProber(100*time.Millisecond, false).Probe(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestHTTPProber_HeadTimeoutFallsBackToGET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			<-r.Context().Done()
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d, err := NewHTTPProber(300*time.Millisecond, false).Probe(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Positive(t, d)
}

func TestHTTPProber_CancelledContextSkipsGET(t *testing.T) {
	var (
		mu      sync.Mutex
		methods []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		mu.Unlock()
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := NewHTTPProber(5*time.Second, false).Probe(ctx, srv.URL)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	mu.Lock()
	defer mu.Unlock()
	assert.NotContains(t, methods, http.MethodGet)
}
