package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSession creates a Session pointed at the given test server URL.
func newTestSession(t *testing.T, baseURL, user, pass string) *Session {
	t.Helper()
	s, err := NewSession(ClientConfig{
		BaseURL:           baseURL,
		Username:          user,
		Password:          pass,
		RequestTimeout:    5 * time.Second,
		RequestsPerSecond: 1000,
	})
	require.NoError(t, err)
	return s
}

func TestNewSession_RequiresBaseURL(t *testing.T) {
	_, err := NewSession(ClientConfig{})
	assert.Error(t, err)
}

func TestSession_URL(t *testing.T) {
	s := newTestSession(t, "http://192.168.100.1/", "", "")
	assert.Equal(t, "http://192.168.100.1", s.BaseURL())
	assert.Equal(t, "http://192.168.100.1/MotoConnection.asp", s.URL("/MotoConnection.asp"))
	assert.Equal(t, "http://192.168.100.1/cmSignal.html", s.URL("cmSignal.html"))
}

func TestSession_GetBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	var gotAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotAuth = r.BasicAuth()
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL, "admin", "secret")

	resp, err := s.Get(context.Background(), s.URL("/"), false)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Body)
	assert.False(t, gotAuth, "basic auth must only be sent when requested")

	_, err = s.Get(context.Background(), s.URL("/"), true)
	require.NoError(t, err)
	assert.True(t, gotAuth)
	assert.Equal(t, "admin", gotUser)
	assert.Equal(t, "secret", gotPass)
}

func TestSession_BasicAuthSkippedWithoutCredentials(t *testing.T) {
	var gotAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, gotAuth = r.BasicAuth()
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL, "admin", "")
	_, err := s.Get(context.Background(), s.URL("/"), true)
	require.NoError(t, err)
	assert.False(t, gotAuth)
}

func TestSession_CookiesPersist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/goform/login":
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "admin", r.PostForm.Get("loginUsername"))
			http.SetCookie(w, &http.Cookie{Name: "sessionId", Value: "abc", Path: "/"})
		case "/status":
			c, err := r.Cookie("sessionId")
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte("session " + c.Value))
		}
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL, "", "")
	_, err := s.PostForm(context.Background(), s.URL("/goform/login"), url.Values{"loginUsername": {"admin"}})
	require.NoError(t, err)

	resp, err := s.Get(context.Background(), s.URL("/status"), false)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "session abc", resp.Body)
}

func TestSession_DecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "Modem Übersicht" in Latin-1.
		_, _ = w.Write([]byte("Modem \xdcbersicht"))
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL, "", "")
	resp, err := s.Get(context.Background(), s.URL("/"), false)
	require.NoError(t, err)
	assert.Equal(t, "Modem Übersicht", resp.Body)
}

func TestSession_NonOKIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL, "", "")
	resp, err := s.Get(context.Background(), s.URL("/missing"), false)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSession_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	s := newTestSession(t, base, "", "")
	_, err := s.Get(context.Background(), s.URL("/"), false)
	assert.Error(t, err)
}

func TestDefaultCandidates(t *testing.T) {
	s := newTestSession(t, "http://192.168.100.1", "", "")
	cands := DefaultCandidates(s)
	require.Len(t, cands, 7)
	assert.Equal(t, EndpointCandidate{URL: "http://192.168.100.1/cmconnectionstatus.html", Auth: AuthBasic}, cands[0])
	assert.Equal(t, "http://192.168.100.1/", cands[len(cands)-1].URL)
}
