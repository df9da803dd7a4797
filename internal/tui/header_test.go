package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dm/cmm-go/internal/engine"
	"github.com/dm/cmm-go/internal/model"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, ""},
		{"unreachable", &engine.FetchError{Reason: engine.ReasonUnreachable}, "Modem unreachable"},
		{"login", &engine.FetchError{Reason: engine.ReasonLoginFailed}, "Login failed"},
		{"parser", fmt.Errorf("fetch: %w", &engine.FetchError{Reason: engine.ReasonParserNotFound}), "Unsupported modem"},
		{"deadline", fmt.Errorf("refresh: %w", context.DeadlineExceeded), "Timeout"},
		{"short unknown", errors.New("some random error"), "some random error"},
		{"long unknown", errors.New("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyError(tc.err))
		})
	}
}

func TestRenderHeader_Connecting(t *testing.T) {
	app, _ := newTestApp()
	app.width = 100
	out := stripANSI(renderHeader(app))
	assert.Contains(t, out, "Connecting to 192.168.100.1...")
	assert.NotContains(t, out, "retry")
}

func TestRenderHeader_FirstPollFailed(t *testing.T) {
	app, _ := newTestApp()
	app.width = 120
	app.Update(pollFailed(t0, engine.ReasonUnreachable))

	out := stripANSI(renderHeader(app))
	assert.Contains(t, out, "● UNREACHABLE  Modem unreachable")
	assert.Contains(t, out, "Press r to retry")
}

func TestRenderHeader_Online(t *testing.T) {
	app, _ := newTestApp()
	app.width = 120
	app.Update(pollOK(onlineSnapshot(t0, 0, 0)))

	out := stripANSI(renderHeader(app))
	assert.Contains(t, out, "192.168.100.1")
	assert.Contains(t, out, "● ONLINE")
	assert.Contains(t, out, "Last: 10:00:00  Poll: 10m")
}

func TestRenderHeader_LostAfterSuccess(t *testing.T) {
	app, _ := newTestApp()
	app.width = 120
	app.Update(pollOK(onlineSnapshot(t0, 0, 0)))
	app.Update(pollFailed(t0.Add(time.Minute), engine.ReasonParserNotFound))

	out := stripANSI(renderHeader(app))
	assert.Contains(t, out, "● OFFLINE  Unsupported modem")
	assert.Contains(t, out, "Press r to retry")
}

func TestRenderHeader_Restarting(t *testing.T) {
	app, _ := newTestApp()
	app.width = 120
	app.Update(pollOK(onlineSnapshot(t0, 0, 0)))
	app.restarting = true

	out := stripANSI(renderHeader(app))
	assert.Contains(t, out, "Restarting")
	assert.NotContains(t, out, "ONLINE")
}

func TestStatusOf(t *testing.T) {
	app, _ := newTestApp()
	app.lastError = &engine.FetchError{Reason: engine.ReasonLoginFailed}
	assert.Equal(t, model.StatusUnreachable, statusOf(app))
	app.lastError = &engine.FetchError{Reason: engine.ReasonOffline}
	assert.Equal(t, model.StatusOffline, statusOf(app))
}
