package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheckResult_Classification(t *testing.T) {
	tests := []struct {
		ping, http bool
		status     HealthStatus
		diagnosis  string
		healthy    bool
	}{
		{true, true, HealthHealthy, "Fully responsive", true},
		{true, false, HealthDegraded, "Web server issue", true},
		{false, true, HealthICMPBlocked, "ICMP blocked (firewall)", true},
		{false, false, HealthUnresponsive, "Network down / offline", false},
	}
	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			r := HealthCheckResult{PingSuccess: tc.ping, HTTPSuccess: tc.http}
			assert.Equal(t, tc.status, r.Status())
			assert.Equal(t, tc.diagnosis, r.Diagnosis())
			assert.Equal(t, tc.healthy, r.IsHealthy())
		})
	}
}

func TestPollResult_Success(t *testing.T) {
	assert.False(t, PollResult{}.Success())
	assert.True(t, PollResult{Snapshot: EmptySnapshot(StatusOffline, time.Time{})}.Success())
}
