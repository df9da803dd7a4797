package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dm/cmm-go/internal/model"
)

var errMockFailure = errors.New("mock failure")

// MockFetcher implements Fetcher for testing.
type MockFetcher struct {
	FetchFn func(ctx context.Context) (*model.Snapshot, error)
	calls   atomic.Int32
}

func (m *MockFetcher) Fetch(ctx context.Context) (*model.Snapshot, error) {
	m.calls.Add(1)
	if m.FetchFn != nil {
		return m.FetchFn(ctx)
	}
	snap := model.EmptySnapshot(model.StatusOnline, time.Now())
	snap.Downstream = []model.ChannelReading{{ChannelID: 1}}
	snap.DownstreamCount = 1
	return snap, nil
}

func (m *MockFetcher) Calls() int {
	return int(m.calls.Load())
}

// MockHealthChecker implements HealthChecker for testing.
type MockHealthChecker struct {
	CheckFn func(ctx context.Context, target string) model.HealthCheckResult
}

func (m *MockHealthChecker) Check(ctx context.Context, target string) model.HealthCheckResult {
	if m.CheckFn != nil {
		return m.CheckFn(ctx, target)
	}
	return model.HealthCheckResult{Timestamp: time.Now(), PingSuccess: true, HTTPSuccess: true}
}
