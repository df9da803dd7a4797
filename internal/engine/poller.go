package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dm/cmm-go/internal/model"
)

// Fetcher produces one normalized snapshot per call. *Scraper implements it.
type Fetcher interface {
	Fetch(ctx context.Context) (*model.Snapshot, error)
}

// HealthChecker runs one dual-layer health check. *health.Monitor implements it.
type HealthChecker interface {
	Check(ctx context.Context, target string) model.HealthCheckResult
}

// Poll runs the modem fetch and, when h is non-nil, a health check against
// target concurrently, and joins both before returning. Neither half can fail
// the other: a fetch error is carried in the result, and health checks
// report failure as data.
func Poll(ctx context.Context, f Fetcher, h HealthChecker, target string) model.PollResult {
	var (
		res model.PollResult
		g   errgroup.Group
	)

	g.Go(func() error {
		res.Snapshot, res.Err = f.Fetch(ctx)
		return nil
	})

	if h != nil {
		g.Go(func() error {
			hr := h.Check(ctx, target)
			res.Health = &hr
			return nil
		})
	}

	_ = g.Wait()
	res.At = time.Now()
	return res
}
