// Package restart drives a modem reboot: it sends the restart command and
// then watches the modem come back in two phases, first until it answers
// HTTP at all, then until it has locked RF channels again.
package restart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dm/cmm-go/internal/model"
	"github.com/dm/cmm-go/internal/notify"
)

// Notification ids. Progress notifications share one id so each replaces
// the previous.
const (
	NotificationID      = "cable_modem_restart"
	NotificationErrorID = "cable_modem_restart_error"
)

const finalRefreshTimeout = 30 * time.Second

// ErrAlreadyRunning is returned by Start while a restart is being monitored.
var ErrAlreadyRunning = errors.New("restart monitoring already running")

// Scheduler is the polling collaborator the orchestrator drives.
type Scheduler interface {
	IntervalSetter
	// RequestRefresh runs one poll cycle now and returns its result.
	RequestRefresh(ctx context.Context) (*model.Snapshot, error)
}

// Timing holds the orchestrator's fixed delays and phase caps.
type Timing struct {
	FastInterval    time.Duration // polling interval while monitoring
	Grace           time.Duration // wait before the first check
	Step            time.Duration // wait between checks
	ResponseTimeout time.Duration // phase 1 cap
	SyncTimeout     time.Duration // phase 2 cap
}

// DefaultTiming allows two minutes for the modem to answer and five more for
// channel lock, which DOCSIS modems routinely need after a reboot.
func DefaultTiming() Timing {
	return Timing{
		FastInterval:    10 * time.Second,
		Grace:           5 * time.Second,
		Step:            10 * time.Second,
		ResponseTimeout: 120 * time.Second,
		SyncTimeout:     300 * time.Second,
	}
}

// Phase is the orchestrator's current state.
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseWaitingForResponse Phase = "waiting_for_response"
	PhaseWaitingForSync     Phase = "waiting_for_sync"
	PhaseDone               Phase = "done"
)

// Outcome is how a monitoring run ended.
type Outcome string

const (
	// OutcomeCompleted: the modem is online with channels.
	OutcomeCompleted Outcome = "completed"
	// OutcomeStillDegraded: the modem answers but never reported channels
	// within the sync cap. Not a failure; lock can take longer.
	OutcomeStillDegraded Outcome = "still_degraded"
	// OutcomeTimeout: the modem never answered within the response cap.
	OutcomeTimeout Outcome = "timeout"
	// OutcomeCancelled: the context ended first.
	OutcomeCancelled Outcome = "cancelled"
	// OutcomeFailed: monitoring stopped on an unexpected error.
	OutcomeFailed Outcome = "failed"
)

// Report summarises a monitoring run.
type Report struct {
	Outcome       Outcome
	ResponseAfter time.Duration // phase 1 time until the modem answered
	Total         time.Duration // phase 1 + phase 2 time
	Downstream    int
	Upstream      int
}

// Orchestrator runs restart monitoring. One run at a time.
type Orchestrator struct {
	sched    Scheduler
	notifier notify.Notifier
	timing   Timing
	sleep    func(ctx context.Context, d time.Duration) error
	log      zerolog.Logger

	mu      sync.Mutex
	running bool
	phase   Phase
}

// NewOrchestrator returns an Orchestrator driving sched.
func NewOrchestrator(sched Scheduler, notifier notify.Notifier, timing Timing, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		sched:    sched,
		notifier: notifier,
		timing:   timing,
		sleep:    sleepCtx,
		log:      log,
		phase:    PhaseIdle,
	}
}

// Phase returns the current phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// Running reports whether a run is in progress.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

func (o *Orchestrator) setPhase(p Phase) {
	o.mu.Lock()
	o.phase = p
	o.mu.Unlock()
}

// Start runs the monitoring in a new goroutine bound to ctx. The returned
// channel receives the report and is then closed.
func (o *Orchestrator) Start(ctx context.Context) (<-chan Report, error) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	o.running = true
	o.mu.Unlock()

	out := make(chan Report, 1)
	go func() {
		defer close(out)
		out <- o.run(ctx)
	}()
	return out, nil
}

// Run monitors synchronously. It returns ErrAlreadyRunning when another run
// is in progress.
func (o *Orchestrator) Run(ctx context.Context) (Report, error) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return Report{}, ErrAlreadyRunning
	}
	o.running = true
	o.mu.Unlock()

	return o.run(ctx), nil
}

func (o *Orchestrator) run(ctx context.Context) (report Report) {
	lease := AcquireInterval(o.sched, o.timing.FastInterval)
	o.log.Info().Dur("interval", o.timing.FastInterval).Dur("original", lease.Original()).Msg("Starting modem restart monitoring")

	defer func() {
		if rec := recover(); rec != nil {
			o.log.Error().Interface("panic", rec).Msg("Critical error in restart monitoring")
			report.Outcome = OutcomeFailed
		}
		lease.Release()
		o.log.Info().Dur("interval", lease.Original()).Msg("Restored polling interval")

		// Restoration must happen even when ctx is already done.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalRefreshTimeout)
		defer cancel()
		if _, err := o.refresh(fctx); err != nil {
			o.log.Warn().Err(err).Msg("Final refresh after restart monitoring failed")
		}

		o.mu.Lock()
		o.running = false
		o.phase = PhaseDone
		o.mu.Unlock()
	}()

	if err := o.sleep(ctx, o.timing.Grace); err != nil {
		return o.cancelled(report)
	}

	// Phase 1: any successful fetch counts, even with zero channels.
	o.setPhase(PhaseWaitingForResponse)
	o.log.Info().Msg("Phase 1: Waiting for modem to respond to HTTP requests")
	responding := false
	var elapsed time.Duration
	for elapsed < o.timing.ResponseTimeout {
		snap, err := o.refresh(ctx)
		if err := o.sleep(ctx, o.timing.Step); err != nil {
			report.ResponseAfter = elapsed
			return o.cancelled(report)
		}
		elapsed += o.timing.Step

		if err == nil && snap != nil {
			o.log.Info().Dur("elapsed", elapsed).Str("status", string(snap.ConnectionStatus)).Msg("Modem responding")
			responding = true
			break
		}
		o.log.Debug().Err(err).Dur("elapsed", elapsed).Msg("Modem not responding yet")
	}
	report.ResponseAfter = elapsed

	if !responding {
		o.log.Error().Dur("waited", o.timing.ResponseTimeout).Msg("Phase 1 failed: modem did not respond")
		o.notifier.Notify("Modem Restart Timeout",
			fmt.Sprintf("Modem did not respond after %d seconds. Check your modem.", seconds(o.timing.ResponseTimeout)),
			NotificationID)
		report.Outcome = OutcomeTimeout
		report.Total = elapsed
		return report
	}

	// Phase 2: wait for RF channel lock.
	o.setPhase(PhaseWaitingForSync)
	o.log.Info().Msg("Phase 2: Modem responding, waiting for channel sync")
	o.notifier.Notify("Modem Restarting",
		fmt.Sprintf("Modem responding after %ds. Waiting for channels to sync...", seconds(elapsed)),
		NotificationID)

	online := false
	var syncElapsed time.Duration
	for syncElapsed < o.timing.SyncTimeout {
		snap, err := o.refresh(ctx)
		if err := o.sleep(ctx, o.timing.Step); err != nil {
			report.Total = elapsed + syncElapsed
			return o.cancelled(report)
		}
		syncElapsed += o.timing.Step

		if err != nil || snap == nil {
			o.log.Debug().Err(err).Dur("elapsed", syncElapsed).Msg("Refresh failed during channel sync")
			continue
		}
		report.Downstream, report.Upstream = snap.DownstreamCount, snap.UpstreamCount
		if snap.ConnectionStatus == model.StatusOnline {
			online = true
			o.log.Info().Dur("total", elapsed+syncElapsed).Msg("Modem fully online with channels")
			break
		}
		o.log.Debug().Dur("elapsed", syncElapsed).Int("downstream", snap.DownstreamCount).Int("upstream", snap.UpstreamCount).
			Msg("Waiting for channel sync")
	}
	report.Total = elapsed + syncElapsed

	if online {
		report.Outcome = OutcomeCompleted
		o.notifier.Notify("Modem Restart Complete",
			fmt.Sprintf("Modem fully online after %ds with %d downstream and %d upstream channels.",
				seconds(report.Total), report.Downstream, report.Upstream),
			NotificationID)
		return report
	}

	report.Outcome = OutcomeStillDegraded
	o.notifier.Notify("Modem Restart Warning",
		fmt.Sprintf("Modem responding but channels not fully synced after %ds. This may be normal - check modem status.", seconds(report.Total)),
		NotificationID)
	return report
}

func (o *Orchestrator) cancelled(report Report) Report {
	o.log.Warn().Msg("Restart monitoring cancelled")
	report.Outcome = OutcomeCancelled
	return report
}

// refresh asks the scheduler for a cycle; a panicking scheduler counts as a
// failed refresh.
func (o *Orchestrator) refresh(ctx context.Context) (snap *model.Snapshot, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("refresh panicked: %v", rec)
		}
	}()
	return o.sched.RequestRefresh(ctx)
}

func seconds(d time.Duration) int {
	return int(d / time.Second)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
