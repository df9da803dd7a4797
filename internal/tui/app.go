package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dm/cmm-go/internal/engine"
	"github.com/dm/cmm-go/internal/health"
	"github.com/dm/cmm-go/internal/model"
	"github.com/dm/cmm-go/internal/notify"
	"github.com/dm/cmm-go/internal/restart"
)

// Poller is the scheduler the dashboard observes and nudges.
type Poller interface {
	RequestRefresh(ctx context.Context) (*model.Snapshot, error)
	Latest() (model.PollResult, bool)
	Interval() time.Duration
}

// HealthSource exposes the health monitor's running state.
type HealthSource interface {
	Summary() health.Summary
	Latencies(layer string) []float64
}

// Restarter sends a restart command and monitors recovery.
type Restarter interface {
	Restart(ctx context.Context) (<-chan restart.Report, error)
}

// maxRatePoints bounds the error rate sparkline history.
const maxRatePoints = 60

type connState int

const (
	stateConnected    connState = iota
	stateDisconnected connState = iota
)

// App is the root Bubble Tea model for cmm.
type App struct {
	poller    Poller
	health    HealthSource
	restarter Restarter
	target    string

	// Poll state
	fetching   bool
	current    *model.Snapshot
	previous   *model.Snapshot
	rates      model.ErrorRates
	advisories []model.Advisory
	corrected  []float64
	uncorrect  []float64

	// Connection state
	lastResultAt     time.Time
	connState        connState
	consecutiveFails int
	lastError        error
	lastUpdated      time.Time

	// Restart state
	restarting bool
	spinner    spinner.Model
	notice     *notify.Notification

	width, height int
	showHelp      bool
}

// NewApp creates the dashboard. target labels the header until the first
// successful poll; health and restarter may be nil.
func NewApp(p Poller, hs HealthSource, r Restarter, target string) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StyleYellow
	return &App{
		poller:    p,
		health:    hs,
		restarter: r,
		target:    target,
		spinner:   sp,
		connState: stateDisconnected,
	}
}

// Init loads whatever the scheduler already has. Scheduled cycles arrive as
// PollMsg through Program.Send.
func (app *App) Init() tea.Cmd {
	if app.poller == nil {
		return nil
	}
	if res, ok := app.poller.Latest(); ok {
		return func() tea.Msg { return PollMsg{Result: res} }
	}
	return nil
}

func (app *App) pollInterval() time.Duration {
	if app.poller == nil {
		return 0
	}
	return app.poller.Interval()
}

// Update implements tea.Model.
func (app *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		app.width = msg.Width
		app.height = msg.Height

	case PollMsg:
		return app, app.applyPoll(msg.Result)

	case RetryMsg:
		if app.fetching || app.restarting || app.connState == stateConnected {
			return app, nil
		}
		app.fetching = true
		return app, refreshCmd(app.poller, app.pollInterval())

	case RestartStartedMsg:
		app.restarting = true
		return app, waitReportCmd(msg.Reports)

	case RestartDoneMsg:
		app.restarting = false

	case RestartErrorMsg:
		// The trigger has already notified the user.
		app.restarting = false

	case NotificationMsg:
		n := msg.Notification
		app.notice = &n

	case spinner.TickMsg:
		if !app.restarting {
			return app, nil
		}
		var cmd tea.Cmd
		app.spinner, cmd = app.spinner.Update(msg)
		return app, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return app, tea.Quit
		case key.Matches(msg, keys.Refresh):
			if app.fetching || app.poller == nil {
				return app, nil
			}
			app.fetching = true
			return app, refreshCmd(app.poller, app.pollInterval())
		case key.Matches(msg, keys.Restart):
			if app.restarting || app.restarter == nil {
				return app, nil
			}
			app.restarting = true
			return app, tea.Batch(app.spinner.Tick, restartCmd(app.restarter))
		case key.Matches(msg, keys.Help):
			app.showHelp = !app.showHelp
		}
	}

	return app, nil
}

// applyPoll rotates snapshots and derives rates and advisories. A failed
// cycle schedules a retry with backoff unless a restart is being monitored.
func (app *App) applyPoll(res model.PollResult) tea.Cmd {
	app.fetching = false

	// A manual refresh and the scheduler callback can deliver the same cycle.
	if !res.At.IsZero() && res.At.Equal(app.lastResultAt) {
		return nil
	}
	app.lastResultAt = res.At

	if !res.Success() {
		app.consecutiveFails++
		app.lastError = res.Err
		app.connState = stateDisconnected
		if res.Snapshot != nil {
			app.advisories = engine.CalcAdvisories(res.Snapshot, model.ErrorRates{})
		}
		if app.restarting {
			return nil
		}
		return tea.Tick(backoffDuration(app.consecutiveFails, app.pollInterval()), func(t time.Time) tea.Msg {
			return RetryMsg(t)
		})
	}

	snap := res.Snapshot
	app.previous = app.current
	app.current = snap

	var elapsed time.Duration
	if app.previous != nil {
		elapsed = snap.FetchedAt.Sub(app.previous.FetchedAt)
		app.rates = engine.CalcErrorRates(app.previous, snap, elapsed)
		app.corrected = pushBounded(app.corrected, app.rates.CorrectedPerMin)
		app.uncorrect = pushBounded(app.uncorrect, app.rates.UncorrectedPerMin)
	} else {
		app.rates = model.ErrorRates{}
	}
	app.advisories = engine.CalcAdvisories(snap, app.rates)

	app.consecutiveFails = 0
	app.lastError = nil
	app.connState = stateConnected
	app.lastUpdated = snap.FetchedAt
	return nil
}

func pushBounded(values []float64, v float64) []float64 {
	values = append(values, v)
	if len(values) > maxRatePoints {
		values = values[len(values)-maxRatePoints:]
	}
	return values
}

// View implements tea.Model.
func (app *App) View() string {
	var parts []string

	if h := renderHeader(app); h != "" {
		parts = append(parts, h)
	}
	if o := renderOverview(app); o != "" {
		parts = append(parts, o)
	}
	if m := renderMetricsRow(app); m != "" {
		parts = append(parts, m)
	}
	if c := renderChannels(app); c != "" {
		parts = append(parts, c)
	}
	if a := renderAdvisories(app); a != "" {
		parts = append(parts, a)
	}
	parts = append(parts, renderFooter(app))

	return strings.Join(parts, "\n")
}

// refreshCmd runs a poll cycle now and reports the scheduler's latest result.
func refreshCmd(p Poller, interval time.Duration) tea.Cmd {
	return func() tea.Msg {
		timeout := interval
		if timeout <= 0 || timeout > 2*time.Minute {
			timeout = 2 * time.Minute
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		snap, err := p.RequestRefresh(ctx)
		if res, ok := p.Latest(); ok && res.Snapshot == snap {
			return PollMsg{Result: res}
		}
		return PollMsg{Result: model.PollResult{Snapshot: snap, Err: err, At: time.Now()}}
	}
}

// restartCmd sends the restart command. Monitoring continues in the
// background for up to the orchestrator's caps.
func restartCmd(r Restarter) tea.Cmd {
	return func() tea.Msg {
		reports, err := r.Restart(context.Background())
		if err != nil {
			return RestartErrorMsg{Err: err}
		}
		return RestartStartedMsg{Reports: reports}
	}
}

func waitReportCmd(reports <-chan restart.Report) tea.Cmd {
	return func() tea.Msg {
		return RestartDoneMsg{Report: <-reports}
	}
}

// backoffDuration returns min(2^fails seconds, 60s, interval).
// At fails=1: 2s, fails=2: 4s, fails=3: 8s, ..., fails>=6: 60s.
func backoffDuration(fails int, interval time.Duration) time.Duration {
	const maxBackoff = 60 * time.Second
	d := maxBackoff
	switch {
	case fails <= 0:
		d = time.Second
	case fails < 6:
		d = time.Duration(1<<fails) * time.Second
	}
	if interval > 0 && d > interval {
		d = interval
	}
	return d
}
