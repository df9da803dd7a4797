package restart

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dm/cmm-go/internal/notify"
)

// ErrRestartFailed is returned by Trigger.Restart when the modem did not
// accept the restart command.
var ErrRestartFailed = errors.New("modem restart failed")

// Modem is the scraper half a restart needs.
type Modem interface {
	Restart(ctx context.Context) (bool, error)
	// ModemName names the detected modem; false when none was detected.
	ModemName() (string, bool)
}

// Trigger is the user-facing restart action: send the command, tell the
// user, and hand over to the orchestrator.
type Trigger struct {
	modem    Modem
	orch     *Orchestrator
	notifier notify.Notifier
	log      zerolog.Logger
}

// NewTrigger returns a Trigger restarting modem and monitoring with orch.
func NewTrigger(modem Modem, orch *Orchestrator, notifier notify.Notifier, log zerolog.Logger) *Trigger {
	return &Trigger{modem: modem, orch: orch, notifier: notifier, log: log}
}

// Restart sends the restart command. On success it starts monitoring in the
// background under ctx and returns the channel that will carry the report;
// the command itself is not retried.
func (t *Trigger) Restart(ctx context.Context) (<-chan Report, error) {
	if t.orch.Running() {
		return nil, ErrAlreadyRunning
	}

	t.log.Info().Msg("Modem restart requested")
	ok, err := t.modem.Restart(ctx)
	if err != nil || !ok {
		name := "Unknown"
		if n, found := t.modem.ModemName(); found {
			name = n
		}
		t.log.Error().Err(err).Str("modem", name).Msg("Failed to restart modem")
		t.notifier.Notify("Modem Restart Failed",
			fmt.Sprintf("Failed to restart modem. Your modem (%s) may not support remote restart. Check logs for details.", name),
			NotificationErrorID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRestartFailed, err)
		}
		return nil, ErrRestartFailed
	}

	t.log.Info().Msg("Modem restart initiated successfully")
	t.notifier.Notify("Modem Restart", "Modem restart command sent. Monitoring modem status...", NotificationID)
	return t.orch.Start(ctx)
}
