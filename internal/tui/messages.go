package tui

import (
	"time"

	"github.com/dm/cmm-go/internal/model"
	"github.com/dm/cmm-go/internal/notify"
	"github.com/dm/cmm-go/internal/restart"
)

// PollMsg delivers one poll cycle result, either from a scheduled cycle or a
// manual refresh.
type PollMsg struct{ Result model.PollResult }

// RetryMsg triggers a refresh after a failed poll.
type RetryMsg time.Time

// RestartStartedMsg carries the report channel of a running restart monitor.
type RestartStartedMsg struct{ Reports <-chan restart.Report }

// RestartDoneMsg is sent when restart monitoring finishes.
type RestartDoneMsg struct{ Report restart.Report }

// RestartErrorMsg signals the restart command itself failed.
type RestartErrorMsg struct{ Err error }

// NotificationMsg forwards a user notification into the dashboard.
type NotificationMsg struct{ Notification notify.Notification }
