// Package notify delivers user-facing notifications. Delivery is fire and
// forget: a Notifier never reports failure back to the caller.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Notifier shows a titled message to the user. Notifications sharing an id
// replace each other.
type Notifier interface {
	Notify(title, message, id string)
}

// Notification is one delivered notification.
type Notification struct {
	Title   string    `json:"title"`
	Message string    `json:"message"`
	ID      string    `json:"notification_id"`
	At      time.Time `json:"at"`
}

// Log writes notifications to a logger.
type Log struct {
	log zerolog.Logger
}

// NewLog returns a Notifier that logs at info level.
func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Notify(title, message, id string) {
	l.log.Info().Str("notification_id", id).Str("title", title).Msg(message)
}

// Func adapts a function to Notifier.
type Func func(title, message, id string)

func (f Func) Notify(title, message, id string) {
	f(title, message, id)
}

// Multi fans a notification out to every Notifier in order.
type Multi []Notifier

func (m Multi) Notify(title, message, id string) {
	for _, n := range m {
		n.Notify(title, message, id)
	}
}

// Recorder keeps the latest notification per id. The --restart report lists
// what it recorded.
type Recorder struct {
	mu     sync.Mutex
	order  []string
	latest map[string]Notification
	now    func() time.Time
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{latest: map[string]Notification{}, now: time.Now}
}

func (r *Recorder) Notify(title, message, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, seen := r.latest[id]; !seen {
		r.order = append(r.order, id)
	}
	r.latest[id] = Notification{Title: title, Message: message, ID: id, At: r.now()}
}

// Latest returns the current notification for id.
func (r *Recorder) Latest(id string) (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.latest[id]
	return n, ok
}

// All returns the current notification of every id, in first-seen order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.latest[id])
	}
	return out
}
