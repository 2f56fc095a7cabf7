// Package notify delivers notifications to the desktop and any other
// configured sinks on a best-effort basis.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes alert notifications from periodic summaries.
type Kind string

const (
	KindAlert   Kind = "alert"
	KindSummary Kind = "summary"
)

// Duration is how long the OS should keep the notification on screen.
type Duration string

const (
	DurationShort Duration = "short"
	DurationLong  Duration = "long"
)

// Notification is one message for the user.
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Icon      string    `json:"icon,omitempty"`
	Duration  Duration  `json:"duration"`
	Sound     bool      `json:"sound"`
	CreatedAt time.Time `json:"createdAt"`
}

// New creates a long-duration notification with a fresh ID.
func New(kind Kind, title, body, icon string, sound bool) Notification {
	return Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Title:     title,
		Body:      body,
		Icon:      icon,
		Duration:  DurationLong,
		Sound:     sound,
		CreatedAt: time.Now().UTC(),
	}
}

// Sink is a destination for notifications.
type Sink interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}

// Dispatcher fans notifications out to its sinks. Delivery happens in the
// background; failures are logged and dropped, never retried.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	logger  *slog.Logger

	wg sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. timeout bounds each sink delivery.
func NewDispatcher(logger *slog.Logger, timeout time.Duration, sinks ...Sink) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{sinks: sinks, timeout: timeout, logger: logger}
}

// Notify emits n to every sink and returns immediately.
func (d *Dispatcher) Notify(n Notification) {
	d.logger.Info("notification", "kind", n.Kind, "title", n.Title, "id", n.ID)

	for _, s := range d.sinks {
		s := s
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					d.logger.Warn("notification sink panicked", "sink", s.Name(), "panic", r)
				}
			}()

			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()

			if err := s.Send(ctx, n); err != nil {
				d.logger.Warn("notification not delivered", "sink", s.Name(), "id", n.ID, "error", err)
			}
		}()
	}
}

// Wait blocks until every in-flight delivery has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
