package scheduler

import (
	"log/slog"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/notify"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Latest provides the current snapshot.
type Latest interface {
	Latest() (weather.Snapshot, error)
}

// Emitter accepts notifications for delivery.
type Emitter interface {
	Notify(n notify.Notification)
}

// Notifier sends the periodic weather summary notification.
type Notifier struct {
	ticker  *Ticker
	source  Latest
	emitter Emitter
	logger  *slog.Logger

	mu       sync.Mutex
	interval NotificationInterval
}

// NewNotifier creates a notifier on r. It starts switched off.
func NewNotifier(r *Runner, source Latest, emitter Emitter, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	n := &Notifier{source: source, emitter: emitter, logger: logger, interval: NotifyOff}
	n.ticker = r.NewTicker("notify", n.send)
	return n
}

// Set applies a new notification setting. Off cancels the pending
// notification at once. Now sends one notification and leaves periodic
// notifications off. Any period sends one notification immediately and then
// one per period.
func (n *Notifier) Set(interval NotificationInterval) error {
	n.mu.Lock()
	n.interval = interval
	n.mu.Unlock()

	n.logger.Info("notification interval changed", "interval", string(interval))

	switch {
	case interval == NotifyNow:
		n.ticker.Stop()
		n.send()
		n.mu.Lock()
		n.interval = NotifyOff
		n.mu.Unlock()
		return nil
	case interval.Periodic():
		return n.ticker.Reconfigure(interval.Duration())
	default:
		n.ticker.Stop()
		return nil
	}
}

// Interval returns the active setting.
func (n *Notifier) Interval() NotificationInterval {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.interval
}

// Stop cancels future notifications.
func (n *Notifier) Stop() {
	n.ticker.Stop()
}

func (n *Notifier) send() {
	snap, err := n.source.Latest()
	if err != nil {
		n.logger.Warn("weather data is not available for notifications", "error", err)
		return
	}
	n.emitter.Notify(notify.ForSnapshot(snap))
}
