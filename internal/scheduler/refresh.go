package scheduler

import (
	"log/slog"
	"sync"
)

// Display is what the refresh scheduler drives on every tick.
type Display interface {
	// SetRefreshing toggles the transient "refreshing" indicator.
	SetRefreshing(on bool)
	// Redisplay re-renders the last known record and reports whether there was one.
	Redisplay() bool
}

// Refresh periodically redisplays the current record. It never fetches.
type Refresh struct {
	ticker  *Ticker
	display Display
	logger  *slog.Logger

	mu       sync.Mutex
	interval RefreshInterval
}

// NewRefresh creates a refresh scheduler on r.
func NewRefresh(r *Runner, display Display, logger *slog.Logger) *Refresh {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Refresh{display: display, logger: logger}
	f.ticker = r.NewTicker("refresh", f.tick)
	return f
}

func (f *Refresh) tick() {
	f.display.SetRefreshing(true)
	defer f.display.SetRefreshing(false)

	if !f.display.Redisplay() {
		f.logger.Debug("refresh tick: no weather data yet")
	}
}

// Start arms the scheduler with interval.
func (f *Refresh) Start(interval RefreshInterval) error {
	f.setInterval(interval)
	return f.ticker.Start(interval.Duration())
}

// Reconfigure redisplays immediately and then continues at the new interval.
func (f *Refresh) Reconfigure(interval RefreshInterval) error {
	f.setInterval(interval)
	f.logger.Info("refresh interval changed", "interval", string(interval))
	return f.ticker.Reconfigure(interval.Duration())
}

// Stop cancels future ticks.
func (f *Refresh) Stop() {
	f.ticker.Stop()
}

// Interval returns the configured interval.
func (f *Refresh) Interval() RefreshInterval {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.interval
}

func (f *Refresh) setInterval(i RefreshInterval) {
	f.mu.Lock()
	f.interval = i
	f.mu.Unlock()
}
