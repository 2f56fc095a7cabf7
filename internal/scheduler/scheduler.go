package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Runner owns the gocron scheduler shared by all tickers. Runs of the same
// job never overlap.
type Runner struct {
	mu   sync.Mutex // serialises gocron's job builder chain
	cron *gocron.Scheduler
}

// NewRunner creates a new Runner.
func NewRunner() *Runner {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Runner{cron: s}
}

// Start starts the underlying scheduler.
func (r *Runner) Start() {
	r.cron.StartAsync()
}

// Stop stops the scheduler and cancels any future jobs.
func (r *Runner) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

// Ticker is a single repeating job. At most one run is ever pending: arming
// the ticker again cancels the previous schedule.
type Ticker struct {
	runner *Runner
	tag    string
	fn     func()

	// runMu serialises runs of fn, whether started by gocron or by Reconfigure.
	runMu sync.Mutex

	mu       sync.Mutex
	armed    bool
	interval time.Duration
}

// NewTicker creates an unarmed ticker calling fn.
func (r *Runner) NewTicker(tag string, fn func()) *Ticker {
	return &Ticker{runner: r, tag: tag, fn: fn}
}

// Start arms the ticker; the first run happens after d.
func (t *Ticker) Start(d time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.arm(d)
}

// Reconfigure cancels any pending run, runs the callback once right away and
// then continues every d. A run already in progress finishes first.
func (t *Ticker) Reconfigure(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("scheduler: invalid interval %s", d)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancel()
	t.run()
	return t.arm(d)
}

// Stop cancels future runs immediately.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancel()
}

// Interval returns the current cadence, 0 when unarmed.
func (t *Ticker) Interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.armed {
		return 0
	}
	return t.interval
}

func (t *Ticker) arm(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("scheduler: invalid interval %s", d)
	}
	t.cancel()

	t.runner.mu.Lock()
	_, err := t.runner.cron.Every(d).Tag(t.tag).WaitForSchedule().Do(t.run)
	t.runner.mu.Unlock()
	if err != nil {
		return fmt.Errorf("scheduler: arm %s: %w", t.tag, err)
	}

	t.armed = true
	t.interval = d
	return nil
}

func (t *Ticker) run() {
	t.runMu.Lock()
	defer t.runMu.Unlock()
	t.fn()
}

func (t *Ticker) cancel() {
	if !t.armed {
		return
	}
	t.runner.mu.Lock()
	_ = t.runner.cron.RemoveByTag(t.tag)
	t.runner.mu.Unlock()
	t.armed = false
	t.interval = 0
}
