// Package dashboard holds the application state behind the weather dashboard
// and turns user actions and timer ticks into fetches, renders and alerts.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/alert"
	"github.com/i474232898/weather-dashboard/internal/notify"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// ErrEmptyQuery is returned by Search for a blank location.
var ErrEmptyQuery = errors.New("location query is empty")

// Fetcher performs the network fetch step.
type Fetcher interface {
	Fetch(ctx context.Context, query string, units weather.Units) (weather.Snapshot, error)
}

// Emitter accepts notifications; delivery is best-effort.
type Emitter interface {
	Notify(n notify.Notification)
}

// Settings are the user-adjustable controls.
type Settings struct {
	Units                weather.Units                  `json:"units"`
	RefreshInterval      scheduler.RefreshInterval      `json:"refreshInterval"`
	NotificationInterval scheduler.NotificationInterval `json:"notificationInterval"`
	Band                 alert.Band                     `json:"band"`
	AlertsEnabled        bool                           `json:"alertsEnabled"`
}

// Status is the non-blocking status line.
type Status struct {
	Refreshing bool      `json:"refreshing"`
	Level      string    `json:"level,omitempty"`
	Message    string    `json:"message,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

// State is a consistent copy of everything the dashboard shows.
type State struct {
	View           *View    `json:"view,omitempty"`
	Settings       Settings `json:"settings"`
	Status         Status   `json:"status"`
	AlertTriggered bool     `json:"alertTriggered"`
	Query          string   `json:"query,omitempty"`
	Recent         []string `json:"recent"`
}

// Deps are the collaborators of an App.
type Deps struct {
	Fetcher Fetcher
	Slot    *store.Slot
	Emitter Emitter
	Runner  *scheduler.Runner
	Logger  *slog.Logger
}

// App is the dashboard core.
type App struct {
	fetcher Fetcher
	slot    *store.Slot
	emitter Emitter
	logger  *slog.Logger
	now     func() time.Time

	refresh  *scheduler.Refresh
	notifier *scheduler.Notifier

	// fetchMu orders fetches so that a unit change and a search never interleave.
	fetchMu sync.Mutex

	// mu guards the fields below and every slot read or write.
	mu            sync.Mutex
	units         weather.Units
	band          alert.Band
	alertState    alert.State
	alertsEnabled bool
	query         string
	view          *View
	status        Status
}

// New creates an App. initial supplies the starting settings; its intervals
// are applied by Start.
func New(deps Deps, initial Settings) *App {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	slot := deps.Slot
	if slot == nil {
		slot = store.NewSlot(0)
	}

	a := &App{
		fetcher:       deps.Fetcher,
		slot:          slot,
		emitter:       deps.Emitter,
		logger:        logger,
		now:           time.Now,
		units:         initial.Units,
		band:          initial.Band,
		alertsEnabled: initial.AlertsEnabled,
	}
	a.refresh = scheduler.NewRefresh(deps.Runner, a, logger)
	a.notifier = scheduler.NewNotifier(deps.Runner, slot, deps.Emitter, logger)
	return a
}

// Start arms the refresh scheduler and the periodic notifier.
func (a *App) Start(initial Settings) error {
	if err := a.refresh.Start(initial.RefreshInterval); err != nil {
		return err
	}
	return a.notifier.Set(initial.NotificationInterval)
}

// Stop cancels all scheduled work.
func (a *App) Stop() {
	a.refresh.Stop()
	a.notifier.Stop()
}

// Search fetches weather for query under the current units. On failure the
// last known weather stays on display.
func (a *App) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return ErrEmptyQuery
	}

	a.fetchMu.Lock()
	defer a.fetchMu.Unlock()

	a.mu.Lock()
	units := a.units
	a.mu.Unlock()

	return a.fetchLocked(ctx, query, units)
}

// SetUnits switches the unit system and re-fetches the last query under it.
func (a *App) SetUnits(ctx context.Context, units weather.Units) error {
	a.fetchMu.Lock()
	defer a.fetchMu.Unlock()

	a.mu.Lock()
	a.units = units
	query := a.query
	a.mu.Unlock()

	a.logger.Info("units changed", "units", units.String())
	if query == "" {
		return nil
	}
	return a.fetchLocked(ctx, query, units)
}

// fetchLocked must be called with fetchMu held.
func (a *App) fetchLocked(ctx context.Context, query string, units weather.Units) error {
	snap, err := a.fetcher.Fetch(ctx, query, units)
	if err != nil {
		a.reportFetchError(query, err)
		return err
	}

	// The slot is written and read under mu so a tick can never render a
	// snapshot older than the last completed fetch.
	a.mu.Lock()
	defer a.mu.Unlock()
	a.slot.Save(snap)
	a.query = query
	a.setStatusLocked("info", fmt.Sprintf("Showing weather for %s, %s", snap.Record.Location, snap.Record.Country))
	a.renderLocked(snap)
	return nil
}

func (a *App) reportFetchError(query string, err error) {
	var level, msg string
	switch {
	case errors.Is(err, weather.ErrNotFound):
		level, msg = "warn", fmt.Sprintf("City not found: %s", query)
	case errors.Is(err, weather.ErrMalformed):
		level, msg = "error", "Received an unexpected response from the weather service; showing last known data"
	default:
		level, msg = "error", "Could not reach the weather service; showing last known data"
	}
	a.logger.Warn("weather fetch failed", "query", query, "error", err)

	a.mu.Lock()
	a.setStatusLocked(level, msg)
	a.mu.Unlock()
}

// SetRefreshInterval redisplays immediately, then continues at interval.
func (a *App) SetRefreshInterval(interval scheduler.RefreshInterval) error {
	return a.refresh.Reconfigure(interval)
}

// SetNotificationInterval changes the periodic notification setting.
func (a *App) SetNotificationInterval(interval scheduler.NotificationInterval) error {
	return a.notifier.Set(interval)
}

// SetLowerBound drags the lower alert bound, clamped below the upper one.
func (a *App) SetLowerBound(v int) alert.Band {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.band = a.band.WithLower(v)
	return a.band
}

// SetUpperBound drags the upper alert bound, clamped above the lower one.
func (a *App) SetUpperBound(v int) alert.Band {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.band = a.band.WithUpper(v)
	return a.band
}

// SetAlertsEnabled toggles temperature alerts. The triggered flag is kept.
func (a *App) SetAlertsEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alertsEnabled = enabled
}

// SetRefreshing implements scheduler.Display.
func (a *App) SetRefreshing(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status.Refreshing = on
}

// Redisplay implements scheduler.Display: it renders the current snapshot
// and evaluates alerts against it.
func (a *App) Redisplay() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap, err := a.slot.Latest()
	if err != nil {
		return false
	}
	a.renderLocked(snap)
	return true
}

func (a *App) renderLocked(snap weather.Snapshot) {
	v := Render(snap, a.now())
	a.view = &v

	rec := snap.Record
	al, next := alert.Evaluate(rec.Temperature, a.band, a.alertState, a.alertsEnabled)
	a.alertState = next
	if al != nil && a.emitter != nil {
		a.logger.Info("temperature alert", "temperature", rec.Temperature, "direction", string(al.Direction))
		a.emitter.Notify(notify.ForAlert(*al, rec.Units, snap.IconPath))
	}
}

func (a *App) setStatusLocked(level, msg string) {
	a.status.Level = level
	a.status.Message = msg
	a.status.UpdatedAt = a.now().UTC()
}

// View returns the last rendered view, or false before the first render.
func (a *App) View() (View, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.view == nil {
		return View{}, false
	}
	v := *a.view
	v.Forecast = append([]ForecastItem(nil), a.view.Forecast...)
	return v, true
}

// State returns a copy of the dashboard state.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := State{
		Settings: Settings{
			Units:                a.units,
			RefreshInterval:      a.refresh.Interval(),
			NotificationInterval: a.notifier.Interval(),
			Band:                 a.band,
			AlertsEnabled:        a.alertsEnabled,
		},
		Status:         a.status,
		AlertTriggered: a.alertState.Triggered,
		Query:          a.query,
		Recent:         a.slot.Recent(),
	}
	if a.view != nil {
		v := *a.view
		v.Forecast = append([]ForecastItem(nil), a.view.Forecast...)
		st.View = &v
	}
	return st
}
