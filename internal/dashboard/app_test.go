package dashboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/alert"
	"github.com/i474232898/weather-dashboard/internal/notify"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

type fakeFetcher struct {
	mu    sync.Mutex
	temps map[weather.Units]float64
	err   error
	calls []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, query string, units weather.Units) (weather.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("%s/%s", query, units))
	if f.err != nil {
		return weather.Snapshot{}, f.err
	}
	return weather.Snapshot{
		Query: query,
		Record: weather.Record{
			Location:    query,
			Country:     "GB",
			Temperature: f.temps[units],
			FeelsLike:   f.temps[units],
			Description: "light rain",
			Units:       units,
		},
		AirQuality: 2,
		IconPath:   "/tmp/10d.png",
	}, nil
}

func (f *fakeFetcher) setTemp(units weather.Units, v float64) {
	f.mu.Lock()
	f.temps[units] = v
	f.mu.Unlock()
}

type collectingEmitter struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (e *collectingEmitter) Notify(n notify.Notification) {
	e.mu.Lock()
	e.sent = append(e.sent, n)
	e.mu.Unlock()
}

func (e *collectingEmitter) all() []notify.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]notify.Notification(nil), e.sent...)
}

func defaultSettings(t *testing.T) Settings {
	t.Helper()
	band, err := alert.NewBand(20, 30, alert.DefaultRange)
	require.NoError(t, err)
	return Settings{
		Units:                weather.Metric,
		RefreshInterval:      scheduler.Refresh15min,
		NotificationInterval: scheduler.NotifyOff,
		Band:                 band,
		AlertsEnabled:        true,
	}
}

func newTestApp(t *testing.T, fetcher Fetcher) (*App, *collectingEmitter, *store.Slot) {
	t.Helper()
	runner := scheduler.NewRunner()
	runner.Start()
	t.Cleanup(runner.Stop)

	emitter := &collectingEmitter{}
	slot := store.NewSlot(5)
	settings := defaultSettings(t)
	app := New(Deps{
		Fetcher: fetcher,
		Slot:    slot,
		Emitter: emitter,
		Runner:  runner,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, settings)
	app.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	require.NoError(t, app.Start(settings))
	t.Cleanup(app.Stop)
	return app, emitter, slot
}

func TestSearchRendersResult(t *testing.T) {
	f := &fakeFetcher{temps: map[weather.Units]float64{weather.Metric: 25}}
	app, emitter, slot := newTestApp(t, f)

	require.NoError(t, app.Search(context.Background(), "  London "))

	st := app.State()
	require.NotNil(t, st.View)
	assert.Equal(t, "London, GB", st.View.Location)
	assert.Equal(t, "25°C", st.View.Temperature)
	assert.Equal(t, "London", st.Query)
	assert.Equal(t, "info", st.Status.Level)
	assert.Equal(t, []string{"London"}, st.Recent)
	assert.Empty(t, emitter.all())

	snap, err := slot.Latest()
	require.NoError(t, err)
	assert.Equal(t, "London", snap.Query)
}

func TestSearchRejectsBlankQuery(t *testing.T) {
	f := &fakeFetcher{temps: map[weather.Units]float64{}}
	app, _, _ := newTestApp(t, f)

	assert.ErrorIs(t, app.Search(context.Background(), "   "), ErrEmptyQuery)
	assert.Empty(t, f.calls)
}

func TestSearchNotFoundKeepsLastRecord(t *testing.T) {
	f := &fakeFetcher{temps: map[weather.Units]float64{weather.Metric: 25}}
	app, _, slot := newTestApp(t, f)
	require.NoError(t, app.Search(context.Background(), "London"))

	f.err = fmt.Errorf("%w: city not found", weather.ErrNotFound)
	err := app.Search(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, weather.ErrNotFound)

	st := app.State()
	assert.Equal(t, "City not found: Atlantis", st.Status.Message)
	assert.Equal(t, "London", st.Query)
	assert.Equal(t, "London, GB", st.View.Location)

	snap, err := slot.Latest()
	require.NoError(t, err)
	assert.Equal(t, "London", snap.Record.Location)
}

func TestSearchNetworkErrorKeepsLastRecord(t *testing.T) {
	f := &fakeFetcher{temps: map[weather.Units]float64{weather.Metric: 25}}
	app, _, _ := newTestApp(t, f)
	require.NoError(t, app.Search(context.Background(), "London"))

	f.err = fmt.Errorf("%w: connection refused", weather.ErrNetwork)
	assert.ErrorIs(t, app.Search(context.Background(), "Paris"), weather.ErrNetwork)

	st := app.State()
	assert.Equal(t, "error", st.Status.Level)
	assert.Equal(t, "London, GB", st.View.Location)
}

func TestSetUnitsRefetchesLastQuery(t *testing.T) {
	f := &fakeFetcher{temps: map[weather.Units]float64{
		weather.Metric:   25,
		weather.Imperial: 77,
	}}
	app, _, slot := newTestApp(t, f)
	require.NoError(t, app.Search(context.Background(), "London"))

	require.NoError(t, app.SetUnits(context.Background(), weather.Imperial))

	assert.Equal(t, []string{"London/metric", "London/imperial"}, f.calls)
	snap, err := slot.Latest()
	require.NoError(t, err)
	assert.Equal(t, weather.Imperial, snap.Record.Units)
	assert.Equal(t, 77.0, snap.Record.Temperature)

	st := app.State()
	assert.Equal(t, "77°F", st.View.Temperature)
	assert.Equal(t, weather.Imperial, st.Settings.Units)
}

func TestSetUnitsWithoutQuery(t *testing.T) {
	f := &fakeFetcher{temps: map[weather.Units]float64{}}
	app, _, _ := newTestApp(t, f)

	require.NoError(t, app.SetUnits(context.Background(), weather.Standard))
	assert.Empty(t, f.calls)
	assert.Equal(t, weather.Standard, app.State().Settings.Units)
}

func TestAlertFiresOncePerExcursion(t *testing.T) {
	f := &fakeFetcher{temps: map[weather.Units]float64{weather.Metric: 35}}
	app, emitter, _ := newTestApp(t, f)

	require.NoError(t, app.Search(context.Background(), "Cairo"))
	require.Len(t, emitter.all(), 1)
	assert.Equal(t, notify.KindAlert, emitter.all()[0].Kind)
	assert.Equal(t, "/tmp/10d.png", emitter.all()[0].Icon)
	assert.True(t, app.State().AlertTriggered)

	require.True(t, app.Redisplay())
	require.True(t, app.Redisplay())
	assert.Len(t, emitter.all(), 1)

	f.setTemp(weather.Metric, 25)
	require.NoError(t, app.Search(context.Background(), "Cairo"))
	assert.False(t, app.State().AlertTriggered)

	f.setTemp(weather.Metric, 10)
	require.NoError(t, app.Search(context.Background(), "Cairo"))
	assert.Len(t, emitter.all(), 2)
}

func TestAlertsDisabled(t *testing.T) {
	f := &fakeFetcher{temps: map[weather.Units]float64{weather.Metric: 35}}
	app, emitter, _ := newTestApp(t, f)
	app.SetAlertsEnabled(false)

	require.NoError(t, app.Search(context.Background(), "Cairo"))
	require.True(t, app.Redisplay())
	assert.Empty(t, emitter.all())
	assert.False(t, app.State().Settings.AlertsEnabled)
}

func TestBandAdjustmentsClamp(t *testing.T) {
	f := &fakeFetcher{temps: map[weather.Units]float64{}}
	app, _, _ := newTestApp(t, f)

	band := app.SetLowerBound(40)
	assert.Equal(t, 29, band.Lower)
	assert.Equal(t, 30, band.Upper)

	band = app.SetUpperBound(-50)
	assert.Equal(t, 29, band.Lower)
	assert.Equal(t, 30, band.Upper)

	band = app.SetUpperBound(45)
	assert.Equal(t, 45, band.Upper)
	assert.Equal(t, band, app.State().Settings.Band)
}

func TestRedisplayWithoutData(t *testing.T) {
	f := &fakeFetcher{temps: map[weather.Units]float64{}}
	app, _, _ := newTestApp(t, f)

	assert.False(t, app.Redisplay())
	assert.Nil(t, app.State().View)
}

func TestSetRefreshIntervalRedisplaysImmediately(t *testing.T) {
	f := &fakeFetcher{temps: map[weather.Units]float64{weather.Metric: 25}}
	app, _, _ := newTestApp(t, f)
	require.NoError(t, app.Search(context.Background(), "London"))
	first := app.State().View.RenderedAt

	app.now = func() time.Time { return time.Date(2024, 3, 1, 12, 5, 0, 0, time.UTC) }
	require.NoError(t, app.SetRefreshInterval(scheduler.Refresh5min))

	st := app.State()
	assert.Equal(t, scheduler.Refresh5min, st.Settings.RefreshInterval)
	assert.True(t, st.View.RenderedAt.After(first))
	assert.False(t, st.Status.Refreshing)
	assert.Len(t, f.calls, 1)
}

func TestSetNotificationIntervalNow(t *testing.T) {
	f := &fakeFetcher{temps: map[weather.Units]float64{weather.Metric: 25}}
	app, emitter, _ := newTestApp(t, f)
	require.NoError(t, app.Search(context.Background(), "London"))

	require.NoError(t, app.SetNotificationInterval(scheduler.NotifyNow))

	sent := emitter.all()
	require.Len(t, sent, 1)
	assert.Equal(t, notify.KindSummary, sent[0].Kind)
	assert.Equal(t, scheduler.NotifyOff, app.State().Settings.NotificationInterval)
}

func TestViewBeforeAndAfterSearch(t *testing.T) {
	f := &fakeFetcher{temps: map[weather.Units]float64{weather.Metric: 21.5}}
	app, _, _ := newTestApp(t, f)

	_, ok := app.View()
	assert.False(t, ok)

	require.NoError(t, app.Search(context.Background(), "Oslo"))
	v, ok := app.View()
	require.True(t, ok)
	assert.Equal(t, "21.5°C", v.Temperature)
	assert.Equal(t, "Fair", v.AirQuality)
}

type cityFetcher struct {
	temps map[string]float64
}

func (f cityFetcher) Fetch(ctx context.Context, query string, units weather.Units) (weather.Snapshot, error) {
	return weather.Snapshot{
		Query: query,
		Record: weather.Record{
			Location:    query,
			Country:     "XX",
			Temperature: f.temps[query],
			Units:       units,
		},
	}, nil
}

func TestRedisplayRacingSearchNeverRendersStaleRecord(t *testing.T) {
	app, emitter, _ := newTestApp(t, cityFetcher{temps: map[string]float64{
		"London": 25,
		"Cairo":  40,
	}})
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		require.NoError(t, app.Search(ctx, "London"))
		before := len(emitter.all())

		// Queue a tick behind the state lock, then let it race the search.
		app.mu.Lock()
		done := make(chan struct{})
		go func() {
			defer close(done)
			app.Redisplay()
		}()
		time.Sleep(time.Millisecond)
		app.mu.Unlock()

		require.NoError(t, app.Search(ctx, "Cairo"))
		<-done
		require.True(t, app.Redisplay())

		st := app.State()
		require.Equal(t, "Cairo, XX", st.View.Location, "iteration %d", i)
		require.True(t, st.AlertTriggered, "iteration %d", i)
		require.Len(t, emitter.all(), before+1, "iteration %d", i)
	}
}
