package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/alert"
	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/notify"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

type fakeDashboard struct {
	state        dashboard.State
	searchErr    error
	searched     []string
	units        []weather.Units
	refresh      []scheduler.RefreshInterval
	notification []scheduler.NotificationInterval
}

func newFakeDashboard() *fakeDashboard {
	band, _ := alert.NewBand(20, 30, alert.DefaultRange)
	return &fakeDashboard{state: dashboard.State{Settings: dashboard.Settings{Band: band}}}
}

func (f *fakeDashboard) State() dashboard.State { return f.state }

func (f *fakeDashboard) Search(ctx context.Context, query string) error {
	f.searched = append(f.searched, query)
	if f.searchErr != nil {
		return f.searchErr
	}
	f.state.Query = query
	return nil
}

func (f *fakeDashboard) SetUnits(ctx context.Context, units weather.Units) error {
	f.units = append(f.units, units)
	f.state.Settings.Units = units
	return nil
}

func (f *fakeDashboard) SetRefreshInterval(interval scheduler.RefreshInterval) error {
	f.refresh = append(f.refresh, interval)
	return nil
}

func (f *fakeDashboard) SetNotificationInterval(interval scheduler.NotificationInterval) error {
	f.notification = append(f.notification, interval)
	return nil
}

func (f *fakeDashboard) SetLowerBound(v int) alert.Band {
	f.state.Settings.Band = f.state.Settings.Band.WithLower(v)
	return f.state.Settings.Band
}

func (f *fakeDashboard) SetUpperBound(v int) alert.Band {
	f.state.Settings.Band = f.state.Settings.Band.WithUpper(v)
	return f.state.Settings.Band
}

func (f *fakeDashboard) SetAlertsEnabled(enabled bool) {
	f.state.Settings.AlertsEnabled = enabled
}

type fakeLog struct {
	items    []notify.Notification
	gotLimit int
	err      error
}

func (l *fakeLog) List(ctx context.Context, limit int) ([]notify.Notification, error) {
	l.gotLimit = limit
	return l.items, l.err
}

func newTestApp(dash Dashboard, log NotificationLog) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, dash, log)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestGetDashboard(t *testing.T) {
	dash := newFakeDashboard()
	dash.state.Query = "London"

	code, body := do(t, newTestApp(dash, nil), http.MethodGet, "/api/v1/dashboard", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "London", body["query"])
}

func TestSearch(t *testing.T) {
	dash := newFakeDashboard()
	app := newTestApp(dash, nil)

	code, body := do(t, app, http.MethodPost, "/api/v1/search", `{"query":"Paris"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Paris", body["query"])
	assert.Equal(t, []string{"Paris"}, dash.searched)
}

func TestSearchErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"missing query", `{}`, nil, http.StatusBadRequest},
		{"invalid json", `{`, nil, http.StatusBadRequest},
		{"blank query", `{"query":" "}`, dashboard.ErrEmptyQuery, http.StatusBadRequest},
		{"not found", `{"query":"Atlantis"}`, fmt.Errorf("%w: 404", weather.ErrNotFound), http.StatusNotFound},
		{"network", `{"query":"Paris"}`, fmt.Errorf("%w: timeout", weather.ErrNetwork), http.StatusBadGateway},
		{"malformed", `{"query":"Paris"}`, weather.ErrMalformed, http.StatusBadGateway},
		{"other", `{"query":"Paris"}`, errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dash := newFakeDashboard()
			dash.searchErr = tc.err
			code, body := do(t, newTestApp(dash, nil), http.MethodPost, "/api/v1/search", tc.body)
			assert.Equal(t, tc.want, code)
			assert.Equal(t, true, body["error"])
		})
	}
}

func TestSetUnits(t *testing.T) {
	dash := newFakeDashboard()
	app := newTestApp(dash, nil)

	code, _ := do(t, app, http.MethodPut, "/api/v1/settings/units", `{"units":"Imperial (°F)"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []weather.Units{weather.Imperial}, dash.units)

	code, _ = do(t, app, http.MethodPut, "/api/v1/settings/units", `{"units":"furlongs"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSetIntervals(t *testing.T) {
	dash := newFakeDashboard()
	app := newTestApp(dash, nil)

	code, _ := do(t, app, http.MethodPut, "/api/v1/settings/refresh", `{"interval":"30s"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []scheduler.RefreshInterval{scheduler.Refresh30s}, dash.refresh)

	code, _ = do(t, app, http.MethodPut, "/api/v1/settings/refresh", `{"interval":"2s"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, app, http.MethodPut, "/api/v1/settings/notifications", `{"interval":"now"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []scheduler.NotificationInterval{scheduler.NotifyNow}, dash.notification)

	code, _ = do(t, app, http.MethodPut, "/api/v1/settings/notifications", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAlertBand(t *testing.T) {
	dash := newFakeDashboard()
	app := newTestApp(dash, nil)

	code, body := do(t, app, http.MethodPut, "/api/v1/alerts/band", `{"lower":35}`)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 29, body["lower"])
	assert.EqualValues(t, 30, body["upper"])

	code, body = do(t, app, http.MethodPut, "/api/v1/alerts/band", `{"lower":0,"upper":40}`)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["lower"])
	assert.EqualValues(t, 40, body["upper"])

	code, _ = do(t, app, http.MethodPut, "/api/v1/alerts/band", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAlertBandPairMovesBothBounds(t *testing.T) {
	cases := []struct {
		name         string
		body         string
		lower, upper int
	}{
		{"shift up past old upper", `{"lower":35,"upper":45}`, 35, 45},
		{"shift down past old lower", `{"lower":-10,"upper":5}`, -10, 5},
		{"narrow", `{"lower":22,"upper":24}`, 22, 24},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dash := newFakeDashboard()
			code, body := do(t, newTestApp(dash, nil), http.MethodPut, "/api/v1/alerts/band", tc.body)
			assert.Equal(t, http.StatusOK, code)
			assert.EqualValues(t, tc.lower, body["lower"])
			assert.EqualValues(t, tc.upper, body["upper"])
			assert.Equal(t, tc.lower, dash.state.Settings.Band.Lower)
			assert.Equal(t, tc.upper, dash.state.Settings.Band.Upper)
		})
	}
}

func TestAlertBandRejectsInvalidPair(t *testing.T) {
	for _, body := range []string{`{"lower":45,"upper":35}`, `{"lower":10,"upper":10}`, `{"lower":-40,"upper":10}`} {
		dash := newFakeDashboard()
		code, _ := do(t, newTestApp(dash, nil), http.MethodPut, "/api/v1/alerts/band", body)
		assert.Equal(t, http.StatusBadRequest, code, body)
		assert.Equal(t, 20, dash.state.Settings.Band.Lower, body)
		assert.Equal(t, 30, dash.state.Settings.Band.Upper, body)
	}
}

func TestAlertsEnabled(t *testing.T) {
	dash := newFakeDashboard()
	dash.state.Settings.AlertsEnabled = true
	app := newTestApp(dash, nil)

	code, body := do(t, app, http.MethodPut, "/api/v1/alerts/enabled", `{"enabled":false}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["alertsEnabled"])
	assert.False(t, dash.state.Settings.AlertsEnabled)

	code, _ = do(t, app, http.MethodPut, "/api/v1/alerts/enabled", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListNotifications(t *testing.T) {
	log := &fakeLog{items: []notify.Notification{notify.New(notify.KindAlert, "High", "too hot", "", true)}}
	app := newTestApp(newFakeDashboard(), log)

	code, body := do(t, app, http.MethodGet, "/api/v1/notifications", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, defaultNotificationLimit, log.gotLimit)
	assert.Len(t, body["notifications"], 1)

	code, _ = do(t, app, http.MethodGet, "/api/v1/notifications?limit=5", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 5, log.gotLimit)

	code, _ = do(t, app, http.MethodGet, "/api/v1/notifications?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, code)

	log.err = errors.New("disk full")
	code, _ = do(t, app, http.MethodGet, "/api/v1/notifications", "")
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestListNotificationsWithoutJournal(t *testing.T) {
	code, _ := do(t, newTestApp(newFakeDashboard(), nil), http.MethodGet, "/api/v1/notifications", "")
	assert.Equal(t, http.StatusNotFound, code)
}
