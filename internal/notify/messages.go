package notify

import (
	"strconv"

	"github.com/i474232898/weather-dashboard/internal/alert"
	"github.com/i474232898/weather-dashboard/internal/summary"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// ForAlert builds the notification for a temperature excursion.
func ForAlert(a alert.Alert, units weather.Units, icon string) Notification {
	sym := units.TemperatureSymbol()
	return New(KindAlert, a.Title(sym), a.Message(sym), icon, true)
}

// ForSnapshot builds the periodic weather summary notification.
func ForSnapshot(s weather.Snapshot) Notification {
	r := s.Record
	title := strconv.FormatFloat(r.Temperature, 'f', -1, 64) + r.Units.TemperatureSymbol() + " - " + r.Description
	return New(KindSummary, title, summary.Notification.Text(r), s.IconPath, true)
}
