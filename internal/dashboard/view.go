package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/summary"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// ForecastItem is one cell of the forecast strip.
type ForecastItem struct {
	Time        string `json:"time"`
	Temperature string `json:"temperature"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// View is the rendered dashboard: display strings only.
type View struct {
	Location    string         `json:"location"`
	Date        string         `json:"date"`
	Temperature string         `json:"temperature"`
	Description string         `json:"description"`
	MinMax      string         `json:"minMax"`
	Wind        string         `json:"wind"`
	Humidity    string         `json:"humidity"`
	Visibility  string         `json:"visibility"`
	AirQuality  string         `json:"airQuality"`
	Sunrise     string         `json:"sunrise"`
	Sunset      string         `json:"sunset"`
	Summary     string         `json:"summary"`
	Icon        string         `json:"icon,omitempty"`
	Forecast    []ForecastItem `json:"forecast"`
	Units       string         `json:"units"`
	FetchedAt   time.Time      `json:"fetchedAt"`
	RenderedAt  time.Time      `json:"renderedAt"`
}

// Render formats s for display. It performs no I/O.
func Render(s weather.Snapshot, now time.Time) View {
	r := s.Record
	sym := r.Units.TemperatureSymbol()

	v := View{
		Location:    fmt.Sprintf("%s, %s", r.Location, r.Country),
		Date:        r.Local(now).Format("Monday, January 02, 2006"),
		Temperature: num(round1(r.Temperature)) + sym,
		Description: common.Capitalize(r.Description),
		MinMax:      fmt.Sprintf("Min: %s%s, Max: %s%s", num(r.TempMin), sym, num(r.TempMax), sym),
		Wind:        fmt.Sprintf("%s %s", num(r.WindSpeed), r.Units.SpeedSymbol()),
		Humidity:    num(r.Humidity) + "%",
		Visibility:  fmt.Sprintf("%.1f km", r.Visibility/1000),
		AirQuality:  s.AirQuality.Label(),
		Summary:     summary.Dashboard.Text(r),
		Icon:        s.IconPath,
		Forecast:    make([]ForecastItem, 0, len(s.Forecast)),
		Units:       r.Units.Label(),
		FetchedAt:   s.FetchedAt,
		RenderedAt:  now.UTC(),
	}
	if !r.Sunrise.IsZero() {
		v.Sunrise = r.Clock(r.Sunrise)
	}
	if !r.Sunset.IsZero() {
		v.Sunset = r.Clock(r.Sunset)
	}

	for _, e := range s.Forecast {
		v.Forecast = append(v.Forecast, ForecastItem{
			Time:        r.Local(e.Time).Format("15:04"),
			Temperature: num(round1(e.Temperature)) + sym,
			Description: e.Description,
			Icon:        e.Icon,
		})
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
