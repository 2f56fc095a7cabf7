// Package summary turns a weather record into a short natural-language text.
package summary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Clause renders one sentence from a record. An empty result is skipped.
type Clause func(weather.Record) string

// Template is an ordered set of clauses with a default sentence limit.
type Template struct {
	Clauses []Clause
	Limit   int
}

// Dashboard is the full summary shown next to the current conditions.
var Dashboard = Template{
	Clauses: []Clause{
		func(r weather.Record) string {
			return fmt.Sprintf("Weather of %s: The current temperature is %s and it feels like %s.",
				r.Location, temp(r, r.Temperature), temp(r, r.FeelsLike))
		},
		humidityClause,
		windClause,
		rainClause,
		cloudClause,
		func(r weather.Record) string {
			if r.Sunrise.IsZero() || r.Sunset.IsZero() {
				return ""
			}
			return fmt.Sprintf("The sun is set to rise by %s and set by %s.", r.Clock(r.Sunrise), r.Clock(r.Sunset))
		},
	},
	Limit: 10,
}

// Notification is the terse body used for periodic desktop notifications.
var Notification = Template{
	Clauses: []Clause{
		func(r weather.Record) string {
			return fmt.Sprintf("%s feels like %s.", r.Location, temp(r, r.FeelsLike))
		},
		humidityClause,
		windClause,
		rainClause,
		cloudClause,
	},
	Limit: 3,
}

// Sentences returns every non-empty sentence of the template, in order.
func (t Template) Sentences(r weather.Record) []string {
	out := make([]string, 0, len(t.Clauses))
	for _, c := range t.Clauses {
		if s := strings.TrimSpace(c(r)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Summarize joins at most maxSentences sentences with single spaces.
func (t Template) Summarize(r weather.Record, maxSentences int) string {
	if maxSentences <= 0 {
		return ""
	}
	s := t.Sentences(r)
	if len(s) > maxSentences {
		s = s[:maxSentences]
	}
	return strings.Join(s, " ")
}

// Text summarizes with the template's default limit.
func (t Template) Text(r weather.Record) string {
	return t.Summarize(r, t.Limit)
}

func humidityClause(r weather.Record) string {
	desc := r.Description
	if desc == "" {
		desc = "no reported conditions"
	}
	return fmt.Sprintf("Humidity is at %s%%, with %s.", num(r.Humidity), desc)
}

func windClause(r weather.Record) string {
	return fmt.Sprintf("The wind speed is %s %s.", num(r.WindSpeed), r.Units.SpeedSymbol())
}

func rainClause(r weather.Record) string {
	return fmt.Sprintf("Rain volume in the last hour is %s mm.", num(r.RainLastHour))
}

func cloudClause(r weather.Record) string {
	return fmt.Sprintf("The sky is %s%% cloudy.", num(r.Cloudiness))
}

func temp(r weather.Record, v float64) string {
	return num(v) + r.Units.TemperatureSymbol()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
