package weather

import (
	"time"
)

// Coordinate is a latitude/longitude pair as reported by the provider.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Record is the normalized current-conditions reading for one location.
// A Record is never mutated after it is fetched; a new fetch replaces it wholesale.
type Record struct {
	Location       string    `json:"location"`
	Country        string    `json:"country"`
	Timestamp      time.Time `json:"timestamp"` // always UTC
	TimezoneOffset int       `json:"timezoneOffset"`

	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
	TempMin     float64 `json:"tempMin"`
	TempMax     float64 `json:"tempMax"`
	Humidity    float64 `json:"humidityPercent"`
	WindSpeed   float64 `json:"windSpeed"`
	Visibility  float64 `json:"visibilityMeters"`
	Cloudiness  float64 `json:"cloudinessPercent"`

	// RainLastHour is 0 when the provider omits precipitation data.
	RainLastHour float64 `json:"rainLastHourMm"`

	Sunrise     time.Time  `json:"sunrise"`
	Sunset      time.Time  `json:"sunset"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Coord       Coordinate `json:"coord"`

	Units Units `json:"units"`
}

// Local converts t to the wall clock of the record's location.
func (r Record) Local(t time.Time) time.Time {
	return t.UTC().Add(time.Duration(r.TimezoneOffset) * time.Second)
}

// AirQuality is the provider's air quality index category, 1 (good) to 5 (very poor).
type AirQuality int

// AirQualityUnknown marks an unavailable reading.
const AirQualityUnknown AirQuality = 0

var airQualityLabels = map[AirQuality]string{
	1: "Good",
	2: "Fair",
	3: "Moderate",
	4: "Poor",
	5: "Very Poor",
}

// Valid reports whether q is one of the five defined categories.
func (q AirQuality) Valid() bool {
	_, ok := airQualityLabels[q]
	return ok
}

// Label returns the human readable category name.
func (q AirQuality) Label() string {
	if l, ok := airQualityLabels[q]; ok {
		return l
	}
	return "Unknown"
}

// ForecastEntry is a single point of the hourly forecast strip.
type ForecastEntry struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
}

// Forecast is ordered by Time ascending.
type Forecast []ForecastEntry

// Snapshot is everything the fetch step produced for one query. It is the
// value held by the current-weather slot.
type Snapshot struct {
	Query      string     `json:"query"`
	Record     Record     `json:"record"`
	AirQuality AirQuality `json:"airQuality"`
	Forecast   Forecast   `json:"forecast,omitempty"`

	// IconPath is a local file for Record.Icon, empty if it could not be resolved.
	IconPath  string    `json:"iconPath,omitempty"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Clock formats t as a 12-hour wall clock time at the record's location.
func (r Record) Clock(t time.Time) string {
	return r.Local(t).Format("03:04 PM")
}
