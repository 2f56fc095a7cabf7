package weather

import (
	"fmt"

	"github.com/i474232898/weather-dashboard/internal/common"
)

// Units selects the measurement system used for a fetch.
type Units int

const (
	Metric Units = iota
	Imperial
	Standard
)

// APIValue is the provider's query value for u.
func (u Units) APIValue() string {
	switch u {
	case Imperial:
		return "imperial"
	case Standard:
		return "standard"
	default:
		return "metric"
	}
}

func (u Units) String() string {
	return u.APIValue()
}

// TemperatureSymbol is the suffix printed after temperatures.
func (u Units) TemperatureSymbol() string {
	switch u {
	case Imperial:
		return "°F"
	case Standard:
		return "K"
	default:
		return "°C"
	}
}

// SpeedSymbol is the suffix printed after wind speeds.
func (u Units) SpeedSymbol() string {
	if u == Imperial {
		return "mph"
	}
	return "m/s"
}

// Label is the selector text shown to users.
func (u Units) Label() string {
	switch u {
	case Imperial:
		return "Imperial (°F)"
	case Standard:
		return "SI (K)"
	default:
		return "Metric (°C)"
	}
}

// MarshalText encodes u as its API value.
func (u Units) MarshalText() ([]byte, error) {
	return []byte(u.APIValue()), nil
}

// UnmarshalText accepts anything ParseUnits does.
func (u *Units) UnmarshalText(b []byte) error {
	parsed, err := ParseUnits(string(b))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// ParseUnits maps selector labels ("Metric (°C)", "Imperial (°F)", "SI (K)"),
// API values (metric, imperial, standard) and scale names (celsius,
// fahrenheit, kelvin) to Units. Matching is on the whole value, ignoring case.
func ParseUnits(s string) (Units, error) {
	switch {
	case common.EqualAny(s, Imperial.Label(), "imperial", "fahrenheit", "°F"):
		return Imperial, nil
	case common.EqualAny(s, Standard.Label(), "standard", "SI", "kelvin", "K"):
		return Standard, nil
	case common.EqualAny(s, Metric.Label(), "metric", "celsius", "°C"):
		return Metric, nil
	default:
		return Metric, fmt.Errorf("unknown unit system %q", s)
	}
}
