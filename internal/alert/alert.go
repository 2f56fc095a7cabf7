// Package alert decides when a temperature reading warrants a notification.
package alert

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidBand is returned for a band whose lower bound is not strictly below its upper bound.
var ErrInvalidBand = errors.New("alert band lower bound must be below upper bound")

// Range limits where band bounds may be placed.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// DefaultRange matches the slider limits of the dashboard.
var DefaultRange = Range{Min: -20, Max: 50}

// Band is the accepted temperature interval [Lower, Upper]. Lower < Upper always holds.
type Band struct {
	Lower int   `json:"lower"`
	Upper int   `json:"upper"`
	Range Range `json:"range"`
}

// NewBand validates and returns a band within r.
func NewBand(lower, upper int, r Range) (Band, error) {
	if r.Min >= r.Max {
		return Band{}, fmt.Errorf("invalid band range [%d, %d]", r.Min, r.Max)
	}
	if lower >= upper {
		return Band{}, ErrInvalidBand
	}
	if lower < r.Min || upper > r.Max {
		return Band{}, fmt.Errorf("band [%d, %d] outside range [%d, %d]", lower, upper, r.Min, r.Max)
	}
	return Band{Lower: lower, Upper: upper, Range: r}, nil
}

// WithLower moves the lower bound to v. A value at or above Upper is clamped to Upper-1.
func (b Band) WithLower(v int) Band {
	v = clamp(v, b.Range.Min, b.Range.Max-1)
	if v >= b.Upper {
		v = b.Upper - 1
	}
	b.Lower = v
	return b
}

// WithUpper moves the upper bound to v. A value at or below Lower is clamped to Lower+1.
func (b Band) WithUpper(v int) Band {
	v = clamp(v, b.Range.Min+1, b.Range.Max)
	if v <= b.Lower {
		v = b.Lower + 1
	}
	b.Upper = v
	return b
}

// Contains reports whether temp lies within the closed interval.
func (b Band) Contains(temp float64) bool {
	return temp >= float64(b.Lower) && temp <= float64(b.Upper)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// State remembers whether the current excursion has already been reported.
type State struct {
	Triggered bool `json:"triggered"`
}

// Direction tells on which side of the band a reading fell.
type Direction string

const (
	TooLow  Direction = "low"
	TooHigh Direction = "high"
)

// Alert describes one out-of-band reading.
type Alert struct {
	Temperature float64   `json:"temperature"`
	Band        Band      `json:"band"`
	Direction   Direction `json:"direction"`
}

// Title is the notification headline; sym is the temperature unit suffix.
func (a Alert) Title(sym string) string {
	return fmt.Sprintf("Temperature Alert: %s%s", num(a.Temperature), sym)
}

// Message explains which limit was crossed.
func (a Alert) Message(sym string) string {
	if a.Direction == TooLow {
		return fmt.Sprintf("Temperature is too low! %s%s is below the limit of %d%s.", num(a.Temperature), sym, a.Band.Lower, sym)
	}
	return fmt.Sprintf("Temperature is too high! %s%s is above the limit of %d%s.", num(a.Temperature), sym, a.Band.Upper, sym)
}

// Evaluate checks temp against band. It returns an Alert only for the first
// out-of-band reading of an excursion; an in-band reading re-arms the state.
// While disabled nothing fires and the state is left as is, so re-enabling
// during an excursion does not fire until the temperature has returned to
// the band at least once.
func Evaluate(temp float64, band Band, state State, enabled bool) (*Alert, State) {
	if !enabled {
		return nil, state
	}
	if band.Contains(temp) {
		return nil, State{Triggered: false}
	}
	if state.Triggered {
		return nil, state
	}

	a := &Alert{Temperature: temp, Band: band, Direction: TooHigh}
	if temp < float64(band.Lower) {
		a.Direction = TooLow
	}
	return a, State{Triggered: true}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
