package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// RefreshInterval is one of the selectable redisplay cadences.
type RefreshInterval string

const (
	Refresh10s   RefreshInterval = "10s"
	Refresh30s   RefreshInterval = "30s"
	Refresh1min  RefreshInterval = "1min"
	Refresh5min  RefreshInterval = "5min"
	Refresh15min RefreshInterval = "15min"

	DefaultRefreshInterval = Refresh1min
)

var refreshDurations = map[RefreshInterval]time.Duration{
	Refresh10s:   10 * time.Second,
	Refresh30s:   30 * time.Second,
	Refresh1min:  time.Minute,
	Refresh5min:  5 * time.Minute,
	Refresh15min: 15 * time.Minute,
}

// RefreshIntervals lists the choices in display order.
var RefreshIntervals = []RefreshInterval{Refresh10s, Refresh30s, Refresh1min, Refresh5min, Refresh15min}

// Duration returns the cadence of i.
func (i RefreshInterval) Duration() time.Duration {
	return refreshDurations[i]
}

// ParseRefreshInterval accepts a selector label ("1min") or an equal Go
// duration ("1m", "60s").
func ParseRefreshInterval(s string) (RefreshInterval, error) {
	s = strings.TrimSpace(s)
	if _, ok := refreshDurations[RefreshInterval(s)]; ok {
		return RefreshInterval(s), nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		for _, i := range RefreshIntervals {
			if i.Duration() == d {
				return i, nil
			}
		}
	}
	return "", fmt.Errorf("unsupported refresh interval %q", s)
}

// NotificationInterval is one of the selectable periodic notification settings.
type NotificationInterval string

const (
	NotifyOff   NotificationInterval = "Off"
	Notify10min NotificationInterval = "10min"
	Notify30min NotificationInterval = "30min"
	Notify1hr   NotificationInterval = "1hr"
	Notify3hrs  NotificationInterval = "3hrs"
	// NotifyNow sends a single notification immediately.
	NotifyNow NotificationInterval = "now"

	DefaultNotificationInterval = NotifyOff
)

var notificationDurations = map[NotificationInterval]time.Duration{
	NotifyOff:   0,
	Notify10min: 10 * time.Minute,
	Notify30min: 30 * time.Minute,
	Notify1hr:   time.Hour,
	Notify3hrs:  3 * time.Hour,
	NotifyNow:   0,
}

// NotificationIntervals lists the choices in display order.
var NotificationIntervals = []NotificationInterval{NotifyOff, Notify10min, Notify30min, Notify1hr, Notify3hrs, NotifyNow}

// Duration returns the period, 0 for Off and Now.
func (i NotificationInterval) Duration() time.Duration {
	return notificationDurations[i]
}

// Periodic reports whether i arms a repeating notification.
func (i NotificationInterval) Periodic() bool {
	return i.Duration() > 0
}

// ParseNotificationInterval accepts a selector label, case-insensitively.
func ParseNotificationInterval(s string) (NotificationInterval, error) {
	s = strings.TrimSpace(s)
	for _, i := range NotificationIntervals {
		if strings.EqualFold(string(i), s) {
			return i, nil
		}
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		for _, i := range NotificationIntervals {
			if i.Duration() == d {
				return i, nil
			}
		}
	}
	return "", fmt.Errorf("unsupported notification interval %q", s)
}
