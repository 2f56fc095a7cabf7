// Package config loads the dashboard configuration from the environment.
// A .env file in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/i474232898/weather-dashboard/internal/alert"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

type AppConfig struct {
	OpenWeatherAPIKey  string  `envconfig:"OPENWEATHER_API_KEY" validate:"required"`
	OpenWeatherBaseURL string  `envconfig:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org" validate:"url"`
	OpenWeatherIconURL string  `envconfig:"OPENWEATHER_ICON_URL" default:"https://openweathermap.org" validate:"url"`
	OpenWeatherRPS     float64 `envconfig:"OPENWEATHER_RPS" default:"1" validate:"gt=0"`
	OpenWeatherBurst   int     `envconfig:"OPENWEATHER_BURST" default:"5" validate:"min=1"`

	HTTPTimeout  time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s" validate:"gt=0"`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"10s" validate:"gt=0"`

	DefaultCity  string        `envconfig:"DEFAULT_CITY" default:"London"`
	DefaultUnits weather.Units `envconfig:"DEFAULT_UNITS" default:"metric"`

	RefreshIntervalRaw      string `envconfig:"REFRESH_INTERVAL" default:"1min"`
	NotificationIntervalRaw string `envconfig:"NOTIFICATION_INTERVAL" default:"Off"`

	// Parsed from the raw values above.
	RefreshInterval      scheduler.RefreshInterval      `ignored:"true"`
	NotificationInterval scheduler.NotificationInterval `ignored:"true"`

	AlertLower    int  `envconfig:"ALERT_LOWER" default:"20"`
	AlertUpper    int  `envconfig:"ALERT_UPPER" default:"30" validate:"gtfield=AlertLower"`
	AlertRangeMin int  `envconfig:"ALERT_RANGE_MIN" default:"-20"`
	AlertRangeMax int  `envconfig:"ALERT_RANGE_MAX" default:"50" validate:"gtfield=AlertRangeMin"`
	AlertsEnabled bool `envconfig:"ALERTS_ENABLED" default:"true"`

	IconDir         string `envconfig:"ICON_DIR" default:"data/icons" validate:"required"`
	JournalPath     string `envconfig:"JOURNAL_PATH" default:"data/notifications.db"`
	StoreMaxHistory int    `envconfig:"STORE_MAX_HISTORY" default:"10" validate:"min=0"`

	DesktopNotifications bool   `envconfig:"DESKTOP_NOTIFICATIONS" default:"true"`
	MQTTBrokerURL        string `envconfig:"MQTT_BROKER_URL" validate:"omitempty,url"`
	MQTTTopic            string `envconfig:"MQTT_TOPIC" default:"weather-dashboard/notifications"`
	MQTTClientID         string `envconfig:"MQTT_CLIENT_ID" default:"weather-dashboard"`

	Port     string `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Info("no .env file loaded", "error", err)
	}
	return fromEnv()
}

func fromEnv() (*AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var err error
	if cfg.RefreshInterval, err = scheduler.ParseRefreshInterval(cfg.RefreshIntervalRaw); err != nil {
		return nil, fmt.Errorf("config: REFRESH_INTERVAL: %w", err)
	}
	if cfg.NotificationInterval, err = scheduler.ParseNotificationInterval(cfg.NotificationIntervalRaw); err != nil {
		return nil, fmt.Errorf("config: NOTIFICATION_INTERVAL: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if _, err := cfg.Band(); err != nil {
		return nil, fmt.Errorf("config: alert band: %w", err)
	}
	return &cfg, nil
}

// Band returns the configured alert band.
func (c *AppConfig) Band() (alert.Band, error) {
	return alert.NewBand(c.AlertLower, c.AlertUpper, alert.Range{Min: c.AlertRangeMin, Max: c.AlertRangeMax})
}

// SlogLevel maps LogLevel to a slog level.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
