package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/icons"
	"github.com/i474232898/weather-dashboard/internal/notify"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

const sinkTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("weather dashboard stopped", "error", err)
		os.Exit(1)
	}
}

// run wires the application and blocks until SIGINT or SIGTERM. Deferred
// cleanup runs on every return path.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Provider with resilience (rate limit + backoff + circuit breaker).
	provider := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey,
		providers.WithBaseURL(cfg.OpenWeatherBaseURL),
		providers.WithIconURL(cfg.OpenWeatherIconURL),
		providers.WithRateLimit(cfg.OpenWeatherRPS, cfg.OpenWeatherBurst),
	)

	iconCache := icons.NewCache(cfg.IconDir, provider)
	service := weather.NewService(provider, iconCache, cfg.FetchTimeout, log.With("component", "fetch"))
	slot := store.NewSlot(cfg.StoreMaxHistory)

	// Notification sinks.
	var sinks []notify.Sink
	if cfg.DesktopNotifications {
		sinks = append(sinks, notify.NewDesktop())
	}
	if cfg.MQTTBrokerURL != "" {
		m, err := notify.DialMQTT(cfg.MQTTBrokerURL, cfg.MQTTClientID, cfg.MQTTTopic, sinkTimeout)
		if err != nil {
			log.Warn("mqtt notifications disabled", "broker", cfg.MQTTBrokerURL, "error", err)
		} else {
			defer m.Close()
			sinks = append(sinks, m)
		}
	}
	var journal httpapi.NotificationLog
	if cfg.JournalPath != "" {
		j, err := store.OpenJournal(ctx, cfg.JournalPath)
		if err != nil {
			log.Warn("notification journal disabled", "path", cfg.JournalPath, "error", err)
		} else {
			defer j.Close()
			sinks = append(sinks, j)
			journal = j
		}
	}
	dispatcher := notify.NewDispatcher(log.With("component", "notify"), sinkTimeout, sinks...)
	defer dispatcher.Wait()

	runner := scheduler.NewRunner()
	runner.Start()
	defer runner.Stop()

	band, err := cfg.Band()
	if err != nil {
		return fmt.Errorf("alert band: %w", err)
	}
	settings := dashboard.Settings{
		Units:                cfg.DefaultUnits,
		RefreshInterval:      cfg.RefreshInterval,
		NotificationInterval: cfg.NotificationInterval,
		Band:                 band,
		AlertsEnabled:        cfg.AlertsEnabled,
	}
	dash := dashboard.New(dashboard.Deps{
		Fetcher: service,
		Slot:    slot,
		Emitter: dispatcher,
		Runner:  runner,
		Logger:  log.With("component", "dashboard"),
	}, settings)

	if cfg.DefaultCity != "" {
		if err := dash.Search(ctx, cfg.DefaultCity); err != nil {
			log.Warn("initial fetch failed", "city", cfg.DefaultCity, "error", err)
		}
	}
	if err := dash.Start(settings); err != nil {
		return fmt.Errorf("start schedulers: %w", err)
	}
	defer dash.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.FetchTimeout + 5*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-dashboard",
		})
	})

	httpapi.RegisterRoutes(app, dash, journal)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()
	log.Info("weather dashboard started", "port", cfg.Port, "city", cfg.DefaultCity)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
