package httpapi

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/alert"
	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/notify"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 500
)

// Dashboard is the part of the dashboard app driven over HTTP.
type Dashboard interface {
	State() dashboard.State
	Search(ctx context.Context, query string) error
	SetUnits(ctx context.Context, units weather.Units) error
	SetRefreshInterval(interval scheduler.RefreshInterval) error
	SetNotificationInterval(interval scheduler.NotificationInterval) error
	SetLowerBound(v int) alert.Band
	SetUpperBound(v int) alert.Band
	SetAlertsEnabled(enabled bool)
}

// NotificationLog lists delivered notifications, newest first.
type NotificationLog interface {
	List(ctx context.Context, limit int) ([]notify.Notification, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. journal may be nil.
func RegisterRoutes(app *fiber.App, dash Dashboard, journal NotificationLog) {
	v1 := app.Group("/api/v1")

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		return c.JSON(dash.State())
	})

	v1.Post("/search", func(c *fiber.Ctx) error {
		var req searchRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		if err := dash.Search(c.UserContext(), req.Query); err != nil {
			return fetchError(err)
		}
		return c.JSON(dash.State())
	})

	settings := v1.Group("/settings")

	settings.Put("/units", func(c *fiber.Ctx) error {
		var req unitsRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		units, err := weather.ParseUnits(req.Units)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := dash.SetUnits(c.UserContext(), units); err != nil {
			return fetchError(err)
		}
		return c.JSON(dash.State())
	})

	settings.Put("/refresh", func(c *fiber.Ctx) error {
		var req intervalRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		interval, err := scheduler.ParseRefreshInterval(req.Interval)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := dash.SetRefreshInterval(interval); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to reschedule refresh")
		}
		return c.JSON(dash.State())
	})

	settings.Put("/notifications", func(c *fiber.Ctx) error {
		var req intervalRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		interval, err := scheduler.ParseNotificationInterval(req.Interval)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := dash.SetNotificationInterval(interval); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to reschedule notifications")
		}
		return c.JSON(dash.State())
	})

	alerts := v1.Group("/alerts")

	alerts.Put("/band", func(c *fiber.Ctx) error {
		var req bandRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		current := dash.State().Settings.Band
		var band alert.Band
		switch {
		case req.Lower != nil && req.Upper != nil:
			if _, err := alert.NewBand(*req.Lower, *req.Upper, current.Range); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			// Move the bound that widens the band first so the other is not clamped.
			if *req.Lower >= current.Upper {
				dash.SetUpperBound(*req.Upper)
				band = dash.SetLowerBound(*req.Lower)
			} else {
				dash.SetLowerBound(*req.Lower)
				band = dash.SetUpperBound(*req.Upper)
			}
		case req.Lower != nil:
			band = dash.SetLowerBound(*req.Lower)
		default:
			band = dash.SetUpperBound(*req.Upper)
		}
		return c.JSON(band)
	})

	alerts.Put("/enabled", func(c *fiber.Ctx) error {
		var req enabledRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		dash.SetAlertsEnabled(*req.Enabled)
		return c.JSON(dash.State().Settings)
	})

	v1.Get("/notifications", func(c *fiber.Ctx) error {
		if journal == nil {
			return fiber.NewError(fiber.StatusNotFound, "notification journal is disabled")
		}
		limit, err := parseLimit(c.Query("limit"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		items, err := journal.List(c.UserContext(), limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read notifications")
		}
		return c.JSON(fiber.Map{
			"limit":         limit,
			"notifications": items,
		})
	})
}

type searchRequest struct {
	Query string `json:"query" validate:"required"`
}

type unitsRequest struct {
	Units string `json:"units" validate:"required"`
}

type intervalRequest struct {
	Interval string `json:"interval" validate:"required"`
}

type bandRequest struct {
	Lower *int `json:"lower" validate:"required_without=Upper"`
	Upper *int `json:"upper" validate:"required_without=Lower"`
}

type enabledRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

func bindAndValidate(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// fetchError maps fetch failures to HTTP errors.
func fetchError(err error) error {
	switch {
	case errors.Is(err, dashboard.ErrEmptyQuery):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "city not found")
	case errors.Is(err, weather.ErrNetwork), errors.Is(err, weather.ErrMalformed):
		return fiber.NewError(fiber.StatusBadGateway, "weather service unavailable")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
	}
}

func parseLimit(s string) (int, error) {
	if s == "" {
		return defaultNotificationLimit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxNotificationLimit {
		return 0, errors.New("limit must be an integer between 1 and " + strconv.Itoa(maxNotificationLimit))
	}
	return n, nil
}

// ErrorHandler renders errors as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
