package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ForecastStripSize is the number of hourly entries kept for display.
const ForecastStripSize = 10

// Service performs the fetch step: one query in, one complete Snapshot out.
type Service struct {
	source  Source
	icons   IconResolver
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a new Service. icons may be nil.
func NewService(source Source, icons IconResolver, timeout time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		source:  source,
		icons:   icons,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// Fetch retrieves current conditions for query under units. Only the
// current-conditions call can fail the fetch; air quality, forecast and icon
// are filled in when available and left empty otherwise.
func (s *Service) Fetch(ctx context.Context, query string, units Units) (Snapshot, error) {
	if s.source == nil {
		return Snapshot{}, fmt.Errorf("no weather source configured")
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	rec, err := s.source.Current(ctx, query, units)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrNetwork) {
			err = fmt.Errorf("%w: %w", ErrNetwork, err)
		}
		return Snapshot{}, err
	}

	snap := Snapshot{
		Query:     query,
		Record:    rec,
		FetchedAt: s.now().UTC(),
	}

	if aqi, err := s.source.AirQuality(ctx, rec.Coord); err != nil {
		s.logger.Warn("air quality unavailable", "query", query, "error", err)
	} else {
		snap.AirQuality = aqi
	}

	if fc, err := s.source.Forecast(ctx, query, units); err != nil {
		s.logger.Warn("forecast unavailable", "query", query, "error", err)
	} else {
		if len(fc) > ForecastStripSize {
			fc = fc[:ForecastStripSize]
		}
		snap.Forecast = fc
	}

	if s.icons != nil && rec.Icon != "" {
		if path, err := s.icons.Resolve(ctx, rec.Icon); err != nil {
			s.logger.Warn("icon unavailable", "icon", rec.Icon, "error", err)
		} else {
			snap.IconPath = path
		}
	}

	s.logger.Debug("fetched weather", "query", query, "location", rec.Location, "units", units.String())
	return snap, nil
}
