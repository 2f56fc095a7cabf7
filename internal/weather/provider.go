package weather

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a location query matches no known place.
	ErrNotFound = errors.New("location not found")
	// ErrNetwork wraps transport failures, timeouts, rate limiting and upstream 5xx.
	ErrNetwork = errors.New("weather service unreachable")
	// ErrMalformed is returned when a response cannot be decoded at all.
	ErrMalformed = errors.New("malformed weather response")
)

// Source abstracts the remote weather service.
type Source interface {
	Name() string
	Current(ctx context.Context, query string, units Units) (Record, error)
	Forecast(ctx context.Context, query string, units Units) (Forecast, error)
	AirQuality(ctx context.Context, coord Coordinate) (AirQuality, error)
	Icon(ctx context.Context, id string) ([]byte, error)
}

// IconResolver turns an icon id into a local file reference.
type IconResolver interface {
	Resolve(ctx context.Context, id string) (string, error)
}
