package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	defaultOpenWeatherBaseURL = "https://api.openweathermap.org"
	defaultOpenWeatherIconURL = "https://openweathermap.org"

	maxIconBytes = 1 << 20
)

// OpenWeatherProvider implements weather.Source for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	iconURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// Option customises an OpenWeatherProvider.
type Option func(*OpenWeatherProvider)

// WithBaseURL overrides the API host, e.g. for tests.
func WithBaseURL(u string) Option {
	return func(p *OpenWeatherProvider) {
		if u != "" {
			p.baseURL = u
		}
	}
}

// WithIconURL overrides the icon host.
func WithIconURL(u string) Option {
	return func(p *OpenWeatherProvider) {
		if u != "" {
			p.iconURL = u
		}
	}
}

// WithRateLimit caps requests per second across all endpoints.
func WithRateLimit(rps float64, burst int) Option {
	return func(p *OpenWeatherProvider) {
		if rps > 0 {
			if burst < 1 {
				burst = 1
			}
			p.httpCfg.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithBackoff replaces the default retry policy.
func WithBackoff(b BackoffConfig) Option {
	return func(p *OpenWeatherProvider) {
		p.httpCfg.Backoff = b
	}
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, opts ...Option) *OpenWeatherProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	p := &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: defaultOpenWeatherBaseURL,
		iconURL: defaultOpenWeatherIconURL,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owmCondition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmCurrent struct {
	Cod   json.Number `json:"cod"`
	Name  string      `json:"name"`
	Dt    int64       `json:"dt"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Rain struct {
		OneH float64 `json:"1h"`
	} `json:"rain"`
	Visibility float64 `json:"visibility"`
	Sys        struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Timezone int            `json:"timezone"`
	Weather  []owmCondition `json:"weather"`
}

func (p *OpenWeatherProvider) Current(ctx context.Context, query string, units weather.Units) (weather.Record, error) {
	if p.apiKey == "" {
		return weather.Record{}, fmt.Errorf("openweather api key is not configured")
	}
	if query == "" {
		return weather.Record{}, weather.ErrNotFound
	}

	var payload owmCurrent
	values := url.Values{}
	values.Set("q", query)
	values.Set("units", units.APIValue())
	if err := p.getJSON(ctx, p.baseURL+"/data/2.5/weather", values, &payload); err != nil {
		return weather.Record{}, err
	}

	// The API reports lookup failures in the body as well as the status line.
	if code := payload.Cod.String(); code != "" && code != "200" {
		return weather.Record{}, weather.ErrNotFound
	}

	rec := weather.Record{
		Location:       payload.Name,
		Country:        payload.Sys.Country,
		Timestamp:      unixUTC(payload.Dt),
		TimezoneOffset: payload.Timezone,
		Temperature:    payload.Main.Temp,
		FeelsLike:      payload.Main.FeelsLike,
		TempMin:        payload.Main.TempMin,
		TempMax:        payload.Main.TempMax,
		Humidity:       payload.Main.Humidity,
		WindSpeed:      payload.Wind.Speed,
		Visibility:     payload.Visibility,
		Cloudiness:     payload.Clouds.All,
		RainLastHour:   payload.Rain.OneH,
		Sunrise:        unixUTC(payload.Sys.Sunrise),
		Sunset:         unixUTC(payload.Sys.Sunset),
		Coord:          weather.Coordinate{Lat: payload.Coord.Lat, Lon: payload.Coord.Lon},
		Units:          units,
	}
	if len(payload.Weather) > 0 {
		rec.Description = payload.Weather[0].Description
		rec.Icon = payload.Weather[0].Icon
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	return rec, nil
}

func (p *OpenWeatherProvider) Forecast(ctx context.Context, query string, units weather.Units) (weather.Forecast, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp float64 `json:"temp"`
			} `json:"main"`
			Weather []owmCondition `json:"weather"`
		} `json:"list"`
	}
	values := url.Values{}
	values.Set("q", query)
	values.Set("units", units.APIValue())
	if err := p.getJSON(ctx, p.baseURL+"/data/2.5/forecast", values, &payload); err != nil {
		return nil, err
	}

	fc := make(weather.Forecast, 0, len(payload.List))
	for _, item := range payload.List {
		e := weather.ForecastEntry{
			Time:        unixUTC(item.Dt),
			Temperature: item.Main.Temp,
		}
		if len(item.Weather) > 0 {
			e.Description = item.Weather[0].Description
			e.Icon = item.Weather[0].Icon
		}
		fc = append(fc, e)
	}
	return fc, nil
}

func (p *OpenWeatherProvider) AirQuality(ctx context.Context, coord weather.Coordinate) (weather.AirQuality, error) {
	if p.apiKey == "" {
		return weather.AirQualityUnknown, fmt.Errorf("openweather api key is not configured")
	}

	var payload struct {
		List []struct {
			Main struct {
				AQI int `json:"aqi"`
			} `json:"main"`
		} `json:"list"`
	}
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	if err := p.getJSON(ctx, p.baseURL+"/data/2.5/air_pollution", values, &payload); err != nil {
		return weather.AirQualityUnknown, err
	}

	if len(payload.List) == 0 {
		return weather.AirQualityUnknown, fmt.Errorf("%w: empty air quality list", weather.ErrMalformed)
	}
	aqi := weather.AirQuality(payload.List[0].Main.AQI)
	if !aqi.Valid() {
		return weather.AirQualityUnknown, fmt.Errorf("%w: aqi %d out of range", weather.ErrMalformed, aqi)
	}
	return aqi, nil
}

func (p *OpenWeatherProvider) Icon(ctx context.Context, id string) ([]byte, error) {
	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s/img/wn/%s@2x.png", p.iconURL, url.PathEscape(id))
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIconBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read icon: %v", weather.ErrNetwork, err)
	}
	return data, nil
}

func (p *OpenWeatherProvider) getJSON(ctx context.Context, endpoint string, values url.Values, out any) error {
	buildRequest := func() (*http.Request, error) {
		q := url.Values{}
		for k, v := range values {
			q[k] = v
		}
		q.Set("appid", p.apiKey)
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", endpoint, q.Encode()), nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", weather.ErrMalformed, err)
	}
	return nil
}

func unixUTC(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

var _ weather.Source = (*OpenWeatherProvider)(nil)
