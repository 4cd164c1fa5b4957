package weather

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-aggregator-api/internal/models"
)

const (
	currentWeatherPath = "/data/2.5/weather"
	forecastPath       = "/data/2.5/forecast"
	airPollutionPath   = "/data/2.5/air_pollution"
	uvIndexPath        = "/data/2.5/uvi"
	geocodePath        = "/geo/1.0/direct"

	metricUnits = "metric"
)

var (
	// ErrLocationNotFound is returned when geocoding yields no match.
	ErrLocationNotFound = errors.New("location not found")
	// ErrMalformedResponse is returned when an upstream body has an unexpected shape.
	ErrMalformedResponse = errors.New("malformed upstream response")
)

// StatusError reports an upstream response with status >= 400.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("OpenWeatherAPI error: status %s", e.Status)
}

type currentWeatherResponse struct {
	Main struct {
		Temp     *float64 `json:"temp"`
		Humidity *int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string  `json:"main"`
		Description *string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
}

type geocodeResponse []struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
}

// ClientOpenWeatherMap talks to the OpenWeatherMap data and geocoding APIs.
type ClientOpenWeatherMap struct {
	APIKey string
	apiURL string
	client HTTPClient
	logger zerolog.Logger
}

// NewClientOpenWeatherMap constructs a new OpenWeatherMap client.
func NewClientOpenWeatherMap(apiKey, apiURL string,
	httpClient HTTPClient, logger zerolog.Logger,
) *ClientOpenWeatherMap {
	return &ClientOpenWeatherMap{
		APIKey: apiKey,
		apiURL: strings.TrimRight(apiURL, "/"),
		client: httpClient,
		logger: logger,
	}
}

// Configured reports whether an API key is set.
func (s *ClientOpenWeatherMap) Configured() bool {
	return s.APIKey != ""
}

// CurrentWeather fetches current conditions and projects them into a summary.
func (s *ClientOpenWeatherMap) CurrentWeather(ctx context.Context, city string) (models.WeatherSummary, error) {
	body, err := s.get(ctx, currentWeatherPath, url.Values{"q": {city}, "units": {metricUnits}})
	if err != nil {
		return models.WeatherSummary{}, err
	}

	var raw currentWeatherResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return models.WeatherSummary{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	switch {
	case raw.Main.Temp == nil:
		return models.WeatherSummary{}, fmt.Errorf("%w: main.temp missing", ErrMalformedResponse)
	case raw.Main.Humidity == nil:
		return models.WeatherSummary{}, fmt.Errorf("%w: main.humidity missing", ErrMalformedResponse)
	case len(raw.Weather) == 0 || raw.Weather[0].Description == nil:
		return models.WeatherSummary{}, fmt.Errorf("%w: weather[0].description missing", ErrMalformedResponse)
	case raw.Wind.Speed == nil:
		return models.WeatherSummary{}, fmt.Errorf("%w: wind.speed missing", ErrMalformedResponse)
	}

	return models.WeatherSummary{
		Temperature:        *raw.Main.Temp,
		WeatherDescription: *raw.Weather[0].Description,
		Humidity:           *raw.Main.Humidity,
		WindSpeed:          *raw.Wind.Speed,
	}, nil
}

// Geocode resolves a city name to the coordinates of its first match.
func (s *ClientOpenWeatherMap) Geocode(ctx context.Context, city string) (models.GeoCoordinate, error) {
	body, err := s.get(ctx, geocodePath, url.Values{"q": {city}})
	if err != nil {
		return models.GeoCoordinate{}, err
	}

	var raw geocodeResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return models.GeoCoordinate{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(raw) == 0 {
		return models.GeoCoordinate{}, ErrLocationNotFound
	}
	if raw[0].Lat == nil || raw[0].Lon == nil {
		return models.GeoCoordinate{}, fmt.Errorf("%w: lat/lon missing", ErrMalformedResponse)
	}

	ctxLogger(ctx, &s.logger).Debug().
		Str("city", city).
		Str("match", raw[0].Name).
		Float64("lat", *raw[0].Lat).
		Float64("lon", *raw[0].Lon).
		Msg("geocoded city")

	return models.GeoCoordinate{Lat: *raw[0].Lat, Lon: *raw[0].Lon}, nil
}

// Forecast returns the 5 day / 3 hour forecast body untouched.
func (s *ClientOpenWeatherMap) Forecast(ctx context.Context, city string) (models.RawPayload, error) {
	body, err := s.get(ctx, forecastPath, url.Values{"q": {city}, "units": {metricUnits}})
	if err != nil {
		return nil, err
	}
	return asObject(body)
}

// AirPollution returns the air pollution body for the given point untouched.
func (s *ClientOpenWeatherMap) AirPollution(ctx context.Context, at models.GeoCoordinate) (models.RawPayload, error) {
	body, err := s.get(ctx, airPollutionPath, coordinateParams(at))
	if err != nil {
		return nil, err
	}
	return asObject(body)
}

// UVIndex returns the UV index body for the given point untouched.
func (s *ClientOpenWeatherMap) UVIndex(ctx context.Context, at models.GeoCoordinate) (models.RawPayload, error) {
	body, err := s.get(ctx, uvIndexPath, coordinateParams(at))
	if err != nil {
		return nil, err
	}
	return asObject(body)
}

func (s *ClientOpenWeatherMap) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	start := time.Now()
	logger := ctxLogger(ctx, &s.logger)

	if s.APIKey != "" {
		params.Set("appid", s.APIKey)
	}
	endpoint := s.apiURL + path + "?" + params.Encode()

	logger.Debug().
		Str("path", path).
		Msg("starting OpenWeatherMap request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		logger.Error().
			Err(err).
			Str("path", path).
			Msg("failed to create HTTP request")
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Error().
			Err(err).
			Str("path", path).
			Msg("error sending HTTP request to OpenWeatherMap")
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Error().
				Err(cerr).
				Str("path", path).
				Msg("failed to close response body")
		}
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		logger.Warn().
			Str("path", path).
			Str("status", resp.Status).
			Msg("OpenWeatherMap API returned error status")
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error().
			Err(err).
			Str("path", path).
			Msg("failed to read OpenWeatherMap response")
		return nil, err
	}

	logger.Info().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration_ms", time.Since(start)).
		Msg("OpenWeatherMap request completed")

	return body, nil
}

func coordinateParams(at models.GeoCoordinate) url.Values {
	return url.Values{
		"lat": {strconv.FormatFloat(at.Lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(at.Lon, 'f', -1, 64)},
	}
}

// asObject checks that body is a single JSON object and returns it as is.
func asObject(body []byte) (models.RawPayload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedResponse)
	}
	return models.RawPayload(trimmed), nil
}
