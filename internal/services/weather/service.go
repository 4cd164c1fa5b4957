package weather

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-aggregator-api/internal/models"
)

const (
	msgWeatherNotFound = "City not found or API error"
	msgWeatherInternal = "An error occurred while fetching weather data"

	msgCityNotFound       = "City not found"
	msgAirQualityNotFound = "Air quality data not found"
	msgAirQualityInternal = "An error occurred while fetching air quality data"

	msgForecastInternal = "An error occurred while fetching forecast data"

	msgUVIndexNotFound = "UV index data not found"
	msgUVIndexInternal = "An error occurred while fetching UV index data"
)

type provider interface {
	Configured() bool
	CurrentWeather(ctx context.Context, city string) (models.WeatherSummary, error)
	Geocode(ctx context.Context, city string) (models.GeoCoordinate, error)
	AirPollution(ctx context.Context, at models.GeoCoordinate) (models.RawPayload, error)
	Forecast(ctx context.Context, city string) (models.RawPayload, error)
	UVIndex(ctx context.Context, at models.GeoCoordinate) (models.RawPayload, error)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ServiceProvider orchestrates upstream calls and classifies their failures.
type ServiceProvider struct {
	logger  zerolog.Logger
	client  provider
	unified bool
}

// NewService builds a ServiceProvider. With unified set, every operation
// requires an API key and UV index failures are classified like air quality.
func NewService(logger zerolog.Logger, client provider, unified bool) *ServiceProvider {
	return &ServiceProvider{logger: logger, client: client, unified: unified}
}

// GetCurrentWeather returns the summarized current conditions for city.
func (s *ServiceProvider) GetCurrentWeather(ctx context.Context, city string) (models.WeatherSummary, error) {
	if !s.client.Configured() {
		return models.WeatherSummary{}, s.fail(ctx, "weather", city, models.NewConfigurationError())
	}

	data, err := s.client.CurrentWeather(ctx, city)
	if err != nil {
		if isHTTPFailure(err) {
			return models.WeatherSummary{}, s.fail(ctx, "weather", city, models.NewNotFoundError(msgWeatherNotFound, err))
		}
		return models.WeatherSummary{}, s.fail(ctx, "weather", city, models.NewInternalError(msgWeatherInternal, err))
	}

	ctxLogger(ctx, &s.logger).Info().
		Str("city", city).
		Float64("temperature", data.Temperature).
		Msg("current weather fetched")

	return data, nil
}

// GetAirQuality geocodes city and returns the raw air pollution body for it.
func (s *ServiceProvider) GetAirQuality(ctx context.Context, city string) (models.RawPayload, error) {
	if !s.client.Configured() {
		return nil, s.fail(ctx, "air_quality", city, models.NewConfigurationError())
	}

	coord, err := s.client.Geocode(ctx, city)
	if err != nil {
		return nil, s.fail(ctx, "air_quality", city, models.NewNotFoundError(msgCityNotFound, err))
	}

	data, err := s.client.AirPollution(ctx, coord)
	if err != nil {
		if isHTTPFailure(err) {
			return nil, s.fail(ctx, "air_quality", city, models.NewNotFoundError(msgAirQualityNotFound, err))
		}
		return nil, s.fail(ctx, "air_quality", city, models.NewInternalError(msgAirQualityInternal, err))
	}

	ctxLogger(ctx, &s.logger).Info().Str("city", city).Msg("air quality fetched")
	return data, nil
}

// GetForecast returns the raw 5 day forecast body for city.
func (s *ServiceProvider) GetForecast(ctx context.Context, city string) (models.RawPayload, error) {
	if s.unified && !s.client.Configured() {
		return nil, s.fail(ctx, "forecast", city, models.NewConfigurationError())
	}

	data, err := s.client.Forecast(ctx, city)
	if err != nil {
		if isHTTPFailure(err) {
			return nil, s.fail(ctx, "forecast", city, models.NewNotFoundError(msgWeatherNotFound, err))
		}
		return nil, s.fail(ctx, "forecast", city, models.NewInternalError(msgForecastInternal, err))
	}

	ctxLogger(ctx, &s.logger).Info().Str("city", city).Msg("forecast fetched")
	return data, nil
}

// GetUVIndex geocodes city and returns the raw UV index body for it.
func (s *ServiceProvider) GetUVIndex(ctx context.Context, city string) (models.RawPayload, error) {
	if s.unified && !s.client.Configured() {
		return nil, s.fail(ctx, "uv_index", city, models.NewConfigurationError())
	}

	coord, err := s.client.Geocode(ctx, city)
	if err != nil {
		if s.unified {
			return nil, s.fail(ctx, "uv_index", city, models.NewNotFoundError(msgCityNotFound, err))
		}
		return nil, s.fail(ctx, "uv_index", city, models.NewInternalError(msgUVIndexInternal, err))
	}

	data, err := s.client.UVIndex(ctx, coord)
	if err != nil {
		if s.unified && isHTTPFailure(err) {
			return nil, s.fail(ctx, "uv_index", city, models.NewNotFoundError(msgUVIndexNotFound, err))
		}
		return nil, s.fail(ctx, "uv_index", city, models.NewInternalError(msgUVIndexInternal, err))
	}

	ctxLogger(ctx, &s.logger).Info().Str("city", city).Msg("uv index fetched")
	return data, nil
}

func (s *ServiceProvider) fail(ctx context.Context, op, city string, err *models.Error) *models.Error {
	ctxLogger(ctx, &s.logger).Error().
		Err(err.Err).
		Str("operation", op).
		Str("city", city).
		Str("kind", err.Kind.String()).
		Msg(err.Message)
	return err
}

// isHTTPFailure reports whether the upstream answered with an error status.
func isHTTPFailure(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr)
}

// ctxLogger prefers the request-scoped logger carried by ctx.
func ctxLogger(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return fallback
}
