package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/Nazarious-ucu/weather-aggregator-api/internal/models"
)

// BreakerConfig tunes the breaker window, open-state timeout and trip threshold.
type BreakerConfig struct {
	TimeInterval time.Duration
	TimeTimeOut  time.Duration
	RepeatNumber uint32
}

// BreakerClient guards every upstream call with a single circuit breaker.
type BreakerClient struct {
	name    string
	cb      *gobreaker.CircuitBreaker
	wrapped provider
}

// NewBreakerClient wraps the provider with a breaker named name.
func NewBreakerClient(name string, cfg BreakerConfig, wrapped provider) *BreakerClient {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.TimeInterval,
		Timeout:     cfg.TimeTimeOut,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.RepeatNumber
		},
		IsSuccessful: isBreakerSuccess,
	}
	return &BreakerClient{
		name:    name,
		cb:      gobreaker.NewCircuitBreaker(settings),
		wrapped: wrapped,
	}
}

// isBreakerSuccess reports whether err must not count against the breaker.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code < http.StatusInternalServerError
	}
	return errors.Is(err, ErrLocationNotFound) || errors.Is(err, context.Canceled)
}

func (b *BreakerClient) Configured() bool {
	return b.wrapped.Configured()
}

func (b *BreakerClient) CurrentWeather(ctx context.Context, city string) (models.WeatherSummary, error) {
	return execute(b, func() (models.WeatherSummary, error) {
		return b.wrapped.CurrentWeather(ctx, city)
	})
}

func (b *BreakerClient) Geocode(ctx context.Context, city string) (models.GeoCoordinate, error) {
	return execute(b, func() (models.GeoCoordinate, error) {
		return b.wrapped.Geocode(ctx, city)
	})
}

func (b *BreakerClient) AirPollution(ctx context.Context, at models.GeoCoordinate) (models.RawPayload, error) {
	return execute(b, func() (models.RawPayload, error) {
		return b.wrapped.AirPollution(ctx, at)
	})
}

func (b *BreakerClient) Forecast(ctx context.Context, city string) (models.RawPayload, error) {
	return execute(b, func() (models.RawPayload, error) {
		return b.wrapped.Forecast(ctx, city)
	})
}

func (b *BreakerClient) UVIndex(ctx context.Context, at models.GeoCoordinate) (models.RawPayload, error) {
	return execute(b, func() (models.RawPayload, error) {
		return b.wrapped.UVIndex(ctx, at)
	})
}

func execute[T any](b *BreakerClient, call func() (T, error)) (T, error) {
	var zero T
	result, err := b.cb.Execute(func() (interface{}, error) {
		return call()
	})
	if err != nil {
		return zero, fmt.Errorf("%s unavailable: %w", b.name, err)
	}
	res, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("%s returned unexpected result", b.name)
	}
	return res, nil
}
