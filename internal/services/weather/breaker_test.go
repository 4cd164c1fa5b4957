package weather

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/weather-aggregator-api/internal/models"
)

var breakerCfg = BreakerConfig{
	TimeInterval: 30 * time.Second,
	TimeTimeOut:  15 * time.Second,
	RepeatNumber: 5,
}

const (
	breakerName = "OpenWeatherMap"
	city        = "Lviv"
)

func TestBreakerClient_Success(t *testing.T) {
	wrapped := new(mockProvider)
	expected := models.WeatherSummary{Temperature: 20, WeatherDescription: "clear sky", Humidity: 40, WindSpeed: 2}

	wrapped.
		On("CurrentWeather", mock.Anything, city).
		Return(expected, nil).
		Once()

	bc := NewBreakerClient(breakerName, breakerCfg, wrapped)

	data, err := bc.CurrentWeather(context.Background(), city)
	assert.NoError(t, err)
	assert.Equal(t, expected, data)

	wrapped.AssertExpectations(t)
	wrapped.AssertNumberOfCalls(t, "CurrentWeather", 1)
}

func TestBreakerClient_DelegatesConfigured(t *testing.T) {
	wrapped := new(mockProvider)
	wrapped.On("Configured").Return(false).Once()

	bc := NewBreakerClient(breakerName, breakerCfg, wrapped)
	assert.False(t, bc.Configured())
	wrapped.AssertExpectations(t)
}

func TestBreakerClient_UnderlyingErrorBeforeTrip(t *testing.T) {
	wrapped := new(mockProvider)
	underlyingErr := errors.New("service down")

	wrapped.
		On("Forecast", mock.Anything, city).
		Return(nil, underlyingErr).
		Once()

	bc := NewBreakerClient(breakerName, breakerCfg, wrapped)

	data, err := bc.Forecast(context.Background(), city)
	assert.Error(t, err)
	assert.Empty(t, data)
	assert.ErrorIs(t, err, underlyingErr)
	assert.Contains(t, err.Error(), breakerName+" unavailable: "+underlyingErr.Error())

	wrapped.AssertExpectations(t)
}

func TestBreakerClient_TripCircuitAfterFiveFailures(t *testing.T) {
	wrapped := new(mockProvider)
	upstreamDown := &StatusError{Code: http.StatusServiceUnavailable, Status: "503 Service Unavailable"}

	wrapped.
		On("Geocode", mock.Anything, city).
		Return(models.GeoCoordinate{}, upstreamDown).
		Times(5)

	bc := NewBreakerClient(breakerName, breakerCfg, wrapped)

	for i := 1; i <= 5; i++ {
		_, err := bc.Geocode(context.Background(), city)
		require.Error(t, err, "call #%d should error before trip", i)

		var statusErr *StatusError
		assert.True(t, errors.As(err, &statusErr), "call #%d should keep the upstream status", i)
	}

	_, err := bc.UVIndex(context.Background(), models.GeoCoordinate{Lat: 1, Lon: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState, "6th call should return open-circuit error")

	wrapped.AssertExpectations(t)
	wrapped.AssertNumberOfCalls(t, "Geocode", 5)
	wrapped.AssertNotCalled(t, "UVIndex", mock.Anything, mock.Anything)
}

func TestBreakerClient_ClientErrorsDoNotTrip(t *testing.T) {
	wrapped := new(mockProvider)
	missing := &StatusError{Code: http.StatusNotFound, Status: "404 Not Found"}

	wrapped.On("CurrentWeather", mock.Anything, "Nowhere").Return(models.WeatherSummary{}, missing)
	wrapped.On("Geocode", mock.Anything, "Nonexistentville").Return(models.GeoCoordinate{}, ErrLocationNotFound)

	bc := NewBreakerClient(breakerName, breakerCfg, wrapped)

	for i := 0; i < 10; i++ {
		_, err := bc.CurrentWeather(context.Background(), "Nowhere")
		assert.False(t, errors.Is(err, gobreaker.ErrOpenState))

		_, err = bc.Geocode(context.Background(), "Nonexistentville")
		assert.ErrorIs(t, err, ErrLocationNotFound)
	}

	wrapped.AssertNumberOfCalls(t, "CurrentWeather", 10)
	wrapped.AssertNumberOfCalls(t, "Geocode", 10)
}

func TestIsBreakerSuccess(t *testing.T) {
	assert.True(t, isBreakerSuccess(nil))
	assert.True(t, isBreakerSuccess(&StatusError{Code: http.StatusUnauthorized}))
	assert.True(t, isBreakerSuccess(ErrLocationNotFound))
	assert.True(t, isBreakerSuccess(context.Canceled))
	assert.False(t, isBreakerSuccess(&StatusError{Code: http.StatusInternalServerError}))
	assert.False(t, isBreakerSuccess(context.DeadlineExceeded))
	assert.False(t, isBreakerSuccess(ErrMalformedResponse))
}
