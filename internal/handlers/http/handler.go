package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-aggregator-api/internal/models"
)

const (
	defaultTimeout = 10 * time.Second

	msgCityRequired = "city query parameter is required"
	contentTypeJSON = "application/json"
)

type weatherService interface {
	GetCurrentWeather(ctx context.Context, city string) (models.WeatherSummary, error)
	GetAirQuality(ctx context.Context, city string) (models.RawPayload, error)
	GetForecast(ctx context.Context, city string) (models.RawPayload, error)
	GetUVIndex(ctx context.Context, city string) (models.RawPayload, error)
}

type cityQuery struct {
	City string `form:"city" binding:"required"`
}

type Handler struct {
	service weatherService
	timeout time.Duration
	logger  zerolog.Logger
}

// NewHandler builds the weather handlers. A non-positive timeout falls back to 10s.
func NewHandler(svc weatherService, timeout time.Duration, logger zerolog.Logger) *Handler {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Handler{service: svc, timeout: timeout, logger: logger}
}

// Register mounts the weather routes on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/weather/", h.GetWeather)
	r.GET("/air-quality/", h.GetAirQuality)
	r.GET("/weather/forecast/", h.GetForecast)
	r.GET("/uv-index/", h.GetUVIndex)
	r.GET("/health", h.Health)
}

// GetWeather
// @Summary Current weather
// @Description Current temperature, description, humidity and wind speed for a city.
// @Tags weather
// @Produce json
// @Param city query string true "City name"
// @Success 200 {object} models.WeatherSummary
// @Failure 400
// @Failure 404
// @Failure 500
// @Router /weather/ [get]
func (h *Handler) GetWeather(c *gin.Context) {
	city, ok := h.city(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	data, err := h.service.GetCurrentWeather(ctx, city)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}

// GetAirQuality
// @Summary Air quality
// @Description Raw OpenWeatherMap air pollution data for a city.
// @Tags weather
// @Produce json
// @Param city query string true "City name"
// @Success 200 {object} object
// @Failure 400
// @Failure 404
// @Failure 500
// @Router /air-quality/ [get]
func (h *Handler) GetAirQuality(c *gin.Context) {
	h.raw(c, h.service.GetAirQuality)
}

// GetForecast
// @Summary Weather forecast
// @Description Raw OpenWeatherMap 5 day / 3 hour forecast for a city.
// @Tags weather
// @Produce json
// @Param city query string true "City name"
// @Success 200 {object} object
// @Failure 400
// @Failure 404
// @Failure 500
// @Router /weather/forecast/ [get]
func (h *Handler) GetForecast(c *gin.Context) {
	h.raw(c, h.service.GetForecast)
}

// GetUVIndex
// @Summary UV index
// @Description Raw OpenWeatherMap UV index for a city.
// @Tags weather
// @Produce json
// @Param city query string true "City name"
// @Success 200 {object} object
// @Failure 400
// @Failure 500
// @Router /uv-index/ [get]
func (h *Handler) GetUVIndex(c *gin.Context) {
	h.raw(c, h.service.GetUVIndex)
}

// Health
// @Summary Liveness probe
// @Tags system
// @Produce json
// @Success 200
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) raw(c *gin.Context, fetch func(ctx context.Context, city string) (models.RawPayload, error)) {
	city, ok := h.city(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	data, err := fetch(ctx, city)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Data(http.StatusOK, contentTypeJSON, data)
}

func (h *Handler) city(c *gin.Context) (string, bool) {
	var q cityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.logger.Warn().
			Err(err).
			Str("path", c.Request.URL.Path).
			Msg("missing city query parameter")
		c.JSON(http.StatusBadRequest, gin.H{"error": msgCityRequired})
		return "", false
	}
	return q.City, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": messageFor(err)})
}

func statusFor(err error) int {
	var classified *models.Error
	if !errors.As(err, &classified) {
		return http.StatusInternalServerError
	}
	switch classified.Kind {
	case models.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error) string {
	var classified *models.Error
	if errors.As(err, &classified) {
		return classified.Message
	}
	return http.StatusText(http.StatusInternalServerError)
}
