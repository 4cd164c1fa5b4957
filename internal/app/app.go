package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/rs/zerolog"
	swaggerfiles "github.com/swaggo/files"
	swagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Nazarious-ucu/weather-aggregator-api/docs"
	"github.com/Nazarious-ucu/weather-aggregator-api/internal/config"
	handlers "github.com/Nazarious-ucu/weather-aggregator-api/internal/handlers/http"
	"github.com/Nazarious-ucu/weather-aggregator-api/internal/handlers/middleware"
	loggerT "github.com/Nazarious-ucu/weather-aggregator-api/internal/services/logger"
	metricsSvc "github.com/Nazarious-ucu/weather-aggregator-api/internal/services/metrics"
	serviceWeather "github.com/Nazarious-ucu/weather-aggregator-api/internal/services/weather"
	fLogger "github.com/Nazarious-ucu/weather-aggregator-api/pkg/logger"
)

const (
	breakerName     = "OpenWeatherMap"
	shutdownTimeout = 5 * time.Second
)

// ServiceContainer holds initialized dependencies for the HTTP server.
type ServiceContainer struct {
	WeatherService *serviceWeather.ServiceProvider

	Router     *gin.Engine
	Srv        *http.Server
	fileLogger *zap.Logger
}

// App ties together config, logger, and metrics for startup/shutdown.
type App struct {
	cfg config.Config
	l   zerolog.Logger
	m   *metricsSvc.Metrics
}

// New prepares a new App with given config, zerolog logger, and metrics.
func New(cfg config.Config, logger zerolog.Logger, met *metricsSvc.Metrics) *App {
	return &App{
		cfg: cfg,
		l:   logger,
		m:   met,
	}
}

// Start serves HTTP until ctx is cancelled or the listener fails, then shuts down.
func (a *App) Start(ctx context.Context) error {
	srvContainer := a.Build()

	serveErr := make(chan error, 1)
	go func() {
		a.l.Info().
			Str("address", srvContainer.Srv.Addr).
			Msg("starting weather aggregator")
		if err := srvContainer.Srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		a.l.Info().Msg("shutdown signal received, stopping weather aggregator")
	case err, ok := <-serveErr:
		if ok {
			a.l.Error().Err(err).Msg("HTTP server failed")
			_ = a.Shutdown(srvContainer)
			return err
		}
	}

	if err := a.Shutdown(srvContainer); err != nil {
		a.l.Error().Err(err).Msg("failed to shutdown application")
		return err
	}
	a.l.Info().Msg("application shutdown successfully")
	return nil
}

// Shutdown drains the HTTP server and syncs the upstream audit log.
func (a *App) Shutdown(srvContainer ServiceContainer) error {
	a.l.Info().Msg("stopping weather aggregator…")

	defer func(logger *zap.Logger) {
		if err := logger.Sync(); err != nil {
			a.l.Error().Err(err).Msg("failed to sync file logger")
		} else {
			a.l.Info().Msg("file logger synced successfully")
		}
	}(srvContainer.fileLogger)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srvContainer.Srv.Shutdown(ctx); err != nil {
		return err
	}
	a.l.Info().Msg("shutdown complete")
	return nil
}

// Build wires the upstream client, service, router and HTTP server without starting them.
func (a *App) Build() ServiceContainer {
	a.l.Info().
		Str("upstream", a.cfg.OpenWeatherMap.URL).
		Bool("api_key_configured", a.cfg.OpenWeatherMap.Configured()).
		Bool("unified_error_mapping", a.cfg.UnifiedErrorMapping).
		Strs("cors_origins", a.cfg.Cors.AllowedOrigins).
		Msg("initializing weather aggregator")

	fileLogger, err := fLogger.NewFileLogger(a.cfg.HTTPLogsPath)
	if err != nil {
		a.l.Error().Err(err).Msg("failed to create file logger, upstream audit log disabled")
		fileLogger = zap.NewNop()
	}

	// metrics -> audit log -> default transport
	transport := a.m.InstrumentRoundTripper(loggerT.NewRoundTripper(fileLogger, http.DefaultTransport))
	httpLogClient := &http.Client{Transport: transport}

	breakerCfg := serviceWeather.BreakerConfig{
		TimeInterval: time.Duration(a.cfg.Breaker.TimeInterval) * time.Second,
		TimeTimeOut:  time.Duration(a.cfg.Breaker.TimeTimeOut) * time.Second,
		RepeatNumber: a.cfg.Breaker.RepeatNumber,
	}
	openWeather := serviceWeather.NewBreakerClient(breakerName, breakerCfg,
		serviceWeather.NewClientOpenWeatherMap(
			a.cfg.OpenWeatherMap.APIKey,
			a.cfg.OpenWeatherMap.URL,
			httpLogClient,
			a.l,
		),
	)
	weatherService := serviceWeather.NewService(a.l, openWeather, a.cfg.UnifiedErrorMapping)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(a.l),
		a.m.HTTPMiddleware(),
	)

	handlers.NewHandler(weatherService, a.cfg.UpstreamTimeout(), a.l).Register(router)
	router.GET("/metrics", gin.WrapH(a.m.Handler()))
	router.GET("/swagger/*any", swagger.WrapHandler(swaggerfiles.Handler))

	corsLogger := a.l.With().Str("component", "cors").Logger()
	// forwarded headers -> CORS -> gin
	handler := gorillaHandlers.ProxyHeaders(middleware.CORS(a.cfg.Cors.AllowedOrigins, corsLogger, router))

	httpServer := &http.Server{
		Addr:        a.cfg.ServerAddress(),
		Handler:     handler,
		ReadTimeout: time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
	}

	return ServiceContainer{
		WeatherService: weatherService,
		Router:         router,
		Srv:            httpServer,
		fileLogger:     fileLogger,
	}
}
