package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Nazarious-ucu/weather-aggregator-api/internal/app"
	"github.com/Nazarious-ucu/weather-aggregator-api/internal/config"
	"github.com/Nazarious-ucu/weather-aggregator-api/internal/services/metrics"
	"github.com/Nazarious-ucu/weather-aggregator-api/pkg/logger"
)

const defaultEnvFile = "config.env"

// @title Weather Aggregator API
// @version 1.0
// @description Proxy over OpenWeatherMap for current weather, air quality, forecast and UV index
// @host localhost:8000
// @BasePath /
func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = defaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("No %s file found: %v", envFile, err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Panicf("failed to load configuration: %v", err)
	}

	l, err := logger.NewLogger(cfg.LogsPath, cfg.ServiceName)
	if err != nil {
		log.Panicf("failed to create logger: %v", err)
	}

	if !cfg.OpenWeatherMap.Configured() {
		l.Warn().Msg("OPENWEATHERMAP_API_KEY is not set, weather and air quality requests will fail")
	}

	m := metrics.NewMetrics(cfg.ServiceName)

	application := app.New(*cfg, l, m)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		l.Error().Err(err).Msg("application failed to run")
		stop()
		os.Exit(1)
	}
}
