package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Server struct {
	Host        string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port        string `envconfig:"SERVER_PORT" default:"8000"`
	ReadTimeout int    `envconfig:"SERVER_TIMEOUT" default:"10"`
}

type OpenWeatherMap struct {
	// APIKey is optional at startup; endpoints report its absence per request.
	APIKey  string `envconfig:"OPENWEATHERMAP_API_KEY"`
	URL     string `envconfig:"OPENWEATHERMAP_URL" default:"https://api.openweathermap.org"`
	Timeout int    `envconfig:"UPSTREAM_TIMEOUT" default:"10"`
}

type Breaker struct {
	TimeInterval int    `envconfig:"BREAKER_INTERVAL" default:"30"`
	TimeTimeOut  int    `envconfig:"BREAKER_TIMEOUT" default:"10"`
	RepeatNumber uint32 `envconfig:"BREAKER_REPEAT_NUM" default:"5"`
}

type Cors struct {
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:8000,http://52.66.143.178,http://13.203.90.88"`
}

type Config struct {
	OpenWeatherMap OpenWeatherMap
	Server         Server
	Breaker        Breaker
	Cors           Cors

	UnifiedErrorMapping bool `envconfig:"UNIFIED_ERROR_MAPPING" default:"false"`

	ServiceName  string `envconfig:"SERVICE_NAME" default:"weather_aggregator"`
	LogsPath     string `envconfig:"LOGS_PATH" default:"./log/weather-aggregator-api.log"`
	HTTPLogsPath string `envconfig:"HTTP_LOGS_PATH" default:"./log/upstream-http.log"`
}

func NewConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.Cors.AllowedOrigins = normalizeOrigins(cfg.Cors.AllowedOrigins)
	return &cfg, nil
}

// Configured reports whether an API key was provided.
func (o OpenWeatherMap) Configured() bool {
	return o.APIKey != ""
}

func (c *Config) ServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.OpenWeatherMap.Timeout) * time.Second
}

// normalizeOrigins drops blanks and trailing slashes; browsers never send
// a trailing slash in the Origin header.
func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		out = append(out, o)
	}
	return out
}
