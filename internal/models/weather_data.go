package models

import "encoding/json"

// WeatherSummary is the projection returned by the current-weather endpoint.
type WeatherSummary struct {
	Temperature        float64 `json:"temperature"`
	WeatherDescription string  `json:"weather_description"`
	Humidity           int     `json:"humidity"`
	WindSpeed          float64 `json:"wind_speed"`
}

// GeoCoordinate is the first geocoding match for a city.
type GeoCoordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RawPayload is an upstream JSON object passed through untouched.
type RawPayload = json.RawMessage
