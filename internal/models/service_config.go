package models

import "time"

// CorsConfig holds the allowed-origin configuration served to the CORS
// middleware. Origins are comma-separated; the config hot-reloads.
type CorsConfig struct {
	ConfigKey        string    `json:"config_key"`
	AllowedOrigins   string    `json:"allowed_origins"`
	AllowCredentials bool      `json:"allow_credentials"`
	MaxAge           int       `json:"max_age"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RatelimitConfig holds the request rate in ulule/limiter format
// (e.g. "5-S", "100-M").
type RatelimitConfig struct {
	ConfigKey string    `json:"config_key"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NudgeConfig holds the nudge rules document (YAML) as stored in the
// database. The worker prefers this over the on-disk rules file.
type NudgeConfig struct {
	ConfigKey string    `json:"config_key"`
	RulesYAML string    `json:"rules_yaml"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
