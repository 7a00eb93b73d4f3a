//This project is the school meal backend API. It resolves schools and serves the daily cafeteria menu compiled from the NEIS open data service.
//API Copyright (C) 2025 OpenSourceDUTH
//This program is free software: you can redistribute it and/or modify
//it under the terms of the GNU General Public License as published by
//the Free Software Foundation, either version 3 of the License, or
//(at your option) any later version.
//
//This program is distributed in the hope that it will be useful,
//but WITHOUT ANY WARRANTY; without even the implied warranty of
//MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//GNU General Public License for more details.
//
//You should have received a copy of the GNU General Public License
//along with this program.  If not, see <https://www.gnu.org/licenses/>.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"MealAPI/internal/env"

	"golang.org/x/time/rate"
)

const (
	DefaultNEISBaseURL     = "https://open.neis.go.kr/hub"
	DefaultNEISTimeout     = 10 * time.Second
	DefaultNEISRateLimit   = 5 // requests per second towards NEIS
	DefaultNEISRateBurst   = 10
	DefaultTimezone        = "Asia/Seoul"
	DefaultPort            = 9237
	DefaultRateLimit       = 20 // requests per second served
	DefaultRateLimitBurst  = 40
	DefaultShutdownTimeout = 15 * time.Second
	DefaultLogLevel        = "info"
)

// ErrMissingAPIKey is returned when NEIS_API_KEY is not configured.
var ErrMissingAPIKey = errors.New("config: " + env.EnvNEISAPIKey + " is required")

// NEISConfig holds the upstream client settings
type NEISConfig struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	RateLimit rate.Limit
	RateBurst int
}

// ServerConfig holds the HTTP server settings
type ServerConfig struct {
	Port            int
	RateLimit       rate.Limit
	RateLimitBurst  int
	ShutdownTimeout time.Duration
	Debug           bool
}

// CardConfig holds the image rendering settings
type CardConfig struct {
	FontPath string
}

// Config is the application configuration assembled from the environment
type Config struct {
	NEIS     NEISConfig
	Server   ServerConfig
	Card     CardConfig
	Location *time.Location
	LogLevel string
}

// Load reads the configuration from the environment. Call godotenv.Load
// beforehand to pick up a .env file.
func Load() (*Config, error) {
	cfg := &Config{
		NEIS: NEISConfig{
			APIKey:    strings.TrimSpace(env.GetEnv(env.EnvNEISAPIKey, "")),
			BaseURL:   env.GetEnv(env.EnvNEISBaseURL, DefaultNEISBaseURL),
			Timeout:   env.GetDuration(env.EnvNEISTimeout, DefaultNEISTimeout),
			RateLimit: rate.Limit(env.GetFloat(env.EnvNEISRateLimit, DefaultNEISRateLimit)),
			RateBurst: env.GetInt(env.EnvNEISRateBurst, DefaultNEISRateBurst),
		},
		Server: ServerConfig{
			Port:            env.GetInt(env.EnvPort, DefaultPort),
			RateLimit:       rate.Limit(env.GetFloat(env.EnvRateLimit, DefaultRateLimit)),
			RateLimitBurst:  env.GetInt(env.EnvRateLimitBurst, DefaultRateLimitBurst),
			ShutdownTimeout: env.GetDuration(env.EnvShutdownTimeout, DefaultShutdownTimeout),
			Debug:           env.GetBool(env.EnvDebug, false),
		},
		Card: CardConfig{
			FontPath: env.GetEnv(env.EnvCardFontPath, ""),
		},
		LogLevel: env.GetEnv(env.EnvLogLevel, DefaultLogLevel),
	}

	if cfg.NEIS.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.NEIS.Timeout <= 0 {
		return nil, fmt.Errorf("config: %s must be positive, got %s", env.EnvNEISTimeout, cfg.NEIS.Timeout)
	}
	if cfg.NEIS.RateLimit < 0 {
		return nil, fmt.Errorf("config: %s must not be negative, got %v", env.EnvNEISRateLimit, float64(cfg.NEIS.RateLimit))
	}
	if cfg.Server.RateLimit < 0 {
		return nil, fmt.Errorf("config: %s must not be negative, got %v", env.EnvRateLimit, float64(cfg.Server.RateLimit))
	}
	// 0 turns limiting off on both sides, like NEIS_RATE_LIMIT does for the client
	if cfg.Server.RateLimit == 0 {
		cfg.Server.RateLimit = rate.Inf
	}

	tz := env.GetEnv(env.EnvMealTimezone, DefaultTimezone)
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("config: invalid %s %q: %w", env.EnvMealTimezone, tz, err)
	}
	cfg.Location = loc

	return cfg, nil
}
