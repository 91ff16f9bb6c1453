// Package config loads engine configuration from environment variables
// and optional YAML render profiles.
package config

import (
	"os"
	"strconv"
)

// Config holds engine configuration.
type Config struct {
	ThemeDir     string // directory containing theme packs
	Theme        string // theme pack id to load
	Platform     string // target platform for profiles and template layering
	ProfilesDir  string // directory containing render profiles
	LogLevel     string
	OTLPEndpoint string
	Telemetry    bool
	TokenBudget  int // prompt token budget, 0 means unlimited
}

// Load reads configuration from LLM2UI_* environment variables.
func Load() *Config {
	themeDir := os.Getenv("LLM2UI_THEME_DIR")
	if themeDir == "" {
		themeDir = "themes"
	}

	theme := os.Getenv("LLM2UI_THEME")
	if theme == "" {
		theme = "default"
	}

	platform := os.Getenv("LLM2UI_PLATFORM")
	if platform == "" {
		platform = "web"
	}

	profilesDir := os.Getenv("LLM2UI_PROFILES_DIR")
	if profilesDir == "" {
		profilesDir = "profiles"
	}

	logLevel := os.Getenv("LLM2UI_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	otlp := os.Getenv("LLM2UI_OTLP_ENDPOINT")

	budget := 0
	if raw := os.Getenv("LLM2UI_TOKEN_BUDGET"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			budget = n
		}
	}

	return &Config{
		ThemeDir:     themeDir,
		Theme:        theme,
		Platform:     platform,
		ProfilesDir:  profilesDir,
		LogLevel:     logLevel,
		OTLPEndpoint: otlp,
		Telemetry:    otlp != "",
		TokenBudget:  budget,
	}
}
