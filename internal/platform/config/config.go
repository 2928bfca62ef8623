// Package config loads process-level engine configuration from the
// environment so main stays lean.
package config

import (
	"os"
	"runtime"
	"strconv"
	"time"
)

// Engine captures tunables for the verification engine.
type Engine struct {
	// CheckTimeout bounds each forensic check; a timed-out check yields a
	// neutral result instead of blocking the analysis.
	CheckTimeout time.Duration
	// MaxParallel bounds concurrent forensic checks.
	MaxParallel int
	LogLevel    string
	// ProfileOverrides optionally points at a TOML file adjusting scoring
	// profile caps and floors per document type.
	ProfileOverrides string
}

// FromEnv builds an Engine config from VERIDOC_* environment variables.
func FromEnv() Engine {
	timeout := 10 * time.Second
	if raw := os.Getenv("VERIDOC_CHECK_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			timeout = d
		}
	}

	parallel := runtime.GOMAXPROCS(0)
	if raw := os.Getenv("VERIDOC_MAX_PARALLEL"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			parallel = n
		}
	}

	level := os.Getenv("VERIDOC_LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	return Engine{
		CheckTimeout:     timeout,
		MaxParallel:      parallel,
		LogLevel:         level,
		ProfileOverrides: os.Getenv("VERIDOC_PROFILE_OVERRIDES"),
	}
}
