// Package config builds runtime configuration from the environment so main
// stays lean. Flags in cmd/server override these values.
package config

import (
	"os"
	"strconv"
)

// Server captures deployment-level configuration.
type Server struct {
	Addr             string
	DBPath           string
	Timezone         string  // fixed employer civil zone; never the process default
	Jornada          float64 // expected ordinary jornada length, in hours
	PageSize         int     // punch read page size
	NightlyRecompute bool
}

// FromEnv reads HOURS_* environment variables with development defaults.
func FromEnv() Server {
	cfg := Server{
		Addr:             ":8080",
		DBPath:           "hours.db",
		Timezone:         "America/Argentina/Buenos_Aires",
		Jornada:          8,
		PageSize:         500,
		NightlyRecompute: true,
	}
	if v := os.Getenv("HOURS_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("HOURS_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("HOURS_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("HOURS_JORNADA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Jornada = f
		}
	}
	if v := os.Getenv("HOURS_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PageSize = n
		}
	}
	if v := os.Getenv("HOURS_NIGHTLY_RECOMPUTE"); v != "" {
		cfg.NightlyRecompute = v == "true" || v == "1"
	}
	return cfg
}
