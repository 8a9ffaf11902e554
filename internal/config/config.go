// Package config defines job configuration structures and loading hooks.
//
// Conventions:
// - New() builds a Config with defaults; Load layers file and env on top.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"github.com/okian/topskim/internal/domain/cuts"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// MonitorAddr enables the monitoring HTTP server when non-empty, e.g. ":9090".
	MonitorAddr string `koanf:"monitor_addr"`
	// WorkerCount sets the number of analysis workers; 1 runs sequentially.
	WorkerCount int `koanf:"worker_count"`
	// QueueSize bounds the in-memory event queue used by the worker pool.
	QueueSize int `koanf:"queue_size"`
	// DedupeEvents drops repeated (run, lumi, event) ids.
	DedupeEvents bool `koanf:"dedupe_events"`
	// DedupeSize bounds the dedupe cache; 0 keeps every id.
	DedupeSize int `koanf:"dedupe_size"`
	// Cuts holds every selection threshold.
	Cuts cuts.Cuts `koanf:"cuts"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		MonitorAddr:  "",
		WorkerCount:  1,
		QueueSize:    4096,
		DedupeEvents: false,
		DedupeSize:   0,
		Cuts:         cuts.Default(),
	}
}
