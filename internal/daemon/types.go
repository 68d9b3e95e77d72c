package daemon

import (
	"log/slog"
	"time"
)

// StartOptions configures the bridge daemon.
type StartOptions struct {
	Home         string
	Port         int
	BaseURL      string        // backend API root
	PollInterval time.Duration // notification refresh cadence
	APIKey       string        // required X-API-Key on the bridge when set
	Dev          bool          // enable CORS for a browser UI on another origin
	PprofAddr    string
	EnableOtel   bool // Prometheus exporter at /metrics plus HTTP instrumentation
	Logger       *slog.Logger
}

// StatusInfo is the result of Status.
type StatusInfo struct {
	Running bool
	PID     int
	Addr    string
}
