package config

import (
	"net"
	"strconv"
	"time"
)

// ServerConfig is the root configuration for graceserve.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	App     AppSection     `koanf:"app"`
	Log     LogSection     `koanf:"log"`
	Metrics MetricsSection `koanf:"metrics"`
}

// ServerSection configures the HTTP listener.
type ServerSection struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// RateLimit is the per-client request rate (requests/second).
	// Zero disables rate limiting.
	RateLimit int `koanf:"ratelimit"`

	Timeouts TimeoutsSection `koanf:"timeouts"`
}

// Addr returns the listen address.
func (s ServerSection) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// TimeoutsSection configures connection-level timeouts.
type TimeoutsSection struct {
	Header time.Duration `koanf:"header"`
	Idle   time.Duration `koanf:"idle"`
}

// AppSection configures the payload of the root route.
type AppSection struct {
	// Env is the environment label reported by GET /.
	Env     string `koanf:"env"`
	Message string `koanf:"message"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}
