package config

import "time"

// Default configuration values.
const (
	DefaultHost          = ""
	DefaultPort          = 3000
	DefaultHeaderTimeout = 10 * time.Second
	DefaultIdleTimeout   = 60 * time.Second

	DefaultEnv     = "development"
	DefaultMessage = "Hello from graceserve"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsPath = "/metrics"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Host: DefaultHost,
			Port: DefaultPort,
			Timeouts: TimeoutsSection{
				Header: DefaultHeaderTimeout,
				Idle:   DefaultIdleTimeout,
			},
		},
		App: AppSection{
			Env:     DefaultEnv,
			Message: DefaultMessage,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsSection{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
	}
}
