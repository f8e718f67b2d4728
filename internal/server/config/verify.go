package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yndnr/graceserve/internal/telemetry/logger"
)

// reservedPaths are served by the router and cannot host metrics.
var reservedPaths = []string{"/", "/healthz", "/readyz"}

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyLog(&cfg.Log); err != nil {
		return err
	}
	return verifyMetrics(&cfg.Metrics)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("server.port %d out of range 0-65535", cfg.Port)
	}
	if cfg.RateLimit < 0 {
		return errors.New("server.ratelimit must not be negative")
	}
	if cfg.Timeouts.Header < 0 || cfg.Timeouts.Idle < 0 {
		return errors.New("server.timeouts must not be negative")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
		return nil
	default:
		return fmt.Errorf("log.format %q is not one of json, text", cfg.Format)
	}
}

func verifyMetrics(cfg *MetricsSection) error {
	if !cfg.Enabled {
		return nil
	}
	if !strings.HasPrefix(cfg.Path, "/") {
		return fmt.Errorf("metrics.path %q must start with /", cfg.Path)
	}
	// The path is mounted as a literal ServeMux pattern; wildcards and
	// spaces would change its meaning or make registration panic.
	if strings.ContainsAny(cfg.Path, "{} \t\r\n") {
		return fmt.Errorf("metrics.path %q must not contain braces or whitespace", cfg.Path)
	}
	for _, p := range reservedPaths {
		if cfg.Path == p {
			return fmt.Errorf("metrics.path %q conflicts with a built-in route", cfg.Path)
		}
	}
	return nil
}
