package config

import (
	"fmt"

	"github.com/yndnr/graceserve/internal/infra/confloader"
)

// EnvAliases maps conventional unprefixed environment variables to keys.
var EnvAliases = map[string]string{
	"PORT":    "server.port",
	"APP_ENV": "app.env",
}

// Load builds the configuration from defaults, the optional file, the
// environment and flag overrides, then verifies it.
func Load(configFile string, overrides map[string]any) (*ServerConfig, error) {
	cfg := Default()

	opts := []confloader.Option{
		confloader.WithEnvAliases(EnvAliases),
		confloader.WithOverrides(overrides),
	}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
