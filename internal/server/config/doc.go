// Package config provides server configuration for graceserve.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation of ports, levels and paths
//   - load.go: Loading from file, environment and flags via confloader
package config
