// Package logger provides structured logging for graceserve.
//
// The logger wraps log/slog:
//
//   - logger.go: Logger interface, handler construction, runtime level changes
//   - context.go: request ID propagation through context.Context
//   - redact.go: masking of credentials in log attributes
//
// A single LevelVar backs every logger, so SetLevel (for example from a
// configuration reload) takes effect immediately across the process.
package logger
