// Package httpserver provides the HTTP server for graceserve.
//
// It uses the Go standard library net/http and exposes:
//
//   - GET /healthz: liveness check
//   - GET /readyz: readiness check, 503 while draining
//   - GET /: service banner
//   - GET /metrics: Prometheus exposition (configurable path)
//
// Features:
//
//   - Middleware chain: Recover, RequestID, AccessLog, Instrument, RateLimit
//   - Synchronous bind so address errors surface at startup
//   - Graceful Shutdown satisfying shutdown.Listener
package httpserver
