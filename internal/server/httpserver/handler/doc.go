// Package handler provides the HTTP request handlers for graceserve.
//
// Handlers:
//
//   - Health: GET /healthz liveness check
//   - Ready: GET /readyz readiness check, 503 once shutdown has begun
//   - Root: GET / service banner with environment label and timestamp
//   - NotFound: JSON 404 for every unmatched path
//
// All responses are JSON encoded. Routing and middleware live in the
// parent httpserver package.
package handler
