package httpserver

import (
	"net/http"

	"github.com/yndnr/graceserve/internal/server/httpserver/handler"
	"github.com/yndnr/graceserve/internal/telemetry/logger"
	"github.com/yndnr/graceserve/internal/telemetry/metric"
)

// Route labels used for metrics.
const (
	RouteHealth    = "/healthz"
	RouteReady     = "/readyz"
	RouteRoot      = "/"
	RouteUnmatched = "unmatched"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Logger for request logging. Defaults to logger.Default().
	Logger logger.Logger

	// Metrics enables request instrumentation when non-nil.
	Metrics *metric.Registry

	// MetricsPath mounts the Prometheus handler. Empty disables it.
	MetricsPath string

	// Draining reports whether shutdown has begun.
	Draining func() bool

	// Env and Message populate the root route.
	Env     string
	Message string

	// RateLimit is the per-IP rate limit (requests/second) on the root
	// and unmatched routes. Zero disables it. Probes are never limited.
	RateLimit int

	// AccessLog enables one log line per request.
	AccessLog bool
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	h := handler.New(handler.Config{
		Env:      cfg.Env,
		Message:  cfg.Message,
		Draining: cfg.Draining,
	})

	limit := RateLimit(cfg.RateLimit)

	// Order: Recover -> RequestID -> AccessLog -> Instrument -> [RateLimit] -> Handler
	chain := func(route string, next http.Handler, extra ...Middleware) http.Handler {
		mws := []Middleware{Recover(log), RequestID()}
		if cfg.AccessLog {
			mws = append(mws, AccessLog(log))
		}
		mws = append(mws, Instrument(cfg.Metrics, route))
		mws = append(mws, extra...)
		return Chain(next, mws...)
	}

	mux := http.NewServeMux()

	mux.Handle("GET "+RouteHealth, chain(RouteHealth, http.HandlerFunc(h.Health)))
	mux.Handle("GET "+RouteReady, chain(RouteReady, http.HandlerFunc(h.Ready)))

	if cfg.Metrics != nil && cfg.MetricsPath != "" {
		mux.Handle("GET "+cfg.MetricsPath, chain(cfg.MetricsPath, cfg.Metrics.Handler()))
	}

	mux.Handle("GET /{$}", chain(RouteRoot, http.HandlerFunc(h.Root), limit))
	mux.Handle("/", chain(RouteUnmatched, http.HandlerFunc(h.NotFound), limit))

	return mux
}
