package handler

// Probe status values.
const (
	StatusHealthy  = "healthy"
	StatusReady    = "ready"
	StatusDraining = "draining"
)

// StatusResponse is the body of the health and readiness endpoints.
type StatusResponse struct {
	Status string `json:"status"`
}

// RootResponse is the body of GET /.
type RootResponse struct {
	Message     string `json:"message"`
	Environment string `json:"environment"`
	Timestamp   string `json:"timestamp"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
