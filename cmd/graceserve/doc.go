// Package main provides the entry point for graceserve.
//
// graceserve is a small HTTP service whose process lifecycle is driven by
// OS termination signals: SIGINT or SIGTERM starts a graceful shutdown
// bounded by a forced-exit timeout.
//
// Usage:
//
//	graceserve [--config FILE] [--port PORT] [--log-level LEVEL] [--log-format FORMAT]
//
// Exit status is 0 after a clean shutdown and 1 when the server fails to
// close, the shutdown times out, or the server cannot start.
package main
