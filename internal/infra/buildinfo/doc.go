// Package buildinfo provides build information for graceserve.
//
// This package exposes build-time information injected via ldflags:
//
//   - Version: Semantic version (e.g., "1.0.0")
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//
// The Go version is taken from the running binary.
//
// Usage:
//
//	go build -ldflags "-X github.com/yndnr/graceserve/internal/infra/buildinfo.Version=v1.0.0"
package buildinfo
