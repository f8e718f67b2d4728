// Package shutdown coordinates graceful process shutdown for graceserve.
//
// A Coordinator waits for the first termination event and then drives a
// single, bounded shutdown sequence:
//
//   - Termination events: SIGINT, SIGTERM, Trigger, or context cancellation
//   - Listener stop: stop accepting work and finish in-flight requests
//   - Hooks: release application resources after the listener has stopped
//   - Forced shutdown: a fixed deadline (30s by default) ends the sequence
//
// Every event is received by one goroutine, so later signals are observed
// and ignored rather than re-entering the sequence. New subscribes to
// signals, so one delivered before Run is called is not lost.
//
// Usage:
//
//	c := shutdown.New(server, shutdown.WithLogger(log))
//	c.OnShutdown("watcher", func(ctx context.Context) error { return w.Stop() })
//	res := c.Run(context.Background())
//	os.Exit(res.ExitCode())
package shutdown
