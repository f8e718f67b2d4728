// Package shutdown provides graceful shutdown handling.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/yndnr/graceserve/internal/telemetry/logger"
)

// DefaultTimeout bounds the whole shutdown sequence.
const DefaultTimeout = 30 * time.Second

// Listener is the component that accepts inbound work.
//
// Shutdown stops accepting new connections and returns once in-flight
// work has completed. The context is cancelled if the shutdown bound
// elapses first.
type Listener interface {
	Shutdown(ctx context.Context) error
}

// Hook releases a resource after the listener has stopped.
type Hook func(ctx context.Context) error

// Observer receives shutdown lifecycle events, typically for metrics.
type Observer interface {
	SignalReceived(signal string)
	ShutdownFinished(outcome string, elapsed time.Duration)
}

type namedHook struct {
	name string
	fn   Hook
}

// Coordinator owns the listener handle and the shutdown state.
type Coordinator struct {
	listener Listener
	timeout  time.Duration
	signals  []os.Signal
	source   <-chan os.Signal
	notify   chan os.Signal
	logger   logger.Logger
	observer Observer

	mu    sync.Mutex
	hooks []namedHook

	state   atomic.Int32
	started atomic.Bool
	trigger chan struct{}
	done    chan struct{}
	result  Result
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithSignals sets the OS signals treated as termination requests.
func WithSignals(sigs ...os.Signal) Option {
	return func(c *Coordinator) {
		c.signals = sigs
	}
}

// WithSignalSource makes the coordinator read termination signals from ch
// instead of subscribing to OS signals.
func WithSignalSource(ch <-chan os.Signal) Option {
	return func(c *Coordinator) {
		c.source = ch
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver sets the lifecycle observer.
func WithObserver(o Observer) Option {
	return func(c *Coordinator) {
		c.observer = o
	}
}

// New creates a coordinator for the given listener.
//
// Unless WithSignalSource is given, New subscribes to the termination
// signals immediately, so a signal that arrives before Run is queued
// rather than killing the process. Run releases the subscription.
func New(listener Listener, opts ...Option) *Coordinator {
	c := &Coordinator{
		listener: listener,
		timeout:  DefaultTimeout,
		signals:  []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		logger:   logger.Default(),
		trigger:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.source == nil {
		c.notify = make(chan os.Signal, 1)
		signal.Notify(c.notify, c.signals...)
		c.source = c.notify
	}

	return c
}

// OnShutdown registers a hook that runs after the listener stops.
// Hooks are called in reverse order of registration.
func (c *Coordinator) OnShutdown(name string, fn Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, namedHook{name: name, fn: fn})
}

// Trigger requests shutdown as if a termination signal had arrived.
// It never blocks.
func (c *Coordinator) Trigger() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Draining reports whether shutdown has begun.
func (c *Coordinator) Draining() bool {
	return c.State() != StateRunning
}

// Done returns a channel that closes when the coordinator terminates.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Timeout returns the shutdown bound.
func (c *Coordinator) Timeout() time.Duration {
	return c.timeout
}

// Run waits for the first termination event and then executes the shutdown
// sequence. It returns once the coordinator reaches StateTerminated; the
// caller is expected to exit the process with Result.ExitCode.
//
// Calling Run more than once waits for and returns the first run's result.
func (c *Coordinator) Run(ctx context.Context) Result {
	if !c.started.CompareAndSwap(false, true) {
		<-c.done
		return c.result
	}

	if c.notify != nil {
		defer signal.Stop(c.notify)
	}
	sigCh := c.source

	var cause string
	ctxDone := ctx.Done()
	for cause == "" {
		select {
		case sig, ok := <-sigCh:
			if !ok {
				sigCh = nil
				continue
			}
			cause = sig.String()
			c.observeSignal(cause)
			c.logger.Info("signal received, graceful shutdown started",
				"signal", cause,
				"timeout", c.timeout.String())
		case <-c.trigger:
			cause = "trigger"
			c.logger.Info("shutdown requested, graceful shutdown started",
				"timeout", c.timeout.String())
		case <-ctxDone:
			cause = "context"
			c.logger.Info("context cancelled, graceful shutdown started",
				"error", ctx.Err(),
				"timeout", c.timeout.String())
		}
	}

	return c.shutdown(cause, sigCh)
}

// shutdown runs the sequence started by cause.
func (c *Coordinator) shutdown(cause string, sigCh <-chan os.Signal) Result {
	c.state.Store(int32(StateShuttingDown))
	start := time.Now()

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	drainCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type drainResult struct {
		outcome Outcome
		err     error
	}
	drained := make(chan drainResult, 1)
	go func() {
		outcome, err := c.drain(drainCtx)
		drained <- drainResult{outcome: outcome, err: err}
	}()

	res := Result{Cause: cause}
	for {
		select {
		case sig, ok := <-sigCh:
			if !ok {
				sigCh = nil
				continue
			}
			c.observeSignal(sig.String())
			c.logger.Warn("shutdown already in progress, ignoring signal", "signal", sig.String())
			continue
		case <-c.trigger:
			c.logger.Warn("shutdown already in progress, ignoring trigger")
			continue
		case d := <-drained:
			res.Outcome, res.Err = d.outcome, d.err
		case <-timer.C:
			res.Outcome, res.Err = OutcomeTimeout, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
			cancel()
		}
		break
	}

	res.Elapsed = time.Since(start)
	return c.finish(res)
}

// drain stops the listener and, if it stopped cleanly, runs the hooks.
func (c *Coordinator) drain(ctx context.Context) (Outcome, error) {
	if err := c.listener.Shutdown(ctx); err != nil {
		return OutcomeListenerError, fmt.Errorf("listener shutdown: %w", err)
	}

	c.mu.Lock()
	hooks := make([]namedHook, len(c.hooks))
	copy(hooks, c.hooks)
	c.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		if err := h.fn(ctx); err != nil {
			c.logger.Error("shutdown hook failed", "hook", h.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
			continue
		}
		c.logger.Debug("shutdown hook completed", "hook", h.name)
	}

	if len(errs) > 0 {
		return OutcomeHookError, fmt.Errorf("%w: %w", ErrHookFailed, errors.Join(errs...))
	}
	return OutcomeClean, nil
}

// finish records the result and enters StateTerminated.
func (c *Coordinator) finish(res Result) Result {
	c.result = res
	c.state.Store(int32(StateTerminated))

	switch res.Outcome {
	case OutcomeClean:
		c.logger.Info("graceful shutdown completed",
			"cause", res.Cause,
			"elapsed", res.Elapsed.String())
	case OutcomeTimeout:
		c.logger.Error("forced shutdown after timeout",
			"cause", res.Cause,
			"timeout", c.timeout.String())
	case OutcomeListenerError:
		c.logger.Error("error during server closing",
			"cause", res.Cause,
			"error", res.Err)
	default:
		c.logger.Error("shutdown completed with errors",
			"cause", res.Cause,
			"outcome", res.Outcome.String(),
			"error", res.Err)
	}

	if c.observer != nil {
		c.observer.ShutdownFinished(res.Outcome.String(), res.Elapsed)
	}

	close(c.done)
	return res
}

func (c *Coordinator) observeSignal(name string) {
	if c.observer != nil {
		c.observer.SignalReceived(name)
	}
}
