package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

// fakeListener is a Listener whose Shutdown behaviour is scripted.
type fakeListener struct {
	delay   time.Duration
	err     error
	release chan struct{} // if non-nil, Shutdown blocks until closed

	calls     atomic.Int32
	started   chan struct{}
	startOnce sync.Once
	cancelled atomic.Bool
}

func newFakeListener() *fakeListener {
	return &fakeListener{started: make(chan struct{})}
}

func (l *fakeListener) Shutdown(ctx context.Context) error {
	l.calls.Add(1)
	l.startOnce.Do(func() { close(l.started) })

	if l.release != nil {
		select {
		case <-l.release:
		case <-ctx.Done():
			l.cancelled.Store(true)
			<-l.release
		}
	}
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	return l.err
}

// fakeObserver records lifecycle events.
type fakeObserver struct {
	mu       sync.Mutex
	signals  []string
	outcomes []string
}

func (o *fakeObserver) SignalReceived(signal string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.signals = append(o.signals, signal)
}

func (o *fakeObserver) ShutdownFinished(outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *fakeObserver) signalCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.signals)
}

func runAsync(c *Coordinator) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		ch <- c.Run(context.Background())
	}()
	return ch
}

func waitResult(t *testing.T, ch <-chan Result, within time.Duration) Result {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(within):
		t.Fatal("Run() did not complete in time")
		return Result{}
	}
}

func TestNew(t *testing.T) {
	c := New(newFakeListener())
	if c == nil {
		t.Fatal("New returned nil")
	}
	if c.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", c.timeout, DefaultTimeout)
	}
	if len(c.signals) != 2 {
		t.Errorf("expected 2 default signals, got %d", len(c.signals))
	}
	if c.State() != StateRunning {
		t.Errorf("State() = %v, want %v", c.State(), StateRunning)
	}
	if c.Draining() {
		t.Error("Draining() should be false before shutdown")
	}

	select {
	case <-c.Done():
		t.Error("Done channel should not be closed initially")
	default:
	}
}

func TestWithTimeout_IgnoresNonPositive(t *testing.T) {
	c := New(newFakeListener(), WithTimeout(0), WithTimeout(-time.Second))
	if c.Timeout() != DefaultTimeout {
		t.Errorf("Timeout() = %v, want %v", c.Timeout(), DefaultTimeout)
	}
}

func TestCoordinator_CleanShutdown(t *testing.T) {
	l := newFakeListener()
	l.delay = 20 * time.Millisecond
	src := make(chan os.Signal, 1)
	obs := &fakeObserver{}

	c := New(l, WithSignalSource(src), WithTimeout(2*time.Second), WithObserver(obs))
	resCh := runAsync(c)

	src <- syscall.SIGINT
	res := waitResult(t, resCh, 2*time.Second)

	if res.Outcome != OutcomeClean {
		t.Errorf("Outcome = %v, want %v", res.Outcome, OutcomeClean)
	}
	if res.ExitCode() != 0 {
		t.Errorf("ExitCode() = %d, want 0", res.ExitCode())
	}
	if res.Err != nil {
		t.Errorf("Err = %v, want nil", res.Err)
	}
	if res.Cause != syscall.SIGINT.String() {
		t.Errorf("Cause = %q, want %q", res.Cause, syscall.SIGINT.String())
	}
	if got := l.calls.Load(); got != 1 {
		t.Errorf("listener Shutdown called %d times, want 1", got)
	}
	if l.cancelled.Load() {
		t.Error("listener context should not be cancelled on clean shutdown")
	}
	if c.State() != StateTerminated {
		t.Errorf("State() = %v, want %v", c.State(), StateTerminated)
	}

	select {
	case <-c.Done():
	default:
		t.Error("Done channel should be closed after Run completes")
	}

	if len(obs.outcomes) != 1 || obs.outcomes[0] != "clean" {
		t.Errorf("observer outcomes = %v, want [clean]", obs.outcomes)
	}
}

// Signal at t=0, listener finishes at 2s, bound 30s; scaled down 1:15 here.
func TestCoordinator_CompletesWellBeforeBound(t *testing.T) {
	l := newFakeListener()
	l.delay = 40 * time.Millisecond
	src := make(chan os.Signal, 1)

	c := New(l, WithSignalSource(src), WithTimeout(600*time.Millisecond))
	resCh := runAsync(c)

	src <- syscall.SIGTERM
	res := waitResult(t, resCh, 2*time.Second)

	if res.ExitCode() != 0 {
		t.Fatalf("ExitCode() = %d, want 0 (err: %v)", res.ExitCode(), res.Err)
	}
	if res.Elapsed >= c.Timeout() {
		t.Errorf("Elapsed = %v, should be below the bound %v", res.Elapsed, c.Timeout())
	}
}

func TestCoordinator_MultipleSignalsCollapse(t *testing.T) {
	for _, n := range []int{1, 2, 5, 20} {
		t.Run(fmt.Sprintf("signals=%d", n), func(t *testing.T) {
			l := newFakeListener()
			l.release = make(chan struct{})
			src := make(chan os.Signal, n)
			obs := &fakeObserver{}

			c := New(l, WithSignalSource(src), WithTimeout(5*time.Second), WithObserver(obs))
			resCh := runAsync(c)

			for i := 0; i < n; i++ {
				if i%2 == 0 {
					src <- syscall.SIGINT
				} else {
					src <- syscall.SIGTERM
				}
			}

			<-l.started
			deadline := time.Now().Add(2 * time.Second)
			for obs.signalCount() < n && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			if got := obs.signalCount(); got != n {
				t.Fatalf("observed %d signals, want %d", got, n)
			}
			if !c.Draining() {
				t.Error("Draining() should be true while the listener drains")
			}

			close(l.release)
			res := waitResult(t, resCh, 2*time.Second)

			if res.Outcome != OutcomeClean {
				t.Errorf("Outcome = %v, want %v", res.Outcome, OutcomeClean)
			}
			if got := l.calls.Load(); got != 1 {
				t.Errorf("listener Shutdown called %d times, want 1", got)
			}
		})
	}
}

func TestCoordinator_ListenerError(t *testing.T) {
	errClose := errors.New("close failed")
	l := newFakeListener()
	l.err = errClose
	src := make(chan os.Signal, 1)

	hookCalled := false
	c := New(l, WithSignalSource(src), WithTimeout(2*time.Second))
	c.OnShutdown("never", func(ctx context.Context) error {
		hookCalled = true
		return nil
	})
	resCh := runAsync(c)

	src <- syscall.SIGTERM
	res := waitResult(t, resCh, 2*time.Second)

	if res.Outcome != OutcomeListenerError {
		t.Errorf("Outcome = %v, want %v", res.Outcome, OutcomeListenerError)
	}
	if res.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", res.ExitCode())
	}
	if !errors.Is(res.Err, errClose) {
		t.Errorf("Err = %v, want wrapping %v", res.Err, errClose)
	}
	if hookCalled {
		t.Error("hooks must not run when the listener fails to stop")
	}
}

// Listener never completes: the bound forces termination with status 1.
func TestCoordinator_Timeout(t *testing.T) {
	l := newFakeListener()
	l.release = make(chan struct{})
	t.Cleanup(func() { close(l.release) })
	src := make(chan os.Signal, 1)

	timeout := 80 * time.Millisecond
	c := New(l, WithSignalSource(src), WithTimeout(timeout))
	resCh := runAsync(c)

	src <- syscall.SIGINT
	res := waitResult(t, resCh, 2*time.Second)

	if res.Outcome != OutcomeTimeout {
		t.Errorf("Outcome = %v, want %v", res.Outcome, OutcomeTimeout)
	}
	if res.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", res.ExitCode())
	}
	if !errors.Is(res.Err, ErrTimeout) {
		t.Errorf("Err = %v, want wrapping %v", res.Err, ErrTimeout)
	}
	if res.Elapsed < timeout {
		t.Errorf("Elapsed = %v, want at least %v", res.Elapsed, timeout)
	}

	deadline := time.Now().Add(time.Second)
	for !l.cancelled.Load() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !l.cancelled.Load() {
		t.Error("listener context should be cancelled after the bound elapses")
	}
}

// A listener that eventually succeeds after the bound still yields status 1.
func TestCoordinator_TimeoutRegardlessOfLateSuccess(t *testing.T) {
	l := newFakeListener()
	l.delay = 300 * time.Millisecond
	src := make(chan os.Signal, 1)

	c := New(l, WithSignalSource(src), WithTimeout(50*time.Millisecond))
	resCh := runAsync(c)

	src <- syscall.SIGINT
	res := waitResult(t, resCh, 2*time.Second)

	if res.Outcome != OutcomeTimeout {
		t.Errorf("Outcome = %v, want %v", res.Outcome, OutcomeTimeout)
	}
	if res.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", res.ExitCode())
	}
}

func TestCoordinator_HooksReverseOrder(t *testing.T) {
	l := newFakeListener()
	src := make(chan os.Signal, 1)

	var mu sync.Mutex
	callOrder := make([]int, 0)
	record := func(id int) Hook {
		return func(ctx context.Context) error {
			if l.calls.Load() != 1 {
				t.Errorf("hook %d ran before the listener stopped", id)
			}
			mu.Lock()
			callOrder = append(callOrder, id)
			mu.Unlock()
			return nil
		}
	}

	c := New(l, WithSignalSource(src), WithTimeout(2*time.Second))
	c.OnShutdown("first", record(1))
	c.OnShutdown("second", record(2))
	c.OnShutdown("third", record(3))
	resCh := runAsync(c)

	src <- syscall.SIGINT
	res := waitResult(t, resCh, 2*time.Second)
	if res.Outcome != OutcomeClean {
		t.Fatalf("Outcome = %v, want %v", res.Outcome, OutcomeClean)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(callOrder) != 3 || callOrder[0] != 3 || callOrder[1] != 2 || callOrder[2] != 1 {
		t.Errorf("hooks called in wrong order: %v, want [3 2 1]", callOrder)
	}
}

func TestCoordinator_HookError(t *testing.T) {
	errHook := errors.New("flush failed")
	src := make(chan os.Signal, 1)

	secondRan := false
	c := New(newFakeListener(), WithSignalSource(src), WithTimeout(2*time.Second))
	c.OnShutdown("after", func(ctx context.Context) error {
		secondRan = true
		return nil
	})
	c.OnShutdown("broken", func(ctx context.Context) error {
		return errHook
	})
	resCh := runAsync(c)

	src <- syscall.SIGTERM
	res := waitResult(t, resCh, 2*time.Second)

	if res.Outcome != OutcomeHookError {
		t.Errorf("Outcome = %v, want %v", res.Outcome, OutcomeHookError)
	}
	if res.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", res.ExitCode())
	}
	if !errors.Is(res.Err, ErrHookFailed) || !errors.Is(res.Err, errHook) {
		t.Errorf("Err = %v, want wrapping %v and %v", res.Err, ErrHookFailed, errHook)
	}
	if !secondRan {
		t.Error("remaining hooks should still run after a hook fails")
	}
}

func TestCoordinator_Trigger(t *testing.T) {
	l := newFakeListener()
	c := New(l, WithSignalSource(make(chan os.Signal)), WithTimeout(2*time.Second))
	resCh := runAsync(c)

	c.Trigger()
	c.Trigger()
	c.Trigger()

	res := waitResult(t, resCh, 2*time.Second)
	if res.Cause != "trigger" {
		t.Errorf("Cause = %q, want %q", res.Cause, "trigger")
	}
	if got := l.calls.Load(); got != 1 {
		t.Errorf("listener Shutdown called %d times, want 1", got)
	}
}

func TestCoordinator_ContextCancel(t *testing.T) {
	c := New(newFakeListener(), WithSignalSource(make(chan os.Signal)), WithTimeout(2*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	resCh := make(chan Result, 1)
	go func() {
		resCh <- c.Run(ctx)
	}()

	cancel()
	res := waitResult(t, resCh, 2*time.Second)
	if res.Cause != "context" {
		t.Errorf("Cause = %q, want %q", res.Cause, "context")
	}
	if res.ExitCode() != 0 {
		t.Errorf("ExitCode() = %d, want 0", res.ExitCode())
	}
}

func TestCoordinator_ClosedSignalSource(t *testing.T) {
	src := make(chan os.Signal)
	close(src)

	c := New(newFakeListener(), WithSignalSource(src), WithTimeout(2*time.Second))
	resCh := runAsync(c)

	select {
	case <-resCh:
		t.Fatal("a closed signal source must not start shutdown")
	case <-time.After(50 * time.Millisecond):
	}

	c.Trigger()
	res := waitResult(t, resCh, 2*time.Second)
	if res.Outcome != OutcomeClean {
		t.Errorf("Outcome = %v, want %v", res.Outcome, OutcomeClean)
	}
}

func TestCoordinator_RunTwice(t *testing.T) {
	l := newFakeListener()
	c := New(l, WithSignalSource(make(chan os.Signal)), WithTimeout(2*time.Second))

	first := runAsync(c)
	second := runAsync(c)
	c.Trigger()

	r1 := waitResult(t, first, 2*time.Second)
	r2 := waitResult(t, second, 2*time.Second)
	if r1.Outcome != r2.Outcome || r1.Cause != r2.Cause {
		t.Errorf("results differ: %+v vs %+v", r1, r2)
	}
	if got := l.calls.Load(); got != 1 {
		t.Errorf("listener Shutdown called %d times, want 1", got)
	}
}

func TestCoordinator_Run_WithSignal(t *testing.T) {
	l := newFakeListener()
	c := New(l, WithTimeout(2*time.Second))
	resCh := runAsync(c)

	// Give Run time to set up signal handler
	time.Sleep(50 * time.Millisecond)

	syscall.Kill(syscall.Getpid(), syscall.SIGTERM)

	res := waitResult(t, resCh, 2*time.Second)
	if res.Cause != syscall.SIGTERM.String() {
		t.Errorf("Cause = %q, want %q", res.Cause, syscall.SIGTERM.String())
	}
	if res.ExitCode() != 0 {
		t.Errorf("ExitCode() = %d, want 0", res.ExitCode())
	}
}

// A signal delivered after New but before Run must be queued and start
// the shutdown once Run is called, instead of terminating the process.
func TestCoordinator_SignalBeforeRun(t *testing.T) {
	l := newFakeListener()
	c := New(l, WithTimeout(2*time.Second))

	syscall.Kill(syscall.Getpid(), syscall.SIGTERM)

	// Give the runtime time to deliver the signal before Run starts.
	time.Sleep(50 * time.Millisecond)

	res := waitResult(t, runAsync(c), 2*time.Second)
	if res.Cause != syscall.SIGTERM.String() {
		t.Errorf("Cause = %q, want %q", res.Cause, syscall.SIGTERM.String())
	}
	if res.ExitCode() != 0 {
		t.Errorf("ExitCode() = %d, want 0", res.ExitCode())
	}
}

func TestOutcome_ExitCode(t *testing.T) {
	tests := []struct {
		outcome Outcome
		name    string
		code    int
	}{
		{OutcomeClean, "clean", 0},
		{OutcomeListenerError, "listener_error", 1},
		{OutcomeTimeout, "timeout", 1},
		{OutcomeHookError, "hook_error", 1},
	}

	for _, tt := range tests {
		if got := tt.outcome.ExitCode(); got != tt.code {
			t.Errorf("%s.ExitCode() = %d, want %d", tt.name, got, tt.code)
		}
		if got := tt.outcome.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
	}
}
