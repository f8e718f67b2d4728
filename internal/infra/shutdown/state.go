package shutdown

import (
	"errors"
	"time"
)

var (
	// ErrTimeout is reported when the listener did not stop within the bound.
	ErrTimeout = errors.New("shutdown: timeout exceeded")

	// ErrHookFailed is reported when one or more shutdown hooks returned an error.
	ErrHookFailed = errors.New("shutdown: hook failed")
)

// State is the lifecycle state of a Coordinator.
type State int32

const (
	// StateRunning means no termination event has been received.
	StateRunning State = iota
	// StateShuttingDown means the shutdown sequence is in progress.
	StateShuttingDown
	// StateTerminated means the sequence has finished. It is final.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Outcome identifies which edge led into StateTerminated.
type Outcome int

const (
	// OutcomeClean means the listener stopped and every hook succeeded.
	OutcomeClean Outcome = iota
	// OutcomeListenerError means the listener failed to stop.
	OutcomeListenerError
	// OutcomeTimeout means the bound elapsed before the sequence completed.
	OutcomeTimeout
	// OutcomeHookError means the listener stopped but a hook failed.
	OutcomeHookError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeClean:
		return "clean"
	case OutcomeListenerError:
		return "listener_error"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeHookError:
		return "hook_error"
	default:
		return "unknown"
	}
}

// ExitCode returns the process exit status for the outcome.
func (o Outcome) ExitCode() int {
	if o == OutcomeClean {
		return 0
	}
	return 1
}

// Result describes a finished shutdown sequence.
type Result struct {
	// Outcome is the terminal edge taken.
	Outcome Outcome

	// Err is the cause for every outcome except OutcomeClean.
	Err error

	// Cause names the termination event that started the sequence
	// (a signal name, "trigger" or "context").
	Cause string

	// Elapsed is the time from the first termination event to termination.
	Elapsed time.Duration
}

// ExitCode returns the process exit status for the result.
func (r Result) ExitCode() int {
	return r.Outcome.ExitCode()
}
