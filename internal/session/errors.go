package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/connorhough/vidresume/internal/desktop"
)

var (
	// ErrSessionActive is returned when a session is already in flight.
	ErrSessionActive = errors.New("a restore session is already running")
	// ErrEnumeration means browser windows could not be listed at all. It
	// aborts the whole session.
	ErrEnumeration = errors.New("cannot enumerate browser windows")
)

// Kind classifies non-fatal per-video and per-session failures.
type Kind string

const (
	KindSpawnFailure       Kind = "spawn_failure"
	KindCorrelationTimeout Kind = "correlation_timeout"
	KindClickTargetLost    Kind = "click_target_lost"
	KindClickFailure       Kind = "click_failure"
	KindMuteToggleFailure  Kind = "mute_toggle_failure"
)

// Error is a classified session failure.
type Error struct {
	Kind   Kind
	TaskID string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrSpawnFailure indicates the browser process could not be started.
func ErrSpawnFailure(taskID string, err error) error {
	return &Error{
		Kind:   KindSpawnFailure,
		TaskID: taskID,
		Msg:    fmt.Sprintf("task %s: browser failed to start", taskID),
		Err:    err,
	}
}

// ErrCorrelationTimeout indicates no new window appeared within the poll budget.
func ErrCorrelationTimeout(taskID string, attempts int, waited time.Duration) error {
	return &Error{
		Kind:   KindCorrelationTimeout,
		TaskID: taskID,
		Msg:    fmt.Sprintf("task %s: no new browser window after %d polls (%s)", taskID, attempts, waited.Round(time.Millisecond)),
	}
}

// ErrClickTargetLost indicates the window closed before a placement or click.
func ErrClickTargetLost(taskID string, h desktop.Handle, err error) error {
	return &Error{
		Kind:   KindClickTargetLost,
		TaskID: taskID,
		Msg:    fmt.Sprintf("task %s: window %s is gone", taskID, h),
		Err:    err,
	}
}

// ErrClickFailure indicates a click on a live window could not be delivered.
func ErrClickFailure(taskID, pass string, h desktop.Handle, err error) error {
	return &Error{
		Kind:   KindClickFailure,
		TaskID: taskID,
		Msg:    fmt.Sprintf("task %s: %s click on window %s failed", taskID, pass, h),
		Err:    err,
	}
}

// ErrMuteToggleFailure indicates the mute command could not be delivered.
func ErrMuteToggleFailure(err error) error {
	return &Error{
		Kind: KindMuteToggleFailure,
		Msg:  "failed to toggle audio mute",
		Err:  err,
	}
}

// KindOf returns the Kind of a classified error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
