package session

import (
	"time"

	"github.com/connorhough/vidresume/internal/desktop"
	"github.com/connorhough/vidresume/internal/layout"
)

// Status is the per-video result of a session.
type Status string

const (
	StatusPending            Status = "pending"
	StatusResumed            Status = "resumed"
	StatusIneligible         Status = "ineligible"
	StatusSpawnFailed        Status = "spawn_failed"
	StatusCorrelationTimeout Status = "correlation_timeout"
	StatusClickTargetLost    Status = "click_target_lost"
	StatusClickFailed        Status = "click_failed"
	StatusCancelled          Status = "cancelled"
	StatusAborted            Status = "aborted"
)

// Outcome records what happened to one task.
type Outcome struct {
	TaskID  string
	SeekURL string
	Status  Status
	Window  desktop.WindowRef
	PID     int
	Cell    layout.Point
	Err     error
}

// Failed reports whether the task was eligible but not resumed.
func (o Outcome) Failed() bool {
	return o.Status != StatusResumed && o.Status != StatusIneligible
}

// Report is returned by every Run, including failed and cancelled ones.
// Partial success is the common case.
type Report struct {
	SessionID  string
	Phase      Phase
	Trace      []Phase
	Outcomes   []Outcome
	MuteErr    error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Count returns the number of outcomes with status st.
func (r *Report) Count(st Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == st {
			n++
		}
	}
	return n
}

// Failures returns the eligible outcomes that were not resumed.
func (r *Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Failed() {
			out = append(out, o)
		}
	}
	return out
}

// settle replaces every pending outcome with st.
func (r *Report) settle(st Status) {
	for i := range r.Outcomes {
		if r.Outcomes[i].Status == StatusPending {
			r.Outcomes[i].Status = st
		}
	}
}
