package session

import (
	"github.com/connorhough/vidresume/internal/desktop"
	"github.com/connorhough/vidresume/internal/layout"
	"github.com/google/uuid"
)

// Phase is a step of the session state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseMuting
	PhaseSpawningAndPlacing
	PhaseSettleDelay
	PhaseClickResume
	PhasePlayDelay
	PhaseClickPause
	PhaseLingerDelay
	PhaseCloseAll
	PhaseUnmuting
	PhaseFailed
	PhaseCancelled
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseMuting:
		return "muting"
	case PhaseSpawningAndPlacing:
		return "spawning-and-placing"
	case PhaseSettleDelay:
		return "settle-delay"
	case PhaseClickResume:
		return "click-resume"
	case PhasePlayDelay:
		return "play-delay"
	case PhaseClickPause:
		return "click-pause"
	case PhaseLingerDelay:
		return "linger-delay"
	case PhaseCloseAll:
		return "close-all"
	case PhaseUnmuting:
		return "unmuting"
	case PhaseFailed:
		return "failed"
	case PhaseCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the session ends in p.
func (p Phase) Terminal() bool {
	return p == PhaseIdle || p == PhaseFailed || p == PhaseCancelled
}

// PositionedWindow is a correlated window after it was assigned a grid cell.
type PositionedWindow struct {
	desktop.WindowRef
	// Cell is the grid position; Origin is the same cell in screen coordinates.
	Cell   layout.Point
	Origin layout.Point
	// outcome indexes the Report entry of the task that spawned the window.
	outcome int
	lost    bool
}

// State is the working set of one session. It is owned by the running
// Sequencer call and discarded when Run returns.
type State struct {
	ID      string
	Windows []*PositionedWindow

	audio  *MuteGuard
	cursor layout.Point
	phase  Phase
	trace  []Phase
}

func newState(audio *MuteGuard) *State {
	return &State{
		ID:    uuid.NewString(),
		audio: audio,
		phase: PhaseIdle,
	}
}

func (s *State) enter(p Phase) {
	s.phase = p
	s.trace = append(s.trace, p)
}

// claimed returns the handles already positioned in this session.
func (s *State) claimed() map[desktop.Handle]struct{} {
	set := make(map[desktop.Handle]struct{}, len(s.Windows))
	for _, w := range s.Windows {
		set[w.Handle] = struct{}{}
	}
	return set
}

// live returns positioned windows not known to be gone, in spawn order.
func (s *State) live() []*PositionedWindow {
	out := make([]*PositionedWindow, 0, len(s.Windows))
	for _, w := range s.Windows {
		if !w.lost {
			out = append(out, w)
		}
	}
	return out
}
