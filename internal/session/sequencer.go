// Package session restores partially watched videos by opening one browser
// window per video at its saved position, tiling the windows, clicking each
// player to start and then pause playback, and closing the windows again.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/connorhough/vidresume/internal/browser"
	"github.com/connorhough/vidresume/internal/desktop"
	"github.com/connorhough/vidresume/internal/layout"
	"github.com/connorhough/vidresume/internal/metrics"
	"github.com/connorhough/vidresume/internal/video"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Options configures a Sequencer. DefaultOptions holds the reference timings.
type Options struct {
	Seek        video.SeekOptions
	Correlation CorrelatorOptions

	CellWidth   int
	CellHeight  int
	ClickOffset layout.Point

	// SettleDelay lets pages load after the last spawn.
	SettleDelay time.Duration
	// ClickGap follows every click in both click passes.
	ClickGap time.Duration
	// PlayDelay separates the resume pass from the pause pass.
	PlayDelay time.Duration
	// LingerDelay precedes closing the windows.
	LingerDelay time.Duration
	// CleanupTimeout bounds CloseAll and Unmuting after a cancellation.
	CleanupTimeout time.Duration
}

// DefaultOptions returns the reference configuration.
func DefaultOptions() Options {
	return Options{
		Seek: video.DefaultSeekOptions(),
		Correlation: CorrelatorOptions{
			WindowClass:  browser.DefaultWindowClass(),
			PollInterval: defaultPollInterval,
			MaxAttempts:  defaultMaxAttempts,
			Timeout:      15 * time.Second,
		},
		CellWidth:      layout.CellWidth,
		CellHeight:     layout.CellHeight,
		ClickOffset:    layout.Point{X: 320, Y: 384},
		SettleDelay:    3000 * time.Millisecond,
		ClickGap:       500 * time.Millisecond,
		PlayDelay:      1000 * time.Millisecond,
		LingerDelay:    3000 * time.Millisecond,
		CleanupTimeout: 10 * time.Second,
	}
}

// Option customizes a Sequencer.
type Option func(*Sequencer)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(s *Sequencer) {
		s.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Sequencer) {
		s.logger = l
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Sequencer) {
		s.metrics = r
	}
}

// Sequencer runs restore sessions one at a time.
type Sequencer struct {
	backend  desktop.Backend
	launcher browser.Launcher
	opts     Options
	clock    Clock
	logger   *zap.Logger
	metrics  *metrics.Recorder

	// gate admits a single session; overlapping runs would share the
	// cursor, focus and mute state.
	gate *semaphore.Weighted
}

// New creates a Sequencer.
func New(backend desktop.Backend, launcher browser.Launcher, opts Options, options ...Option) *Sequencer {
	s := &Sequencer{
		backend:  backend,
		launcher: launcher,
		opts:     opts,
		clock:    SystemClock,
		logger:   zap.NewNop(),
		gate:     semaphore.NewWeighted(1),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Run executes one session over tasks, in input order. It returns
// ErrSessionActive without side effects when another Run is in flight.
//
// Per-video failures never abort the run; they are reported in the
// returned Report. The error is non-nil only when the session could not
// complete: a wrapped ErrEnumeration or display failure (Phase failed) or
// the context's error (Phase cancelled). CloseAll and Unmuting are still
// attempted in both cases.
func (s *Sequencer) Run(ctx context.Context, tasks []video.Task) (*Report, error) {
	if !s.gate.TryAcquire(1) {
		return nil, ErrSessionActive
	}
	defer s.gate.Release(1)

	state := newState(NewMuteGuard(s.backend))
	report := &Report{SessionID: state.ID, StartedAt: s.clock.Now()}
	eligible := s.prepare(tasks, report)
	log := s.logger.With(zap.String("session", state.ID))

	if len(eligible) == 0 {
		log.Debug("no eligible videos", zap.Int("tasks", len(tasks)))
		s.finish(state, report, PhaseIdle)
		return report, nil
	}

	s.metrics.SessionStarted()
	log.Info("restore session starting", zap.Int("tasks", len(tasks)), zap.Int("eligible", len(eligible)))

	runErr := s.choreograph(ctx, log, state, report, tasks, eligible)
	s.cleanup(ctx, log, state, report)

	terminal := PhaseIdle
	switch {
	case runErr != nil && ctx.Err() != nil:
		terminal = PhaseCancelled
		report.settle(StatusCancelled)
		runErr = fmt.Errorf("restore session cancelled: %w", ctx.Err())
	case runErr != nil:
		terminal = PhaseFailed
		report.settle(StatusAborted)
	default:
		report.settle(StatusResumed)
	}
	s.finish(state, report, terminal)
	s.metrics.SessionFinished(terminal.String())
	for _, i := range eligible {
		s.metrics.Video(string(report.Outcomes[i].Status))
	}

	log.Info("restore session finished",
		zap.Stringer("phase", terminal),
		zap.Int("resumed", report.Count(StatusResumed)),
		zap.Int("failed", len(report.Failures())),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, runErr
}

// prepare fills one outcome per task and returns the eligible indices.
func (s *Sequencer) prepare(tasks []video.Task, report *Report) []int {
	report.Outcomes = make([]Outcome, len(tasks))
	var eligible []int
	for i, t := range tasks {
		report.Outcomes[i] = Outcome{TaskID: t.ID, Status: StatusIneligible}
		if s.opts.Seek.Eligible(t) {
			report.Outcomes[i].Status = StatusPending
			report.Outcomes[i].SeekURL = s.opts.Seek.SeekURL(t)
			eligible = append(eligible, i)
		}
	}
	return eligible
}

func (s *Sequencer) choreograph(ctx context.Context, log *zap.Logger, state *State, report *Report, tasks []video.Task, eligible []int) error {
	area, err := s.backend.WorkArea(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to read display work area: %w", err)
	}
	grid := layout.Grid{
		CellWidth:  s.opts.CellWidth,
		CellHeight: s.opts.CellHeight,
		Width:      area.Width,
		Origin:     layout.Point{X: area.X, Y: area.Y},
	}
	if err := grid.Validate(); err != nil {
		return err
	}

	state.enter(PhaseMuting)
	if err := state.audio.Engage(ctx); err != nil {
		report.MuteErr = ErrMuteToggleFailure(err)
		log.Warn("audio not muted", zap.Error(err))
	}

	state.enter(PhaseSpawningAndPlacing)
	correlator := NewCorrelator(s.backend, s.launcher, s.opts.Correlation, log, s.metrics)
	for _, idx := range eligible {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.spawn(ctx, log, state, report, grid, correlator, tasks[idx], idx); err != nil {
			return err
		}
	}

	if len(state.live()) == 0 {
		log.Warn("no windows to drive")
		return nil
	}

	state.enter(PhaseSettleDelay)
	if err := s.clock.Sleep(ctx, s.opts.SettleDelay); err != nil {
		return err
	}

	state.enter(PhaseClickResume)
	if err := s.clickPass(ctx, log, state, report, "resume"); err != nil {
		return err
	}

	state.enter(PhasePlayDelay)
	if err := s.clock.Sleep(ctx, s.opts.PlayDelay); err != nil {
		return err
	}

	state.enter(PhaseClickPause)
	if err := s.clickPass(ctx, log, state, report, "pause"); err != nil {
		return err
	}

	state.enter(PhaseLingerDelay)
	return s.clock.Sleep(ctx, s.opts.LingerDelay)
}

// spawn correlates and places one task's window. Only session-fatal errors
// and cancellation are returned.
func (s *Sequencer) spawn(ctx context.Context, log *zap.Logger, state *State, report *Report, grid layout.Grid, correlator *Correlator, task video.Task, idx int) error {
	out := &report.Outcomes[idx]
	log = log.With(zap.String("task", task.ID))

	ref, proc, err := correlator.Correlate(ctx, task.ID, out.SeekURL, state.claimed())
	out.PID = proc.PID
	if err != nil {
		if ctx.Err() != nil {
			// Unplaced, but still closed by cleanup.
			if ref.Handle != 0 {
				out.Window = ref
				state.Windows = append(state.Windows, &PositionedWindow{WindowRef: ref, outcome: idx})
			}
			return ctx.Err()
		}
		if errors.Is(err, ErrEnumeration) {
			return err
		}
		out.Err = err
		switch kind, _ := KindOf(err); kind {
		case KindSpawnFailure:
			out.Status = StatusSpawnFailed
		case KindCorrelationTimeout:
			out.Status = StatusCorrelationTimeout
		default:
			out.Status = StatusAborted
		}
		log.Warn("video skipped", zap.String("url", out.SeekURL), zap.Error(err))
		return nil
	}

	cell, next := grid.Place(state.cursor)
	state.cursor = next
	w := &PositionedWindow{
		WindowRef: ref,
		Cell:      cell,
		Origin:    grid.Screen(cell),
		outcome:   idx,
	}
	out.Window = ref
	out.Cell = cell

	bounds := desktop.Rect{X: w.Origin.X, Y: w.Origin.Y, Width: grid.CellWidth, Height: grid.CellHeight}
	if err := s.backend.Place(ctx, ref.Handle, bounds); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, desktop.ErrWindowGone) {
			s.lose(log, w, report, err)
			state.Windows = append(state.Windows, w)
			return nil
		}
		log.Warn("window not placed", zap.Stringer("window", ref.Handle), zap.Error(err))
	}
	state.Windows = append(state.Windows, w)
	log.Debug("window placed", zap.Stringer("window", ref.Handle), zap.Int("x", w.Origin.X), zap.Int("y", w.Origin.Y))
	return nil
}

// clickPass clicks every live window in spawn order. A window whose click
// already failed is not clicked again, so it is never toggled into playing.
func (s *Sequencer) clickPass(ctx context.Context, log *zap.Logger, state *State, report *Report, pass string) error {
	clicker := NewClicker(s.backend, s.opts.ClickOffset)
	for _, w := range state.live() {
		if err := ctx.Err(); err != nil {
			return err
		}
		out := &report.Outcomes[w.outcome]
		if out.Status == StatusClickFailed {
			continue
		}
		if err := clicker.Click(ctx, w); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, desktop.ErrWindowGone) {
				s.lose(log, w, report, err)
				continue
			}
			log.Warn("click failed", zap.String("task", out.TaskID), zap.String("pass", pass), zap.Stringer("window", w.Handle), zap.Error(err))
			out.Status = StatusClickFailed
			out.Err = ErrClickFailure(out.TaskID, pass, w.Handle, err)
		} else {
			s.metrics.Click(pass)
		}
		if err := s.clock.Sleep(ctx, s.opts.ClickGap); err != nil {
			return err
		}
	}
	return nil
}

// cleanup closes every live window and restores audio. It runs on a
// detached context when ctx is already done. Failures are logged only.
func (s *Sequencer) cleanup(ctx context.Context, log *zap.Logger, state *State, report *Report) {
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), s.opts.CleanupTimeout)
		defer cancel()
	}

	state.enter(PhaseCloseAll)
	for _, w := range state.live() {
		if err := s.backend.Close(ctx, w.Handle); err != nil {
			if errors.Is(err, desktop.ErrWindowGone) {
				log.Debug("window already closed", zap.Stringer("window", w.Handle))
				continue
			}
			log.Warn("window not closed", zap.Stringer("window", w.Handle), zap.Error(err))
		}
	}

	state.enter(PhaseUnmuting)
	if err := state.audio.Release(ctx); err != nil {
		if report.MuteErr == nil {
			report.MuteErr = ErrMuteToggleFailure(err)
		}
		log.Warn("audio left muted", zap.Error(err))
	}
}

func (s *Sequencer) lose(log *zap.Logger, w *PositionedWindow, report *Report, err error) {
	w.lost = true
	out := &report.Outcomes[w.outcome]
	out.Status = StatusClickTargetLost
	out.Err = ErrClickTargetLost(out.TaskID, w.Handle, err)
	log.Warn("window lost", zap.String("task", out.TaskID), zap.Stringer("window", w.Handle))
}

func (s *Sequencer) finish(state *State, report *Report, terminal Phase) {
	state.enter(terminal)
	report.Phase = terminal
	report.Trace = append([]Phase(nil), state.trace...)
	report.FinishedAt = s.clock.Now()
}
