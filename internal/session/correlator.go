package session

import (
	"context"
	"fmt"
	"time"

	"github.com/connorhough/vidresume/internal/browser"
	"github.com/connorhough/vidresume/internal/desktop"
	"github.com/connorhough/vidresume/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultPollInterval = 250 * time.Millisecond
	defaultMaxAttempts  = 40
	stragglerTimeout    = 2 * time.Second
)

// CorrelatorOptions bounds the wait for a launched browser's window.
type CorrelatorOptions struct {
	WindowClass  string
	PollInterval time.Duration
	MaxAttempts  int
	// Timeout caps the whole poll loop; zero leaves only MaxAttempts.
	Timeout time.Duration
}

// Correlator launches a browser and finds the top-level window it created.
type Correlator struct {
	backend  desktop.Backend
	launcher browser.Launcher
	opts     CorrelatorOptions
	logger   *zap.Logger
	metrics  *metrics.Recorder
}

// NewCorrelator creates a Correlator. A nil logger disables logging.
func NewCorrelator(backend desktop.Backend, launcher browser.Launcher, opts CorrelatorOptions, logger *zap.Logger, rec *metrics.Recorder) *Correlator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.PollInterval < 0 {
		opts.PollInterval = defaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Correlator{
		backend:  backend,
		launcher: launcher,
		opts:     opts,
		logger:   logger,
		metrics:  rec,
	}
}

// Correlate snapshots the browser windows, launches url and polls until a
// window that was not in the snapshot and is not in claimed shows up.
//
// When several new windows appear in the same poll, the one owned by the
// launched process wins; otherwise the first in enumeration order is taken.
// Chromium usually hands the URL to an already running browser process, so
// the pid match is a preference rather than a requirement.
//
// Polling runs on wall time, so the reported latency does too.
//
// Errors: ErrEnumeration (wrapped) when listing fails, ErrSpawnFailure,
// ErrCorrelationTimeout, or the context's error on cancellation. When
// cancellation interrupts the poll, the returned ref is the launched window
// if one appeared by then, so the caller can close it.
func (c *Correlator) Correlate(ctx context.Context, taskID, url string, claimed map[desktop.Handle]struct{}) (desktop.WindowRef, browser.Process, error) {
	before, err := c.backend.ListWindows(ctx, c.opts.WindowClass)
	if err != nil {
		if ctx.Err() != nil {
			return desktop.WindowRef{}, browser.Process{}, ctx.Err()
		}
		return desktop.WindowRef{}, browser.Process{}, fmt.Errorf("%w: %v", ErrEnumeration, err)
	}

	proc, err := c.launcher.Launch(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return desktop.WindowRef{}, browser.Process{}, ctx.Err()
		}
		return desktop.WindowRef{}, browser.Process{}, ErrSpawnFailure(taskID, err)
	}
	started := time.Now()
	c.logger.Debug("browser launched", zap.String("task", taskID), zap.Int("pid", proc.PID), zap.String("url", url))

	pollCtx := ctx
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	every := rate.Inf
	if c.opts.PollInterval > 0 {
		every = rate.Every(c.opts.PollInterval)
	}
	limiter := rate.NewLimiter(every, 1)

	attempts := 0
	for attempts < c.opts.MaxAttempts {
		if err := limiter.Wait(pollCtx); err != nil {
			if ctx.Err() != nil {
				return c.straggler(ctx, before, claimed, proc.PID), proc, ctx.Err()
			}
			// The next poll would land past the deadline.
			break
		}
		attempts++

		after, err := c.backend.ListWindows(pollCtx, c.opts.WindowClass)
		if err != nil {
			if ctx.Err() != nil {
				return c.straggler(ctx, before, claimed, proc.PID), proc, ctx.Err()
			}
			if pollCtx.Err() != nil {
				break
			}
			return desktop.WindowRef{}, proc, fmt.Errorf("%w: %v", ErrEnumeration, err)
		}

		if w, ok := pick(desktop.Diff(before, after), claimed, proc.PID); ok {
			waited := time.Since(started)
			c.metrics.Correlated(waited)
			c.logger.Debug("window correlated",
				zap.String("task", taskID),
				zap.Stringer("window", w.Handle),
				zap.Int("window_pid", w.PID),
				zap.Int("polls", attempts),
			)
			return w, proc, nil
		}
	}

	return desktop.WindowRef{}, proc, ErrCorrelationTimeout(taskID, attempts, time.Since(started))
}

// straggler lists the windows once more after ctx is done and picks the
// launched window if it has appeared. It returns the zero ref otherwise.
func (c *Correlator) straggler(ctx context.Context, before []desktop.WindowRef, claimed map[desktop.Handle]struct{}, pid int) desktop.WindowRef {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stragglerTimeout)
	defer cancel()

	after, err := c.backend.ListWindows(ctx, c.opts.WindowClass)
	if err != nil {
		return desktop.WindowRef{}
	}
	w, _ := pick(desktop.Diff(before, after), claimed, pid)
	return w
}

func pick(added []desktop.WindowRef, claimed map[desktop.Handle]struct{}, pid int) (desktop.WindowRef, bool) {
	var first *desktop.WindowRef
	for i := range added {
		w := &added[i]
		if _, taken := claimed[w.Handle]; taken {
			continue
		}
		if pid > 0 && w.PID == pid {
			return *w, true
		}
		if first == nil {
			first = w
		}
	}
	if first == nil {
		return desktop.WindowRef{}, false
	}
	return *first, true
}
