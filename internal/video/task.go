// Package video models the saved-position records that a restore session replays.
package video

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Source identifies the host a video was watched on.
type Source string

const (
	SourceYouTube Source = "youtube"
	SourceOther   Source = "other"
)

// Task is one previously watched video with its saved playback position.
type Task struct {
	ID       string  `yaml:"id" json:"id"`
	Source   Source  `yaml:"source" json:"source"`
	URL      string  `yaml:"url" json:"url"`
	Position float64 `yaml:"position" json:"position"`
	Duration float64 `yaml:"duration" json:"duration"`
}

// Progress returns the watched fraction as a percentage with two decimals.
func (t Task) Progress() float64 {
	if t.Duration <= 0 {
		return 0
	}
	return math.Round(t.Position/t.Duration*10000) / 100
}

// Validate reports malformed records.
func (t Task) Validate() error {
	if strings.TrimSpace(t.URL) == "" {
		return fmt.Errorf("task %q: url is required", t.ID)
	}
	if t.Position < 0 {
		return fmt.Errorf("task %q: position must be non-negative, got %v", t.ID, t.Position)
	}
	if t.Duration <= 0 {
		return fmt.Errorf("task %q: duration must be positive, got %v", t.ID, t.Duration)
	}
	return nil
}

// SeekOptions controls eligibility and seek URL construction.
type SeekOptions struct {
	// MinPosition is the position at or below which a task is not worth resuming.
	MinPosition time.Duration
	// EndMargin keeps the seek target out of the tail of the video.
	EndMargin time.Duration
	// Param is the query parameter carrying the seek offset in seconds.
	Param string
}

// DefaultSeekOptions returns the options used by the restore command.
func DefaultSeekOptions() SeekOptions {
	return SeekOptions{
		MinPosition: 1 * time.Second,
		EndMargin:   5 * time.Second,
		Param:       "t",
	}
}

// Eligible reports whether the task should get a browser window at all.
func (o SeekOptions) Eligible(t Task) bool {
	return t.Source == SourceYouTube && t.Position > o.MinPosition.Seconds()
}

// SeekPosition clamps the saved position so the player never lands in the last
// EndMargin seconds of the video.
func (o SeekOptions) SeekPosition(t Task) float64 {
	limit := t.Duration - o.EndMargin.Seconds()
	pos := math.Min(t.Position, limit)
	if pos < 0 {
		pos = 0
	}
	return pos
}

// SeekURL appends the clamped position to the task URL.
func (o SeekOptions) SeekURL(t Task) string {
	param := o.Param
	if param == "" {
		param = "t"
	}
	value := param + "=" + url.QueryEscape(formatSeconds(o.SeekPosition(t)))

	sep := "?"
	if strings.Contains(t.URL, "?") {
		sep = "&"
	}
	return t.URL + sep + value
}

// Eligible filters tasks, keeping input order.
func Eligible(tasks []Task, opts SeekOptions) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if opts.Eligible(t) {
			out = append(out, t)
		}
	}
	return out
}

// formatSeconds renders whole seconds; players ignore fractional offsets.
func formatSeconds(s float64) string {
	return strconv.FormatInt(int64(math.Floor(s)), 10)
}
