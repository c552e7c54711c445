package session

import (
	"github.com/connorhough/vidresume/internal/desktop"
	"github.com/connorhough/vidresume/internal/layout"
	"github.com/connorhough/vidresume/internal/video"
)

// Planned is where a task's window would go if every spawn succeeded.
type Planned struct {
	Task    video.Task
	SeekURL string
	Cell    layout.Point
	Click   layout.Point
}

// Plan computes the seek URLs, cells and click targets of a session over
// area without touching the desktop.
func Plan(opts Options, tasks []video.Task, area desktop.Rect) ([]Planned, error) {
	grid := layout.Grid{
		CellWidth:  opts.CellWidth,
		CellHeight: opts.CellHeight,
		Width:      area.Width,
		Origin:     layout.Point{X: area.X, Y: area.Y},
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	var (
		plan   []Planned
		cursor layout.Point
	)
	for _, t := range video.Eligible(tasks, opts.Seek) {
		var cell layout.Point
		cell, cursor = grid.Place(cursor)
		origin := grid.Screen(cell)
		plan = append(plan, Planned{
			Task:    t,
			SeekURL: opts.Seek.SeekURL(t),
			Cell:    cell,
			Click:   layout.Point{X: origin.X + opts.ClickOffset.X, Y: origin.Y + opts.ClickOffset.Y},
		})
	}
	return plan, nil
}
