package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/connorhough/vidresume/internal/session"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	failedStyle = cellStyle.Foreground(lipgloss.Color("203"))
	mutedStyle  = cellStyle.Foreground(lipgloss.Color("245"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

// renderReport prints one row per task and a summary line.
func renderReport(w io.Writer, r *session.Report) {
	t := newTable("TASK", "STATUS", "WINDOW", "CELL", "URL / ERROR")
	for _, o := range r.Outcomes {
		window := "-"
		if o.Window.Handle != 0 {
			window = o.Window.Handle.String()
		}
		cell := "-"
		if o.Status == session.StatusResumed || o.Window.Handle != 0 {
			cell = fmt.Sprintf("%d,%d", o.Cell.X, o.Cell.Y)
		}
		detail := o.SeekURL
		if o.Err != nil {
			detail = o.Err.Error()
		}
		t.Row(o.TaskID, string(o.Status), window, cell, detail)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		switch o := r.Outcomes[row]; {
		case o.Status == session.StatusIneligible:
			return mutedStyle
		case o.Failed():
			return failedStyle
		default:
			return cellStyle
		}
	})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "session %s: %s, %d resumed, %d failed, %d skipped\n",
		r.SessionID, r.Phase, r.Count(session.StatusResumed), len(r.Failures()), r.Count(session.StatusIneligible))
	if r.MuteErr != nil {
		fmt.Fprintf(w, "audio: %v\n", r.MuteErr)
	}
}

// renderPlan prints what a restore would do.
func renderPlan(w io.Writer, plan []session.Planned, total int) {
	t := newTable("TASK", "PROGRESS", "CELL", "CLICK", "SEEK URL")
	for _, p := range plan {
		t.Row(
			p.Task.ID,
			strconv.FormatFloat(p.Task.Progress(), 'f', 0, 64)+"%",
			fmt.Sprintf("%d,%d", p.Cell.X, p.Cell.Y),
			fmt.Sprintf("%d,%d", p.Click.X, p.Click.Y),
			p.SeekURL,
		)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		return cellStyle
	})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%d of %d videos eligible\n", len(plan), total)
}

func renderWindows(w io.Writer, backend, class string, rows []windowRow) {
	t := newTable("HANDLE", "PID", "BOUNDS", "TITLE")
	for _, r := range rows {
		bounds := "-"
		if r.ok {
			bounds = r.bounds.String()
		}
		t.Row(r.ref.Handle.String(), strconv.Itoa(r.ref.PID), bounds, r.ref.Title)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		return cellStyle
	})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%d %s windows (%s)\n", len(rows), class, backend)
}
