// Package layout tiles fixed-size windows across the usable display width.
package layout

import "fmt"

const (
	CellWidth  = 640
	CellHeight = 480
)

// Point is a top-left screen position.
type Point struct {
	X int
	Y int
}

// Grid tiles cells left to right, wrapping to a new row when the next cell
// would cross Width.
type Grid struct {
	CellWidth  int
	CellHeight int
	// Width is the usable display width.
	Width int
	// Origin offsets every cell, e.g. by the work area's top-left corner.
	Origin Point
}

// NewGrid returns a grid with the standard cell size.
func NewGrid(width int) Grid {
	return Grid{CellWidth: CellWidth, CellHeight: CellHeight, Width: width}
}

// Validate reports grids that cannot place anything.
func (g Grid) Validate() error {
	if g.CellWidth <= 0 || g.CellHeight <= 0 {
		return fmt.Errorf("grid cell must be positive, got %dx%d", g.CellWidth, g.CellHeight)
	}
	if g.Width <= 0 {
		return fmt.Errorf("grid width must be positive, got %d", g.Width)
	}
	return nil
}

// Place returns the position for a window at cursor and the cursor for the
// next window. Cursors start at the zero Point.
func (g Grid) Place(cursor Point) (pos Point, next Point) {
	pos = cursor
	next = Point{X: cursor.X + g.CellWidth, Y: cursor.Y}
	if next.X+g.CellWidth > g.Width {
		next = Point{X: 0, Y: cursor.Y + g.CellHeight}
	}
	return pos, next
}

// Screen translates a grid position into screen coordinates.
func (g Grid) Screen(p Point) Point {
	return Point{X: g.Origin.X + p.X, Y: g.Origin.Y + p.Y}
}

// Cells returns the first n positions in placement order.
func (g Grid) Cells(n int) []Point {
	cells := make([]Point, 0, n)
	var cursor Point
	for i := 0; i < n; i++ {
		var pos Point
		pos, cursor = g.Place(cursor)
		cells = append(cells, pos)
	}
	return cells
}
