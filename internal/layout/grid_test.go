package layout

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridPlace(t *testing.T) {
	tests := []struct {
		name  string
		width int
		want  []Point
	}{
		{
			name:  "wide display keeps one row",
			width: 1920,
			want:  []Point{{0, 0}, {640, 0}, {1280, 0}, {0, 480}},
		},
		{
			name:  "narrow display wraps the third cell",
			width: 1600,
			want:  []Point{{0, 0}, {640, 0}, {0, 480}, {640, 480}},
		},
		{
			name:  "display narrower than a cell stacks vertically",
			width: 500,
			want:  []Point{{0, 0}, {0, 480}, {0, 960}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewGrid(tt.width).Cells(len(tt.want)))
		})
	}
}

func TestGridPlace_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		width := 1 + rng.Intn(8000)
		n := rng.Intn(60)
		g := NewGrid(width)

		seen := make(map[Point]bool, n)
		for _, p := range g.Cells(n) {
			require.False(t, seen[p], "width=%d n=%d: duplicate cell %v", width, n, p)
			seen[p] = true
			require.GreaterOrEqual(t, p.X, 0)
			require.Less(t, p.X, width, "width=%d n=%d", width, n)
		}
	}
}

func TestGridScreen(t *testing.T) {
	g := NewGrid(1920)
	g.Origin = Point{X: 0, Y: 27}
	assert.Equal(t, Point{X: 640, Y: 27}, g.Screen(Point{X: 640}))
}

func TestGridValidate(t *testing.T) {
	assert.NoError(t, NewGrid(1920).Validate())
	assert.Error(t, NewGrid(0).Validate())
	assert.Error(t, Grid{CellWidth: 0, CellHeight: 480, Width: 100}.Validate())
}
