package terrain

import (
	"github.com/Faultbox/mountainhome/pkg/grid"
)

// Heightmap caches the surface level of every column of a grid.
type Heightmap struct {
	Levels []int // [y*Width + x], -1 for an empty column
	Width  int
	Height int
}

// BuildHeightmap samples the surface of every column of g.
func BuildHeightmap(g grid.Grid) *Heightmap {
	h := &Heightmap{
		Levels: make([]int, g.Width()*g.Height()),
		Width:  g.Width(),
		Height: g.Height(),
	}
	for y := 0; y < h.Height; y++ {
		for x := 0; x < h.Width; x++ {
			h.Levels[y*h.Width+x] = g.SurfaceLevel(x, y)
		}
	}
	return h
}

// SurfaceLevel returns the cached surface with x and y clamped to the map.
func (h *Heightmap) SurfaceLevel(x, y int) int {
	x = clamp(x, 0, h.Width-1)
	y = clamp(y, 0, h.Height-1)
	return h.Levels[y*h.Width+x]
}

// VertexHeight returns the height of the lattice vertex at (x, y).
func (h *Heightmap) VertexHeight(x, y int) float32 {
	return levelToHeight(h.SurfaceLevel(x, y))
}

// ClampedSurfaceLevel queries g with x and y clamped to the grid, so lattice
// vertices one past the far edge reuse the edge column.
func ClampedSurfaceLevel(g grid.Grid, x, y int) int {
	return g.SurfaceLevel(clamp(x, 0, g.Width()-1), clamp(y, 0, g.Height()-1))
}

// levelToHeight places a vertex on top of the surface tile. An empty column
// sits at the grid floor.
func levelToHeight(level int) float32 {
	if level < 0 {
		return 0
	}
	return float32(level + 1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
