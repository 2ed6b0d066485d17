package terrain

import (
	"go.uber.org/zap"

	"github.com/Faultbox/mountainhome/internal/engine/lod"
	"github.com/Faultbox/mountainhome/internal/engine/mesh"
	"github.com/Faultbox/mountainhome/pkg/grid"
)

// ChunkModel builds the surface geometry of one cubic chunk. A column of the
// chunk's footprint contributes two triangles when its surface tile lies in
// the chunk's z range; vertex heights may come from one column beyond the
// footprint on the +x and +y sides.
type ChunkModel struct {
	grid  grid.Grid
	coord ChunkCoord
	size  int

	mesh     *mesh.Mesh
	rebuilds int

	simplify lod.Options
	log      *zap.Logger
}

// NewChunkModel creates a model for the chunk at coord. It holds no geometry
// until the first Update.
func NewChunkModel(g grid.Grid, coord ChunkCoord, size int, simplify lod.Options, log *zap.Logger) *ChunkModel {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChunkModel{
		grid:     g,
		coord:    coord,
		size:     size,
		mesh:     &mesh.Mesh{},
		simplify: simplify,
		log:      log,
	}
}

// Coord returns the chunk coordinate.
func (c *ChunkModel) Coord() ChunkCoord { return c.coord }

// Name returns the scene entity name of the chunk.
func (c *ChunkModel) Name() string { return c.coord.Name() }

// Mesh returns the geometry built by the last Update.
func (c *ChunkModel) Mesh() *mesh.Mesh { return c.mesh }

// Rebuilds returns how many times Update has run.
func (c *ChunkModel) Rebuilds() int { return c.rebuilds }

// Origin returns the tile position of the chunk's minimum corner.
func (c *ChunkModel) Origin() (x, y, z int) {
	return c.coord.X * c.size, c.coord.Y * c.size, c.coord.Z * c.size
}

// Update rebuilds the chunk geometry from the grid, optionally simplifying
// it, and returns the number of triangles produced. Zero means the chunk has
// nothing to draw.
func (c *ChunkModel) Update(doPolyReduction bool) int {
	c.rebuilds++
	x0, y0, z0 := c.Origin()
	zMax := z0 + c.size
	w, h := c.grid.Width(), c.grid.Height()

	m := patch{
		x0:    x0,
		y0:    y0,
		cols:  c.size,
		rows:  c.size,
		level: func(x, y int) int { return ClampedSurfaceLevel(c.grid, x, y) },
		include: func(x, y, level int) bool {
			return x < w && y < h && level >= z0 && level < zMax
		},
	}.build()

	if doPolyReduction && !m.Empty() {
		before := m.TriangleCount()
		opts := c.simplify
		if opts.Logger == nil {
			opts.Logger = c.log
		}
		reduce(m, opts, c.log)
		c.log.Debug("chunk reduced",
			zap.Stringer("chunk", c.coord),
			zap.Int("before", before),
			zap.Int("after", m.TriangleCount()))
	}
	m.RecomputeNormals()

	c.mesh = m
	return m.TriangleCount()
}
