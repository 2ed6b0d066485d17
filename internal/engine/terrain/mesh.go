package terrain

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/mountainhome/internal/engine/lod"
	"github.com/Faultbox/mountainhome/internal/engine/mesh"
	"github.com/Faultbox/mountainhome/pkg/grid"
)

// patch is a rectangular piece of the surface lattice. Vertex (x, y) takes its
// height from column (x, y); columns past the grid edge are clamped by level.
type patch struct {
	x0, y0     int
	cols, rows int

	// level returns the surface level used for the vertex at (x, y).
	level func(x, y int) int
	// include reports whether column (x, y) with the given surface level
	// emits its two triangles.
	include func(x, y, level int) bool
}

// build triangulates the patch. Each included column emits a south-west
// triangle (x,y)(x+1,y)(x,y+1) and a north-east triangle
// (x,y+1)(x+1,y)(x+1,y+1), both wound counter-clockwise seen from +Z.
func (p patch) build() *mesh.Mesh {
	stride := p.cols + 1
	count := stride * (p.rows + 1)
	levels := make([]int, count)
	m := &mesh.Mesh{
		Positions: make([]mgl32.Vec3, 0, count),
		TexCoords: make([]mgl32.Vec2, 0, count),
	}

	for j := 0; j <= p.rows; j++ {
		for i := 0; i <= p.cols; i++ {
			x, y := p.x0+i, p.y0+j
			lvl := p.level(x, y)
			levels[j*stride+i] = lvl
			m.Positions = append(m.Positions, mgl32.Vec3{float32(x), float32(y), levelToHeight(lvl)})
			m.TexCoords = append(m.TexCoords, mgl32.Vec2{float32(x), float32(y)})
		}
	}

	for j := 0; j < p.rows; j++ {
		for i := 0; i < p.cols; i++ {
			if !p.include(p.x0+i, p.y0+j, levels[j*stride+i]) {
				continue
			}
			sw := uint32(j*stride + i)
			se := sw + 1
			nw := sw + uint32(stride)
			ne := nw + 1
			m.Indices = append(m.Indices, sw, se, nw, nw, se, ne)
		}
	}
	return m
}

// reduce replaces the indices of m with a simplified set. On failure m keeps
// its unreduced indices.
func reduce(m *mesh.Mesh, opts lod.Options, log *zap.Logger) {
	res, err := lod.Simplify(m.Positions, m.Indices, opts)
	if err != nil {
		log.Error("mesh simplification failed", zap.Error(err))
		return
	}
	m.Indices = res.Indices
}

// SurfaceOptions controls BuildSurfaceMesh.
type SurfaceOptions struct {
	Reduce   bool
	Simplify lod.Options
	Logger   *zap.Logger
}

// BuildSurfaceMesh builds one heightfield mesh covering every column of g.
// Simplification cost grows quadratically with the mesh, so Reduce is only
// practical for small grids.
func BuildSurfaceMesh(g grid.Grid, opts SurfaceOptions) *mesh.Mesh {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	hm := BuildHeightmap(g)
	m := patch{
		cols:    g.Width(),
		rows:    g.Height(),
		level:   hm.SurfaceLevel,
		include: func(x, y, level int) bool { return true },
	}.build()

	if opts.Reduce {
		if opts.Simplify.Logger == nil {
			opts.Simplify.Logger = opts.Logger
		}
		reduce(m, opts.Simplify, opts.Logger)
	}
	m.RecomputeNormals()
	opts.Logger.Debug("surface mesh built",
		zap.Int("vertices", m.VertexCount()),
		zap.Int("triangles", m.TriangleCount()))
	return m
}
