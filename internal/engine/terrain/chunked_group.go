package terrain

import (
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/mountainhome/internal/engine/lod"
	"github.com/Faultbox/mountainhome/internal/engine/scene"
	"github.com/Faultbox/mountainhome/pkg/grid"
)

// GroupOption configures a ChunkedGroup.
type GroupOption func(*ChunkedGroup)

// WithChunkSize sets the chunk edge length (default DefaultChunkSize).
func WithChunkSize(size int) GroupOption {
	return func(g *ChunkedGroup) { g.size = size }
}

// WithMaterial sets the material assigned to chunk entities.
func WithMaterial(material string) GroupOption {
	return func(g *ChunkedGroup) { g.material = material }
}

// WithPolyReduction enables mesh simplification on every re-mesh.
func WithPolyReduction(enabled bool) GroupOption {
	return func(g *ChunkedGroup) { g.reduce = enabled }
}

// WithSimplifyOptions sets the options passed to the mesh simplifier.
func WithSimplifyOptions(opts lod.Options) GroupOption {
	return func(g *ChunkedGroup) { g.simplify = opts }
}

// WithGroupLogger sets the group logger.
func WithGroupLogger(l *zap.Logger) GroupOption {
	return func(g *ChunkedGroup) {
		if l != nil {
			g.log = l
		}
	}
}

// ChunkedGroup partitions a grid into cubic chunks, creating chunk models
// lazily and re-meshing only the chunks a tile change can affect. Each live
// chunk owns one scene entity named after its coordinate.
//
// Update assumes it is called only for positions whose tile actually
// changed. It is not safe for concurrent use.
type ChunkedGroup struct {
	grid     grid.Grid
	scene    *scene.Scene
	size     int
	material string
	reduce   bool
	simplify lod.Options
	log      *zap.Logger

	chunks map[uint32]*ChunkModel
}

// NewChunkedGroup creates an empty group over g whose chunk entities live in
// sc. It fails when the chunk size is invalid or the grid needs more chunks
// than an index can address.
func NewChunkedGroup(g grid.Grid, sc *scene.Scene, opts ...GroupOption) (*ChunkedGroup, error) {
	cg := &ChunkedGroup{
		grid:     g,
		scene:    sc,
		size:     DefaultChunkSize,
		simplify: lod.DefaultOptions(),
		log:      zap.NewNop(),
		chunks:   make(map[uint32]*ChunkModel),
	}
	for _, opt := range opts {
		opt(cg)
	}
	if err := checkChunkGrid(g, cg.size); err != nil {
		return nil, err
	}
	return cg, nil
}

// ChunkSize returns the chunk edge length.
func (cg *ChunkedGroup) ChunkSize() int { return cg.size }

// SetPolyReduction toggles mesh simplification for later re-meshes.
func (cg *ChunkedGroup) SetPolyReduction(enabled bool) { cg.reduce = enabled }

// PolyReduction reports whether re-meshes are simplified.
func (cg *ChunkedGroup) PolyReduction() bool { return cg.reduce }

// SetGrid points the group at a replacement grid after dropping every chunk.
func (cg *ChunkedGroup) SetGrid(g grid.Grid) error {
	if err := checkChunkGrid(g, cg.size); err != nil {
		return err
	}
	cg.Clear()
	cg.grid = g
	return nil
}

// Update re-meshes the chunks affected by a change at (x, y, z): the owning
// chunk (created if needed), the chunks across any chunk face the position
// touches, and every live chunk of the chunk columns whose surface lattice
// reads this tile column. Each chunk is re-meshed at most once per call.
func (cg *ChunkedGroup) Update(x, y, z int) {
	if !cg.grid.InBounds(x, y, z) {
		cg.log.Warn("chunk update outside grid, ignoring",
			zap.Int("x", x), zap.Int("y", y), zap.Int("z", z))
		return
	}
	done := make(map[uint32]bool)
	s := cg.size

	// Create first; a chunk dropped below for lacking geometry stays dropped.
	cg.createIfNeeded(x, y, z)
	if level := cg.grid.SurfaceLevel(x, y); level >= 0 {
		cg.createIfNeeded(x, y, level)
	}
	cg.updateIfExists(x, y, z, done)

	if x%s == 0 {
		cg.updateIfExists(x-1, y, z, done)
	}
	if x%s == s-1 {
		cg.updateIfExists(x+1, y, z, done)
	}
	if y%s == 0 {
		cg.updateIfExists(x, y-1, z, done)
	}
	if y%s == s-1 {
		cg.updateIfExists(x, y+1, z, done)
	}
	if z%s == 0 {
		cg.updateIfExists(x, y, z-1, done)
	}
	if z%s == s-1 {
		cg.updateIfExists(x, y, z+1, done)
	}

	cg.followSurface(x, y, done)
}

// followSurface re-meshes the chunks that draw a tile column's top surface. A
// change deep in a column can move its surface into a different chunk, and
// the lattice of the chunk columns to the -x and -y sides samples this column
// for their far vertices.
func (cg *ChunkedGroup) followSurface(x, y int, done map[uint32]bool) {
	s := cg.size
	columns := []ChunkCoord{{X: x / s, Y: y / s}}
	if x%s == 0 && x > 0 {
		columns = append(columns, ChunkCoord{X: x/s - 1, Y: y / s})
	}
	if y%s == 0 && y > 0 {
		columns = append(columns, ChunkCoord{X: x / s, Y: y/s - 1})
	}
	if x%s == 0 && x > 0 && y%s == 0 && y > 0 {
		columns = append(columns, ChunkCoord{X: x/s - 1, Y: y/s - 1})
	}

	layers := chunksAlong(cg.grid.Depth(), s)
	for _, col := range columns {
		for cz := 0; cz < layers; cz++ {
			col.Z = cz
			cg.refresh(col, done)
		}
	}
}

// UpdateAll creates and re-meshes every chunk of the grid, dropping the ones
// without geometry.
func (cg *ChunkedGroup) UpdateAll() {
	done := make(map[uint32]bool)
	s := cg.size
	for x := 0; x < cg.grid.Width(); x += s {
		for y := 0; y < cg.grid.Height(); y += s {
			for z := 0; z < cg.grid.Depth(); z += s {
				cg.createIfNeeded(x, y, z)
				cg.updateIfExists(x, y, z, done)
			}
		}
	}
	cg.log.Debug("chunk group rebuilt", zap.Int("chunks", len(cg.chunks)))
}

// Clear drops every chunk and its scene entity.
func (cg *ChunkedGroup) Clear() {
	for idx, c := range cg.chunks {
		cg.removeChunk(idx, c)
	}
}

// HasChunk reports whether the chunk holding (x, y, z) is live.
func (cg *ChunkedGroup) HasChunk(x, y, z int) bool {
	_, ok := cg.Chunk(x, y, z)
	return ok
}

// Chunk returns the live chunk holding (x, y, z).
func (cg *ChunkedGroup) Chunk(x, y, z int) (*ChunkModel, bool) {
	if !cg.grid.InBounds(x, y, z) {
		return nil, false
	}
	c, ok := cg.chunks[ChunkAt(x, y, z, cg.size).Index()]
	return c, ok
}

// ChunkCount returns the number of live chunks.
func (cg *ChunkedGroup) ChunkCount() int { return len(cg.chunks) }

// Chunks returns the live chunks ordered by chunk index.
func (cg *ChunkedGroup) Chunks() []*ChunkModel {
	out := make([]*ChunkModel, 0, len(cg.chunks))
	for _, c := range cg.chunks {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Coord().Index() < out[j].Coord().Index() })
	return out
}

// createIfNeeded instantiates the chunk holding (x, y, z). Positions on the
// far outer faces of the grid never create chunks; those tiles exist only to
// give bordering chunks meshing context.
func (cg *ChunkedGroup) createIfNeeded(x, y, z int) {
	if x == cg.grid.Width()-1 || y == cg.grid.Height()-1 || z == cg.grid.Depth()-1 {
		return
	}
	coord := ChunkAt(x, y, z, cg.size)
	idx := coord.Index()
	if _, ok := cg.chunks[idx]; ok {
		return
	}

	c := NewChunkModel(cg.grid, coord, cg.size, cg.simplify, cg.log)
	if _, err := cg.scene.AddEntity(c.Name(), cg.material); err != nil {
		cg.log.Error("failed to create chunk entity", zap.String("chunk", c.Name()), zap.Error(err))
		return
	}
	cg.chunks[idx] = c
	cg.log.Debug("chunk created", zap.Stringer("chunk", coord))
}

// updateIfExists re-meshes the chunk holding (x, y, z) if the position is in
// the grid and the chunk is live.
func (cg *ChunkedGroup) updateIfExists(x, y, z int, done map[uint32]bool) {
	if !cg.grid.InBounds(x, y, z) {
		return
	}
	cg.refresh(ChunkAt(x, y, z, cg.size), done)
}

func (cg *ChunkedGroup) refresh(coord ChunkCoord, done map[uint32]bool) {
	idx := coord.Index()
	if done[idx] {
		return
	}
	c, ok := cg.chunks[idx]
	if !ok {
		return
	}
	done[idx] = true

	if c.Update(cg.reduce) == 0 {
		cg.removeChunk(idx, c)
		return
	}
	if err := cg.scene.SetMesh(c.Name(), c.Mesh()); err != nil {
		cg.log.Error("failed to hand chunk mesh to scene", zap.String("chunk", c.Name()), zap.Error(err))
	}
}

func (cg *ChunkedGroup) removeChunk(idx uint32, c *ChunkModel) {
	if err := cg.scene.RemoveEntity(c.Name()); err != nil {
		cg.log.Warn("chunk entity already gone", zap.String("chunk", c.Name()), zap.Error(err))
	}
	delete(cg.chunks, idx)
	cg.log.Debug("chunk destroyed", zap.Stringer("chunk", c.Coord()))
}
