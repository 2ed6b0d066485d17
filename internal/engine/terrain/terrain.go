package terrain

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/mountainhome/internal/engine/lod"
	"github.com/Faultbox/mountainhome/internal/engine/scene"
	"github.com/Faultbox/mountainhome/pkg/grid"
	"github.com/Faultbox/mountainhome/pkg/tile"
)

// Grid backends.
const (
	BackendOctree = "octree"
	BackendMatrix = "matrix"
)

// DefaultMaterial is assigned to chunk entities and registered tiles when no
// material is configured.
const DefaultMaterial = "terrain"

// Options configures a Terrain.
type Options struct {
	Width, Height, Depth int

	// Backend selects the grid representation: BackendOctree (default) or
	// BackendMatrix.
	Backend string

	ChunkSize     int
	PolyReduction bool
	AutoUpdate    bool
	Material      string
	Simplify      lod.Options

	Logger *zap.Logger
}

// DefaultOptions returns options for an octree terrain of the given size.
func DefaultOptions(width, height, depth int) Options {
	return Options{
		Width:      width,
		Height:     height,
		Depth:      depth,
		Backend:    BackendOctree,
		ChunkSize:  DefaultChunkSize,
		AutoUpdate: true,
		Material:   DefaultMaterial,
		Simplify:   lod.DefaultOptions(),
	}
}

// Terrain is the query and mutation surface over a tile grid, its tile
// palette, and the chunked group that keeps the scene geometry in sync.
//
// Terrain is single-threaded: no method is safe for concurrent use.
type Terrain struct {
	grid    grid.Grid
	backend string
	palette *tile.Palette
	group   *ChunkedGroup

	material   string
	autoUpdate bool
	log        *zap.Logger
}

// New creates an empty terrain whose chunk entities are registered in sc.
func New(opts Options, sc *scene.Scene) (*Terrain, error) {
	opts = withDefaults(opts)
	g, err := NewGrid(opts.Backend, opts.Width, opts.Height, opts.Depth, grid.WithLogger(opts.Logger))
	if err != nil {
		return nil, err
	}
	return newTerrain(g, opts, sc)
}

// NewWithGrid creates a terrain over an existing grid. The dimension and
// backend fields of opts are ignored.
func NewWithGrid(g grid.Grid, opts Options, sc *scene.Scene) (*Terrain, error) {
	opts = withDefaults(opts)
	switch g.(type) {
	case *grid.Matrix:
		opts.Backend = BackendMatrix
	default:
		opts.Backend = BackendOctree
	}
	return newTerrain(g, opts, sc)
}

func withDefaults(opts Options) Options {
	if opts.Backend == "" {
		opts.Backend = BackendOctree
	}
	if opts.ChunkSize == 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Material == "" {
		opts.Material = DefaultMaterial
	}
	if opts.Simplify.MaxCost == 0 {
		opts.Simplify.MaxCost = lod.DefaultMaxCost
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

func newTerrain(g grid.Grid, opts Options, sc *scene.Scene) (*Terrain, error) {
	group, err := NewChunkedGroup(g, sc,
		WithChunkSize(opts.ChunkSize),
		WithMaterial(opts.Material),
		WithPolyReduction(opts.PolyReduction),
		WithSimplifyOptions(opts.Simplify),
		WithGroupLogger(opts.Logger.Named("chunks")),
	)
	if err != nil {
		return nil, err
	}
	return &Terrain{
		grid:       g,
		backend:    opts.Backend,
		palette:    tile.NewPalette(),
		group:      group,
		material:   opts.Material,
		autoUpdate: opts.AutoUpdate,
		log:        opts.Logger,
	}, nil
}

// NewGrid builds an empty grid of the named backend, reporting bad
// dimensions as an error instead of the constructors' panic.
func NewGrid(backend string, w, h, d int, opts ...grid.Option) (grid.Grid, error) {
	if w <= 0 || h <= 0 || d <= 0 || w > grid.MaxDimension || h > grid.MaxDimension || d > grid.MaxDimension {
		return nil, fmt.Errorf("%w: %dx%dx%d", grid.ErrInvalidDimensions, w, h, d)
	}
	switch backend {
	case BackendOctree:
		return grid.NewOctree(w, h, d, opts...), nil
	case BackendMatrix:
		if w*h*d > grid.MaxCells {
			return nil, fmt.Errorf("%w: %dx%dx%d exceeds dense grid capacity", grid.ErrInvalidDimensions, w, h, d)
		}
		return grid.NewMatrix(w, h, d, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// OpenGrid reads a save of the named backend from path.
func OpenGrid(path, backend string, opts ...grid.Option) (grid.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening terrain save: %w", err)
	}
	defer f.Close()

	// The placeholder dimensions are replaced by Load.
	g, err := NewGrid(backend, 1, 1, 1, opts...)
	if err != nil {
		return nil, err
	}
	if err := g.Load(f); err != nil {
		return nil, fmt.Errorf("reading terrain save: %w", err)
	}
	return g, nil
}

// Width returns the grid extent along x.
func (t *Terrain) Width() int { return t.grid.Width() }

// Height returns the grid extent along y.
func (t *Terrain) Height() int { return t.grid.Height() }

// Depth returns the grid extent along z.
func (t *Terrain) Depth() int { return t.grid.Depth() }

// Backend returns the name of the grid representation.
func (t *Terrain) Backend() string { return t.backend }

// Grid returns the underlying grid.
func (t *Terrain) Grid() grid.Grid { return t.grid }

// Palette returns the tile palette.
func (t *Terrain) Palette() *tile.Palette { return t.palette }

// Group returns the chunked group.
func (t *Terrain) Group() *ChunkedGroup { return t.group }

// IsOutOfBounds reports whether (x, y, z) lies outside the grid.
func (t *Terrain) IsOutOfBounds(x, y, z int) bool { return !t.grid.InBounds(x, y, z) }

// TileType returns the stored tile value.
func (t *Terrain) TileType(x, y, z int) tile.Type { return t.grid.Tile(x, y, z) }

// Tile returns the palette descriptor of the tile at (x, y, z). It reports
// false for empty tiles and values with no palette entry.
func (t *Terrain) Tile(x, y, z int) (tile.Tile, bool) {
	v := t.grid.Tile(x, y, z)
	if v == t.grid.Empty() {
		return tile.Tile{}, false
	}
	return t.palette.Tile(v)
}

// SetTile stores desc at (x, y, z), registering it in the palette with the
// terrain material when no equal descriptor exists yet. It returns the
// palette index written.
func (t *Terrain) SetTile(x, y, z int, desc tile.Tile) tile.Type {
	idx, ok := t.palette.IndexOf(desc)
	if !ok {
		idx = t.palette.Register(desc, t.material)
	}
	t.SetTileType(x, y, z, idx)
	return idx
}

// SetTileType stores a raw tile value. With auto-update on, an actual change
// re-meshes the affected chunks. A write the grid rejects, such as a value
// too large for a matrix cell, changes nothing.
func (t *Terrain) SetTileType(x, y, z int, v tile.Type) {
	if t.grid.Tile(x, y, z) == v {
		return
	}
	t.grid.SetTile(x, y, z, v)
	if t.grid.Tile(x, y, z) != v {
		return
	}
	if t.autoUpdate {
		t.group.Update(x, y, z)
	}
}

// IsTileEmpty reports whether (x, y, z) holds the grid's empty value.
func (t *Terrain) IsTileEmpty(x, y, z int) bool {
	return t.grid.Tile(x, y, z) == t.grid.Empty()
}

// SetTileEmpty clears (x, y, z).
func (t *Terrain) SetTileEmpty(x, y, z int) {
	t.SetTileType(x, y, z, t.grid.Empty())
}

// TileParameter returns a parameter of the tile at (x, y, z).
func (t *Terrain) TileParameter(x, y, z int, id string) (tile.Param, bool) {
	desc, ok := t.Tile(x, y, z)
	if !ok {
		return tile.Param{}, false
	}
	return desc.Param(id)
}

// SetTileParameter gives the tile at (x, y, z) a parameter. Descriptors are
// shared by every tile of the same palette index, so the change goes to a
// copy which is then stored like any other descriptor. An empty tile, or one
// without a palette entry, is left alone and ErrEmptyTile is returned.
func (t *Terrain) SetTileParameter(x, y, z int, id string, p tile.Param) error {
	desc, ok := t.Tile(x, y, z)
	if !ok {
		t.log.Warn("cannot set parameter on empty tile",
			zap.Int("x", x), zap.Int("y", y), zap.Int("z", z), zap.String("param", id))
		return fmt.Errorf("%w: (%d, %d, %d)", ErrEmptyTile, x, y, z)
	}
	next := desc.Clone()
	next.AddParam(id, p)
	t.SetTile(x, y, z, next)
	return nil
}

// SurfaceLevel returns the topmost non-empty z of the column, or -1. x and y
// are clamped to the grid.
func (t *Terrain) SurfaceLevel(x, y int) int { return ClampedSurfaceLevel(t.grid, x, y) }

// EmptyRanges returns the runs of empty tiles in column (x, y).
func (t *Terrain) EmptyRanges(x, y int) []grid.Range { return t.grid.EmptyRanges(x, y) }

// FilledRanges returns the runs of non-empty tiles in column (x, y).
func (t *Terrain) FilledRanges(x, y int) []grid.Range { return t.grid.FilledRanges(x, y) }

// Clear empties the grid and drops every chunk.
func (t *Terrain) Clear() {
	t.grid.Clear()
	t.group.Clear()
}

// SetPolyReduction toggles mesh simplification for later re-meshes.
func (t *Terrain) SetPolyReduction(enabled bool) { t.group.SetPolyReduction(enabled) }

// PolyReduction reports whether re-meshes are simplified.
func (t *Terrain) PolyReduction() bool { return t.group.PolyReduction() }

// SetAutoUpdate toggles re-meshing on every mutation. Turning it back on does
// not catch up on changes made while it was off; call Populate for that.
func (t *Terrain) SetAutoUpdate(enabled bool) { t.autoUpdate = enabled }

// AutoUpdate reports whether mutations re-mesh immediately.
func (t *Terrain) AutoUpdate() bool { return t.autoUpdate }

// Populate rebuilds every chunk from the grid.
func (t *Terrain) Populate() { t.group.UpdateAll() }

// Save writes the grid to path in its backend's save format.
func (t *Terrain) Save(path string) (err error) {
	t.log.Info("saving terrain", zap.String("path", path), zap.String("backend", t.backend))
	f, err := os.Create(path)
	if err != nil {
		t.log.Error("failed to create terrain save", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("creating terrain save: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing terrain save: %w", cerr)
		}
		if err != nil {
			t.log.Error("failed to save terrain", zap.String("path", path), zap.Error(err))
		}
	}()

	if err := t.grid.Save(f); err != nil {
		return fmt.Errorf("writing terrain save: %w", err)
	}
	t.log.Info("terrain saved", zap.String("path", path))
	return nil
}

// Load replaces the grid with the save at path. On any failure the terrain
// keeps its current grid and chunks. With auto-update on, the chunks are
// rebuilt from the loaded grid.
func (t *Terrain) Load(path string) error {
	t.log.Info("loading terrain", zap.String("path", path), zap.String("backend", t.backend))
	next, err := OpenGrid(path, t.backend, grid.WithEmpty(t.grid.Empty()), grid.WithLogger(t.log))
	if err != nil {
		t.log.Error("failed to load terrain", zap.String("path", path), zap.Error(err))
		return err
	}
	if err := t.group.SetGrid(next); err != nil {
		t.log.Error("loaded terrain cannot be chunked", zap.String("path", path), zap.Error(err))
		return err
	}
	t.grid = next
	if t.autoUpdate {
		t.Populate()
	}
	t.log.Info("terrain loaded",
		zap.String("path", path),
		zap.Int("width", next.Width()),
		zap.Int("height", next.Height()),
		zap.Int("depth", next.Depth()),
		zap.Int("chunks", t.group.ChunkCount()))
	return nil
}

// IsSaveMissing reports whether err from Load means the save file does not
// exist.
func IsSaveMissing(err error) bool { return errors.Is(err, os.ErrNotExist) }
