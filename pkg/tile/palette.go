package tile

import (
	"fmt"
	"math"
)

// Palette maps compact palette indices to tile descriptors and their rendering
// material. Registering an equal descriptor twice yields two indices; the
// palette never deduplicates.
type Palette struct {
	tiles     []Tile
	materials []string
}

// NewPalette creates an empty palette.
func NewPalette() *Palette {
	return &Palette{}
}

// Register adds a descriptor and returns its palette index.
// Panics once the index space is exhausted.
func (p *Palette) Register(t Tile, material string) Type {
	if len(p.tiles) > math.MaxInt16 {
		panic(fmt.Errorf("%w: %d entries", ErrPaletteFull, len(p.tiles)))
	}
	p.tiles = append(p.tiles, t.Clone())
	p.materials = append(p.materials, material)
	return Type(len(p.tiles) - 1)
}

// IndexOf returns the first registered index whose descriptor equals t.
func (p *Palette) IndexOf(t Tile) (Type, bool) {
	for i := range p.tiles {
		if p.tiles[i].Equal(t) {
			return Type(i), true
		}
	}
	return Empty, false
}

// Tile returns a copy of the descriptor registered at idx.
func (p *Palette) Tile(idx Type) (Tile, bool) {
	if !p.valid(idx) {
		return Tile{}, false
	}
	return p.tiles[idx].Clone(), true
}

// Material returns the material name registered at idx.
func (p *Palette) Material(idx Type) (string, bool) {
	if !p.valid(idx) {
		return "", false
	}
	return p.materials[idx], true
}

// Len returns the number of registered entries.
func (p *Palette) Len() int { return len(p.tiles) }

func (p *Palette) valid(idx Type) bool {
	return idx >= 0 && int(idx) < len(p.tiles)
}
