// Package tile defines tile values, tile descriptors and the tile palette.
package tile

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Tile errors.
var (
	ErrParamKind   = errors.New("tile parameter kind mismatch")
	ErrNoParam     = errors.New("tile parameter not found")
	ErrPaletteFull = errors.New("tile palette is full")
)

// Type is the value stored in a tile grid cell. When a Palette is in use the
// value is the palette index of the tile's descriptor.
type Type int16

// Empty is the reserved sentinel for a cell holding no tile.
const Empty Type = -1

// IsEmpty reports whether t is the Empty sentinel.
func (t Type) IsEmpty() bool { return t == Empty }

// Tile is a full tile descriptor: a category name plus opaque parameters.
type Tile struct {
	Name   string
	Params map[string]Param
}

// New creates a tile descriptor with no parameters.
func New(name string) Tile {
	return Tile{Name: name}
}

// NumParams returns the number of parameters.
func (t Tile) NumParams() int { return len(t.Params) }

// HasParam reports whether the parameter exists.
func (t Tile) HasParam(id string) bool {
	_, ok := t.Params[id]
	return ok
}

// Param returns the named parameter.
func (t Tile) Param(id string) (Param, bool) {
	p, ok := t.Params[id]
	return p, ok
}

// MustParam returns the named parameter, panicking if it does not exist.
func (t Tile) MustParam(id string) Param {
	p, ok := t.Params[id]
	if !ok {
		panic(fmt.Errorf("%w: %q on %q", ErrNoParam, id, t.Name))
	}
	return p
}

// AddParam inserts or replaces a parameter.
func (t *Tile) AddParam(id string, p Param) {
	if t.Params == nil {
		t.Params = make(map[string]Param)
	}
	t.Params[id] = p
}

// SetParam replaces an existing parameter. Panics if the parameter was never added.
func (t *Tile) SetParam(id string, p Param) {
	if !t.HasParam(id) {
		panic(fmt.Errorf("%w: %q on %q", ErrNoParam, id, t.Name))
	}
	t.Params[id] = p
}

// Clone returns a deep copy of the descriptor.
func (t Tile) Clone() Tile {
	c := Tile{Name: t.Name}
	if len(t.Params) > 0 {
		c.Params = make(map[string]Param, len(t.Params))
		for k, v := range t.Params {
			c.Params[k] = v
		}
	}
	return c
}

// Equal reports whether both descriptors share a name and an identical
// parameter set.
func (t Tile) Equal(other Tile) bool {
	if t.Name != other.Name || len(t.Params) != len(other.Params) {
		return false
	}
	for id, p := range t.Params {
		op, ok := other.Params[id]
		if !ok || !p.Equal(op) {
			return false
		}
	}
	return true
}

// String formats the descriptor as Name{a=1, b="x"} with sorted keys.
func (t Tile) String() string {
	if len(t.Params) == 0 {
		return t.Name
	}
	keys := make([]string, 0, len(t.Params))
	for k := range t.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(t.Name)
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(t.Params[k].String())
	}
	sb.WriteByte('}')
	return sb.String()
}
