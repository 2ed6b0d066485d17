// Package scene keeps the named renderable entities that terrain chunks hand
// their meshes to, and forwards mesh changes to an optional GPU uploader.
package scene

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/mountainhome/internal/engine/mesh"
)

// Registry errors.
var (
	ErrEntityExists = errors.New("entity already exists")
	ErrNoEntity     = errors.New("no such entity")
)

// Uploader receives entity meshes for drawing. Upload may be called more than
// once per name; each call replaces the previous geometry.
type Uploader interface {
	Upload(name string, m *mesh.Mesh) error
	Release(name string)
}

// Entity is a named renderable with a material and at most one mesh.
type Entity struct {
	Name     string
	Material string
	Mesh     *mesh.Mesh
	Bounds   mesh.Bounds

	// Revision counts successful SetMesh calls.
	Revision int
}

// Stats summarizes the scene contents.
type Stats struct {
	Entities  int
	Vertices  int
	Triangles int
}

// Scene is an in-memory entity registry. It is not safe for concurrent use.
type Scene struct {
	entities map[string]*Entity
	uploader Uploader
	log      *zap.Logger
}

// Option configures a Scene.
type Option func(*Scene)

// WithUploader forwards mesh changes to u.
func WithUploader(u Uploader) Option {
	return func(s *Scene) { s.uploader = u }
}

// WithLogger sets the scene logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scene) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates an empty scene.
func New(opts ...Option) *Scene {
	s := &Scene{
		entities: make(map[string]*Entity),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddEntity registers a new entity without geometry.
func (s *Scene) AddEntity(name, material string) (*Entity, error) {
	if _, ok := s.entities[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrEntityExists, name)
	}
	e := &Entity{Name: name, Material: material}
	s.entities[name] = e
	s.log.Debug("entity added", zap.String("name", name), zap.String("material", material))
	return e, nil
}

// SetMesh validates m and assigns it to the entity. When an uploader is set
// and rejects the mesh, the entity keeps its previous mesh.
func (s *Scene) SetMesh(name string, m *mesh.Mesh) error {
	e, ok := s.entities[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoEntity, name)
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("entity %s: %w", name, err)
	}
	if s.uploader != nil {
		if err := s.uploader.Upload(name, m); err != nil {
			return fmt.Errorf("uploading entity %s: %w", name, err)
		}
	}
	e.Mesh = m
	e.Bounds = m.Bounds()
	e.Revision++
	return nil
}

// RemoveEntity drops the entity and releases its uploaded geometry.
func (s *Scene) RemoveEntity(name string) error {
	if _, ok := s.entities[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNoEntity, name)
	}
	delete(s.entities, name)
	if s.uploader != nil {
		s.uploader.Release(name)
	}
	s.log.Debug("entity removed", zap.String("name", name))
	return nil
}

// HasEntity reports whether an entity with the name exists.
func (s *Scene) HasEntity(name string) bool {
	_, ok := s.entities[name]
	return ok
}

// Entity returns the named entity.
func (s *Scene) Entity(name string) (*Entity, bool) {
	e, ok := s.entities[name]
	return e, ok
}

// Entities returns all entities ordered by name.
func (s *Scene) Entities() []*Entity {
	out := make([]*Entity, 0, len(s.entities))
	for _, e := range s.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of entities.
func (s *Scene) Len() int { return len(s.entities) }

// Clear removes every entity.
func (s *Scene) Clear() {
	for name := range s.entities {
		if s.uploader != nil {
			s.uploader.Release(name)
		}
	}
	s.entities = make(map[string]*Entity)
}

// Stats counts entities and the geometry they reference.
func (s *Scene) Stats() Stats {
	st := Stats{Entities: len(s.entities)}
	for _, e := range s.entities {
		if e.Mesh != nil {
			st.Vertices += e.Mesh.VertexCount()
			st.Triangles += e.Mesh.TriangleCount()
		}
	}
	return st
}

// Bounds returns the union of the bounds of every entity with a mesh. The
// second result is false when no entity has geometry.
func (s *Scene) Bounds() (mesh.Bounds, bool) {
	var b mesh.Bounds
	found := false
	for _, e := range s.entities {
		if e.Mesh == nil || e.Mesh.Empty() {
			continue
		}
		if !found {
			b = e.Bounds
			found = true
			continue
		}
		for a := 0; a < 3; a++ {
			if e.Bounds.Min[a] < b.Min[a] {
				b.Min[a] = e.Bounds.Min[a]
			}
			if e.Bounds.Max[a] > b.Max[a] {
				b.Max[a] = e.Bounds.Max[a]
			}
		}
	}
	return b, found
}
