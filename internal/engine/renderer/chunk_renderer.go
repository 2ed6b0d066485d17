package renderer

import (
	"fmt"
	"sort"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/mountainhome/internal/engine/mesh"
	"github.com/Faultbox/mountainhome/internal/engine/scene"
	"github.com/Faultbox/mountainhome/internal/engine/shader"
)

var _ scene.Uploader = (*ChunkRenderer)(nil)

// floatsPerVertex is position (3) + normal (3) + texcoord (2).
const floatsPerVertex = 8

const vertexStride = floatsPerVertex * 4

// gpuMesh is one uploaded entity mesh.
type gpuMesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

// ChunkRenderer keeps one vertex array per scene entity. It implements
// scene.Uploader, so a scene configured with it mirrors every mesh change to
// the GPU.
type ChunkRenderer struct {
	program *shader.Program
	meshes  map[string]*gpuMesh
	log     *zap.Logger

	BaseColor mgl32.Vec3
	MaxHeight float32
}

// NewChunkRenderer compiles the chunk shaders. A GL context must be current.
func NewChunkRenderer(log *zap.Logger) (*ChunkRenderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	program, err := shader.Compile(chunkVertexShader, chunkFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("chunk shader: %w", err)
	}
	if err := program.Require("uViewProj", "uLightDir"); err != nil {
		program.Delete()
		return nil, fmt.Errorf("chunk shader: %w", err)
	}
	log.Debug("chunk shader compiled", zap.Uint32("program", program.ID()))

	return &ChunkRenderer{
		program:   program,
		meshes:    make(map[string]*gpuMesh),
		log:       log,
		BaseColor: mgl32.Vec3{0.55, 0.5, 0.42},
		MaxHeight: 1,
	}, nil
}

// interleave packs the mesh attributes into one vertex buffer. Missing
// normals or texcoords are written as zeros.
func interleave(m *mesh.Mesh) []float32 {
	out := make([]float32, 0, len(m.Positions)*floatsPerVertex)
	for i, p := range m.Positions {
		var n mgl32.Vec3
		if i < len(m.Normals) {
			n = m.Normals[i]
		}
		var uv mgl32.Vec2
		if i < len(m.TexCoords) {
			uv = m.TexCoords[i]
		}
		out = append(out, p[0], p[1], p[2], n[0], n[1], n[2], uv[0], uv[1])
	}
	return out
}

// Upload replaces the GPU copy of the named mesh. An empty mesh releases it.
func (cr *ChunkRenderer) Upload(name string, m *mesh.Mesh) error {
	if m == nil || m.Empty() {
		cr.Release(name)
		return nil
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}

	g, ok := cr.meshes[name]
	if !ok {
		g = &gpuMesh{}
		gl.GenVertexArrays(1, &g.vao)
		gl.GenBuffers(1, &g.vbo)
		gl.GenBuffers(1, &g.ebo)

		gl.BindVertexArray(g.vao)
		gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, vertexStride, 0)
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, vertexStride, 3*4)
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, vertexStride, 6*4)
		gl.EnableVertexAttribArray(2)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
		cr.meshes[name] = g
	} else {
		gl.BindVertexArray(g.vao)
	}

	vertices := interleave(m)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.DYNAMIC_DRAW)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.DYNAMIC_DRAW)
	g.indexCount = int32(len(m.Indices))

	gl.BindVertexArray(0)
	return nil
}

// Release frees the GPU copy of the named mesh, if any.
func (cr *ChunkRenderer) Release(name string) {
	g, ok := cr.meshes[name]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &g.vao)
	gl.DeleteBuffers(1, &g.vbo)
	gl.DeleteBuffers(1, &g.ebo)
	delete(cr.meshes, name)
}

// Len returns the number of uploaded meshes.
func (cr *ChunkRenderer) Len() int { return len(cr.meshes) }

// Render draws every uploaded mesh. lightDir points from the light toward
// the terrain.
func (cr *ChunkRenderer) Render(viewProj mgl32.Mat4, lightDir mgl32.Vec3) {
	if len(cr.meshes) == 0 {
		return
	}
	cr.program.Use()
	gl.UniformMatrix4fv(cr.program.Uniform("uViewProj"), 1, false, &viewProj[0])
	gl.Uniform3f(cr.program.Uniform("uLightDir"), lightDir[0], lightDir[1], lightDir[2])
	gl.Uniform3f(cr.program.Uniform("uBaseColor"), cr.BaseColor[0], cr.BaseColor[1], cr.BaseColor[2])
	gl.Uniform1f(cr.program.Uniform("uMaxHeight"), cr.MaxHeight)

	names := make([]string, 0, len(cr.meshes))
	for name := range cr.meshes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		g := cr.meshes[name]
		gl.BindVertexArray(g.vao)
		gl.DrawElements(gl.TRIANGLES, g.indexCount, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)
}

// Close releases every mesh and the shader program.
func (cr *ChunkRenderer) Close() {
	for name := range cr.meshes {
		cr.Release(name)
	}
	cr.program.Delete()
	cr.log.Debug("chunk renderer closed")
}
