package core

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyMesh    = errors.New("core: mesh has no vertices or indices")
	ErrMeshNotBuilt = errors.New("core: mesh buffers not built")
)

// Mesh owns a copy of its geometry and the two immutable GPU buffers built
// from it. There is no partial update: to change geometry, Release the mesh
// and Build again.
type Mesh struct {
	label    string
	vertices []Vertex
	indices  []uint32

	vertexBuffer Buffer
	indexBuffer  Buffer
}

// NewMesh copies vertices and indices and uploads them to device.
func NewMesh(device Device, label string, vertices []Vertex, indices []uint32) (*Mesh, error) {
	m := &Mesh{label: label}
	if err := m.Build(device, vertices, indices); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mesh) Build(device Device, vertices []Vertex, indices []uint32) error {
	if m.vertexBuffer != nil || m.indexBuffer != nil {
		return fmt.Errorf("core: mesh %q already built", m.label)
	}
	if len(vertices) == 0 || len(indices) == 0 {
		return ErrEmptyMesh
	}

	m.vertices = append([]Vertex(nil), vertices...)
	m.indices = append([]uint32(nil), indices...)

	vb, err := device.CreateImmutableBuffer(m.label+" vertices", BufferUsageVertex, vertexBytes(m.vertices))
	if err != nil {
		return fmt.Errorf("core: create vertex buffer for %q: %w", m.label, err)
	}
	ib, err := device.CreateImmutableBuffer(m.label+" indices", BufferUsageIndex, indexBytes(m.indices))
	if err != nil {
		vb.Release()
		return fmt.Errorf("core: create index buffer for %q: %w", m.label, err)
	}

	m.vertexBuffer = vb
	m.indexBuffer = ib
	return nil
}

// Draw binds the vertex and index buffers and issues one indexed draw over
// the whole index range. Shaders and render state must already be bound.
func (m *Mesh) Draw(ctx Context) error {
	if m.vertexBuffer == nil || m.indexBuffer == nil {
		return ErrMeshNotBuilt
	}
	ctx.SetVertexBuffer(m.vertexBuffer, VertexSize)
	ctx.SetIndexBuffer(m.indexBuffer)
	return ctx.DrawIndexed(uint32(len(m.indices)), 0, 0)
}

func (m *Mesh) Release() {
	if m.vertexBuffer != nil {
		m.vertexBuffer.Release()
		m.vertexBuffer = nil
	}
	if m.indexBuffer != nil {
		m.indexBuffer.Release()
		m.indexBuffer = nil
	}
}

func (m *Mesh) Label() string         { return m.label }
func (m *Mesh) VertexCount() int      { return len(m.vertices) }
func (m *Mesh) IndexCount() int       { return len(m.indices) }
func (m *Mesh) Vertices() []Vertex    { return m.vertices }
func (m *Mesh) Indices() []uint32     { return m.indices }
func (m *Mesh) VertexBuffer() Buffer  { return m.vertexBuffer }
func (m *Mesh) IndexBuffer() Buffer   { return m.indexBuffer }
