// Package importer reads mesh files into left-handed core.Vertex arrays
// ready for core.NewMesh.
package importer

import (
	"path/filepath"
	"strings"

	"github.com/gekko3d/starter/rt/core"
	"github.com/pkg/errors"
)

type MeshData struct {
	Name     string
	Vertices []core.Vertex
	Indices  []uint32
}

// Load picks the reader by file extension: .obj, .gltf or .glb.
func Load(path string) (*MeshData, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return LoadOBJ(path)
	case ".gltf", ".glb":
		return LoadGLTF(path)
	}
	return nil, errors.Errorf("importer: %s: unsupported mesh format", path)
}

func (m *MeshData) append(vertices []core.Vertex, indices []uint32) {
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, vertices...)
	for _, i := range indices {
		m.Indices = append(m.Indices, base+i)
	}
}
