package importer

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeTriangle writes a one-triangle GLB. nil indices leave the
// primitive non-indexed.
func encodeTriangle(t *testing.T, indices []uint32) *bytes.Buffer {
	t.Helper()
	return encodePrimitive(t, indices, nil)
}

func encodePrimitive(t *testing.T, indices []uint32, edit func(*gltf.Primitive)) *bytes.Buffer {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 1}, {1, 0, 1}, {0, 1, 1}})
	nrm := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 1}, {1, 1}, {0, 0}})

	primitive := &gltf.Primitive{
		Attributes: map[string]uint32{
			"POSITION":   pos,
			"NORMAL":     nrm,
			"TEXCOORD_0": uv,
		},
	}
	if indices != nil {
		idx := modeler.WriteIndices(doc, indices)
		primitive.Indices = &idx
	}
	if edit != nil {
		edit(primitive)
	}
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name:       "tri",
		Primitives: []*gltf.Primitive{primitive},
	})

	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	require.NoError(t, enc.Encode(doc))
	return &buf
}

func TestDecodeGLTF(t *testing.T) {
	for _, indices := range [][]uint32{{0, 1, 2}, nil} {
		m, err := DecodeGLTF(encodeTriangle(t, indices), "tri")
		require.NoError(t, err)

		require.Len(t, m.Vertices, 3)
		assert.Equal(t, []uint32{0, 2, 1}, m.Indices, "winding reversed")
		assert.Equal(t, mgl32.Vec3{1, 0, -1}, m.Vertices[1].Position)
		assert.Equal(t, mgl32.Vec3{0, 0, -1}, m.Vertices[1].Normal)
		assert.Equal(t, mgl32.Vec2{1, 1}, m.Vertices[1].UV)
		assert.InDelta(t, 1, m.Vertices[0].Tangent.Len(), 1e-5, "tangents generated")
	}
}

func TestDecodeGLTFWithoutTriangles(t *testing.T) {
	doc := gltf.NewDocument()
	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	require.NoError(t, enc.Encode(doc))

	_, err := DecodeGLTF(&buf, "empty")
	assert.Error(t, err)
}

func TestDecodeGLTFRejectsOutOfRangeReferences(t *testing.T) {
	var m *MeshData
	var err error
	require.NotPanics(t, func() {
		m, err = DecodeGLTF(encodeTriangle(t, []uint32{0, 1, 7}), "bad-index")
	})
	assert.Nil(t, m)
	assert.ErrorContains(t, err, "only 3 vertices")

	for _, attr := range []string{"POSITION", "NORMAL", "TEXCOORD_0"} {
		buf := encodePrimitive(t, []uint32{0, 1, 2}, func(p *gltf.Primitive) {
			p.Attributes[attr] = 99
		})
		require.NotPanics(t, func() {
			_, err = DecodeGLTF(buf, "bad-accessor")
		}, attr)
		assert.ErrorContains(t, err, attr+" accessor 99 out of range", attr)
	}
}

func TestDecodeGLTFDropsPartialTriangle(t *testing.T) {
	m, err := DecodeGLTF(encodeTriangle(t, []uint32{0, 1, 2, 0}), "tri")
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 2, 1}, m.Indices)
}
