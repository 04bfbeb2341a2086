package importer

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/gekko3d/starter/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// LoadGLTF merges every triangle primitive of every mesh in the document
// into one MeshData. Node transforms are ignored.
func LoadGLTF(path string) (*MeshData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "importer: open %s", path)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return meshFromDocument(doc, name)
}

// DecodeGLTF reads a self-contained (embedded buffers or .glb) document.
func DecodeGLTF(r io.Reader, name string) (*MeshData, error) {
	doc := &gltf.Document{}
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, errors.Wrapf(err, "importer: decode %s", name)
	}
	return meshFromDocument(doc, name)
}

func meshFromDocument(doc *gltf.Document, name string) (*MeshData, error) {
	mesh := &MeshData{Name: name}
	needTangents := false

	for _, m := range doc.Meshes {
		for pi, primitive := range m.Primitives {
			if primitive.Mode != gltf.PrimitiveTriangles {
				continue
			}
			vertices, indices, hasTangents, err := readPrimitive(doc, primitive)
			if err != nil {
				return nil, errors.Wrapf(err, "importer: %s mesh %q primitive %d", name, m.Name, pi)
			}
			needTangents = needTangents || !hasTangents
			mesh.append(vertices, indices)
		}
	}
	if len(mesh.Indices) == 0 {
		return nil, errors.Errorf("importer: %s: no triangle primitives", name)
	}
	if needTangents {
		CalculateTangents(mesh.Vertices, mesh.Indices)
	}
	return mesh, nil
}

// readPrimitive converts one primitive to the left-handed frame: Z is
// negated and the winding reversed. glTF UVs already start top-left.
func readPrimitive(doc *gltf.Document, primitive *gltf.Primitive) ([]core.Vertex, []uint32, bool, error) {
	posIdx, ok := primitive.Attributes["POSITION"]
	if !ok {
		return nil, nil, false, errors.New("no POSITION attribute")
	}
	acc, err := accessor(doc, posIdx, "POSITION")
	if err != nil {
		return nil, nil, false, err
	}
	positions, err := modeler.ReadPosition(doc, acc, nil)
	if err != nil {
		return nil, nil, false, errors.Wrap(err, "read positions")
	}

	vertices := make([]core.Vertex, len(positions))
	for i, p := range positions {
		vertices[i].Position = mgl32.Vec3{p[0], p[1], -p[2]}
	}

	if idx, ok := primitive.Attributes["NORMAL"]; ok {
		acc, err := accessor(doc, idx, "NORMAL")
		if err != nil {
			return nil, nil, false, err
		}
		normals, err := modeler.ReadNormal(doc, acc, nil)
		if err != nil {
			return nil, nil, false, errors.Wrap(err, "read normals")
		}
		for i := range vertices {
			if i < len(normals) {
				n := normals[i]
				vertices[i].Normal = mgl32.Vec3{n[0], n[1], -n[2]}
			}
		}
	}

	if idx, ok := primitive.Attributes["TEXCOORD_0"]; ok {
		acc, err := accessor(doc, idx, "TEXCOORD_0")
		if err != nil {
			return nil, nil, false, err
		}
		uvs, err := modeler.ReadTextureCoord(doc, acc, nil)
		if err != nil {
			return nil, nil, false, errors.Wrap(err, "read uvs")
		}
		for i := range vertices {
			if i < len(uvs) {
				vertices[i].UV = mgl32.Vec2{uvs[i][0], uvs[i][1]}
			}
		}
	}

	hasTangents := false
	if idx, ok := primitive.Attributes["TANGENT"]; ok {
		acc, err := accessor(doc, idx, "TANGENT")
		if err != nil {
			return nil, nil, false, err
		}
		tangents, err := modeler.ReadTangent(doc, acc, nil)
		if err != nil {
			return nil, nil, false, errors.Wrap(err, "read tangents")
		}
		for i := range vertices {
			if i < len(tangents) {
				t := tangents[i]
				vertices[i].Tangent = mgl32.Vec3{t[0], t[1], -t[2]}
			}
		}
		hasTangents = len(tangents) == len(vertices)
	}

	var indices []uint32
	if primitive.Indices != nil {
		acc, err := accessor(doc, *primitive.Indices, "indices")
		if err != nil {
			return nil, nil, false, err
		}
		indices, err = modeler.ReadIndices(doc, acc, nil)
		if err != nil {
			return nil, nil, false, errors.Wrap(err, "read indices")
		}
		for i, v := range indices {
			if int(v) >= len(vertices) {
				return nil, nil, false, errors.Errorf("index %d is %d, only %d vertices", i, v, len(vertices))
			}
		}
	} else {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	// a trailing partial triangle is dropped
	indices = indices[:len(indices)-len(indices)%3]
	for i := 0; i+2 < len(indices); i += 3 {
		indices[i+1], indices[i+2] = indices[i+2], indices[i+1]
	}
	return vertices, indices, hasTangents, nil
}

func accessor(doc *gltf.Document, idx uint32, what string) (*gltf.Accessor, error) {
	if int(idx) >= len(doc.Accessors) || doc.Accessors[idx] == nil {
		return nil, errors.Errorf("%s accessor %d out of range (%d accessors)", what, idx, len(doc.Accessors))
	}
	return doc.Accessors[idx], nil
}
