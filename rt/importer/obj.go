package importer

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gekko3d/starter/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

func LoadOBJ(path string) (*MeshData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "importer: open %s", path)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ParseOBJ(f, name)
}

type objCorner struct {
	v, vt, vn int
}

// ParseOBJ reads v, vt, vn and f records. Polygons are fanned into
// triangles and identical v/vt/vn corners share one vertex.
//
// OBJ files are right-handed with V pointing up, so Z is negated, V is
// flipped and every triangle's winding is reversed. Tangents are generated
// afterwards.
func ParseOBJ(r io.Reader, name string) (*MeshData, error) {
	var (
		positions []mgl32.Vec3
		uvs       []mgl32.Vec2
		normals   []mgl32.Vec3
	)
	mesh := &MeshData{Name: name}
	seen := make(map[objCorner]uint32)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, errors.Wrapf(err, "importer: %s:%d", name, line)
			}
			positions = append(positions, mgl32.Vec3{v[0], v[1], -v[2]})
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, errors.Wrapf(err, "importer: %s:%d", name, line)
			}
			uvs = append(uvs, mgl32.Vec2{v[0], 1 - v[1]})
		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, errors.Wrapf(err, "importer: %s:%d", name, line)
			}
			normals = append(normals, mgl32.Vec3{v[0], v[1], -v[2]})
		case "f":
			if len(fields) < 4 {
				return nil, errors.Errorf("importer: %s:%d: face needs at least 3 corners", name, line)
			}
			face := make([]uint32, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				c, err := parseCorner(tok, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, errors.Wrapf(err, "importer: %s:%d", name, line)
				}
				idx, ok := seen[c]
				if !ok {
					idx = uint32(len(mesh.Vertices))
					mesh.Vertices = append(mesh.Vertices, objVertex(c, positions, uvs, normals))
					seen[c] = idx
				}
				face = append(face, idx)
			}
			for i := 1; i+1 < len(face); i++ {
				// reversed winding for the left-handed frame
				mesh.Indices = append(mesh.Indices, face[0], face[i+1], face[i])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "importer: read %s", name)
	}
	if len(mesh.Indices) == 0 {
		return nil, errors.Errorf("importer: %s: no faces", name)
	}

	CalculateTangents(mesh.Vertices, mesh.Indices)
	return mesh, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, errors.Errorf("want %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseCorner resolves "v", "v/vt", "v//vn" or "v/vt/vn" into zero-based
// indices, -1 for an absent component. Negative references count back from
// the most recent element.
func parseCorner(tok string, nv, nvt, nvn int) (objCorner, error) {
	parts := strings.Split(tok, "/")
	c := objCorner{v: -1, vt: -1, vn: -1}
	counts := []int{nv, nvt, nvn}
	dst := []*int{&c.v, &c.vt, &c.vn}

	if len(parts) > 3 {
		return c, errors.Errorf("bad face corner %q", tok)
	}
	for i, p := range parts {
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return c, errors.Wrapf(err, "bad face corner %q", tok)
		}
		switch {
		case n > 0:
			n--
		case n < 0:
			n += counts[i]
		default:
			return c, errors.Errorf("zero index in face corner %q", tok)
		}
		if n < 0 || n >= counts[i] {
			return c, errors.Errorf("face corner %q out of range", tok)
		}
		*dst[i] = n
	}
	if c.v < 0 {
		return c, errors.Errorf("face corner %q has no position", tok)
	}
	return c, nil
}

func objVertex(c objCorner, positions []mgl32.Vec3, uvs []mgl32.Vec2, normals []mgl32.Vec3) core.Vertex {
	v := core.Vertex{Position: positions[c.v]}
	if c.vt >= 0 {
		v.UV = uvs[c.vt]
	}
	if c.vn >= 0 {
		v.Normal = normals[c.vn]
	}
	return v
}
