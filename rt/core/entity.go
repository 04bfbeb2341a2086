package core

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrNoMesh     = errors.New("core: entity has no mesh")
	ErrNoMaterial = errors.New("core: entity has no material")
	ErrNoShader   = errors.New("core: material is missing a vertex or pixel shader")
)

// Entity is a placed instance of a mesh drawn with a material. Mesh and
// material are shared and owned elsewhere.
type Entity struct {
	Name      string
	Transform Transform

	mesh     *Mesh
	material *Material
}

func NewEntity(name string, mesh *Mesh, material *Material) *Entity {
	return &Entity{
		Name:      name,
		Transform: NewTransform(),
		mesh:      mesh,
		material:  material,
	}
}

func (e *Entity) Mesh() *Mesh                   { return e.mesh }
func (e *Entity) Material() *Material           { return e.material }
func (e *Entity) SetMesh(mesh *Mesh)            { e.mesh = mesh }
func (e *Entity) SetMaterial(material *Material) { e.material = material }

// Draw pushes world/view/projection to the vertex shader, binds the
// material's resources and state, activates both shaders and then lets the
// mesh bind its buffers and issue the indexed draw.
//
// Nothing reaches ctx if the entity has no mesh, no material or the
// material lacks a shader.
func (e *Entity) Draw(ctx Context, view, projection mgl32.Mat4) error {
	if e.mesh == nil {
		return ErrNoMesh
	}
	if e.material == nil {
		return ErrNoMaterial
	}
	vs, ps := e.material.VertexShader(), e.material.PixelShader()
	if vs == nil || ps == nil {
		return ErrNoShader
	}

	vs.SetMatrix4x4("world", e.Transform.WorldMatrix())
	vs.SetMatrix4x4("view", view)
	vs.SetMatrix4x4("projection", projection)

	e.material.BindResources()
	ctx.SetRenderState(e.material.RenderState())

	vs.SetShader(ctx)
	ps.SetShader(ctx)

	return e.mesh.Draw(ctx)
}
