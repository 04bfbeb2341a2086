package gpu

import (
	"fmt"
	"image"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/starter/rt/core"
	"golang.org/x/image/draw"
)

type Buffer struct {
	buf  *wgpu.Buffer
	size uint64
}

func (b *Buffer) Size() uint64 { return b.size }

func (b *Buffer) Release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}

type Texture struct {
	label   string
	owner   *Renderer
	texture *wgpu.Texture
	view    *wgpu.TextureView
	cube    bool
}

func (t *Texture) Label() string { return t.label }

func (t *Texture) Release() {
	if t.owner != nil {
		t.owner.forgetTexture(t)
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

type Sampler struct {
	owner   *Renderer
	sampler *wgpu.Sampler
}

func (s *Sampler) Release() {
	if s.owner != nil {
		s.owner.forgetSampler(s)
	}
	if s.sampler != nil {
		s.sampler.Release()
		s.sampler = nil
	}
}

func (r *Renderer) CreateImmutableBuffer(label string, usage core.BufferUsage, contents []byte) (core.Buffer, error) {
	var u wgpu.BufferUsage
	switch usage {
	case core.BufferUsageVertex:
		u = wgpu.BufferUsageVertex
	case core.BufferUsageIndex:
		u = wgpu.BufferUsageIndex
	default:
		return nil, fmt.Errorf("gpu: buffer %q: unsupported usage %v", label, usage)
	}
	buf, err := r.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: contents,
		Usage:    u,
	})
	if err != nil {
		return nil, err
	}
	return &Buffer{buf: buf, size: uint64(len(contents))}, nil
}

// CreateTexture2D uploads tightly packed RGBA8 pixels and a full mip chain
// generated on the CPU.
func (r *Renderer) CreateTexture2D(label string, pixels []byte, width, height uint32) (core.TextureView, error) {
	if uint32(len(pixels)) != width*height*4 {
		return nil, fmt.Errorf("gpu: texture %q: %d bytes for %dx%d RGBA", label, len(pixels), width, height)
	}
	base := &image.RGBA{
		Pix:    pixels,
		Stride: int(width) * 4,
		Rect:   image.Rect(0, 0, int(width), int(height)),
	}
	levels := mipChain(base)

	tex, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: uint32(len(levels)),
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	for i, level := range levels {
		if err := r.writeLevel(tex, level, uint32(i), 0); err != nil {
			tex.Release()
			return nil, fmt.Errorf("gpu: texture %q mip %d: %w", label, i, err)
		}
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	return &Texture{label: label, owner: r, texture: tex, view: view}, nil
}

// CreateTextureCube uploads six square RGBA8 faces in +X, -X, +Y, -Y, +Z, -Z order.
func (r *Renderer) CreateTextureCube(label string, faces [6][]byte, size uint32) (core.TextureView, error) {
	for i, face := range faces {
		if uint32(len(face)) != size*size*4 {
			return nil, fmt.Errorf("gpu: cube %q face %d: %d bytes for %dx%d RGBA", label, i, len(face), size, size)
		}
	}

	tex, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              size,
			Height:             size,
			DepthOrArrayLayers: 6,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	for i, face := range faces {
		img := &image.RGBA{Pix: face, Stride: int(size) * 4, Rect: image.Rect(0, 0, int(size), int(size))}
		if err := r.writeLevel(tex, img, 0, uint32(i)); err != nil {
			tex.Release()
			return nil, fmt.Errorf("gpu: cube %q face %d: %w", label, i, err)
		}
	}

	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           label,
		Format:          wgpu.TextureFormatRGBA8Unorm,
		Dimension:       wgpu.TextureViewDimensionCube,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: 6,
	})
	if err != nil {
		tex.Release()
		return nil, err
	}
	return &Texture{label: label, owner: r, texture: tex, view: view, cube: true}, nil
}

func (r *Renderer) writeLevel(tex *wgpu.Texture, img *image.RGBA, mip, layer uint32) error {
	w, h := uint32(img.Rect.Dx()), uint32(img.Rect.Dy())
	return r.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: mip,
			Origin:   wgpu.Origin3D{Z: layer},
			Aspect:   wgpu.TextureAspectAll,
		},
		img.Pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  w * 4,
			RowsPerImage: h,
		},
		&wgpu.Extent3D{
			Width:              w,
			Height:             h,
			DepthOrArrayLayers: 1,
		},
	)
}

// CreateSampler returns the trilinear, wrapping sampler every material uses.
func (r *Renderer) CreateSampler(label string) (core.SamplerState, error) {
	smp, err := r.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, err
	}
	return &Sampler{owner: r, sampler: smp}, nil
}

// mipChain returns base followed by successively halved copies down to 1x1.
func mipChain(base *image.RGBA) []*image.RGBA {
	levels := []*image.RGBA{base}
	cur := base
	for cur.Rect.Dx() > 1 || cur.Rect.Dy() > 1 {
		w := max(cur.Rect.Dx()/2, 1)
		h := max(cur.Rect.Dy()/2, 1)
		next := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(next, next.Rect, cur, cur.Rect, draw.Src, nil)
		levels = append(levels, next)
		cur = next
	}
	return levels
}
