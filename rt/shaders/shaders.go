package shaders

import (
	_ "embed"
	"sort"
)

//go:embed vertex.wgsl
var VertexWGSL string

//go:embed sky_vertex.wgsl
var SkyVertexWGSL string

// LightingWGSL declares the pixel uniform block, the material textures and
// the shared lighting helpers. It is prepended to every lit pixel shader.
//
//go:embed lighting.wgsl
var LightingWGSL string

//go:embed pixel.wgsl
var pixelBody string

//go:embed pixel_spec.wgsl
var pixelSpecBody string

//go:embed pixel_reflect.wgsl
var pixelReflectBody string

//go:embed sky_pixel.wgsl
var SkyPixelWGSL string

var sources = map[string]string{
	"vertex":        VertexWGSL,
	"sky_vertex":    SkyVertexWGSL,
	"pixel":         LightingWGSL + pixelBody,
	"pixel_spec":    LightingWGSL + pixelSpecBody,
	"pixel_reflect": LightingWGSL + pixelReflectBody,
	"sky_pixel":     SkyPixelWGSL,
}

// Source returns the complete WGSL module registered under name. Every
// module exposes vs_main or fs_main.
func Source(name string) (string, bool) {
	src, ok := sources[name]
	return src, ok
}

func Names() []string {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
