package starter

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/starter/rt/gpu"
)

// GpuModule creates the WebGPU renderer on the platform window. It must be
// installed after PlatformWindowModule.
type GpuModule struct {
	// ClearColor is RGBA; the zero value keeps the renderer default.
	ClearColor [4]float64
}

// ErrRendererInstalled is reported when a second renderer is installed.
var ErrRendererInstalled = errors.New("starter: a renderer is already installed")

// ensureSingleRenderer fails if any Renderer resource is already present.
func ensureSingleRenderer(app *App) error {
	if r, ok := findResource[Renderer](app); ok {
		return fmt.Errorf("%w (%T)", ErrRendererInstalled, r)
	}
	return nil
}

func (m GpuModule) Install(app *App, cmd *Commands) {
	if err := ensureSingleRenderer(app); err != nil {
		cmd.Fail("gpu", err)
		return
	}
	ws := Resource[WindowState](app)
	if ws == nil {
		cmd.Fail("gpu", errors.New("no window; install PlatformWindowModule first"))
		return
	}

	renderer, err := gpu.NewRenderer(ws.Window())
	if err != nil {
		cmd.Fail("gpu", err)
		return
	}
	if m.ClearColor != [4]float64{} {
		renderer.ClearColor = wgpu.Color{R: m.ClearColor[0], G: m.ClearColor[1], B: m.ClearColor[2], A: m.ClearColor[3]}
	}
	cmd.AddResources(renderer)

	w, h := renderer.Size()
	app.Logger().Infof("renderer ready, surface %dx%d", w, h)
}
