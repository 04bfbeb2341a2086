package starter

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/gekko3d/starter/rt/core"
)

var (
	ErrNoGame     = errors.New("starter: no game set")
	ErrNoPlatform = errors.New("starter: no platform window installed")
	ErrNoRenderer = errors.New("starter: no renderer installed")
)

type Module interface {
	Install(app *App, cmd *Commands)
}

// Game is driven by App.Run once per frame: Update, then Draw inside a
// renderer frame. Mouse callbacks fire before Update, in event order.
type Game interface {
	Init(app *App) error
	OnResize(width, height int)
	Update(t *Time, input *Input)
	Draw(ctx core.Context, t *Time) error

	OnMouseDown(button int, x, y float64)
	OnMouseUp(button int, x, y float64)
	OnMouseMove(x, y float64)
}

// Reloader is implemented by games that react to watched file changes.
type Reloader interface {
	Reload(path string) error
}

// Platform is the window system: input polling, close requests and the
// drawable size in pixels.
type Platform interface {
	PollEvents(input *Input)
	ShouldClose() bool
	FramebufferSize() (int, int)
}

// GraphicsDevice is everything the asset server needs from the GPU.
type GraphicsDevice interface {
	core.Device
	CreateTexture2D(label string, pixels []byte, width, height uint32) (core.TextureView, error)
	CreateTextureCube(label string, faces [6][]byte, size uint32) (core.TextureView, error)
	CreateSampler(label string) (core.SamplerState, error)
	LoadShader(name string, stage core.ShaderStage) (core.ShaderProgram, error)
}

type Renderer interface {
	GraphicsDevice
	BeginFrame() (core.Context, error)
	EndFrame() error
	Resize(width, height int) error
}

type App struct {
	modules   []Module
	resources map[reflect.Type]any
	order     []reflect.Type
	game      Game

	quit          bool
	started       bool
	width, height int
	clock         func() time.Time
}

func newApp() *App {
	return &App{
		resources: make(map[reflect.Type]any),
		clock:     time.Now,
	}
}

func (app *App) Commands() *Commands {
	return &Commands{app: app}
}

func (app *App) Game() Game { return app.game }

// Quit ends Run after the current frame.
func (app *App) Quit() { app.quit = true }

func (app *App) Quitting() bool { return app.quit }

// Run initializes the game and loops until Quit is called or the window is
// closed. Resources are released in reverse install order on return.
func (app *App) Run() error {
	defer app.shutdown()

	if err := app.start(); err != nil {
		return err
	}
	for !app.quit {
		if err := app.Step(); err != nil {
			return err
		}
	}
	app.Logger().Infof("quit after %d frames", Resource[Time](app).Frame)
	return nil
}

func (app *App) start() error {
	if app.game == nil {
		return ErrNoGame
	}
	platform, ok := findResource[Platform](app)
	if !ok {
		return ErrNoPlatform
	}
	if _, ok := findResource[Renderer](app); !ok {
		return ErrNoRenderer
	}
	if Resource[Time](app) == nil {
		app.addResources(&Time{})
	}
	if Resource[Input](app) == nil {
		app.addResources(&Input{})
	}

	if err := app.game.Init(app); err != nil {
		return fmt.Errorf("starter: init game: %w", err)
	}
	w, h := platform.FramebufferSize()
	if err := app.resize(w, h); err != nil {
		return err
	}
	app.started = true
	return nil
}

// Step runs one frame: poll input, handle resize and mouse events, tick the
// clock, apply file reloads, update and draw.
func (app *App) Step() error {
	if !app.started {
		if err := app.start(); err != nil {
			return err
		}
	}
	platform, _ := findResource[Platform](app)
	renderer, _ := findResource[Renderer](app)
	tm := Resource[Time](app)
	input := Resource[Input](app)

	platform.PollEvents(input)
	if platform.ShouldClose() {
		app.Quit()
	}
	if w, h := platform.FramebufferSize(); w != app.width || h != app.height {
		if err := app.resize(w, h); err != nil {
			return err
		}
	}
	app.dispatchMouse(input)

	tm.Tick(app.clock())
	app.drainReloads()
	app.game.Update(tm, input)

	if app.width <= 0 || app.height <= 0 {
		// minimized, nothing to present
		return nil
	}

	ctx, err := renderer.BeginFrame()
	if err != nil {
		return fmt.Errorf("starter: begin frame %d: %w", tm.Frame, err)
	}
	drawErr := app.game.Draw(ctx, tm)
	if err := renderer.EndFrame(); err != nil {
		return fmt.Errorf("starter: end frame %d: %w", tm.Frame, err)
	}
	if drawErr != nil {
		return fmt.Errorf("starter: draw frame %d: %w", tm.Frame, drawErr)
	}
	return nil
}

func (app *App) resize(width, height int) error {
	app.width, app.height = width, height
	if width <= 0 || height <= 0 {
		return nil
	}
	renderer, _ := findResource[Renderer](app)
	if err := renderer.Resize(width, height); err != nil {
		return fmt.Errorf("starter: resize to %dx%d: %w", width, height, err)
	}
	app.game.OnResize(width, height)
	app.Logger().Debugf("resized to %dx%d", width, height)
	return nil
}

func (app *App) dispatchMouse(input *Input) {
	for btn := MouseButtonLeft; btn <= MouseButtonMiddle; btn++ {
		if input.JustPressed[btn] {
			app.game.OnMouseDown(btn, input.MouseX, input.MouseY)
		}
	}
	if input.MouseDeltaX != 0 || input.MouseDeltaY != 0 {
		app.game.OnMouseMove(input.MouseX, input.MouseY)
	}
	for btn := MouseButtonLeft; btn <= MouseButtonMiddle; btn++ {
		if input.JustReleased[btn] {
			app.game.OnMouseUp(btn, input.MouseX, input.MouseY)
		}
	}
}

// drainReloads forwards pending watcher events without blocking.
func (app *App) drainReloads() {
	w := Resource[SceneWatcher](app)
	if w == nil {
		return
	}
	logger := app.Logger()
	for {
		select {
		case path, ok := <-w.Events:
			if !ok {
				return
			}
			r, ok := app.game.(Reloader)
			if !ok {
				continue
			}
			if err := r.Reload(path); err != nil {
				logger.Warnf("reload %s: %v", path, err)
			} else {
				logger.Infof("reloaded %s", path)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warnf("watcher: %v", err)
		default:
			return
		}
	}
}

func (app *App) shutdown() {
	if r, ok := app.game.(core.Releaser); ok {
		r.Release()
	}
	for i := len(app.order) - 1; i >= 0; i-- {
		switch r := app.resources[app.order[i]].(type) {
		case io.Closer:
			if err := r.Close(); err != nil {
				app.Logger().Warnf("close %s: %v", app.order[i], err)
			}
		case core.Releaser:
			r.Release()
		}
	}
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
		app.order = append(app.order, resourceType.Elem())
	}
	return app
}

// Resource returns the resource of type *T, or nil.
func Resource[T any](app *App) *T {
	r, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil
	}
	return r.(*T)
}

// findResource returns the first installed resource implementing T,
// scanning in install order.
func findResource[T any](app *App) (T, bool) {
	var zero T
	if app == nil {
		return zero, false
	}
	for _, t := range app.order {
		if v, ok := app.resources[t].(T); ok {
			return v, true
		}
	}
	return zero, false
}
