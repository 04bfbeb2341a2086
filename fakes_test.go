package starter

import (
	"fmt"
	"time"

	"github.com/gekko3d/starter/rt/core"
	"github.com/gekko3d/starter/rt/core/coretest"
)

type fakePlatform struct {
	width, height int
	polls         int
	closeAfter    int
	script        map[int]func(*Input)
}

func (p *fakePlatform) PollEvents(in *Input) {
	in.BeginFrame()
	p.polls++
	if f := p.script[p.polls]; f != nil {
		f(in)
	}
}

func (p *fakePlatform) ShouldClose() bool {
	return p.closeAfter > 0 && p.polls >= p.closeAfter
}

func (p *fakePlatform) FramebufferSize() (int, int) { return p.width, p.height }

type fakeGame struct {
	calls   []string
	reloads []string

	initErr error
	drawErr error
}

func (g *fakeGame) Init(app *App) error {
	g.calls = append(g.calls, "Init")
	return g.initErr
}

func (g *fakeGame) OnResize(width, height int) {
	g.calls = append(g.calls, fmt.Sprintf("OnResize %dx%d", width, height))
}

func (g *fakeGame) Update(t *Time, input *Input) {
	g.calls = append(g.calls, fmt.Sprintf("Update %d", t.Frame))
}

func (g *fakeGame) Draw(ctx core.Context, t *Time) error {
	g.calls = append(g.calls, fmt.Sprintf("Draw %d", t.Frame))
	return g.drawErr
}

func (g *fakeGame) OnMouseDown(button int, x, y float64) {
	g.calls = append(g.calls, fmt.Sprintf("MouseDown %d %.0f,%.0f", button, x, y))
}

func (g *fakeGame) OnMouseUp(button int, x, y float64) {
	g.calls = append(g.calls, fmt.Sprintf("MouseUp %d %.0f,%.0f", button, x, y))
}

func (g *fakeGame) OnMouseMove(x, y float64) {
	g.calls = append(g.calls, fmt.Sprintf("MouseMove %.0f,%.0f", x, y))
}

func (g *fakeGame) Reload(path string) error {
	g.reloads = append(g.reloads, path)
	return nil
}

// resourceModule installs fixed resources, standing in for the window and
// GPU modules.
type resourceModule struct {
	resources []any
}

func (m resourceModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(m.resources...)
}

// newTestApp wires a platform and a recording renderer with a clock that
// advances 16ms per frame.
func newTestApp(game Game, platform *fakePlatform) (*App, *coretest.Recorder) {
	rec := coretest.NewRecorder()
	app := newApp()
	app.game = game
	app.addResources(platform, rec)

	now := time.Unix(1000, 0)
	app.clock = func() time.Time {
		now = now.Add(16 * time.Millisecond)
		return now
	}
	return app, rec
}
