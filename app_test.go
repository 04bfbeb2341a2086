package starter

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

type releaseLog struct {
	name string
	log  *[]string
}

func (r *releaseLog) Release() { *r.log = append(*r.log, r.name) }

type closeLog struct {
	log *[]string
}

func (c *closeLog) Close() error {
	*c.log = append(*c.log, "closer")
	return nil
}

func TestApp_addResources(t *testing.T) {
	app := newApp()

	resource1 := &MockResource1{name: "Resource1"}
	app.addResources(resource1)
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := &MockResource2{name: "Resource2"}
	app.addResources(resource2)
	assert.Same(t, resource2, Resource[MockResource2](app))
	assert.Nil(t, Resource[Time](app))
}

func TestAppStepOrder(t *testing.T) {
	game := &fakeGame{}
	app, rec := newTestApp(game, &fakePlatform{width: 800, height: 600})

	require.NoError(t, app.Step())
	require.NoError(t, app.Step())

	assert.Equal(t, []string{
		"Init",
		"OnResize 800x600",
		"Update 1",
		"Draw 1",
		"Update 2",
		"Draw 2",
	}, game.calls)
	assert.Equal(t, []string{"Resize", "BeginFrame", "EndFrame", "BeginFrame", "EndFrame"}, rec.Ops())
	assert.Equal(t, 2, rec.Frames)

	tm := Resource[Time](app)
	require.NotNil(t, tm)
	assert.Equal(t, uint64(2), tm.Frame)
	assert.Equal(t, int64(16), tm.Dt.Milliseconds())
}

func TestAppRunStopsWhenWindowCloses(t *testing.T) {
	game := &fakeGame{}
	app, rec := newTestApp(game, &fakePlatform{width: 640, height: 480, closeAfter: 3})

	require.NoError(t, app.Run())
	assert.True(t, app.Quitting())
	assert.Equal(t, 3, rec.Frames, "the frame that saw the close request still presents")
}

func TestAppRunStopsOnQuit(t *testing.T) {
	game := &fakeGame{}
	platform := &fakePlatform{width: 640, height: 480}
	app, rec := newTestApp(game, platform)
	platform.script = map[int]func(*Input){
		2: func(*Input) { app.Commands().Quit() },
	}

	require.NoError(t, app.Run())
	assert.Equal(t, 2, rec.Frames)
}

func TestAppResizesOnFramebufferChange(t *testing.T) {
	game := &fakeGame{}
	platform := &fakePlatform{width: 800, height: 600}
	app, rec := newTestApp(game, platform)

	require.NoError(t, app.Step())
	platform.width, platform.height = 1024, 768
	require.NoError(t, app.Step())

	assert.Contains(t, game.calls, "OnResize 1024x768")
	assert.Equal(t, 1024, rec.Width)
	assert.Equal(t, 768, rec.Height)
}

func TestAppSkipsDrawWhileMinimized(t *testing.T) {
	game := &fakeGame{}
	platform := &fakePlatform{width: 0, height: 0}
	app, rec := newTestApp(game, platform)

	require.NoError(t, app.Step())
	assert.Equal(t, []string{"Init", "Update 1"}, game.calls)
	assert.Zero(t, rec.Frames)
	assert.NotContains(t, rec.Ops(), "Resize")
}

func TestAppDispatchesMouseEvents(t *testing.T) {
	game := &fakeGame{}
	platform := &fakePlatform{width: 800, height: 600}
	platform.script = map[int]func(*Input){
		1: func(in *Input) { in.SetCursor(10, 10) },
		2: func(in *Input) {
			in.SetPressed(MouseButtonLeft, true)
			in.SetCursor(10, 10)
		},
		3: func(in *Input) {
			in.SetPressed(MouseButtonLeft, true)
			in.SetCursor(30, 15)
		},
		4: func(in *Input) {
			in.SetPressed(MouseButtonLeft, false)
			in.SetCursor(30, 15)
		},
	}
	app, _ := newTestApp(game, platform)

	for i := 0; i < 4; i++ {
		require.NoError(t, app.Step())
	}

	var mouse []string
	for _, c := range game.calls {
		if len(c) > 5 && c[:5] == "Mouse" {
			mouse = append(mouse, c)
		}
	}
	assert.Equal(t, []string{
		fmt.Sprintf("MouseDown %d 10,10", MouseButtonLeft),
		"MouseMove 30,15",
		fmt.Sprintf("MouseUp %d 30,15", MouseButtonLeft),
	}, mouse)
}

func TestAppStartErrors(t *testing.T) {
	app := newApp()
	assert.ErrorIs(t, app.Run(), ErrNoGame)

	app = newApp()
	app.game = &fakeGame{}
	assert.ErrorIs(t, app.Run(), ErrNoPlatform)

	app = newApp()
	app.game = &fakeGame{}
	app.addResources(&fakePlatform{})
	assert.ErrorIs(t, app.Run(), ErrNoRenderer)

	initErr := errors.New("boom")
	app, _ = newTestApp(&fakeGame{initErr: initErr}, &fakePlatform{width: 1, height: 1})
	assert.ErrorIs(t, app.Run(), initErr)
}

func TestAppDrawErrorEndsFrame(t *testing.T) {
	drawErr := errors.New("lost device")
	app, rec := newTestApp(&fakeGame{drawErr: drawErr}, &fakePlatform{width: 8, height: 8})

	err := app.Run()
	assert.ErrorIs(t, err, drawErr)
	assert.Equal(t, 1, rec.Frames, "EndFrame still runs after a failed draw")
}

func TestAppReleasesResourcesInReverseOrder(t *testing.T) {
	var log []string
	app, _ := newTestApp(&fakeGame{}, &fakePlatform{width: 8, height: 8, closeAfter: 1})
	app.addResources(&releaseLog{name: "first", log: &log})
	app.addResources(&closeLog{log: &log})
	app.addResources(&MockResource1{})

	require.NoError(t, app.Run())
	assert.Equal(t, []string{"closer", "first"}, log)
}

func TestAppForwardsWatcherEvents(t *testing.T) {
	game := &fakeGame{}
	app, _ := newTestApp(game, &fakePlatform{width: 8, height: 8})
	w := &SceneWatcher{Events: make(chan string, 4), Errors: make(chan error, 1)}
	app.addResources(w)

	w.Events <- "/tmp/a.yaml"
	w.Events <- "/tmp/b.yaml"
	w.Errors <- errors.New("overflow")
	require.NoError(t, app.Step())
	assert.Equal(t, []string{"/tmp/a.yaml", "/tmp/b.yaml"}, game.reloads)

	require.NoError(t, app.Step())
	assert.Len(t, game.reloads, 2)
}

func TestAppLoggerNeverNil(t *testing.T) {
	var nilApp *App
	assert.NotNil(t, nilApp.Logger())
	assert.NotNil(t, newApp().Logger())
}
