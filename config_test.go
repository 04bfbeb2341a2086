package starter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, 1280, c.Window.Width)
	assert.Equal(t, 720, c.Window.Height)
	assert.Equal(t, "Starter", c.Window.Title)
	assert.Equal(t, float32(5), c.Camera.Speed)
	assert.InDelta(t, math32.Pi/4/500, c.Camera.Sensitivity, 1e-9)
	assert.InDelta(t, 0.25*math32.Pi, c.Camera.FieldOfView, 1e-6)
	assert.Equal(t, float32(0.1), c.Camera.NearClip)
	assert.Equal(t, float32(100), c.Camera.FarClip)
	assert.Empty(t, c.Scene)
}

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "starter.yaml", `
window:
  width: 640
  title: Demo
camera:
  speed: 12
scene: scenes/main.yaml
watch: true
`)

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 640, c.Window.Width)
	assert.Equal(t, 720, c.Window.Height, "unset fields take defaults")
	assert.Equal(t, "Demo", c.Window.Title)
	assert.Equal(t, float32(12), c.Camera.Speed)
	assert.Equal(t, filepath.Join(dir, "scenes", "main.yaml"), c.Scene)
	assert.True(t, c.Watch)
}

func TestLoadConfigTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "starter.toml", `
debug = true

[window]
height = 600
clear_color = [0.1, 0.2, 0.3, 1.0]

[camera]
field_of_view = 1.0
far_clip = 500.0
`)

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, c.Debug)
	assert.Equal(t, 1280, c.Window.Width)
	assert.Equal(t, 600, c.Window.Height)
	assert.Equal(t, [4]float64{0.1, 0.2, 0.3, 1}, c.Window.ClearColor)
	assert.Equal(t, float32(1), c.Camera.FieldOfView)
	assert.Equal(t, float32(500), c.Camera.FarClip)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(writeFile(t, dir, "starter.json", `{}`))
	assert.ErrorIs(t, err, ErrConfigFormat)

	_, err = LoadConfig(writeFile(t, dir, "bad.yaml", "window: [1, 2"))
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigModuleAppliesDefaults(t *testing.T) {
	app, err := NewAppBuilder().UseModule(ConfigModule{Config: Config{Scene: "x.yaml"}}).Build()
	require.NoError(t, err)

	c := Resource[Config](app)
	require.NotNil(t, c)
	assert.Equal(t, "x.yaml", c.Scene)
	assert.Equal(t, 1280, c.Window.Width)
}
