package starter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var ErrConfigFormat = errors.New("starter: config must be .yaml, .yml or .toml")

type Config struct {
	Window WindowConfig `yaml:"window" toml:"window"`
	Camera CameraConfig `yaml:"camera" toml:"camera"`

	// Scene is a scene description file; empty selects the built-in scene.
	Scene string `yaml:"scene" toml:"scene"`
	Watch bool   `yaml:"watch" toml:"watch"`
	Debug bool   `yaml:"debug" toml:"debug"`
}

type WindowConfig struct {
	Width      int        `yaml:"width" toml:"width"`
	Height     int        `yaml:"height" toml:"height"`
	Title      string     `yaml:"title" toml:"title"`
	ClearColor [4]float64 `yaml:"clearColor" toml:"clear_color"`
}

// CameraConfig angles are in radians. Sensitivity is radians per pixel of
// mouse drag.
type CameraConfig struct {
	Speed       float32 `yaml:"speed" toml:"speed"`
	Sensitivity float32 `yaml:"sensitivity" toml:"sensitivity"`
	FieldOfView float32 `yaml:"fieldOfView" toml:"field_of_view"`
	NearClip    float32 `yaml:"nearClip" toml:"near_clip"`
	FarClip     float32 `yaml:"farClip" toml:"far_clip"`
}

const (
	DefaultCameraSpeed = 5
	DefaultSensitivity = math32.Pi / 4 / 500
)

func DefaultConfig() Config {
	var c Config
	c.applyDefaults()
	return c
}

// LoadConfig reads YAML or TOML depending on the file extension. Fields
// left at zero get their defaults.
func LoadConfig(path string) (Config, error) {
	var c Config
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("starter: read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &c)
	case ".toml":
		err = toml.Unmarshal(data, &c)
	default:
		return c, fmt.Errorf("%w: %s", ErrConfigFormat, path)
	}
	if err != nil {
		return c, fmt.Errorf("starter: parse config %s: %w", path, err)
	}

	if c.Scene != "" && !filepath.IsAbs(c.Scene) {
		c.Scene = filepath.Join(filepath.Dir(path), c.Scene)
	}
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Window.Width <= 0 {
		c.Window.Width = 1280
	}
	if c.Window.Height <= 0 {
		c.Window.Height = 720
	}
	if c.Window.Title == "" {
		c.Window.Title = "Starter"
	}
	if c.Camera.Speed <= 0 {
		c.Camera.Speed = DefaultCameraSpeed
	}
	if c.Camera.Sensitivity <= 0 {
		c.Camera.Sensitivity = DefaultSensitivity
	}
	if c.Camera.FieldOfView <= 0 {
		c.Camera.FieldOfView = 0.25 * math32.Pi
	}
	if c.Camera.NearClip <= 0 {
		c.Camera.NearClip = 0.1
	}
	if c.Camera.FarClip <= c.Camera.NearClip {
		c.Camera.FarClip = 100
	}
}

// ConfigModule publishes the configuration as a resource.
type ConfigModule struct {
	Config Config
}

func (m ConfigModule) Install(app *App, cmd *Commands) {
	c := m.Config
	c.applyDefaults()
	cmd.AddResources(&c)
}
