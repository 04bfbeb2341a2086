package main

import (
	"flag"
	"os"
	"runtime"

	"github.com/gekko3d/starter"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML or TOML config file")
	scenePath := flag.String("scene", "", "scene file (overrides the config)")
	debug := flag.Bool("debug", false, "enable debug logging")
	watch := flag.Bool("watch", false, "reload the scene file when it changes")
	flag.Parse()

	logger := starter.NewDefaultLogger("starter", *debug)

	cfg := starter.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = starter.LoadConfig(*configPath); err != nil {
			logger.Errorf("%v", err)
			os.Exit(1)
		}
	}
	if *scenePath != "" {
		cfg.Scene = *scenePath
	}
	if *debug {
		cfg.Debug = true
	}
	if *watch {
		cfg.Watch = true
	}
	logger.SetDebug(cfg.Debug)

	builder := starter.NewAppBuilder().
		UseModule(
			starter.LoggerModule{Logger: logger},
			starter.ConfigModule{Config: cfg},
			starter.TimeModule{},
			starter.InputModule{},
			starter.NewPlatformWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title),
			starter.GpuModule{ClearColor: cfg.Window.ClearColor},
			starter.AssetServerModule{},
		).
		UseGame(&starter.Demo{ScenePath: cfg.Scene})
	if cfg.Watch && cfg.Scene != "" {
		builder.UseModule(starter.SceneWatchModule{Path: cfg.Scene})
	}

	app, err := builder.Build()
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
	if err := app.Run(); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
