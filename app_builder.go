package starter

type AppBuilder struct {
	app     *App
	modules []Module
}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{app: newApp()}
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)

	return b
}

func (b *AppBuilder) UseGame(game Game) *AppBuilder {
	b.app.game = game

	return b
}

// Build installs the modules in order. It stops at the first module that
// reports a failure through Commands.Fail and releases what was installed.
func (b *AppBuilder) Build() (*App, error) {
	app := b.app
	commands := &Commands{app: app}

	for _, module := range b.modules {
		module.Install(app, commands)
		if commands.err != nil {
			app.shutdown()
			return nil, commands.err
		}
		app.modules = append(app.modules, module)
	}

	return app, nil
}
