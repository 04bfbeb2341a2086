package starter

import "fmt"

type Commands struct {
	app *App
	err error
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) Quit() *Commands {
	cmd.app.Quit()
	return cmd
}

// Fail aborts AppBuilder.Build after the current module. Only the first
// failure is kept.
func (cmd *Commands) Fail(module string, err error) {
	if cmd.err == nil {
		cmd.err = fmt.Errorf("starter: install %s: %w", module, err)
	}
}
