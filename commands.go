package sparks

type Commands struct {
	app *App
}

func (cmd *Commands) ChangeState(newState State) *Commands {
	cmd.app.changeState(newState)
	return cmd
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// Exit ends the app after the current frame. A non-nil err is logged and
// becomes the result of App.Run; only the first error is kept.
func (cmd *Commands) Exit(err error) *Commands {
	if err != nil {
		cmd.app.Logger().Errorf("%v", err)
		cmd.app.fail(err)
		return cmd
	}
	if cmd.app.stateful {
		cmd.app.changeState(cmd.app.finalState)
	}
	return cmd
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}
