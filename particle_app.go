package sparks

// NewParticleApp validates cfg and assembles the window, input, particle and
// renderer modules into a stateful app that starts in StateRunning. On error
// everything built so far is released.
func NewParticleApp(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	api := WindowAPINone
	if cfg.Renderer == RendererOpenGL {
		api = WindowAPIOpenGL
	}

	app := NewAppBuilder().
		UseStates(StateRunning, StateQuit).
		UseModule(
			LoggingModule{Prefix: "sparks", Debug: cfg.Debug},
			TimeModule{StatsInterval: cfg.StatsInterval},
			WindowModule{Width: cfg.Width, Height: cfg.Height, Title: cfg.Title, API: api},
			InputModule{},
			AssetServerModule{},
			ParticleModule{Config: cfg},
		).
		Build()
	app.UseRenderer(cfg.Renderer, rendererModule(cfg))

	if err := app.Err(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}
