package main

import (
	"flag"
	"os"
	"runtime"

	"github.com/gekko3d/sparks"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	cfg := sparks.DefaultConfig()
	logger := sparks.NewDefaultLogger("sparks", false)

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		logger.Errorf("%v", err)
		os.Exit(2)
	}

	renderer := flag.String("renderer", string(cfg.Renderer), "Renderer backend: webgpu or opengl")
	variant := flag.String("variant", string(cfg.Variant), "Particle step: cpu or compute")
	flag.IntVar(&cfg.Capacity, "capacity", cfg.Capacity, "Particle pool capacity")
	flag.IntVar(&cfg.Emitter.PerFrame, "rate", cfg.Emitter.PerFrame, "Particles spawned per frame")
	flag.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Emitter seed (0 picks one from the clock)")
	flag.IntVar(&cfg.Width, "width", cfg.Width, "Window width")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "Window height")
	flag.DurationVar(&cfg.StatsInterval, "stats", cfg.StatsInterval, "Frame stats report interval")
	flag.BoolVar(&cfg.HUD, "hud", cfg.HUD, "Draw the frame stats overlay (webgpu only)")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")
	flag.Parse()
	cfg.Renderer = sparks.RendererName(*renderer)
	cfg.Variant = sparks.Variant(*variant)

	os.Exit(run(logger, func() (runner, error) { return sparks.NewParticleApp(cfg) }))
}

type runner interface {
	Run() error
}

// run builds the app with start, runs it and maps the outcome to an exit
// code. Every failure is logged before the code is returned.
func run(logger sparks.Logger, start func() (runner, error)) int {
	app, err := start()
	if err != nil {
		logger.Errorf("startup: %v", err)
		return 1
	}
	if err := app.Run(); err != nil {
		logger.Errorf("run: %v", err)
		return 1
	}
	return 0
}
