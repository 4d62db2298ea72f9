package sparks

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/sparks/particles"
	"github.com/gekko3d/sparks/render"
)

// Variant selects where the particle step runs.
type Variant string

const (
	// VariantCPU steps on the host and copies projections into a mapped buffer.
	VariantCPU Variant = "cpu"
	// VariantCompute steps in a compute kernel on the device-resident pool.
	VariantCompute Variant = "compute"
)

// Config is everything NewParticleApp needs.
type Config struct {
	Width  int
	Height int
	Title  string

	Renderer RendererName
	Variant  Variant
	Capacity int

	// Seed for the emitter's generator; 0 derives one from the clock.
	Seed      uint64
	Emitter   particles.EmitterConfig
	Gravity   mgl32.Vec3
	MoveSpeed float32
	// QuadHalfExtent scales the mesh; a particle's Size scales it further.
	QuadHalfExtent float32
	Clear          render.Color

	StatsInterval time.Duration
	HUD           bool
	Debug         bool
}

func DefaultConfig() Config {
	return Config{
		Width:    1280,
		Height:   720,
		Title:    "Sparks",
		Renderer: RendererWebGPU,
		Variant:  VariantCPU,
		Capacity: 100_000,
		Emitter: particles.EmitterConfig{
			PerFrame:    10,
			Life:        120,
			Size:        0.004,
			Color:       mgl32.Vec3{0.5, 1, 0},
			VelocityMin: mgl32.Vec3{-0.01, 0.01, 0},
			VelocityMax: mgl32.Vec3{0.01, 0.03, 0},
		},
		Gravity:        mgl32.Vec3{0, -0.001, 0},
		MoveSpeed:      0.05,
		QuadHalfExtent: 0.5,
		Clear:          render.Color{R: 0, G: 0, B: 1, A: 1},
		StatsInterval:  time.Second,
		HUD:            true,
	}
}

// Physics derives the step constants. Size decay spreads the spawn size over
// the particle's life so it reaches zero as the particle dies.
func (c Config) Physics() particles.Physics {
	var decay float32
	if c.Emitter.Life > 0 {
		decay = c.Emitter.Size / float32(c.Emitter.Life)
	}
	return particles.Physics{Gravity: c.Gravity, SizeDecay: decay}
}

func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", particles.ErrInvariant, c.Width, c.Height)
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity %d", particles.ErrInvariant, c.Capacity)
	case c.Renderer != RendererWebGPU && c.Renderer != RendererOpenGL:
		return fmt.Errorf("%w: unknown renderer %q", particles.ErrInvariant, c.Renderer)
	case c.Variant != VariantCPU && c.Variant != VariantCompute:
		return fmt.Errorf("%w: unknown variant %q", particles.ErrInvariant, c.Variant)
	case c.Emitter.PerFrame < 0:
		return fmt.Errorf("%w: negative spawn rate %d", particles.ErrInvariant, c.Emitter.PerFrame)
	case c.Emitter.Size < 0:
		return fmt.Errorf("%w: negative particle size %v", particles.ErrInvariant, c.Emitter.Size)
	case c.QuadHalfExtent <= 0:
		return fmt.Errorf("%w: quad half extent %v", particles.ErrInvariant, c.QuadHalfExtent)
	case c.StatsInterval < 0:
		return fmt.Errorf("%w: negative stats interval", particles.ErrInvariant)
	}
	return c.Physics().Validate()
}

// ApplyEnv overrides fields from SPARKS_SEED, SPARKS_RENDERER and
// SPARKS_VARIANT as reported by lookup (os.LookupEnv in the binary).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("SPARKS_SEED"); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: SPARKS_SEED: %w", particles.ErrInvariant, err)
		}
		c.Seed = seed
	}
	if v, ok := lookup("SPARKS_RENDERER"); ok {
		c.Renderer = RendererName(v)
	}
	if v, ok := lookup("SPARKS_VARIANT"); ok {
		c.Variant = Variant(v)
	}
	return nil
}
