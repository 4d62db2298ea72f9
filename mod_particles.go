package sparks

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/sparks/particles"
	"github.com/gekko3d/sparks/render/hud"
)

// ParticleModule installs the emitter, the particle mesh and the frame systems
// that spawn, step and draw the pool. A renderer module must provide the
// Graphics resource before the first frame.
type ParticleModule struct {
	Config Config
}

// ParticleSettings holds what the control systems read each frame.
type ParticleSettings struct {
	MoveSpeed float32
	Mesh      AssetId
}

var hudColor = [4]float32{1, 1, 1, 1}

func (m ParticleModule) Install(app *App, cmd *Commands) {
	assets := resource[AssetServer](app)
	if assets == nil {
		app.fail(fmt.Errorf("%w: particle module needs the asset server", particles.ErrConstruction))
		return
	}
	meshId, err := assets.LoadMesh(particles.QuadMesh(m.Config.QuadHalfExtent))
	if err != nil {
		app.fail(fmt.Errorf("%w: %w", particles.ErrConstruction, err))
		return
	}

	seed := m.Config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	app.Logger().Debugf("Emitter seed %d", seed)

	cmd.AddResources(
		particles.NewEmitter(m.Config.Emitter, seed),
		&ParticleSettings{MoveSpeed: m.Config.MoveSpeed, Mesh: meshId},
		&hud.Overlay{},
	)

	app.UseSystem(System(emitterControlSystem).InStage(PreUpdate).RunAlways())
	app.UseSystem(System(pauseSystem).InStage(PreUpdate).InState(OnExecute(StateRunning)))
	app.UseSystem(System(resumeSystem).InStage(PreUpdate).InState(OnExecute(StatePaused)))
	app.UseSystem(System(spawnSystem).InStage(Update).InState(OnExecute(StateRunning)))
	app.UseSystem(System(stepSystem).InStage(Update).InState(OnExecute(StateRunning)))
	app.UseSystem(System(resizeSystem).InStage(PreRender).RunAlways())
	app.UseSystem(System(renderSystem).InStage(Render).RunAlways())
	app.UseSystem(System(presentSystem).InStage(PostRender).RunAlways())
	app.UseSystem(System(frameStatsSystem).InStage(Finale).RunAlways())
}

// particleMesh returns the mesh ParticleModule registered.
func particleMesh(app *App) (particles.Mesh, error) {
	settings, assets := resource[ParticleSettings](app), resource[AssetServer](app)
	if settings == nil || assets == nil {
		return particles.Mesh{}, fmt.Errorf("%w: renderer installed before the particle module", particles.ErrConstruction)
	}
	mesh, ok := assets.Mesh(settings.Mesh)
	if !ok {
		return particles.Mesh{}, fmt.Errorf("%w: particle mesh %s not loaded", particles.ErrConstruction, settings.Mesh)
	}
	return mesh, nil
}

func emitterControlSystem(input *Input, emitter *particles.Emitter, settings *ParticleSettings, cmd *Commands) {
	var d mgl32.Vec3
	if input.Pressed[KeyW] {
		d[1] += settings.MoveSpeed
	}
	if input.Pressed[KeyS] {
		d[1] -= settings.MoveSpeed
	}
	if input.Pressed[KeyA] {
		d[0] -= settings.MoveSpeed
	}
	if input.Pressed[KeyD] {
		d[0] += settings.MoveSpeed
	}
	if d != (mgl32.Vec3{}) {
		emitter.Move(d)
	}

	if input.Pressed[KeyEscape] || input.CloseRequested {
		cmd.ChangeState(StateQuit)
	}
}

func pauseSystem(input *Input, cmd *Commands) {
	if input.JustPressed[KeySpace] {
		cmd.Logger().Infof("Paused")
		cmd.ChangeState(StatePaused)
	}
}

func resumeSystem(input *Input, cmd *Commands) {
	if input.JustPressed[KeySpace] {
		cmd.Logger().Infof("Resumed")
		cmd.ChangeState(StateRunning)
	}
}

func spawnSystem(emitter *particles.Emitter, gfx *Graphics) {
	emitter.Emit(gfx.Backend.Engine())
}

func stepSystem(gfx *Graphics, cmd *Commands) {
	if err := gfx.Backend.Engine().Step(); err != nil {
		cmd.Exit(fmt.Errorf("step particles: %w", err))
	}
}

func resizeSystem(input *Input, gfx *Graphics, cmd *Commands) {
	if !input.Resized {
		return
	}
	if err := gfx.Backend.Resize(input.WindowWidth, input.WindowHeight); err != nil {
		cmd.Exit(fmt.Errorf("resize to %dx%d: %w", input.WindowWidth, input.WindowHeight, err))
		return
	}
	cmd.Logger().Debugf("Resized to %dx%d", input.WindowWidth, input.WindowHeight)
}

func renderSystem(gfx *Graphics, cmd *Commands) {
	if err := gfx.Backend.Render(); err != nil {
		cmd.Exit(fmt.Errorf("render: %w", err))
	}
}

func presentSystem(gfx *Graphics) {
	gfx.Backend.Present()
}

func frameStatsSystem(t *Time, stats *FrameStats, gfx *Graphics, overlay *hud.Overlay, cmd *Commands) {
	stats.Record(t.Dt)
	sum, ok := stats.Flush(t.Time)
	if !ok {
		return
	}

	eng := gfx.Backend.Engine()
	cmd.Logger().Infof("frame avg %v max %v over %d frames, live %d/%d",
		sum.Avg, sum.Max, sum.Frames, eng.LiveCount(), eng.Capacity())

	overlay.Clear()
	overlay.Print(fmt.Sprintf("%s/%s  %.2f ms  live %d/%d",
		gfx.Name, gfx.Variant, float64(sum.Avg.Microseconds())/1000, eng.LiveCount(), eng.Capacity()),
		8, 8, 1, hudColor)
}
