package shaders

import (
	_ "embed"
)

//go:embed particles.wgsl
var ParticlesWGSL string

//go:embed particles_step.wgsl
var ParticlesStepWGSL string

//go:embed hud.wgsl
var HudWGSL string

//go:embed particles.vert
var ParticlesVert string

//go:embed particles.frag
var ParticlesFrag string

//go:embed particles_step.comp
var ParticlesStepComp string
