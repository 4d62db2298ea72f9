package sparks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type MockModule struct {
	installed bool
}

func (m *MockModule) Install(app *App, commands *Commands) {
	m.installed = true
}

type failingModule struct{ err error }

func (m failingModule) Install(app *App, commands *Commands) {
	app.fail(m.err)
}

func TestAppBuilder_Stateless(t *testing.T) {
	app := NewAppBuilder().Build()

	assert.False(t, app.stateful)
	assert.Equal(t, State(0), app.initialState)
	assert.Equal(t, State(0), app.finalState)
	assert.Len(t, app.stages, len(defaultStages))
}

func TestAppBuilder_UseStates(t *testing.T) {
	builder := NewAppBuilder()
	builder.UseStates(1, 10)

	app := builder.Build()

	assert.True(t, app.stateful)
	assert.Equal(t, State(1), app.initialState)
	assert.Equal(t, State(10), app.finalState)
	assert.Len(t, app.systems[Update.Name], 10)
}

func TestAppBuilder_UseModule(t *testing.T) {
	builder := NewAppBuilder()
	builder.UseModule(&MockModule{})

	assert.Len(t, builder.modules, 1)
}

func TestAppBuilder_Build_WithMultipleModules(t *testing.T) {
	module1 := &MockModule{}
	module2 := &MockModule{}

	builder := NewAppBuilder()
	builder.UseModule(module1)
	builder.UseModule(module2)

	builder.Build()

	assert.Len(t, builder.modules, 2)
	assert.True(t, module1.installed)
	assert.True(t, module2.installed)
}

func TestAppBuilder_Build_StopsAtFailingModule(t *testing.T) {
	before, after := &MockModule{}, &MockModule{}

	app := NewAppBuilder().
		UseModule(before, failingModule{err: assert.AnError}, after).
		Build()

	assert.ErrorIs(t, app.Err(), assert.AnError)
	assert.True(t, before.installed)
	assert.False(t, after.installed)
}
