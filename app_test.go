package sparks

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

func TestApp_changeState(t *testing.T) {
	app := &App{
		stateful:     true,
		initialState: 1,
		state:        1,
		finalState:   2,
	}

	app.changeState(2)
	assert.Equal(t, State(2), app.nextState)
	assert.True(t, app.stateTransitioning)

	app.executeChangeState(2)
	assert.Equal(t, State(2), app.state)
}

func TestApp_changeState_PendingQuitWins(t *testing.T) {
	app := &App{stateful: true, initialState: StateRunning, finalState: StateQuit}

	app.changeState(StateQuit)
	app.changeState(StatePaused)
	assert.Equal(t, StateQuit, app.nextState)
}

func TestApp_addResources(t *testing.T) {
	app := &App{
		resources: make(map[reflect.Type]any),
	}

	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	// Expect panic when trying to add the same type of resource again
	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)
	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")

	assert.Same(t, resource2, resource[MockResource2](app))
	assert.True(t, hasResource[MockResource1](app))
}

func TestApp_SystemsReceiveResources(t *testing.T) {
	app := NewAppBuilder().Build()
	app.addResources(NewMockResource1("r1"))

	var got string
	app.callSystem(func(r *MockResource1, cmd *Commands) {
		got = r.name
		require.NotNil(t, cmd)
	})
	assert.Equal(t, "r1", got)

	assert.Panics(t, func() {
		app.callSystem(func(*MockResource2) {})
	}, "unresolved dependencies fail loudly")
}

func TestApp_StatePhasesRunInOrder(t *testing.T) {
	var calls []string
	record := func(s string) func() { return func() { calls = append(calls, s) } }

	app := NewAppBuilder().UseStates(StateRunning, StateQuit).Build()
	app.UseSystem(System(record("enter running")).InState(OnEnter(StateRunning)))
	app.UseSystem(System(record("always")).InStage(Prelude).RunAlways())
	app.UseSystem(System(func(cmd *Commands) {
		calls = append(calls, "running")
		cmd.ChangeState(StateQuit)
	}).InState(OnExecute(StateRunning)))
	app.UseSystem(System(record("exit running")).InState(OnExit(StateRunning)))
	app.UseSystem(System(record("enter quit")).InState(OnEnter(StateQuit)))
	app.UseSystem(System(record("exit quit")).InState(OnExit(StateQuit)))

	require.NoError(t, app.Run())
	assert.Equal(t, []string{
		"enter running", "always", "running", "exit running", "enter quit", "exit quit",
	}, calls)
}

func TestApp_ExitWithErrorEndsRun(t *testing.T) {
	app := NewAppBuilder().UseStates(StateRunning, StateQuit).Build()
	frames := 0
	app.UseSystem(System(func(cmd *Commands) {
		frames++
		if frames == 3 {
			cmd.Exit(assert.AnError)
			cmd.Exit(fmt.Errorf("second"))
		}
	}).InState(OnExecute(StateRunning)))

	err := app.Run()
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 3, frames)
	assert.ErrorIs(t, app.Err(), assert.AnError)
}

func TestApp_RunReturnsConstructionError(t *testing.T) {
	app := NewAppBuilder().UseStates(StateRunning, StateQuit).Build()
	ran := false
	app.UseSystem(System(func() { ran = true }).InState(OnExecute(StateRunning)))
	app.fail(assert.AnError)

	assert.ErrorIs(t, app.Run(), assert.AnError)
	assert.False(t, ran)
}

func TestApp_UseSystemRejectsUnknownStage(t *testing.T) {
	app := NewAppBuilder().UseStates(StateRunning, StateQuit).Build()

	assert.PanicsWithValue(t, "stage Missing doesn't exist", func() {
		app.UseSystem(System(func() {}).InStage(Stage{Name: "Missing"}))
	})
	assert.PanicsWithValue(t, "state State(7) doesn't exist", func() {
		app.UseSystem(System(func() {}).InState(OnEnter(State(7))))
	})
}

func TestApp_UseSystemRejectsStatefulInStatelessApp(t *testing.T) {
	app := NewAppBuilder().Build()

	assert.PanicsWithValue(t, "stateful system (running/execute) in a stateless app", func() {
		app.UseSystem(System(func() {}).InState(OnExecute(StateRunning)))
	})
	assert.NotPanics(t, func() {
		app.UseSystem(System(func() {}).InState(OnExecute(StateRunning)).RunAlways())
	})
	assert.Len(t, app.systemsStateless[Update.Name], 1)
}

func TestApp_BuildLaysOutDefaultStages(t *testing.T) {
	app := NewAppBuilder().UseStates(StateRunning, StateQuit).Build()

	var names []string
	for _, s := range app.stages {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Prelude", "PreUpdate", "Update", "PostUpdate", "PreRender", "Render", "PostRender", "Finale"}, names)
	for _, stage := range defaultStages {
		require.Contains(t, app.systems, stage.Name)
		for state := StateRunning; state <= StateQuit; state++ {
			assert.Len(t, app.systems[stage.Name][state], len(statePhases), "%s/%v", stage.Name, state)
		}
	}
}
