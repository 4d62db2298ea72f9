package sparks

import "fmt"

// Stage names one slot of the frame. Stages run in the order Build lays them out.
type Stage struct {
	Name string
}

var (
	Prelude    = Stage{Name: "Prelude"}
	PreUpdate  = Stage{Name: "PreUpdate"}
	Update     = Stage{Name: "Update"}
	PostUpdate = Stage{Name: "PostUpdate"}
	PreRender  = Stage{Name: "PreRender"}
	Render     = Stage{Name: "Render"}
	PostRender = Stage{Name: "PostRender"}
	Finale     = Stage{Name: "Finale"}
)

// defaultStages is the frame order: poll, simulate, draw, present, account.
var defaultStages = []Stage{Prelude, PreUpdate, Update, PostUpdate, PreRender, Render, PostRender, Finale}

type State int

// Application states of the particle app.
const (
	StateRunning State = iota
	StatePaused
	StateQuit
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateQuit:
		return "quit"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type statePhase int

const (
	phaseEnter statePhase = iota
	phaseExecute
	phaseExit
)

var statePhases = [...]statePhase{phaseEnter, phaseExecute, phaseExit}

func (p statePhase) String() string {
	switch p {
	case phaseEnter:
		return "enter"
	case phaseExecute:
		return "execute"
	case phaseExit:
		return "exit"
	}
	return fmt.Sprintf("statePhase(%d)", int(p))
}

// StatePhase pins a system to one phase of one state.
type StatePhase struct {
	state State
	phase statePhase
}

// OnEnter runs once on the transition into state.
func OnEnter(state State) StatePhase { return StatePhase{state: state, phase: phaseEnter} }

// OnExecute runs every frame while the app is in state.
func OnExecute(state State) StatePhase { return StatePhase{state: state, phase: phaseExecute} }

// OnExit runs once on the transition out of state, and on shutdown for the
// final state.
func OnExit(state State) StatePhase { return StatePhase{state: state, phase: phaseExit} }

func (sp StatePhase) String() string {
	return fmt.Sprintf("%v/%v", sp.state, sp.phase)
}

// SystemSchedule says where a system runs. Build one with System and refine
// it with InStage, InState or RunAlways before handing it to App.UseSystem.
// A schedule without a state runs every frame regardless of state.
type SystemSchedule struct {
	system systemFn
	stage  Stage
	phase  *StatePhase
}

// System schedules fn in the Update stage, every frame.
func System(fn systemFn) SystemSchedule {
	return SystemSchedule{system: fn, stage: Update}
}

func (s SystemSchedule) InStage(stage Stage) SystemSchedule {
	s.stage = stage
	return s
}

func (s SystemSchedule) InState(sp StatePhase) SystemSchedule {
	s.phase = &sp
	return s
}

// RunAlways drops any state binding.
func (s SystemSchedule) RunAlways() SystemSchedule {
	s.phase = nil
	return s
}

// UseSystem registers a scheduled system. It panics when the stage or state
// is unknown, or when a stateful schedule is used in a stateless app.
func (app *App) UseSystem(s SystemSchedule) *App {
	if _, ok := app.systemsStateless[s.stage.Name]; !ok {
		panic(fmt.Sprintf("stage %v doesn't exist", s.stage.Name))
	}

	if s.phase == nil {
		app.systemsStateless[s.stage.Name] = append(app.systemsStateless[s.stage.Name], s.system)
		return app
	}

	if !app.stateful {
		panic(fmt.Sprintf("stateful system (%v) in a stateless app", *s.phase))
	}
	byPhase, ok := app.systems[s.stage.Name][s.phase.state]
	if !ok {
		panic(fmt.Sprintf("state %v doesn't exist", s.phase.state))
	}
	byPhase[s.phase.phase] = append(byPhase[s.phase.phase], s.system)
	return app
}

// addStage appends stage to the frame and prepares its system tables.
func (app *App) addStage(stage Stage) {
	app.stages = append(app.stages, stage)
	app.systemsStateless[stage.Name] = nil

	if !app.stateful {
		return
	}
	byState := make(map[State]map[statePhase][]systemFn)
	for state := app.initialState; state <= app.finalState; state++ {
		byState[state] = make(map[statePhase][]systemFn, len(statePhases))
		for _, phase := range statePhases {
			byState[state][phase] = nil
		}
	}
	app.systems[stage.Name] = byState
}
