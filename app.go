package sparks

import (
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

// Module installs resources and systems into an App.
type Module interface {
	Install(app *App, cmd *Commands)
}

type App struct {
	stateful           bool
	stateTransitioning bool
	initialState       State
	finalState         State
	nextState          State
	state              State
	stages             []Stage
	systems            map[string]map[State]map[statePhase][]systemFn
	systemsStateless   map[string][]systemFn
	resources          map[reflect.Type]any

	// first construction or frame error; Run returns it
	err error
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

// Err returns the first error a module or system reported.
func (app *App) Err() error { return app.err }

// Run executes frames until the final state is reached and returns the error
// that ended the app, if any.
func (app *App) Run() error {
	if app.err != nil {
		return app.err
	}

	if app.stateful {
		app.Logger().Debugf("Running in stateful mode...")

		app.state = app.initialState
		app.callSystems(app.state, phaseEnter)
	} else {
		app.Logger().Debugf("Running in stateless mode...")
	}

	for {
		app.callSystems(app.state, phaseExecute)

		if app.stateful {
			if app.stateTransitioning {
				app.stateTransitioning = false
				app.executeChangeState(app.nextState)
			}

			if app.state == app.finalState {
				app.callSystems(app.state, phaseExit)
				break
			}
		} else if app.err != nil {
			break
		}
	}
	return app.err
}

// Close runs the teardown systems of the final state without running any
// frame. It is used when construction fails part way.
func (app *App) Close() {
	if app.stateful {
		app.callSystems(app.finalState, phaseExit)
	}
}

func (app *App) callSystems(state State, phase statePhase) {
	for _, stage := range app.stages {
		// On execute, call stateless/always run systems first
		if phase == phaseExecute {
			for _, system := range app.systemsStateless[stage.Name] {
				app.callSystem(system)
			}
		}

		if app.stateful {
			if systemsInStage, ok := app.systems[stage.Name]; ok {
				if systemsInState, ok := systemsInStage[state]; ok {
					for _, system := range systemsInState[phase] {
						app.callSystem(system)
					}
				}
			}
		}
	}
}

func (app *App) changeState(newState State) {
	// a pending exit always wins
	if app.stateTransitioning && app.nextState == app.finalState {
		return
	}
	app.nextState = newState
	app.stateTransitioning = true
}

func (app *App) executeChangeState(newState State) {
	app.callSystems(app.state, phaseExit)
	app.Logger().Debugf("State %v -> %v", app.state, newState)
	app.state = newState
	app.callSystems(app.state, phaseEnter)
}

// fail records err and, in a stateful app, moves to the final state.
func (app *App) fail(err error) {
	if err == nil {
		return
	}
	if app.err == nil {
		app.err = err
	}
	if app.stateful {
		app.changeState(app.finalState)
	}
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// hasResource reports whether a resource of type *T is installed.
func hasResource[T any](app *App) bool {
	_, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	return ok
}

// resource returns the installed *T, or nil.
func resource[T any](app *App) *T {
	r, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil
	}
	return r.(*T)
}

func (app *App) callSystem(system systemFn) {
	app.callSystemInternal(system)
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystemInternal(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			resourceVal := reflect.ValueOf(resource)
			typedResourceVal := reflect.NewAt(underlyingType, resourceVal.UnsafePointer())

			args[i] = typedResourceVal
		} else {
			msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(),
				fmt.Sprint(systemType),
				fmt.Sprint(argType),
			)
			app.Logger().Errorf("%s", msg)
			panic(msg)
		}
	}
	systemValue.Call(args)
}

// UseModules installs modules immediately, in order, stopping at the first
// one that fails.
func (app *App) UseModules(modules ...Module) *App {
	commands := app.Commands()
	for _, module := range modules {
		if app.err != nil {
			break
		}
		module.Install(app, commands)
	}
	return app
}
