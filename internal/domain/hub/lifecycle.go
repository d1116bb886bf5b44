package hub

import (
	"github.com/felixgeelhaar/statekit"
)

// State is the lifecycle state of a Hub.
type State string

const (
	stateIdle      = "idle"
	stateExecuting = "executing"
	stateFolding   = "folding"
	stateCompleted = "completed"
	stateFailed    = "failed"
)

const (
	// StateIdle indicates the hub is ready to execute.
	StateIdle State = stateIdle
	// StateExecuting indicates steps are running.
	StateExecuting State = stateExecuting
	// StateFolding indicates produced tables are being joined onto the root.
	StateFolding State = stateFolding
	// StateCompleted indicates the last run returned a table.
	StateCompleted State = stateCompleted
	// StateFailed indicates the last run aborted with an error.
	StateFailed State = stateFailed
)

// Lifecycle events.
const (
	EventExecute  = "EXECUTE"
	EventFold     = "FOLD"
	EventComplete = "COMPLETE"
	EventFail     = "FAIL"
	EventReset    = "RESET"
)

// runStats is the state machine context.
type runStats struct {
	Runs     int
	Failures int
}

type lifecycle struct {
	interp *statekit.Interpreter[runStats]
	stats  *runStats
}

func newLifecycle() (*lifecycle, error) {
	stats := &runStats{}
	machine, err := statekit.NewMachine[runStats]("datahub-run").
		WithInitial(stateIdle).
		WithContext(*stats).
		WithAction("recordRun", func(_ *runStats, _ statekit.Event) {
			stats.Runs++
		}).
		WithAction("recordFailure", func(_ *runStats, _ statekit.Event) {
			stats.Failures++
		}).
		State(stateIdle).
		On(EventExecute).Target(stateExecuting).Done().
		State(stateExecuting).
		OnEntry("recordRun").
		On(EventFold).Target(stateFolding).
		On(EventFail).Target(stateFailed).Done().
		State(stateFolding).
		On(EventComplete).Target(stateCompleted).
		On(EventFail).Target(stateFailed).Done().
		State(stateCompleted).
		On(EventReset).Target(stateIdle).Done().
		State(stateFailed).
		OnEntry("recordFailure").
		On(EventReset).Target(stateIdle).Done().
		Build()
	if err != nil {
		return nil, err
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()
	return &lifecycle{interp: interp, stats: stats}, nil
}

func (l *lifecycle) send(event string) {
	l.interp.Send(statekit.Event{Type: statekit.EventType(event)})
}

func (l *lifecycle) state() State {
	return State(l.interp.State().Value)
}
