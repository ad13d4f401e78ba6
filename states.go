package taskmgr

// State is the processing status of a Queue or Dispatcher.
type State string

const (
	// StateIdle means nothing is being executed.
	StateIdle State = "idle"
	// StateRunning means a job (or a worker) is in flight.
	StateRunning State = "running"
)

// String returns the raw string value of the state.
func (s State) String() string { return string(s) }

func stateOf(running bool) State {
	if running {
		return StateRunning
	}
	return StateIdle
}
