package runtime

// State represents the execution state of a runtime.
//
// The machine has three states and four legal transitions: Start moves
// Idle to Running, Pause moves Running to Paused, Resume (or Start) moves
// Paused back to Running, and Stop moves Running or Paused to Idle. Lifecycle
// calls from any other state are no-ops.
type State int32

const (
	// StateIdle means the runtime is constructed and wired but has no
	// control job. Stopped runtimes return here.
	StateIdle State = iota
	// StateRunning means the control job is live and processing values.
	StateRunning
	// StatePaused means the control job is parked at an iteration boundary:
	// no channel I/O and no tick execution until resumed.
	StatePaused
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}
