package indexer

// State describes the engine lifecycle.
type State int32

const (
	// StateStopped means the engine is not running.
	StateStopped State = iota
	// StateStarting means Start was called and goroutines are being set up.
	StateStarting
	// StateCatchingUp means the engine is scanning the backlog behind the head.
	StateCatchingUp
	// StateLive means the backlog is drained and the engine follows the head.
	StateLive
	// StateStopping means Stop was called and goroutines are winding down.
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateCatchingUp:
		return "catching_up"
	case StateLive:
		return "live"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}
