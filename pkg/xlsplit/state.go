package xlsplit

// State is the position of a conversion run in its lifecycle.
type State string

const (
	StateIdle            State = "idle"
	StateResolvingHeader State = "resolving_header"
	StateExtracting      State = "extracting"
	StateFinalizing      State = "finalizing"
	StateCompleted       State = "completed"
	StateFailed          State = "failed"
	StateCancelled       State = "cancelled"
)

// successor is the only forward transition allowed from each working state.
var successor = map[State]State{
	StateIdle:            StateResolvingHeader,
	StateResolvingHeader: StateExtracting,
	StateExtracting:      StateFinalizing,
	StateFinalizing:      StateCompleted,
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// CanTransition reports whether a run may move from s to next.
func (s State) CanTransition(next State) bool {
	if s.Terminal() {
		return false
	}
	if next == StateFailed || next == StateCancelled {
		return true
	}
	return successor[s] == next
}
