package explorer

// State is the controller's position in the sync lifecycle.
type State string

const (
	StateIdle          State = "idle"
	StateFetching      State = "fetching"
	StateRendered      State = "rendered"
	StateRenderedStale State = "rendered_stale"
	StateEmpty         State = "empty"
)

// Terminal reports whether the state ends a refresh.
func (s State) Terminal() bool {
	switch s {
	case StateRendered, StateRenderedStale, StateEmpty:
		return true
	default:
		return false
	}
}
