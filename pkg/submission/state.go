package submission

// State is the orchestrator lifecycle.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceededFull
	StateSucceededPartial
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceededFull:
		return "succeeded"
	case StateSucceededPartial:
		return "succeeded_partial"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Succeeded reports whether an order was created.
func (s State) Succeeded() bool {
	return s == StateSucceededFull || s == StateSucceededPartial
}
