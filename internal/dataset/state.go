package dataset

// State is the lifecycle stage of a Dataset.
type State int32

const (
	StateUninitialized State = iota
	StateScanning
	StateIndexed
	StateQueryable
	// StateFailed is terminal; the Dataset must be recreated.
	StateFailed
	// StateClosed follows Close. Queries return ErrNotQueryable.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateScanning:
		return "scanning"
	case StateIndexed:
		return "indexed"
	case StateQueryable:
		return "queryable"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
