package workerpool

import "fmt"

// State is a Pool lifecycle stage. Transitions only move forward:
// StateRunning -> StateDraining -> StateTerminated.
type State int32

const (
	// StateRunning accepts jobs.
	StateRunning State = iota
	// StateDraining rejects new jobs while workers finish the queued ones.
	StateDraining
	// StateTerminated means every worker has exited.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "running":
		*s = StateRunning
	case "draining":
		*s = StateDraining
	case "terminated":
		*s = StateTerminated
	default:
		return fmt.Errorf("%s: unknown state %q", Namespace, text)
	}
	return nil
}

// Stats is a point-in-time snapshot of pool counters.
// Completed counts every executed job, including the ones that panicked.
type Stats struct {
	Workers   int   `json:"workers"`
	State     State `json:"state"`
	Submitted int64 `json:"submitted"`
	Rejected  int64 `json:"rejected"`
	Completed int64 `json:"completed"`
	Panicked  int64 `json:"panicked"`
	InFlight  int64 `json:"in_flight"`
	Queued    int64 `json:"queued"`
}
