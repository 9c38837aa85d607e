package batch

import "strconv"

// State of the coordinator. A file moves Idle → FileOpen → Processing → Flushing → Idle, or ends in
// Aborted → Idle when anything fails.
type State int32

const (
	StateIdle State = iota
	StateFileOpen
	StateProcessing
	StateFlushing
	StateAborted
)

var stateNames = map[State]string{
	StateIdle:       "idle",
	StateFileOpen:   "file_open",
	StateProcessing: "processing",
	StateFlushing:   "flushing",
	StateAborted:    "aborted",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "state_" + strconv.Itoa(int(s))
}
