package dl

import "sync/atomic"

const (
	StateNotStarted State = iota
	StateProbing
	StateFailed
	StateScheduling
	StateSteady
	StateDraining
	StateComplete
	StateKilled
)

// State is the lifecycle of a DownLoader:
//
//	NotStarted -> Probing -> Failed
//	                      -> Scheduling -> Steady -> Draining -> Complete
//
// Killed is reachable from Scheduling, Steady and Draining.
type State int32

var stateNames = [...]string{
	StateNotStarted: "not-started",
	StateProbing:    "probing",
	StateFailed:     "failed",
	StateScheduling: "scheduling",
	StateSteady:     "steady",
	StateDraining:   "draining",
	StateComplete:   "complete",
	StateKilled:     "killed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

func (s State) running() bool {
	return s == StateScheduling || s == StateSteady || s == StateDraining
}

func (s *State) load() State {
	return State(atomic.LoadInt32((*int32)(s)))
}

func (s *State) transition(from, to State) bool {
	return atomic.CompareAndSwapInt32((*int32)(s), int32(from), int32(to))
}

// advance moves a running download forward. Steady never follows Draining.
func (s *State) advance(to State) bool {
	for {
		cur := s.load()
		if !cur.running() || cur == to || (cur == StateDraining && to == StateSteady) {
			return false
		}
		if s.transition(cur, to) {
			return true
		}
	}
}

func (s *State) kill() bool {
	for {
		cur := s.load()
		if !cur.running() {
			return false
		}
		if s.transition(cur, StateKilled) {
			return true
		}
	}
}
