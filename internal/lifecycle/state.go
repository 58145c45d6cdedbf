package lifecycle

import (
	"fmt"
	"time"
)

// State is a step of a stop session.
type State string

const (
	StateRequested    State = "Requested"
	StatePolling      State = "Polling"
	StateStopped      State = "Stopped"
	StateForceStopped State = "ForceStopped"
	StateTimeout      State = "Timeout"
	StateNotFound     State = "NotFound"
)

// IsTerminal reports whether no further transition can follow s.
func (s State) IsTerminal() bool {
	switch s {
	case StateStopped, StateForceStopped, StateTimeout, StateNotFound:
		return true
	}
	return false
}

var transitions = map[State][]State{
	StateRequested: {StatePolling, StateNotFound},
	StatePolling:   {StateStopped, StateForceStopped, StateTimeout},
}

// session is the bookkeeping of one Stop call.
type session struct {
	domain   string
	deadline time.Time
	interval time.Duration
	state    State
	polls    int
}

func (s *session) transition(to State) error {
	for _, allowed := range transitions[s.state] {
		if allowed == to {
			s.state = to
			return nil
		}
	}
	return fmt.Errorf("cannot transition stop of %s from %s to %s", s.domain, s.state, to)
}

func (s *session) outcome(ok bool, stdout, message string) Outcome {
	return Outcome{
		State:     s.state,
		Succeeded: ok,
		Stdout:    stdout,
		Message:   message,
		Polls:     s.polls,
	}
}
