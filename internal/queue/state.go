package queue

import "sync/atomic"

// State is the run flag shared by the worker and the queue control endpoint.
type State struct {
	stopped atomic.Bool
}

// NewState returns a flag that starts in the running position.
func NewState() *State {
	return &State{}
}

func (s *State) Running() bool {
	return !s.stopped.Load()
}

func (s *State) SetRunning(running bool) {
	s.stopped.Store(!running)
}
