package router

import (
	"sync"

	"github.com/YeChamo/DroneBoatGang/mapping"
)

// Controls is one throttle and rudder setpoint pair, in percent.
type Controls struct {
	Throttle int
	Rudder   int
}

// Neutral is the safe setpoint: motor stopped, rudder centered.
var Neutral = Controls{Throttle: 0, Rudder: 50}

// Clamped returns c limited to 0..100 on both axes.
func (c Controls) Clamped() Controls {
	return Controls{
		Throttle: mapping.Constrain(c.Throttle, 0, 100),
		Rudder:   mapping.Constrain(c.Rudder, 0, 100),
	}
}

// ControlStore holds the latest setpoints. It is safe for concurrent use,
// though the node loops only touch it from their own goroutine.
type ControlStore struct {
	mu        sync.Mutex
	c         Controls
	updatedAt uint32
	updated   bool
}

// NewControlStore starts at Neutral with no update recorded.
func NewControlStore() *ControlStore {
	return &ControlStore{c: Neutral}
}

// Set replaces both setpoints. Only payloads from the link pass fromLink;
// local overrides such as the failsafe leave the update time alone.
func (s *ControlStore) Set(c Controls, now uint32, fromLink bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c = c.Clamped()
	if fromLink {
		s.updatedAt = now
		s.updated = true
	}
}

// Get returns the current setpoints.
func (s *ControlStore) Get() Controls {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c
}

// LastUpdate returns when a setpoint last arrived over the link.
func (s *ControlStore) LastUpdate() (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt, s.updated
}
