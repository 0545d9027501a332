package domain

import (
	"sync"

	apperrors "posturetrack/internal/platform/errors"
)

type Role string

const (
	RoleProducer Role = "producer"
	RoleObserver Role = "observer"
)

type State int

const (
	StateConnecting State = iota
	StateActive
	StateClosed
)

// Session is one live connection. Observer sessions own a buffered outbound
// queue drained by a per-connection writer, so one slow socket never stalls
// another. Closed is terminal.
type Session struct {
	id   string
	role Role

	mu     sync.Mutex
	state  State
	events chan StatusEvent
	done   chan struct{}
}

func NewSession(id string, role Role, buffer int) *Session {
	if buffer <= 0 {
		buffer = 1
	}
	return &Session{
		id:     id,
		role:   role,
		state:  StateConnecting,
		events: make(chan StatusEvent, buffer),
		done:   make(chan struct{}),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Role() Role {
	return s.role
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Activate moves Connecting -> Active. A closed session stays closed.
func (s *Session) Activate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return apperrors.ErrSessionClosed
	}
	s.state = StateActive
	return nil
}

// Enqueue appends an event to the outbound queue without blocking. A full
// queue means the connection cannot keep up and counts as a delivery
// failure, as does a closed session.
func (s *Session) Enqueue(event StatusEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return apperrors.ErrSessionClosed
	}
	select {
	case s.events <- event:
		return nil
	default:
		return apperrors.ErrSessionLagging
	}
}

// Events is the outbound queue, consumed by the connection's writer.
func (s *Session) Events() <-chan StatusEvent {
	return s.events
}

// Done closes when the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close is idempotent and safe to call concurrently with Enqueue.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	close(s.done)
}
