package service

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/metric"

	"posturetrack/internal/modules/stream/domain"
	apperrors "posturetrack/internal/platform/errors"
	"posturetrack/internal/platform/telemetry"
)

// Registry tracks the single producer session and the observer set, and owns
// broadcast fan-out. It is the only shared mutable state in the pipeline:
// producer-slot changes and observer-set mutation are serialized here, while
// Broadcast iterates a snapshot so registration never races delivery.
type Registry struct {
	mu        sync.RWMutex
	producer  *domain.Session
	observers map[string]*domain.Session
	closed    bool

	delivered metric.Int64Counter
	dropped   metric.Int64Counter
}

func NewRegistry() *Registry {
	delivered, _ := telemetry.GetMeter().Int64Counter("stream_events_delivered_total",
		metric.WithDescription("Events enqueued to observer sessions"))
	dropped, _ := telemetry.GetMeter().Int64Counter("stream_observers_dropped_total",
		metric.WithDescription("Observer sessions removed after a delivery failure"))
	return &Registry{
		observers: make(map[string]*domain.Session),
		delivered: delivered,
		dropped:   dropped,
	}
}

// AcquireProducer claims the producer slot. A second producer is rejected
// with ErrProducerBusy rather than evicting the active one, so an
// established stream is never silently orphaned.
func (r *Registry) AcquireProducer(session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return apperrors.ErrRegistryClosed
	}
	if r.producer != nil && r.producer.State() != domain.StateClosed {
		return apperrors.ErrProducerBusy
	}
	if err := session.Activate(); err != nil {
		return fmt.Errorf("activate producer: %w", err)
	}
	r.producer = session
	return nil
}

// ReleaseProducer frees the slot. Idempotent; releasing a session that no
// longer holds the slot is a no-op.
func (r *Registry) ReleaseProducer(session *domain.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.producer == session {
		r.producer = nil
	}
	session.Close()
}

// AddObserver registers a session for broadcasts. Events created before
// registration are never replayed.
func (r *Registry) AddObserver(session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return apperrors.ErrRegistryClosed
	}
	if err := session.Activate(); err != nil {
		return fmt.Errorf("activate observer: %w", err)
	}
	r.observers[session.ID()] = session
	return nil
}

// RemoveObserver is idempotent and safe to call concurrently with Broadcast.
func (r *Registry) RemoveObserver(session *domain.Session) {
	r.mu.Lock()
	delete(r.observers, session.ID())
	r.mu.Unlock()
	session.Close()
}

// ObserverCount reports the current observer set size.
func (r *Registry) ObserverCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.observers)
}

// Broadcast enqueues event to every active observer. Delivery to one
// observer never blocks or fails delivery to the others: a session that
// cannot accept the event is closed and removed, and the caller is never
// told about it.
func (r *Registry) Broadcast(event domain.StatusEvent) {
	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return
	}
	snapshot := make([]*domain.Session, 0, len(r.observers))
	for _, session := range r.observers {
		snapshot = append(snapshot, session)
	}
	r.mu.RUnlock()

	ctx := context.Background()
	for _, session := range snapshot {
		if err := session.Enqueue(event); err != nil {
			telemetry.GetLogger().Warn("dropping observer",
				"session_id", session.ID(), "error", err)
			r.dropped.Add(ctx, 1)
			r.RemoveObserver(session)
			continue
		}
		r.delivered.Add(ctx, 1)
	}
}

// Shutdown closes every session and rejects further registration.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	producer := r.producer
	r.producer = nil
	observers := make([]*domain.Session, 0, len(r.observers))
	for _, session := range r.observers {
		observers = append(observers, session)
	}
	r.observers = make(map[string]*domain.Session)
	r.mu.Unlock()

	if producer != nil {
		producer.Close()
	}
	for _, session := range observers {
		session.Close()
	}
}
