package out

import (
	"time"

	posturedomain "posturetrack/internal/modules/posture/domain"
	postureout "posturetrack/internal/modules/posture/port/out"
	"posturetrack/internal/modules/stream/domain"
	"posturetrack/internal/modules/stream/service"
)

// RecordPublisher bridges freshly appended posture records onto the stream
// registry's broadcast path.
type RecordPublisher struct {
	registry *service.Registry
}

func NewRecordPublisher(registry *service.Registry) postureout.StatusPublisher {
	return &RecordPublisher{registry: registry}
}

func (p *RecordPublisher) Publish(rec posturedomain.Record) {
	p.registry.Broadcast(domain.StatusEvent{
		ID:        rec.ID,
		Status:    string(rec.Status),
		Timestamp: rec.Timestamp.Format(time.RFC3339Nano),
	})
}
