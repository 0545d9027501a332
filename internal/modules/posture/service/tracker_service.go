package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"posturetrack/internal/modules/posture/domain"
	postureout "posturetrack/internal/modules/posture/port/out"
	"posturetrack/internal/platform/clock"
	"posturetrack/internal/platform/telemetry"
)

type TrackerService struct {
	clock     clock.Clock
	store     postureout.RecordStore
	publisher postureout.StatusPublisher

	framesIngested metric.Int64Counter
}

func NewTrackerService(clk clock.Clock, store postureout.RecordStore, publisher postureout.StatusPublisher) *TrackerService {
	framesIngested, _ := telemetry.GetMeter().Int64Counter("posture_frames_ingested_total",
		metric.WithDescription("Frames accepted, by resulting status"))
	return &TrackerService{
		clock:          clk,
		store:          store,
		publisher:      publisher,
		framesIngested: framesIngested,
	}
}

// IngestFrame classifies a landmark frame, persists the result and publishes
// it. An incomplete frame is recovered inside Classify as bad/{0,0,0}.
func (s *TrackerService) IngestFrame(ctx context.Context, frame domain.Frame, ts time.Time) (domain.Record, domain.Angles, error) {
	status, angles := domain.Classify(frame)
	rec, err := s.persistAndPublish(ctx, status, ts)
	return rec, angles, err
}

// IngestStatus persists a pre-computed status from a client that classifies
// locally, then publishes it.
func (s *TrackerService) IngestStatus(ctx context.Context, status domain.Status, ts time.Time) (domain.Record, error) {
	if err := status.Validate(); err != nil {
		return domain.Record{}, err
	}
	return s.persistAndPublish(ctx, status, ts)
}

// persistAndPublish appends before broadcasting: an event observers see
// always corresponds to a record that is already durable.
func (s *TrackerService) persistAndPublish(ctx context.Context, status domain.Status, ts time.Time) (domain.Record, error) {
	ctx, span := telemetry.GetTracer().Start(ctx, "posture.ingest")
	defer span.End()

	if ts.IsZero() {
		ts = s.clock.Now()
	}
	id, err := s.store.Append(ctx, status, ts)
	if err != nil {
		return domain.Record{}, fmt.Errorf("append record: %w", err)
	}
	rec := domain.Record{ID: id, Status: status, Timestamp: ts}

	s.framesIngested.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
	span.SetAttributes(attribute.Int64("record.id", id), attribute.String("record.status", string(status)))

	s.publisher.Publish(rec)
	return rec, nil
}

func (s *TrackerService) Recent(ctx context.Context, limit int) ([]domain.Record, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.store.Recent(ctx, limit)
}

func (s *TrackerService) Latest(ctx context.Context) (domain.Record, error) {
	return s.store.Latest(ctx)
}
