package out

import (
	"context"
	"time"

	"posturetrack/internal/modules/posture/domain"
)

// RecordStore is the durable append-only log of posture records. Append must
// assign unique, strictly increasing IDs in call order.
type RecordStore interface {
	Append(ctx context.Context, status domain.Status, ts time.Time) (int64, error)
	Recent(ctx context.Context, limit int) ([]domain.Record, error)
	Latest(ctx context.Context) (domain.Record, error)
}

// StatusPublisher fans a freshly appended record out to live observers.
// Delivery is best-effort per observer and never reports failure upstream.
type StatusPublisher interface {
	Publish(rec domain.Record)
}
